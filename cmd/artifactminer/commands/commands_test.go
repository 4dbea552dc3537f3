package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"github.com/COSC-499-W2025/capstone-project-team-12-sub000/pkg/analysis"
	"github.com/COSC-499-W2025/capstone-project-team-12-sub000/pkg/observability"
	"github.com/COSC-499-W2025/capstone-project-team-12-sub000/pkg/preprocess"
)

type fieldsProcessor struct{}

func (fieldsProcessor) Process(_ context.Context, docs []preprocess.Document) ([][]string, error) {
	out := make([][]string, len(docs))
	for i, d := range docs {
		out[i] = strings.Fields(string(d.Content))
	}

	return out, nil
}

func stubObservability(_ observability.Config) (observability.Providers, error) {
	return observability.Providers{
		Tracer:   tracenoop.NewTracerProvider().Tracer("test"),
		Meter:    noop.NewMeterProvider().Meter("test"),
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		Shutdown: func(context.Context) error { return nil },
	}, nil
}

type fixture struct {
	input  string
	config string
	dsn    string
	cache  string
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	dir := t.TempDir()
	f := fixture{
		input:  filepath.Join(dir, "input"),
		config: filepath.Join(dir, "artifactminer.yaml"),
		dsn:    filepath.Join(dir, "results.db"),
		cache:  filepath.Join(dir, "bow"),
	}

	require.NoError(t, os.MkdirAll(f.input, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(f.input, "a.txt"), []byte("hello world"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(f.input, "b.txt"), []byte("another doc"), 0o644))

	body := "cache:\n  directory: " + f.cache + "\n" +
		"store:\n  dsn: " + f.dsn + "\n" +
		"topics:\n  num_topics: 2\n  iterations: 10\n  top_terms: 2\n"
	require.NoError(t, os.WriteFile(f.config, []byte(body), 0o644))

	return f
}

func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer

	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	cmd.SetContext(context.Background())

	err := cmd.Execute()

	return out.String(), err
}

func TestAnalyze_TextReportAndStore(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	plot := filepath.Join(t.TempDir(), "timeline.html")

	cmd := newAnalyzeCommandWithDeps(stubObservability, analysis.WithPreprocessor(fieldsProcessor{}))

	out, err := execute(t, cmd, f.input, "--config", f.config, "--plot", plot)
	require.NoError(t, err)
	assert.Contains(t, out, "Analysis ")
	assert.NotContains(t, out, "not stored")
	assert.Contains(t, out, "2 files")
	assert.FileExists(t, plot)
	assert.FileExists(t, f.dsn)
}

func TestAnalyze_JSONWithoutStore(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	cmd := newAnalyzeCommandWithDeps(stubObservability, analysis.WithPreprocessor(fieldsProcessor{}))

	out, err := execute(t, cmd, f.input, "--config", f.config, "--no-store", "--no-cache", "--json")
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Empty(t, decoded["analysis_id"])
	assert.Len(t, decoded["final_bow"], 2)
	assert.NoFileExists(t, f.dsn)
	assert.NoDirExists(t, f.cache)
}

func TestAnalyze_MissingPath(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	cmd := newAnalyzeCommandWithDeps(stubObservability, analysis.WithPreprocessor(fieldsProcessor{}))

	_, err := execute(t, cmd, filepath.Join(f.input, "nope"), "--config", f.config, "--no-store")
	require.Error(t, err)
}

func TestCache_InvalidateAfterAnalyze(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	_, err := execute(t, newAnalyzeCommandWithDeps(stubObservability, analysis.WithPreprocessor(fieldsProcessor{})),
		f.input, "--config", f.config, "--no-store")
	require.NoError(t, err)

	out, err := execute(t, newCacheCommandWithDeps(analysis.WithPreprocessor(fieldsProcessor{})),
		"invalidate", f.input, "--config", f.config)
	require.NoError(t, err)
	assert.Contains(t, out, "invalidated ")

	out, err = execute(t, newCacheCommandWithDeps(analysis.WithPreprocessor(fieldsProcessor{})),
		"invalidate", f.input, "--config", f.config)
	require.NoError(t, err)
	assert.Contains(t, out, "no entry for ")

	out, err = execute(t, newCacheCommandWithDeps(), "path", "--config", f.config)
	require.NoError(t, err)
	assert.Equal(t, f.cache+"\n", out)
}

func TestConfig_PrintsYAMLWithoutSecrets(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	require.NoError(t, os.WriteFile(f.config, []byte("summarizer:\n  api_key: hunter2\n"), 0o644))

	out, err := execute(t, NewConfigCommand(), "--config", f.config)
	require.NoError(t, err)
	assert.Contains(t, out, "num_topics: 5")
	assert.NotContains(t, out, "hunter2")
}

func TestObservabilityConfig(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	cmd := NewConfigCommand()
	require.NoError(t, cmd.Flags().Set(flagConfig, f.config))

	cfg, err := loadConfig(cmd)
	require.NoError(t, err)

	cfg.Telemetry.MetricsFile = "metrics.prom"

	oc := observabilityConfig(cfg, true)
	assert.Equal(t, "metrics.prom", oc.MetricsFile)
	assert.Equal(t, slog.LevelDebug, oc.LogLevel)
	assert.Equal(t, observability.ModeCLI, oc.Mode)
}
