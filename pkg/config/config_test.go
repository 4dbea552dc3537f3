package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/COSC-499-W2025/capstone-project-team-12-sub000/pkg/config"
	"github.com/COSC-499-W2025/capstone-project-team-12-sub000/pkg/units"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "artifactminer.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := config.LoadConfig(writeConfig(t, ""))
	require.NoError(t, err)

	fileBytes, err := cfg.Limits.FileBytes()
	require.NoError(t, err)
	assert.Equal(t, int64(4*units.GiB), fileBytes)

	totalBytes, err := cfg.Limits.TotalBytes()
	require.NoError(t, err)
	assert.Equal(t, int64(4*units.GiB), totalBytes)

	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, filepath.Join("cache", "bow"), filepath.Join(filepath.Base(filepath.Dir(cfg.Cache.Directory)), filepath.Base(cfg.Cache.Directory)))
	assert.Equal(t, config.DefaultStopwords, cfg.Preprocess.Stopwords)
	assert.Equal(t, []string{"text", "code"}, cfg.Preprocess.Filters)
	assert.True(t, cfg.Preprocess.NormalizeCode)
	assert.Equal(t, 30*time.Second, cfg.Summarizer.OnlineTimeout)
	assert.Equal(t, 120*time.Second, cfg.Summarizer.LocalTimeout)
	assert.Equal(t, config.DefaultStoreDSN, cfg.Store.DSN)
}

func TestLoadConfigFromFile(t *testing.T) {
	path := writeConfig(t, `
limits:
  max_file_size: "10MiB"
cache:
  directory: "/tmp/bow-test"
identity:
  user_email: "dev@example.com"
topics:
  num_topics: 3
summarizer:
  online_timeout: 5s
`)

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)

	fileBytes, err := cfg.Limits.FileBytes()
	require.NoError(t, err)
	assert.Equal(t, int64(10*units.MiB), fileBytes)
	assert.Equal(t, "/tmp/bow-test", cfg.Cache.Directory)
	assert.Equal(t, "dev@example.com", cfg.Identity.UserEmail)
	assert.Equal(t, 3, cfg.Topics.NumTopics)
	assert.Equal(t, 5*time.Second, cfg.Summarizer.OnlineTimeout)
}

func TestLoadConfigCacheDirFromEnvironment(t *testing.T) {
	t.Setenv("ARTIFACTMINER_CACHE_DIRECTORY", "/env/cache")

	cfg, err := config.LoadConfig(writeConfig(t, ""))
	require.NoError(t, err)
	assert.Equal(t, "/env/cache", cfg.Cache.Directory)
}

func TestLoadConfigLegacyCacheEnv(t *testing.T) {
	t.Setenv(config.LegacyCacheDirEnv, "/legacy/cache")

	cfg, err := config.LoadConfig(writeConfig(t, ""))
	require.NoError(t, err)
	assert.Equal(t, "/legacy/cache", cfg.Cache.Directory)
}

func TestLoadConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{"bad size", "limits:\n  max_file_size: \"huge\"\n", config.ErrInvalidLimit},
		{"zero token length", "preprocess:\n  min_token_length: 0\n", config.ErrInvalidTokenLength},
		{"zero topics", "topics:\n  num_topics: 0\n", config.ErrInvalidTopics},
		{"negative retries", "summarizer:\n  max_retries: -1\n", config.ErrInvalidRetries},
		{"empty dsn", "store:\n  enabled: true\n  dsn: \"\"\n", config.ErrMissingDSN},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.LoadConfig(writeConfig(t, tt.content))
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestLoadConfigMalformedFile(t *testing.T) {
	_, err := config.LoadConfig(writeConfig(t, "limits: [unclosed"))
	require.Error(t, err)
}
