package summarizer_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/cenkalti/backoff/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/COSC-499-W2025/capstone-project-team-12-sub000/pkg/config"
	"github.com/COSC-499-W2025/capstone-project-team-12-sub000/pkg/summarizer"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func respond(code int, body string) *http.Response {
	return &http.Response{
		StatusCode: code,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     make(http.Header),
	}
}

func validBundle() map[string]any {
	return map[string]any{
		"metadata_analysis": map[string]any{"basic_stats": map[string]any{"total_files": 3}},
		"project_analysis":  map[string]any{"analyzed_insights": []any{}, "timeline": []any{}},
	}
}

func localConfig() config.SummarizerConfig {
	return config.SummarizerConfig{
		LocalEndpoint: "http://localhost:11434",
		Model:         "llama3.1",
		OnlineTimeout: config.DefaultOnlineTimeout,
		LocalTimeout:  config.DefaultLocalTimeout,
		MaxRetries:    2,
	}
}

func newClient(t *testing.T, cfg config.SummarizerConfig, rt roundTripFunc) *summarizer.Client {
	t.Helper()

	c, err := summarizer.New(cfg,
		summarizer.WithHTTPClient(&http.Client{Transport: rt}),
		summarizer.WithBackOff(func() backoff.BackOff { return &backoff.ZeroBackOff{} }),
	)
	require.NoError(t, err)

	return c
}

func TestNew_FallsBackToLocal(t *testing.T) {
	t.Parallel()

	cfg := localConfig()
	cfg.OnlineEndpoint = "https://api.example.com"

	c, err := summarizer.New(cfg)
	require.NoError(t, err)
	assert.Equal(t, summarizer.BackendLocal, c.Backend())

	cfg.APIKey = "secret"

	c, err = summarizer.New(cfg)
	require.NoError(t, err)
	assert.Equal(t, summarizer.BackendOnline, c.Backend())

	cfg.OnlineEndpoint = "ftp://api.example.com"

	c, err = summarizer.New(cfg)
	require.NoError(t, err)
	assert.Equal(t, summarizer.BackendLocal, c.Backend())
}

func TestNew_NoBackend(t *testing.T) {
	t.Parallel()

	_, err := summarizer.New(config.SummarizerConfig{})
	require.ErrorIs(t, err, summarizer.ErrNoBackend)
}

func TestSummarize_Local(t *testing.T) {
	t.Parallel()

	var body map[string]any

	c := newClient(t, localConfig(), func(req *http.Request) (*http.Response, error) {
		assert.Equal(t, "/api/generate", req.URL.Path)
		assert.NoError(t, json.NewDecoder(req.Body).Decode(&body))

		return respond(http.StatusOK, `{"response":"A prolific Go developer."}`), nil
	})

	text, err := c.Summarize(context.Background(), "summarize", validBundle())
	require.NoError(t, err)
	assert.Equal(t, "A prolific Go developer.", text)
	assert.Equal(t, "llama3.1", body["model"])
	assert.Equal(t, false, body["stream"])
	assert.Contains(t, body["prompt"], "project_analysis")
}

func TestSummarize_Online(t *testing.T) {
	t.Parallel()

	cfg := localConfig()
	cfg.OnlineEndpoint = "https://api.example.com/"
	cfg.APIKey = "secret"

	c := newClient(t, cfg, func(req *http.Request) (*http.Response, error) {
		assert.Equal(t, "/v1/chat/completions", req.URL.Path)
		assert.Equal(t, "Bearer secret", req.Header.Get("Authorization"))

		return respond(http.StatusOK, `{"choices":[{"message":{"role":"assistant","content":"Summary."}}]}`), nil
	})

	text, err := c.Summarize(context.Background(), "summarize", validBundle())
	require.NoError(t, err)
	assert.Equal(t, "Summary.", text)
}

func TestSummarize_RetriesServerErrors(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32

	c := newClient(t, localConfig(), func(*http.Request) (*http.Response, error) {
		if calls.Add(1) < 3 {
			return respond(http.StatusBadGateway, "upstream"), nil
		}

		return respond(http.StatusOK, `{"response":"ok"}`), nil
	})

	text, err := c.Summarize(context.Background(), "p", validBundle())
	require.NoError(t, err)
	assert.Equal(t, "ok", text)
	assert.EqualValues(t, 3, calls.Load())
}

func TestSummarize_ExhaustsRetries(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32

	c := newClient(t, localConfig(), func(*http.Request) (*http.Response, error) {
		calls.Add(1)

		return nil, errors.New("connection refused")
	})

	_, err := c.Summarize(context.Background(), "p", validBundle())
	require.Error(t, err)
	assert.EqualValues(t, 3, calls.Load())
}

func TestSummarize_ClientErrorIsPermanent(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32

	c := newClient(t, localConfig(), func(*http.Request) (*http.Response, error) {
		calls.Add(1)

		return respond(http.StatusBadRequest, "bad model"), nil
	})

	_, err := c.Summarize(context.Background(), "p", validBundle())
	require.ErrorIs(t, err, summarizer.ErrStatus)
	assert.EqualValues(t, 1, calls.Load())
}

func TestSummarize_EmptyResponse(t *testing.T) {
	t.Parallel()

	c := newClient(t, localConfig(), func(*http.Request) (*http.Response, error) {
		return respond(http.StatusOK, `{"response":"  "}`), nil
	})

	_, err := c.Summarize(context.Background(), "p", validBundle())
	require.ErrorIs(t, err, summarizer.ErrEmptyResponse)
}

func TestSummarize_InvalidBundle(t *testing.T) {
	t.Parallel()

	c := newClient(t, localConfig(), func(*http.Request) (*http.Response, error) {
		t.Error("no request expected")

		return respond(http.StatusOK, `{"response":"x"}`), nil
	})

	_, err := c.Summarize(context.Background(), "p", map[string]any{"metadata_analysis": map[string]any{}})
	require.ErrorIs(t, err, summarizer.ErrInvalidBundle)
}
