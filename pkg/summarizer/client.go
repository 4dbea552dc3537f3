// Package summarizer requests a prose summary of an analysis from an
// external language-model service.
package summarizer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/COSC-499-W2025/capstone-project-team-12-sub000/pkg/config"
	"github.com/COSC-499-W2025/capstone-project-team-12-sub000/pkg/observability"
)

// ErrNoBackend is returned when neither the online nor the local endpoint is usable.
var ErrNoBackend = errors.New("no summarizer backend configured")

// DefaultPrompt asks for a medium-length portfolio summary.
const DefaultPrompt = "You are given a JSON analysis of a developer's files and repositories. " +
	"Write a concise, factual portfolio summary of about two paragraphs describing their skills, " +
	"main projects, role and timeline. Do not invent facts that are not in the data."

// Client sends summary requests, retrying transient failures.
type Client struct {
	backend    backend
	httpClient *http.Client
	maxRetries uint
	newBackOff func() backoff.BackOff
	logger     *slog.Logger
	metrics    *observability.PipelineMetrics
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMetrics records request outcomes.
func WithMetrics(pm *observability.PipelineMetrics) Option {
	return func(c *Client) {
		c.metrics = pm
	}
}

// WithBackOff sets the retry schedule factory.
func WithBackOff(fn func() backoff.BackOff) Option {
	return func(c *Client) {
		if fn != nil {
			c.newBackOff = fn
		}
	}
}

// New builds a client from cfg. The online backend is used when its endpoint
// and API key are present and the endpoint parses; otherwise the client falls
// back to the local backend.
func New(cfg config.SummarizerConfig, opts ...Option) (*Client, error) {
	c := &Client{
		httpClient: &http.Client{},
		maxRetries: uint(max(cfg.MaxRetries, 0)),
		newBackOff: func() backoff.BackOff { return backoff.NewExponentialBackOff() },
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	online, onlineErr := onlineBackend(cfg)
	if onlineErr == nil {
		c.backend = online

		return c, nil
	}

	c.logger.Info("online summarizer unavailable, using local backend", "reason", onlineErr)

	local, localErr := localBackend(cfg)
	if localErr != nil {
		return nil, errors.Join(ErrNoBackend, onlineErr, localErr)
	}

	c.backend = local

	return c, nil
}

func onlineBackend(cfg config.SummarizerConfig) (*chatBackend, error) {
	if cfg.OnlineEndpoint == "" {
		return nil, errors.New("online endpoint not set")
	}

	if cfg.APIKey == "" {
		return nil, errors.New("online api key not set")
	}

	err := checkEndpoint(cfg.OnlineEndpoint)
	if err != nil {
		return nil, err
	}

	return &chatBackend{
		endpoint: cfg.OnlineEndpoint,
		model:    cfg.Model,
		apiKey:   cfg.APIKey,
		limit:    orDefault(cfg.OnlineTimeout, config.DefaultOnlineTimeout),
	}, nil
}

func localBackend(cfg config.SummarizerConfig) (*generateBackend, error) {
	if cfg.LocalEndpoint == "" {
		return nil, errors.New("local endpoint not set")
	}

	err := checkEndpoint(cfg.LocalEndpoint)
	if err != nil {
		return nil, err
	}

	return &generateBackend{
		endpoint: cfg.LocalEndpoint,
		model:    cfg.Model,
		limit:    orDefault(cfg.LocalTimeout, config.DefaultLocalTimeout),
	}, nil
}

func checkEndpoint(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("parse endpoint %q: %w", raw, err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("endpoint %q: unsupported scheme %q", raw, u.Scheme)
	}

	return nil
}

func orDefault(d, def time.Duration) time.Duration {
	if d <= 0 {
		return def
	}

	return d
}

// Backend reports which backend the client selected.
func (c *Client) Backend() string {
	return c.backend.name()
}

// Summarize validates bundle and asks the backend for a summary. Each attempt
// runs under the backend's request timeout; server errors and transport
// failures are retried up to the configured limit.
func (c *Client) Summarize(ctx context.Context, prompt string, bundle any) (string, error) {
	raw, err := EncodeBundle(bundle)
	if err != nil {
		return "", err
	}

	name := c.backend.name()

	attempt := func() (string, error) {
		reqCtx, cancel := context.WithTimeout(ctx, c.backend.timeout())
		defer cancel()

		text, genErr := c.backend.generate(reqCtx, c.httpClient, prompt, raw)
		if genErr == nil {
			return text, nil
		}

		var se *statusError
		if errors.As(genErr, &se) && !se.retryable() {
			return "", backoff.Permanent(genErr)
		}

		return "", genErr
	}

	text, err := backoff.Retry(ctx, attempt,
		backoff.WithBackOff(c.newBackOff()),
		backoff.WithMaxTries(c.maxRetries+1),
		backoff.WithNotify(func(retryErr error, next time.Duration) {
			c.logger.DebugContext(ctx, "summarizer request failed, retrying",
				"backend", name, "error", retryErr, "next", next)
		}),
	)
	if err != nil {
		c.metrics.SummaryRequest(ctx, name, observability.StatusError)

		return "", fmt.Errorf("summarize via %s backend: %w", name, err)
	}

	c.metrics.SummaryRequest(ctx, name, observability.StatusOK)

	return text, nil
}
