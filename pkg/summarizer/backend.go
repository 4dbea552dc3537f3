package summarizer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Backend names reported in logs and metrics.
const (
	BackendOnline = "online"
	BackendLocal  = "local"
)

const maxErrorBody = 512

// Errors returned by backends.
var (
	ErrEmptyResponse = errors.New("summarizer returned an empty response")
	ErrStatus        = errors.New("summarizer returned an error status")
)

// backend sends one prompt and bundle and returns the generated text.
type backend interface {
	name() string
	timeout() time.Duration
	generate(ctx context.Context, hc *http.Client, prompt string, bundle []byte) (string, error)
}

// chatBackend speaks the OpenAI-compatible chat completions protocol.
type chatBackend struct {
	endpoint string
	model    string
	apiKey   string
	limit    time.Duration
}

func (b *chatBackend) name() string           { return BackendOnline }
func (b *chatBackend) timeout() time.Duration { return b.limit }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (b *chatBackend) generate(ctx context.Context, hc *http.Client, prompt string, bundle []byte) (string, error) {
	body := chatRequest{
		Model: b.model,
		Messages: []chatMessage{
			{Role: "system", Content: prompt},
			{Role: "user", Content: string(bundle)},
		},
	}

	var resp chatResponse

	err := postJSON(ctx, hc, strings.TrimRight(b.endpoint, "/")+"/v1/chat/completions", b.apiKey, body, &resp)
	if err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", ErrEmptyResponse
	}

	return resp.Choices[0].Message.Content, nil
}

// generateBackend speaks the Ollama generate protocol.
type generateBackend struct {
	endpoint string
	model    string
	limit    time.Duration
}

func (b *generateBackend) name() string           { return BackendLocal }
func (b *generateBackend) timeout() time.Duration { return b.limit }

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Response string `json:"response"`
}

func (b *generateBackend) generate(ctx context.Context, hc *http.Client, prompt string, bundle []byte) (string, error) {
	body := generateRequest{
		Model:  b.model,
		Prompt: prompt + "\n\n" + string(bundle),
	}

	var resp generateResponse

	err := postJSON(ctx, hc, strings.TrimRight(b.endpoint, "/")+"/api/generate", "", body, &resp)
	if err != nil {
		return "", err
	}

	if strings.TrimSpace(resp.Response) == "" {
		return "", ErrEmptyResponse
	}

	return resp.Response, nil
}

// statusError carries the HTTP status so retries can skip client errors.
type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("%s: %d %s", ErrStatus, e.code, e.body)
}

func (e *statusError) Unwrap() error { return ErrStatus }

func (e *statusError) retryable() bool {
	return e.code == http.StatusTooManyRequests || e.code >= http.StatusInternalServerError
}

func postJSON(ctx context.Context, hc *http.Client, url, apiKey string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	if apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}

	resp, err := hc.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

		return &statusError{code: resp.StatusCode, body: strings.TrimSpace(string(snippet))}
	}

	decodeErr := json.NewDecoder(resp.Body).Decode(out)
	if decodeErr != nil {
		return fmt.Errorf("decode response: %w", decodeErr)
	}

	return nil
}
