package embedder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Retry configuration for the inference API. The request timeout escalates
// with each attempt (15s, 30s, 45s) and the delay between attempts grows
// linearly. Client errors (4xx) are never retried.
const (
	MaxRetries       = 3
	BaseTimeout      = 15 * time.Second
	BaseRetryDelay   = 2 * time.Second
	DefaultHFModel   = "BAAI/bge-small-en-v1.5"
	hfInferenceURL   = "https://api-inference.huggingface.co/models/"
	maxErrorBodySize = 4096
)

// statusError carries the HTTP status of a failed API call so the retry
// loop can distinguish client errors from transient failures.
type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.code, e.body)
}

func (e *statusError) retryable() bool {
	return e.code < 400 || e.code >= 500
}

// HFProvider generates embeddings via the Hugging Face inference API.
type HFProvider struct {
	apiKey     string
	url        string
	httpClient *http.Client
	usage      UsageRecorder
}

// HFOption configures an HFProvider.
type HFOption func(*HFProvider)

// WithEndpoint overrides the inference endpoint URL (used by tests and
// self-hosted inference deployments).
func WithEndpoint(url string) HFOption {
	return func(p *HFProvider) { p.url = url }
}

// WithUsageRecorder attaches a usage counter notified on successful calls.
func WithUsageRecorder(u UsageRecorder) HFOption {
	return func(p *HFProvider) { p.usage = u }
}

// NewHFProvider creates a Hugging Face inference API embedder for model.
// An empty model selects the default sentence-embedding model.
func NewHFProvider(apiKey, model string, opts ...HFOption) *HFProvider {
	if model == "" {
		model = DefaultHFModel
	}
	p := &HFProvider{
		apiKey: apiKey,
		url:    hfInferenceURL + model,
		// Per-request timeouts are applied via context so they can
		// escalate per attempt; the client itself has no deadline.
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Embed calls the inference API with retries. Timeouts and server errors
// are retried with escalating per-attempt timeouts; 4xx responses abort
// immediately. The caller (Resilient) handles fallback on error.
func (p *HFProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, ErrEmptyText
	}

	var lastErr error
	for attempt := 1; attempt <= MaxRetries; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, BaseTimeout*time.Duration(attempt))
		vec, err := p.callAPI(attemptCtx, text)
		cancel()

		if err == nil {
			if p.usage != nil {
				p.usage.RecordEmbedding(ctx)
			}
			return vec, nil
		}
		lastErr = err

		if se, ok := err.(*statusError); ok && !se.retryable() {
			break
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if attempt < MaxRetries {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(BaseRetryDelay * time.Duration(attempt)):
			}
		}
	}

	return nil, fmt.Errorf("%w: %v", ErrProviderFailed, lastErr)
}

func (p *HFProvider) callAPI(ctx context.Context, text string) ([]float32, error) {
	body, err := json.Marshal(map[string]any{"inputs": []string{text}})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if p.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("api call: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		return nil, &statusError{code: resp.StatusCode, body: string(b)}
	}

	// The feature-extraction pipeline returns one vector per input string.
	var embeddings [][]float32
	if err := json.NewDecoder(resp.Body).Decode(&embeddings); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(embeddings) == 0 || len(embeddings[0]) == 0 {
		return nil, fmt.Errorf("%w: empty embedding response", ErrProviderFailed)
	}

	return embeddings[0], nil
}

// Dimension returns the embedding dimension.
func (p *HFProvider) Dimension() int {
	return Dimension
}
