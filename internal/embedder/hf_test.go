package embedder

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingRecorder struct {
	n atomic.Int64
}

func (c *countingRecorder) RecordEmbedding(_ context.Context) {
	c.n.Add(1)
}

func serveVector(t *testing.T, dim int) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Inputs []string `json:"inputs"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Inputs, 1)

		vec := make([]float32, dim)
		vec[0] = 0.5
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode([][]float32{vec})
	}
}

func TestHFProviderSuccess(t *testing.T) {
	usage := &countingRecorder{}
	server := httptest.NewServer(serveVector(t, Dimension))
	defer server.Close()

	p := NewHFProvider("test-key", "", WithEndpoint(server.URL), WithUsageRecorder(usage))

	vec, err := p.Embed(context.Background(), "wireless headset")
	require.NoError(t, err)
	assert.Len(t, vec, Dimension)
	assert.Equal(t, float32(0.5), vec[0])
	assert.Equal(t, int64(1), usage.n.Load(), "usage recorded once per successful call")
}

func TestHFProviderRetriesServerErrors(t *testing.T) {
	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "backend overloaded", http.StatusServiceUnavailable)
			return
		}
		serveVector(t, Dimension)(w, r)
	}))
	defer server.Close()

	p := NewHFProvider("test-key", "", WithEndpoint(server.URL))

	vec, err := p.Embed(context.Background(), "laptop")
	require.NoError(t, err)
	assert.Len(t, vec, Dimension)
	assert.Equal(t, int64(3), calls.Load(), "two failures then success")
}

func TestHFProviderNoRetryOnClientError(t *testing.T) {
	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "bad request", http.StatusBadRequest)
	}))
	defer server.Close()

	p := NewHFProvider("test-key", "", WithEndpoint(server.URL))

	_, err := p.Embed(context.Background(), "laptop")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrProviderFailed)
	assert.Equal(t, int64(1), calls.Load(), "4xx must not be retried")
}

func TestHFProviderNoUsageOnFailure(t *testing.T) {
	usage := &countingRecorder{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadRequest)
	}))
	defer server.Close()

	p := NewHFProvider("test-key", "", WithEndpoint(server.URL), WithUsageRecorder(usage))

	_, err := p.Embed(context.Background(), "laptop")
	require.Error(t, err)
	assert.Equal(t, int64(0), usage.n.Load())
}

func TestResilientFallsBackAfterExhaustion(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer server.Close()

	p := NewHFProvider("test-key", "", WithEndpoint(server.URL))
	r := NewResilient(p, nil)

	v1, err := r.Embed(context.Background(), "hello world")
	require.NoError(t, err, "resilient embedder must not surface provider failure")
	v2, err := r.Embed(context.Background(), "hello world")
	require.NoError(t, err)

	assert.Equal(t, v1, v2, "fallback vectors must be bit-identical")
}
