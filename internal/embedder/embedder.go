package embedder

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Common errors
var (
	ErrEmptyText      = errors.New("text cannot be empty")
	ErrProviderFailed = errors.New("embedding provider failed")
)

// Dimension is the fixed embedding dimension (BAAI/bge-small-en-v1.5).
const Dimension = 384

// Embedder converts text into a fixed-dimension vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimension() int
}

// UsageRecorder receives a notification for each successful remote embedding
// call. Implementations typically increment a monthly usage counter for
// free-tier monitoring; recording failures must not fail the embedding.
type UsageRecorder interface {
	RecordEmbedding(ctx context.Context)
}

// Cache provides in-memory LRU caching of embeddings keyed by content hash.
type Cache struct {
	cache *lru.Cache[string, []float32]
}

// NewCache creates an embedding cache with LRU eviction.
func NewCache(maxLen int) *Cache {
	if maxLen <= 0 {
		maxLen = 10000
	}
	cache, err := lru.New[string, []float32](maxLen)
	if err != nil {
		// Only possible with a non-positive size, which we just ruled out.
		cache, _ = lru.New[string, []float32](10000)
	}
	return &Cache{cache: cache}
}

// Get retrieves a copy of a cached vector so caller mutations cannot
// pollute the cache.
func (c *Cache) Get(hash string) ([]float32, bool) {
	v, ok := c.cache.Get(hash)
	if !ok {
		return nil, false
	}
	out := make([]float32, len(v))
	copy(out, v)
	return out, true
}

// Set stores a vector; LRU eviction is automatic at capacity.
func (c *Cache) Set(hash string, v []float32) {
	c.cache.Add(hash, v)
}

// Size returns the current cache size.
func (c *Cache) Size() int {
	return c.cache.Len()
}

// Clear empties the cache.
func (c *Cache) Clear() {
	c.cache.Purge()
}

// ComputeHash computes the SHA-256 hash of text for cache keying.
func ComputeHash(text string) string {
	h := sha256.Sum256([]byte(text))
	return hex.EncodeToString(h[:])
}

// Resilient wraps a remote provider with a deterministic fallback so that
// Embed never fails: when the remote provider exhausts its retries the
// fallback vector is returned instead. Results are cached by content hash.
type Resilient struct {
	primary  Embedder
	fallback *Fallback
	cache    *Cache
}

// NewResilient builds the never-fails embedder used by the search path.
// primary may be nil, in which case every call uses the fallback generator.
func NewResilient(primary Embedder, cache *Cache) *Resilient {
	return &Resilient{
		primary:  primary,
		fallback: NewFallback(Dimension),
		cache:    cache,
	}
}

// Embed returns a vector for text. The error return is always nil except
// for empty input; remote failures degrade to the deterministic fallback.
func (r *Resilient) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, ErrEmptyText
	}

	hash := ComputeHash(text)
	if r.cache != nil {
		if v, ok := r.cache.Get(hash); ok {
			return v, nil
		}
	}

	var vec []float32
	if r.primary != nil {
		v, err := r.primary.Embed(ctx, text)
		if err == nil {
			vec = v
		}
	}
	if vec == nil {
		v, err := r.fallback.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		vec = v
	}

	if r.cache != nil {
		r.cache.Set(hash, vec)
	}
	return vec, nil
}

// Dimension returns the embedding dimension.
func (r *Resilient) Dimension() int {
	return Dimension
}
