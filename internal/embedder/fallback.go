package embedder

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"math"
	"math/rand"
)

// Fallback generates deterministic pseudo-embeddings when the inference API
// is unavailable. The vectors carry no semantic meaning; the point is that
// the same text always produces the same unit-length vector, so degraded-mode
// search stays stable and reproducible across calls and restarts.
type Fallback struct {
	dimension int
}

// NewFallback creates a deterministic embedding generator.
func NewFallback(dimension int) *Fallback {
	if dimension <= 0 {
		dimension = Dimension
	}
	return &Fallback{dimension: dimension}
}

// Embed produces a unit-length vector seeded by the text's hash. It never
// fails except on empty input.
func (f *Fallback) Embed(_ context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, ErrEmptyText
	}

	sum := sha256.Sum256([]byte(text))
	seed := int64(binary.BigEndian.Uint64(sum[:8]))
	rng := rand.New(rand.NewSource(seed))

	vec := make([]float32, f.dimension)
	var norm float64
	for i := range vec {
		v := rng.Float64()*2 - 1 // uniform in [-1, 1)
		vec[i] = float32(v)
		norm += v * v
	}

	// Normalize to unit length for cosine similarity.
	if norm > 0 {
		scale := float32(1 / math.Sqrt(norm))
		for i := range vec {
			vec[i] *= scale
		}
	}

	return vec, nil
}

// Dimension returns the embedding dimension.
func (f *Fallback) Dimension() int {
	return f.dimension
}
