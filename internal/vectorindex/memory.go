package vectorindex

import (
	"context"
	"math"
	"sort"
	"sync"
)

// Memory is an in-process Index. It serves as the development and test
// backend, and as the degraded-mode store when no remote index is
// configured. Filter evaluation follows the same operator-map dialect the
// remote index uses, so queries behave identically against either backend.
type Memory struct {
	mu        sync.RWMutex
	records   map[string]Record
	dimension int
}

// NewMemory creates an empty in-memory index expecting vectors of the given
// dimension.
func NewMemory(dimension int) *Memory {
	return &Memory{
		records:   make(map[string]Record),
		dimension: dimension,
	}
}

// Upsert inserts or replaces records by ID.
func (m *Memory) Upsert(_ context.Context, records []Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range records {
		if len(r.Vector) != m.dimension {
			return ErrDimension
		}
		m.records[r.ID] = r
	}
	return nil
}

// Query returns the topK records passing the filter, ordered by cosine
// similarity to the query vector, highest first.
func (m *Memory) Query(_ context.Context, vector []float32, filter map[string]any, topK int) ([]Match, error) {
	if len(vector) != m.dimension {
		return nil, ErrDimension
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	matches := make([]Match, 0, topK)
	for _, r := range m.records {
		if !matchesFilter(r.Metadata, filter) {
			continue
		}
		matches = append(matches, Match{
			ID:       r.ID,
			Score:    cosineSimilarity(vector, r.Vector),
			Metadata: r.Metadata,
		})
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].ID < matches[j].ID
	})
	if topK > 0 && len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

// Clear removes all records.
func (m *Memory) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = make(map[string]Record)
	return nil
}

// Stats reports the record count and configured dimension.
func (m *Memory) Stats(_ context.Context) (Stats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Stats{VectorCount: len(m.records), Dimension: m.dimension}, nil
}

// matchesFilter evaluates an operator-map filter against record metadata.
// Scalar values require equality; map values apply $gte/$lte/$gt comparisons
// on the numeric field.
func matchesFilter(md, filter map[string]any) bool {
	for key, cond := range filter {
		switch want := cond.(type) {
		case map[string]any:
			have, ok := toFloat(md[key])
			if !ok || !matchesOps(have, want) {
				return false
			}
		case bool:
			if got, ok := md[key].(bool); !ok || got != want {
				return false
			}
		case string:
			if got, ok := md[key].(string); !ok || got != want {
				return false
			}
		default:
			wantF, ok := toFloat(want)
			if !ok {
				return false
			}
			haveF, ok := toFloat(md[key])
			if !ok || haveF != wantF {
				return false
			}
		}
	}
	return true
}

func matchesOps(value float64, ops map[string]any) bool {
	for op, raw := range ops {
		bound, ok := toFloat(raw)
		if !ok {
			return false
		}
		switch op {
		case "$gte":
			if value < bound {
				return false
			}
		case "$lte":
			if value > bound {
				return false
			}
		case "$gt":
			if value <= bound {
				return false
			}
		case "$lt":
			if value >= bound {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

// cosineSimilarity computes the cosine of the angle between two vectors.
// Returns 0 for zero-length or mismatched vectors.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
