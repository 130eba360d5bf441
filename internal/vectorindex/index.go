package vectorindex

import (
	"context"
	"errors"
)

// Content type discriminator values. Every record carries one, and every
// query filters on one, so product and support content never leak into
// each other's results.
const (
	TypeProduct = "product"
	TypeSupport = "support"
)

// UpsertBatchSize is the number of records sent per upsert request, keeping
// individual requests under the index service's payload limits.
const UpsertBatchSize = 100

// Common errors
var (
	ErrUnavailable = errors.New("vector index unavailable")
	ErrDimension   = errors.New("vector dimension mismatch")
)

// Record is an embedding plus its metadata snapshot, as stored in the index.
type Record struct {
	ID       string
	Vector   []float32
	Metadata map[string]any
}

// Match is a single query result. Score is the index's native relevance
// score, higher is better.
type Match struct {
	ID       string
	Score    float64
	Metadata map[string]any
}

// Stats describes the state of an index.
type Stats struct {
	VectorCount int
	Dimension   int
}

// Index is the contract both the remote client and the in-memory double
// satisfy. Callers must treat any error as "index unavailable" and fall
// back to keyword search rather than propagating it.
type Index interface {
	Upsert(ctx context.Context, records []Record) error
	Query(ctx context.Context, vector []float32, filter map[string]any, topK int) ([]Match, error)
	Clear(ctx context.Context) error
	Stats(ctx context.Context) (Stats, error)
}

// inBatches invokes fn over records in chunks of size.
func inBatches(records []Record, size int, fn func([]Record) error) error {
	for start := 0; start < len(records); start += size {
		end := start + size
		if end > len(records) {
			end = len(records)
		}
		if err := fn(records[start:end]); err != nil {
			return err
		}
	}
	return nil
}
