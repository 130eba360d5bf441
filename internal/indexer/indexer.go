// Package indexer builds the vector index from catalog products and support
// documents: validate, embed concurrently, upsert in batches.
package indexer

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/shopassist/shopsearch/internal/catalog"
	"github.com/shopassist/shopsearch/internal/embedder"
	"github.com/shopassist/shopsearch/internal/vectorindex"
	"github.com/shopassist/shopsearch/pkg/types"
)

// DefaultWorkers bounds concurrent embedding calls.
const DefaultWorkers = 4

// Indexer writes embeddings into the vector index.
type Indexer struct {
	embedder *embedder.Resilient
	index    vectorindex.Index
	workers  int
}

// New creates an indexer. workers <= 0 selects DefaultWorkers.
func New(emb *embedder.Resilient, index vectorindex.Index, workers int) *Indexer {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Indexer{embedder: emb, index: index, workers: workers}
}

// Result summarizes an indexing run.
type Result struct {
	Indexed int
	Skipped int
}

// IndexProducts embeds every product's searchable text and upserts the
// records. Products with no embeddable text are skipped and counted, not
// fatal. Embedding runs across a bounded worker pool; upserting happens once
// at the end so a partial failure never leaves half a batch behind.
func (ix *Indexer) IndexProducts(ctx context.Context, products []types.Product) (Result, error) {
	if issues := catalog.Validate(products); len(issues) > 0 {
		for _, issue := range issues {
			log.Printf("indexer: %s", issue)
		}
	}

	records := make([]vectorindex.Record, len(products))
	var mu sync.Mutex
	skipped := 0

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(ix.workers)
	for i, p := range products {
		i, p := i, p
		g.Go(func() error {
			text := vectorindex.SearchableText(p)
			if strings.TrimSpace(text) == "" {
				mu.Lock()
				skipped++
				mu.Unlock()
				log.Printf("indexer: skipping product %s: no embeddable text", p.ID)
				return nil
			}
			vec, err := ix.embedder.Embed(gctx, text)
			if err != nil {
				mu.Lock()
				skipped++
				mu.Unlock()
				log.Printf("indexer: skipping product %s: %v", p.ID, err)
				return nil
			}
			records[i] = vectorindex.Record{
				ID:       p.ID,
				Vector:   vec,
				Metadata: vectorindex.BuildProductMetadata(p),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, fmt.Errorf("embed products: %w", err)
	}

	upsert := records[:0]
	for _, r := range records {
		if r.ID != "" {
			upsert = append(upsert, r)
		}
	}
	if err := ix.index.Upsert(ctx, upsert); err != nil {
		return Result{}, fmt.Errorf("upsert products: %w", err)
	}

	log.Printf("indexer: indexed %d products, skipped %d", len(upsert), skipped)
	return Result{Indexed: len(upsert), Skipped: skipped}, nil
}

// ReindexProducts clears the index and rebuilds it from scratch. Readers of
// a remote index see the swap as a whole, not a mutation in place.
func (ix *Indexer) ReindexProducts(ctx context.Context, products []types.Product) (Result, error) {
	if err := ix.index.Clear(ctx); err != nil {
		return Result{}, fmt.Errorf("clear index: %w", err)
	}
	return ix.IndexProducts(ctx, products)
}

// IndexSupportDocs embeds and upserts support documents.
func (ix *Indexer) IndexSupportDocs(ctx context.Context, docs []types.SupportDoc) (Result, error) {
	records := make([]vectorindex.Record, len(docs))
	var mu sync.Mutex
	skipped := 0

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(ix.workers)
	for i, d := range docs {
		i, d := i, d
		g.Go(func() error {
			vec, err := ix.embedder.Embed(gctx, d.Content)
			if err != nil {
				mu.Lock()
				skipped++
				mu.Unlock()
				log.Printf("indexer: skipping support doc %s: %v", d.ID, err)
				return nil
			}
			records[i] = vectorindex.Record{
				ID:       d.ID,
				Vector:   vec,
				Metadata: vectorindex.BuildSupportMetadata(d),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, fmt.Errorf("embed support docs: %w", err)
	}

	upsert := records[:0]
	for _, r := range records {
		if r.ID != "" {
			upsert = append(upsert, r)
		}
	}
	if err := ix.index.Upsert(ctx, upsert); err != nil {
		return Result{}, fmt.Errorf("upsert support docs: %w", err)
	}

	log.Printf("indexer: indexed %d support docs, skipped %d", len(upsert), skipped)
	return Result{Indexed: len(upsert), Skipped: skipped}, nil
}

// Stats reports the index's current state.
func (ix *Indexer) Stats(ctx context.Context) (vectorindex.Stats, error) {
	return ix.index.Stats(ctx)
}
