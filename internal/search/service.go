package search

import (
	"context"
	"fmt"
	"log"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/shopassist/shopsearch/internal/catalog"
	"github.com/shopassist/shopsearch/internal/embedder"
	"github.com/shopassist/shopsearch/internal/heuristics"
	"github.com/shopassist/shopsearch/internal/rerank"
	"github.com/shopassist/shopsearch/internal/vectorindex"
	"github.com/shopassist/shopsearch/pkg/types"
)

// DefaultLimit bounds result lists when the caller does not specify one.
const DefaultLimit = 5

// Service composes embedding, the vector index, the catalog and reranking
// into the search operations the chat layer calls.
type Service struct {
	catalog  *catalog.Store
	embedder *embedder.Resilient
	index    vectorindex.Index
	heur     *heuristics.Provider

	supportDocs []types.SupportDoc

	queryCache *lru.Cache[string, []types.SearchResult]
}

// Option configures a Service.
type Option func(*Service)

// WithQueryCache enables an LRU cache over search results.
func WithQueryCache(size int) Option {
	return func(s *Service) {
		if cache, err := lru.New[string, []types.SearchResult](size); err == nil {
			s.queryCache = cache
		}
	}
}

// WithSupportDocs supplies the assembled support corpus, used as the
// degraded-mode source when the vector index cannot serve support queries.
func WithSupportDocs(docs []types.SupportDoc) Option {
	return func(s *Service) {
		s.supportDocs = docs
	}
}

// New creates a search service.
func New(cat *catalog.Store, emb *embedder.Resilient, index vectorindex.Index, heur *heuristics.Provider, opts ...Option) *Service {
	s := &Service{
		catalog:  cat,
		embedder: emb,
		index:    index,
		heur:     heur,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Search runs the full retrieval pipeline: semantic search with metadata
// filters, keyword fallback when the index is unavailable or empty, tag
// post-filtering, reranking, truncation.
//
// An unloadable catalog is the one fatal condition. Everything downstream
// degrades: index failures fall through to keyword search, and no results is
// an empty list, never an error.
func (s *Service) Search(ctx context.Context, query string, spec *types.FilterSpec, limit int) ([]types.SearchResult, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	snap, err := s.catalog.Ensure(ctx)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	cacheKey := ""
	if s.queryCache != nil {
		cacheKey = searchCacheKey(query, spec, limit)
		if cached, ok := s.queryCache.Get(cacheKey); ok {
			return cloneResults(cached), nil
		}
	}

	flags := s.heur.Current().FeatureFlags
	results := s.vectorSearch(ctx, query, spec, limit, flags)
	if len(results) == 0 {
		results = s.keywordFallback(snap, query, spec, limit)
	}

	if !flags.ServerSideTagFilter && spec != nil && len(spec.Tags) > 0 {
		filtered := results[:0]
		for _, r := range results {
			if vectorindex.MatchesTags(r.Product, spec.Tags) {
				filtered = append(filtered, r)
			}
		}
		results = filtered
	}

	results = rerank.Rerank(results, spec, flags.RerankEnabled)
	if len(results) > limit {
		results = results[:limit]
	}

	if s.queryCache != nil {
		s.queryCache.Add(cacheKey, cloneResults(results))
	}
	return results, nil
}

// vectorSearch embeds the query and runs a filtered index query. Any failure
// returns nil so the caller falls back to keyword search.
func (s *Service) vectorSearch(ctx context.Context, query string, spec *types.FilterSpec, limit int, flags heuristics.FeatureFlags) []types.SearchResult {
	vec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		log.Printf("search: embed failed, using keyword fallback: %v", err)
		return nil
	}

	builder := vectorindex.Builder{
		CaseInsensitive: flags.CaseInsensitiveFilter,
		ServerSideTags:  flags.ServerSideTagFilter,
	}
	filter := builder.Build(spec, vectorindex.TypeProduct)

	// Over-fetch so client-side tag filtering still fills the page.
	topK := limit
	if !flags.ServerSideTagFilter && spec != nil && len(spec.Tags) > 0 {
		topK = limit * 3
	}

	matches, err := s.index.Query(ctx, vec, filter, topK)
	if err != nil {
		log.Printf("search: index query failed, using keyword fallback: %v", err)
		return nil
	}

	results := make([]types.SearchResult, 0, len(matches))
	for _, m := range matches {
		results = append(results, types.SearchResult{
			Product:    vectorindex.ProductFromMetadata(m.ID, m.Metadata),
			Similarity: m.Score,
		})
	}
	return results
}

// keywordFallback searches the cached catalog, attaching decreasing
// pseudo-similarity scores so downstream ranking has a value to work with.
func (s *Service) keywordFallback(snap *catalog.Snapshot, query string, spec *types.FilterSpec, limit int) []types.SearchResult {
	log.Printf("search: keyword fallback for %q", query)
	products := snap.KeywordSearch(query, spec, limit)
	results := make([]types.SearchResult, len(products))
	for i, p := range products {
		results[i] = types.SearchResult{
			Product:    p,
			Similarity: 1.0 - float64(i)*0.1,
		}
	}
	return results
}

// SearchSupport retrieves support documents for a policy question. When the
// index cannot serve the query, it degrades to a substring scan over the
// assembled support corpus.
func (s *Service) SearchSupport(ctx context.Context, query string, limit int) ([]types.SupportDoc, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	vec, err := s.embedder.Embed(ctx, query)
	if err == nil {
		filter := vectorindex.Builder{}.Build(nil, vectorindex.TypeSupport)
		matches, qerr := s.index.Query(ctx, vec, filter, limit)
		if qerr == nil {
			docs := make([]types.SupportDoc, 0, len(matches))
			for _, m := range matches {
				doc := vectorindex.SupportDocFromMetadata(m.ID, m.Metadata)
				doc.Score = m.Score
				docs = append(docs, doc)
			}
			if len(docs) > 0 {
				return docs, nil
			}
		} else {
			log.Printf("search: support index query failed, using static corpus: %v", qerr)
		}
	}

	return s.staticSupportDocs(query, limit), nil
}

func (s *Service) staticSupportDocs(query string, limit int) []types.SupportDoc {
	tokens := strings.Fields(strings.ToLower(query))
	var docs []types.SupportDoc
	for _, d := range s.supportDocs {
		content := strings.ToLower(d.Content)
		hit := len(tokens) == 0
		for _, tok := range tokens {
			if strings.Contains(content, tok) {
				hit = true
				break
			}
		}
		if hit {
			d.Score = 1.0 - float64(len(docs))*0.1
			docs = append(docs, d)
			if len(docs) == limit {
				break
			}
		}
	}
	return docs
}

// Refresh reloads the catalog from its backing source.
func (s *Service) Refresh(ctx context.Context) error {
	_, err := s.catalog.Refresh(ctx)
	if s.queryCache != nil {
		s.queryCache.Purge()
	}
	return err
}

func searchCacheKey(query string, spec *types.FilterSpec, limit int) string {
	var b strings.Builder
	b.WriteString(strings.ToLower(strings.TrimSpace(query)))
	fmt.Fprintf(&b, "|%d|", limit)
	if spec != nil {
		fmt.Fprintf(&b, "%v|%v|%s|%s|%v|%v|%v|%v",
			ptr(spec.PriceMin), ptr(spec.PriceMax), spec.Brand, spec.Category,
			ptr(spec.RatingMin), spec.InStock != nil && *spec.InStock, ptr(spec.DiscountMin), spec.Tags)
	}
	return embedder.ComputeHash(b.String())
}

func ptr(f *float64) float64 {
	if f == nil {
		return -1
	}
	return *f
}

func cloneResults(in []types.SearchResult) []types.SearchResult {
	out := make([]types.SearchResult, len(in))
	copy(out, in)
	return out
}
