package catalog

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/shopassist/shopsearch/pkg/types"
)

// Common errors
var (
	ErrNotLoaded = errors.New("catalog not loaded")
	ErrNotFound  = errors.New("product not found")
)

// Loader fetches the full product set from some backing source.
type Loader interface {
	LoadProducts(ctx context.Context) ([]types.Product, error)
}

// Snapshot is an immutable view of the catalog at one load. All lookup
// structures are built once at construction; readers never mutate it.
type Snapshot struct {
	products   []types.Product
	byID       map[string]int
	byCategory map[string][]int
	categories []string
	brands     []string
}

// NewSnapshot builds a snapshot from a product slice.
func NewSnapshot(products []types.Product) *Snapshot {
	s := &Snapshot{
		products:   products,
		byID:       make(map[string]int, len(products)),
		byCategory: make(map[string][]int),
	}
	brandSet := make(map[string]bool)
	for i, p := range products {
		s.byID[p.ID] = i
		cat := strings.ToLower(p.Category)
		s.byCategory[cat] = append(s.byCategory[cat], i)
		if p.Brand != "" {
			brandSet[p.Brand] = true
		}
	}
	for cat := range s.byCategory {
		s.categories = append(s.categories, cat)
	}
	sort.Strings(s.categories)
	for b := range brandSet {
		s.brands = append(s.brands, b)
	}
	sort.Strings(s.brands)
	return s
}

// Len returns the number of products.
func (s *Snapshot) Len() int {
	return len(s.products)
}

// All returns every product in load order.
func (s *Snapshot) All() []types.Product {
	return s.products
}

// ByID looks up a single product.
func (s *Snapshot) ByID(id string) (types.Product, bool) {
	i, ok := s.byID[id]
	if !ok {
		return types.Product{}, false
	}
	return s.products[i], true
}

// ByCategory returns products in a category, matched case-insensitively.
func (s *Snapshot) ByCategory(category string) []types.Product {
	idxs := s.byCategory[strings.ToLower(category)]
	out := make([]types.Product, len(idxs))
	for i, idx := range idxs {
		out[i] = s.products[idx]
	}
	return out
}

// Categories returns the sorted, lowercased category names.
func (s *Snapshot) Categories() []string {
	return s.categories
}

// Brands returns the sorted distinct brand names as they appear in the data.
func (s *Snapshot) Brands() []string {
	return s.brands
}

// Featured returns up to limit of the highest-rated in-stock products.
func (s *Snapshot) Featured(limit int) []types.Product {
	var pool []types.Product
	for _, p := range s.products {
		if p.InStock() {
			pool = append(pool, p)
		}
	}
	sort.SliceStable(pool, func(i, j int) bool {
		return pool[i].Rating > pool[j].Rating
	})
	if limit > 0 && len(pool) > limit {
		pool = pool[:limit]
	}
	return pool
}

// Recommendations returns up to limit products from the same category as the
// seed product, excluding the seed itself, best rated first. Falls back to
// Featured when the seed is unknown.
func (s *Snapshot) Recommendations(seedID string, limit int) []types.Product {
	seed, ok := s.ByID(seedID)
	if !ok {
		return s.Featured(limit)
	}
	var pool []types.Product
	for _, p := range s.ByCategory(seed.Category) {
		if p.ID != seedID {
			pool = append(pool, p)
		}
	}
	sort.SliceStable(pool, func(i, j int) bool {
		return pool[i].Rating > pool[j].Rating
	})
	if limit > 0 && len(pool) > limit {
		pool = pool[:limit]
	}
	return pool
}

// Store holds the current catalog snapshot and swaps it atomically on
// refresh, so readers never see a partially loaded catalog.
type Store struct {
	loader  Loader
	current atomic.Pointer[Snapshot]
	loadMu  sync.Mutex
}

// NewStore creates a store over the given loader. Nothing is loaded until
// Ensure or Refresh is called.
func NewStore(loader Loader) *Store {
	return &Store{loader: loader}
}

// Snapshot returns the current snapshot, or nil before the first load.
func (s *Store) Snapshot() *Snapshot {
	return s.current.Load()
}

// Ensure loads the catalog if it has not been loaded yet. Concurrent callers
// serialize on the load; only one hits the backing source.
func (s *Store) Ensure(ctx context.Context) (*Snapshot, error) {
	if snap := s.current.Load(); snap != nil {
		return snap, nil
	}
	s.loadMu.Lock()
	defer s.loadMu.Unlock()
	if snap := s.current.Load(); snap != nil {
		return snap, nil
	}
	return s.refreshLocked(ctx)
}

// Refresh reloads from the backing source unconditionally. On failure the
// previous snapshot stays in place.
func (s *Store) Refresh(ctx context.Context) (*Snapshot, error) {
	s.loadMu.Lock()
	defer s.loadMu.Unlock()
	return s.refreshLocked(ctx)
}

func (s *Store) refreshLocked(ctx context.Context) (*Snapshot, error) {
	products, err := s.loader.LoadProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	if issues := Validate(products); len(issues) > 0 {
		for _, issue := range issues {
			log.Printf("catalog: %s", issue)
		}
	}
	snap := NewSnapshot(products)
	s.current.Store(snap)
	log.Printf("catalog: loaded %d products, %d categories", snap.Len(), len(snap.Categories()))
	return snap, nil
}

// Categories returns the current snapshot's categories, or nil before the
// first load.
func (s *Store) Categories() []string {
	if snap := s.current.Load(); snap != nil {
		return snap.Categories()
	}
	return nil
}

// Brands returns the current snapshot's brands, or nil before the first load.
func (s *Store) Brands() []string {
	if snap := s.current.Load(); snap != nil {
		return snap.Brands()
	}
	return nil
}

// Validate reports data problems worth logging: duplicate or empty IDs,
// missing titles, negative prices. Offending records still load; validation
// is diagnostic, not a gate.
func Validate(products []types.Product) []string {
	var issues []string
	seen := make(map[string]bool, len(products))
	for i, p := range products {
		switch {
		case p.ID == "":
			issues = append(issues, fmt.Sprintf("record %d: empty product id", i))
		case seen[p.ID]:
			issues = append(issues, fmt.Sprintf("record %d: duplicate product id %q", i, p.ID))
		}
		seen[p.ID] = true
		if p.Title == "" {
			issues = append(issues, fmt.Sprintf("record %d (id %s): empty title", i, p.ID))
		}
		if p.Price < 0 {
			issues = append(issues, fmt.Sprintf("record %d (id %s): negative price %f", i, p.ID, p.Price))
		}
	}
	return issues
}
