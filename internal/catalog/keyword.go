package catalog

import (
	"strings"

	"github.com/shopassist/shopsearch/internal/vectorindex"
	"github.com/shopassist/shopsearch/pkg/types"
)

// MatchesFilter reports whether a product satisfies every constraint in the
// spec. Stock behaves exactly like the server-side filter: only an explicit
// in-stock request constrains it, false is equivalent to unset.
func MatchesFilter(p types.Product, spec *types.FilterSpec) bool {
	if spec == nil {
		return true
	}
	if spec.PriceMin != nil && p.Price < *spec.PriceMin {
		return false
	}
	if spec.PriceMax != nil && p.Price > *spec.PriceMax {
		return false
	}
	if spec.Brand != "" && !strings.EqualFold(p.Brand, spec.Brand) {
		return false
	}
	if spec.Category != "" && !strings.EqualFold(p.Category, spec.Category) {
		return false
	}
	if spec.RatingMin != nil && p.Rating < *spec.RatingMin {
		return false
	}
	if spec.DiscountMin != nil && p.EffectiveDiscount() < *spec.DiscountMin {
		return false
	}
	if spec.InStock != nil && *spec.InStock && !p.InStock() {
		return false
	}
	return vectorindex.MatchesTags(p, spec.Tags)
}

// matchesKeywords reports whether every query token appears as a substring
// of the product's title, description or category.
func matchesKeywords(p types.Product, tokens []string) bool {
	if len(tokens) == 0 {
		return true
	}
	haystack := strings.ToLower(p.Title + " " + p.Description + " " + p.Category)
	for _, tok := range tokens {
		if !strings.Contains(haystack, tok) {
			return false
		}
	}
	return true
}

// KeywordSearch is the non-semantic fallback path. Filters take priority
// over keywords: the first pass requires both the filter and every token to
// match; if that yields nothing and a filter is present, a second pass
// returns filter-only matches, because a user asking for "headphones under
// $50" is better served by in-budget products than by nothing.
func (s *Snapshot) KeywordSearch(query string, spec *types.FilterSpec, limit int) []types.Product {
	tokens := strings.Fields(strings.ToLower(query))

	collect := func(withKeywords bool) []types.Product {
		var out []types.Product
		for _, p := range s.products {
			if !MatchesFilter(p, spec) {
				continue
			}
			if withKeywords && !matchesKeywords(p, tokens) {
				continue
			}
			out = append(out, p)
			if limit > 0 && len(out) == limit {
				break
			}
		}
		return out
	}

	results := collect(true)
	if len(results) == 0 && spec != nil && !spec.IsZero() && len(tokens) > 0 {
		results = collect(false)
	}
	return results
}
