// Package rerank reorders retrieval candidates with a blended score so that
// raw similarity is tempered by rating, discount and price fit.
package rerank

import (
	"sort"

	"github.com/shopassist/shopsearch/pkg/types"
)

// Blend weights. They sum to 1 so scores stay in [0, 1] for unit-range
// inputs.
const (
	weightSimilarity = 0.6
	weightRating     = 0.2
	weightDiscount   = 0.1
	weightPrice      = 0.1
)

// discountCap limits the discount contribution so extreme markdowns cannot
// dominate the ordering.
const discountCap = 50.0

// Score computes the blended ranking score for one candidate. Similarity may
// be zero for keyword-fallback results; that contributes nothing rather than
// failing. Price affinity is binary: 1 when the price falls inside the
// requested bounds (an unset bound is unconstrained), 0 otherwise.
func Score(similarity float64, p types.Product, spec *types.FilterSpec) float64 {
	if similarity < 0 {
		similarity = 0
	}

	discount := p.EffectiveDiscount()
	if discount > discountCap {
		discount = discountCap
	}

	return weightSimilarity*similarity +
		weightRating*(p.Rating/5.0) +
		weightDiscount*(discount/discountCap) +
		weightPrice*priceAffinity(p.Price, spec)
}

func priceAffinity(price float64, spec *types.FilterSpec) float64 {
	if spec != nil {
		if spec.PriceMin != nil && price < *spec.PriceMin {
			return 0
		}
		if spec.PriceMax != nil && price > *spec.PriceMax {
			return 0
		}
	}
	return 1
}

// Rerank attaches a blended score to every result and, when enabled,
// reorders by it descending. With enabled false the retrieval order is
// preserved exactly, scores still attached, so ranking can be toggled
// without changing what callers receive.
func Rerank(results []types.SearchResult, spec *types.FilterSpec, enabled bool) []types.SearchResult {
	for i := range results {
		results[i].Score = Score(results[i].Similarity, results[i].Product, spec)
	}
	if enabled {
		sort.SliceStable(results, func(i, j int) bool {
			return results[i].Score > results[j].Score
		})
	}
	return results
}
