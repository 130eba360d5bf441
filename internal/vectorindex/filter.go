package vectorindex

import (
	"strings"

	"github.com/shopassist/shopsearch/pkg/types"
)

// Builder translates a FilterSpec into the operator-map filter dialect the
// index understands ($gte, $lte, $gt on numeric fields, exact match on
// strings). Behavior toggles mirror the runtime feature flags: when
// CaseInsensitive is set, brand and category constraints target the
// lowercase shadow fields; when ServerSideTags is set, tag constraints
// become per-tag boolean equality clauses and the caller can skip its
// client-side tag pass.
type Builder struct {
	CaseInsensitive bool
	ServerSideTags  bool
}

// Build produces the metadata filter for a query. contentType is always
// applied so product and support queries stay isolated. A nil FilterSpec or
// one with no constraints yields a filter containing only the type clause.
func (b Builder) Build(spec *types.FilterSpec, contentType string) map[string]any {
	filter := map[string]any{"type": contentType}
	if spec == nil {
		return filter
	}

	if spec.PriceMin != nil || spec.PriceMax != nil {
		price := map[string]any{}
		if spec.PriceMin != nil {
			price["$gte"] = *spec.PriceMin
		}
		if spec.PriceMax != nil {
			price["$lte"] = *spec.PriceMax
		}
		filter["price"] = price
	}

	if spec.Brand != "" {
		if b.CaseInsensitive {
			filter["brand_lc"] = strings.ToLower(spec.Brand)
		} else {
			filter["brand"] = spec.Brand
		}
	}
	if spec.Category != "" {
		if b.CaseInsensitive {
			filter["category_lc"] = strings.ToLower(spec.Category)
		} else {
			filter["category"] = spec.Category
		}
	}

	if spec.RatingMin != nil {
		filter["rating"] = map[string]any{"$gte": *spec.RatingMin}
	}
	if spec.DiscountMin != nil {
		filter["discountPercentage"] = map[string]any{"$gte": *spec.DiscountMin}
	}

	// Stock is constrained only on an explicit in-stock request. "Out of
	// stock" intent is handled client-side, and absence of the field means
	// no stock constraint at all.
	if spec.InStock != nil && *spec.InStock {
		filter["stock"] = map[string]any{"$gt": 0}
	}

	if b.ServerSideTags {
		for _, t := range spec.Tags {
			if norm := NormalizeTag(t); norm != "" {
				filter[TagFlagPrefix+norm] = true
			}
		}
	}

	return filter
}

// MatchesTags reports whether a product carries every requested tag, compared
// in normalized form. Used as the client-side pass when server-side tag
// filtering is disabled.
func MatchesTags(product types.Product, tags []string) bool {
	if len(tags) == 0 {
		return true
	}
	have := make(map[string]bool, len(product.Tags))
	for _, t := range product.Tags {
		have[NormalizeTag(t)] = true
	}
	for _, want := range tags {
		if !have[NormalizeTag(want)] {
			return false
		}
	}
	return true
}
