package intent

import (
	"testing"

	"github.com/shopassist/shopsearch/internal/heuristics"
	"github.com/shopassist/shopsearch/pkg/types"
)

func TestEnrichPrice(t *testing.T) {
	tests := []struct {
		name      string
		message   string
		wantMin   float64
		wantMax   float64
		hasMin    bool
		hasMax    bool
		mentioned float64
	}{
		{"explicit range", "phones $300-$500", 300, 500, true, true, 500},
		{"reversed range normalized", "phones 500-300", 300, 500, true, true, 500},
		{"between and", "laptops between 100 and 200", 100, 200, true, true, 200},
		{"from to", "from $50 to $80", 50, 80, true, true, 80},
		{"under", "headphones under 300", 0, 300, false, true, 300},
		{"less than", "less than $150", 0, 150, false, true, 150},
		{"at most", "at most 999 dollars", 0, 999, false, true, 999},
		{"or less trailing", "phones $300 or less", 0, 300, false, true, 300},
		{"or less without dollar sign", "something 250 or less", 0, 250, false, true, 250},
		{"over", "watches over 50", 50, 0, true, false, 50},
		{"at least", "at least $200", 200, 0, true, false, 200},
		{"around plus minus 20pct", "around 100", 80, 120, true, true, 100},
		{"no price", "show me laptops", 0, 0, false, false, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &types.Classification{}
			enrichPrice(tt.message, c)

			if (c.PriceMin != nil) != tt.hasMin {
				t.Fatalf("PriceMin presence = %v, want %v", c.PriceMin != nil, tt.hasMin)
			}
			if tt.hasMin && *c.PriceMin != tt.wantMin {
				t.Errorf("PriceMin = %f, want %f", *c.PriceMin, tt.wantMin)
			}
			if (c.PriceMax != nil) != tt.hasMax {
				t.Fatalf("PriceMax presence = %v, want %v", c.PriceMax != nil, tt.hasMax)
			}
			if tt.hasMax && *c.PriceMax != tt.wantMax {
				t.Errorf("PriceMax = %f, want %f", *c.PriceMax, tt.wantMax)
			}
			if tt.hasMin || tt.hasMax {
				if c.PriceMentioned == nil || *c.PriceMentioned != tt.mentioned {
					t.Errorf("PriceMentioned = %v, want %f", c.PriceMentioned, tt.mentioned)
				}
			}
		})
	}
}

func TestEnrichFiltersRating(t *testing.T) {
	cfg := heuristics.Default()

	tests := []struct {
		message string
		want    float64
	}{
		{"laptops with 4+ stars", 4},
		{"at least 4.5 stars", 4.5},
		{"rating above 3", 3},
		{"3 stars or more", 3},
	}
	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			c := &types.Classification{Source: types.SourceKeyword}
			enrichFilters(tt.message, c, cfg, nil)
			if c.RatingMin == nil || *c.RatingMin != tt.want {
				t.Errorf("RatingMin = %v, want %f", c.RatingMin, tt.want)
			}
		})
	}
}

func TestEnrichFiltersStock(t *testing.T) {
	cfg := heuristics.Default()

	t.Run("in stock", func(t *testing.T) {
		c := &types.Classification{}
		enrichFilters("phones in stock", c, cfg, nil)
		if c.InStock == nil || !*c.InStock {
			t.Errorf("InStock = %v, want true", c.InStock)
		}
	})

	t.Run("out of stock", func(t *testing.T) {
		c := &types.Classification{}
		enrichFilters("which ones are sold out", c, cfg, nil)
		if c.InStock == nil || *c.InStock {
			t.Errorf("InStock = %v, want false", c.InStock)
		}
	})

	t.Run("unmentioned", func(t *testing.T) {
		c := &types.Classification{}
		enrichFilters("show me phones", c, cfg, nil)
		if c.InStock != nil {
			t.Errorf("InStock = %v, want nil", c.InStock)
		}
	})
}

func TestEnrichFiltersDiscount(t *testing.T) {
	cfg := heuristics.Default()

	c := &types.Classification{}
	enrichFilters("laptops with 20% off", c, cfg, nil)
	if c.DiscountMin == nil || *c.DiscountMin != 20 {
		t.Errorf("DiscountMin = %v, want 20", c.DiscountMin)
	}
}

func TestEnrichFiltersBrand(t *testing.T) {
	cfg := heuristics.Default()
	brands := []string{"Acme", "Zenix"}

	tests := []struct {
		name    string
		message string
		want    string
	}{
		{"by pattern", "headphones by acme", "Acme"},
		{"from pattern", "anything from zenix", "Zenix"},
		{"brand label", "brand: acme", "Acme"},
		{"only with generic noun trimmed", "only Acme phones", "Acme"},
		{"capitalized before generic noun", "Zenix phones under 500", "Zenix"},
		{"no brand", "cheap wireless headphones", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &types.Classification{Source: types.SourceKeyword}
			enrichFilters(tt.message, c, cfg, brands)
			if c.Entities.Brand != tt.want {
				t.Errorf("brand = %q, want %q", c.Entities.Brand, tt.want)
			}
		})
	}
}

func TestEnrichFiltersBrandFromLLMKept(t *testing.T) {
	cfg := heuristics.Default()

	c := &types.Classification{Source: types.SourcePrimary}
	c.Entities.Brand = "Zenix"
	enrichFilters("something by acme", c, cfg, []string{"Acme", "Zenix"})
	if c.Entities.Brand != "Zenix" {
		t.Errorf("LLM-provided brand overridden: %q", c.Entities.Brand)
	}
}

func TestEnrichFiltersTags(t *testing.T) {
	cfg := heuristics.Default()

	t.Run("hashtags", func(t *testing.T) {
		c := &types.Classification{}
		enrichFilters("laptops #gaming #rgb #gaming", c, cfg, nil)
		if len(c.Tags) != 2 || c.Tags[0] != "gaming" || c.Tags[1] != "rgb" {
			t.Errorf("tags = %v", c.Tags)
		}
	})

	t.Run("with features", func(t *testing.T) {
		c := &types.Classification{}
		enrichFilters("a watch with waterproof, leather-strap", c, cfg, nil)
		if len(c.Tags) != 2 || c.Tags[0] != "waterproof" || c.Tags[1] != "leather-strap" {
			t.Errorf("tags = %v", c.Tags)
		}
	})
}

func TestEnrichRefine(t *testing.T) {
	tests := []struct {
		name     string
		message  string
		isRefine bool
		hint     string
	}{
		{"cheaper", "show me cheaper ones", true, "price_cheaper"},
		{"upper bound", "under $200 please", true, "price_upper_bound"},
		{"lower bound", "at least $100", true, "price_lower_bound"},
		{"only constraint", "only acme", true, "constraint_only"},
		{"rating", "better rated options", true, "rating_higher"},
		{"stock", "which are in stock", true, "in_stock"},
		{"not a refine", "show me laptops", false, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &types.Classification{}
			enrichRefine(tt.message, c)
			if c.IsRefine != tt.isRefine {
				t.Fatalf("IsRefine = %v, want %v", c.IsRefine, tt.isRefine)
			}
			if tt.hint != "" {
				found := false
				for _, h := range c.RefineHints {
					if h == tt.hint {
						found = true
					}
				}
				if !found {
					t.Errorf("hints = %v, want %q present", c.RefineHints, tt.hint)
				}
			}
		})
	}
}

func TestFuzzyMatching(t *testing.T) {
	t.Run("identical is 100", func(t *testing.T) {
		if got := similarityPct("laptops", "laptops"); got != 100 {
			t.Errorf("similarityPct = %d", got)
		}
	})

	t.Run("disjoint is low", func(t *testing.T) {
		if got := similarityPct("laptops", "zzz"); got > 20 {
			t.Errorf("similarityPct = %d", got)
		}
	})

	t.Run("best candidate with margin", func(t *testing.T) {
		best, bestScore, second := bestFuzzyCandidate(
			[]string{"Laptops", "Tablets"}, []string{"laptops"}, "laptops")
		if best != "Laptops" || bestScore != 100 {
			t.Errorf("best = %q (%d)", best, bestScore)
		}
		if bestScore-second < 3 {
			t.Errorf("margin too small: %d vs %d", bestScore, second)
		}
	})
}
