package intent

import (
	"testing"

	"github.com/shopassist/shopsearch/internal/heuristics"
	"github.com/shopassist/shopsearch/pkg/types"
)

func TestClassifyKeywordPriority(t *testing.T) {
	cfg := heuristics.Default()
	categories := []string{"Laptops", "Smartphones"}

	tests := []struct {
		name    string
		message string
		want    types.Intent
	}{
		{"short greeting", "hi there", types.IntentGreeting},
		{"long message with hi is not greeting", "hi I am looking for a cheap gaming laptop today", types.IntentSearch},
		{"follow-up option", "tell me about the first option", types.IntentSearch},
		{"compare", "iphone vs pixel", types.IntentCompare},
		{"cart", "add this to my cart", types.IntentCart},
		{"support", "what is your return policy", types.IntentSupport},
		{"support guard", "tell me about the return policy", types.IntentSearch},
		{"recommendation", "recommend a gift for my dad", types.IntentRecommendation},
		{"search keyword", "show me laptops", types.IntentSearch},
		{"bare noun defaults to search", "blue wireless headphones", types.IntentSearch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifyKeyword(tt.message, cfg, categories)
			if got.Intent != tt.want {
				t.Errorf("classifyKeyword(%q) = %s, want %s", tt.message, got.Intent, tt.want)
			}
			if got.Source != types.SourceKeyword {
				t.Errorf("source = %q", got.Source)
			}
			if got.Confidence != keywordConfidence {
				t.Errorf("confidence = %f", got.Confidence)
			}
		})
	}
}

func TestClassifyKeywordFollowUpFields(t *testing.T) {
	cfg := heuristics.Default()

	got := classifyKeyword("tell me about the first option", cfg, nil)
	if got.Intent != types.IntentSearch {
		t.Fatalf("intent = %s, want SEARCH", got.Intent)
	}
	if !got.IsFollowUp {
		t.Error("expected follow-up marker")
	}
	if got.ReferencedItem != "first" {
		t.Errorf("referenced item = %q, want first", got.ReferencedItem)
	}
}

func TestClassifyKeywordProductType(t *testing.T) {
	cfg := heuristics.Default()
	categories := []string{"Laptops", "Smartphones"}

	t.Run("direct category match", func(t *testing.T) {
		got := classifyKeyword("show me laptops", cfg, categories)
		if got.Entities.ProductType != "Laptops" {
			t.Errorf("product type = %q", got.Entities.ProductType)
		}
	})

	t.Run("synonym match", func(t *testing.T) {
		got := classifyKeyword("I need a new notebook", cfg, categories)
		if got.Entities.ProductType != "Laptops" {
			t.Errorf("product type = %q", got.Entities.ProductType)
		}
	})

	t.Run("no match", func(t *testing.T) {
		got := classifyKeyword("something else entirely", cfg, categories)
		if got.Entities.ProductType != "" {
			t.Errorf("product type = %q, want empty", got.Entities.ProductType)
		}
	})
}

func TestClassifyKeywordKeywordsCapped(t *testing.T) {
	cfg := heuristics.Default()

	got := classifyKeyword("show me the best cheap wireless gaming headphones available today", cfg, nil)
	if len(got.Entities.Keywords) != 5 {
		t.Errorf("keywords = %v, want 5 entries", got.Entities.Keywords)
	}
	for _, kw := range got.Entities.Keywords {
		if len(kw) <= 2 {
			t.Errorf("short token %q kept", kw)
		}
	}
}
