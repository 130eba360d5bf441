package intent

import (
	"context"
	"log"

	"github.com/shopassist/shopsearch/internal/heuristics"
	"github.com/shopassist/shopsearch/pkg/types"
)

// Tier is one classification strategy in the cascade.
type Tier interface {
	Classify(ctx context.Context, message, convContext string, categories, brands []string) (*types.Classification, error)
}

// Taxonomy exposes the catalog's closed category and brand sets.
type Taxonomy interface {
	Categories() []string
	Brands() []string
}

// ContextStore looks up prior-conversation context by session. The
// classifier only reads it, to ground follow-up references; it never writes.
type ContextStore interface {
	Context(sessionID string) string
}

// Classifier runs the cascading classification: primary LLM tier, secondary
// LLM tier, then the keyword tier, which cannot fail. Entity enrichment
// (price, brand, rating, stock, discount, tags, refine hints) runs on the
// result regardless of which tier produced it, so a thin LLM answer still
// gains the regex-extracted constraints.
type Classifier struct {
	primary   Tier
	secondary Tier
	heur      *heuristics.Provider
	taxonomy  Taxonomy
	contexts  ContextStore
}

// NewClassifier wires a cascade. Either or both LLM tiers may be nil, in
// which case classification starts further down the cascade. contexts may be
// nil when no session memory is available.
func NewClassifier(primary, secondary Tier, heur *heuristics.Provider, taxonomy Taxonomy, contexts ContextStore) *Classifier {
	return &Classifier{
		primary:   primary,
		secondary: secondary,
		heur:      heur,
		taxonomy:  taxonomy,
		contexts:  contexts,
	}
}

// Classify determines the intent and extracted entities for one message.
// It never returns an error: the keyword tier accepts any string.
func (c *Classifier) Classify(ctx context.Context, message, sessionID string) *types.Classification {
	cfg := c.heur.Current()
	categories := c.taxonomy.Categories()
	brands := c.taxonomy.Brands()

	convContext := ""
	if c.contexts != nil {
		convContext = c.contexts.Context(sessionID)
	}

	result := c.classifyTiers(ctx, message, convContext, categories, brands, cfg)

	enrichPrice(message, result)
	enrichFilters(message, result, cfg, brands)
	enrichRefine(message, result)
	return result
}

func (c *Classifier) classifyTiers(ctx context.Context, message, convContext string, categories, brands []string, cfg *heuristics.Config) *types.Classification {
	tiers := []struct {
		tier   Tier
		source string
	}{
		{c.primary, types.SourcePrimary},
		{c.secondary, types.SourceSecondary},
	}
	for _, t := range tiers {
		if t.tier == nil {
			continue
		}
		result, err := t.tier.Classify(ctx, message, convContext, categories, brands)
		if err != nil {
			log.Printf("intent: %s tier failed, cascading: %v", t.source, err)
			continue
		}
		result.Source = t.source
		log.Printf("intent: %s tier classified %s (confidence %.2f)", t.source, result.Intent, result.Confidence)
		return result
	}

	log.Printf("intent: using keyword classification")
	return classifyKeyword(message, cfg, categories)
}
