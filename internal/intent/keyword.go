package intent

import (
	"log"
	"strings"

	"github.com/shopassist/shopsearch/internal/heuristics"
	"github.com/shopassist/shopsearch/pkg/types"
)

// keywordConfidence is the fixed confidence reported by the keyword tier.
// It is deliberately below a typical LLM-reported confidence so downstream
// consumers can tell the tiers apart.
const keywordConfidence = 0.8

var greetingKeywords = []string{
	"hi", "hello", "hey", "greetings", "good morning", "good afternoon",
	"good evening", "howdy", "how are you", "what's up",
}

// followUpExtras supplement the configured follow-up phrases in the keyword
// tier, which must catch generic "about the" phrasing even with a minimal
// config.
var followUpExtras = []string{"about the", "more details", "more info"}

func containsAny(haystack string, phrases []string) bool {
	for _, p := range phrases {
		if p != "" && strings.Contains(haystack, p) {
			return true
		}
	}
	return false
}

// hasGreeting matches greeting keywords on word boundaries. Substring
// matching is wrong here: "hi" lives inside "this", and short cart messages
// like "add this to my cart" must not read as greetings.
func hasGreeting(lower string) bool {
	words := make(map[string]bool)
	for _, w := range strings.Fields(lower) {
		words[strings.Trim(w, ".,!?")] = true
	}
	for _, kw := range greetingKeywords {
		if strings.Contains(kw, " ") {
			if strings.Contains(lower, kw) {
				return true
			}
		} else if words[kw] {
			return true
		}
	}
	return false
}

// classifyKeyword is the final classification tier. It never fails: any
// string maps to some intent, defaulting to SEARCH.
//
// Priority order matters. Follow-up phrasing outranks everything but short
// greetings, because "tell me about the first option" mentions no search
// keyword yet is clearly a product question. Support requires a policy
// keyword AND the absence of product-question phrasing, so "tell me about
// the return policy headset" does not get misrouted.
func classifyKeyword(message string, cfg *heuristics.Config, categories []string) *types.Classification {
	lower := strings.ToLower(message)

	followUp := append(append([]string{}, cfg.Phrases.FollowUp...), followUpExtras...)

	var it types.Intent
	switch {
	case len(strings.Fields(lower)) <= 5 && hasGreeting(lower):
		it = types.IntentGreeting
	case containsAny(lower, followUp):
		it = types.IntentSearch
	case containsAny(lower, cfg.IntentKeywords["compare"]):
		it = types.IntentCompare
	case containsAny(lower, cfg.IntentKeywords["cart"]):
		it = types.IntentCart
	case containsAny(lower, cfg.IntentKeywords["support"]) &&
		!containsAny(lower, []string{"about the", "tell me about"}):
		it = types.IntentSupport
	case containsAny(lower, cfg.IntentKeywords["recommendation"]):
		it = types.IntentRecommendation
	case containsAny(lower, cfg.IntentKeywords["search"]):
		it = types.IntentSearch
	default:
		it = types.IntentSearch
	}

	c := &types.Classification{
		Intent:     it,
		Confidence: keywordConfidence,
		Source:     types.SourceKeyword,
	}
	c.Entities.ProductType = detectProductType(message, lower, cfg, categories)
	for _, word := range strings.Fields(lower) {
		if len(word) > 2 {
			c.Entities.Keywords = append(c.Entities.Keywords, word)
		}
		if len(c.Entities.Keywords) == 5 {
			break
		}
	}

	if containsAny(lower, followUp) {
		c.IsFollowUp = true
		c.ReferencedItem = ordinalReference(lower)
	}

	return c
}

// ordinalReference extracts which prior result a follow-up points at.
func ordinalReference(lower string) string {
	for _, ord := range []string{"first", "second", "third"} {
		if strings.Contains(lower, ord+" option") || strings.Contains(lower, ord+" one") {
			return ord
		}
	}
	return ""
}

// detectProductType resolves a category mention in three passes: direct
// substring match against catalog categories, then configured synonyms, then
// a flag-gated fuzzy match that requires both a similarity cutoff and a
// clear margin over the runner-up before committing.
func detectProductType(message, lower string, cfg *heuristics.Config, categories []string) string {
	for _, cat := range categories {
		cl := strings.ToLower(strings.TrimSpace(cat))
		if cl != "" && strings.Contains(lower, cl) {
			return cat
		}
	}

	for syn, canonical := range cfg.CategorySynonymsFor(categories) {
		if strings.Contains(lower, syn) {
			return canonical
		}
	}

	if cfg.FeatureFlags.FallbackFuzzyCategory && len(categories) > 0 {
		tokens := tokenizeForFuzzy(message, cfg.Thresholds.MinTokenLength)
		best, bestScore, secondScore := bestFuzzyCandidate(categories, tokens, message)
		if best != "" &&
			bestScore >= cfg.Thresholds.FuzzySimilarityCategory &&
			bestScore-secondScore >= cfg.Thresholds.FuzzyUnambiguousMargin {
			log.Printf("intent: fuzzy category match %q (%d%%)", best, bestScore)
			return best
		}
	}

	return ""
}
