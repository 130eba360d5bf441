package intent

import (
	"log"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopassist/shopsearch/internal/heuristics"
	"github.com/shopassist/shopsearch/pkg/types"
)

// Price extraction rules, tried in order. Later rules only fill bounds the
// earlier ones left unset.
var (
	rePriceRange   = regexp.MustCompile(`\$?\s*(\d{2,6})\s*[-–]\s*\$?\s*(\d{2,6})`)
	rePriceBetween = regexp.MustCompile(`(?:between|from)\s+\$?(\d{2,6})\s+(?:and|to)\s+\$?(\d{2,6})`)
	rePriceUpper      = regexp.MustCompile(`(?:under|less\s+than|below|up\s+to|max|at\s+most)\s+\$?(\d{2,6})`)
	rePriceUpperTrail = regexp.MustCompile(`\$?(\d{2,6})\s+or\s+less\b`)
	rePriceLower   = regexp.MustCompile(`(?:over|more\s+than|above|at\s+least|minimum)\s+\$?(\d{2,6})`)
	rePriceAround  = regexp.MustCompile(`(?:around|about|approximately|~)\s*\$?(\d{2,6})`)
)

// Brand extraction patterns.
var (
	reBrandLabel  = regexp.MustCompile(`(?i)\bbrand\s*[:\-]?\s*([A-Za-z0-9][A-Za-z0-9 &\-]{0,40})`)
	reBrandByFrom = regexp.MustCompile(`(?i)\b(?:by|from)\s+([A-Za-z][A-Za-z0-9 &\-]{1,40})`)
	reBrandOnly   = regexp.MustCompile(`(?i)\bonly\s+([A-Za-z][A-Za-z0-9 &\-]{1,40})`)
	reBrandNoun   = regexp.MustCompile(`\b([A-Z][A-Za-z0-9&\-]{1,40})\s+(?:phones?|smartphones?|laptops?|watches?)\b`)

	reBrandCutWith    = regexp.MustCompile(`\s+(?:with)\b|[,\.!]`)
	reBrandCutConnect = regexp.MustCompile(`\s+(?:with|and|or)\b|[,\.!]`)
)

var (
	reHashTag      = regexp.MustCompile(`#([a-z0-9\-]+)`)
	reWithFeatures = regexp.MustCompile(`\bwith\s+([^\.;\n]+)`)
	reFeatureSplit = regexp.MustCompile(`[,/]|\band\b`)
)

// Refine hint triggers.
var (
	reRefineUpper = regexp.MustCompile(`(?:under|less\s+than|below|up\s+to|max|at\s+most)\s+\$?\d`)
	reRefineLower = regexp.MustCompile(`(?:over|more\s+than|above|at\s+least|minimum)\s+\$?\d`)
	reRefineOnly  = regexp.MustCompile(`\bonly\b`)
)

func parsePrice(s string) *float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

// enrichPrice extracts price bounds from the message. An explicit range wins
// over single bounds; "around X" widens to X plus or minus 20 percent and
// applies only when nothing else matched.
func enrichPrice(message string, c *types.Classification) {
	lower := strings.ToLower(message)

	if m := rePriceRange.FindStringSubmatch(lower); m != nil {
		a, b := *parsePrice(m[1]), *parsePrice(m[2])
		if a > b {
			a, b = b, a
		}
		c.PriceMin, c.PriceMax = &a, &b
		c.PriceMentioned = &b
	}

	if c.PriceMin == nil && c.PriceMax == nil {
		if m := rePriceBetween.FindStringSubmatch(lower); m != nil {
			a, b := *parsePrice(m[1]), *parsePrice(m[2])
			if a > b {
				a, b = b, a
			}
			c.PriceMin, c.PriceMax = &a, &b
			c.PriceMentioned = &b
		}
	}

	if c.PriceMax == nil {
		m := rePriceUpper.FindStringSubmatch(lower)
		if m == nil {
			m = rePriceUpperTrail.FindStringSubmatch(lower)
		}
		if m != nil {
			c.PriceMax = parsePrice(m[1])
			c.PriceMentioned = c.PriceMax
		}
	}

	if c.PriceMin == nil {
		if m := rePriceLower.FindStringSubmatch(lower); m != nil {
			c.PriceMin = parsePrice(m[1])
			c.PriceMentioned = c.PriceMin
		}
	}

	if c.PriceMin == nil && c.PriceMax == nil {
		if m := rePriceAround.FindStringSubmatch(lower); m != nil {
			center := *parsePrice(m[1])
			delta := center * 0.2
			lo, hi := center-delta, center+delta
			c.PriceMin, c.PriceMax = &lo, &hi
			c.PriceMentioned = &center
		}
	}
}

// cleanBrandCandidate trims a regex capture down to the brand itself: stop
// at connector words and punctuation, then drop a trailing generic product
// noun so "Samsung phones" yields "Samsung".
func cleanBrandCandidate(raw string, cut *regexp.Regexp, genericNouns map[string]bool) string {
	cand := strings.TrimRight(strings.TrimSpace(raw), ".,!")
	if loc := cut.FindStringIndex(cand); loc != nil {
		cand = strings.TrimSpace(cand[:loc[0]])
	}
	parts := strings.Fields(cand)
	if len(parts) > 1 && genericNouns[strings.ToLower(parts[1])] {
		cand = parts[0]
	}
	return cand
}

// enrichFilters extracts brand, rating floor, stock preference, discount
// floor and tags from the message. A brand already supplied by an LLM tier
// is trusted and never overridden.
func enrichFilters(message string, c *types.Classification, cfg *heuristics.Config, brands []string) {
	lower := strings.ToLower(message)

	genericNouns := make(map[string]bool, len(cfg.GenericNouns))
	for _, n := range cfg.GenericNouns {
		genericNouns[strings.ToLower(strings.TrimSpace(n))] = true
	}

	brand := strings.TrimSpace(c.Entities.Brand)
	if brand == "" {
		if m := reBrandLabel.FindStringSubmatch(message); m != nil {
			brand = cleanBrandCandidate(m[1], reBrandCutWith, genericNouns)
		}
	}
	if brand == "" {
		if m := reBrandByFrom.FindStringSubmatch(message); m != nil {
			brand = cleanBrandCandidate(m[1], reBrandCutWith, genericNouns)
		}
	}
	if brand == "" {
		if m := reBrandOnly.FindStringSubmatch(message); m != nil {
			brand = cleanBrandCandidate(m[1], reBrandCutConnect, genericNouns)
		}
	}
	if brand == "" {
		if m := reBrandNoun.FindStringSubmatch(message); m != nil {
			brand = strings.TrimSpace(m[1])
		}
	}

	for _, pat := range cfg.RatingPatterns {
		re, err := regexp.Compile(pat)
		if err != nil {
			log.Printf("intent: bad rating pattern %q: %v", pat, err)
			continue
		}
		if m := re.FindStringSubmatch(lower); m != nil {
			if v := parsePrice(m[1]); v != nil {
				c.RatingMin = v
				break
			}
		}
	}

	if containsAny(lower, cfg.Phrases.InStock) {
		c.InStock = types.Bool(true)
	}
	if containsAny(lower, cfg.Phrases.OutOfStock) {
		c.InStock = types.Bool(false)
	}

	for _, pat := range cfg.DiscountPatterns {
		re, err := regexp.Compile(pat)
		if err != nil {
			log.Printf("intent: bad discount pattern %q: %v", pat, err)
			continue
		}
		if m := re.FindStringSubmatch(lower); m != nil {
			if v := parsePrice(m[1]); v != nil {
				c.DiscountMin = v
				break
			}
		}
	}

	c.Tags = extractTags(lower)

	// Canonicalize against the catalog's brand set.
	canonical := false
	if brand != "" {
		for _, b := range brands {
			if strings.EqualFold(strings.TrimSpace(b), brand) {
				brand = b
				canonical = true
				break
			}
		}
	}

	// Fuzzy brand recovery runs only for keyword-tier results, and only when
	// the match is both strong and unambiguous.
	if cfg.FeatureFlags.FallbackFuzzyBrand && c.Source == types.SourceKeyword && !canonical && len(brands) > 0 {
		tokens := tokenizeForFuzzy(message, cfg.Thresholds.MinTokenLength)
		if brand != "" {
			tokens = append(tokens, strings.ToLower(brand))
		}
		best, bestScore, secondScore := bestFuzzyCandidate(brands, tokens, message)
		if best != "" &&
			bestScore >= cfg.Thresholds.FuzzySimilarityBrand &&
			bestScore-secondScore >= cfg.Thresholds.FuzzyUnambiguousMargin {
			log.Printf("intent: fuzzy brand match %q (%d%%)", best, bestScore)
			brand = best
		}
	}

	c.Entities.Brand = brand
}

// extractTags pulls hashtags, or failing that short feature words after
// "with", deduplicated in order.
func extractTags(lower string) []string {
	var tags []string
	for _, m := range reHashTag.FindAllStringSubmatch(lower, -1) {
		tags = append(tags, m[1])
	}
	if len(tags) == 0 {
		if m := reWithFeatures.FindStringSubmatch(lower); m != nil {
			for _, chunk := range reFeatureSplit.Split(m[1], -1) {
				t := strings.TrimSpace(chunk)
				if len(t) >= 2 && len(t) <= 20 && !strings.Contains(t, " ") {
					tags = append(tags, t)
				}
			}
		}
	}

	seen := make(map[string]bool, len(tags))
	var out []string
	for _, t := range tags {
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	return out
}

// enrichRefine marks messages that narrow a previous search rather than
// start a new one. The hints are advisory; applying them against session
// state is the caller's job.
func enrichRefine(message string, c *types.Classification) {
	lower := strings.ToLower(message)

	var hints []string
	if containsAny(lower, []string{"cheaper", "less expensive", "lower price", "more affordable"}) {
		hints = append(hints, "price_cheaper")
	}
	if reRefineUpper.MatchString(lower) {
		hints = append(hints, "price_upper_bound")
	}
	if reRefineLower.MatchString(lower) {
		hints = append(hints, "price_lower_bound")
	}
	if reRefineOnly.MatchString(lower) {
		hints = append(hints, "constraint_only")
	}
	if containsAny(lower, []string{"higher rating", "better rated", "more stars"}) {
		hints = append(hints, "rating_higher")
	}
	if containsAny(lower, []string{"in stock", "available now", "instock"}) {
		hints = append(hints, "in_stock")
	}

	c.IsRefine = len(hints) > 0
	c.RefineHints = hints
}
