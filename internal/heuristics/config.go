package heuristics

// Thresholds tune the fuzzy matching used during entity extraction. Fuzzy
// similarity values are percentages (0-100).
type Thresholds struct {
	FuzzySimilarityBrand    int `yaml:"fuzzy_similarity_brand"`
	FuzzySimilarityCategory int `yaml:"fuzzy_similarity_category"`
	FuzzyUnambiguousMargin  int `yaml:"fuzzy_unambiguous_margin"`
	MinTokenLength          int `yaml:"min_token_length"`
}

// FeatureFlags gate optional behavior at runtime.
type FeatureFlags struct {
	FallbackFuzzyBrand    bool `yaml:"fallback_fuzzy_brand"`
	FallbackFuzzyCategory bool `yaml:"fallback_fuzzy_category"`
	CaseInsensitiveFilter bool `yaml:"case_insensitive_filters"`
	ServerSideTagFilter   bool `yaml:"server_side_tag_filter"`
	RerankEnabled         bool `yaml:"rerank_enabled"`
}

// Phrases groups the literal phrase lists the keyword classifier scans for.
type Phrases struct {
	InStock            []string `yaml:"in_stock"`
	OutOfStock         []string `yaml:"out_of_stock"`
	FollowUp           []string `yaml:"follow_up"`
	FollowUpIndicators []string `yaml:"followup_indicators"`
}

// Config is the tunable heuristics surface: synonym tables, keyword lists,
// extraction patterns and thresholds. Every field has a built-in default, so
// a missing or partial config file degrades to safe behavior instead of
// erroring.
type Config struct {
	CategorySynonyms map[string][]string `yaml:"category_synonyms"`
	BrandSynonyms    map[string][]string `yaml:"brand_synonyms"`
	IntentKeywords   map[string][]string `yaml:"intent_keywords"`
	GenericNouns     []string            `yaml:"generic_nouns"`
	Phrases          Phrases             `yaml:"phrases"`
	RatingPatterns   []string            `yaml:"rating_patterns"`
	DiscountPatterns []string            `yaml:"discount_patterns"`
	Thresholds       Thresholds          `yaml:"thresholds"`
	FeatureFlags     FeatureFlags        `yaml:"feature_flags"`
	RefineTerms      []string            `yaml:"refine_generic_terms"`
}

// Default returns the built-in heuristics tables.
func Default() *Config {
	return &Config{
		CategorySynonyms: map[string][]string{
			"smartphones":  {"phone", "phones", "mobile", "mobiles", "cell", "cellphone", "cellphones", "handset"},
			"laptops":      {"laptop", "laptops", "notebook", "notebooks", "ultrabook"},
			"televisions":  {"tv", "tvs", "television", "oled tv", "led tv"},
			"smartwatches": {"watch", "watches", "smartwatch", "smartwatches"},
			"tablets":      {"tablet", "tablets"},
			"cameras":      {"camera", "cameras"},
		},
		BrandSynonyms: map[string][]string{},
		IntentKeywords: map[string][]string{
			"cart":           {"cart", "add", "remove", "buy", "purchase", "order", "checkout"},
			"support":        {"policy", "return", "shipping", "warranty", "support", "contact", "refund"},
			"recommendation": {"recommend", "suggest", "trending", "popular", "gift"},
			"search":         {"show", "find", "search", "browse", "get", "want", "need"},
			"compare":        {"compare", "vs", "versus", "difference between", "which is better"},
		},
		GenericNouns: []string{
			"phone", "phones", "laptop", "laptops", "watch", "watches",
			"tv", "tvs", "camera", "cameras",
		},
		Phrases: Phrases{
			InStock:    []string{"in stock", "available now", "instock", "ready to ship"},
			OutOfStock: []string{"sold out", "out of stock", "unavailable"},
			FollowUp:   []string{"first option", "second option", "third option", "tell me about", "more about"},
			FollowUpIndicators: []string{
				"more", "other", "different", "cheaper", "better", "similar",
			},
		},
		RatingPatterns: []string{
			`(\d(?:\.\d)?)\s*\+\s*stars`,
			`at\s+least\s+(\d(?:\.\d)?)\s*stars`,
			`rating\s*(?:of\s*)?(?:over|above|>=?|at\s+least)\s*(\d(?:\.\d)?)`,
			`(\d(?:\.\d)?)\s*stars\s*(?:or\s*more|and\s*up)`,
		},
		DiscountPatterns: []string{
			`(\d{1,3})\s*%\s*(?:off|discount)`,
			`at\s+least\s+(\d{1,3})\s*%`,
		},
		Thresholds: Thresholds{
			FuzzySimilarityBrand:    90,
			FuzzySimilarityCategory: 90,
			FuzzyUnambiguousMargin:  3,
			MinTokenLength:          3,
		},
		FeatureFlags: FeatureFlags{
			CaseInsensitiveFilter: true,
			ServerSideTagFilter:   true,
			RerankEnabled:         true,
		},
		RefineTerms: []string{
			"cheaper", "under", "over", "below", "above", "minimum", "max",
			"at", "least", "most", "only", "in", "stock", "higher", "rating",
			"better", "rated", "less", "expensive", "lower", "price", "up", "to",
		},
	}
}

// CategorySynonymsFor builds a synonym-to-canonical map restricted to the
// categories actually present in the catalog, matched case-insensitively.
// Synonyms pointing at an unknown category are dropped rather than mapped to
// nothing.
func (c *Config) CategorySynonymsFor(allowed []string) map[string]string {
	known := make(map[string]string, len(allowed))
	for _, cat := range allowed {
		key := normKey(cat)
		if key != "" {
			known[key] = cat
		}
	}

	out := make(map[string]string)
	for canonical, synonyms := range c.CategorySynonyms {
		target, ok := known[normKey(canonical)]
		if !ok {
			continue
		}
		for _, syn := range synonyms {
			if key := normKey(syn); key != "" {
				out[key] = target
			}
		}
	}
	return out
}
