package types

// Intent is the closed set of user goals the classifier can produce.
type Intent string

const (
	IntentSearch         Intent = "SEARCH"
	IntentCart           Intent = "CART"
	IntentRecommendation Intent = "RECOMMENDATION"
	IntentSupport        Intent = "SUPPORT"
	IntentCompare        Intent = "COMPARE"
	IntentGreeting       Intent = "GREETING"
)

// Valid reports whether the intent is a member of the closed set.
func (i Intent) Valid() bool {
	switch i {
	case IntentSearch, IntentCart, IntentRecommendation, IntentSupport, IntentCompare, IntentGreeting:
		return true
	}
	return false
}

// Classification sources, recording which cascade tier produced the result.
const (
	SourcePrimary   = "primary"
	SourceSecondary = "secondary"
	SourceKeyword   = "keyword"
)

// Entities holds the best-effort structured values extracted from a message.
// All fields may be empty.
type Entities struct {
	ProductType string   `json:"product_type,omitempty"`
	Brand       string   `json:"brand,omitempty"`
	Action      string   `json:"action,omitempty"`
	Keywords    []string `json:"keywords,omitempty"`
}

// Classification is the result of classifying a single user turn. It is
// computed fresh per message and not persisted by the core.
type Classification struct {
	Intent     Intent   `json:"intent"`
	Confidence float64  `json:"confidence"`
	Entities   Entities `json:"entities"`
	Source     string   `json:"source"`

	// Follow-up and refinement markers. ReferencedItem is an ordinal label
	// ("first", "second", "third") when the message points at a prior result.
	IsFollowUp     bool     `json:"is_followup"`
	ReferencedItem string   `json:"referenced_item,omitempty"`
	IsRefine       bool     `json:"is_refine"`
	RefineHints    []string `json:"refine_hints,omitempty"`

	// Extracted filter constraints. Nil means the message did not mention
	// the constraint.
	PriceMentioned *float64 `json:"price_mentioned,omitempty"`
	PriceMin       *float64 `json:"price_min,omitempty"`
	PriceMax       *float64 `json:"price_max,omitempty"`
	RatingMin      *float64 `json:"rating_min,omitempty"`
	InStock        *bool    `json:"in_stock,omitempty"`
	DiscountMin    *float64 `json:"discount_min,omitempty"`
	Tags           []string `json:"tags,omitempty"`
}

// FilterSpec converts the extracted constraints into a retrieval filter.
func (c Classification) FilterSpec() FilterSpec {
	return FilterSpec{
		PriceMin:    c.PriceMin,
		PriceMax:    c.PriceMax,
		Brand:       c.Entities.Brand,
		Category:    c.Entities.ProductType,
		RatingMin:   c.RatingMin,
		InStock:     c.InStock,
		DiscountMin: c.DiscountMin,
		Tags:        c.Tags,
	}
}
