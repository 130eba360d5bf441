package types

// FilterSpec is the structured constraint set passed into retrieval.
// Every field is optional; a nil pointer or zero value means unconstrained.
//
// InStock carries an intentional asymmetry: only an explicit true activates
// the "stock > 0" constraint. False is equivalent to unset and must never
// translate into an out-of-stock-only filter.
type FilterSpec struct {
	PriceMin    *float64
	PriceMax    *float64
	Brand       string
	Category    string
	RatingMin   *float64
	InStock     *bool
	DiscountMin *float64
	Tags        []string // AND semantics: all requested tags must be present
}

// IsZero reports whether no constraint is set.
func (f FilterSpec) IsZero() bool {
	return f.PriceMin == nil && f.PriceMax == nil && f.Brand == "" && f.Category == "" &&
		f.RatingMin == nil && f.InStock == nil && f.DiscountMin == nil && len(f.Tags) == 0
}

// Float returns a pointer to v, for building filter specs in place.
func Float(v float64) *float64 { return &v }

// Bool returns a pointer to v, for building filter specs in place.
func Bool(v bool) *bool { return &v }
