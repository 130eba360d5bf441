package vectorindex

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/shopassist/shopsearch/pkg/types"
)

// MaxFieldLen caps string metadata values so records stay within the index
// service's per-record metadata limits.
const MaxFieldLen = 1000

// TagFlagPrefix marks boolean tag fields in record metadata. A product tagged
// "Fast Charging" carries tag_fast_charging: true.
const TagFlagPrefix = "tag_"

// NormalizeTag maps a human-entered tag to its canonical metadata key form:
// lowercased, runs of non-alphanumeric characters collapsed to a single
// underscore, leading and trailing underscores stripped. Normalization is
// idempotent, so "Fast-Charging", "fast charging" and "fast_charging" all
// produce the same key.
func NormalizeTag(tag string) string {
	var b strings.Builder
	b.Grow(len(tag))
	prevUnderscore := false
	for _, r := range strings.ToLower(tag) {
		alnum := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		if alnum {
			b.WriteRune(r)
			prevUnderscore = false
			continue
		}
		if !prevUnderscore {
			b.WriteByte('_')
			prevUnderscore = true
		}
	}
	return strings.Trim(b.String(), "_")
}

// truncate caps s at n bytes without splitting a multi-byte rune, so stored
// metadata stays valid UTF-8.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// SearchableText builds the string that gets embedded for a product. It
// concatenates the fields that carry semantic signal and truncates the
// result so embedding inputs stay bounded.
func SearchableText(p types.Product) string {
	text := fmt.Sprintf("%s %s %s", p.Title, p.Description, p.Category)
	return truncate(text, MaxFieldLen)
}

// BuildProductMetadata flattens a product into the metadata map stored with
// its vector. Alongside the display fields it writes lowercase shadow fields
// (brand_lc, category_lc) for case-insensitive filtering, per-tag boolean
// flags for server-side tag filtering, and the content type discriminator.
func BuildProductMetadata(p types.Product) map[string]any {
	md := map[string]any{
		"type":               TypeProduct,
		"title":              truncate(p.Title, MaxFieldLen),
		"description":        truncate(p.Description, MaxFieldLen),
		"category":           p.Category,
		"category_lc":        strings.ToLower(p.Category),
		"brand":              p.Brand,
		"brand_lc":           strings.ToLower(p.Brand),
		"price":              p.Price,
		"rating":             p.Rating,
		"stock":              float64(p.Stock),
		"discountPercentage": p.EffectiveDiscount(),
		"availabilityStatus": p.AvailabilityStatus(),
		"thumbnail":          p.Thumbnail,
	}
	if p.SKU != "" {
		md["sku"] = p.SKU
	}
	if p.OriginalPrice > 0 {
		md["originalPrice"] = p.OriginalPrice
	}

	tags := p.Tags
	if len(tags) > types.MaxTags {
		tags = tags[:types.MaxTags]
	}
	var kept []string
	for _, t := range tags {
		norm := NormalizeTag(t)
		if norm == "" {
			continue
		}
		md[TagFlagPrefix+norm] = true
		kept = append(kept, t)
	}
	if len(kept) > 0 {
		md["tags"] = strings.Join(kept, ",")
	}
	return md
}

// BuildSupportMetadata flattens a support document for indexing.
func BuildSupportMetadata(d types.SupportDoc) map[string]any {
	md := map[string]any{
		"type":     TypeSupport,
		"content":  truncate(d.Content, MaxFieldLen),
		"doc_type": d.DocType,
		"source":   d.Source,
	}
	if d.Category != "" {
		md["category"] = d.Category
	}
	if d.ProductCount > 0 {
		md["product_count"] = float64(d.ProductCount)
	}
	return md
}

// ProductFromMetadata reconstructs a product from stored record metadata.
// Numeric fields come back as float64 regardless of how they were written;
// missing fields stay zero.
func ProductFromMetadata(id string, md map[string]any) types.Product {
	p := types.Product{
		ID:          id,
		Title:       mdString(md, "title"),
		Description: mdString(md, "description"),
		Category:    mdString(md, "category"),
		Brand:       mdString(md, "brand"),
		Thumbnail:   mdString(md, "thumbnail"),
		SKU:         mdString(md, "sku"),
	}
	p.Price = mdFloat(md, "price")
	p.OriginalPrice = mdFloat(md, "originalPrice")
	p.Rating = mdFloat(md, "rating")
	p.Stock = int(mdFloat(md, "stock"))
	p.DiscountPercentage = mdFloat(md, "discountPercentage")
	if raw := mdString(md, "tags"); raw != "" {
		p.Tags = strings.Split(raw, ",")
	}
	return p
}

// SupportDocFromMetadata reconstructs a support document from record metadata.
func SupportDocFromMetadata(id string, md map[string]any) types.SupportDoc {
	return types.SupportDoc{
		ID:           id,
		Content:      mdString(md, "content"),
		DocType:      mdString(md, "doc_type"),
		Category:     mdString(md, "category"),
		Source:       mdString(md, "source"),
		ProductCount: int(mdFloat(md, "product_count")),
	}
}

func mdString(md map[string]any, key string) string {
	if v, ok := md[key].(string); ok {
		return v
	}
	return ""
}

func mdFloat(md map[string]any, key string) float64 {
	switch v := md[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	}
	return 0
}
