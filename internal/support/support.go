// Package support assembles the knowledge base behind policy questions:
// static e-commerce FAQs, documents derived from the live catalog, and
// externally scraped policies, merged and deduplicated into one corpus
// ready for indexing.
package support

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/shopassist/shopsearch/pkg/types"
)

// Document type and source labels.
const (
	SourceStatic   = "ecommerce_standard"
	SourceCategory = "category_specific"
	SourceCatalog  = "product_data"
	SourceScraped  = "scraped"
)

// StaticFAQs returns the baseline FAQ corpus that is always available,
// regardless of catalog state or external sources.
func StaticFAQs() []types.SupportDoc {
	return []types.SupportDoc{
		{Content: "Return Policy: Most e-commerce stores offer 15-30 day return windows. Items must be in original condition with tags attached. Some restrictions apply to electronics and personal items.", DocType: "return_policy", Category: "returns", Source: SourceStatic},
		{Content: "Shipping Information: Standard shipping typically takes 3-7 business days. Express shipping (1-2 days) and overnight shipping are often available for additional cost.", DocType: "shipping_policy", Category: "shipping", Source: SourceStatic},
		{Content: "Warranty Coverage: Products come with manufacturer warranties. Extended warranties may be available for electronics. Warranty terms vary by brand and product type.", DocType: "warranty_policy", Category: "warranty", Source: SourceStatic},
		{Content: "Defective Items: If you receive a defective item, contact customer service within 48 hours. We will arrange for return or exchange at no cost to you.", DocType: "defective_items", Category: "support", Source: SourceStatic},
		{Content: "Order Tracking: You will receive tracking information via email once your order ships. Track your package using the provided tracking number.", DocType: "order_tracking", Category: "shipping", Source: SourceStatic},
		{Content: "Customer Service: Our customer service team is available to help with orders, returns, and product questions. Contact us for assistance with any issues.", DocType: "customer_service", Category: "support", Source: SourceStatic},
		{Content: "Payment Options: We accept major credit cards, PayPal, and other secure payment methods. Your payment information is protected with industry-standard encryption.", DocType: "payment_info", Category: "payment", Source: SourceStatic},
		{Content: "Account Management: Create an account to track orders, manage returns, and save your shipping information for faster checkout.", DocType: "account_info", Category: "account", Source: SourceStatic},
		{Content: "Product Information: Product descriptions, specifications, and images are provided to help you make informed purchasing decisions. Contact us if you need additional product details.", DocType: "product_info", Category: "products", Source: SourceStatic},
		{Content: "Privacy Policy: We protect your personal information and do not share it with third parties without your consent. See our privacy policy for complete details.", DocType: "privacy_info", Category: "privacy", Source: SourceStatic},
		{Content: "Electronics Return Policy: Electronics can typically be returned within 15-30 days if unopened. Opened electronics may have a shorter return window. Software and digital downloads are often non-returnable.", DocType: "electronics_returns", Category: "returns", Source: SourceCategory},
		{Content: "Electronics Warranty: Electronics come with manufacturer warranties ranging from 90 days to 3 years. Extended warranties are available for purchase on most electronic items.", DocType: "electronics_warranty", Category: "warranty", Source: SourceCategory},
		{Content: "Clothing Returns: Clothing items can usually be returned within 30-60 days with tags attached. Items must be unworn and in original condition.", DocType: "clothing_returns", Category: "returns", Source: SourceCategory},
		{Content: "Home & Garden Shipping: Large furniture and appliances may require special delivery arrangements. Assembly services may be available for an additional fee.", DocType: "home_garden_shipping", Category: "shipping", Source: SourceCategory},
		{Content: "Beauty Products: Beauty and personal care items are typically non-returnable for hygiene reasons unless they arrive damaged or defective.", DocType: "beauty_returns", Category: "returns", Source: SourceCategory},
	}
}

// FromProducts derives support documents from the live catalog: per-category
// availability and price-range summaries a support answer can cite, plus
// general policy documents that apply store-wide.
func FromProducts(products []types.Product) []types.SupportDoc {
	if len(products) == 0 {
		return nil
	}

	type catStats struct {
		count   int
		inStock int
		minP    float64
		maxP    float64
	}
	stats := make(map[string]*catStats)
	for _, p := range products {
		cat := strings.TrimSpace(p.Category)
		if cat == "" {
			continue
		}
		cs := stats[cat]
		if cs == nil {
			cs = &catStats{minP: p.Price, maxP: p.Price}
			stats[cat] = cs
		}
		cs.count++
		if p.InStock() {
			cs.inStock++
		}
		if p.Price < cs.minP {
			cs.minP = p.Price
		}
		if p.Price > cs.maxP {
			cs.maxP = p.Price
		}
	}

	cats := make([]string, 0, len(stats))
	for cat := range stats {
		cats = append(cats, cat)
	}
	sort.Strings(cats)

	var docs []types.SupportDoc
	for _, cat := range cats {
		cs := stats[cat]
		docs = append(docs, types.SupportDoc{
			Content: fmt.Sprintf(
				"Category Overview: %s has %d products, %d currently in stock, priced from $%.2f to $%.2f.",
				cat, cs.count, cs.inStock, cs.minP, cs.maxP),
			DocType:      "category_overview",
			Category:     strings.ToLower(cat),
			Source:       SourceCatalog,
			ProductCount: cs.count,
		})
	}

	docs = append(docs,
		types.SupportDoc{
			Content:      fmt.Sprintf("Return Policy: We accept returns for most items. Return policies vary by product type and can range from 7 days to 90 days. This applies to all %d products in our catalog.", len(products)),
			DocType:      "general_return",
			Category:     "returns",
			Source:       SourceCatalog,
			ProductCount: len(products),
		},
		types.SupportDoc{
			Content:      fmt.Sprintf("Shipping Information: Shipping times vary by product and location. Most of our %d items ship within 1-3 business days. Express and overnight shipping options are available for many products.", len(products)),
			DocType:      "general_shipping",
			Category:     "shipping",
			Source:       SourceCatalog,
			ProductCount: len(products),
		},
	)
	return docs
}

// Assemble merges documents from all sources, deduplicates by content and
// assigns IDs to documents that lack one. Deduplication compares the first
// 100 characters case-insensitively, which is enough to collapse near-copies
// from overlapping sources while keeping genuinely different documents.
func Assemble(sources ...[]types.SupportDoc) []types.SupportDoc {
	seen := make(map[string]bool)
	var out []types.SupportDoc
	for _, source := range sources {
		for _, doc := range source {
			if strings.TrimSpace(doc.Content) == "" {
				continue
			}
			key := strings.ToLower(doc.Content)
			if len(key) > 100 {
				key = key[:100]
			}
			if seen[key] {
				continue
			}
			seen[key] = true
			if doc.ID == "" {
				doc.ID = uuid.NewString()
			}
			out = append(out, doc)
		}
	}
	return out
}
