package support

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopassist/shopsearch/pkg/types"
)

func TestStaticFAQs(t *testing.T) {
	docs := StaticFAQs()
	require.NotEmpty(t, docs)

	categories := make(map[string]bool)
	for _, d := range docs {
		assert.NotEmpty(t, d.Content)
		assert.NotEmpty(t, d.DocType)
		categories[d.Category] = true
	}
	assert.True(t, categories["returns"])
	assert.True(t, categories["shipping"])
	assert.True(t, categories["warranty"])
}

func TestFromProducts(t *testing.T) {
	products := []types.Product{
		{ID: "1", Title: "A", Category: "Phones", Price: 100, Stock: 5},
		{ID: "2", Title: "B", Category: "Phones", Price: 300, Stock: 0},
		{ID: "3", Title: "C", Category: "Laptops", Price: 900, Stock: 2},
	}

	docs := FromProducts(products)
	require.Len(t, docs, 4, "one overview per category plus two general docs")

	overview := docs[0]
	assert.Equal(t, "category_overview", overview.DocType)
	assert.Contains(t, overview.Content, "Laptops", "categories emitted in sorted order")

	phones := docs[1]
	assert.Contains(t, phones.Content, "2 products")
	assert.Contains(t, phones.Content, "1 currently in stock")
	assert.Contains(t, phones.Content, "$100.00 to $300.00")
	assert.Equal(t, 2, phones.ProductCount)

	assert.Equal(t, "general_return", docs[2].DocType)
	assert.Equal(t, 3, docs[2].ProductCount)
}

func TestFromProductsEmpty(t *testing.T) {
	assert.Nil(t, FromProducts(nil))
}

func TestAssemble(t *testing.T) {
	a := []types.SupportDoc{
		{Content: "Return Policy: 30 days.", DocType: "return_policy"},
		{Content: "   ", DocType: "blank"},
	}
	b := []types.SupportDoc{
		{Content: "RETURN POLICY: 30 DAYS.", DocType: "return_policy_dup"},
		{Content: "Shipping takes 3-5 days.", DocType: "shipping", ID: "fixed-id"},
	}

	docs := Assemble(a, b)
	require.Len(t, docs, 2, "case-insensitive content dedupe, blanks dropped")

	assert.NotEmpty(t, docs[0].ID, "missing IDs are generated")
	assert.Equal(t, "fixed-id", docs[1].ID, "existing IDs preserved")
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docs.json")
	require.NoError(t, os.WriteFile(path, []byte(`[
		{"id": "ext-1", "content": "Scraped return guidance.", "type": "return_policy", "category": "returns"}
	]`), 0o644))

	docs, err := LoadFile(path)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "ext-1", docs[0].ID)
	assert.Equal(t, SourceScraped, docs[0].Source, "missing source defaults to scraped")
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile("/nonexistent/docs.json")
	require.Error(t, err)
}
