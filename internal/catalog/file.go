package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/shopassist/shopsearch/pkg/types"
)

// FileLoader reads the catalog from a JSON file. It accepts either a bare
// product array or an object with a "products" key, and tolerates numeric or
// string product IDs.
type FileLoader struct {
	Path string
}

// NewFileLoader creates a loader for the given path.
func NewFileLoader(path string) *FileLoader {
	return &FileLoader{Path: path}
}

// productJSON mirrors the export format. IDs arrive as numbers in some dumps
// and strings in others, so it decodes through json.Number.
type productJSON struct {
	ID                 json.Number `json:"id"`
	Title              string      `json:"title"`
	Description        string      `json:"description"`
	Category           string      `json:"category"`
	Brand              string      `json:"brand"`
	Price              float64     `json:"price"`
	OriginalPrice      float64     `json:"originalPrice"`
	DiscountPercentage float64     `json:"discountPercentage"`
	Rating             float64     `json:"rating"`
	Stock              int         `json:"stock"`
	Tags               []string    `json:"tags"`
	SKU                string      `json:"sku"`
	Thumbnail          string      `json:"thumbnail"`
	Images             []string    `json:"images"`
}

func (pj productJSON) toProduct() types.Product {
	p := types.Product{
		ID:                 pj.ID.String(),
		Title:              pj.Title,
		Description:        pj.Description,
		Category:           pj.Category,
		Brand:              pj.Brand,
		Price:              pj.Price,
		OriginalPrice:      pj.OriginalPrice,
		DiscountPercentage: pj.DiscountPercentage,
		Rating:             pj.Rating,
		Stock:              pj.Stock,
		Tags:               pj.Tags,
		SKU:                pj.SKU,
		Thumbnail:          pj.Thumbnail,
	}
	if len(pj.Images) > 0 {
		p.Image = pj.Images[0]
	}
	return p
}

// LoadProducts reads and decodes the file.
func (l *FileLoader) LoadProducts(_ context.Context) ([]types.Product, error) {
	data, err := os.ReadFile(l.Path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}
	return decodeProducts(data)
}

func decodeProducts(data []byte) ([]types.Product, error) {
	var raw []productJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		var wrapped struct {
			Products []productJSON `json:"products"`
		}
		if err2 := json.Unmarshal(data, &wrapped); err2 != nil {
			return nil, fmt.Errorf("decode catalog: %w", err)
		}
		raw = wrapped.Products
	}

	products := make([]types.Product, len(raw))
	for i, pj := range raw {
		products[i] = pj.toProduct()
	}
	return products, nil
}
