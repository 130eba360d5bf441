package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/shopassist/shopsearch/pkg/types"
)

const schema = `
CREATE TABLE IF NOT EXISTS products (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	category TEXT NOT NULL DEFAULT '',
	brand TEXT NOT NULL DEFAULT '',
	price REAL NOT NULL DEFAULT 0,
	original_price REAL NOT NULL DEFAULT 0,
	discount_pct REAL NOT NULL DEFAULT 0,
	rating REAL NOT NULL DEFAULT 0,
	stock INTEGER NOT NULL DEFAULT 0,
	tags TEXT NOT NULL DEFAULT '',
	sku TEXT NOT NULL DEFAULT '',
	thumbnail TEXT NOT NULL DEFAULT '',
	image TEXT NOT NULL DEFAULT ''
);
`

// SQLiteStore persists the catalog in a local SQLite database. It doubles as
// a Loader, so a Store can read straight from it.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the catalog database at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open catalog db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init catalog schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveCatalog replaces the stored catalog wholesale in one transaction.
func (s *SQLiteStore) SaveCatalog(ctx context.Context, products []types.Product) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM products"); err != nil {
		return fmt.Errorf("clear products: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO products
		(id, title, description, category, brand, price, original_price,
		 discount_pct, rating, stock, tags, sku, thumbnail, image)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, p := range products {
		_, err := stmt.ExecContext(ctx,
			p.ID, p.Title, p.Description, p.Category, p.Brand,
			p.Price, p.OriginalPrice, p.DiscountPercentage, p.Rating, p.Stock,
			strings.Join(p.Tags, ","), p.SKU, p.Thumbnail, p.Image)
		if err != nil {
			return fmt.Errorf("insert product %s: %w", p.ID, err)
		}
	}

	return tx.Commit()
}

// LoadProducts reads the full catalog.
func (s *SQLiteStore) LoadProducts(ctx context.Context) ([]types.Product, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, description, category, brand, price, original_price,
		       discount_pct, rating, stock, tags, sku, thumbnail, image
		FROM products ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	var products []types.Product
	for rows.Next() {
		var p types.Product
		var tags string
		err := rows.Scan(&p.ID, &p.Title, &p.Description, &p.Category, &p.Brand,
			&p.Price, &p.OriginalPrice, &p.DiscountPercentage, &p.Rating, &p.Stock,
			&tags, &p.SKU, &p.Thumbnail, &p.Image)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		if tags != "" {
			p.Tags = strings.Split(tags, ",")
		}
		products = append(products, p)
	}
	return products, rows.Err()
}
