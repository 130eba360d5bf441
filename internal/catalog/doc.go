// Package catalog owns the product data: loading it from JSON files or a
// SQLite cache, serving immutable snapshots with category, brand and ID
// lookups, and running the keyword fallback search used when the vector
// index is unavailable. Refreshes build a new snapshot and swap it
// atomically, so readers always see a complete catalog.
package catalog
