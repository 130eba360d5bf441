// Package search orchestrates retrieval: it embeds the query, runs a
// filtered vector search, falls back to keyword search over the cached
// catalog when the index is unavailable or empty, applies tag post-filters,
// reranks and truncates. Only an unloadable catalog is an error; no results
// is an empty list.
package search
