// Package types defines the shared data model for the search and retrieval
// core: catalog products, support documents, intent classifications, and the
// structured filter spec passed into retrieval.
//
// Types here are plain data with derivation helpers only; behavior lives in
// the internal packages that operate on them.
package types
