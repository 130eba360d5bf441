package types

// SearchResult is a product returned from retrieval with its relevance
// signals attached. Similarity is the index's native score (or a neutral
// value for keyword-fallback results); Score is the blended reranking score.
type SearchResult struct {
	Product    Product `json:"product"`
	Similarity float64 `json:"similarity_score"`
	Score      float64 `json:"score"`
}

// SupportDoc is a policy/FAQ knowledge unit for retrieval-augmented support
// answers.
type SupportDoc struct {
	ID           string  `json:"id"`
	Content      string  `json:"content"`
	DocType      string  `json:"type"`
	Category     string  `json:"category"`
	Source       string  `json:"source"`
	ProductCount int     `json:"product_count,omitempty"`
	Score        float64 `json:"score,omitempty"`
}
