// Package embedder converts text into fixed-dimension vectors for similarity
// search.
//
// The primary path calls the Hugging Face inference API with retry and
// escalating per-attempt timeouts (15s, 30s, 45s); client errors are not
// retried. When the API is unavailable the Resilient wrapper degrades to a
// deterministic hash-seeded generator, so the same text always yields the
// same vector even with no live API. Successful remote calls notify an
// optional UsageRecorder for free-tier monitoring.
//
// Typical wiring:
//
//	cache := embedder.NewCache(10000)
//	hf := embedder.NewHFProvider(os.Getenv("HF_API_KEY"), "")
//	emb := embedder.NewResilient(hf, cache)
//
//	vec, _ := emb.Embed(ctx, "wireless gaming headset")
package embedder
