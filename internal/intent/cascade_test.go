package intent

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopassist/shopsearch/internal/heuristics"
	"github.com/shopassist/shopsearch/pkg/types"
)

type stubTaxonomy struct {
	categories []string
	brands     []string
}

func (s stubTaxonomy) Categories() []string { return s.categories }
func (s stubTaxonomy) Brands() []string     { return s.brands }

type stubTier struct {
	result *types.Classification
	err    error
	calls  int
}

func (s *stubTier) Classify(_ context.Context, _, _ string, _, _ []string) (*types.Classification, error) {
	s.calls++
	return s.result, s.err
}

func newTestClassifier(t *testing.T, primary, secondary Tier) *Classifier {
	t.Helper()
	heur, err := heuristics.NewProvider("")
	require.NoError(t, err)
	tax := stubTaxonomy{
		categories: []string{"Smartphones", "Laptops"},
		brands:     []string{"Acme", "Zenix"},
	}
	return NewClassifier(primary, secondary, heur, tax, nil)
}

func TestCascadeFallsThroughToKeyword(t *testing.T) {
	primary := &stubTier{err: errors.New("provider down")}
	secondary := &stubTier{err: errors.New("also down")}
	c := newTestClassifier(t, primary, secondary)

	got := c.Classify(context.Background(), "add this to my cart", "s1")

	assert.Equal(t, types.IntentCart, got.Intent)
	assert.Equal(t, types.SourceKeyword, got.Source)
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 1, secondary.calls)
}

func TestCascadeStopsAtPrimary(t *testing.T) {
	primary := &stubTier{result: &types.Classification{Intent: types.IntentSearch, Confidence: 0.95}}
	secondary := &stubTier{}
	c := newTestClassifier(t, primary, secondary)

	got := c.Classify(context.Background(), "show me laptops", "s1")

	assert.Equal(t, types.SourcePrimary, got.Source)
	assert.Equal(t, 0, secondary.calls, "secondary tier must not run when primary succeeds")
}

func TestCascadeSecondaryAfterPrimaryFailure(t *testing.T) {
	primary := &stubTier{err: errors.New("down")}
	secondary := &stubTier{result: &types.Classification{Intent: types.IntentSupport, Confidence: 0.9}}
	c := newTestClassifier(t, primary, secondary)

	got := c.Classify(context.Background(), "return policy", "s1")

	assert.Equal(t, types.IntentSupport, got.Intent)
	assert.Equal(t, types.SourceSecondary, got.Source)
}

func TestCascadeEnrichmentAppliesToLLMResults(t *testing.T) {
	primary := &stubTier{result: &types.Classification{Intent: types.IntentSearch, Confidence: 0.95}}
	c := newTestClassifier(t, primary, nil)

	got := c.Classify(context.Background(), "Acme phones under 300 in stock", "s1")

	require.NotNil(t, got.PriceMax, "price extraction runs even when the LLM tier answered")
	assert.Equal(t, 300.0, *got.PriceMax)
	assert.Equal(t, "Acme", got.Entities.Brand)
	require.NotNil(t, got.InStock)
	assert.True(t, *got.InStock)
}

func TestCascadeFollowUpKeyword(t *testing.T) {
	c := newTestClassifier(t, nil, nil)

	got := c.Classify(context.Background(), "tell me about the first option", "s1")

	assert.Equal(t, types.IntentSearch, got.Intent, "product follow-ups are SEARCH, never SUPPORT")
	assert.True(t, got.IsFollowUp)
	assert.Equal(t, "first", got.ReferencedItem)
}

func TestLLMTierClassify(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Prompt string `json:"prompt"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Contains(t, req.Prompt, "show me acme laptops")
		assert.Contains(t, req.Prompt, "Laptops", "closed category set included in prompt")

		// Models often wrap JSON in a markdown fence.
		_ = json.NewEncoder(w).Encode(map[string]string{
			"text": "```json\n{\"intent\": \"search\", \"confidence\": 0.92, \"entities\": {\"product_type\": \"laptops\", \"brand\": \"ACME\"}}\n```",
		})
	}))
	defer server.Close()

	tier := NewLLMTier(server.URL, "key")
	got, err := tier.Classify(context.Background(), "show me acme laptops", "", []string{"Laptops"}, []string{"Acme"})
	require.NoError(t, err)

	assert.Equal(t, types.IntentSearch, got.Intent)
	assert.Equal(t, 0.92, got.Confidence)
	assert.Equal(t, "Laptops", got.Entities.ProductType, "canonicalized to catalog spelling")
	assert.Equal(t, "Acme", got.Entities.Brand)
}

func TestLLMTierMalformedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"text": "sorry, I cannot help with that"})
	}))
	defer server.Close()

	tier := NewLLMTier(server.URL, "key")
	_, err := tier.Classify(context.Background(), "anything", "", nil, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTierFailed)
}

func TestLLMTierIntentOutsideClosedSet(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{
			"text": `{"intent": "PURCHASE_ADVICE", "confidence": 0.9}`,
		})
	}))
	defer server.Close()

	tier := NewLLMTier(server.URL, "key")
	_, err := tier.Classify(context.Background(), "anything", "", nil, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTierFailed)
}

func TestLLMTierServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	tier := NewLLMTier(server.URL, "key")
	_, err := tier.Classify(context.Background(), "anything", "", nil, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTierFailed)
}
