package intent

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shopassist/shopsearch/pkg/types"
)

// ErrTierFailed marks any LLM-tier failure: transport errors, non-2xx
// responses, unparseable output, or an intent outside the closed set. The
// cascade treats them all the same way and moves to the next tier.
var ErrTierFailed = errors.New("classification tier failed")

const promptTemplate = `You are an intent classifier for an e-commerce chatbot.
Classify this message into one of these intents:

1. SEARCH - Find/browse products OR ask about specific products (e.g., "show me laptops", "tell me about the first option")
2. CART - Cart operations (e.g., "add to cart", "remove item", "view cart")
3. RECOMMENDATION - Product suggestions (e.g., "recommend me a phone", "what's trending")
4. SUPPORT - Help with policies ONLY (e.g., "return policy", "shipping info", "warranty", "contact support")
5. COMPARE - Compare two results from the last shown list or by name (e.g., "compare the first and second", "iphone vs pixel")
6. GREETING - General greetings or social conversation (e.g., "hi", "hello", "good morning")

IMPORTANT: Questions about specific products (like "tell me about the first option") are SEARCH, not SUPPORT.

%sAllowed product categories (closed set): %s
Allowed brands (closed set): %s

User message: %q

Respond with ONLY valid JSON:
{
    "intent": "SEARCH|CART|RECOMMENDATION|SUPPORT|COMPARE|GREETING",
    "confidence": 0.0-1.0,
    "is_followup": true/false,
    "referenced_item": "first"/"second"/"third"/null,
    "entities": {
        "product_type": "one of the allowed product categories or null if unknown",
        "brand": "one of the allowed brands or null if unknown",
        "action": "specific action if any",
        "keywords": ["relevant", "keywords"]
    }
}`

// LLMTier classifies via an HTTP completion endpoint: POST a prompt, get
// free-form text back and parse it as the intent JSON. The same client
// serves both cascade tiers, pointed at different endpoints.
type LLMTier struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
}

// LLMOption configures an LLMTier.
type LLMOption func(*LLMTier)

// WithLLMHTTPClient overrides the HTTP client, mainly for tests.
func WithLLMHTTPClient(hc *http.Client) LLMOption {
	return func(t *LLMTier) {
		t.httpClient = hc
	}
}

// NewLLMTier creates a classification tier against the given endpoint.
func NewLLMTier(endpoint, apiKey string, opts ...LLMOption) *LLMTier {
	t := &LLMTier{
		endpoint: endpoint,
		apiKey:   apiKey,
		httpClient: &http.Client{
			Timeout: 20 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// llmResult is the shape the prompt asks for. Extra fields are ignored.
type llmResult struct {
	Intent         string  `json:"intent"`
	Confidence     float64 `json:"confidence"`
	IsFollowUp     bool    `json:"is_followup"`
	ReferencedItem *string `json:"referenced_item"`
	Brand          *string `json:"brand"`
	Entities       struct {
		ProductType *string  `json:"product_type"`
		Brand       *string  `json:"brand"`
		Action      *string  `json:"action"`
		Keywords    []string `json:"keywords"`
	} `json:"entities"`
}

// Classify sends the prompt and parses the response. Closed-set fields
// (product type, brand) are canonicalized against the catalog; values
// outside the allowed sets are dropped rather than passed through.
func (t *LLMTier) Classify(ctx context.Context, message, convContext string, categories, brands []string) (*types.Classification, error) {
	contextSection := ""
	if strings.TrimSpace(convContext) != "" {
		contextSection = fmt.Sprintf("Previous conversation:\n%s\n\n", convContext)
	}
	catsJSON, _ := json.Marshal(categories)
	brandsJSON, _ := json.Marshal(brands)
	prompt := fmt.Sprintf(promptTemplate, contextSection, catsJSON, brandsJSON, message)

	text, err := t.complete(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var parsed llmResult
	if err := json.Unmarshal([]byte(stripCodeFence(text)), &parsed); err != nil {
		return nil, fmt.Errorf("%w: unparseable response: %v", ErrTierFailed, err)
	}

	it := types.Intent(strings.ToUpper(strings.TrimSpace(parsed.Intent)))
	if !it.Valid() {
		return nil, fmt.Errorf("%w: intent %q outside closed set", ErrTierFailed, parsed.Intent)
	}

	c := &types.Classification{
		Intent:     it,
		Confidence: parsed.Confidence,
		IsFollowUp: parsed.IsFollowUp,
	}
	if parsed.ReferencedItem != nil {
		c.ReferencedItem = *parsed.ReferencedItem
	}
	if parsed.Entities.ProductType != nil {
		c.Entities.ProductType = canonicalize(*parsed.Entities.ProductType, categories)
	}
	brandVal := parsed.Entities.Brand
	if brandVal == nil {
		brandVal = parsed.Brand
	}
	if brandVal != nil {
		c.Entities.Brand = canonicalize(*brandVal, brands)
	}
	if parsed.Entities.Action != nil {
		c.Entities.Action = *parsed.Entities.Action
	}
	c.Entities.Keywords = parsed.Entities.Keywords

	return c, nil
}

func (t *LLMTier) complete(ctx context.Context, prompt string) (string, error) {
	payload, err := json.Marshal(map[string]string{"prompt": prompt})
	if err != nil {
		return "", fmt.Errorf("marshal prompt: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if t.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+t.apiKey)
	}

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTierFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("%w: %s: %s", ErrTierFailed, resp.Status, strings.TrimSpace(string(msg)))
	}

	var out struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", ErrTierFailed, err)
	}
	return out.Text, nil
}

// stripCodeFence removes a markdown ```json fence if the model wrapped its
// answer in one.
func stripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.ReplaceAll(text, "```", "")
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		text = strings.ReplaceAll(text, "```", "")
	}
	return strings.TrimSpace(text)
}

// canonicalize maps a value onto its catalog spelling, case-insensitively.
// Values outside the allowed set collapse to empty.
func canonicalize(val string, allowed []string) string {
	v := strings.ToLower(strings.TrimSpace(val))
	if v == "" || v == "null" {
		return ""
	}
	for _, a := range allowed {
		if v == strings.ToLower(strings.TrimSpace(a)) {
			return a
		}
	}
	return ""
}
