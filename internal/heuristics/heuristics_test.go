package heuristics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTables(t *testing.T) {
	cfg := Default()

	assert.Contains(t, cfg.CategorySynonyms["smartphones"], "cellphone")
	assert.Contains(t, cfg.IntentKeywords["cart"], "checkout")
	assert.Contains(t, cfg.Phrases.OutOfStock, "sold out")
	assert.Equal(t, 90, cfg.Thresholds.FuzzySimilarityBrand)
	assert.Equal(t, 3, cfg.Thresholds.FuzzyUnambiguousMargin)
	assert.NotEmpty(t, cfg.RatingPatterns)
	assert.NotEmpty(t, cfg.DiscountPatterns)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default().GenericNouns, cfg.GenericNouns)
}

func TestLoadMergesIntentKeywordsPerIntent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "heuristics.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
intent_keywords:
  cart: ["basket"]
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"basket"}, cfg.IntentKeywords["cart"], "overridden intent replaced")
	assert.Contains(t, cfg.IntentKeywords["support"], "refund", "untouched intents keep defaults")
}

func TestLoadExplicitFalseFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "heuristics.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
feature_flags:
  case_insensitive_filters: false
  server_side_tag_filter: false
  rerank_enabled: false
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.False(t, cfg.FeatureFlags.CaseInsensitiveFilter)
	assert.False(t, cfg.FeatureFlags.ServerSideTagFilter)
	assert.False(t, cfg.FeatureFlags.RerankEnabled, "explicit false must override the default")
}

func TestLoadPartialFlagsAndThresholds(t *testing.T) {
	path := filepath.Join(t.TempDir(), "heuristics.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
feature_flags:
  fallback_fuzzy_brand: true
thresholds:
  fuzzy_similarity_brand: 80
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.True(t, cfg.FeatureFlags.FallbackFuzzyBrand)
	assert.True(t, cfg.FeatureFlags.RerankEnabled, "unmentioned flags keep their defaults")
	assert.True(t, cfg.FeatureFlags.ServerSideTagFilter, "unmentioned flags keep their defaults")
	assert.Equal(t, 80, cfg.Thresholds.FuzzySimilarityBrand)
	assert.Equal(t, 3, cfg.Thresholds.FuzzyUnambiguousMargin, "unmentioned thresholds keep their defaults")
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "heuristics.yaml")
	require.NoError(t, os.WriteFile(path, []byte("category_synonyms: [not: a: map"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}

func TestCategorySynonymsFor(t *testing.T) {
	cfg := Default()

	syn := cfg.CategorySynonymsFor([]string{"Smartphones", "Laptops"})

	assert.Equal(t, "Smartphones", syn["phone"], "synonym maps to catalog spelling")
	assert.Equal(t, "Laptops", syn["notebook"])
	_, ok := syn["tv"]
	assert.False(t, ok, "synonyms for absent categories are dropped")
}

func TestProviderReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "heuristics.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`generic_nouns: ["gadget"]`), 0o644))

	p, err := NewProvider(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"gadget"}, p.Current().GenericNouns)

	require.NoError(t, os.WriteFile(path, []byte(`generic_nouns: ["widget"]`), 0o644))
	require.NoError(t, p.Reload())
	assert.Equal(t, []string{"widget"}, p.Current().GenericNouns)
}

func TestProviderReloadFailureKeepsPrevious(t *testing.T) {
	path := filepath.Join(t.TempDir(), "heuristics.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`generic_nouns: ["gadget"]`), 0o644))

	p, err := NewProvider(path)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("generic_nouns: [broken"), 0o644))
	require.Error(t, p.Reload())
	assert.Equal(t, []string{"gadget"}, p.Current().GenericNouns)
}

func TestProviderWatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "heuristics.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`generic_nouns: ["gadget"]`), 0o644))

	p, err := NewProvider(path)
	require.NoError(t, err)

	stop := make(chan struct{})
	defer close(stop)
	require.NoError(t, p.Watch(stop))

	require.NoError(t, os.WriteFile(path, []byte(`generic_nouns: ["widget"]`), 0o644))

	require.Eventually(t, func() bool {
		nouns := p.Current().GenericNouns
		return len(nouns) == 1 && nouns[0] == "widget"
	}, 3*time.Second, 20*time.Millisecond, "watcher should pick up the rewrite")
}
