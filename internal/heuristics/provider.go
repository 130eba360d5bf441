package heuristics

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

func normKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Load reads a heuristics config file and merges it over the defaults.
// List and map keys replace wholesale, except intent_keywords which merges
// per intent so a file can override just one keyword list without losing the
// rest. Thresholds and feature flags merge per key, so an explicit false or
// zero in the file wins over the default. A missing file is not an error; it
// yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Printf("heuristics: no config at %s, using defaults", path)
			return cfg, nil
		}
		return nil, fmt.Errorf("read heuristics config: %w", err)
	}

	var overlay configOverlay
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return nil, fmt.Errorf("parse heuristics config: %w", err)
	}

	merge(cfg, &overlay)
	log.Printf("heuristics: loaded config from %s", path)
	return cfg, nil
}

// configOverlay mirrors Config with pointer scalars, so an explicit false or
// zero in the file is distinguishable from an absent key. Absent keys keep
// the base value; present keys win, whatever their value.
type configOverlay struct {
	CategorySynonyms map[string][]string `yaml:"category_synonyms"`
	BrandSynonyms    map[string][]string `yaml:"brand_synonyms"`
	IntentKeywords   map[string][]string `yaml:"intent_keywords"`
	GenericNouns     []string            `yaml:"generic_nouns"`
	Phrases          Phrases             `yaml:"phrases"`
	RatingPatterns   []string            `yaml:"rating_patterns"`
	DiscountPatterns []string            `yaml:"discount_patterns"`
	Thresholds       thresholdsOverlay   `yaml:"thresholds"`
	FeatureFlags     featureFlagsOverlay `yaml:"feature_flags"`
	RefineTerms      []string            `yaml:"refine_generic_terms"`
}

type thresholdsOverlay struct {
	FuzzySimilarityBrand    *int `yaml:"fuzzy_similarity_brand"`
	FuzzySimilarityCategory *int `yaml:"fuzzy_similarity_category"`
	FuzzyUnambiguousMargin  *int `yaml:"fuzzy_unambiguous_margin"`
	MinTokenLength          *int `yaml:"min_token_length"`
}

type featureFlagsOverlay struct {
	FallbackFuzzyBrand    *bool `yaml:"fallback_fuzzy_brand"`
	FallbackFuzzyCategory *bool `yaml:"fallback_fuzzy_category"`
	CaseInsensitiveFilter *bool `yaml:"case_insensitive_filters"`
	ServerSideTagFilter   *bool `yaml:"server_side_tag_filter"`
	RerankEnabled         *bool `yaml:"rerank_enabled"`
}

func setInt(dst *int, src *int) {
	if src != nil {
		*dst = *src
	}
}

func setBool(dst *bool, src *bool) {
	if src != nil {
		*dst = *src
	}
}

func merge(base *Config, overlay *configOverlay) {
	if overlay.CategorySynonyms != nil {
		base.CategorySynonyms = overlay.CategorySynonyms
	}
	if overlay.BrandSynonyms != nil {
		base.BrandSynonyms = overlay.BrandSynonyms
	}
	for intent, words := range overlay.IntentKeywords {
		base.IntentKeywords[intent] = words
	}
	if overlay.GenericNouns != nil {
		base.GenericNouns = overlay.GenericNouns
	}
	if overlay.Phrases.InStock != nil {
		base.Phrases.InStock = overlay.Phrases.InStock
	}
	if overlay.Phrases.OutOfStock != nil {
		base.Phrases.OutOfStock = overlay.Phrases.OutOfStock
	}
	if overlay.Phrases.FollowUp != nil {
		base.Phrases.FollowUp = overlay.Phrases.FollowUp
	}
	if overlay.Phrases.FollowUpIndicators != nil {
		base.Phrases.FollowUpIndicators = overlay.Phrases.FollowUpIndicators
	}
	if overlay.RatingPatterns != nil {
		base.RatingPatterns = overlay.RatingPatterns
	}
	if overlay.DiscountPatterns != nil {
		base.DiscountPatterns = overlay.DiscountPatterns
	}
	setInt(&base.Thresholds.FuzzySimilarityBrand, overlay.Thresholds.FuzzySimilarityBrand)
	setInt(&base.Thresholds.FuzzySimilarityCategory, overlay.Thresholds.FuzzySimilarityCategory)
	setInt(&base.Thresholds.FuzzyUnambiguousMargin, overlay.Thresholds.FuzzyUnambiguousMargin)
	setInt(&base.Thresholds.MinTokenLength, overlay.Thresholds.MinTokenLength)
	setBool(&base.FeatureFlags.FallbackFuzzyBrand, overlay.FeatureFlags.FallbackFuzzyBrand)
	setBool(&base.FeatureFlags.FallbackFuzzyCategory, overlay.FeatureFlags.FallbackFuzzyCategory)
	setBool(&base.FeatureFlags.CaseInsensitiveFilter, overlay.FeatureFlags.CaseInsensitiveFilter)
	setBool(&base.FeatureFlags.ServerSideTagFilter, overlay.FeatureFlags.ServerSideTagFilter)
	setBool(&base.FeatureFlags.RerankEnabled, overlay.FeatureFlags.RerankEnabled)
	if overlay.RefineTerms != nil {
		base.RefineTerms = overlay.RefineTerms
	}
}

// Provider holds the active heuristics config and swaps it atomically on
// reload, so in-flight classification always sees a complete table set.
type Provider struct {
	path    string
	current atomic.Pointer[Config]
}

// NewProvider loads the config at path (defaults if empty or absent) and
// returns a provider serving it.
func NewProvider(path string) (*Provider, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	p := &Provider{path: path}
	p.current.Store(cfg)
	return p, nil
}

// Current returns the active config. Callers must not mutate it.
func (p *Provider) Current() *Config {
	return p.current.Load()
}

// Reload re-reads the config file. On failure the previous config stays
// active.
func (p *Provider) Reload() error {
	cfg, err := Load(p.path)
	if err != nil {
		return err
	}
	p.current.Store(cfg)
	return nil
}

// Watch reloads the config whenever its file changes, until stop is closed.
// Watching the parent directory catches editors that replace the file
// instead of writing in place.
func (p *Provider) Watch(stop <-chan struct{}) error {
	if p.path == "" {
		return nil
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create config watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(p.path)); err != nil {
		watcher.Close()
		return fmt.Errorf("watch config dir: %w", err)
	}

	go func() {
		defer watcher.Close()
		target := filepath.Clean(p.path)
		for {
			select {
			case <-stop:
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				if err := p.Reload(); err != nil {
					log.Printf("heuristics: reload failed, keeping previous config: %v", err)
				} else {
					log.Printf("heuristics: config reloaded from %s", p.path)
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Printf("heuristics: watcher error: %v", err)
			}
		}
	}()
	return nil
}
