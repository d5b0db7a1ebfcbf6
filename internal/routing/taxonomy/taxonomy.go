// Package taxonomy maps raw service text to a canonical service category.
// Resolution is a pure function over tables loaded once from an embedded YAML
// document, so the taxonomy can evolve independently of routing logic and be
// tested in isolation.
package taxonomy

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed tables.yaml
var tablesYAML []byte

// Confidence describes which resolution rule produced the category.
type Confidence string

const (
	// ConfidenceExact means the category hint matched a known category.
	ConfidenceExact Confidence = "exact"
	// ConfidenceCurated means the raw service matched the curated table.
	ConfidenceCurated Confidence = "curated"
	// ConfidenceKeyword means a keyword containment match fired.
	ConfidenceKeyword Confidence = "keyword"
	// ConfidenceDefault means nothing matched and the default category applies.
	ConfidenceDefault Confidence = "default"
)

// Low reports whether the resolution fell through to the default category.
func (c Confidence) Low() bool { return c == ConfidenceDefault }

type tables struct {
	DefaultCategory  string            `yaml:"default_category"`
	Categories       []string          `yaml:"categories"`
	SpecificServices map[string]string `yaml:"specific_services"`
	Keywords         map[string]string `yaml:"keywords"`
}

type keywordEntry struct {
	key      string
	category string
}

// Resolver resolves raw service text to a canonical category.
type Resolver struct {
	defaultCategory  string
	categories       map[string]string // normalized -> canonical spelling
	specificServices map[string]string
	keywords         []keywordEntry // longest key first
}

// NewResolver loads the embedded taxonomy tables.
func NewResolver() (*Resolver, error) {
	var t tables
	if err := yaml.Unmarshal(tablesYAML, &t); err != nil {
		return nil, fmt.Errorf("parse taxonomy tables: %w", err)
	}
	if t.DefaultCategory == "" {
		return nil, fmt.Errorf("taxonomy tables: default_category is required")
	}
	if len(t.Categories) == 0 {
		return nil, fmt.Errorf("taxonomy tables: categories are required")
	}

	r := &Resolver{
		defaultCategory:  t.DefaultCategory,
		categories:       make(map[string]string, len(t.Categories)),
		specificServices: make(map[string]string, len(t.SpecificServices)),
	}
	for _, c := range t.Categories {
		r.categories[normalize(c)] = c
	}
	for raw, category := range t.SpecificServices {
		if _, known := r.categories[normalize(category)]; !known {
			return nil, fmt.Errorf("taxonomy tables: specific service %q maps to unknown category %q", raw, category)
		}
		r.specificServices[normalize(raw)] = category
	}
	for key, category := range t.Keywords {
		if _, known := r.categories[normalize(category)]; !known {
			return nil, fmt.Errorf("taxonomy tables: keyword %q maps to unknown category %q", key, category)
		}
		r.keywords = append(r.keywords, keywordEntry{key: normalize(key), category: category})
	}
	// Longest key first so short keywords cannot shadow more specific ones;
	// lexicographic within a length for determinism.
	sort.Slice(r.keywords, func(i, j int) bool {
		a, b := r.keywords[i], r.keywords[j]
		if len(a.key) != len(b.key) {
			return len(a.key) > len(b.key)
		}
		return a.key < b.key
	})

	return r, nil
}

// DefaultCategory returns the fallback category for unresolvable text.
func (r *Resolver) DefaultCategory() string { return r.defaultCategory }

// KnownCategory reports whether the text names a canonical category and
// returns the canonical spelling.
func (r *Resolver) KnownCategory(text string) (string, bool) {
	canonical, ok := r.categories[normalize(text)]
	return canonical, ok
}

// Resolve maps raw service text plus an optional category hint to a canonical
// category. Precedence, first match wins:
//  1. exact hint match against the known category set
//  2. exact raw-service match against the curated table
//  3. keyword containment, longest key first
//  4. default category, flagged low confidence
func (r *Resolver) Resolve(rawService, categoryHint string) (string, Confidence) {
	if canonical, ok := r.categories[normalize(categoryHint)]; ok {
		return canonical, ConfidenceExact
	}

	raw := normalize(rawService)
	if category, ok := r.specificServices[raw]; ok {
		return category, ConfidenceCurated
	}

	if raw != "" {
		for _, entry := range r.keywords {
			if strings.Contains(raw, entry.key) {
				return entry.category, ConfidenceKeyword
			}
		}
	}

	return r.defaultCategory, ConfidenceDefault
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
