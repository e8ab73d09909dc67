// Package product holds the catalog product model: the raw records supplied
// by callers and the normalized, searchable representation built from them.
package product

import (
	"sort"
	"strings"
)

// Spec is a single raw specification value as it arrives from the catalog.
// Value, Range, Min and Max are strings on purpose: specification data is
// noisy ("120 mm", "±5", "$1,200") and numeric extraction is lossy by design.
type Spec struct {
	Value       string `json:"value,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
	Unit        string `json:"unit,omitempty"`
	Tolerance   string `json:"tolerance,omitempty"`
	Range       string `json:"range,omitempty"`
	Min         string `json:"min,omitempty"`
	Max         string `json:"max,omitempty"`
	Description string `json:"description,omitempty"`
}

// Raw is a caller-supplied product record. Specifications are grouped as
// category -> specification key -> value. The package never mutates a Raw.
type Raw struct {
	ID             string                     `json:"id"`
	Title          string                     `json:"title"`
	Specifications map[string]map[string]Spec `json:"specifications,omitempty"`
}

// Key builds the canonical "category.key" identifier for a specification.
func Key(category, key string) string {
	return category + "." + key
}

// Normalized is the immutable per-product index entry.
type Normalized struct {
	id             string
	title          string
	specifications map[string]map[string]Spec
	searchableText string
	numerics       map[string]Numeric
}

// Normalize builds the searchable representation of a raw product.
// It never fails: a malformed record degrades to a minimal entry rather
// than aborting the index build.
func Normalize(raw Raw) Normalized {
	n := Normalized{
		id:             raw.ID,
		title:          raw.Title,
		specifications: raw.Specifications,
		numerics:       make(map[string]Numeric),
	}

	var text strings.Builder
	text.WriteString(raw.Title)

	for _, category := range sortedKeys(raw.Specifications) {
		specs := raw.Specifications[category]
		for _, key := range sortedKeys(specs) {
			spec := specs[key]
			for _, part := range []string{key, spec.DisplayName, spec.Value, spec.Description} {
				if part != "" {
					text.WriteString(" ")
					text.WriteString(part)
				}
			}
			if num, ok := extractNumeric(spec); ok {
				n.numerics[Key(category, key)] = num
			}
		}
	}

	n.searchableText = strings.ToLower(text.String())
	return n
}

// ID returns the product identifier.
func (n Normalized) ID() string { return n.id }

// Title returns the product title.
func (n Normalized) Title() string { return n.title }

// Specifications returns the original category -> key -> value structure.
// Callers must treat it as read-only.
func (n Normalized) Specifications() map[string]map[string]Spec { return n.specifications }

// SearchableText returns the lowercase text blob used for fuzzy matching.
func (n Normalized) SearchableText() string { return n.searchableText }

// Numeric returns the extracted numeric value for a "category.key"
// specification, if one was extracted.
func (n Normalized) Numeric(specKey string) (Numeric, bool) {
	num, ok := n.numerics[specKey]
	return num, ok
}

// NumericKeys returns the sorted "category.key" identifiers with numeric data.
func (n Normalized) NumericKeys() []string {
	return sortedKeys(n.numerics)
}

// HasCategory reports whether the product carries a non-empty specification
// category under the given name.
func (n Normalized) HasCategory(category string) bool {
	return len(n.specifications[category]) > 0
}

// Categories returns the sorted category names present on the product.
func (n Normalized) Categories() []string {
	return sortedKeys(n.specifications)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
