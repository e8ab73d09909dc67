// Package filter holds the mutable per-session filter state applied to
// catalog searches.
package filter

import (
	"sort"
	"strings"
)

// Range is an inclusive numeric interval.
type Range struct {
	Min float64
	Max float64
}

// Width returns the size of the interval.
func (r Range) Width() float64 { return r.Max - r.Min }

// State is the filter state of one search session: a free-text query,
// numeric range filters keyed by "category.key", and required categories.
// State is not safe for concurrent use; one session owns one State.
type State struct {
	text       string
	ranges     map[string]Range
	categories map[string]struct{}
}

// NewState creates an empty filter state.
func NewState() *State {
	return &State{
		ranges:     make(map[string]Range),
		categories: make(map[string]struct{}),
	}
}

// SetText sets the free-text query. The query is trimmed; an empty result
// disables text filtering.
func (s *State) SetText(query string) {
	s.text = strings.TrimSpace(query)
}

// Text returns the active text query, "" when no text filter is set.
func (s *State) Text() string { return s.text }

// SetRange adds or replaces a numeric range filter for a specification key.
// An inverted interval (min > max) is silently ignored: invalid ranges are
// treated as caller noise, not errors.
func (s *State) SetRange(specKey string, min, max float64) {
	if min > max {
		return
	}
	s.ranges[specKey] = Range{Min: min, Max: max}
}

// RemoveRange drops the range filter for a key. Unknown keys are a no-op.
func (s *State) RemoveRange(specKey string) {
	delete(s.ranges, specKey)
}

// Range returns the active range filter for a key.
func (s *State) Range(specKey string) (Range, bool) {
	r, ok := s.ranges[specKey]
	return r, ok
}

// RangeKeys returns the sorted specification keys with an active range filter.
func (s *State) RangeKeys() []string {
	keys := make([]string, 0, len(s.ranges))
	for k := range s.ranges {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// AddCategory requires a category to be present on matching products.
func (s *State) AddCategory(category string) {
	s.categories[category] = struct{}{}
}

// RemoveCategory drops a category requirement. Unknown names are a no-op.
func (s *State) RemoveCategory(category string) {
	delete(s.categories, category)
}

// Categories returns the sorted required categories.
func (s *State) Categories() []string {
	cats := make([]string, 0, len(s.categories))
	for c := range s.categories {
		cats = append(cats, c)
	}
	sort.Strings(cats)
	return cats
}

// Clear resets the state to no active filters.
func (s *State) Clear() {
	s.text = ""
	s.ranges = make(map[string]Range)
	s.categories = make(map[string]struct{})
}

// IsEmpty reports whether no filter of any type is active.
func (s *State) IsEmpty() bool {
	return s.text == "" && len(s.ranges) == 0 && len(s.categories) == 0
}
