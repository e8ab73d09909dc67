// Package search evaluates the active filter state against the product
// index and produces ranked results.
package search

import (
	"math"
	"sort"

	"go.uber.org/zap"

	"github.com/meridian-cloud/specdex/internal/domain/product"
	"github.com/meridian-cloud/specdex/internal/domain/search/filter"
	"github.com/meridian-cloud/specdex/internal/domain/search/result"
	indexuc "github.com/meridian-cloud/specdex/internal/usecase/index"
)

// neutralScore is the relevance assigned to every product when no filter is
// active, so that sort-by-relevance stays meaningful in the default view.
const neutralScore = 0.5

// Service scores indexed products against a filter state. Filter types
// compose with AND semantics: each active criterion is a hard gate, and the
// final score is the unweighted average of the per-criterion contributions.
type Service struct {
	index     *indexuc.Service
	threshold float64
	logger    *zap.Logger
}

// New creates a search service with the default fuzzy threshold.
func New(index *indexuc.Service, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{index: index, threshold: DefaultThreshold, logger: logger}
}

// WithThreshold overrides the fuzzy match threshold. Values outside (0, 1]
// are ignored.
func (s *Service) WithThreshold(t float64) *Service {
	if t > 0 && t <= 1 {
		s.threshold = t
	}
	return s
}

// Search evaluates every indexed product against the filter state and
// returns matches sorted by descending relevance, ties keeping index order.
// It never panics outward: search backs an interactive surface, so an
// internal failure degrades to an empty result list.
func (s *Service) Search(state *filter.State) (results []result.Result) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("search recovered from panic", zap.Any("panic", r))
			results = []result.Result{}
		}
	}()

	products := s.index.Products()
	results = make([]result.Result, 0, len(products))
	for i := range products {
		if res, ok := s.score(&products[i], state); ok {
			results = append(results, res)
		}
	}

	rank(results)
	return results
}

// score computes the relevance of one product, or reports no match.
func (s *Service) score(p *product.Normalized, state *filter.State) (result.Result, bool) {
	if state.IsEmpty() {
		return result.New(*p, neutralScore, nil), true
	}

	total := 0.0
	criteria := 0
	var matched []string

	if query := state.Text(); query != "" {
		criteria++
		sc := similarity(query, p.SearchableText())
		if sc < s.threshold {
			return result.Result{}, false
		}
		total += sc
		matched = append(matched, s.matchingFields(p, query)...)
	}

	for _, specKey := range state.RangeKeys() {
		criteria++
		want, _ := state.Range(specKey)
		num, ok := p.Numeric(specKey)
		if !ok {
			return result.Result{}, false
		}
		sc, ok := overlapScore(num, want)
		if !ok {
			return result.Result{}, false
		}
		total += sc
		matched = appendUnique(matched, specKey)
	}

	for _, category := range state.Categories() {
		criteria++
		if !p.HasCategory(category) {
			return result.Result{}, false
		}
	}

	return result.New(*p, total/float64(criteria), matched), true
}

// matchingFields scans every specification field individually and collects
// the "category.key" identifiers whose display name, value or description
// clears the fuzzy threshold. Used for highlighting.
func (s *Service) matchingFields(p *product.Normalized, query string) []string {
	var matched []string
	for _, category := range p.Categories() {
		specs := p.Specifications()[category]
		for _, key := range sortedSpecKeys(specs) {
			spec := specs[key]
			for _, field := range []string{spec.DisplayName, spec.Value, spec.Description} {
				if similarity(query, field) >= s.threshold {
					matched = appendUnique(matched, product.Key(category, key))
					break
				}
			}
		}
	}
	return matched
}

// overlapScore scores how much of the product interval the filter interval
// covers: overlap size over the larger of the two widths. Two coinciding
// point values score 1. No overlap means no match.
func overlapScore(num product.Numeric, want filter.Range) (float64, bool) {
	if num.Max < want.Min || num.Min > want.Max {
		return 0, false
	}

	width := math.Max(num.Max-num.Min, want.Width())
	if width == 0 {
		// Both intervals collapse to the same point.
		return 1, true
	}

	overlap := math.Min(num.Max, want.Max) - math.Max(num.Min, want.Min)
	if overlap < 0 {
		overlap = 0
	}
	return overlap / width, true
}

func appendUnique(list []string, s string) []string {
	for _, have := range list {
		if have == s {
			return list
		}
	}
	return append(list, s)
}

func sortedSpecKeys(specs map[string]product.Spec) []string {
	keys := make([]string, 0, len(specs))
	for k := range specs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
