// Package specdex is an in-memory specification index and query engine for
// product catalogs. It normalizes heterogeneous per-product specification
// data into a searchable index and answers queries combining fuzzy text
// matching, numeric range filters and category membership, returning ranked
// results with per-field match provenance.
//
// An Engine is built once per session, initialized with the catalog, then
// driven by chainable filter mutators:
//
//	eng := specdex.New()
//	eng.Initialize(products)
//	results := eng.SetTextSearch("skimmer").
//		AddRangeFilter("performance.flow_rate", 8, 12).
//		Search()
//
// The engine is deliberately forgiving: malformed catalog records degrade to
// minimal index entries, invalid filter arguments are ignored, and Search
// never panics outward. An Engine is not safe for concurrent use; it models
// a single interactive session.
package specdex

import (
	"go.uber.org/zap"

	"github.com/meridian-cloud/specdex/internal/domain/product"
	"github.com/meridian-cloud/specdex/internal/domain/search/filter"
	indexuc "github.com/meridian-cloud/specdex/internal/usecase/index"
	searchuc "github.com/meridian-cloud/specdex/internal/usecase/search"
)

// Product is a raw catalog record: an identifier, a title, and
// specifications grouped as category -> key -> value. The engine never
// mutates supplied records.
type Product = product.Raw

// Spec is a single raw specification value. Numeric content is extracted
// from Value, Range ("min-max") or Min/Max with a lossy parser that ignores
// units and currency symbols.
type Spec = product.Spec

// NormalizedProduct is the immutable indexed form of a record.
type NormalizedProduct = product.Normalized

// SpecRange is the aggregate numeric span of one specification key across
// the index.
type SpecRange = indexuc.KeyRange

// Result is a ranked search hit. MatchedSpecs lists the "category.key"
// specifications that contributed to the match, for highlighting.
type Result struct {
	Product      NormalizedProduct
	Score        float64
	MatchedSpecs []string
}

// Engine is the specification index and query engine for one session.
type Engine struct {
	index  *indexuc.Service
	search *searchuc.Service
	state  *filter.State
}

// New creates an engine with an empty index and no active filters.
func New(opts ...Option) *Engine {
	cfg := settings{threshold: searchuc.DefaultThreshold, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&cfg)
	}

	idx := indexuc.New(cfg.logger)
	return &Engine{
		index:  idx,
		search: searchuc.New(idx, cfg.logger).WithThreshold(cfg.threshold),
		state:  filter.NewState(),
	}
}

// Initialize builds the index from the given records, replacing any
// previous index. Records without an identifier are dropped; duplicate
// identifiers are indexed independently. Initialize never fails.
func (e *Engine) Initialize(products []Product) {
	e.index.Build(products)
}

// SetTextSearch sets the fuzzy text query. Whitespace-only queries disable
// the text filter.
func (e *Engine) SetTextSearch(query string) *Engine {
	e.state.SetText(query)
	return e
}

// AddRangeFilter requires the given specification key to overlap [min, max].
// An inverted interval (min > max) is silently ignored.
func (e *Engine) AddRangeFilter(specKey string, min, max float64) *Engine {
	e.state.SetRange(specKey, min, max)
	return e
}

// RemoveRangeFilter drops the range filter for a key.
func (e *Engine) RemoveRangeFilter(specKey string) *Engine {
	e.state.RemoveRange(specKey)
	return e
}

// AddCategoryFilter requires matching products to carry a non-empty
// specification category of the given name.
func (e *Engine) AddCategoryFilter(category string) *Engine {
	e.state.AddCategory(category)
	return e
}

// RemoveCategoryFilter drops a category requirement.
func (e *Engine) RemoveCategoryFilter(category string) *Engine {
	e.state.RemoveCategory(category)
	return e
}

// ClearFilters resets the filter state to no active filters.
func (e *Engine) ClearFilters() *Engine {
	e.state.Clear()
	return e
}

// Search evaluates the current filter state against the index and returns
// matches sorted by descending relevance, ties keeping catalog order. With
// no active filters every product matches with a neutral 0.5 score. Search
// never panics; internal failure yields an empty slice.
func (e *Engine) Search() []Result {
	hits := e.search.Search(e.state)
	results := make([]Result, len(hits))
	for i := range hits {
		results[i] = Result{
			Product:      hits[i].Product(),
			Score:        hits[i].Score(),
			MatchedSpecs: hits[i].MatchedSpecs(),
		}
	}
	return results
}

// Count returns the number of indexed products.
func (e *Engine) Count() int {
	return e.index.Len()
}

// AvailableCategories returns the sorted unique category names across the
// index.
func (e *Engine) AvailableCategories() []string {
	return e.index.Categories()
}

// NumericSpecKeys returns the sorted unique "category.key" identifiers with
// at least one numeric value in the index.
func (e *Engine) NumericSpecKeys() []string {
	return e.index.NumericKeys()
}

// SpecRange returns the aggregate min/max and unit for one specification
// key. The second return is false when no product carries the key
// numerically.
func (e *Engine) SpecRange(specKey string) (SpecRange, bool) {
	return e.index.Range(specKey)
}
