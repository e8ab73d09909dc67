// Package result defines the search hit value object.
package result

import "github.com/meridian-cloud/specdex/internal/domain/product"

// Result is a single ranked search hit. MatchedSpecs lists the
// "category.key" specifications that contributed to the match, in
// first-seen order, for downstream highlighting.
type Result struct {
	product      product.Normalized
	score        float64
	matchedSpecs []string
}

// New creates a search result.
func New(p product.Normalized, score float64, matchedSpecs []string) Result {
	return Result{product: p, score: score, matchedSpecs: matchedSpecs}
}

// Product returns the matched product.
func (r *Result) Product() product.Normalized { return r.product }

// Score returns the relevance score.
func (r *Result) Score() float64 { return r.score }

// MatchedSpecs returns the contributing "category.key" identifiers.
func (r *Result) MatchedSpecs() []string { return r.matchedSpecs }
