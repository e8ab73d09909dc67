// Package index builds and holds the normalized product index.
package index

import (
	"sort"

	"go.uber.org/zap"

	"github.com/meridian-cloud/specdex/internal/domain/product"
)

// KeyRange is the aggregate numeric span of one specification key across
// the whole index. Unit is taken from the first product carrying the key.
type KeyRange struct {
	Min  float64
	Max  float64
	Unit string
}

// Service builds the product index and answers aggregate queries over it.
// Best-effort by contract: malformed records are dropped or degraded,
// never reported as errors.
type Service struct {
	logger   *zap.Logger
	products []product.Normalized
}

// New creates an index service with an empty index.
func New(logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{logger: logger}
}

// Build replaces the index with the normalized form of the given records.
// Records without an identifier are dropped; duplicate identifiers are kept
// and indexed independently. Insertion order is preserved.
func (s *Service) Build(raws []product.Raw) {
	products := make([]product.Normalized, 0, len(raws))
	dropped := 0
	for _, raw := range raws {
		if raw.ID == "" {
			dropped++
			continue
		}
		products = append(products, product.Normalize(raw))
	}
	s.products = products

	if dropped > 0 {
		s.logger.Debug("dropped records without identifier",
			zap.Int("dropped", dropped),
			zap.Int("indexed", len(products)),
		)
	}
}

// Products returns the indexed products in insertion order.
// Callers must treat the slice as read-only.
func (s *Service) Products() []product.Normalized { return s.products }

// Len returns the number of indexed products.
func (s *Service) Len() int { return len(s.products) }

// Categories returns the sorted unique category names seen across the index.
func (s *Service) Categories() []string {
	seen := make(map[string]struct{})
	for i := range s.products {
		for _, c := range s.products[i].Categories() {
			seen[c] = struct{}{}
		}
	}
	return sortedSet(seen)
}

// NumericKeys returns the sorted unique "category.key" identifiers with at
// least one numeric value somewhere in the index.
func (s *Service) NumericKeys() []string {
	seen := make(map[string]struct{})
	for i := range s.products {
		for _, k := range s.products[i].NumericKeys() {
			seen[k] = struct{}{}
		}
	}
	return sortedSet(seen)
}

// Range returns the aggregate min/max across all products for a
// specification key. The second return is false when no product carries the
// key numerically.
func (s *Service) Range(specKey string) (KeyRange, bool) {
	var agg KeyRange
	found := false
	for i := range s.products {
		num, ok := s.products[i].Numeric(specKey)
		if !ok {
			continue
		}
		if !found {
			agg = KeyRange{Min: num.Min, Max: num.Max, Unit: num.Unit}
			found = true
			continue
		}
		if num.Min < agg.Min {
			agg.Min = num.Min
		}
		if num.Max > agg.Max {
			agg.Max = num.Max
		}
	}
	return agg, found
}

func sortedSet(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
