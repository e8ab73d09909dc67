package chi

import "github.com/meridian-cloud/specdex"

// SearchRequest is the POST /search body. All filter groups are optional;
// an empty request returns the whole catalog at the neutral baseline score.
type SearchRequest struct {
	Query      string              `json:"query,omitempty"`
	Ranges     map[string]RangeDTO `json:"ranges,omitempty"`
	Categories []string            `json:"categories,omitempty"`
	Limit      int                 `json:"limit,omitempty"`
}

// RangeDTO is an inclusive numeric interval filter.
type RangeDTO struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// SearchResponse is the POST /search reply.
type SearchResponse struct {
	Total   int         `json:"total"`
	Results []ResultDTO `json:"results"`
}

// ResultDTO is one ranked hit.
type ResultDTO struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Score        float64  `json:"score"`
	MatchedSpecs []string `json:"matched_specs,omitempty"`
}

// CatalogResponse is the PUT /catalog reply.
type CatalogResponse struct {
	Indexed int `json:"indexed"`
}

// CategoriesResponse is the GET /catalog/categories reply.
type CategoriesResponse struct {
	Categories []string `json:"categories"`
}

// NumericKeysResponse is the GET /catalog/numeric-keys reply.
type NumericKeysResponse struct {
	Keys []string `json:"keys"`
}

// SpecRangeResponse is the GET /catalog/specs/{specKey}/range reply.
type SpecRangeResponse struct {
	Key  string  `json:"key"`
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Unit string  `json:"unit,omitempty"`
}

// ErrorResponse is the error reply envelope.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func resultsToDTO(results []specdex.Result) []ResultDTO {
	out := make([]ResultDTO, len(results))
	for i, r := range results {
		out[i] = ResultDTO{
			ID:           r.Product.ID(),
			Title:        r.Product.Title(),
			Score:        r.Score,
			MatchedSpecs: r.MatchedSpecs,
		}
	}
	return out
}
