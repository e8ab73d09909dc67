package search

import (
	"sort"

	"github.com/meridian-cloud/specdex/internal/domain/search/result"
)

// rank orders results by descending relevance. The sort must be stable so
// that equal scores keep index order and repeated identical queries return
// identical orderings.
func rank(results []result.Result) {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score() > results[j].Score()
	})
}
