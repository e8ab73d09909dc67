package search

import "strings"

// DefaultThreshold is the minimum fuzzy similarity for a text match.
const DefaultThreshold = 0.6

// similarity scores how closely query matches target, in [0, 1].
// Case-insensitive containment wins outright; otherwise the score is the
// normalized Levenshtein similarity over the whole strings. Coarse on
// purpose: no tokenization, so a long target that fails containment is
// matched character-for-character against the query.
func similarity(query, target string) float64 {
	if query == "" || target == "" {
		return 0
	}
	q := strings.ToLower(query)
	t := strings.ToLower(target)
	if strings.Contains(t, q) {
		return 1
	}

	longest := len(q)
	if len(t) > longest {
		longest = len(t)
	}
	return 1 - float64(editDistance(q, t))/float64(longest)
}

// editDistance computes the Levenshtein distance between two strings with
// unit cost for insert, delete and substitute. Two-row DP.
func editDistance(a, b string) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = minOf(curr[j-1]+1, prev[j]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

func minOf(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}
