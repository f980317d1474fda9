package resolve

import (
	"strings"
)

const (
	// Popularity normalization cap: a million downloads saturates the
	// popularity term.
	popularityCap = 1_000_000

	// Weighting between name similarity and popularity.
	similarityWeight = 0.8
	popularityWeight = 0.2
)

// matchScore combines name similarity with normalized popularity.
// Similarity dominates; downloads only nudge near-equal titles apart.
func matchScore(candidate, title string, downloads int) float64 {
	similarity := nameSimilarity(strings.ToLower(candidate), strings.ToLower(title))

	popularity := float64(downloads) / popularityCap
	if popularity > 1 {
		popularity = 1
	}

	return similarity*similarityWeight + popularity*popularityWeight
}

// nameSimilarity estimates how alike two lowercased names are:
// identical = 1.0, one containing the other = 0.8, otherwise the Jaccard
// overlap of their word sets.
func nameSimilarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	if a != "" && b != "" && (strings.Contains(a, b) || strings.Contains(b, a)) {
		return 0.8
	}

	wordsA := fieldSet(a)
	wordsB := fieldSet(b)
	if len(wordsA) == 0 || len(wordsB) == 0 {
		return 0
	}

	intersection := 0
	for w := range wordsA {
		if wordsB[w] {
			intersection++
		}
	}
	union := len(wordsA) + len(wordsB) - intersection

	return float64(intersection) / float64(union)
}

func fieldSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range strings.Fields(s) {
		set[w] = true
	}
	return set
}
