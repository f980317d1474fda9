package util

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// NormalizeKey canonicalizes a candidate string for use as a learning
// store key. Two spellings of the same candidate must always map to the
// same key, or the store silently fragments into duplicate records.
//
// Applies NFKC normalization (generated text can carry fullwidth and
// compatibility forms), trims whitespace, collapses internal runs of
// whitespace to a single space, and case-folds.
func NormalizeKey(candidate string) string {
	s := norm.NFKC.String(candidate)
	s = strings.Join(strings.Fields(s), " ")
	return strings.ToLower(s)
}
