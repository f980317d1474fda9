// Package id generates prefixed unique identifiers for packs and reports.
package id

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Generate returns a prefixed NanoID, e.g. "pack-V1StGXR8_Z5jdHi6B-myT".
// The prefix makes identifiers self-describing in logs and report files.
//
// Fails only when the system cannot supply secure random bytes.
func Generate(prefix string) (string, error) {
	suffix, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + suffix, nil
}

// MustGenerate is Generate for callers that treat entropy exhaustion as
// a program-level failure.
func MustGenerate(prefix string) string {
	generated, err := Generate(prefix)
	if err != nil {
		panic(fmt.Sprintf("failed to generate ID: %v", err))
	}
	return generated
}
