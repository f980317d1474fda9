// Package compat decides whether a catalog entry supports a requested
// game version and mod loader. Everything here is a pure function of its
// inputs: no I/O, no state, safe for concurrent use.
package compat

import (
	"strconv"
	"strings"

	"github.com/modsmith/modsmith-server/internal/catalog"
)

// IsCompatible reports whether the entry supports both the requested game
// version and the requested loader.
func IsCompatible(entry *catalog.Entry, version, loader string) bool {
	return LoaderSupported(entry, loader) && VersionSupported(entry, version)
}

// LoaderSupported reports whether the requested loader is declared by the
// entry. Matching is exact (case-insensitive); loader mismatches are a
// meaningful rejection reason and are never fuzzily waived.
func LoaderSupported(entry *catalog.Entry, loader string) bool {
	for _, l := range entry.Loaders {
		if strings.EqualFold(l, loader) {
			return true
		}
	}
	return false
}

// VersionSupported reports whether the requested game version is covered
// by the entry's declared versions. Catalogs vary in how they declare
// support, so each declared token may be:
//
//   - a discrete version: "1.20.1"
//   - a wildcard: "1.20.x" (any patch of 1.20)
//   - an inclusive range: "1.19.2-1.20.1"
func VersionSupported(entry *catalog.Entry, version string) bool {
	requested := strings.TrimSpace(version)
	for _, declared := range entry.GameVersions {
		if versionTokenMatches(strings.TrimSpace(declared), requested) {
			return true
		}
	}
	return false
}

// versionTokenMatches checks one declared version token against the
// requested version.
func versionTokenMatches(declared, requested string) bool {
	if strings.EqualFold(declared, requested) {
		return true
	}

	if strings.HasSuffix(declared, ".x") {
		prefix := strings.TrimSuffix(declared, ".x")
		return requested == prefix || strings.HasPrefix(requested, prefix+".")
	}

	if lo, hi, ok := splitRange(declared); ok {
		return inRange(requested, lo, hi)
	}

	return false
}

// splitRange parses "1.19.2-1.20.1" into its bounds. Returns ok=false for
// tokens that are not well-formed numeric ranges (snapshot names like
// "23w31a" contain no range separator and fall through to discrete match).
func splitRange(token string) (lo, hi string, ok bool) {
	idx := strings.Index(token, "-")
	if idx <= 0 || idx == len(token)-1 {
		return "", "", false
	}
	lo, hi = token[:idx], token[idx+1:]
	if parseVersion(lo) == nil || parseVersion(hi) == nil {
		return "", "", false
	}
	return lo, hi, true
}

// inRange reports lo <= v <= hi under numeric dotted-version ordering.
func inRange(v, lo, hi string) bool {
	pv := parseVersion(v)
	if pv == nil {
		return false
	}
	return compareVersions(pv, parseVersion(lo)) >= 0 &&
		compareVersions(pv, parseVersion(hi)) <= 0
}

// parseVersion splits a dotted numeric version into components.
// Returns nil for versions with non-numeric parts.
func parseVersion(v string) []int {
	parts := strings.Split(v, ".")
	nums := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil
		}
		nums = append(nums, n)
	}
	return nums
}

// compareVersions orders two parsed versions; missing components are zero
// ("1.20" == "1.20.0").
func compareVersions(a, b []int) int {
	n := max(len(a), len(b))
	for i := 0; i < n; i++ {
		av, bv := 0, 0
		if i < len(a) {
			av = a[i]
		}
		if i < len(b) {
			bv = b[i]
		}
		if av != bv {
			if av < bv {
				return -1
			}
			return 1
		}
	}
	return 0
}
