package compat

import (
	"testing"

	"github.com/modsmith/modsmith-server/internal/catalog"
)

func entry(versions, loaders []string) *catalog.Entry {
	return &catalog.Entry{
		Slug:         "test-mod",
		Title:        "Test Mod",
		GameVersions: versions,
		Loaders:      loaders,
	}
}

func TestLoaderSupported(t *testing.T) {
	tests := []struct {
		name    string
		loaders []string
		request string
		want    bool
	}{
		{"exact match", []string{"fabric", "forge"}, "fabric", true},
		{"case insensitive", []string{"Fabric"}, "fabric", true},
		{"request cased", []string{"fabric"}, "FABRIC", true},
		{"no match", []string{"fabric"}, "forge", false},
		{"no fuzzy matching", []string{"neoforge"}, "forge", false},
		{"empty loader set", nil, "fabric", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := entry([]string{"1.20.1"}, tt.loaders)
			if got := LoaderSupported(e, tt.request); got != tt.want {
				t.Errorf("LoaderSupported(%v, %q) = %v, want %v", tt.loaders, tt.request, got, tt.want)
			}
		})
	}
}

func TestVersionSupported(t *testing.T) {
	tests := []struct {
		name     string
		declared []string
		request  string
		want     bool
	}{
		// Discrete sets
		{"member of set", []string{"1.19.2", "1.20.1"}, "1.20.1", true},
		{"not member", []string{"1.19.2", "1.20.1"}, "1.18.2", false},
		{"empty set", nil, "1.20.1", false},

		// Wildcards
		{"wildcard patch", []string{"1.20.x"}, "1.20.4", true},
		{"wildcard base", []string{"1.20.x"}, "1.20", true},
		{"wildcard no prefix trick", []string{"1.2.x"}, "1.20.1", false},

		// Ranges
		{"range inside", []string{"1.19.2-1.20.1"}, "1.19.4", true},
		{"range low bound", []string{"1.19.2-1.20.1"}, "1.19.2", true},
		{"range high bound", []string{"1.19.2-1.20.1"}, "1.20.1", true},
		{"range below", []string{"1.19.2-1.20.1"}, "1.19", false},
		{"range above", []string{"1.19.2-1.20.1"}, "1.21", false},
		{"range with short request", []string{"1.19-1.20.1"}, "1.20", true},

		// Snapshot-style names are discrete only
		{"snapshot exact", []string{"23w31a"}, "23w31a", true},
		{"snapshot not a range", []string{"23w31a"}, "23w31b", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := entry(tt.declared, []string{"fabric"})
			if got := VersionSupported(e, tt.request); got != tt.want {
				t.Errorf("VersionSupported(%v, %q) = %v, want %v", tt.declared, tt.request, got, tt.want)
			}
		})
	}
}

func TestIsCompatible(t *testing.T) {
	e := entry([]string{"1.19.2", "1.20.1"}, []string{"fabric", "forge"})

	if !IsCompatible(e, "1.20.1", "fabric") {
		t.Error("expected compatible for declared version and loader")
	}
	if IsCompatible(e, "1.20.1", "quilt") {
		t.Error("expected incompatible for undeclared loader")
	}
	if IsCompatible(e, "1.21", "fabric") {
		t.Error("expected incompatible for undeclared version")
	}
}

// Changing the request to a pair outside the declared sets can never flip
// the judgment back to compatible without the entry itself changing.
func TestIsCompatible_Monotonicity(t *testing.T) {
	e := entry([]string{"1.20.1"}, []string{"fabric"})

	if !IsCompatible(e, "1.20.1", "fabric") {
		t.Fatal("baseline pair should be compatible")
	}

	outside := []struct{ version, loader string }{
		{"1.20.2", "fabric"},
		{"1.20.1", "forge"},
		{"1.8", "quilt"},
	}
	for _, pair := range outside {
		if IsCompatible(e, pair.version, pair.loader) {
			t.Errorf("(%s, %s) outside declared sets must not be compatible", pair.version, pair.loader)
		}
	}
}

// Identical inputs always produce identical results.
func TestIsCompatible_ReferentialTransparency(t *testing.T) {
	e := entry([]string{"1.19.2-1.20.1"}, []string{"forge"})
	first := IsCompatible(e, "1.19.4", "forge")
	for i := 0; i < 100; i++ {
		if IsCompatible(e, "1.19.4", "forge") != first {
			t.Fatal("IsCompatible result changed across identical calls")
		}
	}
}
