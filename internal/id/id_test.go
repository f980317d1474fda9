package id

import (
	"strings"
	"testing"
)

func TestGenerate(t *testing.T) {
	got, err := Generate("run")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if !strings.HasPrefix(got, "run-") {
		t.Errorf("Generate() = %q, want run- prefix", got)
	}
	if len(got) != len("run-")+21 {
		t.Errorf("Generate() length = %d, want %d", len(got), len("run-")+21)
	}
}

func TestGenerateUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := MustGenerate("rep")
		if seen[id] {
			t.Fatalf("duplicate ID generated: %s", id)
		}
		seen[id] = true
	}
}
