package utils

import (
	"strings"
	"testing"

	"github.com/kamusku/kamus/internal/domain/dictionary"
)

func TestBuildSuggestionsCacheKey(t *testing.T) {
	kbbi := dictionary.CategoryGeneral

	a := BuildSuggestionsCacheKey(" Ru ", &kbbi)
	b := BuildSuggestionsCacheKey("ru", &kbbi)
	if a != b {
		t.Fatalf("keys should normalize case and spaces: %q vs %q", a, b)
	}
	if a == BuildSuggestionsCacheKey("ru", nil) {
		t.Fatalf("category must be part of the key")
	}
	if !strings.HasPrefix(a, SuggestionsCachePrefix) {
		t.Fatalf("missing prefix: %q", a)
	}
}
