package search_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kamusku/kamus/internal/domain/dictionary"
	"github.com/kamusku/kamus/internal/repo/memory"
	"github.com/kamusku/kamus/internal/search"
)

type sample struct {
	word       string
	definition string
	category   dictionary.Category
}

func newEngine(t *testing.T, samples ...sample) *search.Engine {
	t.Helper()

	repo := memory.NewEntriesRepo()
	for _, s := range samples {
		_, err := repo.Create(context.Background(), dictionary.CreateEntryRequest{
			Word:       s.word,
			Type:       "kata benda",
			Definition: s.definition,
			Category:   s.category,
		})
		if err != nil {
			t.Fatalf("seed %q: %v", s.word, err)
		}
	}

	return search.NewEngine(repo)
}

func words(entries []dictionary.Entry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Word)
	}
	return out
}

func categoryPtr(c dictionary.Category) *dictionary.Category { return &c }

var seed = []sample{
	{"rumah", "Bangunan untuk tempat tinggal manusia atau keluarga", dictionary.CategoryGeneral},
	{"love", "An intense feeling of deep affection", dictionary.CategoryForeign},
	{"beautiful", "Pleasing the senses or mind aesthetically", dictionary.CategoryForeign},
	{"kehidupan", "Keadaan atau hal hidup; segala sesuatu yang hidup", dictionary.CategoryGeneral},
}

func TestSearch_ExactMatchWithCategory(t *testing.T) {
	e := newEngine(t, seed...)

	got, err := e.Search(context.Background(), "rumah", categoryPtr(dictionary.CategoryGeneral))
	if err != nil {
		t.Fatalf("search: %v", err)
	}

	if len(got) != 1 || got[0].Word != "rumah" {
		t.Fatalf("got %v, want [rumah]", words(got))
	}
}

func TestSearch_PartialMatchWithoutCategory(t *testing.T) {
	e := newEngine(t, seed...)

	got, err := e.Search(context.Background(), "ruma", nil)
	if err != nil {
		t.Fatalf("search: %v", err)
	}

	if len(got) != 1 || got[0].Word != "rumah" {
		t.Fatalf("got %v, want [rumah]", words(got))
	}
}

func TestSearch_ExactMatchRanksFirst(t *testing.T) {
	e := newEngine(t,
		sample{"tinggal", "Masih tetap di tempatnya", dictionary.CategoryGeneral},
		sample{"apartemen", "Tempat tinggal berupa rumah susun", dictionary.CategoryGeneral},
		sample{"Rumah", "Bangunan untuk tempat tinggal", dictionary.CategoryGeneral},
		sample{"berumah", "Mempunyai rumah", dictionary.CategoryGeneral},
		sample{"rumah sakit", "Gedung tempat merawat orang sakit", dictionary.CategoryGeneral},
	)

	got, err := e.Search(context.Background(), "rumah", nil)
	if err != nil {
		t.Fatalf("search: %v", err)
	}

	want := []string{"Rumah", "apartemen", "berumah", "rumah sakit"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", words(got), want)
	}
	for i, w := range want {
		if got[i].Word != w {
			t.Fatalf("got %v, want %v", words(got), want)
		}
	}
}

func TestSearch_CaseInsensitiveAndAlphabetical(t *testing.T) {
	e := newEngine(t,
		sample{"Zebra", "an animal", dictionary.CategoryForeign},
		sample{"apple", "a fruit, not an animal", dictionary.CategoryForeign},
		sample{"Mango", "a fruit", dictionary.CategoryForeign},
	)

	got, err := e.Search(context.Background(), "A", nil)
	if err != nil {
		t.Fatalf("search: %v", err)
	}

	want := []string{"apple", "Mango", "Zebra"}
	for i, w := range want {
		if got[i].Word != w {
			t.Fatalf("got %v, want %v", words(got), want)
		}
	}
}

func TestSearch_NeverReturnsOtherCategories(t *testing.T) {
	e := newEngine(t, seed...)

	for _, c := range dictionary.Categories {
		got, err := e.Search(context.Background(), "e", categoryPtr(c))
		if err != nil {
			t.Fatalf("search: %v", err)
		}
		for _, entry := range got {
			if entry.Category != c {
				t.Fatalf("category %q returned entry %q of category %q", c, entry.Word, entry.Category)
			}
		}
	}
}

func TestSearch_NoResultsIsEmpty(t *testing.T) {
	e := newEngine(t, seed...)

	got, err := e.Search(context.Background(), "xyzzy", nil)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", got)
	}
}

func TestSuggest(t *testing.T) {
	e := newEngine(t,
		sample{"rumah", "bangunan", dictionary.CategoryGeneral},
		sample{"rumahan", "seperti rumah", dictionary.CategoryGeneral},
		sample{"berumah", "mempunyai rumah", dictionary.CategoryGeneral},
		sample{"perumahan", "kumpulan rumah", dictionary.CategoryGeneral},
		sample{"rumah sakit", "gedung", dictionary.CategoryGeneral},
		sample{"rumah makan", "restoran", dictionary.CategoryGeneral},
		sample{"house", "a building, rumah", dictionary.CategoryForeign},
	)

	t.Run("short_query", func(t *testing.T) {
		got, err := e.Suggest(context.Background(), "r", nil)
		if err != nil {
			t.Fatalf("suggest: %v", err)
		}
		if got == nil || len(got) != 0 {
			t.Fatalf("expected empty list, got %#v", got)
		}
	})

	t.Run("truncated_to_five", func(t *testing.T) {
		got, err := e.Suggest(context.Background(), "rumah", nil)
		if err != nil {
			t.Fatalf("suggest: %v", err)
		}
		if len(got) != search.MaxSuggestions {
			t.Fatalf("got %d suggestions, want %d", len(got), search.MaxSuggestions)
		}
		if got[0].Word != "rumah" || got[0].Type != "kata benda" || got[0].Category != dictionary.CategoryGeneral {
			t.Fatalf("unexpected first suggestion: %+v", got[0])
		}
	})

	t.Run("category_filter", func(t *testing.T) {
		got, err := e.Suggest(context.Background(), "rumah", categoryPtr(dictionary.CategoryForeign))
		if err != nil {
			t.Fatalf("suggest: %v", err)
		}
		if len(got) != 1 || got[0].Word != "house" {
			t.Fatalf("unexpected suggestions: %+v", got)
		}
	})
}

func TestLookup(t *testing.T) {
	e := newEngine(t, seed...)

	got, err := e.Lookup(context.Background(), "LOVE")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if len(got) != 1 || got[0].Word != "love" {
		t.Fatalf("unexpected lookup result: %v", words(got))
	}

	got, err = e.Lookup(context.Background(), "lov")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("partial words must not match, got %v", words(got))
	}
}

func TestWordOfTheDay(t *testing.T) {
	day := time.Date(2026, 10, 17, 8, 0, 0, 0, time.UTC)

	t.Run("stable_within_a_day", func(t *testing.T) {
		e := newEngine(t, seed...)

		morning, err := e.WordOfTheDay(context.Background(), day, nil)
		if err != nil {
			t.Fatalf("word of the day: %v", err)
		}
		evening, err := e.WordOfTheDay(context.Background(), day.Add(12*time.Hour), nil)
		if err != nil {
			t.Fatalf("word of the day: %v", err)
		}
		if morning.ID != evening.ID {
			t.Fatalf("word changed within the same day: %q vs %q", morning.Word, evening.Word)
		}

		next, err := e.WordOfTheDay(context.Background(), day.Add(24*time.Hour), nil)
		if err != nil {
			t.Fatalf("word of the day: %v", err)
		}
		if next.ID == morning.ID {
			t.Fatalf("expected a different word on the next day with %d entries", len(seed))
		}
	})

	t.Run("empty_store", func(t *testing.T) {
		e := newEngine(t)

		_, err := e.WordOfTheDay(context.Background(), day, nil)
		if !errors.Is(err, search.ErrNoEntries) {
			t.Fatalf("expected ErrNoEntries, got %v", err)
		}
	})
}
