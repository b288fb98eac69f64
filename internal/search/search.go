// Package search filters and ranks dictionary entries.
//
// Matching is a case-insensitive substring test on the headword and the
// definition. Ranking puts exact headword matches first and orders the rest
// with Indonesian collation.
package search

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/kamusku/kamus/internal/domain/dictionary"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

const (
	MinSuggestionLength = 2
	MaxSuggestions      = 5
)

var ErrNoEntries = errors.New("no dictionary entries")

type EntryLister interface {
	List(ctx context.Context, category *dictionary.Category) ([]dictionary.Entry, error)
}

type Suggestion struct {
	Word     string              `json:"word"`
	Type     string              `json:"type"`
	Category dictionary.Category `json:"dictionary_type"`
}

type Engine struct {
	entries EntryLister
	tag     language.Tag
}

func NewEngine(entries EntryLister) *Engine {
	return &Engine{
		entries: entries,
		tag:     language.Indonesian,
	}
}

// Search returns the entries matching query, ranked. The caller rejects an
// empty query.
func (e *Engine) Search(ctx context.Context, query string, category *dictionary.Category) ([]dictionary.Entry, error) {
	all, err := e.entries.List(ctx, category)
	if err != nil {
		return nil, err
	}

	matched := Filter(all, query, category)
	e.Rank(matched, query)

	return matched, nil
}

// Suggest returns at most MaxSuggestions projections of the ranked results.
// Queries shorter than MinSuggestionLength runes yield an empty list.
func (e *Engine) Suggest(ctx context.Context, query string, category *dictionary.Category) ([]Suggestion, error) {
	out := []Suggestion{}

	if utf8.RuneCountInString(query) < MinSuggestionLength {
		return out, nil
	}

	ranked, err := e.Search(ctx, query, category)
	if err != nil {
		return nil, err
	}

	for _, entry := range ranked[:min(len(ranked), MaxSuggestions)] {
		out = append(out, Suggestion{
			Word:     entry.Word,
			Type:     entry.Type,
			Category: entry.Category,
		})
	}

	return out, nil
}

// Lookup returns every entry whose headword equals word, ignoring case.
func (e *Engine) Lookup(ctx context.Context, word string) ([]dictionary.Entry, error) {
	all, err := e.entries.List(ctx, nil)
	if err != nil {
		return nil, err
	}

	out := make([]dictionary.Entry, 0, 1)
	for _, entry := range all {
		if strings.EqualFold(entry.Word, word) {
			out = append(out, entry)
		}
	}

	return out, nil
}

// WordOfTheDay picks one entry per calendar day (UTC), stable while the
// store is unchanged.
func (e *Engine) WordOfTheDay(ctx context.Context, day time.Time, category *dictionary.Category) (dictionary.Entry, error) {
	all, err := e.entries.List(ctx, category)
	if err != nil {
		return dictionary.Entry{}, err
	}
	if len(all) == 0 {
		return dictionary.Entry{}, ErrNoEntries
	}

	days := day.UTC().Unix() / int64((24 * time.Hour).Seconds())
	idx := int(days % int64(len(all)))
	if idx < 0 {
		idx += len(all)
	}

	return all[idx], nil
}

// Filter keeps entries of the given category (when set) whose word or
// definition contains query case-insensitively. Order is preserved.
func Filter(entries []dictionary.Entry, query string, category *dictionary.Category) []dictionary.Entry {
	q := strings.ToLower(query)

	out := make([]dictionary.Entry, 0, len(entries))
	for _, entry := range entries {
		if category != nil && entry.Category != *category {
			continue
		}
		if Matches(entry, q) {
			out = append(out, entry)
		}
	}

	return out
}

// Matches expects lowerQuery to be lowercased already.
func Matches(entry dictionary.Entry, lowerQuery string) bool {
	return strings.Contains(strings.ToLower(entry.Word), lowerQuery) ||
		strings.Contains(strings.ToLower(entry.Definition), lowerQuery)
}

// Rank sorts entries in place: exact headword matches first, then by word.
func (e *Engine) Rank(entries []dictionary.Entry, query string) {
	// collators keep internal buffers, one per call
	col := collate.New(e.tag, collate.IgnoreCase)

	slices.SortStableFunc(entries, func(a, b dictionary.Entry) int {
		aExact := strings.EqualFold(a.Word, query)
		bExact := strings.EqualFold(b.Word, query)

		switch {
		case aExact && !bExact:
			return -1
		case !aExact && bExact:
			return 1
		}

		if c := col.CompareString(a.Word, b.Word); c != 0 {
			return c
		}
		return strings.Compare(a.Word, b.Word)
	})
}
