package dictionary

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

func NewFromCreateRequest(req CreateEntryRequest) Entry {
	return Entry{
		ID:            uuid.NewString(),
		Word:          req.Word,
		Type:          req.Type,
		Pronunciation: optional(req.Pronunciation),
		Definition:    req.Definition,
		Example:       optional(req.Example),
		Synonyms:      slices.Clone(req.Synonyms),
		Category:      req.Category,
		CreatedAt:     time.Now().UTC(),
	}
}

// ApplyUpdate returns a copy of e with the non-nil fields of req applied.
// ID and CreatedAt are never touched.
func ApplyUpdate(e Entry, req UpdateEntryRequest) Entry {
	out := e.Clone()

	if req.Word != nil {
		out.Word = *req.Word
	}
	if req.Type != nil {
		out.Type = *req.Type
	}
	if req.Pronunciation != nil {
		out.Pronunciation = optional(req.Pronunciation)
	}
	if req.Definition != nil {
		out.Definition = *req.Definition
	}
	if req.Example != nil {
		out.Example = optional(req.Example)
	}
	if req.Synonyms != nil {
		out.Synonyms = slices.Clone(req.Synonyms)
	}
	if req.Category != nil {
		out.Category = *req.Category
	}

	return out
}

func (e Entry) Clone() Entry {
	out := e
	out.Synonyms = slices.Clone(e.Synonyms)
	if e.Pronunciation != nil {
		p := *e.Pronunciation
		out.Pronunciation = &p
	}
	if e.Example != nil {
		x := *e.Example
		out.Example = &x
	}
	return out
}

// optional maps an empty string to an absent value.
func optional(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	v := *s
	return &v
}
