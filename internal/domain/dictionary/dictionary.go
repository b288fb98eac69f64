package dictionary

import (
	"errors"
	"time"
)

// Category is the dictionary partition an entry belongs to. The wire values
// are kept as the frontend already sends them.
type Category string

const (
	CategoryGeneral   Category = "kbbi"
	CategoryForeign   Category = "english"
	CategoryThesaurus Category = "tesaurus"
)

var Categories = []Category{CategoryGeneral, CategoryForeign, CategoryThesaurus}

var (
	ErrNotFound        = errors.New("dictionary entry not found")
	ErrInvalidCategory = errors.New("invalid dictionary type")
)

func (c Category) Valid() bool {
	switch c {
	case CategoryGeneral, CategoryForeign, CategoryThesaurus:
		return true
	}
	return false
}

// ParseCategory accepts the empty string as "no category" and returns nil for it.
func ParseCategory(s string) (*Category, error) {
	if s == "" {
		return nil, nil
	}

	c := Category(s)
	if !c.Valid() {
		return nil, ErrInvalidCategory
	}

	return &c, nil
}

type Entry struct {
	ID            string    `json:"id"`
	Word          string    `json:"word"`
	Type          string    `json:"type"`
	Pronunciation *string   `json:"pronunciation"`
	Definition    string    `json:"definition"`
	Example       *string   `json:"example"`
	Synonyms      []string  `json:"synonyms"`
	Category      Category  `json:"dictionary_type"`
	CreatedAt     time.Time `json:"createdAt"`
}

type CreateEntryRequest struct {
	Word          string   `json:"word" binding:"required,max=200"`
	Type          string   `json:"type" binding:"required,max=100"`
	Pronunciation *string  `json:"pronunciation" binding:"omitempty,max=200"`
	Definition    string   `json:"definition" binding:"required,max=5000"`
	Example       *string  `json:"example" binding:"omitempty,max=2000"`
	Synonyms      []string `json:"synonyms" binding:"omitempty,max=50,dive,required,max=200"`
	Category      Category `json:"dictionary_type" binding:"required,dictionary_type"`
}

// UpdateEntryRequest is a partial patch: nil fields keep the stored value.
type UpdateEntryRequest struct {
	Word          *string   `json:"word" binding:"omitnil,min=1,max=200"`
	Type          *string   `json:"type" binding:"omitnil,min=1,max=100"`
	Pronunciation *string   `json:"pronunciation" binding:"omitempty,max=200"`
	Definition    *string   `json:"definition" binding:"omitnil,min=1,max=5000"`
	Example       *string   `json:"example" binding:"omitempty,max=2000"`
	Synonyms      []string  `json:"synonyms" binding:"omitempty,max=50,dive,required,max=200"`
	Category      *Category `json:"dictionary_type" binding:"omitnil,dictionary_type"`
}
