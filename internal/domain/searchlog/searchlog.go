package searchlog

import (
	"time"

	"github.com/google/uuid"
)

type SearchLog struct {
	ID             string    `json:"id"`
	Query          string    `json:"query"`
	ResultsCount   int       `json:"resultsCount"`
	DictionaryType string    `json:"dictionaryType,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
}

type PopularQuery struct {
	Query string `json:"query"`
	Count int    `json:"count"`
}

func New(query string, resultsCount int, dictionaryType string) SearchLog {
	return SearchLog{
		ID:             uuid.NewString(),
		Query:          query,
		ResultsCount:   resultsCount,
		DictionaryType: dictionaryType,
		Timestamp:      time.Now().UTC(),
	}
}
