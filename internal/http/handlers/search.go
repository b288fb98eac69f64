package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kamusku/kamus/internal/cache"
	"github.com/kamusku/kamus/internal/domain/dictionary"
	"github.com/kamusku/kamus/internal/domain/searchlog"
	"github.com/kamusku/kamus/internal/observability"
	"github.com/kamusku/kamus/internal/search"
	"github.com/kamusku/kamus/internal/utils"
)

type Searcher interface {
	Search(ctx context.Context, query string, category *dictionary.Category) ([]dictionary.Entry, error)
	Suggest(ctx context.Context, query string, category *dictionary.Category) ([]search.Suggestion, error)
	Lookup(ctx context.Context, word string) ([]dictionary.Entry, error)
	WordOfTheDay(ctx context.Context, day time.Time, category *dictionary.Category) (dictionary.Entry, error)
}

type SearchLogRecorder interface {
	Record(ctx context.Context, l searchlog.SearchLog) error
}

type SearchHandler struct {
	engine Searcher
	logs   SearchLogRecorder
	cache  *cache.Cache
	prom   *observability.Prom
	log    *slog.Logger
	now    func() time.Time
}

func NewSearchHandler(engine Searcher, logs SearchLogRecorder, c *cache.Cache, prom *observability.Prom, log *slog.Logger) *SearchHandler {
	if log == nil {
		log = slog.Default()
	}
	return &SearchHandler{
		engine: engine,
		logs:   logs,
		cache:  c,
		prom:   prom,
		log:    log,
		now:    time.Now,
	}
}

type SearchQuery struct {
	Query    string `form:"query" binding:"required,max=200"`
	Category string `form:"dictionary_type"`
}

type SuggestionsQuery struct {
	Q        string `form:"q" binding:"max=200"`
	Category string `form:"type"`
}

type WordOfTheDayQuery struct {
	Category string `form:"dictionary_type"`
}

// Search handles GET /api/search and records the query in the search log.
func (h *SearchHandler) Search(ctx *gin.Context) {
	var q SearchQuery
	if !BindQuery(ctx, &q) {
		return
	}

	query := strings.TrimSpace(q.Query)
	if query == "" {
		RespondValidation(ctx, "Invalid search parameters", FieldError{
			Field:   "query",
			Rule:    "required",
			Message: validationMessage("required", ""),
		})
		return
	}

	category, ok := parseCategoryParam(ctx, "dictionary_type", q.Category)
	if !ok {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	results, err := h.engine.Search(cctx, query, category)
	if err != nil {
		h.log.ErrorContext(ctx.Request.Context(), "search_failed", "err", err)
		RespondInternal(ctx, "Search failed")
		return
	}

	h.prom.ObserveSearch(q.Category, len(results))
	h.recordSearch(ctx, query, len(results), q.Category)

	RespondJSONWithETag(ctx, http.StatusOK, results)
}

// recordSearch never fails the request; a lost log line is acceptable.
func (h *SearchHandler) recordSearch(ctx *gin.Context, query string, count int, category string) {
	if h.logs == nil {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), time.Second)
	defer cancel()

	if err := h.logs.Record(cctx, searchlog.New(query, count, category)); err != nil {
		h.log.WarnContext(ctx.Request.Context(), "search_log_record_failed", "err", err)
	}
}

// Suggestions handles GET /api/suggestions. Short queries return [] without
// touching the store.
func (h *SearchHandler) Suggestions(ctx *gin.Context) {
	var q SuggestionsQuery
	if !BindQuery(ctx, &q) {
		return
	}

	category, ok := parseCategoryParam(ctx, "type", q.Category)
	if !ok {
		return
	}
	key := utils.BuildSuggestionsCacheKey(q.Q, category)

	if h.cache != nil {
		if v, ok := h.cache.Get(key); ok {
			if cached, ok := v.([]search.Suggestion); ok {
				ctx.Header("X-Cache", "HIT")
				ctx.JSON(http.StatusOK, cached)
				return
			}
		}
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	suggestions, err := h.engine.Suggest(cctx, q.Q, category)
	if err != nil {
		h.log.ErrorContext(ctx.Request.Context(), "suggestions_failed", "err", err)
		RespondInternal(ctx, "Failed to get suggestions")
		return
	}

	if h.cache != nil {
		h.cache.Set(key, suggestions)
		ctx.Header("X-Cache", "MISS")
	}

	ctx.JSON(http.StatusOK, suggestions)
}

// Lookup handles GET /api/words/:word, the data behind a word page.
func (h *SearchHandler) Lookup(ctx *gin.Context) {
	word := strings.TrimSpace(ctx.Param("word"))
	if word == "" {
		RespondNotFound(ctx, "Word not found")
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	entries, err := h.engine.Lookup(cctx, word)
	if err != nil {
		h.log.ErrorContext(ctx.Request.Context(), "lookup_failed", "err", err)
		RespondInternal(ctx, "Could not fetch word")
		return
	}

	if len(entries) == 0 {
		RespondNotFound(ctx, "Word not found")
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, entries)
}

// WordOfTheDay handles GET /api/word-of-the-day.
func (h *SearchHandler) WordOfTheDay(ctx *gin.Context) {
	var q WordOfTheDayQuery
	if !BindQuery(ctx, &q) {
		return
	}

	category, ok := parseCategoryParam(ctx, "dictionary_type", q.Category)
	if !ok {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	entry, err := h.engine.WordOfTheDay(cctx, h.now(), category)
	if err != nil {
		if errors.Is(err, search.ErrNoEntries) {
			RespondNotFound(ctx, "No dictionary entries yet")
			return
		}
		h.log.ErrorContext(ctx.Request.Context(), "word_of_the_day_failed", "err", err)
		RespondInternal(ctx, "Could not pick a word of the day")
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, entry)
}
