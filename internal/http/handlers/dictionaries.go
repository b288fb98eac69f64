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
	"github.com/kamusku/kamus/internal/observability"
	"github.com/kamusku/kamus/internal/search"
	"github.com/kamusku/kamus/internal/utils"
)

type EntryStore interface {
	Create(ctx context.Context, req dictionary.CreateEntryRequest) (dictionary.Entry, error)
	GetByID(ctx context.Context, id string) (dictionary.Entry, error)
	List(ctx context.Context, category *dictionary.Category) ([]dictionary.Entry, error)
	Update(ctx context.Context, id string, req dictionary.UpdateEntryRequest) (dictionary.Entry, error)
	Delete(ctx context.Context, id string) error
}

type DictionariesHandler struct {
	repo  EntryStore
	cache *cache.Cache
	prom  *observability.Prom
	log   *slog.Logger
}

func NewDictionariesHandler(repo EntryStore, c *cache.Cache, prom *observability.Prom, log *slog.Logger) *DictionariesHandler {
	if log == nil {
		log = slog.Default()
	}
	return &DictionariesHandler{repo: repo, cache: c, prom: prom, log: log}
}

type ListEntriesQuery struct {
	Search   string `form:"search" binding:"max=200"`
	Category string `form:"type"`
}

// List handles GET /api/admin/dictionaries. Results keep insertion order;
// the admin table is not ranked.
func (h *DictionariesHandler) List(ctx *gin.Context) {
	var q ListEntriesQuery
	if !BindQuery(ctx, &q) {
		return
	}

	category, ok := parseCategoryParam(ctx, "type", q.Category)
	if !ok {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	entries, err := h.repo.List(cctx, category)
	if err != nil {
		h.log.ErrorContext(ctx.Request.Context(), "list_entries_failed", "err", err)
		RespondInternal(ctx, "Failed to fetch dictionaries")
		return
	}

	if s := strings.TrimSpace(q.Search); s != "" {
		entries = search.Filter(entries, s, category)
	}

	ctx.JSON(http.StatusOK, entries)
}

func (h *DictionariesHandler) Create(ctx *gin.Context) {
	var req dictionary.CreateEntryRequest
	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	entry, err := h.repo.Create(cctx, req)
	if err != nil {
		h.log.ErrorContext(ctx.Request.Context(), "create_entry_failed", "err", err)
		RespondInternal(ctx, "Failed to create dictionary entry")
		return
	}

	h.afterMutation(ctx, "create", entry.ID)
	ctx.JSON(http.StatusCreated, entry)
}

func (h *DictionariesHandler) Get(ctx *gin.Context) {
	id := ctx.Param("id")

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	entry, err := h.repo.GetByID(cctx, id)
	if err != nil {
		if errors.Is(err, dictionary.ErrNotFound) {
			RespondNotFound(ctx, "Dictionary entry not found")
			return
		}
		h.log.ErrorContext(ctx.Request.Context(), "get_entry_failed", "err", err, "id", id)
		RespondInternal(ctx, "Failed to fetch dictionary entry")
		return
	}

	ctx.JSON(http.StatusOK, entry)
}

// Update handles PUT /api/admin/dictionaries/:id as a partial update.
func (h *DictionariesHandler) Update(ctx *gin.Context) {
	id := ctx.Param("id")

	var req dictionary.UpdateEntryRequest
	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	entry, err := h.repo.Update(cctx, id, req)
	if err != nil {
		if errors.Is(err, dictionary.ErrNotFound) {
			RespondNotFound(ctx, "Dictionary entry not found")
			return
		}
		h.log.ErrorContext(ctx.Request.Context(), "update_entry_failed", "err", err, "id", id)
		RespondInternal(ctx, "Failed to update dictionary entry")
		return
	}

	h.afterMutation(ctx, "update", id)
	ctx.JSON(http.StatusOK, entry)
}

func (h *DictionariesHandler) Delete(ctx *gin.Context) {
	id := ctx.Param("id")

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	err := h.repo.Delete(cctx, id)
	if err != nil {
		if errors.Is(err, dictionary.ErrNotFound) {
			RespondNotFound(ctx, "Dictionary entry not found")
			return
		}
		h.log.ErrorContext(ctx.Request.Context(), "delete_entry_failed", "err", err, "id", id)
		RespondInternal(ctx, "Failed to delete dictionary entry")
		return
	}

	h.afterMutation(ctx, "delete", id)
	ctx.Status(http.StatusNoContent)
}

// afterMutation drops the cached suggestion and sitemap responses built from
// the old entry set. The acting user is stamped by the logger.
func (h *DictionariesHandler) afterMutation(ctx *gin.Context, op, id string) {
	if h.cache != nil {
		h.cache.DeletePrefix(utils.SuggestionsCachePrefix)
		h.cache.DeletePrefix(utils.SitemapCachePrefix)
	}
	h.prom.ObserveMutation(op)

	h.log.InfoContext(ctx.Request.Context(), "entry_"+op+"d", "id", id)
}
