package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kamusku/kamus/internal/domain/searchlog"
)

type SearchLogReader interface {
	ListRecent(ctx context.Context, limit int) ([]searchlog.SearchLog, error)
	Popular(ctx context.Context, limit int) ([]searchlog.PopularQuery, error)
}

type SearchLogsHandler struct {
	logs SearchLogReader
	log  *slog.Logger
}

func NewSearchLogsHandler(logs SearchLogReader, log *slog.Logger) *SearchLogsHandler {
	if log == nil {
		log = slog.Default()
	}
	return &SearchLogsHandler{logs: logs, log: log}
}

type SearchLogsQuery struct {
	Limit int `form:"limit" binding:"omitempty,min=1,max=100"`
}

func (q SearchLogsQuery) limit() int {
	if q.Limit == 0 {
		return 20
	}
	return q.Limit
}

// Recent handles GET /api/admin/search-logs, newest first.
func (h *SearchLogsHandler) Recent(ctx *gin.Context) {
	var q SearchLogsQuery
	if !BindQuery(ctx, &q) {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	items, err := h.logs.ListRecent(cctx, q.limit())
	if err != nil {
		h.log.ErrorContext(ctx.Request.Context(), "list_search_logs_failed", "err", err)
		RespondInternal(ctx, "Could not list search logs")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"items": items,
		"count": len(items),
	})
}

// Popular handles GET /api/admin/search-logs/popular.
func (h *SearchLogsHandler) Popular(ctx *gin.Context) {
	var q SearchLogsQuery
	if !BindQuery(ctx, &q) {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	items, err := h.logs.Popular(cctx, q.limit())
	if err != nil {
		h.log.ErrorContext(ctx.Request.Context(), "popular_queries_failed", "err", err)
		RespondInternal(ctx, "Could not aggregate search logs")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"items": items,
		"count": len(items),
	})
}
