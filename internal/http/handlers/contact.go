package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kamusku/kamus/internal/notifications"
)

type ContactHandler struct {
	notifier notifications.Notifier
	log      *slog.Logger
}

func NewContactHandler(notifier notifications.Notifier, log *slog.Logger) *ContactHandler {
	if log == nil {
		log = slog.Default()
	}
	return &ContactHandler{notifier: notifier, log: log}
}

type ContactRequest struct {
	Name    string `json:"name" binding:"required,max=100"`
	Email   string `json:"email" binding:"required,email,max=254"`
	Message string `json:"message" binding:"required,min=10,max=5000"`
}

// Submit handles POST /api/contact. Nothing is persisted; the message goes
// to the configured notifier.
func (h *ContactHandler) Submit(ctx *gin.Context) {
	var req ContactRequest
	if !BindJSON(ctx, &req) {
		return
	}

	msg := notifications.ContactMessage{
		Name:    strings.TrimSpace(req.Name),
		Email:   strings.TrimSpace(req.Email),
		Message: strings.TrimSpace(req.Message),
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.notifier.SendContactMessage(cctx, msg); err != nil {
		level := slog.LevelError
		if errors.Is(err, notifications.ErrCircuitOpen) {
			level = slog.LevelWarn
		}
		h.log.Log(ctx.Request.Context(), level, "contact_delivery_failed", "err", err)
		RespondError(ctx, http.StatusInternalServerError, "internal_error", "Gagal mengirim pesan", nil)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Pesan berhasil dikirim. Terima kasih!"})
}
