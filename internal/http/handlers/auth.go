package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kamusku/kamus/internal/auth"
	"github.com/kamusku/kamus/internal/domain/user"
	"github.com/kamusku/kamus/internal/http/middlewares"
	"github.com/kamusku/kamus/internal/observability"
	"github.com/kamusku/kamus/internal/security"
)

type SessionGate interface {
	Login(ctx context.Context, email, password string) (user.User, auth.Ticket, error)
	Register(ctx context.Context, username, email, password string) (user.User, auth.Ticket, error)
	Logout(ctx context.Context, token string) error
}

type CookieConfig struct {
	Secure bool
}

type AuthHandler struct {
	gate   SessionGate
	cookie CookieConfig
	prom   *observability.Prom
	log    *slog.Logger
	now    func() time.Time
}

func NewAuthHandler(gate SessionGate, cookie CookieConfig, prom *observability.Prom, log *slog.Logger) *AuthHandler {
	if log == nil {
		log = slog.Default()
	}
	return &AuthHandler{gate: gate, cookie: cookie, prom: prom, log: log, now: time.Now}
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
	Email    string `json:"email" binding:"required,email,max=254"`
	Password string `json:"password" binding:"required,min=6,max=72,maxbytes=72"`
}

func (h *AuthHandler) Register(ctx *gin.Context) {
	var req RegisterRequest
	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	u, ticket, err := h.gate.Register(cctx, req.Username, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, user.ErrUsernameTaken):
			RespondValidation(ctx, "Nama pengguna sudah digunakan", FieldError{
				Field: "username", Rule: "unique", Message: validationMessage("unique", ""),
			})
		case errors.Is(err, user.ErrEmailTaken):
			RespondValidation(ctx, "Email sudah terdaftar", FieldError{
				Field: "email", Rule: "unique", Message: validationMessage("unique", ""),
			})
		case errors.Is(err, security.ErrPasswordTooLong):
			RespondValidation(ctx, "Kata sandi terlalu panjang", passwordTooLong())
		default:
			h.log.ErrorContext(ctx.Request.Context(), "register_failed", "err", err)
			RespondInternal(ctx, "Gagal membuat akun")
		}
		return
	}

	h.setSessionCookie(ctx, ticket)
	h.log.InfoContext(ctx.Request.Context(), "user_registered", "user_id", u.ID)

	ctx.JSON(http.StatusCreated, u)
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var req LoginRequest
	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	u, ticket, err := h.gate.Login(cctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			h.prom.ObserveLogin("invalid")
			RespondUnauthorized(ctx, "invalid_credentials", "Email atau kata sandi salah.")
			return
		}
		h.prom.ObserveLogin("error")
		h.log.ErrorContext(ctx.Request.Context(), "login_failed", "err", err)
		RespondInternal(ctx, "Gagal masuk")
		return
	}

	h.prom.ObserveLogin("ok")
	h.setSessionCookie(ctx, ticket)

	ctx.JSON(http.StatusOK, u)
}

// Logout always clears the cookie and answers 204, even without a session.
func (h *AuthHandler) Logout(ctx *gin.Context) {
	raw, _ := ctx.Cookie(middlewares.SessionCookieName)

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	if err := h.gate.Logout(cctx, raw); err != nil {
		h.log.WarnContext(ctx.Request.Context(), "logout_session_delete_failed", "err", err)
	}

	h.clearSessionCookie(ctx)
	ctx.Status(http.StatusNoContent)
}

// CurrentUser handles GET /api/user behind the auth middleware.
func (h *AuthHandler) CurrentUser(ctx *gin.Context) {
	u, ok := middlewares.UserFromContext(ctx)
	if !ok {
		RespondUnauthorized(ctx, "unauthorized", "Authentication required")
		return
	}

	ctx.JSON(http.StatusOK, u)
}

func (h *AuthHandler) setSessionCookie(ctx *gin.Context, ticket auth.Ticket) {
	maxAge := int(ticket.ExpiresAt.Sub(h.now()).Seconds())
	if maxAge < 1 {
		maxAge = 1
	}

	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(
		middlewares.SessionCookieName,
		ticket.Token,
		maxAge,
		"/",
		"",
		h.cookie.Secure,
		true, // HttpOnly.
	)
}

func (h *AuthHandler) clearSessionCookie(ctx *gin.Context) {
	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(
		middlewares.SessionCookieName,
		"",
		-1,
		"/",
		"",
		h.cookie.Secure,
		true,
	)
}
