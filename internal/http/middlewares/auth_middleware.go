package middlewares

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kamusku/kamus/internal/actorctx"
	"github.com/kamusku/kamus/internal/auth"
	"github.com/kamusku/kamus/internal/domain/user"
)

// SessionCookieName is the cookie carrying the signed session token.
const SessionCookieName = "kamus_session"

// Keep this small interface so tests can fake it easily.
type SessionAuthenticator interface {
	RequireAuthenticated(ctx context.Context, token string) (user.User, error)
}

type AuthMiddleware struct {
	gate SessionAuthenticator
}

func NewAuthMiddleware(gate SessionAuthenticator) *AuthMiddleware {
	return &AuthMiddleware{gate: gate}
}

func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie(SessionCookieName)

		u, err := m.gate.RequireAuthenticated(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, auth.ErrAuthRequired) {
				abortJSON(c, http.StatusUnauthorized, "unauthorized", "Authentication required")
				return
			}

			slog.Default().ErrorContext(c.Request.Context(), "session_check_failed", "err", err)
			abortJSON(c, http.StatusInternalServerError, "internal_error", "Could not verify session")
			return
		}

		// Stash identity on both the gin and the request context
		c.Set(CtxUserID, u.ID)
		c.Set(CtxUser, u)
		c.Request = c.Request.WithContext(actorctx.WithUserID(c.Request.Context(), u.ID))

		c.Next()
	}
}

// Optional helpers so handlers don't need to know the magic keys.

func UserIDFromContext(c *gin.Context) (string, bool) {
	v, ok := c.Get(CtxUserID)
	if !ok {
		return "", false
	}
	id, ok := v.(string)
	return id, ok && id != ""
}

func UserFromContext(c *gin.Context) (user.User, bool) {
	v, ok := c.Get(CtxUser)
	if !ok {
		return user.User{}, false
	}
	u, ok := v.(user.User)
	return u, ok
}

func abortJSON(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"error": gin.H{
			"code":      code,
			"message":   message,
			"requestId": c.GetString(CtxRequestID),
		},
	})
}
