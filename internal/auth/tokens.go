package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const sessionTokenType = "session"

var ErrInvalidToken = errors.New("invalid session token")

// Claims carry the session id as jti; the session record itself stays on
// the server.
type Claims struct {
	UserID    string `json:"sub"`
	TokenType string `json:"typ"`
	jwt.RegisteredClaims
}

type TokenManager struct {
	secret []byte
	maxAge time.Duration
}

func NewTokenManager(secret string, maxAge time.Duration) *TokenManager {
	return &TokenManager{
		secret: []byte(secret),
		maxAge: maxAge,
	}
}

// MaxAge is the absolute token lifetime; no session may outlive it.
func (m *TokenManager) MaxAge() time.Duration {
	return m.maxAge
}

// Issue signs a token for the session. expiresAt is the absolute lifetime of
// the cookie, independent of the session's idle deadline.
func (m *TokenManager) Issue(userID, sessionID string, now time.Time) (token string, expiresAt time.Time, err error) {
	expiresAt = now.Add(m.maxAge)

	claims := Claims{
		UserID:    userID,
		TokenType: sessionTokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sessionID,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token, err = jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	return
}

func (m *TokenManager) Parse(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		// Enforce HS256
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	if claims.TokenType != sessionTokenType || claims.ID == "" || claims.UserID == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
