package middleware

// identity.go defines helpers shared across middleware files.  parseBearer
// verifies the Bearer token of a request and is used both by JWTAuth, which
// enforces it, and by the rate limiter, which only reads the subject so user
// keyed buckets work on routes that run before or without JWTAuth.

import (
	"errors"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// Context keys set by JWTAuth.
const (
	ContextUserID = "user_id"
	ContextRole   = "role"
)

var (
	errMissingBearer = errors.New("missing bearer token")
	errInvalidToken  = errors.New("invalid token")
	errInvalidClaims = errors.New("invalid claims")
)

// parseBearer validates the HS256 Bearer token of the request against
// secret and returns its claims.
func parseBearer(c echo.Context, secret string) (jwt.MapClaims, error) {
	auth := c.Request().Header.Get(echo.HeaderAuthorization)
	if !strings.HasPrefix(auth, "Bearer ") {
		return nil, errMissingBearer
	}
	raw := strings.TrimPrefix(auth, "Bearer ")

	// Only HMAC-signed tokens are accepted.
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, echo.ErrUnauthorized
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return nil, errInvalidToken
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errInvalidClaims
	}
	return claims, nil
}

// requestUser returns the authenticated subject of the request or "anon".
// A subject stored by JWTAuth wins; otherwise a valid Bearer token is read
// without enforcing it.  Invalid or unsigned tokens count as anonymous so
// clients cannot pick another user's bucket.
func requestUser(c echo.Context, secret string) string {
	if s, ok := c.Get(ContextUserID).(string); ok && s != "" {
		return s
	}
	if secret == "" {
		return "anon"
	}
	claims, err := parseBearer(c, secret)
	if err != nil {
		return "anon"
	}
	if s, ok := claims["sub"].(string); ok && s != "" {
		return s
	}
	return "anon"
}
