package middleware

import (
	"context"
	"crypto/subtle"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const (
	// ClientIDKey is the context key for the identity used to rate limit a request
	ClientIDKey contextKey = "client_id"
	// IsAPITokenAuthKey is the context key indicating API token authentication
	IsAPITokenAuthKey contextKey = "is_api_token_auth"
)

// tokenClientID identifies requests authenticated with the ledger token
const tokenClientID = "api-token"

// APITokenAuthMiddleware guards the API with a single static bearer token.
// An empty token disables authentication.
type APITokenAuthMiddleware struct {
	token string
}

// NewAPITokenAuthMiddleware creates a new APITokenAuthMiddleware
func NewAPITokenAuthMiddleware(token string) *APITokenAuthMiddleware {
	return &APITokenAuthMiddleware{token: strings.TrimSpace(token)}
}

// Enabled reports whether a token is configured
func (m *APITokenAuthMiddleware) Enabled() bool {
	return m.token != ""
}

// Authenticate returns an Echo middleware that validates the bearer token
func (m *APITokenAuthMiddleware) Authenticate() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !m.Enabled() {
				return next(c)
			}

			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return unauthorized("Missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				return unauthorized("Invalid authorization header format")
			}

			if subtle.ConstantTimeCompare([]byte(strings.TrimSpace(parts[1])), []byte(m.token)) != 1 {
				log.Debug().Str("remote_ip", c.RealIP()).Msg("Rejected API token")
				return unauthorized("Invalid API token")
			}

			ctx := c.Request().Context()
			ctx = context.WithValue(ctx, ClientIDKey, tokenClientID)
			ctx = context.WithValue(ctx, IsAPITokenAuthKey, true)
			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}

// GetClientID returns the rate limiting identity of the request: the token
// identity when authenticated, otherwise the client IP.
func GetClientID(c echo.Context) string {
	if id, ok := c.Request().Context().Value(ClientIDKey).(string); ok && id != "" {
		return id
	}
	return c.RealIP()
}

// IsAPITokenAuth checks if the request was authenticated via API token
func IsAPITokenAuth(c echo.Context) bool {
	if isAPIToken, ok := c.Request().Context().Value(IsAPITokenAuthKey).(bool); ok {
		return isAPIToken
	}
	return false
}
