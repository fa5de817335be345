package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	apperrors "github.com/spec-kit/lyrics-service/pkg/util"
)

const userIDKey = "auth_user_id"

// Middleware guards protected routes with bearer token checks.
type Middleware struct {
	tokens *TokenManager
}

// NewMiddleware constructs middleware.
func NewMiddleware(tokens *TokenManager) *Middleware {
	return &Middleware{tokens: tokens}
}

// Require rejects requests without a valid access token. A missing or
// malformed header is Unauthorized; a presented but rejected token is
// Forbidden. No retry, no mutation.
func (m *Middleware) Require(c *fiber.Ctx) error {
	token, ok := bearerToken(c)
	if !ok {
		return apperrors.NewUnauthorized("no token provided")
	}

	userID, err := m.tokens.VerifyAccess(token)
	if err != nil {
		return apperrors.NewForbidden("failed to authenticate token")
	}

	c.Locals(userIDKey, userID)
	return c.Next()
}

// Resolve allows anonymous requests through but rejects a presented token
// that fails verification. Browse routes use this so logged-in users get
// their own Spotify credential while everyone else shares the app one.
func (m *Middleware) Resolve(c *fiber.Ctx) error {
	token, ok := bearerToken(c)
	if !ok {
		return c.Next()
	}

	userID, err := m.tokens.VerifyAccess(token)
	if err != nil {
		return apperrors.NewUnauthorized("invalid token")
	}

	c.Locals(userIDKey, userID)
	return c.Next()
}

// UserIDFromContext retrieves the authenticated user id, if any.
func UserIDFromContext(c *fiber.Ctx) (string, bool) {
	val := c.Locals(userIDKey)
	if val == nil {
		return "", false
	}
	id, ok := val.(string)
	return id, ok && id != ""
}

func bearerToken(c *fiber.Ctx) (string, bool) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}
