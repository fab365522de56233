package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/producto-inventario/inventory-api/internal/auth"
	apperrors "github.com/producto-inventario/inventory-api/pkg/errors"
)

const identityKey = "identity"

type AuthMiddleware struct {
	tokens *auth.TokenService
	logger *logrus.Logger
}

func NewAuthMiddleware(tokens *auth.TokenService, logger *logrus.Logger) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, logger: logger}
}

// Authenticate extracts the bearer token, re-derives the caller's identity
// and stores it request-scoped. Handlers behind this middleware can rely on
// GetIdentity succeeding. Fails closed on any missing or unusable token.
func (a *AuthMiddleware) Authenticate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return a.unauthorized()
		}

		const bearerPrefix = "Bearer "
		if !strings.HasPrefix(authHeader, bearerPrefix) {
			return a.unauthorized()
		}

		tokenString := authHeader[len(bearerPrefix):]
		if tokenString == "" {
			return a.unauthorized()
		}

		identity, err := a.tokens.Parse(tokenString)
		if err != nil {
			if errors.Is(err, auth.ErrExpiredToken) {
				a.logger.WithField("path", c.Path()).Debug("Expired token")
			} else {
				a.logger.WithField("path", c.Path()).Debug("Token validation failed")
			}
			return a.unauthorized()
		}

		c.Locals(identityKey, identity)
		return c.Next()
	}
}

// unauthorized keeps the rejection generic: the caller learns nothing about
// why the token was unusable. The global error handler renders the envelope.
func (a *AuthMiddleware) unauthorized() error {
	return apperrors.NewAppError(apperrors.CodeUnauthenticated, "No autorizado.", nil)
}

// GetIdentity extracts the authenticated identity from the request context
func GetIdentity(c *fiber.Ctx) (auth.Identity, bool) {
	identity, ok := c.Locals(identityKey).(auth.Identity)
	return identity, ok
}
