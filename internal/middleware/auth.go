// Package middleware provides HTTP middleware components for the application.
// It includes authentication, authorization, and other request processing middleware
// that can be used with the fiber web framework.
package middleware

import (
	"context"
	"strings"

	"iprofit/internal/logger"
	"iprofit/internal/models"
	"iprofit/internal/services/audit"
	"iprofit/internal/utils"
	"iprofit/internal/utils/response"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Authenticator validates access tokens.
type Authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (*models.UserClaims, error)
}

// AuthMiddleware handles JWT token validation and user authentication.
// It extracts the JWT token from the Authorization header (or the
// access_token cookie), validates it, and adds the claims to the request context.
type AuthMiddleware struct {
	auth Authenticator
	log  *zap.Logger
}

func NewAuthMiddleware(auth Authenticator, log *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{auth: auth, log: logger.OrNop(log)}
}

// Handler validates the bearer token, including its token version, and
// stores the claims under "claims" and the principal id under "userID".
func (m *AuthMiddleware) Handler(c *fiber.Ctx) error {
	token := bearerToken(c)
	if token == "" {
		return response.Error(c, fiber.StatusUnauthorized, "missing authorization header")
	}

	claims, err := m.auth.Authenticate(c.UserContext(), token)
	if err != nil {
		m.log.Debug("token rejected", zap.String("path", c.Path()), zap.Error(err))
		return response.FromError(c, err)
	}

	c.Locals("claims", claims)
	c.Locals("userID", claims.UserID)
	return c.Next()
}

func bearerToken(c *fiber.Ctx) string {
	header := c.Get(fiber.HeaderAuthorization)
	if header == "" {
		return c.Cookies("access_token")
	}
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}

// RequireAdmin lets through admin-panel accounts only.
func RequireAdmin(c *fiber.Ctx) error {
	claims, err := utils.GetUserClaims(c)
	if err != nil {
		return response.Unauthorized(c)
	}
	if !claims.IsAdmin() {
		return response.Error(c, fiber.StatusForbidden, "admin access required")
	}
	return c.Next()
}

// RequireUser lets through app-user tokens only.
func RequireUser(c *fiber.Ctx) error {
	claims, err := utils.GetUserClaims(c)
	if err != nil {
		return response.Unauthorized(c)
	}
	if claims.SubjectType != models.SubjectUser {
		return response.Error(c, fiber.StatusForbidden, "user access required")
	}
	return c.Next()
}

// HasPermission returns a middleware that checks for a specific permission.
// Super admins pass every check.
func HasPermission(permission string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, err := utils.GetUserClaims(c)
		if err != nil {
			return response.Unauthorized(c)
		}
		if claims.IsAdmin() && claims.HasPermission(permission) {
			return c.Next()
		}
		return response.Error(c, fiber.StatusForbidden, "insufficient permissions")
	}
}

// Actor describes the caller for audit rows.
func Actor(c *fiber.Ctx) audit.Actor {
	actor := audit.Actor{
		IP:        c.IP(),
		UserAgent: c.Get(fiber.HeaderUserAgent),
	}
	if claims, err := utils.GetUserClaims(c); err == nil && claims.IsAdmin() {
		id := claims.UserID
		actor.AdminID = &id
	}
	return actor
}
