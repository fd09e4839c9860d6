package middleware

import (
	"context"

	"iprofit/internal/models"
	"iprofit/internal/services/settings"
	"iprofit/internal/utils"
	"iprofit/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

// FlagReader reads boolean settings.
type FlagReader interface {
	Bool(ctx context.Context, key string) bool
}

// Maintenance answers 503 to app-user requests while maintenance mode is on.
// Admin tokens always pass. Mount it after the auth handler.
func Maintenance(flags FlagReader) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, err := utils.GetUserClaims(c)
		if err != nil || claims.SubjectType != models.SubjectUser {
			return c.Next()
		}
		if flags.Bool(c.UserContext(), settings.KeyMaintenanceMode) {
			return response.Error(c, fiber.StatusServiceUnavailable, "the platform is under maintenance")
		}
		return c.Next()
	}
}
