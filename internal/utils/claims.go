package utils

import (
	"errors"

	"iprofit/internal/models"

	"github.com/gofiber/fiber/v2"
)

var ErrNoClaims = errors.New("claims not found in context")

// GetUserClaims extracts the claims the auth middleware stored on the context.
func GetUserClaims(c *fiber.Ctx) (*models.UserClaims, error) {
	v := c.Locals("claims")
	if v == nil {
		return nil, ErrNoClaims
	}

	claims, ok := v.(*models.UserClaims)
	if !ok {
		return nil, errors.New("invalid claims type")
	}
	return claims, nil
}

// ActorID returns the authenticated principal id, or nil when absent.
func ActorID(c *fiber.Ctx) *uint {
	claims, err := GetUserClaims(c)
	if err != nil {
		return nil
	}
	id := claims.UserID
	return &id
}
