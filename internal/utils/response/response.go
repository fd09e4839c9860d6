package response

import (
	"net/http"

	apperrors "iprofit/internal/errors"
	"iprofit/internal/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

func Success(c *fiber.Ctx, message string, data interface{}) error {
	return c.JSON(fiber.Map{
		"message": message,
		"data":    data,
	})
}

func Created(c *fiber.Ctx, message string, data interface{}) error {
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": message,
		"data":    data,
	})
}

func Error(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"error": message,
	})
}

func BadRequest(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusBadRequest, message)
}

func ServerError(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusInternalServerError, message)
}

func Unauthorized(c *fiber.Ctx) error {
	return Error(c, fiber.StatusUnauthorized, "Unauthorized")
}

func NotFound(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusNotFound, message)
}

// ValidationError reports field-level failures.
func ValidationError(c *fiber.Ctx, fields map[string]string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error":  "validation failed",
		"code":   apperrors.ErrInvalidInput.Code,
		"fields": fields,
	})
}

// FromError maps a service error to a JSON response. Unknown errors are
// logged and reported as 500 without leaking details.
func FromError(c *fiber.Ctx, err error) error {
	if de, ok := apperrors.As(err); ok {
		return c.Status(de.HTTPStatus()).JSON(fiber.Map{
			"error": de.Message,
			"code":  de.Code,
		})
	}
	if fe, ok := err.(*fiber.Error); ok {
		return Error(c, fe.Code, fe.Message)
	}
	logger.L().Error("unhandled error",
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Error(err))
	return Error(c, http.StatusInternalServerError, "internal server error")
}

// ErrorHandler is the app-wide fiber.Config ErrorHandler.
func ErrorHandler(c *fiber.Ctx, err error) error {
	return FromError(c, err)
}
