package handlers

import (
	"strconv"
	"time"

	apperrors "iprofit/internal/errors"
	"iprofit/internal/utils/response"
	"iprofit/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// bind parses the JSON body into dst and runs its validate tags. On failure
// the error response has already been written and ok is false.
func bind(c *fiber.Ctx, dst interface{}) (ok bool, err error) {
	if err := c.BodyParser(dst); err != nil {
		return false, response.BadRequest(c, "Invalid request body")
	}
	if fields := validation.Struct(dst); len(fields) > 0 {
		return false, response.ValidationError(c, fields)
	}
	return true, nil
}

func paramID(c *fiber.Ctx, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil || id == 0 {
		return 0, apperrors.ErrInvalidInput.WithMessage("invalid %s", name)
	}
	return uint(id), nil
}

func queryUint(c *fiber.Ctx, key string) *uint {
	raw := c.Query(key)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || v == 0 {
		return nil
	}
	id := uint(v)
	return &id
}

func queryBool(c *fiber.Ctx, key string) *bool {
	raw := c.Query(key)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil
	}
	return &v
}

func queryDecimal(c *fiber.Ctx, key string) *decimal.Decimal {
	raw := c.Query(key)
	if raw == "" {
		return nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil
	}
	return &d
}

// queryRange reads from/to as dates (YYYY-MM-DD) or RFC 3339 timestamps.
// A bare "to" date covers the whole day.
func queryRange(c *fiber.Ctx) (from, to *time.Time) {
	if t, ok := parseTime(c.Query("from")); ok {
		from = &t
	}
	if raw := c.Query("to"); raw != "" {
		if t, err := time.Parse(dateLayout, raw); err == nil {
			end := t.Add(24*time.Hour - time.Nanosecond)
			to = &end
		} else if t, ok := parseTime(raw); ok {
			to = &t
		}
	}
	return from, to
}

func parseTime(raw string) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, true
	}
	if t, err := time.Parse(dateLayout, raw); err == nil {
		return t, true
	}
	return time.Time{}, false
}
