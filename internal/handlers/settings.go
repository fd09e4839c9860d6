package handlers

import (
	"encoding/json"
	"strconv"

	"iprofit/internal/middleware"
	"iprofit/internal/services/settings"
	"iprofit/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

type SettingsHandler struct {
	settings settings.Service
}

func NewSettingsHandler(settings settings.Service) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

func (h *SettingsHandler) List(c *fiber.Ctx) error {
	rows, err := h.settings.All(c.UserContext())
	if err != nil {
		return response.FromError(c, err)
	}

	if category := c.Query("category"); category != "" {
		filtered := rows[:0]
		for _, s := range rows {
			if s.Category == category {
				filtered = append(filtered, s)
			}
		}
		rows = filtered
	}
	return response.Success(c, "Settings retrieved", rows)
}

func (h *SettingsHandler) Get(c *fiber.Ctx) error {
	s, err := h.settings.Get(c.UserContext(), c.Params("key"))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Setting retrieved", s)
}

// Update upserts {"settings": {"key": value, ...}}. Scalar JSON values are
// stored as their string form; objects and arrays as JSON text.
func (h *SettingsHandler) Update(c *fiber.Ctx) error {
	var input struct {
		Settings map[string]json.RawMessage `json:"settings" validate:"required,min=1"`
	}
	if ok, err := bind(c, &input); !ok {
		return err
	}

	values := make(map[string]string, len(input.Settings))
	for key, raw := range input.Settings {
		values[key] = settingValue(raw)
	}

	rows, err := h.settings.Update(c.UserContext(), middleware.Actor(c), values)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Settings updated", rows)
}

func settingValue(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return strconv.FormatBool(b)
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return string(raw)
}
