package handlers

import (
	"context"
	"encoding/json"
	"testing"

	"iprofit/internal/models"
	"iprofit/internal/services/audit"
	"iprofit/internal/services/settings"
	"iprofit/internal/services/user"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettingValue(t *testing.T) {
	tests := map[string]string{
		`"iProfit"`:    "iProfit",
		`2.5`:          "2.5",
		`true`:         "true",
		`{"a":1}`:      `{"a":1}`,
		`["x","y"]`:    `["x","y"]`,
		`100000`:       "100000",
		`"  spaced  "`: "  spaced  ",
	}
	for raw, want := range tests {
		assert.Equal(t, want, settingValue(json.RawMessage(raw)), raw)
	}
}

type fakeSettings struct {
	settings.Service
	got map[string]string
}

func (f *fakeSettings) Update(_ context.Context, _ audit.Actor, values map[string]string) ([]models.Setting, error) {
	f.got = values
	out := make([]models.Setting, 0, len(values))
	for k, v := range values {
		out = append(out, models.Setting{Key: k, Value: v})
	}
	return out, nil
}

func TestUpdateSettingsHandler(t *testing.T) {
	fake := &fakeSettings{}
	app := fiber.New()
	app.Put("/settings", withClaims(adminClaims), NewSettingsHandler(fake).Update)

	status, _ := doJSON(t, app, "PUT", "/settings", fiber.Map{"settings": fiber.Map{
		"withdrawal_fee_percent": 1.5,
		"maintenance_mode":       false,
		"platform_name":          "iProfit",
	}})
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, map[string]string{
		"withdrawal_fee_percent": "1.5",
		"maintenance_mode":       "false",
		"platform_name":          "iProfit",
	}, fake.got)

	status, _ = doJSON(t, app, "PUT", "/settings", fiber.Map{"settings": fiber.Map{}})
	assert.Equal(t, fiber.StatusBadRequest, status)
}

type fakeUsers struct {
	user.Service
	bulk func(user.BulkRequest) ([]user.BulkResult, error)
}

func (f *fakeUsers) Bulk(_ context.Context, _ audit.Actor, req user.BulkRequest) ([]user.BulkResult, error) {
	return f.bulk(req)
}

func TestBulkUsersHandler(t *testing.T) {
	fake := &fakeUsers{bulk: func(req user.BulkRequest) ([]user.BulkResult, error) {
		return []user.BulkResult{{ID: req.IDs[0], Success: true}, {ID: req.IDs[1], Error: "user not found"}}, nil
	}}
	app := fiber.New()
	app.Post("/users/bulk", withClaims(adminClaims), NewUserHandler(fake).Bulk)

	status, body := doJSON(t, app, "POST", "/users/bulk", fiber.Map{"action": "suspend", "ids": []uint{3, 4}})
	require.Equal(t, fiber.StatusOK, status)
	data := body["data"].(map[string]interface{})
	assert.EqualValues(t, 1, data["succeeded"])
	assert.EqualValues(t, 1, data["failed"])

	ids := make([]uint, 101)
	for i := range ids {
		ids[i] = uint(i + 1)
	}
	status, body = doJSON(t, app, "POST", "/users/bulk", fiber.Map{"action": "suspend", "ids": ids})
	assert.Equal(t, fiber.StatusBadRequest, status)
	fields := body["fields"].(map[string]interface{})
	assert.Equal(t, "must not contain more than 100 ids", fields["ids"])

	status, _ = doJSON(t, app, "POST", "/users/bulk", fiber.Map{"action": "promote", "ids": []uint{3}})
	assert.Equal(t, fiber.StatusBadRequest, status)
}
