package middleware

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"iprofit/internal/models"
	"iprofit/internal/services/auth"
	"iprofit/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tokenTable map[string]*models.UserClaims

func (t tokenTable) Authenticate(_ context.Context, token string) (*models.UserClaims, error) {
	if c, ok := t[token]; ok {
		return c, nil
	}
	return nil, auth.ErrInvalidToken
}

type flags map[string]bool

func (f flags) Bool(_ context.Context, key string) bool { return f[key] }

var tokens = tokenTable{
	"super":     {UserID: 1, Role: models.RoleSuperAdmin, SubjectType: models.SubjectAdmin},
	"moderator": {UserID: 2, Role: models.RoleModerator, SubjectType: models.SubjectAdmin, Permissions: models.GetDefaultPermissions(models.RoleModerator)},
	"user":      {UserID: 40, Role: models.RoleUser, SubjectType: models.SubjectUser},
}

func newApp(handlers ...fiber.Handler) *fiber.App {
	app := fiber.New()
	chain := append([]fiber.Handler{NewAuthMiddleware(tokens, nil).Handler}, handlers...)
	chain = append(chain, func(c *fiber.Ctx) error {
		claims, err := utils.GetUserClaims(c)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"id": claims.UserID})
	})
	app.Get("/", chain...)
	return app
}

func call(t *testing.T, app *fiber.App, token string) int {
	t.Helper()
	req := httptest.NewRequest("GET", "/", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp.StatusCode
}

func TestAuthMiddleware(t *testing.T) {
	app := newApp()

	assert.Equal(t, fiber.StatusUnauthorized, call(t, app, ""))
	assert.Equal(t, fiber.StatusUnauthorized, call(t, app, "forged"))
	assert.Equal(t, fiber.StatusOK, call(t, app, "user"))

	t.Run("cookie fallback", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)
		req.AddCookie(&http.Cookie{Name: "access_token", Value: "super"})
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})
}

func TestGuards(t *testing.T) {
	tests := []struct {
		name  string
		guard fiber.Handler
		token string
		want  int
	}{
		{"admin passes RequireAdmin", RequireAdmin, "moderator", 200},
		{"user blocked by RequireAdmin", RequireAdmin, "user", 403},
		{"user passes RequireUser", RequireUser, "user", 200},
		{"admin blocked by RequireUser", RequireUser, "super", 403},
		{"super admin has every permission", HasPermission(models.PermissionSettingsWrite), "super", 200},
		{"moderator lacks settings write", HasPermission(models.PermissionSettingsWrite), "moderator", 403},
		{"moderator reviews kyc", HasPermission(models.PermissionKYCReview), "moderator", 200},
		{"user never has admin permissions", HasPermission(models.PermissionUsersRead), "user", 403},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, call(t, newApp(tt.guard), tt.token))
		})
	}
}

func TestMaintenance(t *testing.T) {
	on := newApp(Maintenance(flags{"maintenance_mode": true}))
	assert.Equal(t, fiber.StatusServiceUnavailable, call(t, on, "user"))
	assert.Equal(t, fiber.StatusOK, call(t, on, "super"))

	off := newApp(Maintenance(flags{}))
	assert.Equal(t, fiber.StatusOK, call(t, off, "user"))
}

func TestActor(t *testing.T) {
	app := fiber.New()
	app.Get("/", NewAuthMiddleware(tokens, nil).Handler, func(c *fiber.Ctx) error {
		a := Actor(c)
		if a.AdminID == nil {
			return c.SendString("none")
		}
		return c.JSON(fiber.Map{"admin": *a.AdminID, "ua": a.UserAgent})
	})

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer user")
	resp, err := app.Test(req)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "none", string(body))
}
