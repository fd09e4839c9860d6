package routes

import (
	"context"
	"net/http/httptest"
	"testing"

	"iprofit/internal/handlers"
	"iprofit/internal/middleware"
	"iprofit/internal/models"
	"iprofit/internal/services/auth"
	"iprofit/internal/services/dashboard"

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

type fakeDashboard struct{ dashboard.Service }

func (fakeDashboard) Metrics(context.Context) (*models.DashboardMetrics, error) {
	return &models.DashboardMetrics{}, nil
}

type okPinger struct{}

func (okPinger) PingContext(context.Context) error { return nil }

func newApp(maintenance bool) *fiber.App {
	tokens := tokenTable{
		"super":     {UserID: 1, Role: models.RoleSuperAdmin, SubjectType: models.SubjectAdmin},
		"moderator": {UserID: 2, Role: models.RoleModerator, SubjectType: models.SubjectAdmin, Permissions: models.GetDefaultPermissions(models.RoleModerator)},
		"user":      {UserID: 40, Role: models.RoleUser, SubjectType: models.SubjectUser},
	}
	// Handlers whose service is nil must never be reached by these tests.
	h := Handlers{
		Auth:          handlers.NewAuthHandler(nil, false, 0),
		Users:         handlers.NewUserHandler(nil),
		Transactions:  handlers.NewTransactionHandler(nil),
		Settings:      handlers.NewSettingsHandler(nil),
		Referrals:     handlers.NewReferralHandler(nil),
		Plans:         handlers.NewPlanHandler(nil),
		Loans:         handlers.NewLoanHandler(nil),
		Tasks:         handlers.NewTaskHandler(nil),
		Notifications: handlers.NewNotificationHandler(nil),
		News:          handlers.NewNewsHandler(nil),
		Support:       handlers.NewSupportHandler(nil),
		Audit:         handlers.NewAuditHandler(nil),
		Dashboard:     handlers.NewDashboardHandler(fakeDashboard{}),
		Health:        handlers.NewHealthHandler(okPinger{}, nil, "test"),
	}
	app := fiber.New()
	SetupRoutes(app, h, middleware.NewAuthMiddleware(tokens, nil), flags{"maintenance_mode": maintenance})
	return app
}

func status(t *testing.T, app *fiber.App, method, path, token string) int {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp.StatusCode
}

func TestRouteGuards(t *testing.T) {
	app := newApp(false)

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		want   int
	}{
		{"health is public", "GET", "/health", "", 200},
		{"metrics is public", "GET", "/metrics", "", 200},
		{"dashboard needs a token", "GET", "/api/dashboard/metrics", "", 401},
		{"dashboard for admins", "GET", "/api/dashboard/metrics", "moderator", 200},
		{"dashboard closed to users", "GET", "/api/dashboard/metrics", "user", 403},
		{"moderator cannot change settings", "PUT", "/api/settings", "moderator", 403},
		{"moderator cannot read audit", "GET", "/api/audit", "moderator", 403},
		{"moderator cannot approve withdrawals", "POST", "/api/transactions/withdrawals/approve", "moderator", 403},
		{"users cannot list users", "GET", "/api/users", "user", 403},
		{"admins cannot request deposits", "POST", "/api/transactions/deposits", "super", 403},
		{"users cannot review loans", "POST", "/api/loans/3/review", "user", 403},
		{"cache stats without redis", "GET", "/api/admin/cache-stats", "super", 503},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, status(t, app, tt.method, tt.path, tt.token))
		})
	}
}

func TestMaintenanceMode(t *testing.T) {
	app := newApp(true)

	assert.Equal(t, fiber.StatusServiceUnavailable, status(t, app, "POST", "/api/transactions/deposits", "user"))
	assert.Equal(t, fiber.StatusOK, status(t, app, "GET", "/api/dashboard/metrics", "super"))
}

func TestLoginIsRateLimited(t *testing.T) {
	app := newApp(false)

	// An empty body fails validation before the auth service is touched.
	for i := 0; i < LoginMax; i++ {
		assert.Equal(t, fiber.StatusBadRequest, status(t, app, "POST", "/api/auth/login", ""))
	}
	assert.Equal(t, fiber.StatusTooManyRequests, status(t, app, "POST", "/api/auth/login", ""))
}
