package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddlewareAndHandler(t *testing.T) {
	app := fiber.New()
	app.Use(Middleware())
	app.Get("/ping/:id", func(c *fiber.Ctx) error { return c.SendString("pong") })
	app.Get("/metrics", Handler())

	before := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/ping/:id", "200"))

	resp, err := app.Test(httptest.NewRequest("GET", "/ping/1", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	after := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/ping/:id", "200"))
	assert.Equal(t, before+1, after)

	resp, err = app.Test(httptest.NewRequest("GET", "/metrics", nil))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	assert.True(t, strings.Contains(string(body), "iprofit_http_requests_total"))
}
