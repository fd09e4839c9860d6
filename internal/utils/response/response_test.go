package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"

	apperrors "iprofit/internal/errors"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"domain error", apperrors.ErrInsufficientBalance, 422, "INSUFFICIENT_BALANCE"},
		{"wrapped domain error", fmt.Errorf("approve: %w", apperrors.ErrInvalidTransition), 409, "INVALID_TRANSITION"},
		{"fiber error", fiber.ErrNotFound, 404, ""},
		{"unknown", errors.New("boom"), 500, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/", func(c *fiber.Ctx) error { return FromError(c, tt.err) })

			resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)

			body, _ := io.ReadAll(resp.Body)
			var out map[string]interface{}
			require.NoError(t, json.Unmarshal(body, &out))
			assert.NotEmpty(t, out["error"])
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, out["code"])
			}
		})
	}
}
