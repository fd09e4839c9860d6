package pagination

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFromRequest(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantPage   int
		wantLimit  int
		wantOffset int
	}{
		{"defaults", "", 1, DefaultLimit, 0},
		{"explicit", "?page=3&limit=20", 3, 20, 40},
		{"clamped limit", "?limit=1000", 1, MaxLimit, 0},
		{"garbage", "?page=x&limit=-5", 1, DefaultLimit, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			var got Pagination
			app.Get("/", func(c *fiber.Ctx) error {
				got = ParseFromRequest(c)
				return c.JSON(Response(got, []int{}))
			})
			resp, err := app.Test(httptest.NewRequest("GET", "/"+tt.query, nil))
			require.NoError(t, err)
			assert.Equal(t, 200, resp.StatusCode)
			assert.Equal(t, tt.wantPage, got.Page)
			assert.Equal(t, tt.wantLimit, got.Limit)
			assert.Equal(t, tt.wantOffset, got.Offset)
		})
	}
}

func TestResponseMeta(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		p := Pagination{Page: 2, Limit: 10, Total: 25}
		return c.JSON(Response(p, []string{"a"}))
	})
	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)

	body, _ := io.ReadAll(resp.Body)
	var out struct {
		Meta struct {
			TotalPages int64 `json:"total_pages"`
			TotalItems int64 `json:"total_items"`
		} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, int64(3), out.Meta.TotalPages)
	assert.Equal(t, int64(25), out.Meta.TotalItems)
}
