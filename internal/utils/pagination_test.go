package utils

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parsePaginationFor(t *testing.T, target string) Pagination {
	t.Helper()

	app := fiber.New()
	var got Pagination
	app.Get("/items", func(c *fiber.Ctx) error {
		got = ParsePagination(c)
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, target, nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	return got
}

func TestParsePagination(t *testing.T) {
	cases := []struct {
		name   string
		target string
		want   Pagination
	}{
		{"defaults", "/items", Pagination{Page: 1, Limit: 20, Offset: 0}},
		{"explicit page and limit", "/items?page=3&limit=5", Pagination{Page: 3, Limit: 5, Offset: 10}},
		{"zero and negative fall back", "/items?page=-2&limit=0", Pagination{Page: 1, Limit: 20, Offset: 0}},
		{"garbage falls back", "/items?page=abc&limit=xyz", Pagination{Page: 1, Limit: 20, Offset: 0}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, parsePaginationFor(t, tc.target))
		})
	}
}

func TestPaginationMeta(t *testing.T) {
	p := Pagination{Page: 2, Limit: 10, Offset: 10}

	assert.Equal(t, fiber.Map{
		"current_page":   2,
		"items_per_page": 10,
		"total_items":    int64(45),
	}, p.Meta(45))
}
