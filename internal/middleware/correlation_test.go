package middleware

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

func TestCorrelationIDPropagation(t *testing.T) {
	app := fiber.New()
	app.Use(CorrelationID())

	var fromContext string
	app.Get("/", func(c *fiber.Ctx) error {
		fromContext = CorrelationIDFromContext(c.UserContext())
		return c.SendString(GetCorrelationID(c))
	})

	t.Run("reuses_incoming", func(t *testing.T) {
		req := httptest.NewRequest(fiber.MethodGet, "/", nil)
		req.Header.Set(HeaderCorrelationID, "req-42")
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		require.Equal(t, "req-42", resp.Header.Get(HeaderCorrelationID))
		require.Equal(t, "req-42", fromContext)
	})

	t.Run("falls_back_to_request_id", func(t *testing.T) {
		req := httptest.NewRequest(fiber.MethodGet, "/", nil)
		req.Header.Set(fiber.HeaderXRequestID, "edge-7")
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		require.Equal(t, "edge-7", resp.Header.Get(HeaderCorrelationID))
	})

	t.Run("replaces_oversized", func(t *testing.T) {
		req := httptest.NewRequest(fiber.MethodGet, "/", nil)
		req.Header.Set(HeaderCorrelationID, strings.Repeat("x", 200))
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		id := resp.Header.Get(HeaderCorrelationID)
		require.Len(t, id, 36)
		require.Equal(t, id, fromContext)
	})
}
