package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

func TestCorrelationIDGeneratesWhenMissing(t *testing.T) {
	app := fiber.New()
	app.Use(CorrelationID())

	var captured string
	app.Get("/", func(c *fiber.Ctx) error {
		captured = GetCorrelationID(c)
		return c.SendStatus(fiber.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.NotEmpty(t, captured)
	require.Equal(t, captured, resp.Header.Get("X-Correlation-ID"))
}

func TestCorrelationIDPropagatesIncomingHeader(t *testing.T) {
	app := fiber.New()
	app.Use(CorrelationID())

	var captured string
	app.Get("/", func(c *fiber.Ctx) error {
		captured = GetCorrelationID(c)
		return c.SendStatus(fiber.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Correlation-ID", "corr-123")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, "corr-123", captured)
	require.Equal(t, "corr-123", resp.Header.Get("X-Correlation-ID"))
}
