package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/bandwise/bandwise-go-api/internal/config"
	"github.com/bandwise/bandwise-go-api/internal/handler"
	"github.com/bandwise/bandwise-go-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	ScoringHandler *handler.ScoringHandler
	RateLimiter    fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	// Common v1 group for health & headers
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	app.Get("/metrics", observability.MetricsHandler())

	if deps.ScoringHandler != nil {
		scoring := app.Group("/api/v2/scoring")
		if deps.RateLimiter != nil {
			scoring.Use(deps.RateLimiter)
		}
		deps.ScoringHandler.Register(scoring)
	}
}
