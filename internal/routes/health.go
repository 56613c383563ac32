package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
)

// RegisterHealthRoutes adds a readiness endpoint probing the ledger store and
// cache.
func RegisterHealthRoutes(app *fiber.App, d Deps) {
	app.Get("/healthz", func(c *fiber.Ctx) error {
		dbStatus := "ok"
		cacheStatus := "ok"

		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()

		if d.DB != nil {
			if err := d.DB.Ping(ctx); err != nil {
				dbStatus = err.Error()
			}
		} else {
			dbStatus = "in-memory"
		}
		if d.Cache != nil {
			if err := d.Cache.Ping(ctx).Err(); err != nil {
				cacheStatus = err.Error()
			}
		} else {
			cacheStatus = "disabled"
		}

		status := http.StatusOK
		if d.DB != nil && dbStatus != "ok" {
			status = http.StatusServiceUnavailable
		}
		if d.Cache != nil && cacheStatus != "ok" {
			status = http.StatusServiceUnavailable
		}

		return c.Status(status).JSON(fiber.Map{
			"status":    fiber.Map{"postgres": dbStatus, "redis": cacheStatus},
			"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
		})
	})
}
