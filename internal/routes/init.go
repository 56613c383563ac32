package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/stash-pay/stash_pay/internal/auth"
)

// RegisterInitRoute wires the public account initialization endpoint behind
// the rate limiter.
func RegisterInitRoute(r fiber.Router, h *auth.Handler, rateLimit fiber.Handler) {
	r.Post("/init", rateLimit, h.Init)
}
