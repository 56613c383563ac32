package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-ID"

// maxRequestIDLen guards against clients stuffing arbitrary payloads into the
// tracing header.
const maxRequestIDLen = 64

// RequestID ensures each request carries a stable identifier for tracing and
// audit logging. Client-supplied ids are honored when they look sane,
// otherwise a fresh UUID is minted.
func RequestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqID := c.Get(requestIDHeader)
		if reqID == "" || len(reqID) > maxRequestIDLen {
			reqID = uuid.NewString()
		}
		c.Set(requestIDHeader, reqID)
		c.Locals(requestIDHeader, reqID)
		return c.Next()
	}
}
