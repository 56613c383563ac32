package middleware

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/stash-pay/stash_pay/internal/auth"
	"github.com/stash-pay/stash_pay/internal/wallet"
)

const tokenScheme = "Token "

// TokenAuth extracts the bearer credential from the "Authorization: Token x"
// header and stores its digest in request locals. Resolution against the
// ledger stays with the facade; absent or malformed headers are rejected
// with 400, the contract the upstream clients already depend on.
func TokenAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authz := c.Get(fiber.HeaderAuthorization)
		if !strings.HasPrefix(authz, tokenScheme) {
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{
				"status": "fail",
				"data":   fiber.Map{"error": "Token Header not found"},
			})
		}

		token := strings.TrimSpace(authz[len(tokenScheme):])
		if token == "" {
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{
				"status": "fail",
				"data":   fiber.Map{"error": "Token Header not found"},
			})
		}

		c.Locals(wallet.TokenDigestKey, auth.Digest(token))
		return c.Next()
	}
}
