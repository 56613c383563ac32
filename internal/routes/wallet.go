package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/stash-pay/stash_pay/internal/middleware"
	"github.com/stash-pay/stash_pay/internal/wallet"
)

// RegisterWalletRoutes wires the token-authenticated wallet endpoints.
func RegisterWalletRoutes(r fiber.Router, h *wallet.Handler, d Deps) {
	g := r.Group("/wallet",
		middleware.TokenAuth(),
		middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger),
	)

	g.Post("/", h.Enable)
	g.Get("/", h.View)
	g.Patch("/", h.Disable)
	g.Get("/transactions", h.Transactions)
	g.Post("/deposits", h.Deposit)
	g.Post("/withdrawals", h.Withdraw)
}
