package wallet

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// TokenDigestKey is the locals key under which the TokenAuth middleware
// stores the digest of the presented bearer token.
const TokenDigestKey = "token_digest"

// Handler exposes the wallet HTTP endpoints.
type Handler struct {
	service *Service
}

// NewHandler builds a wallet HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type postRequest struct {
	Amount      decimal.Decimal `json:"amount" form:"amount"`
	ReferenceID string          `json:"reference_id" form:"reference_id"`
}

type disableRequest struct {
	IsDisabled bool `json:"is_disabled" form:"is_disabled"`
}

// Enable activates the wallet behind the token.
func (h *Handler) Enable(c *fiber.Ctx) error {
	w, err := h.service.Enable(c.UserContext(), digest(c))
	if err != nil {
		return failure(c, err)
	}
	return c.Status(http.StatusCreated).JSON(walletEnvelope(w, "enabled_at", w.EnabledAt))
}

// View returns the wallet and its balance.
func (h *Handler) View(c *fiber.Ctx) error {
	w, err := h.service.View(c.UserContext(), digest(c))
	if err != nil {
		return failure(c, err)
	}
	return c.Status(http.StatusOK).JSON(walletEnvelope(w, "enabled_at", w.EnabledAt))
}

// Disable deactivates the wallet when is_disabled is set; otherwise it acts
// as a guarded view, the observed upstream behavior.
func (h *Handler) Disable(c *fiber.Ctx) error {
	var req disableRequest
	_ = c.BodyParser(&req)

	var (
		w   Wallet
		err error
	)
	if req.IsDisabled {
		w, err = h.service.Disable(c.UserContext(), digest(c))
	} else {
		w, err = h.service.View(c.UserContext(), digest(c))
	}
	if err != nil {
		return failure(c, err)
	}
	return c.Status(http.StatusOK).JSON(walletEnvelope(w, "disabled_at", w.DisabledAt))
}

// Transactions lists the wallet history in creation order.
func (h *Handler) Transactions(c *fiber.Ctx) error {
	txns, err := h.service.Transactions(c.UserContext(), digest(c))
	if err != nil {
		return failure(c, err)
	}

	items := make([]fiber.Map, 0, len(txns))
	for _, t := range txns {
		transactedAt := t.TransactedAt
		items = append(items, fiber.Map{
			"id":            t.ID,
			"status":        t.Status,
			"transacted_at": timestamp(&transactedAt),
			"type":          t.Type,
			"amount":        t.Amount,
			"reference_id":  t.ReferenceID,
		})
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"status": "success",
		"data":   fiber.Map{"transactions": items},
	})
}

// Deposit credits the wallet.
func (h *Handler) Deposit(c *fiber.Ctx) error {
	return h.post(c, h.service.Deposit, "deposit", "deposited_by", "deposited_at")
}

// Withdraw debits the wallet.
func (h *Handler) Withdraw(c *fiber.Ctx) error {
	return h.post(c, h.service.Withdraw, "withdrawal", "withdrawn_by", "withdrawn_at")
}

type postOp func(ctx context.Context, tokenDigest string, amount int64, referenceID string) (Transaction, error)

func (h *Handler) post(c *fiber.Ctx, apply postOp, key, byKey, atKey string) error {
	var req postRequest
	if err := c.BodyParser(&req); err != nil {
		return failure(c, ErrInvalidAmount)
	}
	amount, err := minorUnits(req.Amount)
	if err != nil {
		return failure(c, err)
	}

	tokenDigest := digest(c)
	owner, err := h.service.View(c.UserContext(), tokenDigest)
	if err != nil {
		return failure(c, err)
	}

	txn, err := apply(c.UserContext(), tokenDigest, amount, req.ReferenceID)
	if err != nil {
		return failure(c, err)
	}

	transactedAt := txn.TransactedAt
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"status": "success",
		"data": fiber.Map{
			key: fiber.Map{
				"id":           txn.ID,
				byKey:          owner.CustomerXID,
				"status":       txn.Status,
				atKey:          timestamp(&transactedAt),
				"amount":       txn.Amount,
				"reference_id": txn.ReferenceID,
			},
		},
	})
}

// minorUnits converts a request amount to an integer count of minor currency
// units, rejecting values that are not whole minor units. Decimal parsing
// keeps the boundary exact; floats never touch the ledger.
func minorUnits(d decimal.Decimal) (int64, error) {
	if !d.IsInteger() {
		return 0, ErrInvalidAmount
	}
	// IntPart truncates silently outside int64 range.
	if !d.BigInt().IsInt64() {
		return 0, ErrInvalidAmount
	}
	return d.BigInt().Int64(), nil
}

func digest(c *fiber.Ctx) string {
	d, _ := c.Locals(TokenDigestKey).(string)
	return d
}

func walletEnvelope(w Wallet, tsKey string, ts *time.Time) fiber.Map {
	return fiber.Map{
		"status": "success",
		"data": fiber.Map{
			"wallet": fiber.Map{
				"id":       w.ID,
				"owned_by": w.CustomerXID,
				"status":   w.Status,
				tsKey:      timestamp(ts),
				"balance":  w.Balance,
			},
		},
	}
}

func timestamp(ts *time.Time) any {
	if ts == nil {
		return nil
	}
	return ts.UTC().Format(time.RFC3339Nano)
}

// failure translates ledger errors into the API envelope.
func failure(c *fiber.Ctx, err error) error {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, ErrWalletNotFound):
		status = http.StatusNotFound
	case errors.Is(err, ErrWalletDisabled),
		errors.Is(err, ErrAlreadyEnabled),
		errors.Is(err, ErrAlreadyDisabled),
		errors.Is(err, ErrDuplicateReference),
		errors.Is(err, ErrInsufficientBalance),
		errors.Is(err, ErrInvalidAmount),
		errors.Is(err, ErrInvalidReference):
		status = http.StatusBadRequest
	case errors.Is(err, ErrStoreUnavailable):
		status = http.StatusServiceUnavailable
	}
	return c.Status(status).JSON(fiber.Map{
		"status": "fail",
		"data":   fiber.Map{"error": message(err)},
	})
}

func message(err error) string {
	switch {
	case errors.Is(err, ErrWalletNotFound):
		return "Wallet not found"
	case errors.Is(err, ErrWalletDisabled):
		return "Wallet disabled"
	case errors.Is(err, ErrAlreadyEnabled):
		return "Already enabled"
	case errors.Is(err, ErrAlreadyDisabled):
		return "Already disabled"
	case errors.Is(err, ErrDuplicateReference):
		return "Reference ID already exists"
	case errors.Is(err, ErrInsufficientBalance):
		return "Insufficient balance"
	case errors.Is(err, ErrInvalidAmount):
		return "Amount must be a positive integer"
	case errors.Is(err, ErrInvalidReference):
		return "Reference ID is required"
	case errors.Is(err, ErrStoreUnavailable):
		return "Ledger temporarily unavailable"
	default:
		return err.Error()
	}
}
