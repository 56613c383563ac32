package auth

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// Handler exposes the account initialization endpoint.
type Handler struct {
	provisioner *Provisioner
}

// NewHandler builds the auth HTTP handler.
func NewHandler(provisioner *Provisioner) *Handler {
	return &Handler{provisioner: provisioner}
}

type initRequest struct {
	CustomerXID string `json:"customer_xid" form:"customer_xid"`
}

// Init provisions a wallet and returns the bearer token the customer will use
// for every subsequent call.
func (h *Handler) Init(c *fiber.Ctx) error {
	var req initRequest
	_ = c.BodyParser(&req)

	if req.CustomerXID == "" {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"status": "fail",
			"data": fiber.Map{
				"error": fiber.Map{
					"customer_xid": []string{"Missing data for required field."},
				},
			},
		})
	}

	w, token, err := h.provisioner.Init(c.UserContext(), req.CustomerXID)
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"status": "success",
		"data": fiber.Map{
			"token":        token,
			"customer_xid": w.CustomerXID,
		},
	})
}
