package wallet

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// Handler exposes wallet HTTP endpoints.
type Handler struct {
	service *Service
}

// NewHandler builds a wallet HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Balance returns the caller's point balance.
func (h *Handler) Balance(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	if userID == "" {
		return fiber.NewError(http.StatusUnauthorized, "missing user")
	}
	balance, err := h.service.Balance(c.UserContext(), userID)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return fiber.NewError(http.StatusNotFound, "account not found")
		}
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"user_id": balance.UserID,
		"balance": balance.Amount,
		"as_of":   balance.AsOf,
	})
}

type topUpRequest struct {
	UserID string `json:"user_id"`
	Amount int64  `json:"amount"`
}

// TopUp credits points to a student account. Admin only; wired behind the
// staff permission gate.
func (h *Handler) TopUp(c *fiber.Ctx) error {
	var req topUpRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if req.UserID == "" || req.Amount <= 0 {
		return fiber.NewError(http.StatusBadRequest, "user_id and a positive amount are required")
	}
	balance, err := h.service.Grant(c.UserContext(), req.UserID, req.Amount)
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"user_id": req.UserID,
		"balance": balance,
	})
}
