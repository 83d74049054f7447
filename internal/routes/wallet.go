package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/learnpay/learnpay/internal/middleware"
	"github.com/learnpay/learnpay/internal/wallet"
)

// RegisterWalletRoutes wires wallet endpoints.
func RegisterWalletRoutes(r fiber.Router, h *wallet.Handler) {
	r.Get("/wallet/balance", h.Balance)
	r.Post("/wallet/topup", middleware.StaffOnly(), h.TopUp)
}
