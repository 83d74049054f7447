package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/learnpay/learnpay/internal/auth"
)

// RegisterAuthRoutes wires the public auth endpoints.
func RegisterAuthRoutes(r fiber.Router, h *auth.Handler) {
	r.Post("/auth/register", h.Register)
	r.Post("/auth/login", h.Login)
	r.Post("/auth/refresh", h.Refresh)
}
