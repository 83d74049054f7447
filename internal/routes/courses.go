package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/learnpay/learnpay/internal/course"
	"github.com/learnpay/learnpay/internal/middleware"
	"github.com/learnpay/learnpay/internal/purchase"
)

// RegisterCourseRoutes wires catalog endpoints and the purchase action.
// Catalog reads are open to any authenticated student; mutation is staff
// only, matching the platform's permission model.
func RegisterCourseRoutes(r fiber.Router, h *course.Handler, p *purchase.Handler, d Deps) {
	r.Get("/courses", h.List)
	r.Get("/courses/:courseId", h.Get)
	r.Post("/courses", middleware.StaffOnly(), h.Create)
	r.Put("/courses/:courseId", middleware.StaffOnly(), h.Update)
	r.Delete("/courses/:courseId", middleware.StaffOnly(), h.Delete)

	lessons := r.Group("/courses/:courseId/lessons", middleware.ReadOnlyOrStaff())
	lessons.Get("/", h.ListLessons)
	lessons.Post("/", h.CreateLesson)

	groups := r.Group("/courses/:courseId/groups", middleware.StaffOnly())
	groups.Get("/", h.ListGroups)
	groups.Post("/", h.CreateGroup)

	// The purchase action gets an audit log entry per attempt, and sits
	// behind the idempotency guard and a per-user rate limit when Redis is
	// available.
	pay := r.Group("/courses/:courseId/pay", middleware.Audit(d.Logger))
	if d.Cache != nil {
		pay.Use(middleware.PurchaseRateLimit(d.Cache, 10))
		pay.Use(middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger))
	}
	pay.Post("/", p.Pay)
}
