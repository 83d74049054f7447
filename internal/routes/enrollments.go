package routes

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/learnpay/learnpay/internal/enrollment"
	"github.com/learnpay/learnpay/internal/middleware"
)

// RegisterEnrollmentRoutes wires the read-only enrollment listings.
func RegisterEnrollmentRoutes(r fiber.Router, store enrollment.Store) {
	// A student sees their own purchases.
	r.Get("/enrollments", func(c *fiber.Ctx) error {
		userID, _ := c.Locals("user_id").(string)
		if userID == "" {
			return fiber.NewError(http.StatusUnauthorized, "missing user")
		}
		list, err := store.ListByUser(c.UserContext(), userID)
		if err != nil {
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}
		return c.Status(http.StatusOK).JSON(enrollmentList(list))
	})

	// Staff see who bought a course.
	r.Get("/courses/:courseId/enrollments", middleware.StaffOnly(), func(c *fiber.Ctx) error {
		list, err := store.ListByCourse(c.UserContext(), c.Params("courseId"))
		if err != nil {
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}
		return c.Status(http.StatusOK).JSON(enrollmentList(list))
	})
}

func enrollmentList(list []enrollment.Enrollment) []fiber.Map {
	out := make([]fiber.Map, 0, len(list))
	for _, e := range list {
		out = append(out, fiber.Map{
			"id":          e.ID,
			"user_id":     e.UserID,
			"course_id":   e.CourseID,
			"enrolled_at": e.CreatedAt,
		})
	}
	return out
}
