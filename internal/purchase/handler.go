package purchase

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/learnpay/learnpay/internal/course"
	"github.com/learnpay/learnpay/internal/enrollment"
	"github.com/learnpay/learnpay/internal/wallet"
)

// Handler exposes the purchase endpoint.
type Handler struct {
	service *Service
}

// NewHandler constructs a purchase handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Pay purchases access to the course for the authenticated caller.
func (h *Handler) Pay(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	if userID == "" {
		return fiber.NewError(http.StatusUnauthorized, "missing user")
	}

	receipt, err := h.service.Purchase(c.UserContext(), userID, c.Params("courseId"))
	if err != nil {
		switch {
		case errors.Is(err, course.ErrCourseNotFound):
			return fiber.NewError(http.StatusNotFound, "course not found")
		case errors.Is(err, wallet.ErrInsufficientFunds):
			return fiber.NewError(http.StatusBadRequest, "insufficient balance to purchase the course")
		case errors.Is(err, enrollment.ErrAlreadyEnrolled):
			return fiber.NewError(http.StatusConflict, "already enrolled in this course")
		default:
			return fiber.NewError(http.StatusInternalServerError, "purchase failed")
		}
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"enrollment": fiber.Map{
			"id":          receipt.Enrollment.ID,
			"user_id":     receipt.Enrollment.UserID,
			"course_id":   receipt.Enrollment.CourseID,
			"enrolled_at": receipt.Enrollment.CreatedAt,
		},
		"message": receipt.Message,
	})
}
