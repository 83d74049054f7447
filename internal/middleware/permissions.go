package middleware

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// Permission gates mirror the platform's access model: students read, staff
// write, and per-object routes admit the owner or staff. They run after
// JWTAuth, which stores user_id and is_staff in the request locals.

func isSafe(method string) bool {
	switch method {
	case fiber.MethodGet, fiber.MethodHead, fiber.MethodOptions:
		return true
	default:
		return false
	}
}

func isStaff(c *fiber.Ctx) bool {
	staff, _ := c.Locals("is_staff").(bool)
	return staff
}

// ReadOnlyOrStaff admits safe methods for any authenticated caller and
// everything for staff.
func ReadOnlyOrStaff() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if isStaff(c) || isSafe(c.Method()) {
			return c.Next()
		}
		return fiber.NewError(http.StatusForbidden, "staff access required")
	}
}

// StaffOnly admits staff callers only.
func StaffOnly() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if isStaff(c) {
			return c.Next()
		}
		return fiber.NewError(http.StatusForbidden, "staff access required")
	}
}

// OwnerOrStaff admits staff, or the caller whose user id matches the named
// route parameter.
func OwnerOrStaff(param string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if isStaff(c) {
			return c.Next()
		}
		userID, _ := c.Locals("user_id").(string)
		if userID != "" && userID == c.Params(param) {
			return c.Next()
		}
		return fiber.NewError(http.StatusForbidden, "owner or staff access required")
	}
}
