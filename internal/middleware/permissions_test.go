package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func permissionsApp(userID string, staff bool) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user_id", userID)
		c.Locals("is_staff", staff)
		return c.Next()
	})

	ok := func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) }

	app.Get("/courses", ReadOnlyOrStaff(), ok)
	app.Post("/courses", ReadOnlyOrStaff(), ok)
	app.Post("/admin", StaffOnly(), ok)
	app.Get("/users/:userId/wallet", OwnerOrStaff("userId"), ok)
	return app
}

func status(t *testing.T, app *fiber.App, method, path string) int {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(method, path, nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	resp.Body.Close()
	return resp.StatusCode
}

func TestReadOnlyOrStaff(t *testing.T) {
	student := permissionsApp("u1", false)
	staff := permissionsApp("u2", true)

	if got := status(t, student, fiber.MethodGet, "/courses"); got != fiber.StatusOK {
		t.Fatalf("student GET = %d, want 200", got)
	}
	if got := status(t, student, fiber.MethodPost, "/courses"); got != fiber.StatusForbidden {
		t.Fatalf("student POST = %d, want 403", got)
	}
	if got := status(t, staff, fiber.MethodPost, "/courses"); got != fiber.StatusOK {
		t.Fatalf("staff POST = %d, want 200", got)
	}
}

func TestStaffOnly(t *testing.T) {
	student := permissionsApp("u1", false)
	staff := permissionsApp("u2", true)

	if got := status(t, student, fiber.MethodPost, "/admin"); got != fiber.StatusForbidden {
		t.Fatalf("student = %d, want 403", got)
	}
	if got := status(t, staff, fiber.MethodPost, "/admin"); got != fiber.StatusOK {
		t.Fatalf("staff = %d, want 200", got)
	}
}

func TestOwnerOrStaff(t *testing.T) {
	owner := permissionsApp("u1", false)
	other := permissionsApp("u9", false)
	staff := permissionsApp("u2", true)

	if got := status(t, owner, fiber.MethodGet, "/users/u1/wallet"); got != fiber.StatusOK {
		t.Fatalf("owner = %d, want 200", got)
	}
	if got := status(t, other, fiber.MethodGet, "/users/u1/wallet"); got != fiber.StatusForbidden {
		t.Fatalf("non-owner = %d, want 403", got)
	}
	if got := status(t, staff, fiber.MethodGet, "/users/u1/wallet"); got != fiber.StatusOK {
		t.Fatalf("staff = %d, want 200", got)
	}
}
