package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

func render(c *fiber.Ctx, tmpl string, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	// Inject user if present
	if u := currentUser(c); u != nil {
		data["User"] = u
	}
	if tok, ok := c.Locals(csrfContextKey).(string); ok {
		data["CSRFToken"] = tok
	}
	return c.Render(tmpl, data)
}

// NotFound answers unknown API paths with JSON and everything else with the error page.
func NotFound(c *fiber.Ctx) error {
	if strings.HasPrefix(c.Path(), "/api/") {
		return message(c, fiber.StatusNotFound, "Not found")
	}
	return c.Status(fiber.StatusNotFound).Render("notfound", fiber.Map{"Message": "Page not found"})
}
