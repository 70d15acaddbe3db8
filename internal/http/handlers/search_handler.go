package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "cocolabs/internal/log"
	"cocolabs/internal/services"
	"cocolabs/internal/validate"
)

type SearchHandler struct {
	Catalog *services.CatalogService
}

// Search lists the catalog, optionally narrowed by ?q= and ?category=.
func (h *SearchHandler) Search(c *fiber.Ctx) error {
	q := c.Query("q")
	if q != "" {
		var ok bool
		if q, ok = validate.Q(q); !ok {
			applog.Security(c, "validation.fail", map[string]any{"field": "q"})
			return message(c, fiber.StatusBadRequest, "invalid search query")
		}
	}
	category := c.Query("category")
	if category != "" {
		var ok bool
		if category, ok = validate.ID(category); !ok {
			return message(c, fiber.StatusBadRequest, "invalid category")
		}
	}
	page := c.QueryInt("page", 1)
	size := c.QueryInt("pageSize", 12)

	products, err := h.Catalog.Search(c.UserContext(), q, category, page, size)
	if err != nil {
		return fail(c, "product.search", err)
	}
	return c.JSON(fiber.Map{"products": products, "page": page})
}
