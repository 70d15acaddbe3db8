package handlers

import (
	"github.com/gofiber/fiber/v2"

	"cocolabs/internal/services"
)

type CategoryHandler struct {
	Catalog *services.CatalogService
}

func (h *CategoryHandler) List(c *fiber.Ctx) error {
	cats, err := h.Catalog.ListCategories(c.UserContext())
	if err != nil {
		return fail(c, "category.list", err)
	}
	return c.JSON(fiber.Map{"categories": cats})
}
