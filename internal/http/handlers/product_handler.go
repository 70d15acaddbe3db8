package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "cocolabs/internal/log"
	"cocolabs/internal/services"
	"cocolabs/internal/validate"
)

type ProductHandler struct {
	Catalog *services.CatalogService
}

// Detail returns one product and, for a signed-in user, records the view.
func (h *ProductHandler) Detail(c *fiber.Ctx) error {
	id, ok := validate.ProductID(c.Params("id"))
	if !ok {
		return message(c, fiber.StatusNotFound, "Product not found")
	}
	p, err := h.Catalog.GetProduct(c.UserContext(), id)
	if err != nil {
		return fail(c, "product.detail", err)
	}
	if u := currentUser(c); u != nil {
		if err := h.Catalog.RecordView(c.UserContext(), u.ID, id); err != nil {
			applog.Error(c, "product.view.record", err, map[string]any{"product_id": id})
		}
	}
	return c.JSON(fiber.Map{"product": p})
}
