package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "cocolabs/internal/log"
	"cocolabs/internal/services"
	"cocolabs/internal/validate"
)

type OrderHandler struct {
	Order *services.OrderService
}

func (h *OrderHandler) History(c *fiber.Ctx) error {
	orders, err := h.Order.List(c.UserContext(), currentUser(c).ID)
	if err != nil {
		return fail(c, "order.list", err)
	}
	return c.JSON(fiber.Map{"orders": orders})
}

func (h *OrderHandler) Place(c *fiber.Ctx) error {
	var in validate.OrderInput
	if err := bind(c, &in); err != nil {
		return fail(c, "order.place", err)
	}
	o, mismatch, err := h.Order.Place(c.UserContext(), currentUser(c).ID, in)
	if err != nil {
		return fail(c, "order.place", err)
	}
	if mismatch {
		applog.Security(c, "order.total_mismatch", map[string]any{
			"order_id": o.ID, "client_total": in.Total.StringFixed(2), "server_total": o.Total.StringFixed(2),
		})
	}
	applog.Audit(c, "order.place", map[string]any{"order_id": o.ID, "total": o.Total.StringFixed(2)})
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"order": o})
}
