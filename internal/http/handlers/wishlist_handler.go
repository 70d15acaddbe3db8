package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	applog "cocolabs/internal/log"
	"cocolabs/internal/services"
	"cocolabs/internal/validate"
)

type WishlistHandler struct {
	Wish *services.WishlistService
}

func (h *WishlistHandler) List(c *fiber.Ctx) error {
	items, err := h.Wish.List(c.UserContext(), currentUser(c).ID)
	if err != nil {
		return fail(c, "wishlist.list", err)
	}
	return c.JSON(fiber.Map{"items": items})
}

func (h *WishlistHandler) Save(c *fiber.Ctx) error {
	var in validate.WishlistInput
	if err := bind(c, &in); err != nil {
		return fail(c, "wishlist.save", err)
	}
	item, err := h.Wish.Save(c.UserContext(), currentUser(c).ID, in.ProductID)
	switch {
	case errors.Is(err, services.ErrConflict):
		return message(c, fiber.StatusConflict, "Product already in wishlist")
	case errors.Is(err, services.ErrNotFound):
		return message(c, fiber.StatusNotFound, "Product not found")
	case err != nil:
		return fail(c, "wishlist.save", err)
	}
	applog.Audit(c, "wishlist.save", map[string]any{"product_id": in.ProductID})
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"item": item})
}

func (h *WishlistHandler) Unsave(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return fail(c, "wishlist.unsave", &validate.Error{Field: "id", Msg: "invalid wishlist item id"})
	}
	err := h.Wish.Unsave(c.UserContext(), currentUser(c).ID, id)
	if errors.Is(err, services.ErrNotFound) {
		applog.Security(c, "access.denied.wishlist", map[string]any{"item_id": id})
		return message(c, fiber.StatusNotFound, "Wishlist item not found")
	}
	if err != nil {
		return fail(c, "wishlist.unsave", err)
	}
	applog.Audit(c, "wishlist.unsave", map[string]any{"item_id": id})
	return c.JSON(fiber.Map{"success": true})
}
