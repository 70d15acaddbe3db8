package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"cocolabs/internal/cart"
	applog "cocolabs/internal/log"
	"cocolabs/internal/services"
	"cocolabs/internal/validate"
)

type CartHandler struct {
	Cart *services.CartService
}

func cartJSON(c *fiber.Ctx, action string, st cart.State, err error) error {
	if err != nil {
		return fail(c, action, err)
	}
	return c.JSON(fiber.Map{"cart": st})
}

func lineID(c *fiber.Ctx) (int64, error) {
	id, ok := validate.ProductID(c.Params("id"))
	if !ok {
		return 0, &validate.Error{Field: "id", Msg: "invalid product id"}
	}
	return id, nil
}

func (h *CartHandler) View(c *fiber.Ctx) error {
	st, err := h.Cart.View(c.UserContext(), ensureSID(c))
	return cartJSON(c, "cart.view", st, err)
}

func (h *CartHandler) Add(c *fiber.Ctx) error {
	sid := ensureSID(c)
	var in validate.CartItemInput
	if err := bind(c, &in); err != nil {
		return fail(c, "cart.add", err)
	}
	st, err := h.Cart.Add(c.UserContext(), sid, in.ProductID, in.Quantity)
	return cartJSON(c, "cart.add", st, err)
}

func (h *CartHandler) Update(c *fiber.Ctx) error {
	sid := ensureSID(c)
	id, err := lineID(c)
	if err != nil {
		return fail(c, "cart.update", err)
	}
	var in validate.CartQuantityInput
	if err := bind(c, &in); err != nil {
		return fail(c, "cart.update", err)
	}
	st, err := h.Cart.Update(c.UserContext(), sid, id, in.Quantity)
	return cartJSON(c, "cart.update", st, err)
}

func (h *CartHandler) Remove(c *fiber.Ctx) error {
	sid := ensureSID(c)
	id, err := lineID(c)
	if err != nil {
		return fail(c, "cart.remove", err)
	}
	st, err := h.Cart.Remove(c.UserContext(), sid, id)
	return cartJSON(c, "cart.remove", st, err)
}

func (h *CartHandler) Clear(c *fiber.Ctx) error {
	st, err := h.Cart.Clear(c.UserContext(), ensureSID(c))
	return cartJSON(c, "cart.clear", st, err)
}

func (h *CartHandler) Open(c *fiber.Ctx) error {
	st, err := h.Cart.SetOpen(c.UserContext(), ensureSID(c), true)
	return cartJSON(c, "cart.open", st, err)
}

func (h *CartHandler) Close(c *fiber.Ctx) error {
	st, err := h.Cart.SetOpen(c.UserContext(), ensureSID(c), false)
	return cartJSON(c, "cart.close", st, err)
}

// Checkout turns the session's cart into an order for the signed-in user.
func (h *CartHandler) Checkout(c *fiber.Ctx) error {
	sid := ensureSID(c)
	var in validate.CheckoutInput
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return fail(c, "cart.checkout", &validate.Error{Msg: "Invalid request body"})
		}
	}
	o, err := h.Cart.Checkout(c.UserContext(), sid, currentUser(c).ID, in)
	if err != nil {
		return fail(c, "cart.checkout", err)
	}
	applog.Audit(c, "order.place", map[string]any{"order_id": o.ID, "total": o.Total.StringFixed(2), "source": "cart"})
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"order": o})
}

// CheckoutPage renders the checkout form, or the empty-cart state. The summary
// is priced from the catalog, exactly as the order will be charged.
func (h *CartHandler) CheckoutPage(c *fiber.Ctx) error {
	return h.renderCheckout(c, fiber.StatusOK, nil)
}

// CheckoutSubmit places the order posted by the checkout page's form.
func (h *CartHandler) CheckoutSubmit(c *fiber.Ctx) error {
	u := currentUser(c)
	if u == nil {
		applog.Security(c, "access.denied", map[string]any{"page": "checkout"})
		return h.renderCheckout(c, fiber.StatusUnauthorized, fiber.Map{"Error": "Please sign in to place your order."})
	}
	var form validate.CheckoutForm
	if err := c.BodyParser(&form); err != nil {
		return h.renderCheckout(c, fiber.StatusBadRequest, fiber.Map{"Error": "Invalid form submission."})
	}
	o, err := h.Cart.Checkout(c.UserContext(), ensureSID(c), u.ID, form.Input())
	var ve *validate.Error
	switch {
	case errors.Is(err, services.ErrEmptyCart):
		return h.renderCheckout(c, fiber.StatusBadRequest, nil)
	case errors.As(err, &ve):
		applog.Security(c, "validation.fail", map[string]any{"field": ve.Field, "route": "checkout.submit"})
		return h.renderCheckout(c, fiber.StatusBadRequest, fiber.Map{"Error": ve.Error()})
	case err != nil:
		applog.Error(c, "checkout.submit", err, nil)
		return c.Status(fiber.StatusInternalServerError).Render("notfound", fiber.Map{"Message": "Something went wrong"})
	}
	applog.Audit(c, "order.place", map[string]any{"order_id": o.ID, "total": o.Total.StringFixed(2), "source": "checkout_page"})
	return render(c.Status(fiber.StatusCreated), "confirmation", fiber.Map{
		"Order": o,
		"Total": o.Total.StringFixed(2),
	})
}

func (h *CartHandler) renderCheckout(c *fiber.Ctx, status int, extra fiber.Map) error {
	st, lines, t, err := h.Cart.Quote(c.UserContext(), ensureSID(c))
	var ve *validate.Error
	if errors.As(err, &ve) {
		// a product in the cart left the catalog
		return c.Status(fiber.StatusConflict).Render("notfound", fiber.Map{
			"Message": "Some items in your cart are no longer available",
		})
	}
	if err != nil {
		applog.Error(c, "checkout.load", err, nil)
		return c.Status(fiber.StatusInternalServerError).Render("notfound", fiber.Map{"Message": "Could not load your cart"})
	}
	data := fiber.Map{
		"Cart":        st,
		"Lines":       lines,
		"Empty":       st.Empty(),
		"Subtotal":    t.Subtotal.StringFixed(2),
		"ShippingFee": t.ShippingFee.StringFixed(2),
		"Tax":         t.Tax.StringFixed(2),
		"Total":       t.Total.StringFixed(2),
	}
	for k, v := range extra {
		data[k] = v
	}
	c.Status(status)
	return render(c, "checkout", data)
}
