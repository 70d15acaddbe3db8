package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "cocolabs/internal/log"
	"cocolabs/internal/services"
	"cocolabs/internal/validate"
)

type ProfileHandler struct {
	Profiles *services.ProfileService
}

func (h *ProfileHandler) Get(c *fiber.Ctx) error {
	p, err := h.Profiles.Get(c.UserContext(), currentUser(c).ID)
	if err != nil {
		return fail(c, "profile.get", err)
	}
	return c.JSON(fiber.Map{"profile": p})
}

func (h *ProfileHandler) Update(c *fiber.Ctx) error {
	var in validate.ProfileInput
	if err := bind(c, &in); err != nil {
		return fail(c, "profile.update", err)
	}
	p, err := h.Profiles.Update(c.UserContext(), currentUser(c).ID, in)
	if err != nil {
		return fail(c, "profile.update", err)
	}
	applog.Audit(c, "profile.update", nil)
	return c.JSON(fiber.Map{"profile": p})
}
