package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"cocolabs/internal/log"
	"cocolabs/internal/services"
	"cocolabs/internal/validate"
)

type AuthHandler struct {
	Auth *services.AuthService
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var in validate.RegisterInput
	if err := bind(c, &in); err != nil {
		return fail(c, "auth.register", err)
	}
	u, err := h.Auth.Register(c.UserContext(), in)
	if errors.Is(err, services.ErrConflict) {
		log.Security(c, "auth.register.duplicate", map[string]any{"email": in.Email})
		return message(c, fiber.StatusConflict, "User with this email already exists")
	}
	if err != nil {
		return fail(c, "auth.register", err)
	}
	log.Audit(c, "auth.register", map[string]any{"user_id": u.ID})
	return message(c, fiber.StatusCreated, "User created successfully")
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	sid := ensureSID(c)
	var in validate.LoginInput
	if err := bind(c, &in); err != nil {
		log.Security(c, "auth.login.fail", map[string]any{"reason": "bad_format"})
		return message(c, fiber.StatusUnauthorized, services.ErrBadCreds.Error())
	}
	u, token, err := h.Auth.Login(c.UserContext(), sid, in.Email, in.Password)
	if errors.Is(err, services.ErrBadCreds) {
		log.Security(c, "auth.login.fail", map[string]any{"email": in.Email})
		return message(c, fiber.StatusUnauthorized, err.Error())
	}
	if err != nil {
		return fail(c, "auth.login", err)
	}
	c.Locals("user_id", u.ID)
	log.Audit(c, "auth.login.success", map[string]any{"email": in.Email})
	return c.JSON(fiber.Map{"user": u, "token": token})
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	sid := ensureSID(c)
	if err := h.Auth.Logout(c.UserContext(), sid); err != nil {
		return fail(c, "auth.logout", err)
	}
	// Expire cookie
	c.Cookie(&fiber.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Secure:   false,
		Expires:  time.Now().Add(-1 * time.Hour),
	})
	log.Audit(c, "auth.logout", map[string]any{"sid": sid})
	return c.JSON(fiber.Map{"success": true})
}
