package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"cocolabs/internal/domain"
	applog "cocolabs/internal/log"
	"cocolabs/internal/services"
)

const sessionCookie = "sid"

// ensureSID returns the browser session id, issuing a new cookie when absent.
func ensureSID(c *fiber.Ctx) string {
	sid := c.Cookies(sessionCookie)
	if sid == "" {
		sid = uuid.NewString()
		c.Cookie(&fiber.Cookie{
			Name:     sessionCookie,
			Value:    sid,
			Path:     "/",
			HTTPOnly: true,
			SameSite: fiber.CookieSameSiteLaxMode,
			Secure:   false, // enable true behind TLS
		})
	}
	return sid
}

func bearerToken(c *fiber.Ctx) string {
	h := c.Get(fiber.HeaderAuthorization)
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

// Session attaches the signed-in user, if any, from a bearer token or the sid cookie.
func Session(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var (
			u   *domain.User
			err error
		)
		if tok := bearerToken(c); tok != "" {
			u, err = auth.UserFromToken(c.UserContext(), tok)
			if errors.Is(err, services.ErrNotFound) {
				applog.Security(c, "auth.token.invalid", nil)
			}
		} else if sid := c.Cookies(sessionCookie); sid != "" {
			u, err = auth.CurrentUser(c.UserContext(), sid)
		}
		if err != nil && !errors.Is(err, services.ErrNotFound) {
			applog.Error(c, "auth.session.lookup", err, nil)
		}
		if u != nil {
			c.Locals("user", u)
			c.Locals("user_id", u.ID)
		}
		return c.Next()
	}
}

func currentUser(c *fiber.Ctx) *domain.User {
	u, _ := c.Locals("user").(*domain.User)
	return u
}

// RequireUser answers 401 unless Session found a user.
func RequireUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if currentUser(c) == nil {
			applog.Security(c, "access.denied", nil)
			return message(c, fiber.StatusUnauthorized, "Unauthorized")
		}
		return c.Next()
	}
}
