package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	applog "cocolabs/internal/log"
	"cocolabs/internal/services"
	"cocolabs/internal/validate"
)

const msgGeneric = "Something went wrong"

// validator is implemented by every request body type in package validate.
type validator interface{ Validate() error }

// bind decodes the JSON body into v and validates it.
func bind(c *fiber.Ctx, v validator) error {
	if err := c.BodyParser(v); err != nil {
		return &validate.Error{Msg: "Invalid request body"}
	}
	return v.Validate()
}

func message(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"message": msg})
}

// fail maps service and validation errors onto the status taxonomy.
// Anything unrecognized is logged under action and answered with a generic 500.
func fail(c *fiber.Ctx, action string, err error) error {
	var ve *validate.Error
	switch {
	case errors.As(err, &ve):
		applog.Security(c, "validation.fail", map[string]any{"field": ve.Field, "route": action})
		return message(c, fiber.StatusBadRequest, ve.Error())
	case errors.Is(err, services.ErrEmptyCart):
		return message(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrBadCreds):
		return message(c, fiber.StatusUnauthorized, err.Error())
	case errors.Is(err, services.ErrNotFound):
		return message(c, fiber.StatusNotFound, "Not found")
	case errors.Is(err, services.ErrConflict):
		return message(c, fiber.StatusConflict, "Already exists")
	}
	applog.Error(c, action, err, nil)
	return message(c, fiber.StatusInternalServerError, msgGeneric)
}

// ErrorHandler answers anything a handler returned unhandled without leaking internals.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) && fe.Code < fiber.StatusInternalServerError {
		return message(c, fe.Code, fe.Message)
	}
	applog.Error(c, "server.error", err, nil)
	return message(c, code, msgGeneric)
}
