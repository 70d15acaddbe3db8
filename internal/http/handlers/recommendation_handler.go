package handlers

import (
	"github.com/gofiber/fiber/v2"

	"cocolabs/internal/services"
)

type RecommendationHandler struct {
	Recs *services.RecommendationService
}

func (h *RecommendationHandler) List(c *fiber.Ctx) error {
	recs, err := h.Recs.ForUser(c.UserContext(), currentUser(c).ID)
	if err != nil {
		return fail(c, "recommendations.list", err)
	}
	return c.JSON(fiber.Map{"recommendations": recs})
}
