package controller

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"taskboard/core"
	"taskboard/utils"
)

// coreErrorResponse maps the core error taxonomy onto HTTP statuses.
// Anything outside the taxonomy is a datastore failure and gets reported.
func coreErrorResponse(c *fiber.Ctx, err error) error {
	var status int
	switch {
	case errors.Is(err, core.ErrNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, core.ErrConflict):
		status = fiber.StatusConflict
	case errors.Is(err, core.ErrInvalidState), errors.Is(err, core.ErrValidation):
		status = fiber.StatusBadRequest
	case errors.Is(err, core.ErrForbidden):
		status = fiber.StatusForbidden
	default:
		utils.LogError("internal_error", err, map[string]interface{}{
			"path":   c.Path(),
			"method": c.Method(),
		})
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Internal server error",
		})
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}
