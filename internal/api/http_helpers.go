package api

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/mindnet/internal/services"
	"go.uber.org/zap"
)

func redirectOrJSON(c *fiber.Ctx, path string) error {
	if acceptsJSON(c) {
		return c.JSON(fiber.Map{"ok": true})
	}
	return c.Redirect(path, fiber.StatusSeeOther)
}

func apiError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"error": message})
}

func acceptsJSON(c *fiber.Ctx) bool {
	return strings.Contains(strings.ToLower(c.Get("Accept")), "application/json")
}

func csrfToken(c *fiber.Ctx) string {
	token, _ := c.Locals("csrf").(string)
	return token
}

// respondServiceError maps service sentinel errors to a status. Anything unknown is
// logged and answered with a generic 500 so internals never reach the client.
func (handler *Handler) respondServiceError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	message := "internal error"
	switch {
	case errors.Is(err, services.ErrUnauthorized):
		status, message = fiber.StatusUnauthorized, "unauthorized"
	case errors.Is(err, services.ErrUserNotFound):
		status, message = fiber.StatusNotFound, "user not found"
	case errors.Is(err, services.ErrTherapistNotFound):
		status, message = fiber.StatusNotFound, "therapist not found"
	case errors.Is(err, services.ErrEntryNotFound):
		status, message = fiber.StatusNotFound, "entry not found"
	default:
		handler.logger.Error("request failed",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Error(err),
		)
	}

	if acceptsJSON(c) {
		return apiError(c, status, message)
	}
	c.Status(status)
	return handler.render(c, "error", fiber.Map{
		"Title":   "Mental Health Net | Error",
		"Status":  status,
		"Message": message,
	})
}

func validationErrorResponse(c *fiber.Ctx, errs services.ValidationErrors) error {
	return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
		"error":  "validation failed",
		"fields": errs,
	})
}
