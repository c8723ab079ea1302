package api

import (
	"bytes"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/mindnet/internal/models"
	"go.uber.org/zap"
)

func (handler *Handler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

func (handler *Handler) Home(c *fiber.Ctx) error {
	return c.Redirect("/login", fiber.StatusFound)
}

func (handler *Handler) NotFound(c *fiber.Ctx) error {
	if acceptsJSON(c) {
		return apiError(c, fiber.StatusNotFound, "not found")
	}
	c.Status(fiber.StatusNotFound)
	return handler.render(c, "error", fiber.Map{
		"Title":   "Mental Health Net | Page Not Found",
		"Status":  fiber.StatusNotFound,
		"Message": "page not found",
	})
}

func (handler *Handler) render(c *fiber.Ctx, name string, data fiber.Map) error {
	tmpl, ok := handler.templates[name]
	if !ok {
		return c.Status(fiber.StatusInternalServerError).SendString("template not found")
	}

	payload := fiber.Map{
		"CSRFToken": csrfToken(c),
		"Identity":  currentIdentity(c),
		"Flash":     handler.popFlashCookie(c),
	}
	for key, value := range data {
		payload[key] = value
	}

	var output bytes.Buffer
	if err := tmpl.ExecuteTemplate(&output, "base", payload); err != nil {
		handler.logger.Error("render template", zap.String("template", name), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).SendString("failed to render template")
	}
	c.Type("html", "utf-8")
	return c.Send(output.Bytes())
}

func profilePath(role string, username string) string {
	if role == models.RoleTherapist {
		return "/therapists/" + username
	}
	return "/users/" + username
}
