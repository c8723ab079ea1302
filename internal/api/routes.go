package api

import "github.com/gofiber/fiber/v2"

func RegisterRoutes(app *fiber.App, handler *Handler) {
	app.Use(handler.Identify)

	app.Get("/", handler.Home)
	app.Get("/healthz", handler.Health)
	app.Get("/favicon.ico", sendNoContent)

	app.Get("/register", handler.ShowRegisterPage)
	app.Post("/register", handler.Register)
	app.Get("/login", handler.ShowLoginPage)
	app.Post("/login", handler.Login)
	app.Get("/logout", handler.Logout)

	app.Get("/register/therapists", handler.ShowTherapistRegisterPage)
	app.Post("/register/therapists", handler.RegisterTherapist)
	app.Get("/login/therapists", handler.ShowTherapistLoginPage)
	app.Post("/login/therapists", handler.LoginTherapist)
	app.Get("/logout/therapists", handler.Logout)

	app.Get("/users/:username", handler.ShowPatientProfile)
	app.Get("/therapists/:username", handler.ShowTherapistProfile)

	app.Get("/users/:username/form/new", handler.ShowNewEntryForm)
	app.Post("/users/:username/form/new", handler.CreateEntry)
	app.Get("/users/:id/form/detail", handler.ShowEntryDetail)
	app.Post("/forms/:id/delete", handler.DeleteEntry)

	app.Get("/emergency/:username/:therapist", handler.Emergency)

	// Catch-all shaped route; keep it after every two-segment route above.
	app.Get("/:username/data", handler.ChartData)

	app.Use(handler.NotFound)
}

func sendNoContent(c *fiber.Ctx) error {
	return c.SendStatus(fiber.StatusNoContent)
}
