package api

import "github.com/gofiber/fiber/v2"

func (handler *Handler) ShowPatientProfile(c *fiber.Ctx) error {
	profile, err := handler.profiles.PatientProfile(c.UserContext(), currentIdentity(c), c.Params("username"))
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return handler.render(c, "profile", fiber.Map{
		"Title":   "Mental Health Net | " + profile.User.FullName(),
		"Profile": profile,
	})
}

func (handler *Handler) ShowTherapistProfile(c *fiber.Ctx) error {
	profile, err := handler.profiles.TherapistProfile(c.UserContext(), currentIdentity(c), c.Params("username"))
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return handler.render(c, "therapist_profile", fiber.Map{
		"Title":   "Mental Health Net | " + profile.Therapist.FullName(),
		"Profile": profile,
	})
}
