package api

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/mindnet/internal/models"
	"github.com/terraincognita07/mindnet/internal/services"
)

const (
	msgInvalidCredentials = "Invalid username/password."
	msgTooManyAttempts    = "Too many failed attempts. Try again later."
)

type authPage struct {
	title        string
	action       string
	registerPath string
	loginPath    string
}

var authPages = map[string]authPage{
	models.RolePatient: {
		title:        "Mental Health Net | Login",
		action:       "/login",
		registerPath: "/register",
		loginPath:    "/login",
	},
	models.RoleTherapist: {
		title:        "Mental Health Net | Therapist Login",
		action:       "/login/therapists",
		registerPath: "/register/therapists",
		loginPath:    "/login/therapists",
	},
}

func (handler *Handler) ShowLoginPage(c *fiber.Ctx) error {
	return handler.showLogin(c, models.RolePatient)
}

func (handler *Handler) ShowTherapistLoginPage(c *fiber.Ctx) error {
	return handler.showLogin(c, models.RoleTherapist)
}

func (handler *Handler) Login(c *fiber.Ctx) error {
	return handler.login(c, models.RolePatient)
}

func (handler *Handler) LoginTherapist(c *fiber.Ctx) error {
	return handler.login(c, models.RoleTherapist)
}

func (handler *Handler) showLogin(c *fiber.Ctx, role string) error {
	if identity := currentIdentity(c); identity.Authenticated() && identity.Role == role {
		return c.Redirect(profilePath(role, identity.Username), fiber.StatusSeeOther)
	}
	return handler.renderLogin(c, role, "", nil)
}

func (handler *Handler) renderLogin(c *fiber.Ctx, role string, username string, errs services.ValidationErrors) error {
	page := authPages[role]
	return handler.render(c, "login", fiber.Map{
		"Title":        page.title,
		"Role":         role,
		"Action":       page.action,
		"RegisterPath": page.registerPath,
		"Username":     username,
		"Errors":       errs,
	})
}

func (handler *Handler) login(c *fiber.Ctx, role string) error {
	input := services.Credentials{}
	if err := c.BodyParser(&input); err != nil {
		return handler.loginFailed(c, role, fiber.StatusBadRequest, input.Username, services.ValidationErrors{"form": "The form could not be read."})
	}

	key := loginLimiterKey(c, role, input.Username)
	if handler.loginLimiter.blocked(key, time.Now()) {
		return handler.loginFailed(c, role, fiber.StatusTooManyRequests, input.Username, services.ValidationErrors{"username": msgTooManyAttempts})
	}

	identity := services.Identity{Role: role}
	var err error
	switch role {
	case models.RoleTherapist:
		var therapist models.Therapist
		therapist, err = handler.auth.AuthenticateTherapist(c.UserContext(), input)
		identity.Username = therapist.Username
	default:
		var user models.User
		user, err = handler.auth.AuthenticatePatient(c.UserContext(), input)
		identity.Username = user.Username
	}

	var errs services.ValidationErrors
	switch {
	case errors.As(err, &errs):
		return handler.loginFailed(c, role, fiber.StatusUnprocessableEntity, input.Username, errs)
	case errors.Is(err, services.ErrInvalidCredentials):
		handler.loginLimiter.recordFailure(key, time.Now())
		return handler.loginFailed(c, role, fiber.StatusUnauthorized, input.Username, services.ValidationErrors{"username": msgInvalidCredentials})
	case err != nil:
		return handler.respondServiceError(c, err)
	}

	handler.loginLimiter.reset(key)
	if err := handler.setAuthCookie(c, identity); err != nil {
		return handler.respondServiceError(c, err)
	}
	return redirectOrJSON(c, profilePath(role, identity.Username))
}

func (handler *Handler) loginFailed(c *fiber.Ctx, role string, status int, username string, errs services.ValidationErrors) error {
	if acceptsJSON(c) {
		if status == fiber.StatusUnprocessableEntity {
			return validationErrorResponse(c, errs)
		}
		return apiError(c, status, errs[firstErrorField(errs)])
	}
	c.Status(status)
	return handler.renderLogin(c, role, username, errs)
}

func (handler *Handler) ShowRegisterPage(c *fiber.Ctx) error {
	if identity := currentIdentity(c); identity.Authenticated() && identity.Role == models.RolePatient {
		return c.Redirect(profilePath(identity.Role, identity.Username), fiber.StatusSeeOther)
	}
	return handler.renderRegister(c, services.PatientRegistration{}, nil)
}

func (handler *Handler) renderRegister(c *fiber.Ctx, input services.PatientRegistration, errs services.ValidationErrors) error {
	return handler.render(c, "register", fiber.Map{
		"Title":  "Mental Health Net | Register",
		"Form":   input,
		"Errors": errs,
	})
}

func (handler *Handler) Register(c *fiber.Ctx) error {
	input := services.PatientRegistration{}
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid form")
	}

	user, err := handler.auth.RegisterPatient(c.UserContext(), input)
	var errs services.ValidationErrors
	if errors.As(err, &errs) {
		if acceptsJSON(c) {
			return validationErrorResponse(c, errs)
		}
		input.Password = ""
		c.Status(fiber.StatusUnprocessableEntity)
		return handler.renderRegister(c, input, errs)
	}
	if err != nil {
		return handler.respondServiceError(c, err)
	}

	identity := services.Identity{Username: user.Username, Role: models.RolePatient}
	if err := handler.setAuthCookie(c, identity); err != nil {
		return handler.respondServiceError(c, err)
	}
	if acceptsJSON(c) {
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"ok": true, "username": user.Username})
	}
	return c.Redirect(profilePath(identity.Role, identity.Username), fiber.StatusSeeOther)
}

func (handler *Handler) ShowTherapistRegisterPage(c *fiber.Ctx) error {
	if identity := currentIdentity(c); identity.Authenticated() && identity.Role == models.RoleTherapist {
		return c.Redirect(profilePath(identity.Role, identity.Username), fiber.StatusSeeOther)
	}
	return handler.renderTherapistRegister(c, services.TherapistRegistration{}, nil)
}

func (handler *Handler) renderTherapistRegister(c *fiber.Ctx, input services.TherapistRegistration, errs services.ValidationErrors) error {
	return handler.render(c, "therapist_register", fiber.Map{
		"Title":  "Mental Health Net | Therapist Registration",
		"Form":   input,
		"Errors": errs,
	})
}

func (handler *Handler) RegisterTherapist(c *fiber.Ctx) error {
	input := services.TherapistRegistration{}
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid form")
	}

	therapist, err := handler.auth.RegisterTherapist(c.UserContext(), input)
	var errs services.ValidationErrors
	if errors.As(err, &errs) {
		if acceptsJSON(c) {
			return validationErrorResponse(c, errs)
		}
		input.Password = ""
		c.Status(fiber.StatusUnprocessableEntity)
		return handler.renderTherapistRegister(c, input, errs)
	}
	if err != nil {
		return handler.respondServiceError(c, err)
	}

	identity := services.Identity{Username: therapist.Username, Role: models.RoleTherapist}
	if err := handler.setAuthCookie(c, identity); err != nil {
		return handler.respondServiceError(c, err)
	}
	if acceptsJSON(c) {
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"ok": true, "username": therapist.Username})
	}
	return c.Redirect(profilePath(identity.Role, identity.Username), fiber.StatusSeeOther)
}

func (handler *Handler) Logout(c *fiber.Ctx) error {
	handler.clearAuthCookie(c)
	return redirectOrJSON(c, "/login")
}

func firstErrorField(errs services.ValidationErrors) string {
	for _, field := range []string{"username", "password", "form"} {
		if _, ok := errs[field]; ok {
			return field
		}
	}
	for field := range errs {
		return field
	}
	return ""
}
