package api

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/mindnet/internal/models"
	"github.com/terraincognita07/mindnet/internal/services"
)

const msgEntryDeleted = "Entry deleted."

func (handler *Handler) ShowNewEntryForm(c *fiber.Ctx) error {
	username := c.Params("username")
	if !currentIdentity(c).IsPatient(username) {
		return handler.respondServiceError(c, services.ErrUnauthorized)
	}
	form := services.EntryForm{
		Date: time.Now().Format("2006-01-02"),
		NRS1: "50", NRS2: "50", NRS3: "50", NRS4: "50", NRS5: "50",
	}
	return handler.renderEntryForm(c, username, form, nil)
}

func (handler *Handler) renderEntryForm(c *fiber.Ctx, username string, form services.EntryForm, errs services.ValidationErrors) error {
	therapists, err := handler.entries.ListTherapists(c.UserContext())
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return handler.render(c, "entry_form", fiber.Map{
		"Title":                 "Mental Health Net | New Entry",
		"Username":              username,
		"Form":                  form,
		"Errors":                errs,
		"Therapists":            therapists,
		"CognitiveDistortions":  models.CognitiveDistortions(),
		"EmotionalConsequences": models.EmotionalConsequences(),
	})
}

func (handler *Handler) CreateEntry(c *fiber.Ctx) error {
	username := c.Params("username")
	form := parseEntryForm(c)

	entry, err := handler.entries.CreateEntry(c.UserContext(), currentIdentity(c), username, form)
	var errs services.ValidationErrors
	if errors.As(err, &errs) {
		if acceptsJSON(c) {
			return validationErrorResponse(c, errs)
		}
		c.Status(fiber.StatusUnprocessableEntity)
		return handler.renderEntryForm(c, username, form, errs)
	}
	if err != nil {
		return handler.respondServiceError(c, err)
	}

	if acceptsJSON(c) {
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"ok": true, "entry": entryJSON(entry)})
	}
	return c.Redirect("/users/"+username, fiber.StatusSeeOther)
}

func (handler *Handler) ShowEntryDetail(c *fiber.Ctx) error {
	entryID, ok := parseEntryID(c)
	if !ok {
		return handler.respondServiceError(c, services.ErrEntryNotFound)
	}
	entry, err := handler.entries.EntryForOwner(c.UserContext(), currentIdentity(c), entryID)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	if acceptsJSON(c) {
		return c.JSON(entryJSON(entry))
	}
	return handler.render(c, "entry_detail", fiber.Map{
		"Title": "Mental Health Net | Entry",
		"Entry": entry,
	})
}

// DeleteEntry expects the empty confirmation form; CSRF middleware guards it.
func (handler *Handler) DeleteEntry(c *fiber.Ctx) error {
	entryID, ok := parseEntryID(c)
	if !ok {
		return handler.respondServiceError(c, services.ErrEntryNotFound)
	}
	entry, err := handler.entries.DeleteEntry(c.UserContext(), currentIdentity(c), entryID)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	handler.setFlashCookie(c, FlashPayload{Message: msgEntryDeleted})
	return redirectOrJSON(c, "/users/"+entry.Username)
}

func (handler *Handler) ChartData(c *fiber.Ctx) error {
	data, err := handler.entries.ChartData(c.UserContext(), currentIdentity(c), c.Params("username"))
	if err != nil {
		if errors.Is(err, services.ErrUnauthorized) {
			return apiError(c, fiber.StatusUnauthorized, "unauthorized")
		}
		return handler.respondServiceError(c, err)
	}
	return c.JSON(data)
}

func parseEntryForm(c *fiber.Ctx) services.EntryForm {
	return services.EntryForm{
		Date:                  c.FormValue("date"),
		Therapist:             c.FormValue("therapist"),
		NRS1:                  c.FormValue("nrs1"),
		NRS2:                  c.FormValue("nrs2"),
		NRS3:                  c.FormValue("nrs3"),
		NRS4:                  c.FormValue("nrs4"),
		NRS5:                  c.FormValue("nrs5"),
		Adversity:             c.FormValue("a_event"),
		Beliefs:               c.FormValue("beliefs"),
		CognitiveDistortions:  formValues(c, "c_distortions"),
		EmotionalConsequences: formValues(c, "c_consequences"),
		Reactions:             c.FormValue("reactions"),
	}
}

// formValues keeps repeated keys in submission order. Tag labels contain commas, so
// values are never split.
func formValues(c *fiber.Ctx, key string) []string {
	raw := c.Request().PostArgs().PeekMulti(key)
	values := make([]string, 0, len(raw))
	for _, value := range raw {
		if trimmed := strings.TrimSpace(string(value)); trimmed != "" {
			values = append(values, trimmed)
		}
	}
	return values
}

func parseEntryID(c *fiber.Ctx) (uint, bool) {
	value, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || value == 0 {
		return 0, false
	}
	return uint(value), true
}

func entryJSON(entry models.Entry) fiber.Map {
	return fiber.Map{
		"id":             entry.ID,
		"username":       entry.Username,
		"therapist":      entry.TherapistUsername,
		"date":           entry.SessionDate.Format("2006-01-02"),
		"nrs1":           entry.NRS1,
		"nrs2":           entry.NRS2,
		"nrs3":           entry.NRS3,
		"nrs4":           entry.NRS4,
		"nrs5":           entry.NRS5,
		"a_event":        entry.Adversity,
		"beliefs":        entry.Beliefs,
		"c_distortions":  entry.CognitiveDistortions,
		"c_consequences": entry.EmotionalConsequences,
		"reactions":      entry.Reactions,
		"is_at_risk":     entry.IsAtRisk,
	}
}
