package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/mindnet/internal/notify"
)

const msgEmergencySent = "Emergency SMS and Email Have been sent, Hang in there!"

// Emergency runs the crisis notification for the signed-in patient. The confirmation is
// shown whatever the per-channel outcome; JSON callers also get the channel results.
func (handler *Handler) Emergency(c *fiber.Ctx) error {
	username := c.Params("username")
	report, err := handler.emergency.Trigger(c.UserContext(), currentIdentity(c), username, c.Params("therapist"))
	if err != nil {
		return handler.respondServiceError(c, err)
	}

	if acceptsJSON(c) {
		return c.JSON(fiber.Map{
			"ok":          true,
			"message":     msgEmergencySent,
			"incident_id": report.IncidentID,
			"channels":    channelResultsJSON(report),
		})
	}
	handler.setFlashCookie(c, FlashPayload{Message: msgEmergencySent})
	return c.Redirect("/users/"+username, fiber.StatusSeeOther)
}

func channelResultsJSON(report notify.Report) []fiber.Map {
	channels := make([]fiber.Map, 0, len(report.Results))
	for _, result := range report.Results {
		item := fiber.Map{
			"channel":   string(result.Channel),
			"delivered": result.Delivered,
		}
		if result.Reference != "" {
			item["reference"] = result.Reference
		}
		if code := result.ReasonCode(); code != "" {
			item["error"] = code
		}
		channels = append(channels, item)
	}
	return channels
}
