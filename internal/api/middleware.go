package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/mindnet/internal/services"
)

const (
	authCookieName     = "mindnet_auth"
	flashCookieName    = "mindnet_flash"
	contextIdentityKey = "current_identity"
)

// Identify resolves the auth cookie into a request-scoped identity. Requests without a
// valid cookie continue as anonymous; each handler decides what that means.
func (handler *Handler) Identify(c *fiber.Ctx) error {
	identity, err := handler.identityFromRequest(c)
	if err != nil {
		identity = services.Identity{}
	}
	c.Locals(contextIdentityKey, identity)
	return c.Next()
}

func currentIdentity(c *fiber.Ctx) services.Identity {
	identity, _ := c.Locals(contextIdentityKey).(services.Identity)
	return identity
}
