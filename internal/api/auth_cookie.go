package api

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/terraincognita07/mindnet/internal/models"
	"github.com/terraincognita07/mindnet/internal/services"
)

const (
	authTokenTTL      = 7 * 24 * time.Hour
	authCookiePurpose = "auth"
)

var (
	errMissingAuthCookie   = errors.New("missing auth cookie")
	errInvalidAuthToken    = errors.New("invalid token")
	errUnsupportedAuthRole = errors.New("unsupported role")
)

type authClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

func (handler *Handler) setAuthCookie(c *fiber.Ctx, identity services.Identity) error {
	token, err := handler.buildToken(identity, authTokenTTL)
	if err != nil {
		return err
	}
	sealed, err := handler.cookieCodec.seal(authCookiePurpose, []byte(token))
	if err != nil {
		return err
	}

	c.Cookie(&fiber.Cookie{
		Name:     authCookieName,
		Value:    sealed,
		Path:     "/",
		HTTPOnly: true,
		Secure:   handler.cookieSecure,
		SameSite: "Lax",
		Expires:  time.Now().Add(authTokenTTL),
	})
	return nil
}

func (handler *Handler) clearAuthCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     authCookieName,
		Value:    "",
		Path:     "/",
		HTTPOnly: true,
		Secure:   handler.cookieSecure,
		SameSite: "Lax",
		Expires:  time.Now().Add(-1 * time.Hour),
	})
}

func (handler *Handler) buildToken(identity services.Identity, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := authClaims{
		Role: identity.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.Username,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(handler.secretKey)
}

func (handler *Handler) identityFromRequest(c *fiber.Ctx) (services.Identity, error) {
	rawCookie := strings.TrimSpace(c.Cookies(authCookieName))
	if rawCookie == "" {
		return services.Identity{}, errMissingAuthCookie
	}
	tokenValue, err := handler.cookieCodec.open(authCookiePurpose, rawCookie)
	if err != nil {
		return services.Identity{}, errInvalidAuthToken
	}

	claims := &authClaims{}
	token, err := jwt.ParseWithClaims(string(tokenValue), claims, func(*jwt.Token) (interface{}, error) {
		return handler.secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return services.Identity{}, errors.Join(errInvalidAuthToken, err)
	}
	if claims.Role != models.RolePatient && claims.Role != models.RoleTherapist {
		return services.Identity{}, errUnsupportedAuthRole
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return services.Identity{}, errInvalidAuthToken
	}
	return services.Identity{Username: claims.Subject, Role: claims.Role}, nil
}
