// Package auth guards the API. Browser traffic carries a Supabase access
// token (HS256, signed with the project JWT secret); trusted backends call
// with the shared service key instead and name the user in the request body.
package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const (
	localUserID  = "user_id"
	localEmail   = "user_email"
	localService = "service_call"
)

// ErrNoUser means a handler could not resolve who the request acts for.
var ErrNoUser = errors.New("no user in request")

// Middleware authenticates every request that passes through it. Locals get
// user_id and user_email from the token, or service_call for key-based access.
func Middleware(jwtSecret, serviceKey string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if serviceKey != "" && c.Get("X-Service-Key") == serviceKey {
			c.Locals(localService, true)
			return c.Next()
		}

		header := c.Get(fiber.HeaderAuthorization)
		token := strings.TrimPrefix(header, "Bearer ")
		if token == header || token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "missing bearer token",
			})
		}

		claims := jwt.MapClaims{}
		_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
			return []byte(jwtSecret), nil
		}, jwt.WithValidMethods([]string{"HS256"}))
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid token",
			})
		}

		sub, _ := claims["sub"].(string)
		if sub == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "token has no subject",
			})
		}

		c.Locals(localUserID, sub)
		if email, ok := claims["email"].(string); ok {
			c.Locals(localEmail, email)
		}
		return c.Next()
	}
}

// UserID resolves the user a handler acts for. Token calls always act as the
// token subject; the body value only counts on service-key calls.
func UserID(c *fiber.Ctx, bodyUserID string) (string, error) {
	if id, ok := c.Locals(localUserID).(string); ok && id != "" {
		return id, nil
	}
	if service, _ := c.Locals(localService).(bool); service && bodyUserID != "" {
		return bodyUserID, nil
	}
	return "", ErrNoUser
}

// IsService reports whether the request authenticated with the service key.
func IsService(c *fiber.Ctx) bool {
	service, _ := c.Locals(localService).(bool)
	return service
}

// Email returns the token email claim, if the token carried one.
func Email(c *fiber.Ctx) string {
	email, _ := c.Locals(localEmail).(string)
	return email
}
