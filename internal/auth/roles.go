package auth

import (
	"github.com/gofiber/fiber/v2"

	apperrors "github.com/cleantownship/cleantown-service/pkg/util"
)

// RequireSession ensures a session was loaded by AuthMiddleware.
func RequireSession() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := SessionFromContext(c); !ok {
			return apperrors.NewUnauthorized("login required")
		}
		return c.Next()
	}
}

// RequireAdmin ensures the session carries the admin role.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		s, ok := SessionFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("login required")
		}
		if !s.IsAdmin() {
			return apperrors.NewForbidden("admin role required")
		}
		return c.Next()
	}
}
