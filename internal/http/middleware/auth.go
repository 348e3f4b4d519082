package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/Cab789/capstone/internal/model"
	"github.com/Cab789/capstone/internal/service"
)

// CurrentUserLocalKey is the context locals key holding the authenticated
// *model.User, when any.
const CurrentUserLocalKey = "current_user"

// tokenScheme is the Authorization scheme for API keys: "Token <key>".
const tokenScheme = "Token "

// TokenAuth resolves the Authorization header to a user and stores it in
// context locals. Requests without the header pass through anonymously; a
// header with an invalid key is rejected.
func TokenAuth(auth service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if header == "" {
			return c.Next()
		}
		if !strings.HasPrefix(header, tokenScheme) {
			return fiber.NewError(fiber.StatusUnauthorized, "unsupported authorization scheme")
		}
		key := strings.TrimSpace(strings.TrimPrefix(header, tokenScheme))

		u, err := auth.Authenticate(c.UserContext(), key)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid token")
		}
		c.Locals(CurrentUserLocalKey, u)
		return c.Next()
	}
}

// CurrentUser returns the authenticated user stored by TokenAuth, or nil.
func CurrentUser(c *fiber.Ctx) *model.User {
	u, _ := c.Locals(CurrentUserLocalKey).(*model.User)
	return u
}

// RequireUser rejects anonymous requests.
func RequireUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if CurrentUser(c) == nil {
			return fiber.NewError(fiber.StatusForbidden, "authentication required")
		}
		return c.Next()
	}
}

// RequireStaff rejects requests from non-staff users.
func RequireStaff() fiber.Handler {
	return func(c *fiber.Ctx) error {
		u := CurrentUser(c)
		if u == nil || !u.IsStaff {
			return fiber.NewError(fiber.StatusForbidden, "staff access required")
		}
		return c.Next()
	}
}
