package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/Cab789/capstone/internal/service"
)

const (
	// AllowanceCookie carries the signed anonymous case allowance.
	AllowanceCookie = "case_allowance"
	// AllowanceLocalKey holds the decoded service.AnonAllowance in locals.
	AllowanceLocalKey = "anon_allowance"
)

// AnonAllowance decodes the signed allowance cookie into context locals.
// Missing or tampered cookies simply leave no allowance in the context; the
// browser must pass the not-a-bot check to obtain one.
func AnonAllowance(codec *service.AllowanceCodec) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if v := c.Cookies(AllowanceCookie); v != "" {
			if a, ok := codec.Decode(v); ok {
				c.Locals(AllowanceLocalKey, a)
			}
		}
		return c.Next()
	}
}

// AnonAllowanceFromCtx returns the decoded allowance, if the request carried
// a valid cookie.
func AnonAllowanceFromCtx(c *fiber.Ctx) (service.AnonAllowance, bool) {
	a, ok := c.Locals(AllowanceLocalKey).(service.AnonAllowance)
	return a, ok
}

// SetAnonAllowance writes the signed allowance cookie on the response.
func SetAnonAllowance(c *fiber.Ctx, codec *service.AllowanceCodec, a service.AnonAllowance) {
	c.Cookie(&fiber.Cookie{
		Name:     AllowanceCookie,
		Value:    codec.Encode(a),
		Expires:  time.Now().Add(365 * 24 * time.Hour),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}
