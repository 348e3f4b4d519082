package handler

import (
	"errors"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/Cab789/capstone/internal/http/middleware"
	"github.com/Cab789/capstone/internal/service"
)

// Register creates a new account and sends the verification email.
func Register(auth service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.RegisterInput
		if err := c.BodyParser(&in); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "request body could not be parsed")
		}

		u, err := auth.Register(c.UserContext(), in)
		if err != nil {
			var verr validator.ValidationErrors
			switch {
			case errors.Is(err, service.ErrEmailWhitespace):
				return writeError(c, fiber.StatusBadRequest, "INVALID_EMAIL", "email may not contain whitespace")
			case errors.Is(err, service.ErrEmailTaken):
				return writeError(c, fiber.StatusBadRequest, "EMAIL_TAKEN", "an account with this email already exists")
			case errors.Is(err, service.ErrEmailBlocked):
				return writeError(c, fiber.StatusBadRequest, "EMAIL_BLOCKED", "this email address cannot be used")
			case errors.Is(err, service.ErrTOSRequired):
				return writeError(c, fiber.StatusBadRequest, "TOS_REQUIRED", "you must agree to the terms of service")
			case errors.Is(err, service.ErrSignupsClosed):
				return writeError(c, fiber.StatusServiceUnavailable, "SIGNUPS_CLOSED", "daily signup limit reached, try again tomorrow")
			case errors.As(err, &verr):
				return writeError(c, fiber.StatusBadRequest, "INVALID_INPUT", "invalid registration input")
			default:
				return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
			}
		}
		return c.Status(fiber.StatusCreated).JSON(u)
	}
}

type verifyRequest struct {
	UserID string `json:"user_id"`
	Nonce  string `json:"nonce"`
}

// VerifyEmail checks the activation nonce and returns the new API key.
func VerifyEmail(auth service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in verifyRequest
		if err := c.BodyParser(&in); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "request body could not be parsed")
		}

		token, err := auth.Verify(c.UserContext(), in.UserID, in.Nonce)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrInvalidNonce), errors.Is(err, service.ErrUserInactive):
				return writeError(c, fiber.StatusForbidden, "INVALID_NONCE", "verification link is invalid or expired")
			case errors.Is(err, service.ErrNotFound):
				return writeError(c, fiber.StatusForbidden, "INVALID_NONCE", "verification link is invalid or expired")
			default:
				return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
			}
		}
		return c.JSON(token)
	}
}

type emailRequest struct {
	Email string `json:"email"`
}

// ResendVerification re-sends the activation email. Always responds 204 so
// the endpoint cannot be used to probe which addresses have accounts.
func ResendVerification(auth service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in emailRequest
		if err := c.BodyParser(&in); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "request body could not be parsed")
		}
		if err := auth.ResendVerification(c.UserContext(), in.Email); err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	User  any    `json:"user"`
	Token string `json:"token"`
}

// Login checks credentials and returns the user together with their API key.
func Login(auth service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in loginRequest
		if err := c.BodyParser(&in); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "request body could not be parsed")
		}

		u, token, err := auth.Login(c.UserContext(), in.Email, in.Password)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrInvalidCredentials):
				return writeError(c, fiber.StatusUnauthorized, "INVALID_CREDENTIALS", "email or password is incorrect")
			case errors.Is(err, service.ErrNotVerified):
				return writeError(c, fiber.StatusForbidden, "EMAIL_NOT_VERIFIED", "verify your email address before logging in")
			case errors.Is(err, service.ErrUserInactive):
				return writeError(c, fiber.StatusForbidden, "ACCOUNT_INACTIVE", "this account has been deactivated")
			default:
				return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
			}
		}
		return c.JSON(loginResponse{User: u, Token: token.Key})
	}
}

// ResetAPIKey replaces the caller's API key.
func ResetAPIKey(auth service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		u := middleware.CurrentUser(c)

		token, err := auth.ResetAPIKey(c.UserContext(), u.ID)
		if err != nil {
			if errors.Is(err, service.ErrNotVerified) {
				return writeError(c, fiber.StatusForbidden, "EMAIL_NOT_VERIFIED", "verify your email address first")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(token)
	}
}

// SubscribeMailingList adds an address to the newsletter list. Duplicates
// are accepted silently.
func SubscribeMailingList(auth service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in emailRequest
		if err := c.BodyParser(&in); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "request body could not be parsed")
		}
		if in.Email == "" {
			return writeError(c, fiber.StatusBadRequest, "INVALID_EMAIL", "email is required")
		}
		if err := auth.SubscribeMailingList(c.UserContext(), in.Email); err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// NotABot grants an anonymous browser its first case allowance by setting
// the signed allowance cookie. The client must post not_a_bot=yes, the field
// the browser form fills in; bare POSTs get nothing, which keeps trivial
// scrapers out.
func NotABot(codec *service.AllowanceCodec) fiber.Handler {
	type notABotRequest struct {
		NotABot string `json:"not_a_bot" form:"not_a_bot"`
	}
	return func(c *fiber.Ctx) error {
		var req notABotRequest
		if err := c.BodyParser(&req); err != nil || req.NotABot != "yes" {
			return writeError(c, fiber.StatusBadRequest, "NOT_A_BOT_REQUIRED", "confirmation field missing")
		}
		a := codec.New(time.Now().UTC())
		middleware.SetAnonAllowance(c, codec, a)
		return c.JSON(fiber.Map{"remaining": a.Remaining})
	}
}

// ResetDailyLimits zeroes the sitewide daily signup and download counters.
// Staff only; meant to be hit by the day-rollover job.
func ResetDailyLimits(auth service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := auth.ResetDailyLimits(c.UserContext()); err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// ViewHistory lists the caller's own case view history.
func ViewHistory(cases service.CaseLawService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		u := middleware.CurrentUser(c)

		limit, err := strconv.Atoi(c.Query("limit", "10"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		}
		offset, err := strconv.Atoi(c.Query("offset", "0"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_OFFSET", "invalid offset")
		}

		res, err := cases.ViewHistory(c.UserContext(), u.ID, limit, offset)
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(res)
	}
}
