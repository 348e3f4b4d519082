package handler

import (
	"context"
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/Cab789/capstone/internal/http/middleware"
	"github.com/Cab789/capstone/internal/model"
	"github.com/Cab789/capstone/internal/service"
)

// ApplyCorrections applies an OCR correction payload to a case. Staff only.
func ApplyCorrections(editor service.EditorService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		caseID, err := strconv.ParseInt(c.Params("id"), 10, 64)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}

		var in service.CorrectionInput
		if err := c.BodyParser(&in); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "request body could not be parsed")
		}

		log, err := editor.ApplyCorrections(c.UserContext(), middleware.CurrentUser(c), caseID, in)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrStaffOnly):
				return writeError(c, fiber.StatusForbidden, "FORBIDDEN", "staff access required")
			case errors.Is(err, service.ErrNotFound):
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "case not found")
			case errors.Is(err, service.ErrStaleEdit):
				return writeError(c, fiber.StatusConflict, "STALE_EDIT",
					"the text changed since this edit was prepared, reload and try again")
			default:
				return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
			}
		}
		return c.Status(fiber.StatusCreated).JSON(log)
	}
}

type redactionRequest struct {
	Kind string `json:"kind"`
	Text string `json:"text"`
}

// SetRedaction hides a passage of a case's text. Staff only.
func SetRedaction(editor service.EditorService) fiber.Handler {
	return redactionHandler(editor.SetRedaction)
}

// ClearRedaction removes a stored redaction or elision. Staff only.
func ClearRedaction(editor service.EditorService) fiber.Handler {
	return redactionHandler(editor.ClearRedaction)
}

type redactionOp func(ctx context.Context, editor *model.User, caseID int64, kind, text string) error

func redactionHandler(op redactionOp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		caseID, err := strconv.ParseInt(c.Params("id"), 10, 64)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}

		var in redactionRequest
		if err := c.BodyParser(&in); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "request body could not be parsed")
		}
		if in.Text == "" {
			return writeError(c, fiber.StatusBadRequest, "TEXT_REQUIRED", "text is required")
		}

		if err := op(c.UserContext(), middleware.CurrentUser(c), caseID, in.Kind, in.Text); err != nil {
			switch {
			case errors.Is(err, service.ErrStaffOnly):
				return writeError(c, fiber.StatusForbidden, "FORBIDDEN", "staff access required")
			case errors.Is(err, service.ErrBadRedactionKind):
				return writeError(c, fiber.StatusBadRequest, "INVALID_KIND", "kind must be redact or elide")
			case errors.Is(err, service.ErrNotFound):
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "case not found")
			default:
				return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
			}
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
