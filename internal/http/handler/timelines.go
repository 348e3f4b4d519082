package handler

import (
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/Cab789/capstone/internal/http/middleware"
	"github.com/Cab789/capstone/internal/service"
)

func timelineError(c *fiber.Ctx, err error) error {
	var verr *service.TimelineValidationError
	switch {
	case errors.As(err, &verr):
		return writeValidationError(c, verr.Messages)
	case errors.Is(err, service.ErrNotFound):
		return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "timeline not found")
	case errors.Is(err, service.ErrNotTimelineOwner):
		return writeError(c, fiber.StatusForbidden, "FORBIDDEN", "only the creator can modify this timeline")
	default:
		return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}

// CreateTimeline stores a new timeline document for the caller.
func CreateTimeline(timelines service.TimelineService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		u := middleware.CurrentUser(c)

		tl, err := timelines.Create(c.UserContext(), u.ID, json.RawMessage(c.Body()))
		if err != nil {
			return timelineError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(tl)
	}
}

// GetTimeline returns a timeline. Timelines are publicly readable.
func GetTimeline(timelines service.TimelineService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tl, err := timelines.Get(c.UserContext(), c.Params("id"))
		if err != nil {
			return timelineError(c, err)
		}
		return c.JSON(tl)
	}
}

// ListTimelines returns the caller's own timelines.
func ListTimelines(timelines service.TimelineService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		u := middleware.CurrentUser(c)

		items, err := timelines.ListByUser(c.UserContext(), u.ID)
		if err != nil {
			return timelineError(c, err)
		}
		return c.JSON(fiber.Map{"data": items, "total": len(items)})
	}
}

// UpdateTimeline replaces a timeline document. Creator only.
func UpdateTimeline(timelines service.TimelineService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		u := middleware.CurrentUser(c)

		tl, err := timelines.Update(c.UserContext(), u.ID, c.Params("id"), json.RawMessage(c.Body()))
		if err != nil {
			return timelineError(c, err)
		}
		return c.JSON(tl)
	}
}

// DeleteTimeline removes a timeline. Creator only.
func DeleteTimeline(timelines service.TimelineService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		u := middleware.CurrentUser(c)

		if err := timelines.Delete(c.UserContext(), u.ID, c.Params("id")); err != nil {
			return timelineError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
