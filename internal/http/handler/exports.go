package handler

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/Cab789/capstone/internal/http/middleware"
	"github.com/Cab789/capstone/internal/service"
)

// ListExports lists bulk export artifacts. Superseded exports are hidden
// unless with_old=true.
func ListExports(exports service.ExportService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, err := strconv.Atoi(c.Query("limit", "10"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		}
		offset, err := strconv.Atoi(c.Query("offset", "0"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_OFFSET", "invalid offset")
		}

		res, err := exports.List(c.UserContext(), c.QueryBool("with_old"), limit, offset)
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(res)
	}
}

// DownloadExport streams an export artifact from object storage. Public
// artifacts are cacheable; restricted ones require unlimited access.
func DownloadExport(exports service.ExportService, access service.AccessService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := strconv.ParseInt(c.Params("id"), 10, 64)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}

		allowRestricted := false
		if u := middleware.CurrentUser(c); u != nil {
			allowRestricted = access.UnlimitedAccessInEffect(u, c.IP(), time.Now().UTC())
		}

		export, rc, err := exports.Download(c.UserContext(), id, allowRestricted)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrNotFound):
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "export not found")
			case errors.Is(err, service.ErrExportRestricted):
				return writeError(c, fiber.StatusForbidden, "EXPORT_RESTRICTED", "this export requires unlimited access")
			default:
				return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
			}
		}

		if export.Public {
			c.Set(fiber.HeaderCacheControl, "public, max-age=86400")
		} else {
			c.Set(fiber.HeaderCacheControl, "no-store")
		}
		c.Set(fiber.HeaderContentType, "application/jsonl")
		c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+export.FileName+`"`)
		return c.SendStream(rc, int(export.Size))
	}
}

// RunExports supersedes the current artifacts and writes a fresh set. Staff
// only. Returns the number of artifacts written.
func RunExports(exports service.ExportService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		n, err := exports.Run(c.UserContext())
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(fiber.Map{"artifacts": n})
	}
}
