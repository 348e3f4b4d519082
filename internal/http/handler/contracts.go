package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/Cab789/capstone/internal/http/middleware"
	"github.com/Cab789/capstone/internal/service"
)

// SubmitResearchContract files an unlimited-access research request.
func SubmitResearchContract(contracts service.ContractService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.ResearchContractInput
		if err := c.BodyParser(&in); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "request body could not be parsed")
		}

		rc, err := contracts.SubmitResearch(c.UserContext(), middleware.CurrentUser(c), in)
		if err != nil {
			var verr validator.ValidationErrors
			if errors.As(err, &verr) {
				return writeError(c, fiber.StatusBadRequest, "INVALID_INPUT", "invalid contract input")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.Status(fiber.StatusCreated).JSON(rc)
	}
}

// ListResearchContracts returns the caller's own research contracts.
func ListResearchContracts(contracts service.ContractService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		u := middleware.CurrentUser(c)

		items, err := contracts.ListOwnResearch(c.UserContext(), u.ID)
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(fiber.Map{"data": items, "total": len(items)})
	}
}

type contractDecision struct {
	Approve bool   `json:"approve"`
	Notes   string `json:"notes"`
}

// DecideResearchContract approves or denies a pending research contract.
// Staff only; approval grants the applicant unlimited access.
func DecideResearchContract(contracts service.ContractService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in contractDecision
		if err := c.BodyParser(&in); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "request body could not be parsed")
		}

		rc, err := contracts.DecideResearch(c.UserContext(), middleware.CurrentUser(c), c.Params("id"), in.Approve, in.Notes)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrStaffOnly):
				return writeError(c, fiber.StatusForbidden, "FORBIDDEN", "staff access required")
			case errors.Is(err, service.ErrNotFound):
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "contract not found")
			case errors.Is(err, service.ErrContractSettled):
				return writeError(c, fiber.StatusBadRequest, "CONTRACT_SETTLED", "this contract has already been decided")
			default:
				return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
			}
		}
		return c.JSON(rc)
	}
}

// SubmitHarvardContract files a Harvard affiliate access request, which
// grants harvard_access on submission.
func SubmitHarvardContract(contracts service.ContractService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.HarvardContractInput
		if err := c.BodyParser(&in); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "request body could not be parsed")
		}

		hc, err := contracts.SubmitHarvard(c.UserContext(), middleware.CurrentUser(c), in)
		if err != nil {
			var verr validator.ValidationErrors
			if errors.As(err, &verr) {
				return writeError(c, fiber.StatusBadRequest, "INVALID_INPUT", "invalid contract input")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.Status(fiber.StatusCreated).JSON(hc)
	}
}
