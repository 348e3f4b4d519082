package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/Cab789/capstone/internal/model"
	repoMocks "github.com/Cab789/capstone/internal/repository/mocks"
)

func validResearchInput() ResearchContractInput {
	return ResearchContractInput{
		Name:           "Pat Researcher",
		Institution:    "State University",
		Title:          "Professor",
		AreaOfInterest: "redlining",
		ContractHTML:   "<p>terms</p>",
	}
}

func TestContractService_SubmitResearch(t *testing.T) {
	ctx := context.Background()
	applicant := &model.User{ID: "user-id", Email: "someone@example.com"}

	t.Run("happy path", func(t *testing.T) {
		contracts := new(repoMocks.MockContractRepository)
		users := new(repoMocks.MockUserRepository)
		svc := NewContractService(contracts, users)

		contracts.On("CreateResearch", ctx, mock.MatchedBy(func(c *model.ResearchContract) bool {
			return c.UserID == "user-id" &&
				c.Email == "someone@example.com" &&
				c.Status == model.ContractPending &&
				c.ID != ""
		})).Return(&model.ResearchContract{ID: "contract-id", Status: model.ContractPending}, nil)

		c, err := svc.SubmitResearch(ctx, applicant, validResearchInput())
		assert.NoError(t, err)
		assert.Equal(t, model.ContractPending, c.Status)
		contracts.AssertExpectations(t)
	})

	t.Run("validation failure", func(t *testing.T) {
		svc := NewContractService(new(repoMocks.MockContractRepository), new(repoMocks.MockUserRepository))
		in := validResearchInput()
		in.Institution = ""

		_, err := svc.SubmitResearch(ctx, applicant, in)
		assert.Error(t, err)
	})
}

func TestContractService_DecideResearch(t *testing.T) {
	ctx := context.Background()
	approver := &model.User{ID: "staff-id", IsStaff: true}

	t.Run("approval grants unlimited access", func(t *testing.T) {
		contracts := new(repoMocks.MockContractRepository)
		users := new(repoMocks.MockUserRepository)
		svc := NewContractService(contracts, users)

		contracts.On("FindResearchByID", ctx, "contract-id").Return(&model.ResearchContract{
			ID: "contract-id", UserID: "user-id", Status: model.ContractPending,
		}, nil)
		contracts.On("UpdateResearch", ctx, mock.MatchedBy(func(c *model.ResearchContract) bool {
			return c.Status == model.ContractApproved &&
				c.ApproverID != nil && *c.ApproverID == "staff-id" &&
				c.ApproverSignatureDate != nil
		})).Return(nil)
		users.On("FindByID", ctx, "user-id").Return(&model.User{ID: "user-id"}, nil)
		users.On("Update", ctx, mock.MatchedBy(func(u *model.User) bool {
			return u.UnlimitedAccess && u.UnlimitedAccessUntil == nil
		})).Return(nil)

		c, err := svc.DecideResearch(ctx, approver, "contract-id", true, "looks good")
		assert.NoError(t, err)
		assert.Equal(t, model.ContractApproved, c.Status)
		users.AssertExpectations(t)
	})

	t.Run("denial does not touch the user", func(t *testing.T) {
		contracts := new(repoMocks.MockContractRepository)
		users := new(repoMocks.MockUserRepository)
		svc := NewContractService(contracts, users)

		contracts.On("FindResearchByID", ctx, "contract-id").Return(&model.ResearchContract{
			ID: "contract-id", UserID: "user-id", Status: model.ContractPending,
		}, nil)
		contracts.On("UpdateResearch", ctx, mock.MatchedBy(func(c *model.ResearchContract) bool {
			return c.Status == model.ContractDenied && c.ApproverNotes == "no"
		})).Return(nil)

		c, err := svc.DecideResearch(ctx, approver, "contract-id", false, "no")
		assert.NoError(t, err)
		assert.Equal(t, model.ContractDenied, c.Status)
		users.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("staff only", func(t *testing.T) {
		svc := NewContractService(new(repoMocks.MockContractRepository), new(repoMocks.MockUserRepository))
		_, err := svc.DecideResearch(ctx, &model.User{ID: "user-id"}, "contract-id", true, "")
		assert.ErrorIs(t, err, ErrStaffOnly)
	})

	t.Run("already decided", func(t *testing.T) {
		contracts := new(repoMocks.MockContractRepository)
		svc := NewContractService(contracts, new(repoMocks.MockUserRepository))
		contracts.On("FindResearchByID", ctx, "contract-id").Return(&model.ResearchContract{
			ID: "contract-id", Status: model.ContractApproved,
		}, nil)

		_, err := svc.DecideResearch(ctx, approver, "contract-id", true, "")
		assert.ErrorIs(t, err, ErrContractSettled)
	})

	t.Run("unknown contract", func(t *testing.T) {
		contracts := new(repoMocks.MockContractRepository)
		svc := NewContractService(contracts, new(repoMocks.MockUserRepository))
		contracts.On("FindResearchByID", ctx, "missing").Return(nil, sql.ErrNoRows)

		_, err := svc.DecideResearch(ctx, approver, "missing", true, "")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestContractService_SubmitHarvard(t *testing.T) {
	ctx := context.Background()

	t.Run("grants harvard access on submission", func(t *testing.T) {
		contracts := new(repoMocks.MockContractRepository)
		users := new(repoMocks.MockUserRepository)
		svc := NewContractService(contracts, users)

		applicant := &model.User{ID: "user-id", Email: "someone@harvard.edu"}
		contracts.On("CreateHarvard", ctx, mock.MatchedBy(func(c *model.HarvardContract) bool {
			return c.UserID == "user-id" && !c.UserSignatureDate.After(time.Now().UTC())
		})).Return(&model.HarvardContract{ID: "contract-id"}, nil)
		users.On("Update", ctx, mock.MatchedBy(func(u *model.User) bool {
			return u.HarvardAccess
		})).Return(nil)

		_, err := svc.SubmitHarvard(ctx, applicant, HarvardContractInput{
			Name: "Pat", Title: "Fellow", ContractHTML: "<p>terms</p>",
		})
		assert.NoError(t, err)
		users.AssertExpectations(t)
	})
}
