package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/Cab789/capstone/internal/model"
	"github.com/Cab789/capstone/internal/repository"
)

var ErrContractSettled = errors.New("contract has already been decided")

// ResearchContractInput is the application form for unrestricted research
// access.
type ResearchContractInput struct {
	Name           string `json:"name" validate:"required,max=255"`
	Institution    string `json:"institution" validate:"required,max=255"`
	Title          string `json:"title" validate:"required,max=255"`
	AreaOfInterest string `json:"area_of_interest" validate:"max=2000"`
	ContractHTML   string `json:"contract_html" validate:"required"`
}

// HarvardContractInput is the access form for Harvard affiliates.
type HarvardContractInput struct {
	Name           string `json:"name" validate:"required,max=255"`
	Title          string `json:"title" validate:"required,max=255"`
	AreaOfInterest string `json:"area_of_interest" validate:"max=2000"`
	ContractHTML   string `json:"contract_html" validate:"required"`
}

// ContractService handles research and harvard access contracts. An approved
// research contract grants the applicant unlimited access; a harvard
// contract grants harvard_access on submission.
type ContractService interface {
	SubmitResearch(ctx context.Context, applicant *model.User, in ResearchContractInput) (*model.ResearchContract, error)
	ListOwnResearch(ctx context.Context, userID string) ([]model.ResearchContract, error)

	// DecideResearch approves or denies a pending contract. Staff only.
	// approve=true grants the applicant unlimited access.
	DecideResearch(ctx context.Context, approver *model.User, contractID string, approve bool, notes string) (*model.ResearchContract, error)

	SubmitHarvard(ctx context.Context, applicant *model.User, in HarvardContractInput) (*model.HarvardContract, error)
}

type contractService struct {
	contracts repository.ContractRepository
	users     repository.UserRepository
	validate  *validator.Validate
}

// NewContractService constructs a ContractService.
func NewContractService(contracts repository.ContractRepository, users repository.UserRepository) ContractService {
	return &contractService{contracts: contracts, users: users, validate: validator.New()}
}

func (s *contractService) SubmitResearch(ctx context.Context, applicant *model.User, in ResearchContractInput) (*model.ResearchContract, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}
	return s.contracts.CreateResearch(ctx, &model.ResearchContract{
		ID:                uuid.New().String(),
		UserID:            applicant.ID,
		Name:              in.Name,
		Email:             applicant.Email,
		Institution:       in.Institution,
		Title:             in.Title,
		AreaOfInterest:    in.AreaOfInterest,
		ContractHTML:      in.ContractHTML,
		Status:            model.ContractPending,
		UserSignatureDate: time.Now().UTC(),
	})
}

func (s *contractService) ListOwnResearch(ctx context.Context, userID string) ([]model.ResearchContract, error) {
	return s.contracts.ListResearchByUser(ctx, userID)
}

func (s *contractService) DecideResearch(ctx context.Context, approver *model.User, contractID string, approve bool, notes string) (*model.ResearchContract, error) {
	if approver == nil || !approver.IsStaff {
		return nil, ErrStaffOnly
	}
	contract, err := s.contracts.FindResearchByID(ctx, contractID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if contract.Status != model.ContractPending {
		return nil, ErrContractSettled
	}

	now := time.Now().UTC()
	contract.ApproverID = &approver.ID
	contract.ApproverSignatureDate = &now
	contract.ApproverNotes = notes
	if approve {
		contract.Status = model.ContractApproved
	} else {
		contract.Status = model.ContractDenied
	}
	if err := s.contracts.UpdateResearch(ctx, contract); err != nil {
		return nil, err
	}

	if approve {
		applicant, err := s.users.FindByID(ctx, contract.UserID)
		if err != nil {
			return nil, err
		}
		applicant.UnlimitedAccess = true
		applicant.UnlimitedAccessUntil = nil
		if err := s.users.Update(ctx, applicant); err != nil {
			return nil, err
		}
	}
	return contract, nil
}

func (s *contractService) SubmitHarvard(ctx context.Context, applicant *model.User, in HarvardContractInput) (*model.HarvardContract, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}
	contract, err := s.contracts.CreateHarvard(ctx, &model.HarvardContract{
		ID:                uuid.New().String(),
		UserID:            applicant.ID,
		Name:              in.Name,
		Title:             in.Title,
		AreaOfInterest:    in.AreaOfInterest,
		ContractHTML:      in.ContractHTML,
		UserSignatureDate: time.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	applicant.HarvardAccess = true
	if err := s.users.Update(ctx, applicant); err != nil {
		return nil, err
	}
	return contract, nil
}
