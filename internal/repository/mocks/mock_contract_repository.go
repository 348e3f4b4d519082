package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/Cab789/capstone/internal/model"
)

type MockContractRepository struct {
	mock.Mock
}

func (m *MockContractRepository) CreateResearch(ctx context.Context, c *model.ResearchContract) (*model.ResearchContract, error) {
	args := m.Called(ctx, c)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ResearchContract), args.Error(1)
}

func (m *MockContractRepository) FindResearchByID(ctx context.Context, id string) (*model.ResearchContract, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ResearchContract), args.Error(1)
}

func (m *MockContractRepository) ListResearchByUser(ctx context.Context, userID string) ([]model.ResearchContract, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ResearchContract), args.Error(1)
}

func (m *MockContractRepository) UpdateResearch(ctx context.Context, c *model.ResearchContract) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockContractRepository) CreateHarvard(ctx context.Context, c *model.HarvardContract) (*model.HarvardContract, error) {
	args := m.Called(ctx, c)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.HarvardContract), args.Error(1)
}
