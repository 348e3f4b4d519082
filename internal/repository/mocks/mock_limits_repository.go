package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/Cab789/capstone/internal/model"
)

type MockSiteLimitsRepository struct {
	mock.Mock
}

func (m *MockSiteLimitsRepository) Get(ctx context.Context) (*model.SiteLimits, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.SiteLimits), args.Error(1)
}

func (m *MockSiteLimitsRepository) Add(ctx context.Context, signups, downloads int) (*model.SiteLimits, error) {
	args := m.Called(ctx, signups, downloads)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.SiteLimits), args.Error(1)
}

func (m *MockSiteLimitsRepository) Reset(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
