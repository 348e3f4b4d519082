package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/Cab789/capstone/internal/model"
)

type MockTimelineRepository struct {
	mock.Mock
}

func (m *MockTimelineRepository) Create(ctx context.Context, t *model.Timeline) (*model.Timeline, error) {
	args := m.Called(ctx, t)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Timeline), args.Error(1)
}

func (m *MockTimelineRepository) FindByID(ctx context.Context, id string) (*model.Timeline, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Timeline), args.Error(1)
}

func (m *MockTimelineRepository) ListByUser(ctx context.Context, userID string) ([]model.Timeline, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Timeline), args.Error(1)
}

func (m *MockTimelineRepository) Update(ctx context.Context, t *model.Timeline) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockTimelineRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
