package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/Cab789/capstone/internal/model"
	"github.com/Cab789/capstone/internal/repository"
)

type MockCaseRepository struct {
	mock.Mock
}

func (m *MockCaseRepository) ListSeries(ctx context.Context, seriesSlug string) ([]repository.SeriesListing, error) {
	args := m.Called(ctx, seriesSlug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.SeriesListing), args.Error(1)
}

func (m *MockCaseRepository) ListVolumeCases(ctx context.Context, seriesSlug, volumeSlug string) ([]model.Case, error) {
	args := m.Called(ctx, seriesSlug, volumeSlug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Case), args.Error(1)
}

func (m *MockCaseRepository) FindByFrontendURL(ctx context.Context, frontendURL string) ([]model.Case, error) {
	args := m.Called(ctx, frontendURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Case), args.Error(1)
}

func (m *MockCaseRepository) FindByNormalizedCite(ctx context.Context, normalizedCite string) ([]model.Case, error) {
	args := m.Called(ctx, normalizedCite)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Case), args.Error(1)
}

func (m *MockCaseRepository) FindByID(ctx context.Context, id int64) (*model.Case, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Case), args.Error(1)
}

func (m *MockCaseRepository) Update(ctx context.Context, c *model.Case) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockCaseRepository) Random(ctx context.Context) (*model.Case, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Case), args.Error(1)
}

func (m *MockCaseRepository) ListRobotsExcluded(ctx context.Context, now time.Time) ([]model.Case, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Case), args.Error(1)
}

func (m *MockCaseRepository) Citations(ctx context.Context, caseID int64) ([]model.Citation, error) {
	args := m.Called(ctx, caseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Citation), args.Error(1)
}

func (m *MockCaseRepository) GetBody(ctx context.Context, caseID int64) (*model.CaseBody, error) {
	args := m.Called(ctx, caseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CaseBody), args.Error(1)
}

func (m *MockCaseRepository) UpdateBody(ctx context.Context, b *model.CaseBody) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}

func (m *MockCaseRepository) GetPages(ctx context.Context, caseID int64) ([]model.CasePage, error) {
	args := m.Called(ctx, caseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.CasePage), args.Error(1)
}

func (m *MockCaseRepository) UpdatePage(ctx context.Context, p *model.CasePage) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockCaseRepository) AddCorrectionLog(ctx context.Context, l *model.CorrectionLog) (*model.CorrectionLog, error) {
	args := m.Called(ctx, l)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CorrectionLog), args.Error(1)
}

func (m *MockCaseRepository) FindVolume(ctx context.Context, barcode string) (*model.Volume, error) {
	args := m.Called(ctx, barcode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Volume), args.Error(1)
}

type MockExportRepository struct {
	mock.Mock
}

func (m *MockExportRepository) Create(ctx context.Context, e *model.CaseExport) (*model.CaseExport, error) {
	args := m.Called(ctx, e)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CaseExport), args.Error(1)
}

func (m *MockExportRepository) FindByID(ctx context.Context, id int64) (*model.CaseExport, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CaseExport), args.Error(1)
}

func (m *MockExportRepository) List(ctx context.Context, withOld bool, pq repository.PageQuery) (*repository.PageResult[model.CaseExport], error) {
	args := m.Called(ctx, withOld, pq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.CaseExport]), args.Error(1)
}

func (m *MockExportRepository) SupersedeAll(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockExportRepository) ListReporters(ctx context.Context) ([]model.Reporter, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Reporter), args.Error(1)
}

func (m *MockExportRepository) ListVolumes(ctx context.Context) ([]model.Volume, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Volume), args.Error(1)
}

func (m *MockExportRepository) ListCasesByVolume(ctx context.Context, barcode string) ([]model.Case, error) {
	args := m.Called(ctx, barcode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Case), args.Error(1)
}
