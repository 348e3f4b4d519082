package mocks

import (
	"context"
	"encoding/json"
	"io"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/Cab789/capstone/internal/model"
	"github.com/Cab789/capstone/internal/service"
	"github.com/Cab789/capstone/internal/storage"
)

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, in service.RegisterInput) (*model.User, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockAuthService) Verify(ctx context.Context, userID, nonce string) (*model.AuthToken, error) {
	args := m.Called(ctx, userID, nonce)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AuthToken), args.Error(1)
}

func (m *MockAuthService) ResendVerification(ctx context.Context, email string) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

func (m *MockAuthService) Login(ctx context.Context, email, password string) (*model.User, *model.AuthToken, error) {
	args := m.Called(ctx, email, password)
	var u *model.User
	var tok *model.AuthToken
	if args.Get(0) != nil {
		u = args.Get(0).(*model.User)
	}
	if args.Get(1) != nil {
		tok = args.Get(1).(*model.AuthToken)
	}
	return u, tok, args.Error(2)
}

func (m *MockAuthService) ResetAPIKey(ctx context.Context, userID string) (*model.AuthToken, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AuthToken), args.Error(1)
}

func (m *MockAuthService) Authenticate(ctx context.Context, key string) (*model.User, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockAuthService) SubscribeMailingList(ctx context.Context, email string) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

func (m *MockAuthService) ResetDailyLimits(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type MockAccessService struct {
	mock.Mock
}

func (m *MockAccessService) UnlimitedAccessInEffect(u *model.User, clientIP string, now time.Time) bool {
	args := m.Called(u, clientIP, now)
	return args.Bool(0)
}

func (m *MockAccessService) UpdateAllowance(ctx context.Context, u *model.User, n int, clientIP string) error {
	args := m.Called(ctx, u, n, clientIP)
	return args.Error(0)
}

func (m *MockAccessService) DownloadAllowed(ctx context.Context, u *model.User, n int, clientIP string) (bool, error) {
	args := m.Called(ctx, u, n, clientIP)
	return args.Bool(0), args.Error(1)
}

func (m *MockAccessService) IsKnownBot(userAgent string) bool {
	args := m.Called(userAgent)
	return args.Bool(0)
}

type MockCaseLawService struct {
	mock.Mock
}

func (m *MockCaseLawService) ResolveCitation(ctx context.Context, series, volume, page string, caseID int64) (*service.Resolution, error) {
	args := m.Called(ctx, series, volume, page, caseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Resolution), args.Error(1)
}

func (m *MockCaseLawService) Series(ctx context.Context, series string) (*service.SeriesResult, error) {
	args := m.Called(ctx, series)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SeriesResult), args.Error(1)
}

func (m *MockCaseLawService) VolumeCases(ctx context.Context, series, volume string) (*service.VolumeResult, error) {
	args := m.Called(ctx, series, volume)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.VolumeResult), args.Error(1)
}

func (m *MockCaseLawService) GetCase(ctx context.Context, id int64) (*model.Case, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Case), args.Error(1)
}

func (m *MockCaseLawService) CaseBodyHTML(ctx context.Context, c *model.Case) (string, error) {
	args := m.Called(ctx, c)
	return args.String(0), args.Error(1)
}

func (m *MockCaseLawService) FindByCite(ctx context.Context, q string) ([]model.Case, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Case), args.Error(1)
}

func (m *MockCaseLawService) Citations(ctx context.Context, caseID int64) ([]model.Citation, error) {
	args := m.Called(ctx, caseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Citation), args.Error(1)
}

func (m *MockCaseLawService) RandomCasePath(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockCaseLawService) RobotsTxt(ctx context.Context, now time.Time) (string, error) {
	args := m.Called(ctx, now)
	return args.String(0), args.Error(1)
}

func (m *MockCaseLawService) RecordView(ctx context.Context, viewer *model.User, c *model.Case) error {
	args := m.Called(ctx, viewer, c)
	return args.Error(0)
}

func (m *MockCaseLawService) ViewHistory(ctx context.Context, userID string, limit, offset int) (*service.HistoryListResult, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.HistoryListResult), args.Error(1)
}

func (m *MockCaseLawService) CasePDF(ctx context.Context, c *model.Case) (io.ReadCloser, storage.ObjectInfo, error) {
	args := m.Called(ctx, c)
	rc, _ := args.Get(0).(io.ReadCloser)
	return rc, args.Get(1).(storage.ObjectInfo), args.Error(2)
}

func (m *MockCaseLawService) PageImage(ctx context.Context, volumeBarcode string, page int) (io.ReadCloser, storage.ObjectInfo, error) {
	args := m.Called(ctx, volumeBarcode, page)
	rc, _ := args.Get(0).(io.ReadCloser)
	return rc, args.Get(1).(storage.ObjectInfo), args.Error(2)
}

type MockEditorService struct {
	mock.Mock
}

func (m *MockEditorService) ApplyCorrections(ctx context.Context, editor *model.User, caseID int64, in service.CorrectionInput) (*model.CorrectionLog, error) {
	args := m.Called(ctx, editor, caseID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CorrectionLog), args.Error(1)
}

func (m *MockEditorService) SetRedaction(ctx context.Context, editor *model.User, caseID int64, kind, text string) error {
	args := m.Called(ctx, editor, caseID, kind, text)
	return args.Error(0)
}

func (m *MockEditorService) ClearRedaction(ctx context.Context, editor *model.User, caseID int64, kind, text string) error {
	args := m.Called(ctx, editor, caseID, kind, text)
	return args.Error(0)
}

type MockTimelineService struct {
	mock.Mock
}

func (m *MockTimelineService) Create(ctx context.Context, userID string, doc json.RawMessage) (*model.Timeline, error) {
	args := m.Called(ctx, userID, doc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Timeline), args.Error(1)
}

func (m *MockTimelineService) Get(ctx context.Context, id string) (*model.Timeline, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Timeline), args.Error(1)
}

func (m *MockTimelineService) ListByUser(ctx context.Context, userID string) ([]model.Timeline, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Timeline), args.Error(1)
}

func (m *MockTimelineService) Update(ctx context.Context, userID, id string, doc json.RawMessage) (*model.Timeline, error) {
	args := m.Called(ctx, userID, id, doc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Timeline), args.Error(1)
}

func (m *MockTimelineService) Delete(ctx context.Context, userID, id string) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}

type MockContractService struct {
	mock.Mock
}

func (m *MockContractService) SubmitResearch(ctx context.Context, applicant *model.User, in service.ResearchContractInput) (*model.ResearchContract, error) {
	args := m.Called(ctx, applicant, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ResearchContract), args.Error(1)
}

func (m *MockContractService) ListOwnResearch(ctx context.Context, userID string) ([]model.ResearchContract, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ResearchContract), args.Error(1)
}

func (m *MockContractService) DecideResearch(ctx context.Context, approver *model.User, contractID string, approve bool, notes string) (*model.ResearchContract, error) {
	args := m.Called(ctx, approver, contractID, approve, notes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ResearchContract), args.Error(1)
}

func (m *MockContractService) SubmitHarvard(ctx context.Context, applicant *model.User, in service.HarvardContractInput) (*model.HarvardContract, error) {
	args := m.Called(ctx, applicant, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.HarvardContract), args.Error(1)
}

type MockExportService struct {
	mock.Mock
}

func (m *MockExportService) List(ctx context.Context, withOld bool, limit, offset int) (*service.ExportListResult, error) {
	args := m.Called(ctx, withOld, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ExportListResult), args.Error(1)
}

func (m *MockExportService) Download(ctx context.Context, id int64, allowRestricted bool) (*model.CaseExport, io.ReadCloser, error) {
	args := m.Called(ctx, id, allowRestricted)
	var e *model.CaseExport
	if args.Get(0) != nil {
		e = args.Get(0).(*model.CaseExport)
	}
	rc, _ := args.Get(1).(io.ReadCloser)
	return e, rc, args.Error(2)
}

func (m *MockExportService) Run(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}
