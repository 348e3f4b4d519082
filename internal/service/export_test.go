package service

import (
	"bytes"
	"context"
	"database/sql"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/Cab789/capstone/internal/model"
	"github.com/Cab789/capstone/internal/repository"
	repoMocks "github.com/Cab789/capstone/internal/repository/mocks"
	"github.com/Cab789/capstone/internal/storage"
	storeMocks "github.com/Cab789/capstone/internal/storage/mocks"
)

func TestExportService_List(t *testing.T) {
	ctx := context.Background()
	exports := new(repoMocks.MockExportRepository)
	svc := NewExportService(exports, new(storeMocks.MockStorage))

	exports.On("List", ctx, false, repository.PageQuery{Limit: 10, Offset: 0}).
		Return(&repository.PageResult[model.CaseExport]{
			Items: []model.CaseExport{{ID: 1, FileName: "reporters.jsonl"}},
			Total: 1,
		}, nil)

	res, err := svc.List(ctx, false, 0, -5)

	assert.NoError(t, err)
	assert.Equal(t, 1, res.Total)
	exports.AssertExpectations(t)
}

func TestExportService_Download(t *testing.T) {
	ctx := context.Background()

	t.Run("public export streams", func(t *testing.T) {
		exports := new(repoMocks.MockExportRepository)
		store := new(storeMocks.MockStorage)
		svc := NewExportService(exports, store)

		exports.On("FindByID", ctx, int64(1)).Return(&model.CaseExport{
			ID: 1, FileName: "reporters.jsonl", StorageKey: "exports/redacted/reporters.jsonl", Public: true,
		}, nil)
		store.On("Get", ctx, "exports/redacted/reporters.jsonl").
			Return(io.NopCloser(strings.NewReader("data")), storage.ObjectInfo{}, nil)

		e, rc, err := svc.Download(ctx, 1, false)
		assert.NoError(t, err)
		assert.Equal(t, "reporters.jsonl", e.FileName)
		body, _ := io.ReadAll(rc)
		assert.Equal(t, "data", string(body))
	})

	t.Run("restricted export needs unlimited access", func(t *testing.T) {
		exports := new(repoMocks.MockExportRepository)
		svc := NewExportService(exports, new(storeMocks.MockStorage))

		exports.On("FindByID", ctx, int64(2)).Return(&model.CaseExport{
			ID: 2, Public: false, StorageKey: "exports/unredacted/reporters.jsonl",
		}, nil)

		_, _, err := svc.Download(ctx, 2, false)
		assert.ErrorIs(t, err, ErrExportRestricted)
	})

	t.Run("restricted export with access", func(t *testing.T) {
		exports := new(repoMocks.MockExportRepository)
		store := new(storeMocks.MockStorage)
		svc := NewExportService(exports, store)

		exports.On("FindByID", ctx, int64(2)).Return(&model.CaseExport{
			ID: 2, Public: false, StorageKey: "exports/unredacted/reporters.jsonl",
		}, nil)
		store.On("Get", ctx, "exports/unredacted/reporters.jsonl").
			Return(io.NopCloser(strings.NewReader("data")), storage.ObjectInfo{}, nil)

		_, _, err := svc.Download(ctx, 2, true)
		assert.NoError(t, err)
	})

	t.Run("unknown export", func(t *testing.T) {
		exports := new(repoMocks.MockExportRepository)
		svc := NewExportService(exports, new(storeMocks.MockStorage))
		exports.On("FindByID", ctx, int64(9)).Return(nil, sql.ErrNoRows)

		_, _, err := svc.Download(ctx, 9, true)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestExportService_Run(t *testing.T) {
	ctx := context.Background()
	exports := new(repoMocks.MockExportRepository)
	store := new(storeMocks.MockStorage)
	svc := NewExportService(exports, store)

	exports.On("SupersedeAll", ctx).Return(nil)
	exports.On("ListReporters", ctx).Return([]model.Reporter{
		{ID: 1, ShortName: "Mass.", ShortNameSlug: "mass"},
	}, nil)
	exports.On("ListVolumes", ctx).Return([]model.Volume{
		{Barcode: "vol-1", ReporterID: 1, VolumeNumber: "1"},
		{Barcode: "vol-empty", ReporterID: 1, VolumeNumber: "2"},
	}, nil)
	exports.On("ListCasesByVolume", ctx, "vol-1").Return([]model.Case{{ID: 7, VolumeBarcode: "vol-1"}}, nil)
	exports.On("ListCasesByVolume", ctx, "vol-empty").Return([]model.Case{}, nil)

	written := map[string][]byte{}
	store.On("Put", ctx, mock.Anything, mock.Anything, mock.Anything).
		Return(func(ctx context.Context, key string, r io.Reader, opt storage.PutObjectOptions) storage.ObjectInfo {
			data, _ := io.ReadAll(r)
			written[key] = data
			return storage.ObjectInfo{Key: key, Size: int64(len(data))}
		}, nil)
	exports.On("Create", ctx, mock.Anything).Return(&model.CaseExport{ID: 1}, nil)

	n, err := svc.Run(ctx)

	assert.NoError(t, err)
	// reporters + volumes + one non-empty volume, in both prefixes.
	assert.Equal(t, 6, n)
	assert.Contains(t, written, "exports/redacted/reporters.jsonl")
	assert.Contains(t, written, "exports/unredacted/cases/vol-1.jsonl")
	assert.NotContains(t, written, "exports/redacted/cases/vol-empty.jsonl")

	lines := bytes.Split(bytes.TrimSpace(written["exports/redacted/volumes.jsonl"]), []byte("\n"))
	assert.Len(t, lines, 2)
	exports.AssertExpectations(t)
}
