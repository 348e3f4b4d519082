package service

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/Cab789/capstone/internal/model"
	"github.com/Cab789/capstone/internal/repository"
	"github.com/Cab789/capstone/internal/storage"
)

var ErrExportRestricted = errors.New("export requires unlimited access")

// Storage prefixes for export artifacts. Files under the redacted prefix are
// publicly downloadable; the unredacted set requires unlimited access.
const (
	exportPrefixPublic     = "exports/redacted/"
	exportPrefixRestricted = "exports/unredacted/"
)

// ExportListResult is the service-level DTO for paginated exports.
type ExportListResult struct {
	Items []model.CaseExport `json:"data"`
	Total int                `json:"total"`
}

// ExportService manages bulk export artifacts: listing, downloading and the
// job that regenerates the jsonl files in object storage.
type ExportService interface {
	// List returns exports, hiding superseded ones unless withOld is set.
	List(ctx context.Context, withOld bool, limit, offset int) (*ExportListResult, error)

	// Download streams an export artifact. Non-public exports require
	// allowRestricted; public ones may be cached by the caller.
	Download(ctx context.Context, id int64, allowRestricted bool) (*model.CaseExport, io.ReadCloser, error)

	// Run supersedes existing exports and writes a fresh jsonl set:
	// reporters.jsonl, volumes.jsonl and one cases file per volume, in both
	// the public and restricted prefixes.
	Run(ctx context.Context) (int, error)
}

type exportService struct {
	exports repository.ExportRepository
	store   storage.Storage
}

// NewExportService constructs an ExportService.
func NewExportService(exports repository.ExportRepository, store storage.Storage) ExportService {
	return &exportService{exports: exports, store: store}
}

func (s *exportService) List(ctx context.Context, withOld bool, limit, offset int) (*ExportListResult, error) {
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}
	res, err := s.exports.List(ctx, withOld, repository.PageQuery{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	return &ExportListResult{Items: res.Items, Total: res.Total}, nil
}

func (s *exportService) Download(ctx context.Context, id int64, allowRestricted bool) (*model.CaseExport, io.ReadCloser, error) {
	e, err := s.exports.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, err
	}
	if !e.Public && !allowRestricted {
		return nil, nil, ErrExportRestricted
	}
	rc, _, err := s.store.Get(ctx, e.StorageKey)
	if err != nil {
		return nil, nil, err
	}
	return e, rc, nil
}

// jsonl renders a slice as one JSON object per line.
func jsonl[T any](items []T) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, item := range items {
		if err := enc.Encode(item); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

func (s *exportService) writeArtifact(ctx context.Context, prefix, name string, data []byte, public bool) error {
	key := prefix + name
	info, err := s.store.Put(ctx, key, bytes.NewReader(data), storage.PutObjectOptions{
		Size:        int64(len(data)),
		ContentType: "application/jsonl",
	})
	if err != nil {
		return fmt.Errorf("write export %s: %w", key, err)
	}
	_, err = s.exports.Create(ctx, &model.CaseExport{
		FileName:   name,
		StorageKey: info.Key,
		Size:       info.Size,
		Public:     public,
	})
	return err
}

func (s *exportService) writeSet(ctx context.Context, prefix string, public bool) (int, error) {
	written := 0

	reporters, err := s.exports.ListReporters(ctx)
	if err != nil {
		return written, err
	}
	data, err := jsonl(reporters)
	if err != nil {
		return written, err
	}
	if err := s.writeArtifact(ctx, prefix, "reporters.jsonl", data, public); err != nil {
		return written, err
	}
	written++

	volumes, err := s.exports.ListVolumes(ctx)
	if err != nil {
		return written, err
	}
	if data, err = jsonl(volumes); err != nil {
		return written, err
	}
	if err := s.writeArtifact(ctx, prefix, "volumes.jsonl", data, public); err != nil {
		return written, err
	}
	written++

	for _, v := range volumes {
		cases, err := s.exports.ListCasesByVolume(ctx, v.Barcode)
		if err != nil {
			return written, err
		}
		if len(cases) == 0 {
			continue
		}
		if data, err = jsonl(cases); err != nil {
			return written, err
		}
		name := fmt.Sprintf("cases/%s.jsonl", v.Barcode)
		if err := s.writeArtifact(ctx, prefix, name, data, public); err != nil {
			return written, err
		}
		written++
	}
	return written, nil
}

func (s *exportService) Run(ctx context.Context) (int, error) {
	if err := s.exports.SupersedeAll(ctx); err != nil {
		return 0, err
	}
	total := 0
	n, err := s.writeSet(ctx, exportPrefixPublic, true)
	total += n
	if err != nil {
		return total, err
	}
	n, err = s.writeSet(ctx, exportPrefixRestricted, false)
	total += n
	return total, err
}
