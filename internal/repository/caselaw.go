package repository

import (
	"context"
	"time"

	"github.com/Cab789/capstone/internal/model"
)

// SeriesListing groups a reporter with its volumes for the series page.
// Multiple reporters can share a short-name slug.
type SeriesListing struct {
	Reporter model.Reporter `json:"reporter"`
	Volumes  []model.Volume `json:"volumes"`
}

// CaseRepository defines data access for reporters, volumes, cases and
// citations. Restricted is derived from the jurisdiction whitelist when a
// case row is loaded.
type CaseRepository interface {
	// ListSeries returns all reporters matching the series slug, each with
	// its volumes. An empty result means the series is unknown.
	ListSeries(ctx context.Context, seriesSlug string) ([]SeriesListing, error)

	// ListVolumeCases returns the cases of one volume of a series, ordered
	// by first page.
	ListVolumeCases(ctx context.Context, seriesSlug, volumeSlug string) ([]model.Case, error)

	// FindByFrontendURL returns all cases whose canonical path matches,
	// for citation lookup and disambiguation.
	FindByFrontendURL(ctx context.Context, frontendURL string) ([]model.Case, error)

	// FindByNormalizedCite returns cases carrying the normalized citation.
	FindByNormalizedCite(ctx context.Context, normalizedCite string) ([]model.Case, error)

	// FindByID returns a case by ID.
	FindByID(ctx context.Context, id int64) (*model.Case, error)

	// Update persists mutable case metadata (name, decision date, redaction
	// maps, flags).
	Update(ctx context.Context, c *model.Case) error

	// Random returns one randomly chosen case.
	Random(ctx context.Context) (*model.Case, error)

	// ListRobotsExcluded returns no_index cases whose robots_txt_until is
	// after now.
	ListRobotsExcluded(ctx context.Context, now time.Time) ([]model.Case, error)

	// Citations returns the citations of a case.
	Citations(ctx context.Context, caseID int64) ([]model.Citation, error)

	// GetBody returns the rendered case body.
	GetBody(ctx context.Context, caseID int64) (*model.CaseBody, error)

	// UpdateBody replaces the rendered case body.
	UpdateBody(ctx context.Context, b *model.CaseBody) error

	// GetPages returns the OCR page blocks for a case.
	GetPages(ctx context.Context, caseID int64) ([]model.CasePage, error)

	// UpdatePage replaces one page's blocks.
	UpdatePage(ctx context.Context, p *model.CasePage) error

	// AddCorrectionLog records an editor session.
	AddCorrectionLog(ctx context.Context, l *model.CorrectionLog) (*model.CorrectionLog, error)

	// FindVolume returns a volume by barcode.
	FindVolume(ctx context.Context, barcode string) (*model.Volume, error)
}

// ExportRepository defines data access for bulk export artifacts.
type ExportRepository interface {
	// Create inserts an export record.
	Create(ctx context.Context, e *model.CaseExport) (*model.CaseExport, error)

	// FindByID returns an export by ID.
	FindByID(ctx context.Context, id int64) (*model.CaseExport, error)

	// List returns exports, excluding superseded ones unless withOld is set.
	List(ctx context.Context, withOld bool, pq PageQuery) (*PageResult[model.CaseExport], error)

	// SupersedeAll marks every existing export superseded, ahead of a new
	// export run.
	SupersedeAll(ctx context.Context) error

	// ListReporters returns every reporter, for the bulk export job.
	ListReporters(ctx context.Context) ([]model.Reporter, error)

	// ListVolumes returns every volume.
	ListVolumes(ctx context.Context) ([]model.Volume, error)

	// ListCasesByVolume returns the cases of one volume by barcode.
	ListCasesByVolume(ctx context.Context, barcode string) ([]model.Case, error)
}
