package postgres

import (
	"context"
	"database/sql"

	"github.com/Cab789/capstone/internal/model"
	"github.com/Cab789/capstone/internal/repository"
)

const exportColumns = `id, file_name, storage_key, size, public, superseded, created_at`

// ExportPostgres is a PostgreSQL implementation of repository.ExportRepository.
type ExportPostgres struct {
	db *sql.DB
}

// NewExportPostgres creates a new ExportPostgres repository.
func NewExportPostgres(db *sql.DB) *ExportPostgres {
	return &ExportPostgres{db: db}
}

var _ repository.ExportRepository = (*ExportPostgres)(nil)

func scanExport(row interface{ Scan(...any) error }) (*model.CaseExport, error) {
	var e model.CaseExport
	if err := row.Scan(&e.ID, &e.FileName, &e.StorageKey, &e.Size, &e.Public, &e.Superseded, &e.CreatedAt); err != nil {
		return nil, err
	}
	return &e, nil
}

// Create inserts an export record and returns the stored row.
func (r *ExportPostgres) Create(ctx context.Context, e *model.CaseExport) (*model.CaseExport, error) {
	const q = `
		INSERT INTO case_exports (file_name, storage_key, size, public, superseded)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + exportColumns
	return scanExport(r.db.QueryRowContext(ctx, q, e.FileName, e.StorageKey, e.Size, e.Public, e.Superseded))
}

// FindByID fetches an export by ID.
func (r *ExportPostgres) FindByID(ctx context.Context, id int64) (*model.CaseExport, error) {
	const q = `SELECT ` + exportColumns + ` FROM case_exports WHERE id = $1`
	return scanExport(r.db.QueryRowContext(ctx, q, id))
}

// List returns exports, hiding superseded ones unless withOld is set.
func (r *ExportPostgres) List(ctx context.Context, withOld bool, pq repository.PageQuery) (*repository.PageResult[model.CaseExport], error) {
	const qCount = `SELECT COUNT(*) FROM case_exports WHERE $1 OR NOT superseded`
	var total int
	if err := r.db.QueryRowContext(ctx, qCount, withOld).Scan(&total); err != nil {
		return nil, err
	}

	const qList = `
		SELECT ` + exportColumns + `
		FROM case_exports
		WHERE $1 OR NOT superseded
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.QueryContext(ctx, qList, withOld, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.CaseExport, 0)
	for rows.Next() {
		e, err := scanExport(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.CaseExport]{Items: items, Total: total}, nil
}

// SupersedeAll marks every existing export superseded.
func (r *ExportPostgres) SupersedeAll(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `UPDATE case_exports SET superseded = TRUE WHERE NOT superseded`)
	return err
}

// ListReporters returns every reporter for the bulk export job.
func (r *ExportPostgres) ListReporters(ctx context.Context) ([]model.Reporter, error) {
	const q = `SELECT id, full_name, short_name, short_name_slug FROM reporters ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reporters := make([]model.Reporter, 0)
	for rows.Next() {
		var rep model.Reporter
		if err := rows.Scan(&rep.ID, &rep.FullName, &rep.ShortName, &rep.ShortNameSlug); err != nil {
			return nil, err
		}
		reporters = append(reporters, rep)
	}
	return reporters, rows.Err()
}

// ListVolumes returns every volume.
func (r *ExportPostgres) ListVolumes(ctx context.Context) ([]model.Volume, error) {
	const q = `SELECT barcode, reporter_id, volume_number, volume_number_slug, pdf_key FROM volumes ORDER BY barcode`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	volumes := make([]model.Volume, 0)
	for rows.Next() {
		var v model.Volume
		if err := rows.Scan(&v.Barcode, &v.ReporterID, &v.VolumeNumber, &v.VolumeNumberSlug, &v.PDFKey); err != nil {
			return nil, err
		}
		volumes = append(volumes, v)
	}
	return volumes, rows.Err()
}

// ListCasesByVolume returns the cases of one volume by barcode.
func (r *ExportPostgres) ListCasesByVolume(ctx context.Context, barcode string) ([]model.Case, error) {
	const q = `
		SELECT ` + caseColumns + caseFrom + `
		WHERE c.volume_barcode = $1
		ORDER BY c.first_page, c.id
	`
	rows, err := r.db.QueryContext(ctx, q, barcode)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cases := make([]model.Case, 0)
	for rows.Next() {
		c, err := scanCase(rows)
		if err != nil {
			return nil, err
		}
		cases = append(cases, *c)
	}
	return cases, rows.Err()
}
