package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/Cab789/capstone/internal/model"
	"github.com/Cab789/capstone/internal/repository"
)

const caseColumns = `c.id, c.reporter_id, c.volume_barcode, c.jurisdiction_id,
		c.name, c.name_abbreviation, c.decision_date_original, c.decision_date,
		c.first_page, c.last_page, c.frontend_url, c.human_corrected,
		c.no_index, c.robots_txt_until, c.no_index_redacted, c.no_index_elided,
		c.pdf_key, c.last_updated, NOT j.whitelisted AS restricted`

const caseFrom = ` FROM cases c JOIN jurisdictions j ON j.id = c.jurisdiction_id `

// CaseLawPostgres is a PostgreSQL implementation of repository.CaseRepository.
type CaseLawPostgres struct {
	db *sql.DB
}

// NewCaseLawPostgres creates a new CaseLawPostgres repository.
func NewCaseLawPostgres(db *sql.DB) *CaseLawPostgres {
	return &CaseLawPostgres{db: db}
}

var _ repository.CaseRepository = (*CaseLawPostgres)(nil)

func scanCase(row interface{ Scan(...any) error }) (*model.Case, error) {
	var (
		c            model.Case
		decisionDate sql.NullTime
		robotsUntil  sql.NullTime
		redacted     []byte
		elided       []byte
	)
	if err := row.Scan(
		&c.ID, &c.ReporterID, &c.VolumeBarcode, &c.JurisdictionID,
		&c.Name, &c.NameAbbreviation, &c.DecisionDateOriginal, &decisionDate,
		&c.FirstPage, &c.LastPage, &c.FrontendURL, &c.HumanCorrected,
		&c.NoIndex, &robotsUntil, &redacted, &elided,
		&c.PDFKey, &c.LastUpdated, &c.Restricted,
	); err != nil {
		return nil, err
	}
	if decisionDate.Valid {
		c.DecisionDate = &decisionDate.Time
	}
	if robotsUntil.Valid {
		c.RobotsTxtUntil = &robotsUntil.Time
	}
	if err := json.Unmarshal(redacted, &c.NoIndexRedacted); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(elided, &c.NoIndexElided); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CaseLawPostgres) queryCases(ctx context.Context, q string, args ...any) ([]model.Case, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
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

// ListSeries returns reporters matching the series slug, each with its volumes.
func (r *CaseLawPostgres) ListSeries(ctx context.Context, seriesSlug string) ([]repository.SeriesListing, error) {
	const qReporters = `
		SELECT id, full_name, short_name, short_name_slug
		FROM reporters
		WHERE short_name_slug = $1
		ORDER BY full_name, id
	`
	rows, err := r.db.QueryContext(ctx, qReporters, seriesSlug)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	listings := make([]repository.SeriesListing, 0)
	for rows.Next() {
		var rep model.Reporter
		if err := rows.Scan(&rep.ID, &rep.FullName, &rep.ShortName, &rep.ShortNameSlug); err != nil {
			return nil, err
		}
		listings = append(listings, repository.SeriesListing{Reporter: rep})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	const qVolumes = `
		SELECT barcode, reporter_id, volume_number, volume_number_slug, pdf_key
		FROM volumes
		WHERE reporter_id = $1
		ORDER BY volume_number_slug, barcode
	`
	for i := range listings {
		vrows, err := r.db.QueryContext(ctx, qVolumes, listings[i].Reporter.ID)
		if err != nil {
			return nil, err
		}
		vols := make([]model.Volume, 0)
		for vrows.Next() {
			var v model.Volume
			if err := vrows.Scan(&v.Barcode, &v.ReporterID, &v.VolumeNumber, &v.VolumeNumberSlug, &v.PDFKey); err != nil {
				vrows.Close()
				return nil, err
			}
			vols = append(vols, v)
		}
		if err := vrows.Err(); err != nil {
			vrows.Close()
			return nil, err
		}
		vrows.Close()
		listings[i].Volumes = vols
	}
	return listings, nil
}

// ListVolumeCases returns the cases of one volume of a series.
func (r *CaseLawPostgres) ListVolumeCases(ctx context.Context, seriesSlug, volumeSlug string) ([]model.Case, error) {
	const q = `
		SELECT ` + caseColumns + caseFrom + `
		JOIN volumes v ON v.barcode = c.volume_barcode
		JOIN reporters rep ON rep.id = v.reporter_id
		WHERE rep.short_name_slug = $1 AND v.volume_number_slug = $2
		ORDER BY c.first_page, c.id
	`
	return r.queryCases(ctx, q, seriesSlug, volumeSlug)
}

// FindByFrontendURL returns all cases with the given canonical path.
func (r *CaseLawPostgres) FindByFrontendURL(ctx context.Context, frontendURL string) ([]model.Case, error) {
	const q = `SELECT ` + caseColumns + caseFrom + `WHERE c.frontend_url = $1 ORDER BY c.id`
	return r.queryCases(ctx, q, frontendURL)
}

// FindByNormalizedCite returns cases carrying the normalized citation.
func (r *CaseLawPostgres) FindByNormalizedCite(ctx context.Context, normalizedCite string) ([]model.Case, error) {
	const q = `
		SELECT DISTINCT ` + caseColumns + caseFrom + `
		JOIN citations ct ON ct.case_id = c.id
		WHERE ct.normalized_cite = $1
		ORDER BY c.id
	`
	return r.queryCases(ctx, q, normalizedCite)
}

// FindByID fetches a single case by ID.
func (r *CaseLawPostgres) FindByID(ctx context.Context, id int64) (*model.Case, error) {
	const q = `SELECT ` + caseColumns + caseFrom + `WHERE c.id = $1`
	return scanCase(r.db.QueryRowContext(ctx, q, id))
}

// Update persists mutable case metadata.
func (r *CaseLawPostgres) Update(ctx context.Context, c *model.Case) error {
	redacted, err := json.Marshal(orEmpty(c.NoIndexRedacted))
	if err != nil {
		return err
	}
	elided, err := json.Marshal(orEmpty(c.NoIndexElided))
	if err != nil {
		return err
	}
	const q = `
		UPDATE cases SET
			name = $2, name_abbreviation = $3, decision_date_original = $4,
			decision_date = $5, human_corrected = $6, no_index = $7,
			robots_txt_until = $8, no_index_redacted = $9, no_index_elided = $10,
			pdf_key = $11, last_updated = now()
		WHERE id = $1
	`
	_, err = r.db.ExecContext(ctx, q,
		c.ID, c.Name, c.NameAbbreviation, c.DecisionDateOriginal,
		c.DecisionDate, c.HumanCorrected, c.NoIndex,
		c.RobotsTxtUntil, redacted, elided, c.PDFKey,
	)
	return err
}

func orEmpty(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
}

// Random returns one randomly chosen case.
func (r *CaseLawPostgres) Random(ctx context.Context) (*model.Case, error) {
	const q = `SELECT ` + caseColumns + caseFrom + `ORDER BY random() LIMIT 1`
	return scanCase(r.db.QueryRowContext(ctx, q))
}

// ListRobotsExcluded returns no_index cases whose robots_txt_until is in the future.
func (r *CaseLawPostgres) ListRobotsExcluded(ctx context.Context, now time.Time) ([]model.Case, error) {
	const q = `
		SELECT ` + caseColumns + caseFrom + `
		WHERE c.no_index AND c.robots_txt_until IS NOT NULL AND c.robots_txt_until > $1
		ORDER BY c.id
	`
	return r.queryCases(ctx, q, now)
}

// Citations returns the citations of a case.
func (r *CaseLawPostgres) Citations(ctx context.Context, caseID int64) ([]model.Citation, error) {
	const q = `
		SELECT id, case_id, type, cite, normalized_cite
		FROM citations
		WHERE case_id = $1
		ORDER BY id
	`
	rows, err := r.db.QueryContext(ctx, q, caseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cites := make([]model.Citation, 0)
	for rows.Next() {
		var ct model.Citation
		if err := rows.Scan(&ct.ID, &ct.CaseID, &ct.Type, &ct.Cite, &ct.NormalizedCite); err != nil {
			return nil, err
		}
		cites = append(cites, ct)
	}
	return cites, rows.Err()
}

// GetBody returns the rendered case body.
func (r *CaseLawPostgres) GetBody(ctx context.Context, caseID int64) (*model.CaseBody, error) {
	const q = `SELECT case_id, html, updated_at FROM case_bodies WHERE case_id = $1`
	var b model.CaseBody
	if err := r.db.QueryRowContext(ctx, q, caseID).Scan(&b.CaseID, &b.HTML, &b.UpdatedAt); err != nil {
		return nil, err
	}
	return &b, nil
}

// UpdateBody replaces the rendered case body.
func (r *CaseLawPostgres) UpdateBody(ctx context.Context, b *model.CaseBody) error {
	const q = `
		INSERT INTO case_bodies (case_id, html, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (case_id) DO UPDATE SET html = EXCLUDED.html, updated_at = now()
	`
	_, err := r.db.ExecContext(ctx, q, b.CaseID, b.HTML)
	return err
}

// GetPages returns the OCR page blocks of a case.
func (r *CaseLawPostgres) GetPages(ctx context.Context, caseID int64) ([]model.CasePage, error) {
	const q = `SELECT id, case_id, blocks FROM case_pages WHERE case_id = $1 ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q, caseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	pages := make([]model.CasePage, 0)
	for rows.Next() {
		var (
			p      model.CasePage
			blocks []byte
		)
		if err := rows.Scan(&p.ID, &p.CaseID, &blocks); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(blocks, &p.Blocks); err != nil {
			return nil, err
		}
		pages = append(pages, p)
	}
	return pages, rows.Err()
}

// UpdatePage replaces one page's blocks.
func (r *CaseLawPostgres) UpdatePage(ctx context.Context, p *model.CasePage) error {
	blocks, err := json.Marshal(p.Blocks)
	if err != nil {
		return err
	}
	const q = `UPDATE case_pages SET blocks = $2 WHERE id = $1`
	_, err = r.db.ExecContext(ctx, q, p.ID, blocks)
	return err
}

// AddCorrectionLog records an editor session.
func (r *CaseLawPostgres) AddCorrectionLog(ctx context.Context, l *model.CorrectionLog) (*model.CorrectionLog, error) {
	const q = `
		INSERT INTO correction_logs (case_id, user_id, description)
		VALUES ($1, $2, $3)
		RETURNING id, case_id, user_id, description, created_at
	`
	var out model.CorrectionLog
	if err := r.db.QueryRowContext(ctx, q, l.CaseID, l.UserID, l.Description).Scan(
		&out.ID, &out.CaseID, &out.UserID, &out.Description, &out.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &out, nil
}

// FindVolume returns a volume by barcode.
func (r *CaseLawPostgres) FindVolume(ctx context.Context, barcode string) (*model.Volume, error) {
	const q = `
		SELECT barcode, reporter_id, volume_number, volume_number_slug, pdf_key
		FROM volumes
		WHERE barcode = $1
	`
	var v model.Volume
	if err := r.db.QueryRowContext(ctx, q, barcode).Scan(
		&v.Barcode, &v.ReporterID, &v.VolumeNumber, &v.VolumeNumberSlug, &v.PDFKey,
	); err != nil {
		return nil, err
	}
	return &v, nil
}
