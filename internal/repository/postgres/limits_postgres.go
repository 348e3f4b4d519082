package postgres

import (
	"context"
	"database/sql"

	"github.com/Cab789/capstone/internal/model"
	"github.com/Cab789/capstone/internal/repository"
)

const limitsColumns = `id, daily_signup_limit, daily_signups, daily_download_limit, daily_downloads`

// SiteLimitsPostgres manages the sitewide counters row (ID 1).
type SiteLimitsPostgres struct {
	db *sql.DB
}

// NewSiteLimitsPostgres creates a new SiteLimitsPostgres repository.
func NewSiteLimitsPostgres(db *sql.DB) *SiteLimitsPostgres {
	return &SiteLimitsPostgres{db: db}
}

var _ repository.SiteLimitsRepository = (*SiteLimitsPostgres)(nil)

func scanLimits(row interface{ Scan(...any) error }) (*model.SiteLimits, error) {
	var l model.SiteLimits
	if err := row.Scan(&l.ID, &l.DailySignupLimit, &l.DailySignups, &l.DailyDownloadLimit, &l.DailyDownloads); err != nil {
		return nil, err
	}
	return &l, nil
}

// Get returns the ID=1 row, creating it with defaults if missing.
func (r *SiteLimitsPostgres) Get(ctx context.Context) (*model.SiteLimits, error) {
	const q = `
		INSERT INTO site_limits (id) VALUES (1)
		ON CONFLICT (id) DO UPDATE SET id = site_limits.id
		RETURNING ` + limitsColumns
	return scanLimits(r.db.QueryRowContext(ctx, q))
}

// Add increments the counters under a row lock so concurrent signups and
// downloads cannot lose updates.
func (r *SiteLimitsPostgres) Add(ctx context.Context, signups, downloads int) (*model.SiteLimits, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO site_limits (id) VALUES (1) ON CONFLICT (id) DO NOTHING`); err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx, `
		SELECT id FROM site_limits WHERE id = 1 FOR UPDATE`); err != nil {
		return nil, err
	}
	limits, err := scanLimits(tx.QueryRowContext(ctx, `
		UPDATE site_limits
		SET daily_signups = daily_signups + $1, daily_downloads = daily_downloads + $2
		WHERE id = 1
		RETURNING `+limitsColumns, signups, downloads))
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return limits, nil
}

// Reset zeroes both daily counters.
func (r *SiteLimitsPostgres) Reset(ctx context.Context) error {
	const q = `UPDATE site_limits SET daily_signups = 0, daily_downloads = 0 WHERE id = 1`
	_, err := r.db.ExecContext(ctx, q)
	return err
}
