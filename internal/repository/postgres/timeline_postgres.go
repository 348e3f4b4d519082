package postgres

import (
	"context"
	"database/sql"

	"github.com/Cab789/capstone/internal/model"
	"github.com/Cab789/capstone/internal/repository"
)

const timelineColumns = `id, created_by, timeline, created_at, updated_at`

// TimelinePostgres is a PostgreSQL implementation of repository.TimelineRepository.
type TimelinePostgres struct {
	db *sql.DB
}

// NewTimelinePostgres creates a new TimelinePostgres repository.
func NewTimelinePostgres(db *sql.DB) *TimelinePostgres {
	return &TimelinePostgres{db: db}
}

var _ repository.TimelineRepository = (*TimelinePostgres)(nil)

func scanTimeline(row interface{ Scan(...any) error }) (*model.Timeline, error) {
	var (
		t   model.Timeline
		doc []byte
	)
	if err := row.Scan(&t.ID, &t.CreatedBy, &doc, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	t.Document = doc
	return &t, nil
}

// Create inserts a timeline and returns the stored row.
func (r *TimelinePostgres) Create(ctx context.Context, t *model.Timeline) (*model.Timeline, error) {
	const q = `
		INSERT INTO timelines (id, created_by, timeline)
		VALUES ($1, $2, $3)
		RETURNING ` + timelineColumns
	return scanTimeline(r.db.QueryRowContext(ctx, q, t.ID, t.CreatedBy, []byte(t.Document)))
}

// FindByID fetches a timeline by its short ID.
func (r *TimelinePostgres) FindByID(ctx context.Context, id string) (*model.Timeline, error) {
	const q = `SELECT ` + timelineColumns + ` FROM timelines WHERE id = $1`
	return scanTimeline(r.db.QueryRowContext(ctx, q, id))
}

// ListByUser returns the timelines created by a user, newest first.
func (r *TimelinePostgres) ListByUser(ctx context.Context, userID string) ([]model.Timeline, error) {
	const q = `SELECT ` + timelineColumns + ` FROM timelines WHERE created_by = $1 ORDER BY created_at DESC, id`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Timeline, 0)
	for rows.Next() {
		t, err := scanTimeline(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *t)
	}
	return items, rows.Err()
}

// Update replaces the timeline document.
func (r *TimelinePostgres) Update(ctx context.Context, t *model.Timeline) error {
	const q = `UPDATE timelines SET timeline = $2, updated_at = now() WHERE id = $1`
	_, err := r.db.ExecContext(ctx, q, t.ID, []byte(t.Document))
	return err
}

// Delete removes a timeline. Missing rows are not an error.
func (r *TimelinePostgres) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM timelines WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	_, _ = res.RowsAffected()
	return nil
}
