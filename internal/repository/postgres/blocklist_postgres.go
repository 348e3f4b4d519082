package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Cab789/capstone/internal/model"
	"github.com/Cab789/capstone/internal/repository"
)

// BlocklistPostgres is a PostgreSQL implementation of repository.BlocklistRepository.
type BlocklistPostgres struct {
	db *sql.DB
}

// NewBlocklistPostgres creates a new BlocklistPostgres repository.
func NewBlocklistPostgres(db *sql.DB) *BlocklistPostgres {
	return &BlocklistPostgres{db: db}
}

var _ repository.BlocklistRepository = (*BlocklistPostgres)(nil)

// List returns all block rules.
func (r *BlocklistPostgres) List(ctx context.Context) ([]model.EmailBlockRule, error) {
	const q = `SELECT id, domain, regex, notes, created_at FROM email_blocklist ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rules := make([]model.EmailBlockRule, 0)
	for rows.Next() {
		var b model.EmailBlockRule
		if err := rows.Scan(&b.ID, &b.Domain, &b.Regex, &b.Notes, &b.CreatedAt); err != nil {
			return nil, err
		}
		rules = append(rules, b)
	}
	return rules, rows.Err()
}

// MailingListPostgres is a PostgreSQL implementation of repository.MailingListRepository.
type MailingListPostgres struct {
	db *sql.DB
}

// NewMailingListPostgres creates a new MailingListPostgres repository.
func NewMailingListPostgres(db *sql.DB) *MailingListPostgres {
	return &MailingListPostgres{db: db}
}

var _ repository.MailingListRepository = (*MailingListPostgres)(nil)

// Add inserts a subscription. A conflicting email maps to ErrDuplicate.
func (r *MailingListPostgres) Add(ctx context.Context, email string) (*model.MailingListEntry, error) {
	const q = `
		INSERT INTO mailing_list (email)
		VALUES ($1)
		ON CONFLICT (email) DO NOTHING
		RETURNING id, email, do_not_email, created_at
	`
	var e model.MailingListEntry
	err := r.db.QueryRowContext(ctx, q, email).Scan(&e.ID, &e.Email, &e.DoNotEmail, &e.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrDuplicate
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// HistoryPostgres is a PostgreSQL implementation of repository.HistoryRepository.
type HistoryPostgres struct {
	db *sql.DB
}

// NewHistoryPostgres creates a new HistoryPostgres repository.
func NewHistoryPostgres(db *sql.DB) *HistoryPostgres {
	return &HistoryPostgres{db: db}
}

var _ repository.HistoryRepository = (*HistoryPostgres)(nil)

// Append records one case view.
func (r *HistoryPostgres) Append(ctx context.Context, userID string, caseID int64) error {
	const q = `INSERT INTO user_history (user_id, case_id) VALUES ($1, $2)`
	_, err := r.db.ExecContext(ctx, q, userID, caseID)
	return err
}

// ListByUser returns a page of the user's viewing history, newest first.
func (r *HistoryPostgres) ListByUser(ctx context.Context, userID string, pq repository.PageQuery) (*repository.PageResult[model.UserHistoryEntry], error) {
	const qCount = `SELECT COUNT(*) FROM user_history WHERE user_id = $1`
	var total int
	if err := r.db.QueryRowContext(ctx, qCount, userID).Scan(&total); err != nil {
		return nil, err
	}

	const qList = `
		SELECT id, user_id, case_id, viewed_at
		FROM user_history
		WHERE user_id = $1
		ORDER BY viewed_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.QueryContext(ctx, qList, userID, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.UserHistoryEntry, 0)
	for rows.Next() {
		var h model.UserHistoryEntry
		if err := rows.Scan(&h.ID, &h.UserID, &h.CaseID, &h.ViewedAt); err != nil {
			return nil, err
		}
		items = append(items, h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.UserHistoryEntry]{Items: items, Total: total}, nil
}
