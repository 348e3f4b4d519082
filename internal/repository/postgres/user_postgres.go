package postgres

import (
	"context"
	"database/sql"

	"github.com/Cab789/capstone/internal/model"
	"github.com/Cab789/capstone/internal/repository"
)

const userColumns = `id, email, normalized_email, first_name, last_name, password_hash,
		total_case_allowance, case_allowance_remaining, case_allowance_last_updated,
		unlimited_access, harvard_access, unlimited_access_until,
		is_staff, is_active, email_verified, activation_nonce, nonce_expires,
		date_joined, agreed_to_tos, track_history, mailing_list,
		deactivated_by_user, deactivated_date`

// UserPostgres is a PostgreSQL implementation of repository.UserRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type UserPostgres struct {
	db *sql.DB
}

// NewUserPostgres creates a new UserPostgres repository.
func NewUserPostgres(db *sql.DB) *UserPostgres {
	return &UserPostgres{db: db}
}

var _ repository.UserRepository = (*UserPostgres)(nil)

func scanUser(row interface{ Scan(...any) error }) (*model.User, error) {
	var (
		u               model.User
		unlimitedUntil  sql.NullTime
		nonceExpires    sql.NullTime
		deactivatedDate sql.NullTime
	)
	if err := row.Scan(
		&u.ID, &u.Email, &u.NormalizedEmail, &u.FirstName, &u.LastName, &u.PasswordHash,
		&u.TotalCaseAllowance, &u.CaseAllowanceRemaining, &u.CaseAllowanceLastUpdated,
		&u.UnlimitedAccess, &u.HarvardAccess, &unlimitedUntil,
		&u.IsStaff, &u.IsActive, &u.EmailVerified, &u.ActivationNonce, &nonceExpires,
		&u.DateJoined, &u.AgreedToTOS, &u.TrackHistory, &u.MailingList,
		&u.DeactivatedByUser, &deactivatedDate,
	); err != nil {
		return nil, err
	}
	if unlimitedUntil.Valid {
		u.UnlimitedAccessUntil = &unlimitedUntil.Time
	}
	if nonceExpires.Valid {
		u.NonceExpires = &nonceExpires.Time
	}
	if deactivatedDate.Valid {
		u.DeactivatedDate = &deactivatedDate.Time
	}
	return &u, nil
}

// Create inserts a new user row and returns the stored record.
func (r *UserPostgres) Create(ctx context.Context, u *model.User) (*model.User, error) {
	const q = `
		INSERT INTO users (id, email, normalized_email, first_name, last_name, password_hash,
			total_case_allowance, case_allowance_remaining, case_allowance_last_updated,
			unlimited_access, harvard_access, unlimited_access_until,
			is_staff, is_active, email_verified, activation_nonce, nonce_expires,
			date_joined, agreed_to_tos, track_history, mailing_list,
			deactivated_by_user, deactivated_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23)
		RETURNING ` + userColumns
	row := r.db.QueryRowContext(ctx, q,
		u.ID, u.Email, u.NormalizedEmail, u.FirstName, u.LastName, u.PasswordHash,
		u.TotalCaseAllowance, u.CaseAllowanceRemaining, u.CaseAllowanceLastUpdated,
		u.UnlimitedAccess, u.HarvardAccess, u.UnlimitedAccessUntil,
		u.IsStaff, u.IsActive, u.EmailVerified, u.ActivationNonce, u.NonceExpires,
		u.DateJoined, u.AgreedToTOS, u.TrackHistory, u.MailingList,
		u.DeactivatedByUser, u.DeactivatedDate,
	)
	return scanUser(row)
}

// FindByID fetches a single user by ID.
func (r *UserPostgres) FindByID(ctx context.Context, id string) (*model.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.db.QueryRowContext(ctx, q, id))
}

// FindByEmail fetches a single user by email, case-insensitively. Logins are
// case-insensitive because signups with the same address in different
// capitalization are rejected.
func (r *UserPostgres) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE lower(email) = lower($1)`
	return scanUser(r.db.QueryRowContext(ctx, q, email))
}

// NormalizedEmailExists reports whether the normalized address is taken.
func (r *UserPostgres) NormalizedEmailExists(ctx context.Context, normalized string) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM users WHERE normalized_email = $1)`
	var exists bool
	if err := r.db.QueryRowContext(ctx, q, normalized).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// Update persists all mutable user fields.
func (r *UserPostgres) Update(ctx context.Context, u *model.User) error {
	const q = `
		UPDATE users SET
			email = $2, normalized_email = $3, first_name = $4, last_name = $5,
			password_hash = $6, total_case_allowance = $7, case_allowance_remaining = $8,
			case_allowance_last_updated = $9, unlimited_access = $10, harvard_access = $11,
			unlimited_access_until = $12, is_staff = $13, is_active = $14,
			email_verified = $15, activation_nonce = $16, nonce_expires = $17,
			agreed_to_tos = $18, track_history = $19, mailing_list = $20,
			deactivated_by_user = $21, deactivated_date = $22
		WHERE id = $1
	`
	_, err := r.db.ExecContext(ctx, q,
		u.ID, u.Email, u.NormalizedEmail, u.FirstName, u.LastName,
		u.PasswordHash, u.TotalCaseAllowance, u.CaseAllowanceRemaining,
		u.CaseAllowanceLastUpdated, u.UnlimitedAccess, u.HarvardAccess,
		u.UnlimitedAccessUntil, u.IsStaff, u.IsActive,
		u.EmailVerified, u.ActivationNonce, u.NonceExpires,
		u.AgreedToTOS, u.TrackHistory, u.MailingList,
		u.DeactivatedByUser, u.DeactivatedDate,
	)
	return err
}

// UpdateAllowance persists only the allowance fields.
func (r *UserPostgres) UpdateAllowance(ctx context.Context, u *model.User) error {
	const q = `
		UPDATE users
		SET case_allowance_remaining = $2, case_allowance_last_updated = $3
		WHERE id = $1
	`
	_, err := r.db.ExecContext(ctx, q, u.ID, u.CaseAllowanceRemaining, u.CaseAllowanceLastUpdated)
	return err
}

// TokenPostgres is a PostgreSQL implementation of repository.TokenRepository.
type TokenPostgres struct {
	db *sql.DB
}

// NewTokenPostgres creates a new TokenPostgres repository.
func NewTokenPostgres(db *sql.DB) *TokenPostgres {
	return &TokenPostgres{db: db}
}

var _ repository.TokenRepository = (*TokenPostgres)(nil)

// Replace deletes any existing token for the user and inserts the new one,
// inside a transaction.
func (r *TokenPostgres) Replace(ctx context.Context, t *model.AuthToken) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM auth_tokens WHERE user_id = $1`, t.UserID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO auth_tokens (key, user_id, created_at) VALUES ($1, $2, $3)`,
		t.Key, t.UserID, t.CreatedAt,
	); err != nil {
		return err
	}
	return tx.Commit()
}

// FindByKey fetches a token row by API key.
func (r *TokenPostgres) FindByKey(ctx context.Context, key string) (*model.AuthToken, error) {
	const q = `SELECT key, user_id, created_at FROM auth_tokens WHERE key = $1`
	var t model.AuthToken
	if err := r.db.QueryRowContext(ctx, q, key).Scan(&t.Key, &t.UserID, &t.CreatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

// FindByUser fetches a user's token.
func (r *TokenPostgres) FindByUser(ctx context.Context, userID string) (*model.AuthToken, error) {
	const q = `SELECT key, user_id, created_at FROM auth_tokens WHERE user_id = $1`
	var t model.AuthToken
	if err := r.db.QueryRowContext(ctx, q, userID).Scan(&t.Key, &t.UserID, &t.CreatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}
