package repository

import (
	"context"

	"github.com/Cab789/capstone/internal/model"
)

// UserRepository defines data access for user accounts using SQL queries only.
// No business logic here — strictly persistence operations.
type UserRepository interface {
	// Create inserts a new user record and returns the stored row.
	Create(ctx context.Context, u *model.User) (*model.User, error)

	// FindByID returns a user by ID.
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByEmail returns a user by email address, matched case-insensitively.
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// NormalizedEmailExists reports whether any user has the given
	// normalized email.
	NormalizedEmailExists(ctx context.Context, normalized string) (bool, error)

	// Update persists all mutable fields of the user.
	Update(ctx context.Context, u *model.User) error

	// UpdateAllowance persists only the allowance fields, mirroring the
	// narrow update used on every restricted case view.
	UpdateAllowance(ctx context.Context, u *model.User) error
}

// TokenRepository stores API keys. Each user holds at most one.
type TokenRepository interface {
	// Replace deletes any existing token for the user and inserts the new one.
	Replace(ctx context.Context, t *model.AuthToken) error

	// FindByKey returns the token row for an API key.
	FindByKey(ctx context.Context, key string) (*model.AuthToken, error)

	// FindByUser returns the user's token, or sql.ErrNoRows if none exists.
	FindByUser(ctx context.Context, userID string) (*model.AuthToken, error)
}

// BlocklistRepository reads the email blocklist.
type BlocklistRepository interface {
	// List returns all block rules.
	List(ctx context.Context) ([]model.EmailBlockRule, error)
}

// MailingListRepository stores newsletter signups.
type MailingListRepository interface {
	// Add inserts a subscription. Duplicate emails return ErrDuplicate.
	Add(ctx context.Context, email string) (*model.MailingListEntry, error)
}

// HistoryRepository stores case views for users with track_history enabled.
type HistoryRepository interface {
	Append(ctx context.Context, userID string, caseID int64) error
	ListByUser(ctx context.Context, userID string, pq PageQuery) (*PageResult[model.UserHistoryEntry], error)
}
