package repository

import (
	"context"

	"github.com/Cab789/capstone/internal/model"
)

// SiteLimitsRepository manages the sitewide counters singleton (row ID 1).
type SiteLimitsRepository interface {
	// Get returns the singleton row, creating it if necessary.
	Get(ctx context.Context) (*model.SiteLimits, error)

	// Add atomically increments counters inside a transaction with a row
	// lock, e.g. Add(ctx, 1, 0) records one signup.
	Add(ctx context.Context, signups, downloads int) (*model.SiteLimits, error)

	// Reset zeroes both daily counters.
	Reset(ctx context.Context) error
}
