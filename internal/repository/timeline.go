package repository

import (
	"context"

	"github.com/Cab789/capstone/internal/model"
)

// TimelineRepository defines data access for timelines.
type TimelineRepository interface {
	// Create inserts a timeline and returns the stored row.
	Create(ctx context.Context, t *model.Timeline) (*model.Timeline, error)

	// FindByID returns a timeline by its short ID.
	FindByID(ctx context.Context, id string) (*model.Timeline, error)

	// ListByUser returns the timelines created by a user.
	ListByUser(ctx context.Context, userID string) ([]model.Timeline, error)

	// Update replaces the timeline document.
	Update(ctx context.Context, t *model.Timeline) error

	// Delete removes a timeline. Missing rows are not an error.
	Delete(ctx context.Context, id string) error
}
