package event

import (
	"context"

	"github.com/skicrew/inscriptions/internal/domain"
)

// Repository defines the data access contract for events.
// Implementations must be safe for concurrent use.
type Repository interface {
	// Get returns a single event. Returns ErrNotFound if it doesn't exist.
	Get(ctx context.Context, id int64) (*domain.Event, error)

	// List returns events matching the given filter, ordered by start_date ASC.
	List(ctx context.Context, filter ListFilter) ([]domain.Event, int, error)

	// Create inserts a new event and returns its ID.
	Create(ctx context.Context, e *domain.Event) (int64, error)

	// Update modifies an event. Only non-nil fields in the update are applied.
	Update(ctx context.Context, id int64, u UpdateFields) error

	// Delete removes an event and, via FK cascade, its inscription sheets.
	Delete(ctx context.Context, id int64) error

	// StatusCounts returns per-status inscription counts for the event.
	StatusCounts(ctx context.Context, id int64) (*domain.EventStatusCounts, error)
}

// ListFilter controls pagination and filtering for event lists.
type ListFilter struct {
	Search string
	Limit  int
	Offset int
}

// UpdateFields holds the mutable fields for an event update.
// Nil fields are not applied. Dates are "2006-01-02" strings; the service
// validates the format before they reach SQL.
type UpdateFields struct {
	Title        *string
	Place        *string
	Country      *string
	Venue        *string
	StartDate    *string
	EndDate      *string
	Discipline   *string
	Organizer    *string
	ContactEmail *string
	Notes        *string
}
