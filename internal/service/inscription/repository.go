package inscription

import (
	"context"
	"time"

	"github.com/skicrew/inscriptions/internal/domain"
)

// Repository defines the data access contract for inscription sheets and
// their competitor rows. Implementations must be safe for concurrent use.
type Repository interface {
	// Get returns a single sheet. Returns ErrNotFound if it doesn't exist.
	Get(ctx context.Context, id int64) (*domain.Inscription, error)

	// GetWithEvent returns a sheet together with its event in one lookup.
	GetWithEvent(ctx context.Context, id int64) (*domain.Inscription, *domain.Event, error)

	// ListByEvent returns sheets for an event, ordered by created_at ASC.
	ListByEvent(ctx context.Context, eventID int64, filter ListFilter) ([]domain.Inscription, int, error)

	// Create inserts a new sheet and returns its ID. The event must exist
	// (FK); a missing event surfaces as ErrEventNotFound.
	Create(ctx context.Context, i *domain.Inscription) (int64, error)

	// Update modifies a sheet. Only non-nil fields in the update are applied.
	Update(ctx context.Context, id int64, u UpdateFields) error

	// Delete removes a sheet and its competitors (FK cascade).
	Delete(ctx context.Context, id int64) error

	// UpdateStatus writes the status column directly; sentAt accompanies the
	// email_sent status and is NULLed otherwise.
	UpdateStatus(ctx context.Context, id int64, status domain.InscriptionStatus, sentAt *time.Time) error

	// Competitors returns the sheet's competitor rows ordered by points ASC
	// then last name. A non-empty gender restricts the list.
	Competitors(ctx context.Context, inscriptionID int64, gender domain.Gender) ([]domain.Competitor, error)

	// GetCompetitor returns a single competitor row.
	GetCompetitor(ctx context.Context, id int64) (*domain.Competitor, error)

	// AddCompetitor inserts a competitor on a sheet and returns its ID.
	AddCompetitor(ctx context.Context, c *domain.Competitor) (int64, error)

	// UpdateCompetitor modifies a competitor. Only non-nil fields are applied.
	UpdateCompetitor(ctx context.Context, id int64, u CompetitorUpdateFields) error

	// DeleteCompetitor removes a competitor row.
	DeleteCompetitor(ctx context.Context, id int64) error
}

// ListFilter controls pagination and filtering for sheet lists.
type ListFilter struct {
	Status string
	Limit  int
	Offset int
}

// UpdateFields holds the mutable fields for a sheet update.
// Nil fields are not applied. Status is deliberately absent: status writes
// go through UpdateStatus only.
type UpdateFields struct {
	Label        *string
	ContactName  *string
	ContactEmail *string
}

// CompetitorUpdateFields holds the mutable fields for a competitor update.
// Nil fields are not applied.
type CompetitorUpdateFields struct {
	FirstName *string
	LastName  *string
	Gender    *string
	BirthYear *int
	Category  *string
	Club      *string
	License   *string
	Points    *float64
}
