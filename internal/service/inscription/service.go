package inscription

import (
	"context"
	"fmt"
	"time"

	"github.com/skicrew/inscriptions/internal/domain"
)

// Service implements entry-sheet business logic on top of the repository
// layer. All public methods are safe for concurrent use if the underlying
// repository is concurrency-safe.
type Service struct {
	repo Repository
}

// NewService creates an inscription service backed by the given repository.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Get returns a single sheet.
func (s *Service) Get(ctx context.Context, id int64) (*domain.Inscription, error) {
	return s.repo.Get(ctx, id)
}

// GetWithEvent returns a sheet together with its event.
func (s *Service) GetWithEvent(ctx context.Context, id int64) (*domain.Inscription, *domain.Event, error) {
	return s.repo.GetWithEvent(ctx, id)
}

// ListByEvent returns sheets for an event matching the filter.
func (s *Service) ListByEvent(ctx context.Context, eventID int64, f ListFilter) ([]domain.Inscription, int, error) {
	if f.Status != "" && !domain.InscriptionStatus(f.Status).Valid() {
		return nil, 0, ErrInvalidStatus
	}
	return s.repo.ListByEvent(ctx, eventID, f)
}

// Create validates and persists a new sheet. New sheets always start open,
// whatever the caller claims.
func (s *Service) Create(ctx context.Context, eventID int64, input CreateInput) (*domain.Inscription, error) {
	if input.Label == "" {
		return nil, fmt.Errorf("label is required")
	}

	i := &domain.Inscription{
		EventID:      eventID,
		Label:        input.Label,
		Status:       domain.InscriptionOpen,
		ContactName:  input.ContactName,
		ContactEmail: input.ContactEmail,
	}

	id, err := s.repo.Create(ctx, i)
	if err != nil {
		return nil, err
	}
	i.ID = id
	return i, nil
}

// Update modifies mutable sheet fields.
func (s *Service) Update(ctx context.Context, id int64, u UpdateFields) error {
	if u.Label != nil && *u.Label == "" {
		return fmt.Errorf("label cannot be empty")
	}
	return s.repo.Update(ctx, id, u)
}

// Delete removes a sheet and its competitors.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// UpdateStatus writes the status enum. Any known value may overwrite any
// other; validation stops at enum membership. sent_at tracks the
// email_sent status: set on entry, cleared on exit.
func (s *Service) UpdateStatus(ctx context.Context, id int64, status domain.InscriptionStatus) error {
	if !status.Valid() {
		return ErrInvalidStatus
	}
	var sentAt *time.Time
	if status == domain.InscriptionEmailSent {
		now := time.Now().UTC()
		sentAt = &now
	}
	return s.repo.UpdateStatus(ctx, id, status, sentAt)
}

// Competitors returns the sheet's competitors, optionally restricted by
// gender. rawGender accepts the usual spellings ("F", "f", "female", ...).
func (s *Service) Competitors(ctx context.Context, inscriptionID int64, rawGender string) ([]domain.Competitor, error) {
	var gender domain.Gender
	if rawGender != "" {
		g, ok := domain.ParseGender(rawGender)
		if !ok {
			return nil, ErrInvalidGender
		}
		gender = g
	}
	if _, err := s.repo.Get(ctx, inscriptionID); err != nil {
		return nil, err
	}
	return s.repo.Competitors(ctx, inscriptionID, gender)
}

// AddCompetitor validates and inserts a competitor row on a sheet.
func (s *Service) AddCompetitor(ctx context.Context, inscriptionID int64, input CompetitorInput) (*domain.Competitor, error) {
	c, err := s.buildCompetitor(input)
	if err != nil {
		return nil, err
	}
	if _, err := s.repo.Get(ctx, inscriptionID); err != nil {
		return nil, err
	}
	c.InscriptionID = inscriptionID

	id, err := s.repo.AddCompetitor(ctx, c)
	if err != nil {
		return nil, err
	}
	c.ID = id
	return c, nil
}

// UpdateCompetitor modifies a competitor row.
func (s *Service) UpdateCompetitor(ctx context.Context, id int64, u CompetitorUpdateFields) error {
	if u.Gender != nil {
		g, ok := domain.ParseGender(*u.Gender)
		if !ok {
			return ErrInvalidGender
		}
		normalized := string(g)
		u.Gender = &normalized
	}
	if u.LastName != nil && *u.LastName == "" {
		return fmt.Errorf("last_name cannot be empty")
	}
	if u.BirthYear != nil && (*u.BirthYear < 1900 || *u.BirthYear > time.Now().Year()) {
		return fmt.Errorf("birth_year out of range")
	}
	return s.repo.UpdateCompetitor(ctx, id, u)
}

// DeleteCompetitor removes a competitor row.
func (s *Service) DeleteCompetitor(ctx context.Context, id int64) error {
	return s.repo.DeleteCompetitor(ctx, id)
}

func (s *Service) buildCompetitor(input CompetitorInput) (*domain.Competitor, error) {
	if input.LastName == "" {
		return nil, fmt.Errorf("last_name is required")
	}
	gender, ok := domain.ParseGender(input.Gender)
	if !ok {
		return nil, ErrInvalidGender
	}
	if input.BirthYear < 1900 || input.BirthYear > time.Now().Year() {
		return nil, fmt.Errorf("birth_year out of range")
	}
	return &domain.Competitor{
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Gender:    gender,
		BirthYear: input.BirthYear,
		Category:  input.Category,
		Club:      input.Club,
		License:   input.License,
		Points:    input.Points,
	}, nil
}

// CreateInput holds the fields for creating a new sheet.
type CreateInput struct {
	Label        string `json:"label"`
	ContactName  string `json:"contact_name"`
	ContactEmail string `json:"contact_email"`
}

// CompetitorInput holds the fields for adding a competitor to a sheet.
type CompetitorInput struct {
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Gender    string  `json:"gender"`
	BirthYear int     `json:"birth_year"`
	Category  string  `json:"category"`
	Club      string  `json:"club"`
	License   string  `json:"license"`
	Points    float64 `json:"points"`
}
