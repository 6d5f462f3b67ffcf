package event

import (
	"context"
	"fmt"
	"time"

	"github.com/skicrew/inscriptions/internal/domain"
)

const dateLayout = "2006-01-02"

// Service implements event business logic on top of the repository layer.
// All public methods are safe for concurrent use if the underlying
// repository is concurrency-safe.
type Service struct {
	repo Repository
}

// NewService creates an event service backed by the given repository.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Get returns a single event.
func (s *Service) Get(ctx context.Context, id int64) (*domain.Event, error) {
	return s.repo.Get(ctx, id)
}

// List returns events matching the filter.
func (s *Service) List(ctx context.Context, f ListFilter) ([]domain.Event, int, error) {
	return s.repo.List(ctx, f)
}

// StatusCounts returns per-status inscription counts for the detail view.
func (s *Service) StatusCounts(ctx context.Context, id int64) (*domain.EventStatusCounts, error) {
	return s.repo.StatusCounts(ctx, id)
}

// Create validates and persists a new event.
func (s *Service) Create(ctx context.Context, input CreateInput) (*domain.Event, error) {
	if input.Title == "" {
		return nil, fmt.Errorf("title is required")
	}
	if input.Place == "" {
		return nil, fmt.Errorf("place is required")
	}
	start, err := time.Parse(dateLayout, input.StartDate)
	if err != nil {
		return nil, fmt.Errorf("start_date must be YYYY-MM-DD")
	}
	end := start
	if input.EndDate != "" {
		end, err = time.Parse(dateLayout, input.EndDate)
		if err != nil {
			return nil, fmt.Errorf("end_date must be YYYY-MM-DD")
		}
		if end.Before(start) {
			return nil, fmt.Errorf("end_date is before start_date")
		}
	}

	e := &domain.Event{
		Title:        input.Title,
		Place:        input.Place,
		Country:      input.Country,
		Venue:        input.Venue,
		StartDate:    start,
		EndDate:      end,
		Discipline:   input.Discipline,
		Organizer:    input.Organizer,
		ContactEmail: input.ContactEmail,
		Notes:        input.Notes,
	}

	id, err := s.repo.Create(ctx, e)
	if err != nil {
		return nil, err
	}
	e.ID = id
	return e, nil
}

// Update modifies mutable event fields. Date fields are validated here so
// malformed input never reaches SQL.
func (s *Service) Update(ctx context.Context, id int64, u UpdateFields) error {
	if u.StartDate != nil {
		if _, err := time.Parse(dateLayout, *u.StartDate); err != nil {
			return fmt.Errorf("start_date must be YYYY-MM-DD")
		}
	}
	if u.EndDate != nil {
		if _, err := time.Parse(dateLayout, *u.EndDate); err != nil {
			return fmt.Errorf("end_date must be YYYY-MM-DD")
		}
	}
	if u.Title != nil && *u.Title == "" {
		return fmt.Errorf("title cannot be empty")
	}
	return s.repo.Update(ctx, id, u)
}

// Delete removes an event. Inscription sheets and their competitors go with
// it (FK cascade).
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// CreateInput holds the fields for creating a new event.
type CreateInput struct {
	Title        string `json:"title"`
	Place        string `json:"place"`
	Country      string `json:"country"`
	Venue        string `json:"venue"`
	StartDate    string `json:"start_date"`
	EndDate      string `json:"end_date"`
	Discipline   string `json:"discipline"`
	Organizer    string `json:"organizer"`
	ContactEmail string `json:"contact_email"`
	Notes        string `json:"notes"`
}
