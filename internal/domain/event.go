package domain

import (
	"time"
)

// Event represents a foreign race event that inscriptions are filed against.
type Event struct {
	ID           int64     `json:"id" db:"id"`
	Title        string    `json:"title" db:"title"`
	Place        string    `json:"place" db:"place"`
	Country      string    `json:"country" db:"country"`
	Venue        string    `json:"venue" db:"venue"`
	StartDate    time.Time `json:"start_date" db:"start_date"`
	EndDate      time.Time `json:"end_date" db:"end_date"`
	Discipline   string    `json:"discipline" db:"discipline"`
	Organizer    string    `json:"organizer" db:"organizer"`
	ContactEmail string    `json:"contact_email" db:"contact_email"`
	Notes        string    `json:"notes" db:"notes"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// MultiDay returns true if the event spans more than one day.
func (e *Event) MultiDay() bool {
	return !e.EndDate.IsZero() && e.EndDate.After(e.StartDate)
}

// EventStatusCounts holds per-status inscription counts for an event's
// detail view.
type EventStatusCounts struct {
	Open      int `json:"open"`
	Validated int `json:"validated"`
	EmailSent int `json:"email_sent"`
	Total     int `json:"total"`
}
