package domain

import (
	"time"
)

// InscriptionStatus enumerates the lifecycle states of an inscription sheet.
//
// Status writes are unconditioned: any known value may overwrite any other.
// The organizer workflow is open -> validated -> email_sent, but the UI may
// reopen a sheet at any point, so no transition table is enforced.
type InscriptionStatus string

const (
	InscriptionOpen      InscriptionStatus = "open"
	InscriptionValidated InscriptionStatus = "validated"
	InscriptionEmailSent InscriptionStatus = "email_sent"
)

// Valid reports whether s is a known status value.
func (s InscriptionStatus) Valid() bool {
	switch s {
	case InscriptionOpen, InscriptionValidated, InscriptionEmailSent:
		return true
	}
	return false
}

// Inscription represents one entry sheet for one event: the set of
// competitors a club enters, plus the sheet's dispatch state. It is the
// only stateful entity in the system.
type Inscription struct {
	ID           int64             `json:"id" db:"id"`
	EventID      int64             `json:"event_id" db:"event_id"`
	Label        string            `json:"label" db:"label"`
	Status       InscriptionStatus `json:"status" db:"status"`
	ContactName  string            `json:"contact_name" db:"contact_name"`
	ContactEmail string            `json:"contact_email" db:"contact_email"`
	SentAt       *time.Time        `json:"sent_at" db:"sent_at"`
	CreatedAt    time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at" db:"updated_at"`

	// Stats (read-only, populated by queries)
	CompetitorCount int `json:"competitor_count" db:"competitor_count"`
}

// Sent returns true once the sheet's entry form has been emailed out.
func (i *Inscription) Sent() bool {
	return i.Status == InscriptionEmailSent
}
