package domain

import (
	"strings"
	"time"
)

// Gender enumerates competitor gender codes as used on FIS entry forms.
type Gender string

const (
	GenderFemale Gender = "F"
	GenderMale   Gender = "M"
)

// Valid reports whether g is a known gender code.
func (g Gender) Valid() bool {
	return g == GenderFemale || g == GenderMale
}

// ParseGender normalizes raw input ("f", "M", "female", ...) to a Gender.
// Returns false when the input matches neither code.
func ParseGender(raw string) (Gender, bool) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "F", "FEMALE", "W":
		return GenderFemale, true
	case "M", "MALE":
		return GenderMale, true
	}
	return "", false
}

// Competitor represents one athlete row on an inscription sheet.
type Competitor struct {
	ID            int64     `json:"id" db:"id"`
	InscriptionID int64     `json:"inscription_id" db:"inscription_id"`
	FirstName     string    `json:"first_name" db:"first_name"`
	LastName      string    `json:"last_name" db:"last_name"`
	Gender        Gender    `json:"gender" db:"gender"`
	BirthYear     int       `json:"birth_year" db:"birth_year"`
	Category      string    `json:"category" db:"category"`
	Club          string    `json:"club" db:"club"`
	License       string    `json:"license" db:"license"`
	Points        float64   `json:"points" db:"points"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// FullName returns the competitor's display name, last name first as on
// entry forms.
func (c *Competitor) FullName() string {
	last := strings.ToUpper(strings.TrimSpace(c.LastName))
	first := strings.TrimSpace(c.FirstName)
	if last == "" {
		return first
	}
	if first == "" {
		return last
	}
	return last + " " + first
}
