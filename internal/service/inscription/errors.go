package inscription

import "errors"

// Sentinel errors for the inscription service layer.
var (
	ErrNotFound           = errors.New("inscription not found")
	ErrEventNotFound      = errors.New("event not found")
	ErrCompetitorNotFound = errors.New("competitor not found")
	ErrInvalidStatus      = errors.New("invalid inscription status")
	ErrInvalidGender      = errors.New("invalid gender code")
)
