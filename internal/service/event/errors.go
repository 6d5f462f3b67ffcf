package event

import "errors"

// Sentinel errors for the event service layer.
var (
	ErrNotFound = errors.New("event not found")
)
