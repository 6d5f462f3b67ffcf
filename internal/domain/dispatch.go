package domain

import (
	"time"
)

// DispatchStatus enumerates the outcome of a single send attempt.
type DispatchStatus string

const (
	DispatchSent   DispatchStatus = "sent"
	DispatchFailed DispatchStatus = "failed"
)

// Dispatch is the audit record of one email dispatch of an entry form.
// Every call to the send endpoint writes exactly one row, whatever the
// outcome.
type Dispatch struct {
	ID             string         `json:"id" db:"id"`
	InscriptionID  int64          `json:"inscription_id" db:"inscription_id"`
	Recipients     []string       `json:"recipients" db:"recipients"`
	Subject        string         `json:"subject" db:"subject"`
	MessageID      string         `json:"message_id" db:"message_id"`
	AttachmentName string         `json:"attachment_name" db:"attachment_name"`
	AttachmentSize int64          `json:"attachment_size" db:"attachment_size"`
	Status         DispatchStatus `json:"status" db:"status"`
	Error          string         `json:"error,omitempty" db:"error"`
	CreatedAt      time.Time      `json:"created_at" db:"created_at"`
}
