package dispatch

import "errors"

// Sentinel errors for the dispatch service layer.
var (
	ErrNotFound          = errors.New("dispatch not found")
	ErrNotConfigured     = errors.New("email sending is not configured")
	ErrNoRecipients      = errors.New("no recipients provided")
	ErrTooManyRecipients = errors.New("too many recipients")
	ErrInvalidRecipient  = errors.New("invalid recipient address")
	ErrEmptyAttachment   = errors.New("attachment is empty")
	ErrSendFailed        = errors.New("email provider rejected the send")
)
