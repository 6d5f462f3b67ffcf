// Package mailer sends entry-form emails through AWS SES.
//
// The Sender interface is the seam between the dispatch service and the
// provider: production wires SESSender, tests wire a fake. Messages carry
// the PDF entry form as a raw MIME attachment because the SES simple
// content type cannot represent attachments.
package mailer

import (
	"context"
	"time"
)

// Attachment is a binary file carried by a Message.
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Message is one outbound email. To holds the full recipient list; the
// provider call sends them on a single message, not one send per address.
type Message struct {
	To         []string
	Subject    string
	TextBody   string
	ReplyTo    string
	Attachment *Attachment
	Tags       map[string]string
}

// SendResult reports a successful provider send.
type SendResult struct {
	MessageID string
	SentAt    time.Time
}

// Sender delivers a single message through an email provider.
type Sender interface {
	Send(ctx context.Context, msg Message) (*SendResult, error)
}
