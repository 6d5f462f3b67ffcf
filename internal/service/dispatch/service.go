package dispatch

import (
	"context"
	"fmt"
	"log"
	"net/mail"
	"strings"

	"github.com/google/uuid"

	"github.com/skicrew/inscriptions/internal/archive"
	"github.com/skicrew/inscriptions/internal/domain"
	"github.com/skicrew/inscriptions/internal/mailer"
)

// SES caps a single message at 50 destinations.
const maxRecipients = 50

// Service implements the send flow. The flow is deliberately linear: look
// the sheet up, render, send, then record. A failed status update after a
// successful send is logged and swallowed, never compensated; the provider
// has already accepted the message at that point.
type Service struct {
	repo     Repository
	sheets   SheetStore
	sender   mailer.Sender
	tpls     *mailer.Templates
	archiver archive.Archiver
}

// NewService creates a dispatch service. sender may be nil when email is
// not configured; Send then fails with ErrNotConfigured. archiver may be
// nil to disable archiving.
func NewService(repo Repository, sheets SheetStore, sender mailer.Sender, tpls *mailer.Templates, archiver archive.Archiver) *Service {
	return &Service{
		repo:     repo,
		sheets:   sheets,
		sender:   sender,
		tpls:     tpls,
		archiver: archiver,
	}
}

// SendInput carries the fields collected from the send form.
type SendInput struct {
	Recipients     []string
	Message        string
	AttachmentName string
	AttachmentData []byte
}

// Send emails the entry form to the given recipients and records the
// outcome as a dispatch. On provider failure a failed dispatch is recorded
// and ErrSendFailed is returned along with it.
func (s *Service) Send(ctx context.Context, inscriptionID int64, input SendInput) (*domain.Dispatch, error) {
	if s.sender == nil {
		return nil, ErrNotConfigured
	}

	recipients, err := normalizeRecipients(input.Recipients)
	if err != nil {
		return nil, err
	}
	if len(input.AttachmentData) == 0 {
		return nil, ErrEmptyAttachment
	}

	ins, ev, err := s.sheets.GetWithEvent(ctx, inscriptionID)
	if err != nil {
		return nil, err
	}

	subject, err := s.tpls.RenderSubject(*ev, *ins)
	if err != nil {
		return nil, err
	}
	body, err := s.tpls.RenderBody(*ev, *ins, input.Message)
	if err != nil {
		return nil, err
	}

	d := &domain.Dispatch{
		ID:             uuid.New().String(),
		InscriptionID:  inscriptionID,
		Recipients:     recipients,
		Subject:        subject,
		AttachmentName: input.AttachmentName,
		AttachmentSize: int64(len(input.AttachmentData)),
	}

	result, sendErr := s.sender.Send(ctx, mailer.Message{
		To:       recipients,
		Subject:  subject,
		TextBody: body,
		Attachment: &mailer.Attachment{
			Filename:    input.AttachmentName,
			ContentType: "application/pdf",
			Data:        input.AttachmentData,
		},
		Tags: map[string]string{"dispatch_id": d.ID},
	})
	if sendErr != nil {
		d.Status = domain.DispatchFailed
		d.Error = sendErr.Error()
		if err := s.repo.Insert(ctx, d); err != nil {
			log.Printf("[dispatch.Service] recording failed dispatch %s: %v", d.ID, err)
		}
		return d, fmt.Errorf("%w: %v", ErrSendFailed, sendErr)
	}

	d.Status = domain.DispatchSent
	d.MessageID = result.MessageID

	// The provider has the message; from here every failure is
	// bookkeeping and must not surface to the caller.
	if err := s.sheets.UpdateStatus(ctx, inscriptionID, domain.InscriptionEmailSent); err != nil {
		log.Printf("[dispatch.Service] status update failed after send (inscription %d): %v", inscriptionID, err)
	}
	if err := s.repo.Insert(ctx, d); err != nil {
		log.Printf("[dispatch.Service] recording dispatch %s: %v", d.ID, err)
	}
	if s.archiver != nil {
		if err := s.archiver.Store(ctx, inscriptionID, d.ID, input.AttachmentName, input.AttachmentData); err != nil {
			log.Printf("[dispatch.Service] archiving dispatch %s: %v", d.ID, err)
		}
	}

	return d, nil
}

// ListByInscription returns an inscription's dispatch history.
func (s *Service) ListByInscription(ctx context.Context, inscriptionID int64) ([]domain.Dispatch, error) {
	return s.repo.ListByInscription(ctx, inscriptionID)
}

// Configured reports whether a sender is wired in.
func (s *Service) Configured() bool {
	return s.sender != nil
}

func normalizeRecipients(raw []string) ([]string, error) {
	if len(raw) == 0 {
		return nil, ErrNoRecipients
	}

	out := make([]string, 0, len(raw))
	for _, r := range raw {
		addr := strings.TrimSpace(r)
		if addr == "" {
			continue
		}
		parsed, err := mail.ParseAddress(addr)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrInvalidRecipient, addr)
		}
		out = append(out, strings.ToLower(parsed.Address))
	}
	if len(out) == 0 {
		return nil, ErrNoRecipients
	}
	if len(out) > maxRecipients {
		return nil, ErrTooManyRecipients
	}
	return out, nil
}
