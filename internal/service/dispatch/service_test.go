package dispatch_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/skicrew/inscriptions/internal/domain"
	"github.com/skicrew/inscriptions/internal/mailer"
	"github.com/skicrew/inscriptions/internal/service/dispatch"
	"github.com/skicrew/inscriptions/internal/service/inscription"
)

// memRepo is an in-memory dispatch repository for unit testing.
type memRepo struct {
	mu        sync.Mutex
	rows      []domain.Dispatch
	insertErr error
}

func (m *memRepo) Insert(_ context.Context, d *domain.Dispatch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.insertErr != nil {
		return m.insertErr
	}
	m.rows = append(m.rows, *d)
	return nil
}

func (m *memRepo) ListByInscription(_ context.Context, inscriptionID int64) ([]domain.Dispatch, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Dispatch
	for i := len(m.rows) - 1; i >= 0; i-- {
		if m.rows[i].InscriptionID == inscriptionID {
			out = append(out, m.rows[i])
		}
	}
	return out, nil
}

// memSheets serves one inscription/event pair and records status writes.
type memSheets struct {
	ins       domain.Inscription
	ev        domain.Event
	statusErr error
	status    domain.InscriptionStatus
}

func (m *memSheets) GetWithEvent(_ context.Context, id int64) (*domain.Inscription, *domain.Event, error) {
	if m.ins.ID != id {
		return nil, nil, inscription.ErrNotFound
	}
	ins, ev := m.ins, m.ev
	return &ins, &ev, nil
}

func (m *memSheets) UpdateStatus(_ context.Context, _ int64, status domain.InscriptionStatus) error {
	if m.statusErr != nil {
		return m.statusErr
	}
	m.status = status
	return nil
}

// fakeSender captures the outgoing message instead of calling SES.
type fakeSender struct {
	fail bool
	last *mailer.Message
}

func (f *fakeSender) Send(_ context.Context, msg mailer.Message) (*mailer.SendResult, error) {
	if f.fail {
		return nil, fmt.Errorf("MessageRejected: email address is not verified")
	}
	f.last = &msg
	return &mailer.SendResult{MessageID: "ses-msg-123", SentAt: time.Now()}, nil
}

// memArchiver records Store calls.
type memArchiver struct {
	keys []string
	err  error
}

func (m *memArchiver) Store(_ context.Context, inscriptionID int64, dispatchID, _ string, _ []byte) error {
	if m.err != nil {
		return m.err
	}
	m.keys = append(m.keys, fmt.Sprintf("%d/%s", inscriptionID, dispatchID))
	return nil
}

func newSheets() *memSheets {
	return &memSheets{
		ins: domain.Inscription{
			ID:          5,
			EventID:     2,
			Label:       "Women's squad",
			Status:      domain.InscriptionValidated,
			ContactName: "C. Renaud",
		},
		ev: domain.Event{
			ID:        2,
			Title:     "FIS Slalom",
			Place:     "Levi",
			Country:   "FIN",
			StartDate: time.Date(2026, 11, 14, 0, 0, 0, 0, time.UTC),
			EndDate:   time.Date(2026, 11, 15, 0, 0, 0, 0, time.UTC),
		},
	}
}

func validInput() dispatch.SendInput {
	return dispatch.SendInput{
		Recipients:     []string{"office@organizer.example"},
		Message:        "See you in Levi.",
		AttachmentName: "entry-form.pdf",
		AttachmentData: []byte("%PDF-1.4 entry form"),
	}
}

func TestSend(t *testing.T) {
	repo := &memRepo{}
	sheets := newSheets()
	sender := &fakeSender{}
	arch := &memArchiver{}
	svc := dispatch.NewService(repo, sheets, sender, mailer.NewTemplates("", ""), arch)

	d, err := svc.Send(context.Background(), 5, validInput())
	if err != nil {
		t.Fatalf("send: %v", err)
	}

	if d.Status != domain.DispatchSent {
		t.Errorf("status = %s, want sent", d.Status)
	}
	if d.MessageID != "ses-msg-123" {
		t.Errorf("message id = %q", d.MessageID)
	}
	if d.AttachmentSize != int64(len("%PDF-1.4 entry form")) {
		t.Errorf("attachment size = %d", d.AttachmentSize)
	}
	if want := "Inscription FIS Slalom - Levi, 14.11.2026"; d.Subject != want {
		t.Errorf("subject = %q, want %q", d.Subject, want)
	}

	if sheets.status != domain.InscriptionEmailSent {
		t.Errorf("sheet status = %s, want email_sent", sheets.status)
	}
	if len(repo.rows) != 1 {
		t.Fatalf("expected 1 dispatch row, got %d", len(repo.rows))
	}
	if len(arch.keys) != 1 || arch.keys[0] != fmt.Sprintf("5/%s", d.ID) {
		t.Errorf("archive keys = %v", arch.keys)
	}

	if sender.last == nil {
		t.Fatal("sender never called")
	}
	if !strings.Contains(sender.last.TextBody, "See you in Levi.") {
		t.Errorf("body missing custom message:\n%s", sender.last.TextBody)
	}
	if sender.last.Attachment == nil || sender.last.Attachment.Filename != "entry-form.pdf" {
		t.Errorf("attachment = %+v", sender.last.Attachment)
	}
}

func TestSendNotConfigured(t *testing.T) {
	svc := dispatch.NewService(&memRepo{}, newSheets(), nil, mailer.NewTemplates("", ""), nil)

	_, err := svc.Send(context.Background(), 5, validInput())
	if !errors.Is(err, dispatch.ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
	if svc.Configured() {
		t.Error("Configured() = true with nil sender")
	}
}

func TestSendRecipientValidation(t *testing.T) {
	tests := []struct {
		name       string
		recipients []string
		wantErr    error
	}{
		{"none", nil, dispatch.ErrNoRecipients},
		{"only blanks", []string{" ", ""}, dispatch.ErrNoRecipients},
		{"malformed", []string{"not-an-email"}, dispatch.ErrInvalidRecipient},
		{"malformed among valid", []string{"ok@organizer.example", "@@"}, dispatch.ErrInvalidRecipient},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := dispatch.NewService(&memRepo{}, newSheets(), &fakeSender{}, mailer.NewTemplates("", ""), nil)
			input := validInput()
			input.Recipients = tt.recipients

			_, err := svc.Send(context.Background(), 5, input)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestSendTooManyRecipients(t *testing.T) {
	svc := dispatch.NewService(&memRepo{}, newSheets(), &fakeSender{}, mailer.NewTemplates("", ""), nil)
	input := validInput()
	input.Recipients = nil
	for i := 0; i < 51; i++ {
		input.Recipients = append(input.Recipients, fmt.Sprintf("r%d@organizer.example", i))
	}

	_, err := svc.Send(context.Background(), 5, input)
	if !errors.Is(err, dispatch.ErrTooManyRecipients) {
		t.Fatalf("expected ErrTooManyRecipients, got %v", err)
	}
}

func TestSendRecipientsNormalized(t *testing.T) {
	sender := &fakeSender{}
	svc := dispatch.NewService(&memRepo{}, newSheets(), sender, mailer.NewTemplates("", ""), nil)
	input := validInput()
	input.Recipients = []string{"  Office@Organizer.example ", "timing@organizer.example"}

	d, err := svc.Send(context.Background(), 5, input)
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	want := []string{"office@organizer.example", "timing@organizer.example"}
	if len(d.Recipients) != 2 || d.Recipients[0] != want[0] || d.Recipients[1] != want[1] {
		t.Errorf("recipients = %v, want %v", d.Recipients, want)
	}
}

func TestSendEmptyAttachment(t *testing.T) {
	svc := dispatch.NewService(&memRepo{}, newSheets(), &fakeSender{}, mailer.NewTemplates("", ""), nil)
	input := validInput()
	input.AttachmentData = nil

	_, err := svc.Send(context.Background(), 5, input)
	if !errors.Is(err, dispatch.ErrEmptyAttachment) {
		t.Fatalf("expected ErrEmptyAttachment, got %v", err)
	}
}

func TestSendSheetNotFound(t *testing.T) {
	svc := dispatch.NewService(&memRepo{}, newSheets(), &fakeSender{}, mailer.NewTemplates("", ""), nil)

	_, err := svc.Send(context.Background(), 999, validInput())
	if !errors.Is(err, inscription.ErrNotFound) {
		t.Fatalf("expected inscription.ErrNotFound, got %v", err)
	}
}

func TestSendProviderFailure(t *testing.T) {
	repo := &memRepo{}
	sheets := newSheets()
	svc := dispatch.NewService(repo, sheets, &fakeSender{fail: true}, mailer.NewTemplates("", ""), nil)

	d, err := svc.Send(context.Background(), 5, validInput())
	if !errors.Is(err, dispatch.ErrSendFailed) {
		t.Fatalf("expected ErrSendFailed, got %v", err)
	}

	// The failure still leaves an audit row behind.
	if d == nil || d.Status != domain.DispatchFailed {
		t.Fatalf("dispatch = %+v", d)
	}
	if !strings.Contains(d.Error, "MessageRejected") {
		t.Errorf("dispatch error = %q", d.Error)
	}
	if len(repo.rows) != 1 || repo.rows[0].Status != domain.DispatchFailed {
		t.Fatalf("rows = %+v", repo.rows)
	}
	if sheets.status == domain.InscriptionEmailSent {
		t.Error("sheet must not be marked sent on provider failure")
	}
}

func TestSendStatusUpdateFailureSwallowed(t *testing.T) {
	repo := &memRepo{}
	sheets := newSheets()
	sheets.statusErr = fmt.Errorf("connection reset")
	svc := dispatch.NewService(repo, sheets, &fakeSender{}, mailer.NewTemplates("", ""), nil)

	d, err := svc.Send(context.Background(), 5, validInput())
	if err != nil {
		t.Fatalf("status update failure must not fail the send: %v", err)
	}
	if d.Status != domain.DispatchSent {
		t.Errorf("status = %s", d.Status)
	}
	if len(repo.rows) != 1 {
		t.Fatalf("expected dispatch row despite status failure, got %d", len(repo.rows))
	}
}

func TestSendArchiveFailureSwallowed(t *testing.T) {
	arch := &memArchiver{err: fmt.Errorf("bucket gone")}
	svc := dispatch.NewService(&memRepo{}, newSheets(), &fakeSender{}, mailer.NewTemplates("", ""), arch)

	if _, err := svc.Send(context.Background(), 5, validInput()); err != nil {
		t.Fatalf("archive failure must not fail the send: %v", err)
	}
}

func TestListByInscription(t *testing.T) {
	repo := &memRepo{}
	svc := dispatch.NewService(repo, newSheets(), &fakeSender{}, mailer.NewTemplates("", ""), nil)

	if _, err := svc.Send(context.Background(), 5, validInput()); err != nil {
		t.Fatalf("send: %v", err)
	}
	if _, err := svc.Send(context.Background(), 5, validInput()); err != nil {
		t.Fatalf("send: %v", err)
	}

	list, err := svc.ListByInscription(context.Background(), 5)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 dispatches, got %d", len(list))
	}
}
