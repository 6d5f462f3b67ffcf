package dispatch

import (
	"context"

	"github.com/skicrew/inscriptions/internal/domain"
)

// Repository persists dispatch records. Implementations live in
// internal/repository; the service layer only depends on this interface.
type Repository interface {
	// Insert stores a new dispatch record.
	Insert(ctx context.Context, d *domain.Dispatch) error

	// ListByInscription returns an inscription's dispatch history, most
	// recent first.
	ListByInscription(ctx context.Context, inscriptionID int64) ([]domain.Dispatch, error)
}

// SheetStore is the slice of the inscription layer the send flow needs:
// one lookup before the send and one status write after it.
// *inscription.Service satisfies it.
type SheetStore interface {
	GetWithEvent(ctx context.Context, id int64) (*domain.Inscription, *domain.Event, error)
	UpdateStatus(ctx context.Context, id int64, status domain.InscriptionStatus) error
}
