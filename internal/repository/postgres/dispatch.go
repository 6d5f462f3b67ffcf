package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/skicrew/inscriptions/internal/domain"
	"github.com/skicrew/inscriptions/internal/service/inscription"
)

// DispatchRepo implements dispatch.Repository against PostgreSQL.
type DispatchRepo struct{ db *sql.DB }

// NewDispatchRepo creates a Postgres-backed dispatch repository.
func NewDispatchRepo(db *sql.DB) *DispatchRepo { return &DispatchRepo{db: db} }

func (r *DispatchRepo) Insert(ctx context.Context, d *domain.Dispatch) error {
	// Recipients are stored comma-joined; addresses cannot contain commas
	// after normalization.
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO dispatches
			(id, inscription_id, recipients, subject, message_id,
			 attachment_name, attachment_size, status, error, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
	`, d.ID, d.InscriptionID, strings.Join(d.Recipients, ","), d.Subject, d.MessageID,
		d.AttachmentName, d.AttachmentSize, d.Status, d.Error)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == fkViolation {
			return inscription.ErrNotFound
		}
		return fmt.Errorf("insert dispatch: %w", err)
	}
	return nil
}

func (r *DispatchRepo) ListByInscription(ctx context.Context, inscriptionID int64) ([]domain.Dispatch, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, inscription_id, recipients, subject, COALESCE(message_id,''),
		       attachment_name, attachment_size, status, COALESCE(error,''), created_at
		FROM dispatches
		WHERE inscription_id = $1
		ORDER BY created_at DESC
	`, inscriptionID)
	if err != nil {
		return nil, fmt.Errorf("list dispatches: %w", err)
	}
	defer rows.Close()

	var out []domain.Dispatch
	for rows.Next() {
		var d domain.Dispatch
		var recipients string
		if err := rows.Scan(
			&d.ID, &d.InscriptionID, &recipients, &d.Subject, &d.MessageID,
			&d.AttachmentName, &d.AttachmentSize, &d.Status, &d.Error, &d.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan dispatch: %w", err)
		}
		if recipients != "" {
			d.Recipients = strings.Split(recipients, ",")
		}
		out = append(out, d)
	}
	return out, nil
}
