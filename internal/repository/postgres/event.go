package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/skicrew/inscriptions/internal/domain"
	"github.com/skicrew/inscriptions/internal/service/event"
)

// EventRepo implements event.Repository against PostgreSQL.
type EventRepo struct{ db *sql.DB }

// NewEventRepo creates a Postgres-backed event repository.
func NewEventRepo(db *sql.DB) *EventRepo { return &EventRepo{db: db} }

func (r *EventRepo) Get(ctx context.Context, id int64) (*domain.Event, error) {
	e := &domain.Event{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, title, place, COALESCE(country,''), COALESCE(venue,''),
		       start_date, end_date, COALESCE(discipline,''), COALESCE(organizer,''),
		       COALESCE(contact_email,''), COALESCE(notes,''), created_at, updated_at
		FROM events
		WHERE id = $1
	`, id).Scan(
		&e.ID, &e.Title, &e.Place, &e.Country, &e.Venue,
		&e.StartDate, &e.EndDate, &e.Discipline, &e.Organizer,
		&e.ContactEmail, &e.Notes, &e.CreatedAt, &e.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, event.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get event: %w", err)
	}
	return e, nil
}

func (r *EventRepo) List(ctx context.Context, f event.ListFilter) ([]domain.Event, int, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}

	countQ := `SELECT COUNT(*) FROM events`
	args := []interface{}{}
	idx := 1

	if f.Search != "" {
		countQ += fmt.Sprintf(" WHERE (title ILIKE $%d OR place ILIKE $%d)", idx, idx)
		args = append(args, "%"+f.Search+"%")
		idx++
	}

	var total int
	if err := r.db.QueryRowContext(ctx, countQ, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count events: %w", err)
	}

	q := `
		SELECT id, title, place, COALESCE(country,''), COALESCE(venue,''),
		       start_date, end_date, COALESCE(discipline,''), COALESCE(organizer,''),
		       COALESCE(contact_email,''), COALESCE(notes,''), created_at, updated_at
		FROM events`

	qArgs := []interface{}{}
	qIdx := 1
	if f.Search != "" {
		q += fmt.Sprintf(" WHERE (title ILIKE $%d OR place ILIKE $%d)", qIdx, qIdx)
		qArgs = append(qArgs, "%"+f.Search+"%")
		qIdx++
	}
	q += fmt.Sprintf(" ORDER BY start_date ASC, id ASC LIMIT $%d OFFSET $%d", qIdx, qIdx+1)
	qArgs = append(qArgs, limit, f.Offset)

	rows, err := r.db.QueryContext(ctx, q, qArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var out []domain.Event
	for rows.Next() {
		var e domain.Event
		if err := rows.Scan(
			&e.ID, &e.Title, &e.Place, &e.Country, &e.Venue,
			&e.StartDate, &e.EndDate, &e.Discipline, &e.Organizer,
			&e.ContactEmail, &e.Notes, &e.CreatedAt, &e.UpdatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("scan event: %w", err)
		}
		out = append(out, e)
	}
	return out, total, nil
}

func (r *EventRepo) Create(ctx context.Context, e *domain.Event) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO events
			(title, place, country, venue, start_date, end_date,
			 discipline, organizer, contact_email, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())
		RETURNING id
	`, e.Title, e.Place, e.Country, e.Venue, e.StartDate, e.EndDate,
		e.Discipline, e.Organizer, e.ContactEmail, e.Notes).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create event: %w", err)
	}
	return id, nil
}

func (r *EventRepo) Update(ctx context.Context, id int64, u event.UpdateFields) error {
	sets := []string{}
	args := []interface{}{}
	idx := 1
	add := func(col string, val interface{}) {
		sets = append(sets, fmt.Sprintf("%s = $%d", col, idx))
		args = append(args, val)
		idx++
	}

	if u.Title != nil {
		add("title", *u.Title)
	}
	if u.Place != nil {
		add("place", *u.Place)
	}
	if u.Country != nil {
		add("country", *u.Country)
	}
	if u.Venue != nil {
		add("venue", *u.Venue)
	}
	if u.StartDate != nil {
		add("start_date", *u.StartDate)
	}
	if u.EndDate != nil {
		add("end_date", *u.EndDate)
	}
	if u.Discipline != nil {
		add("discipline", *u.Discipline)
	}
	if u.Organizer != nil {
		add("organizer", *u.Organizer)
	}
	if u.ContactEmail != nil {
		add("contact_email", *u.ContactEmail)
	}
	if u.Notes != nil {
		add("notes", *u.Notes)
	}

	if len(sets) == 0 {
		return nil
	}

	sets = append(sets, "updated_at = NOW()")
	q := fmt.Sprintf("UPDATE events SET %s WHERE id = $%d", joinComma(sets), idx)
	args = append(args, id)

	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return fmt.Errorf("update event: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return event.ErrNotFound
	}
	return nil
}

func (r *EventRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return event.ErrNotFound
	}
	return nil
}

func (r *EventRepo) StatusCounts(ctx context.Context, id int64) (*domain.EventStatusCounts, error) {
	c := &domain.EventStatusCounts{}
	err := r.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE status = 'open'),
			COUNT(*) FILTER (WHERE status = 'validated'),
			COUNT(*) FILTER (WHERE status = 'email_sent'),
			COUNT(*)
		FROM inscriptions
		WHERE event_id = $1
	`, id).Scan(&c.Open, &c.Validated, &c.EmailSent, &c.Total)
	if err != nil {
		return nil, fmt.Errorf("count inscription statuses: %w", err)
	}
	return c, nil
}

func joinComma(parts []string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += ", "
		}
		out += p
	}
	return out
}
