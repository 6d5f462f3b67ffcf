package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/skicrew/inscriptions/internal/domain"
	"github.com/skicrew/inscriptions/internal/service/inscription"
)

// fkViolation is the Postgres error code for foreign key violations.
const fkViolation = "23503"

// InscriptionRepo implements inscription.Repository against PostgreSQL.
type InscriptionRepo struct{ db *sql.DB }

// NewInscriptionRepo creates a Postgres-backed inscription repository.
func NewInscriptionRepo(db *sql.DB) *InscriptionRepo { return &InscriptionRepo{db: db} }

// sheetColumns is the column list shared by every inscription SELECT. The
// count subquery populates CompetitorCount without a second round trip.
const sheetColumns = `
	i.id, i.event_id, COALESCE(i.label,''), i.status,
	COALESCE(i.contact_name,''), COALESCE(i.contact_email,''),
	i.sent_at, i.created_at, i.updated_at,
	(SELECT COUNT(*) FROM competitors c WHERE c.inscription_id = i.id)`

func (r *InscriptionRepo) Get(ctx context.Context, id int64) (*domain.Inscription, error) {
	i := &domain.Inscription{}
	err := r.db.QueryRowContext(ctx, `
		SELECT `+sheetColumns+`
		FROM inscriptions i
		WHERE i.id = $1
	`, id).Scan(
		&i.ID, &i.EventID, &i.Label, &i.Status,
		&i.ContactName, &i.ContactEmail,
		&i.SentAt, &i.CreatedAt, &i.UpdatedAt,
		&i.CompetitorCount,
	)
	if err == sql.ErrNoRows {
		return nil, inscription.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get inscription: %w", err)
	}
	return i, nil
}

func (r *InscriptionRepo) GetWithEvent(ctx context.Context, id int64) (*domain.Inscription, *domain.Event, error) {
	i := &domain.Inscription{}
	e := &domain.Event{}
	err := r.db.QueryRowContext(ctx, `
		SELECT `+sheetColumns+`,
		       e.id, e.title, e.place, COALESCE(e.country,''), COALESCE(e.venue,''),
		       e.start_date, e.end_date, COALESCE(e.discipline,''), COALESCE(e.organizer,''),
		       COALESCE(e.contact_email,''), COALESCE(e.notes,''), e.created_at, e.updated_at
		FROM inscriptions i
		JOIN events e ON e.id = i.event_id
		WHERE i.id = $1
	`, id).Scan(
		&i.ID, &i.EventID, &i.Label, &i.Status,
		&i.ContactName, &i.ContactEmail,
		&i.SentAt, &i.CreatedAt, &i.UpdatedAt,
		&i.CompetitorCount,
		&e.ID, &e.Title, &e.Place, &e.Country, &e.Venue,
		&e.StartDate, &e.EndDate, &e.Discipline, &e.Organizer,
		&e.ContactEmail, &e.Notes, &e.CreatedAt, &e.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil, inscription.ErrNotFound
	}
	if err != nil {
		return nil, nil, fmt.Errorf("get inscription with event: %w", err)
	}
	return i, e, nil
}

func (r *InscriptionRepo) ListByEvent(ctx context.Context, eventID int64, f inscription.ListFilter) ([]domain.Inscription, int, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}

	countQ := `SELECT COUNT(*) FROM inscriptions WHERE event_id = $1`
	args := []interface{}{eventID}
	idx := 2

	if f.Status != "" {
		countQ += fmt.Sprintf(" AND status = $%d", idx)
		args = append(args, f.Status)
		idx++
	}

	var total int
	if err := r.db.QueryRowContext(ctx, countQ, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count inscriptions: %w", err)
	}

	q := `
		SELECT ` + sheetColumns + `
		FROM inscriptions i
		WHERE i.event_id = $1`

	qArgs := []interface{}{eventID}
	qIdx := 2
	if f.Status != "" {
		q += fmt.Sprintf(" AND i.status = $%d", qIdx)
		qArgs = append(qArgs, f.Status)
		qIdx++
	}
	q += fmt.Sprintf(" ORDER BY i.created_at ASC LIMIT $%d OFFSET $%d", qIdx, qIdx+1)
	qArgs = append(qArgs, limit, f.Offset)

	rows, err := r.db.QueryContext(ctx, q, qArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("list inscriptions: %w", err)
	}
	defer rows.Close()

	var out []domain.Inscription
	for rows.Next() {
		var i domain.Inscription
		if err := rows.Scan(
			&i.ID, &i.EventID, &i.Label, &i.Status,
			&i.ContactName, &i.ContactEmail,
			&i.SentAt, &i.CreatedAt, &i.UpdatedAt,
			&i.CompetitorCount,
		); err != nil {
			return nil, 0, fmt.Errorf("scan inscription: %w", err)
		}
		out = append(out, i)
	}
	return out, total, nil
}

func (r *InscriptionRepo) Create(ctx context.Context, i *domain.Inscription) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO inscriptions
			(event_id, label, status, contact_name, contact_email, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING id
	`, i.EventID, i.Label, i.Status, i.ContactName, i.ContactEmail).Scan(&id)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == fkViolation {
			return 0, inscription.ErrEventNotFound
		}
		return 0, fmt.Errorf("create inscription: %w", err)
	}
	return id, nil
}

func (r *InscriptionRepo) Update(ctx context.Context, id int64, u inscription.UpdateFields) error {
	sets := []string{}
	args := []interface{}{}
	idx := 1
	add := func(col string, val interface{}) {
		sets = append(sets, fmt.Sprintf("%s = $%d", col, idx))
		args = append(args, val)
		idx++
	}

	if u.Label != nil {
		add("label", *u.Label)
	}
	if u.ContactName != nil {
		add("contact_name", *u.ContactName)
	}
	if u.ContactEmail != nil {
		add("contact_email", *u.ContactEmail)
	}

	if len(sets) == 0 {
		return nil
	}

	sets = append(sets, "updated_at = NOW()")
	q := fmt.Sprintf("UPDATE inscriptions SET %s WHERE id = $%d", joinComma(sets), idx)
	args = append(args, id)

	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return fmt.Errorf("update inscription: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return inscription.ErrNotFound
	}
	return nil
}

func (r *InscriptionRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM inscriptions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete inscription: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return inscription.ErrNotFound
	}
	return nil
}

func (r *InscriptionRepo) UpdateStatus(ctx context.Context, id int64, status domain.InscriptionStatus, sentAt *time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE inscriptions SET status = $1, sent_at = $2, updated_at = NOW()
		WHERE id = $3
	`, status, sentAt, id)
	if err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return inscription.ErrNotFound
	}
	return nil
}

func (r *InscriptionRepo) Competitors(ctx context.Context, inscriptionID int64, gender domain.Gender) ([]domain.Competitor, error) {
	q := `
		SELECT id, inscription_id, COALESCE(first_name,''), last_name, gender,
		       COALESCE(birth_year,0), COALESCE(category,''), COALESCE(club,''),
		       COALESCE(license,''), COALESCE(points,0), created_at, updated_at
		FROM competitors
		WHERE inscription_id = $1`

	args := []interface{}{inscriptionID}
	if gender != "" {
		q += " AND gender = $2"
		args = append(args, gender)
	}
	q += " ORDER BY points ASC, last_name ASC, first_name ASC"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list competitors: %w", err)
	}
	defer rows.Close()

	var out []domain.Competitor
	for rows.Next() {
		var c domain.Competitor
		if err := rows.Scan(
			&c.ID, &c.InscriptionID, &c.FirstName, &c.LastName, &c.Gender,
			&c.BirthYear, &c.Category, &c.Club,
			&c.License, &c.Points, &c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan competitor: %w", err)
		}
		out = append(out, c)
	}
	return out, nil
}

func (r *InscriptionRepo) GetCompetitor(ctx context.Context, id int64) (*domain.Competitor, error) {
	c := &domain.Competitor{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, inscription_id, COALESCE(first_name,''), last_name, gender,
		       COALESCE(birth_year,0), COALESCE(category,''), COALESCE(club,''),
		       COALESCE(license,''), COALESCE(points,0), created_at, updated_at
		FROM competitors
		WHERE id = $1
	`, id).Scan(
		&c.ID, &c.InscriptionID, &c.FirstName, &c.LastName, &c.Gender,
		&c.BirthYear, &c.Category, &c.Club,
		&c.License, &c.Points, &c.CreatedAt, &c.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, inscription.ErrCompetitorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get competitor: %w", err)
	}
	return c, nil
}

func (r *InscriptionRepo) AddCompetitor(ctx context.Context, c *domain.Competitor) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO competitors
			(inscription_id, first_name, last_name, gender, birth_year,
			 category, club, license, points, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
		RETURNING id
	`, c.InscriptionID, c.FirstName, c.LastName, c.Gender, c.BirthYear,
		c.Category, c.Club, c.License, c.Points).Scan(&id)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == fkViolation {
			return 0, inscription.ErrNotFound
		}
		return 0, fmt.Errorf("add competitor: %w", err)
	}
	return id, nil
}

func (r *InscriptionRepo) UpdateCompetitor(ctx context.Context, id int64, u inscription.CompetitorUpdateFields) error {
	sets := []string{}
	args := []interface{}{}
	idx := 1
	add := func(col string, val interface{}) {
		sets = append(sets, fmt.Sprintf("%s = $%d", col, idx))
		args = append(args, val)
		idx++
	}

	if u.FirstName != nil {
		add("first_name", *u.FirstName)
	}
	if u.LastName != nil {
		add("last_name", *u.LastName)
	}
	if u.Gender != nil {
		add("gender", *u.Gender)
	}
	if u.BirthYear != nil {
		add("birth_year", *u.BirthYear)
	}
	if u.Category != nil {
		add("category", *u.Category)
	}
	if u.Club != nil {
		add("club", *u.Club)
	}
	if u.License != nil {
		add("license", *u.License)
	}
	if u.Points != nil {
		add("points", *u.Points)
	}

	if len(sets) == 0 {
		return nil
	}

	sets = append(sets, "updated_at = NOW()")
	q := fmt.Sprintf("UPDATE competitors SET %s WHERE id = $%d", joinComma(sets), idx)
	args = append(args, id)

	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return fmt.Errorf("update competitor: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return inscription.ErrCompetitorNotFound
	}
	return nil
}

func (r *InscriptionRepo) DeleteCompetitor(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM competitors WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete competitor: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return inscription.ErrCompetitorNotFound
	}
	return nil
}
