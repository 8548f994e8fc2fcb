package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"eventcheckin/internal/domain"
)

const eventColumns = `e.id, e.name, e.description, e.location, e.date, e.start_time, e.end_time, e.image_url, e.capacity, e.organizer_id, e.status, e.created_at`

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{
		DB: db,
	}
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	query := `
		INSERT INTO events (name, description, location, date, start_time, end_time, image_url, capacity, organizer_id, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`
	return conn(ctx, r.DB).QueryRowContext(ctx, query,
		e.Name, e.Description, e.Location, e.Date,
		nullString(e.StartTime), nullString(e.EndTime), nullString(e.ImageURL),
		e.Capacity, e.OrganizerID, e.Status, e.CreatedAt,
	).Scan(&e.ID)
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events e
		WHERE e.id = $1
	`
	return r.getOne(ctx, query, id)
}

func (r *eventRepository) GetByIDForUpdate(ctx context.Context, id string) (*domain.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events e
		WHERE e.id = $1
		FOR UPDATE
	`
	return r.getOne(ctx, query, id)
}

func (r *eventRepository) GetWithOrganizer(ctx context.Context, id string) (*domain.EventWithOrganizer, error) {
	query := `
		SELECT ` + eventColumns + `, u.name, u.email
		FROM events e
		LEFT JOIN users u ON u.id = e.organizer_id
		WHERE e.id = $1
	`
	e := &domain.Event{}
	var name, email sql.NullString
	err := scanEvent(conn(ctx, r.DB).QueryRowContext(ctx, query, id), e, &name, &email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	out := &domain.EventWithOrganizer{Event: e}
	if name.Valid {
		out.Organizer = &domain.UserSummary{ID: e.OrganizerID, Name: name.String, Email: email.String}
	}
	return out, nil
}

// List returns one page of events ordered by date, with id breaking ties, and
// the total number of events.
func (r *eventRepository) List(ctx context.Context, p domain.PaginationParams) ([]*domain.Event, int, error) {
	q := conn(ctx, r.DB)
	var total int
	if err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM events`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count events: %w", err)
	}

	query := `
		SELECT ` + eventColumns + `
		FROM events e
		ORDER BY e.date ASC, e.id
		LIMIT $1 OFFSET $2
	`
	var limit any
	if p.Limit() > 0 {
		limit = p.Limit()
	}
	rows, err := q.QueryContext(ctx, query, limit, p.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]*domain.Event, 0)
	for rows.Next() {
		e := &domain.Event{}
		if err := scanEvent(rows, e); err != nil {
			return nil, 0, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *eventRepository) getOne(ctx context.Context, query, id string) (*domain.Event, error) {
	e := &domain.Event{}
	if err := scanEvent(conn(ctx, r.DB).QueryRowContext(ctx, query, id), e); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

// scanEvent scans eventColumns into e, followed by any extra destinations.
func scanEvent(row rowScanner, e *domain.Event, extra ...any) error {
	var startNull, endNull, imageNull sql.NullString
	dest := []any{
		&e.ID, &e.Name, &e.Description, &e.Location, &e.Date,
		&startNull, &endNull, &imageNull,
		&e.Capacity, &e.OrganizerID, &e.Status, &e.CreatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return err
	}
	e.StartTime = startNull.String
	e.EndTime = endNull.String
	e.ImageURL = imageNull.String
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
