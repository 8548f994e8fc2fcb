package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"eventcheckin/internal/domain"
)

const registrationColumns = `r.id, r.event_id, r.user_id, r.status, r.registered_at, r.checked_in_at, r.checked_in_by`

type registrationRepository struct {
	DB *sql.DB
}

func NewRegistrationRepository(db *sql.DB) domain.RegistrationRepository {
	return &registrationRepository{
		DB: db,
	}
}

func (r *registrationRepository) Create(ctx context.Context, reg *domain.Registration) error {
	query := `
		INSERT INTO registrations (event_id, user_id, status, registered_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	err := conn(ctx, r.DB).QueryRowContext(ctx, query, reg.EventID, reg.UserID, reg.Status, reg.RegisteredAt).
		Scan(&reg.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyRegistered
		}
		return err
	}
	return nil
}

func (r *registrationRepository) GetByID(ctx context.Context, id string) (*domain.Registration, error) {
	query := `
		SELECT ` + registrationColumns + `
		FROM registrations r
		WHERE r.id = $1
	`
	reg := &domain.Registration{}
	if err := scanRegistration(conn(ctx, r.DB).QueryRowContext(ctx, query, id), reg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return reg, nil
}

func (r *registrationRepository) GetWithUser(ctx context.Context, id string) (*domain.RegistrationWithUser, error) {
	query := `
		SELECT ` + registrationColumns + `, u.name, u.email
		FROM registrations r
		JOIN users u ON u.id = r.user_id
		WHERE r.id = $1
	`
	reg := &domain.Registration{}
	user := &domain.UserSummary{}
	if err := scanRegistration(conn(ctx, r.DB).QueryRowContext(ctx, query, id), reg, &user.Name, &user.Email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	user.ID = reg.UserID
	return &domain.RegistrationWithUser{Registration: reg, User: user}, nil
}

func (r *registrationRepository) GetDetail(ctx context.Context, id string) (*domain.TicketDetail, error) {
	query := `
		SELECT ` + registrationColumns + `, ` + eventColumns + `, u.name, u.email
		FROM registrations r
		JOIN events e ON e.id = r.event_id
		JOIN users u ON u.id = r.user_id
		WHERE r.id = $1
	`
	reg := &domain.Registration{}
	ev := &domain.Event{}
	user := &domain.UserSummary{}
	var startNull, endNull, imageNull sql.NullString
	err := scanRegistration(conn(ctx, r.DB).QueryRowContext(ctx, query, id), reg,
		&ev.ID, &ev.Name, &ev.Description, &ev.Location, &ev.Date,
		&startNull, &endNull, &imageNull,
		&ev.Capacity, &ev.OrganizerID, &ev.Status, &ev.CreatedAt,
		&user.Name, &user.Email,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	ev.StartTime = startNull.String
	ev.EndTime = endNull.String
	ev.ImageURL = imageNull.String
	user.ID = reg.UserID
	return &domain.TicketDetail{Registration: reg, Event: ev, User: user}, nil
}

func (r *registrationRepository) GetByEventAndUser(ctx context.Context, eventID, userID string) (*domain.Registration, error) {
	query := `
		SELECT ` + registrationColumns + `
		FROM registrations r
		WHERE r.event_id = $1 AND r.user_id = $2
	`
	reg := &domain.Registration{}
	if err := scanRegistration(conn(ctx, r.DB).QueryRowContext(ctx, query, eventID, userID), reg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return reg, nil
}

func (r *registrationRepository) CountByEvent(ctx context.Context, eventID string) (int, error) {
	query := `SELECT COUNT(*) FROM registrations WHERE event_id = $1`
	var n int
	if err := conn(ctx, r.DB).QueryRowContext(ctx, query, eventID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count registrations: %w", err)
	}
	return n, nil
}

func (r *registrationRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.TicketWithEvent, error) {
	query := `
		SELECT ` + registrationColumns + `, e.name, e.date, e.location, e.start_time, e.image_url, e.status
		FROM registrations r
		JOIN events e ON e.id = r.event_id
		WHERE r.user_id = $1
		ORDER BY r.registered_at DESC, r.id
	`
	rows, err := conn(ctx, r.DB).QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tickets := make([]*domain.TicketWithEvent, 0)
	for rows.Next() {
		reg := &domain.Registration{}
		ev := &domain.EventSummary{}
		var startNull, imageNull sql.NullString
		if err := scanRegistration(rows, reg, &ev.Name, &ev.Date, &ev.Location, &startNull, &imageNull, &ev.Status); err != nil {
			return nil, err
		}
		ev.ID = reg.EventID
		ev.StartTime = startNull.String
		ev.ImageURL = imageNull.String
		tickets = append(tickets, &domain.TicketWithEvent{Registration: reg, Event: ev})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tickets, nil
}

func (r *registrationRepository) ListByEventID(ctx context.Context, eventID string, p domain.PaginationParams) ([]*domain.RegistrationWithUser, int, error) {
	q := conn(ctx, r.DB)
	var total int
	if err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM registrations WHERE event_id = $1`, eventID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count registrations: %w", err)
	}

	query := `
		SELECT ` + registrationColumns + `, u.name, u.email
		FROM registrations r
		JOIN users u ON u.id = r.user_id
		WHERE r.event_id = $1
		ORDER BY r.registered_at ASC, r.id
		LIMIT $2 OFFSET $3
	`
	var limit any
	if p.Limit() > 0 {
		limit = p.Limit()
	}
	rows, err := q.QueryContext(ctx, query, eventID, limit, p.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]*domain.RegistrationWithUser, 0)
	for rows.Next() {
		reg := &domain.Registration{}
		user := &domain.UserSummary{}
		if err := scanRegistration(rows, reg, &user.Name, &user.Email); err != nil {
			return nil, 0, err
		}
		user.ID = reg.UserID
		out = append(out, &domain.RegistrationWithUser{Registration: reg, User: user})
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *registrationRepository) ListCheckedInBy(ctx context.Context, staffID string) ([]*domain.ScanRecord, error) {
	query := `
		SELECT ` + registrationColumns + `, e.name, u.name, u.email
		FROM registrations r
		JOIN events e ON e.id = r.event_id
		JOIN users u ON u.id = r.user_id
		WHERE r.checked_in_by = $1
		ORDER BY r.checked_in_at DESC, r.id
	`
	rows, err := conn(ctx, r.DB).QueryContext(ctx, query, staffID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	history := make([]*domain.ScanRecord, 0)
	for rows.Next() {
		rec := &domain.ScanRecord{Registration: &domain.Registration{}, User: &domain.UserSummary{}}
		if err := scanRegistration(rows, rec.Registration, &rec.EventName, &rec.User.Name, &rec.User.Email); err != nil {
			return nil, err
		}
		rec.User.ID = rec.UserID
		history = append(history, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return history, nil
}

func (r *registrationRepository) MarkCheckedIn(ctx context.Context, id string, at time.Time, staffID string) (bool, error) {
	query := `
		UPDATE registrations
		SET status = $1, checked_in_at = $2, checked_in_by = $3
		WHERE id = $4 AND status = $5
	`
	res, err := conn(ctx, r.DB).ExecContext(ctx, query,
		domain.RegistrationStatusCheckedIn, at, staffID, id, domain.RegistrationStatusRegistered)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *registrationRepository) DeleteUnlessCheckedIn(ctx context.Context, id string) (bool, error) {
	query := `DELETE FROM registrations WHERE id = $1 AND status <> $2`
	res, err := conn(ctx, r.DB).ExecContext(ctx, query, id, domain.RegistrationStatusCheckedIn)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// scanRegistration scans registrationColumns into reg, followed by any extra destinations.
func scanRegistration(row rowScanner, reg *domain.Registration, extra ...any) error {
	var checkedInAt sql.NullTime
	var checkedInBy sql.NullString
	dest := []any{&reg.ID, &reg.EventID, &reg.UserID, &reg.Status, &reg.RegisteredAt, &checkedInAt, &checkedInBy}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return err
	}
	if checkedInAt.Valid {
		t := checkedInAt.Time
		reg.CheckedInAt = &t
	}
	if checkedInBy.Valid {
		s := checkedInBy.String
		reg.CheckedInBy = &s
	}
	return nil
}
