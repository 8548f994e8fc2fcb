package postgres

import (
	"context"
	"database/sql"

	"eventcheckin/internal/domain"
)

type statsRepository struct {
	DB *sql.DB
}

func NewStatsRepository(db *sql.DB) domain.StatsRepository {
	return &statsRepository{DB: db}
}

func (r *statsRepository) GlobalCounts(ctx context.Context) (domain.Counts, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM events),
			(SELECT COUNT(*) FROM registrations),
			(SELECT COUNT(*) FROM registrations WHERE status = $1)
	`
	var c domain.Counts
	err := conn(ctx, r.DB).QueryRowContext(ctx, query, domain.RegistrationStatusCheckedIn).
		Scan(&c.Events, &c.Registrations, &c.CheckIns)
	return c, err
}

func (r *statsRepository) EventCounts(ctx context.Context, eventID string) (domain.Counts, error) {
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = $2)
		FROM registrations
		WHERE event_id = $1
	`
	c := domain.Counts{Events: 1}
	err := conn(ctx, r.DB).QueryRowContext(ctx, query, eventID, domain.RegistrationStatusCheckedIn).
		Scan(&c.Registrations, &c.CheckIns)
	return c, err
}
