package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"eventcheckin/internal/domain"
)

var eventRowColumns = []string{"id", "name", "description", "location", "date", "start_time", "end_time", "image_url", "capacity", "organizer_id", "status", "created_at"}

func TestEventRepository_Create(t *testing.T) {
	ctx := context.Background()
	date := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	createdAt := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		event   *domain.Event
		mock    func(mock sqlmock.Sqlmock)
		wantID  string
		wantErr bool
	}{
		{
			name: "success",
			event: &domain.Event{
				Name: "Conf 2025", Description: "Talks", Location: "Hall A", Date: date,
				StartTime: "09:00", Capacity: 50, OrganizerID: "org-1",
				Status: domain.EventStatusUpcoming, CreatedAt: createdAt,
			},
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO events \(name, description, location, date, start_time, end_time, image_url, capacity, organizer_id, status, created_at\)`).
					WithArgs("Conf 2025", "Talks", "Hall A", date, "09:00", nil, nil, 50, "org-1", "upcoming", createdAt).
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("ev-uuid-1"))
			},
			wantID: "ev-uuid-1",
		},
		{
			name:  "db error",
			event: &domain.Event{Name: "Conf", Capacity: 1, Status: domain.EventStatusUpcoming},
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO events`).
					WillReturnError(sql.ErrConnDone)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			repo := NewEventRepository(db)
			err = repo.Create(ctx, tt.event)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.wantID, tt.event.ID)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestEventRepository_GetByID(t *testing.T) {
	ctx := context.Background()
	date := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	createdAt := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		id      string
		mock    func(mock sqlmock.Sqlmock)
		want    *domain.Event
		wantErr error
	}{
		{
			name: "found",
			id:   "ev-1",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`FROM events e\s+WHERE e.id = \$1`).
					WithArgs("ev-1").
					WillReturnRows(sqlmock.NewRows(eventRowColumns).
						AddRow("ev-1", "Conf", "Talks", "Hall A", date, "09:00", "17:00", nil, 2, "org-1", "ongoing", createdAt))
			},
			want: &domain.Event{
				ID: "ev-1", Name: "Conf", Description: "Talks", Location: "Hall A", Date: date,
				StartTime: "09:00", EndTime: "17:00", Capacity: 2, OrganizerID: "org-1",
				Status: domain.EventStatusOngoing, CreatedAt: createdAt,
			},
		},
		{
			name: "not found",
			id:   "missing",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`FROM events e`).
					WithArgs("missing").
					WillReturnError(sql.ErrNoRows)
			},
			wantErr: domain.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			got, err := NewEventRepository(db).GetByID(ctx, tt.id)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestEventRepository_GetByIDForUpdate_LocksRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`WHERE e.id = \$1\s+FOR UPDATE`).
		WithArgs("ev-1").
		WillReturnRows(sqlmock.NewRows(eventRowColumns).
			AddRow("ev-1", "Conf", "Talks", "Hall A", time.Now(), nil, nil, nil, 10, "org-1", "upcoming", time.Now()))

	got, err := NewEventRepository(db).GetByIDForUpdate(context.Background(), "ev-1")
	require.NoError(t, err)
	require.Equal(t, 10, got.Capacity)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepository_GetWithOrganizer(t *testing.T) {
	tests := []struct {
		name          string
		orgName       any
		orgEmail      any
		wantOrganizer *domain.UserSummary
	}{
		{"organizer present", "Grace", "grace@example.com", &domain.UserSummary{ID: "org-1", Name: "Grace", Email: "grace@example.com"}},
		{"organizer missing", nil, nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			cols := append(append([]string{}, eventRowColumns...), "u_name", "u_email")
			mock.ExpectQuery(`LEFT JOIN users u ON u.id = e.organizer_id`).
				WithArgs("ev-1").
				WillReturnRows(sqlmock.NewRows(cols).
					AddRow("ev-1", "Conf", "Talks", "Hall A", time.Now(), nil, nil, nil, 10, "org-1", "upcoming", time.Now(), tt.orgName, tt.orgEmail))

			got, err := NewEventRepository(db).GetWithOrganizer(context.Background(), "ev-1")
			require.NoError(t, err)
			require.Equal(t, "ev-1", got.ID)
			require.Equal(t, tt.wantOrganizer, got.Organizer)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestEventRepository_List(t *testing.T) {
	ctx := context.Background()
	d1 := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	createdAt := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("page ordered by date", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM events`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
		mock.ExpectQuery(`FROM events e\s+ORDER BY e.date ASC, e.id\s+LIMIT \$1 OFFSET \$2`).
			WithArgs(2, 0).
			WillReturnRows(sqlmock.NewRows(eventRowColumns).
				AddRow("ev-1", "Early", "d", "Hall A", d1, "09:00", nil, nil, 10, "org-1", "upcoming", createdAt).
				AddRow("ev-2", "Late", "d", "Hall B", d2, nil, nil, "https://img", 20, "org-1", "upcoming", createdAt))

		events, total, err := NewEventRepository(db).List(ctx, domain.PaginationParams{Page: 1, PageSize: 2})
		require.NoError(t, err)
		require.Equal(t, 3, total)
		require.Len(t, events, 2)
		require.Equal(t, "ev-1", events[0].ID)
		require.Equal(t, "09:00", events[0].StartTime)
		require.Equal(t, "https://img", events[1].ImageURL)
		require.Empty(t, events[1].StartTime)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no events", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM events`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectQuery(`ORDER BY e.date ASC, e.id`).
			WithArgs(20, 20).
			WillReturnRows(sqlmock.NewRows(eventRowColumns))

		events, total, err := NewEventRepository(db).List(ctx, domain.PaginationParams{Page: 2, PageSize: 20})
		require.NoError(t, err)
		require.Zero(t, total)
		require.NotNil(t, events)
		require.Empty(t, events)
	})

	t.Run("count error", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM events`).WillReturnError(sql.ErrConnDone)
		_, _, err = NewEventRepository(db).List(ctx, domain.PaginationParams{Page: 1, PageSize: 20})
		require.ErrorIs(t, err, sql.ErrConnDone)
	})
}
