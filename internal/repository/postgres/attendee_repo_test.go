package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventconnect/internal/domain"
	"eventconnect/internal/metrics"
)

func TestAttendeeRepository_Create(t *testing.T) {
	ctx := context.Background()
	const (
		lockQuery   = `SELECT max_attendees FROM events WHERE id = \$1 FOR UPDATE`
		insertQuery = `INSERT INTO event_attendees \(event_id, user_id, created_at\)\s+SELECT \$1, \$2, \$3\s+WHERE \$4::int IS NULL`
	)
	capacityRow := func(v driver.Value) *sqlmock.Rows {
		return sqlmock.NewRows([]string{"max_attendees"}).AddRow(v)
	}

	tests := []struct {
		name   string
		mock   func(mock sqlmock.Sqlmock)
		wantID string
		errIs  error
	}{
		{
			name: "seat available",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(lockQuery).WithArgs("ev-1").WillReturnRows(capacityRow(int64(2)))
				mock.ExpectQuery(insertQuery).
					WithArgs("ev-1", "user-1", ts, int64(2)).
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("att-1"))
				mock.ExpectCommit()
			},
			wantID: "att-1",
		},
		{
			name: "unlimited event",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(lockQuery).WithArgs("ev-1").WillReturnRows(capacityRow(nil))
				mock.ExpectQuery(insertQuery).
					WithArgs("ev-1", "user-1", ts, nil).
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("att-2"))
				mock.ExpectCommit()
			},
			wantID: "att-2",
		},
		{
			name: "no seat left inserts nothing",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(lockQuery).WithArgs("ev-1").WillReturnRows(capacityRow(int64(1)))
				mock.ExpectQuery(insertQuery).
					WithArgs("ev-1", "user-1", ts, int64(1)).
					WillReturnRows(sqlmock.NewRows([]string{"id"}))
				mock.ExpectRollback()
			},
			errIs: domain.ErrEventFull,
		},
		{
			name: "event missing",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(lockQuery).WithArgs("ev-1").WillReturnError(sql.ErrNoRows)
				mock.ExpectRollback()
			},
			errIs: domain.ErrNotFound,
		},
		{
			name: "duplicate registration",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(lockQuery).WillReturnRows(capacityRow(nil))
				mock.ExpectQuery(insertQuery).WillReturnError(&pq.Error{Code: "23505"})
				mock.ExpectRollback()
			},
			errIs: domain.ErrAlreadyRegistered,
		},
		{
			name: "user gone",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(lockQuery).WillReturnRows(capacityRow(nil))
				mock.ExpectQuery(insertQuery).WillReturnError(&pq.Error{Code: "23503"})
				mock.ExpectRollback()
			},
			errIs: domain.ErrNotFound,
		},
		{
			name: "db error",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(lockQuery).WillReturnError(sql.ErrConnDone)
				mock.ExpectRollback()
			},
			errIs: sql.ErrConnDone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			a := domain.NewAttendance("ev-1", "user-1", ts)
			err = NewAttendeeRepository(db, testLogger).Create(ctx, a)
			if tt.errIs != nil {
				require.ErrorIs(t, err, tt.errIs)
				assert.Empty(t, a.ID)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantID, a.ID)
			}
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestAttendeeRepository_Delete_ZeroRowsIsSuccess(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`DELETE FROM event_attendees WHERE event_id = \$1 AND user_id = \$2`).
		WithArgs("ev-1", "user-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, NewAttendeeRepository(db, testLogger).Delete(context.Background(), "ev-1", "user-1"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendeeRepository_ExistsAndCount(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT EXISTS \(SELECT 1 FROM event_attendees WHERE event_id = \$1 AND user_id = \$2\)`).
		WithArgs("ev-1", "user-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM event_attendees WHERE event_id = \$1`).
		WithArgs("ev-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	repo := NewAttendeeRepository(db, testLogger)
	exists, err := repo.Exists(context.Background(), "ev-1", "user-1")
	require.NoError(t, err)
	assert.True(t, exists)
	n, err := repo.CountByEventID(context.Background(), "ev-1")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendeeRepository_ListUsersByEventID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	dangling := []driver.Value{nil, nil, nil, nil, nil, nil, nil, nil, nil, nil, nil}
	noName := userRow("user-3", "c@example.com", "")
	mock.ExpectQuery(`FROM event_attendees a\s+LEFT JOIN users u ON u.id = a.user_id\s+WHERE a.event_id = \$1`).
		WithArgs("ev-1").
		WillReturnRows(sqlmock.NewRows(userRowColumns).
			AddRow(userRow("user-1", "a@example.com", "Ann")...).
			AddRow(dangling...).
			AddRow(noName...).
			AddRow(userRow("user-4", "d@example.com", "Dan")...))

	nullBefore := testutil.ToFloat64(metrics.RowsRejected("users", metrics.ReasonNullJoin))
	missingBefore := testutil.ToFloat64(metrics.RowsRejected("users", metrics.ReasonMissingField))

	users, err := NewAttendeeRepository(db, testLogger).ListUsersByEventID(context.Background(), "ev-1")
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "user-1", users[0].ID)
	assert.Equal(t, "user-4", users[1].ID)
	assert.Equal(t, nullBefore+1, testutil.ToFloat64(metrics.RowsRejected("users", metrics.ReasonNullJoin)))
	assert.Equal(t, missingBefore+1, testutil.ToFloat64(metrics.RowsRejected("users", metrics.ReasonMissingField)))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendeeRepository_ListEventsByUserID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	danglingEvent := make([]driver.Value, len(eventRowColumns))
	mock.ExpectQuery(`FROM event_attendees a\s+LEFT JOIN events e ON e.id = a.event_id`).
		WithArgs("user-1").
		WillReturnRows(eventRows(eventRow("ev-1", "Demo Day", nil), danglingEvent))

	before := testutil.ToFloat64(metrics.RowsRejected("events", metrics.ReasonNullJoin))
	events, err := NewAttendeeRepository(db, testLogger).ListEventsByUserID(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "Demo Day", events[0].Title)
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.RowsRejected("events", metrics.ReasonNullJoin)))
	require.NoError(t, mock.ExpectationsWereMet())
}
