package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"eventconnect/internal/domain"
)

type attendeeRepository struct {
	DB     *sql.DB
	Logger *slog.Logger
}

func NewAttendeeRepository(db *sql.DB, logger *slog.Logger) domain.AttendeeRepository {
	return &attendeeRepository{
		DB:     db,
		Logger: logger,
	}
}

// Create holds the event row lock while counting so concurrent registrations
// cannot take more seats than max_attendees.
func (r *attendeeRepository) Create(ctx context.Context, a *domain.Attendance) error {
	return WithTx(ctx, r.DB, func(tx *sql.Tx) error {
		var capacity sql.NullInt64
		err := tx.QueryRowContext(ctx, `SELECT max_attendees FROM events WHERE id = $1 FOR UPDATE`, a.EventID).Scan(&capacity)
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		if err != nil {
			return err
		}

		query := `
			INSERT INTO event_attendees (event_id, user_id, created_at)
			SELECT $1, $2, $3
			WHERE $4::int IS NULL
				OR (SELECT COUNT(*) FROM event_attendees WHERE event_id = $1) < $4::int
			RETURNING id
		`
		err = tx.QueryRowContext(ctx, query, a.EventID, a.UserID, a.CreatedAt, capacity).Scan(&a.ID)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return domain.ErrEventFull
		case isPQCode(err, codeUniqueViolation):
			return domain.ErrAlreadyRegistered
		case isPQCode(err, codeForeignKeyViolation):
			return domain.ErrNotFound
		}
		return err
	})
}

func (r *attendeeRepository) Delete(ctx context.Context, eventID, userID string) error {
	query := `DELETE FROM event_attendees WHERE event_id = $1 AND user_id = $2`
	_, err := r.DB.ExecContext(ctx, query, eventID, userID)
	return err
}

func (r *attendeeRepository) Exists(ctx context.Context, eventID, userID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM event_attendees WHERE event_id = $1 AND user_id = $2)`
	var exists bool
	err := r.DB.QueryRowContext(ctx, query, eventID, userID).Scan(&exists)
	return exists, err
}

func (r *attendeeRepository) CountByEventID(ctx context.Context, eventID string) (int, error) {
	query := `SELECT COUNT(*) FROM event_attendees WHERE event_id = $1`
	var n int
	err := r.DB.QueryRowContext(ctx, query, eventID).Scan(&n)
	return n, err
}

func (r *attendeeRepository) ListUsersByEventID(ctx context.Context, eventID string) ([]*domain.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM event_attendees a
		LEFT JOIN users u ON u.id = a.user_id
		WHERE a.event_id = $1
		ORDER BY a.created_at ASC
	`
	rows, err := r.DB.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	users := make([]*domain.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			if skipRejected(ctx, r.Logger, err) {
				continue
			}
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *attendeeRepository) ListEventsByUserID(ctx context.Context, userID string) ([]*domain.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM event_attendees a
		LEFT JOIN events e ON e.id = a.event_id
		` + organizerJoin + `
		WHERE a.user_id = $1
		ORDER BY e.date ASC, e.time ASC
	`
	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	events := make([]*domain.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			if skipRejected(ctx, r.Logger, err) {
				continue
			}
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
