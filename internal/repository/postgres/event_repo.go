package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"eventconnect/internal/domain"
)

type eventRepository struct {
	DB     DBTX
	Logger *slog.Logger
}

func NewEventRepository(db *sql.DB, logger *slog.Logger) domain.EventRepository {
	return &eventRepository{
		DB:     db,
		Logger: logger,
	}
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	query := `
		INSERT INTO events (title, description, date, time, venue, organizer_id, max_attendees, category, status, price, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query,
		e.Title, e.Description, e.Date, e.Time, e.Venue, e.OrganizerID,
		nullInt(e.MaxAttendees), e.Category, e.Status, nullDecimal(e.Price), e.CreatedAt, e.UpdatedAt,
	).Scan(&e.ID)
	if isPQCode(err, codeForeignKeyViolation) {
		return domain.ErrUserNotFound
	}
	return err
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events e
		` + organizerJoin + `
		WHERE e.id = $1
	`
	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || skipRejected(ctx, r.Logger, err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) List(ctx context.Context, filter domain.EventFilter) ([]*domain.Event, int, error) {
	var conds []string
	args := []any{}
	if filter.Category != nil {
		args = append(args, *filter.Category)
		conds = append(conds, fmt.Sprintf("e.category = $%d", len(args)))
	}
	if filter.Query != "" {
		args = append(args, "%"+escapeLike(filter.Query)+"%")
		conds = append(conds, fmt.Sprintf("(e.title ILIKE $%d OR e.description ILIKE $%d)", len(args), len(args)))
	}
	where := ""
	if len(conds) > 0 {
		where = "WHERE " + strings.Join(conds, " AND ")
	}
	query := `
		SELECT ` + eventColumns + `
		FROM events e
		` + organizerJoin + `
		` + where + `
		ORDER BY e.date ASC, e.time ASC
	`
	paginated := filter.Pagination.Paginated()
	if paginated {
		query += fmt.Sprintf("LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
		args = append(args, filter.Pagination.PageSize, filter.Pagination.Offset())
	}
	events, err := r.list(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	if !paginated {
		return events, len(events), nil
	}
	var total int
	countQuery := `SELECT COUNT(*) FROM events e ` + where
	if err := r.DB.QueryRowContext(ctx, countQuery, args[:len(args)-2]...).Scan(&total); err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes wildcard characters in s match literally.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func (r *eventRepository) ListByOrganizerID(ctx context.Context, organizerID string) ([]*domain.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events e
		` + organizerJoin + `
		WHERE e.organizer_id = $1
		ORDER BY e.date ASC, e.time ASC
	`
	return r.list(ctx, query, organizerID)
}

func (r *eventRepository) list(ctx context.Context, query string, args ...any) ([]*domain.Event, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
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

func (r *eventRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM events WHERE id = $1`
	result, err := r.DB.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *eventRepository) Update(ctx context.Context, id string, upd domain.EventUpdate) (*domain.Event, error) {
	setClauses := []string{"updated_at = NOW()"}
	args := []any{}
	n := 1
	set := func(column string, value any) {
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, n))
		args = append(args, value)
		n++
	}
	if upd.Title != nil {
		set("title", *upd.Title)
	}
	if upd.Description != nil {
		set("description", *upd.Description)
	}
	if upd.Date != nil {
		set("date", *upd.Date)
	}
	if upd.Time != nil {
		set("time", *upd.Time)
	}
	if upd.Venue != nil {
		set("venue", *upd.Venue)
	}
	if upd.MaxAttendees != nil {
		set("max_attendees", *upd.MaxAttendees)
	}
	if upd.Category != nil {
		set("category", *upd.Category)
	}
	if upd.Status != nil {
		set("status", *upd.Status)
	}
	if upd.Price != nil {
		set("price", nullDecimal(upd.Price))
	}
	if n == 1 {
		// No fields to update; just fetch current row
		return r.GetByID(ctx, id)
	}
	args = append(args, id)
	query := fmt.Sprintf(`UPDATE events SET %s WHERE id = $%d`, strings.Join(setClauses, ", "), n)
	result, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return nil, domain.ErrNotFound
	}
	return r.GetByID(ctx, id)
}
