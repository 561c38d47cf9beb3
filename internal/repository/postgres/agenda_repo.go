package postgres

import (
	"context"
	"database/sql"
	"errors"

	"eventconnect/internal/domain"
)

type agendaRepository struct {
	DB DBTX
}

func NewAgendaRepository(db *sql.DB) domain.AgendaRepository {
	return &agendaRepository{DB: db}
}

func (r *agendaRepository) Create(ctx context.Context, it *domain.AgendaItem) error {
	query := `
		INSERT INTO agenda_items (event_id, title, description, start_time, end_time, speaker_id, location, type, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query,
		it.EventID, it.Title, nullString(it.Description), it.StartTime, it.EndTime,
		nullStringPtr(it.SpeakerID), nullString(it.Location), it.Type, it.CreatedAt,
	).Scan(&it.ID)
	if isPQCode(err, codeForeignKeyViolation) {
		return domain.ErrNotFound
	}
	return err
}

const agendaColumns = `id, event_id, title, description, to_char(start_time, 'HH24:MI'), to_char(end_time, 'HH24:MI'), speaker_id, location, type, created_at`

func scanAgendaItem(s rowScanner) (*domain.AgendaItem, error) {
	it := &domain.AgendaItem{}
	var description, speakerID, location sql.NullString
	err := s.Scan(&it.ID, &it.EventID, &it.Title, &description, &it.StartTime, &it.EndTime,
		&speakerID, &location, &it.Type, &it.CreatedAt)
	if err != nil {
		return nil, err
	}
	it.Description = description.String
	it.Location = location.String
	if speakerID.Valid {
		it.SpeakerID = &speakerID.String
	}
	return it, nil
}

func (r *agendaRepository) GetByID(ctx context.Context, id string) (*domain.AgendaItem, error) {
	query := `SELECT ` + agendaColumns + ` FROM agenda_items WHERE id = $1`
	it, err := scanAgendaItem(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return it, nil
}

func (r *agendaRepository) ListByEventID(ctx context.Context, eventID string) ([]*domain.AgendaItem, error) {
	query := `
		SELECT ` + agendaColumns + `
		FROM agenda_items
		WHERE event_id = $1
		ORDER BY start_time ASC
	`
	rows, err := r.DB.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := make([]*domain.AgendaItem, 0)
	for rows.Next() {
		it, err := scanAgendaItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *agendaRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM agenda_items WHERE id = $1`
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
