package postgres

import (
	"context"
	"database/sql"
	"errors"

	"eventconnect/internal/domain"
)

type speakerRepository struct {
	DB DBTX
}

func NewSpeakerRepository(db *sql.DB) domain.SpeakerRepository {
	return &speakerRepository{DB: db}
}

func (r *speakerRepository) Create(ctx context.Context, s *domain.Speaker) error {
	query := `
		INSERT INTO speakers (event_id, name, bio, company, position, linkedin, twitter, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query,
		s.EventID, s.Name, nullString(s.Bio), nullString(s.Company), nullString(s.Position),
		nullString(s.LinkedIn), nullString(s.Twitter), s.CreatedAt,
	).Scan(&s.ID)
	if isPQCode(err, codeForeignKeyViolation) {
		return domain.ErrNotFound
	}
	return err
}

const speakerColumns = `id, event_id, name, bio, company, position, linkedin, twitter, created_at`

func scanSpeaker(s rowScanner) (*domain.Speaker, error) {
	sp := &domain.Speaker{}
	var bio, company, position, linkedin, twitter sql.NullString
	if err := s.Scan(&sp.ID, &sp.EventID, &sp.Name, &bio, &company, &position, &linkedin, &twitter, &sp.CreatedAt); err != nil {
		return nil, err
	}
	sp.Bio = bio.String
	sp.Company = company.String
	sp.Position = position.String
	sp.LinkedIn = linkedin.String
	sp.Twitter = twitter.String
	return sp, nil
}

func (r *speakerRepository) GetByID(ctx context.Context, id string) (*domain.Speaker, error) {
	query := `SELECT ` + speakerColumns + ` FROM speakers WHERE id = $1`
	sp, err := scanSpeaker(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return sp, nil
}

func (r *speakerRepository) ListByEventID(ctx context.Context, eventID string) ([]*domain.Speaker, error) {
	query := `
		SELECT ` + speakerColumns + `
		FROM speakers
		WHERE event_id = $1
		ORDER BY name ASC
	`
	rows, err := r.DB.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	speakers := make([]*domain.Speaker, 0)
	for rows.Next() {
		sp, err := scanSpeaker(rows)
		if err != nil {
			return nil, err
		}
		speakers = append(speakers, sp)
	}
	return speakers, rows.Err()
}

func (r *speakerRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM speakers WHERE id = $1`
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
