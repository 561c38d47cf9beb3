package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"eventconnect/internal/domain"
)

type authSessionRepository struct {
	DB DBTX
}

// NewAuthSessionRepository returns a domain.AuthSessionRepository implemented with Postgres.
func NewAuthSessionRepository(db *sql.DB) domain.AuthSessionRepository {
	return &authSessionRepository{DB: db}
}

func (r *authSessionRepository) Create(ctx context.Context, s *domain.AuthSession) error {
	query := `
		INSERT INTO auth_sessions (id, user_id, role, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.DB.ExecContext(ctx, query, s.ID, s.UserID, s.Role, s.ExpiresAt, s.CreatedAt)
	if isPQCode(err, codeForeignKeyViolation) {
		return domain.ErrUserNotFound
	}
	return err
}

func (r *authSessionRepository) GetByID(ctx context.Context, id string) (*domain.AuthSession, error) {
	query := `
		SELECT id, user_id, role, expires_at, created_at
		FROM auth_sessions
		WHERE id = $1
	`
	s := &domain.AuthSession{}
	err := r.DB.QueryRowContext(ctx, query, id).Scan(&s.ID, &s.UserID, &s.Role, &s.ExpiresAt, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return s, nil
}

func (r *authSessionRepository) Delete(ctx context.Context, id string) (bool, error) {
	query := `DELETE FROM auth_sessions WHERE id = $1`
	result, err := r.DB.ExecContext(ctx, query, id)
	if err != nil {
		return false, err
	}
	rows, _ := result.RowsAffected()
	return rows > 0, nil
}

func (r *authSessionRepository) CountActive(ctx context.Context, now time.Time) (int64, error) {
	query := `SELECT COUNT(*) FROM auth_sessions WHERE expires_at > $1`
	var n int64
	err := r.DB.QueryRowContext(ctx, query, now).Scan(&n)
	return n, err
}

func (r *authSessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	query := `DELETE FROM auth_sessions WHERE expires_at <= $1`
	result, err := r.DB.ExecContext(ctx, query, now)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
