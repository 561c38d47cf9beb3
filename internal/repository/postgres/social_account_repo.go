package postgres

import (
	"context"
	"database/sql"
	"errors"

	"eventconnect/internal/domain"
)

type socialAccountRepository struct {
	DB DBTX
}

func NewSocialAccountRepository(db *sql.DB) domain.SocialAccountRepository {
	return &socialAccountRepository{DB: db}
}

func (r *socialAccountRepository) Create(ctx context.Context, a *domain.SocialAccount) error {
	query := `
		INSERT INTO social_accounts (user_id, platform, username, url, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query, a.UserID, a.Platform, a.Username, a.URL, a.CreatedAt).Scan(&a.ID)
	if isPQCode(err, codeForeignKeyViolation) {
		return domain.ErrUserNotFound
	}
	return err
}

func (r *socialAccountRepository) GetByID(ctx context.Context, id string) (*domain.SocialAccount, error) {
	query := `
		SELECT id, user_id, platform, username, url, created_at
		FROM social_accounts
		WHERE id = $1
	`
	a := &domain.SocialAccount{}
	err := r.DB.QueryRowContext(ctx, query, id).Scan(&a.ID, &a.UserID, &a.Platform, &a.Username, &a.URL, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return a, nil
}

func (r *socialAccountRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.SocialAccount, error) {
	query := `
		SELECT id, user_id, platform, username, url, created_at
		FROM social_accounts
		WHERE user_id = $1
		ORDER BY platform ASC, created_at ASC
	`
	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	accounts := make([]*domain.SocialAccount, 0)
	for rows.Next() {
		a := &domain.SocialAccount{}
		if err := rows.Scan(&a.ID, &a.UserID, &a.Platform, &a.Username, &a.URL, &a.CreatedAt); err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

func (r *socialAccountRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM social_accounts WHERE id = $1`
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
