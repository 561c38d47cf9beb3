package postgres

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/lib/pq"

	"eventconnect/internal/domain"
)

type contactRepository struct {
	DB     DBTX
	Logger *slog.Logger
}

func NewContactRepository(db *sql.DB, logger *slog.Logger) domain.ContactRepository {
	return &contactRepository{
		DB:     db,
		Logger: logger,
	}
}

func (r *contactRepository) Add(ctx context.Context, userID, contactID string) error {
	query := `
		INSERT INTO contacts (user_id, contact_id)
		VALUES ($1, $2)
	`
	_, err := r.DB.ExecContext(ctx, query, userID, contactID)
	switch {
	case err == nil, isPQCode(err, codeUniqueViolation):
		return nil
	case isPQCode(err, codeForeignKeyViolation):
		return domain.ErrUserNotFound
	case isPQCode(err, codeCheckViolation):
		return domain.ErrInvalidInput
	}
	return err
}

func (r *contactRepository) Exists(ctx context.Context, userID, contactID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM contacts WHERE user_id = $1 AND contact_id = $2)`
	var exists bool
	err := r.DB.QueryRowContext(ctx, query, userID, contactID).Scan(&exists)
	return exists, err
}

func (r *contactRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Contact, error) {
	query := `
		SELECT ` + userColumns + `, c.created_at
		FROM contacts c
		LEFT JOIN users u ON u.id = c.contact_id
		WHERE c.user_id = $1
		ORDER BY c.created_at DESC
	`
	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	contacts := make([]*domain.Contact, 0)
	for rows.Next() {
		var addedAt time.Time
		u, err := scanUser(rows, &addedAt)
		if err != nil {
			if skipRejected(ctx, r.Logger, err) {
				continue
			}
			return nil, err
		}
		contacts = append(contacts, &domain.Contact{User: u, AddedAt: addedAt})
	}
	return contacts, rows.Err()
}

func (r *contactRepository) ListReverseEdges(ctx context.Context, ownerID string, contactIDs []string) (map[string]bool, error) {
	edges := make(map[string]bool, len(contactIDs))
	if len(contactIDs) == 0 {
		return edges, nil
	}
	query := `
		SELECT user_id
		FROM contacts
		WHERE contact_id = $1 AND user_id = ANY($2)
	`
	rows, err := r.DB.QueryContext(ctx, query, ownerID, pq.Array(contactIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		edges[id] = true
	}
	return edges, rows.Err()
}
