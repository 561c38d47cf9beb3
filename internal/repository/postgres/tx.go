package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"eventconnect/internal/domain"
)

// DBTX is satisfied by *sql.DB and *sql.Tx so repositories run inside or outside a transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// WithTx runs fn in a transaction, committing on nil and rolling back otherwise.
func WithTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

type transactor struct {
	DB     *sql.DB
	Logger *slog.Logger
}

// NewTransactor returns a domain.Transactor backed by database transactions.
func NewTransactor(db *sql.DB, logger *slog.Logger) domain.Transactor {
	return &transactor{DB: db, Logger: logger}
}

func (t *transactor) WithinTx(ctx context.Context, fn func(domain.LineupStore) error) error {
	return WithTx(ctx, t.DB, func(tx *sql.Tx) error {
		return fn(&lineupStore{tx: tx, logger: t.Logger})
	})
}

type lineupStore struct {
	tx     *sql.Tx
	logger *slog.Logger
}

func (s *lineupStore) Events() domain.EventRepository {
	return &eventRepository{DB: s.tx, Logger: s.logger}
}

func (s *lineupStore) Speakers() domain.SpeakerRepository {
	return &speakerRepository{DB: s.tx}
}

func (s *lineupStore) Agenda() domain.AgendaRepository {
	return &agendaRepository{DB: s.tx}
}
