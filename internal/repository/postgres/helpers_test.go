package postgres

import (
	"database/sql/driver"
	"io"
	"log/slog"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

var ts = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

var eventRowColumns = []string{
	"id", "title", "description", "date", "time", "venue",
	"organizer_id", "max_attendees", "category", "status", "price", "created_at", "updated_at",
	"organizer_id", "organizer_name", "organizer_company",
	"attendee_count",
}

// eventRow returns a well-formed event row with overrides applied by column index.
func eventRow(id, title string, overrides map[int]driver.Value) []driver.Value {
	row := []driver.Value{
		id, title, "Pitches and demos", "2025-03-01", "10:00", "Hall A",
		"org-1", int64(2), "conference", "upcoming", nil, ts, ts,
		"org-1", "Olivia", "Acme",
		int64(0),
	}
	for i, v := range overrides {
		row[i] = v
	}
	return row
}

func eventRows(rows ...[]driver.Value) *sqlmock.Rows {
	r := sqlmock.NewRows(eventRowColumns)
	for _, row := range rows {
		r.AddRow(row...)
	}
	return r
}

var userRowColumns = []string{
	"id", "email", "name", "role", "company", "position", "bio", "linkedin", "whatsapp", "created_at", "updated_at",
}

func userRow(id, email, name string) []driver.Value {
	return []driver.Value{id, email, name, "attendee", "Acme", nil, nil, nil, nil, ts, ts}
}
