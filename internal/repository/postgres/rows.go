package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"eventconnect/internal/domain"
	"eventconnect/internal/metrics"
)

// Postgres error codes translated into domain errors.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeCheckViolation      = "23514"
)

func isPQCode(err error, code string) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && string(pqErr.Code) == code
}

type rowScanner interface {
	Scan(dest ...any) error
}

// rowRejection reports a row that cannot be decoded into a valid entity:
// a LEFT JOIN that found nothing, or a mandatory column that is empty.
type rowRejection struct {
	table  string
	reason string
	field  string
}

func (e *rowRejection) Error() string {
	return fmt.Sprintf("%s row rejected: %s (%s)", e.table, e.reason, e.field)
}

func nullJoin(table string) *rowRejection {
	return &rowRejection{table: table, reason: metrics.ReasonNullJoin, field: "id"}
}

func missingField(table, field string) *rowRejection {
	return &rowRejection{table: table, reason: metrics.ReasonMissingField, field: field}
}

// skipRejected logs and counts err when it is a rowRejection and reports whether
// the caller should skip the row. Any other error is left to the caller.
func skipRejected(ctx context.Context, logger *slog.Logger, err error) bool {
	var rej *rowRejection
	if !errors.As(err, &rej) {
		return false
	}
	if logger != nil {
		logger.WarnContext(ctx, "row rejected", "table", rej.table, "reason", rej.reason, "field", rej.field)
	}
	metrics.RowRejected(rej.table, rej.reason)
	return true
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullStringPtr(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullInt(n *int) sql.NullInt64 {
	if n == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*n), Valid: true}
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}

const userColumns = `u.id, u.email, u.name, u.role, u.company, u.position, u.bio, u.linkedin, u.whatsapp, u.created_at, u.updated_at`

// scanUser decodes userColumns followed by extra destinations.
func scanUser(s rowScanner, extra ...any) (*domain.User, error) {
	var (
		id, email, name, role                       sql.NullString
		company, position, bio, linkedin, whatsapp sql.NullString
		createdAt, updatedAt                        sql.NullTime
	)
	dest := append([]any{&id, &email, &name, &role, &company, &position, &bio, &linkedin, &whatsapp, &createdAt, &updatedAt}, extra...)
	if err := s.Scan(dest...); err != nil {
		return nil, err
	}
	if !id.Valid {
		return nil, nullJoin("users")
	}
	switch {
	case email.String == "":
		return nil, missingField("users", "email")
	case name.String == "":
		return nil, missingField("users", "name")
	case role.String == "":
		return nil, missingField("users", "role")
	}
	return &domain.User{
		ID:        id.String,
		Email:     email.String,
		Name:      name.String,
		Role:      domain.Role(role.String),
		Company:   company.String,
		Position:  position.String,
		Bio:       bio.String,
		LinkedIn:  linkedin.String,
		WhatsApp:  whatsapp.String,
		CreatedAt: createdAt.Time,
		UpdatedAt: updatedAt.Time,
	}, nil
}

const eventColumns = `e.id, e.title, e.description, to_char(e.date, 'YYYY-MM-DD'), to_char(e.time, 'HH24:MI'), e.venue,
		e.organizer_id, e.max_attendees, e.category, e.status, e.price, e.created_at, e.updated_at,
		o.id, o.name, o.company,
		(SELECT COUNT(*) FROM event_attendees ea WHERE ea.event_id = e.id)`

const organizerJoin = `LEFT JOIN users o ON o.id = e.organizer_id`

func scanEvent(s rowScanner) (*domain.Event, error) {
	var (
		id, title, description, date, clock, venue sql.NullString
		organizerID, category, status              sql.NullString
		maxAttendees                               sql.NullInt64
		price                                      decimal.NullDecimal
		createdAt, updatedAt                       sql.NullTime
		orgID, orgName, orgCompany                 sql.NullString
		attendeeCount                              sql.NullInt64
	)
	err := s.Scan(
		&id, &title, &description, &date, &clock, &venue,
		&organizerID, &maxAttendees, &category, &status, &price, &createdAt, &updatedAt,
		&orgID, &orgName, &orgCompany,
		&attendeeCount,
	)
	if err != nil {
		return nil, err
	}
	if !id.Valid {
		return nil, nullJoin("events")
	}
	switch {
	case title.String == "":
		return nil, missingField("events", "title")
	case date.String == "":
		return nil, missingField("events", "date")
	case clock.String == "":
		return nil, missingField("events", "time")
	case organizerID.String == "":
		return nil, missingField("events", "organizer_id")
	}
	e := &domain.Event{
		ID:            id.String,
		Title:         title.String,
		Description:   description.String,
		Date:          date.String,
		Time:          clock.String,
		Venue:         venue.String,
		OrganizerID:   organizerID.String,
		Category:      domain.EventCategory(category.String),
		Status:        domain.EventStatus(status.String),
		AttendeeCount: int(attendeeCount.Int64),
		CreatedAt:     createdAt.Time,
		UpdatedAt:     updatedAt.Time,
	}
	if maxAttendees.Valid {
		n := int(maxAttendees.Int64)
		e.MaxAttendees = &n
	}
	if price.Valid {
		p := price.Decimal
		e.Price = &p
	}
	if orgID.Valid {
		e.Organizer = &domain.OrganizerSummary{ID: orgID.String, Name: orgName.String, Company: orgCompany.String}
	}
	return e, nil
}
