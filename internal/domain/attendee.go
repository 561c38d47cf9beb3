package domain

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors for registration.
var (
	ErrAlreadyRegistered = errors.New("already registered for this event")
	ErrEventFull         = errors.New("event is full")
	ErrOwnEvent          = errors.New("cannot register for your own event")
	ErrEventClosed       = errors.New("event is no longer accepting registrations")
)

// Attendance records a user's registration for an event.
// swagger:model Attendance
type Attendance struct {
	ID        string    `json:"id"`
	EventID   string    `json:"event_id"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// NewAttendance creates a new Attendance. ID is typically set by the repository on create.
func NewAttendance(eventID, userID string, createdAt time.Time) *Attendance {
	return &Attendance{
		EventID:   eventID,
		UserID:    userID,
		CreatedAt: createdAt,
	}
}

// AttendeeRepository defines storage operations for event attendance.
type AttendeeRepository interface {
	// Create returns ErrAlreadyRegistered when the pair already exists and
	// ErrEventFull when the event has no seat left at insert time.
	Create(ctx context.Context, a *Attendance) error
	// Delete succeeds even when no row matched.
	Delete(ctx context.Context, eventID, userID string) error
	Exists(ctx context.Context, eventID, userID string) (bool, error)
	CountByEventID(ctx context.Context, eventID string) (int, error)
	ListUsersByEventID(ctx context.Context, eventID string) ([]*User, error)
	ListEventsByUserID(ctx context.Context, userID string) ([]*Event, error)
}

// RegistrationState is the reconciled view of a user's registration after a re-fetch.
type RegistrationState struct {
	EventID       string `json:"event_id"`
	Registered    bool   `json:"registered"`
	AttendeeCount int    `json:"attendee_count"`
	MaxAttendees  *int   `json:"max_attendees,omitempty"`
	IsFull        bool   `json:"is_full"`
}

// AttendeeService defines attendee-facing operations such as event registration.
type AttendeeService interface {
	Register(ctx context.Context, eventID, userID string) (*RegistrationState, error)
	Unregister(ctx context.Context, eventID, userID string) (*RegistrationState, error)
	IsRegistered(ctx context.Context, eventID, userID string) (*RegistrationState, error)
	ListAttendees(ctx context.Context, eventID string) ([]*User, error)
	ListMyEvents(ctx context.Context, userID string) ([]*Event, error)
}
