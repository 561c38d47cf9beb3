package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Layouts for event dates and agenda clock times.
const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04"
)

// EventCategory classifies an event.
type EventCategory string

const (
	CategoryConference EventCategory = "conference"
	CategoryWorkshop   EventCategory = "workshop"
	CategoryNetworking EventCategory = "networking"
	CategorySeminar    EventCategory = "seminar"
	CategoryMeetup     EventCategory = "meetup"
	CategoryHackathon  EventCategory = "hackathon"
)

// Valid reports whether c is a known category.
func (c EventCategory) Valid() bool {
	switch c {
	case CategoryConference, CategoryWorkshop, CategoryNetworking,
		CategorySeminar, CategoryMeetup, CategoryHackathon:
		return true
	}
	return false
}

// EventStatus is the lifecycle state of an event.
type EventStatus string

const (
	StatusUpcoming  EventStatus = "upcoming"
	StatusOngoing   EventStatus = "ongoing"
	StatusCompleted EventStatus = "completed"
	StatusCancelled EventStatus = "cancelled"
)

// Valid reports whether s is a known status.
func (s EventStatus) Valid() bool {
	switch s {
	case StatusUpcoming, StatusOngoing, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// OrganizerSummary is the organizer projection joined onto every event read.
type OrganizerSummary struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Company string `json:"company,omitempty"`
}

// Event represents an event published by an organizer
// swagger:model Event
type Event struct {
	ID            string            `json:"id"`
	Title         string            `json:"title"`
	Description   string            `json:"description"`
	Date          string            `json:"date"`
	Time          string            `json:"time"`
	Venue         string            `json:"venue"`
	OrganizerID   string            `json:"organizer_id"`
	Organizer     *OrganizerSummary `json:"organizer,omitempty"`
	MaxAttendees  *int              `json:"max_attendees,omitempty"`
	Category      EventCategory     `json:"category"`
	Status        EventStatus       `json:"status"`
	Price         *decimal.Decimal  `json:"price,omitempty"`
	AttendeeCount int               `json:"attendee_count"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

// NewEvent returns a new upcoming Event. ID is typically set by the repository on create.
func NewEvent(title, description, date, clock, venue, organizerID string, category EventCategory, createdAt, updatedAt time.Time) *Event {
	return &Event{
		Title:       title,
		Description: description,
		Date:        date,
		Time:        clock,
		Venue:       venue,
		OrganizerID: organizerID,
		Category:    category,
		Status:      StatusUpcoming,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}
}

// IsFull reports whether attendees has reached the event capacity.
// Events without a capacity are never full.
func (e *Event) IsFull(attendees int) bool {
	return e.MaxAttendees != nil && attendees >= *e.MaxAttendees
}

// AcceptsRegistrations reports whether the event is still open.
func (e *Event) AcceptsRegistrations() bool {
	return e.Status != StatusCancelled && e.Status != StatusCompleted
}

// EventUpdate carries editable event fields. Nil fields are left unchanged.
type EventUpdate struct {
	Title        *string
	Description  *string
	Date         *string
	Time         *string
	Venue        *string
	MaxAttendees *int
	Category     *EventCategory
	Status       *EventStatus
	Price        *decimal.Decimal
}

// Empty reports whether the update changes nothing.
func (u EventUpdate) Empty() bool {
	return u.Title == nil && u.Description == nil && u.Date == nil && u.Time == nil &&
		u.Venue == nil && u.MaxAttendees == nil && u.Category == nil && u.Status == nil && u.Price == nil
}

// EventFilter narrows event listings.
type EventFilter struct {
	Category *EventCategory
	// Query matches title or description, case-insensitively. Empty matches all.
	Query string
	// Zero Pagination returns every matching event.
	Pagination PaginationParams
}

// EventRepository defines the interface for event storage
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	List(ctx context.Context, filter EventFilter) (events []*Event, total int, err error)
	ListByOrganizerID(ctx context.Context, organizerID string) ([]*Event, error)
	Update(ctx context.Context, id string, upd EventUpdate) (*Event, error)
	Delete(ctx context.Context, id string) error
}

// EventDraft is the create-event form: the event plus its lineup.
type EventDraft struct {
	Title        string
	Description  string
	Date         string
	Time         string
	Venue        string
	MaxAttendees *int
	Category     EventCategory
	Price        *decimal.Decimal
	Speakers     []SpeakerDraft
	Agenda       []AgendaDraft
}

// EventLineup is an event with its speakers and agenda.
type EventLineup struct {
	Event    *Event        `json:"event"`
	Speakers []*Speaker    `json:"speakers"`
	Agenda   []*AgendaItem `json:"agenda"`
}

// EventDetail is the composite event screen for one viewer.
type EventDetail struct {
	Event        *Event        `json:"event"`
	Attendees    []*User       `json:"attendees"`
	Speakers     []*Speaker    `json:"speakers"`
	Agenda       []*AgendaItem `json:"agenda"`
	IsRegistered bool          `json:"is_registered"`
	IsOrganizer  bool          `json:"is_organizer"`
	IsFull       bool          `json:"is_full"`
}

// LineupStore exposes the repositories that take part in one transaction.
type LineupStore interface {
	Events() EventRepository
	Speakers() SpeakerRepository
	Agenda() AgendaRepository
}

// Transactor runs fn inside one store transaction. The transaction commits
// when fn returns nil and rolls back otherwise.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(LineupStore) error) error
}

// EventService defines the business logic for events and their lineup.
type EventService interface {
	ListEvents(ctx context.Context, filter EventFilter) ([]*Event, int, error)
	GetEvent(ctx context.Context, id string) (*Event, error)
	GetEventDetail(ctx context.Context, eventID, viewerID string) (*EventDetail, error)
	ListOrganizerEvents(ctx context.Context, organizerID string) ([]*Event, error)
	CreateEvent(ctx context.Context, organizerID string, draft *EventDraft) (*EventLineup, error)
	UpdateEvent(ctx context.Context, eventID, callerID string, upd EventUpdate) (*Event, error)
	DeleteEvent(ctx context.Context, eventID, callerID string) error
	ListSpeakers(ctx context.Context, eventID string) ([]*Speaker, error)
	AddSpeaker(ctx context.Context, eventID, callerID string, draft SpeakerDraft) (*Speaker, error)
	RemoveSpeaker(ctx context.Context, eventID, speakerID, callerID string) error
	ListAgenda(ctx context.Context, eventID string) ([]*AgendaItem, error)
	AddAgendaItem(ctx context.Context, eventID, callerID string, draft AgendaDraft) (*AgendaItem, error)
	RemoveAgendaItem(ctx context.Context, eventID, itemID, callerID string) error
	GetMyAgenda(ctx context.Context, userID string) ([]*EventLineup, error)
}
