package domain

import (
	"context"
	"time"
)

// Speaker represents a speaker at an event.
// swagger:model Speaker
type Speaker struct {
	ID        string    `json:"id"`
	EventID   string    `json:"event_id"`
	Name      string    `json:"name"`
	Bio       string    `json:"bio,omitempty"`
	Company   string    `json:"company,omitempty"`
	Position  string    `json:"position,omitempty"`
	LinkedIn  string    `json:"linkedin,omitempty"`
	Twitter   string    `json:"twitter,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// SpeakerDraft is a speaker as submitted by an organizer.
type SpeakerDraft struct {
	Name     string
	Bio      string
	Company  string
	Position string
	LinkedIn string
	Twitter  string
}

// NewSpeaker returns a Speaker for eventID built from d. ID is typically set by the repository on create.
func NewSpeaker(eventID string, d SpeakerDraft, createdAt time.Time) *Speaker {
	return &Speaker{
		EventID:   eventID,
		Name:      d.Name,
		Bio:       d.Bio,
		Company:   d.Company,
		Position:  d.Position,
		LinkedIn:  d.LinkedIn,
		Twitter:   d.Twitter,
		CreatedAt: createdAt,
	}
}

// SpeakerRepository defines storage for event speakers.
type SpeakerRepository interface {
	Create(ctx context.Context, s *Speaker) error
	GetByID(ctx context.Context, id string) (*Speaker, error)
	ListByEventID(ctx context.Context, eventID string) ([]*Speaker, error)
	Delete(ctx context.Context, id string) error
}
