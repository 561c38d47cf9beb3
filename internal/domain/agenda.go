package domain

import (
	"context"
	"time"
)

// AgendaItemType classifies an agenda slot.
type AgendaItemType string

const (
	AgendaSession    AgendaItemType = "session"
	AgendaBreak      AgendaItemType = "break"
	AgendaNetworking AgendaItemType = "networking"
)

// Valid reports whether t is a known agenda item type.
func (t AgendaItemType) Valid() bool {
	switch t {
	case AgendaSession, AgendaBreak, AgendaNetworking:
		return true
	}
	return false
}

// AgendaItem is one slot in an event's schedule.
// swagger:model AgendaItem
type AgendaItem struct {
	ID          string         `json:"id"`
	EventID     string         `json:"event_id"`
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	StartTime   string         `json:"start_time"`
	EndTime     string         `json:"end_time"`
	SpeakerID   *string        `json:"speaker_id,omitempty"`
	Speaker     *Speaker       `json:"speaker,omitempty"`
	Location    string         `json:"location,omitempty"`
	Type        AgendaItemType `json:"type"`
	CreatedAt   time.Time      `json:"created_at"`
}

// AgendaDraft is an agenda item as submitted by an organizer. SpeakerIndex
// points into the speakers of the same EventDraft; SpeakerID references an
// existing speaker of the event.
type AgendaDraft struct {
	Title        string
	Description  string
	StartTime    string
	EndTime      string
	Location     string
	Type         AgendaItemType
	SpeakerIndex *int
	SpeakerID    *string
}

// Complete reports whether the draft has the fields an agenda item needs.
func (d AgendaDraft) Complete() bool {
	return d.Title != "" && d.StartTime != "" && d.EndTime != ""
}

// ValidClockRange reports whether start and end are HH:MM clock times with end after start.
func ValidClockRange(start, end string) bool {
	s, err := time.Parse(ClockLayout, start)
	if err != nil {
		return false
	}
	e, err := time.Parse(ClockLayout, end)
	if err != nil {
		return false
	}
	return e.After(s)
}

// ResolveSpeakers attaches each item's speaker from speakers by id.
// Items whose speaker is not in the list keep a nil Speaker.
func ResolveSpeakers(items []*AgendaItem, speakers []*Speaker) {
	byID := make(map[string]*Speaker, len(speakers))
	for _, s := range speakers {
		byID[s.ID] = s
	}
	for _, it := range items {
		if it.SpeakerID == nil {
			continue
		}
		it.Speaker = byID[*it.SpeakerID]
	}
}

// AgendaRepository defines storage for agenda items.
type AgendaRepository interface {
	Create(ctx context.Context, item *AgendaItem) error
	GetByID(ctx context.Context, id string) (*AgendaItem, error)
	ListByEventID(ctx context.Context, eventID string) ([]*AgendaItem, error)
	Delete(ctx context.Context, id string) error
}
