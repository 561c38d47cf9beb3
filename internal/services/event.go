package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"eventconnect/internal/domain"
)

const (
	// myAgendaFanOut bounds concurrent lineup lookups in GetMyAgenda.
	myAgendaFanOut = 4

	maxSearchLength = 100
)

type eventService struct {
	eventRepo      domain.EventRepository
	speakerRepo    domain.SpeakerRepository
	agendaRepo     domain.AgendaRepository
	attendeeRepo   domain.AttendeeRepository
	userRepo       domain.UserRepository
	tx             domain.Transactor
	contextTimeout time.Duration
}

// NewEventService creates an EventService.
func NewEventService(
	eventRepo domain.EventRepository,
	speakerRepo domain.SpeakerRepository,
	agendaRepo domain.AgendaRepository,
	attendeeRepo domain.AttendeeRepository,
	userRepo domain.UserRepository,
	tx domain.Transactor,
	timeout time.Duration,
) domain.EventService {
	return &eventService{
		eventRepo:      eventRepo,
		speakerRepo:    speakerRepo,
		agendaRepo:     agendaRepo,
		attendeeRepo:   attendeeRepo,
		userRepo:       userRepo,
		tx:             tx,
		contextTimeout: timeout,
	}
}

func (s *eventService) ListEvents(ctx context.Context, filter domain.EventFilter) ([]*domain.Event, int, error) {
	ctx, cancel := withTimeout(ctx, s.contextTimeout)
	defer cancel()

	if filter.Category != nil && !filter.Category.Valid() {
		return nil, 0, invalid("unknown category %q", *filter.Category)
	}
	filter.Query = strings.TrimSpace(filter.Query)
	if len([]rune(filter.Query)) > maxSearchLength {
		return nil, 0, invalid("search query must be at most %d characters", maxSearchLength)
	}
	events, total, err := s.eventRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("list events: %w", err)
	}
	return events, total, nil
}

func (s *eventService) GetEvent(ctx context.Context, id string) (*domain.Event, error) {
	ctx, cancel := withTimeout(ctx, s.contextTimeout)
	defer cancel()
	return s.getEvent(ctx, id)
}

func (s *eventService) getEvent(ctx context.Context, id string) (*domain.Event, error) {
	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return event, nil
}

// ownedEvent returns the event when callerID organizes it.
func (s *eventService) ownedEvent(ctx context.Context, eventID, callerID string) (*domain.Event, error) {
	event, err := s.getEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event.OrganizerID != callerID {
		return nil, domain.ErrForbidden
	}
	return event, nil
}

func (s *eventService) GetEventDetail(ctx context.Context, eventID, viewerID string) (*domain.EventDetail, error) {
	ctx, cancel := withTimeout(ctx, s.contextTimeout)
	defer cancel()

	var (
		event     *domain.Event
		attendees []*domain.User
		speakers  []*domain.Speaker
		agenda    []*domain.AgendaItem
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		event, err = s.getEvent(gctx, eventID)
		return err
	})
	g.Go(func() (err error) {
		attendees, err = s.attendeeRepo.ListUsersByEventID(gctx, eventID)
		return err
	})
	g.Go(func() (err error) {
		speakers, err = s.speakerRepo.ListByEventID(gctx, eventID)
		return err
	})
	g.Go(func() (err error) {
		agenda, err = s.agendaRepo.ListByEventID(gctx, eventID)
		return err
	})
	if err := g.Wait(); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event detail: %w", err)
	}
	// The caller may have gone away while the reads were in flight.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	domain.ResolveSpeakers(agenda, speakers)
	event.AttendeeCount = len(attendees)
	detail := &domain.EventDetail{
		Event:       event,
		Attendees:   attendees,
		Speakers:    speakers,
		Agenda:      agenda,
		IsOrganizer: viewerID != "" && event.OrganizerID == viewerID,
		IsFull:      event.IsFull(len(attendees)),
	}
	for _, u := range attendees {
		if u.ID == viewerID {
			detail.IsRegistered = true
			break
		}
	}
	return detail, nil
}

func (s *eventService) ListOrganizerEvents(ctx context.Context, organizerID string) ([]*domain.Event, error) {
	ctx, cancel := withTimeout(ctx, s.contextTimeout)
	defer cancel()

	events, err := s.eventRepo.ListByOrganizerID(ctx, organizerID)
	if err != nil {
		return nil, fmt.Errorf("list organizer events: %w", err)
	}
	return events, nil
}

func validDate(v string) bool {
	_, err := time.Parse(domain.DateLayout, v)
	return err == nil
}

func validClock(v string) bool {
	_, err := time.Parse(domain.ClockLayout, v)
	return err == nil
}

func validateDraft(d *domain.EventDraft) error {
	d.Title = strings.TrimSpace(d.Title)
	d.Description = strings.TrimSpace(d.Description)
	d.Venue = strings.TrimSpace(d.Venue)
	d.Date = strings.TrimSpace(d.Date)
	d.Time = strings.TrimSpace(d.Time)
	switch {
	case d.Title == "":
		return invalid("title is required")
	case d.Description == "":
		return invalid("description is required")
	case d.Venue == "":
		return invalid("venue is required")
	case !validDate(d.Date):
		return invalid("date must be YYYY-MM-DD")
	case !validClock(d.Time):
		return invalid("time must be HH:MM")
	}
	if d.Category == "" {
		d.Category = domain.CategoryConference
	}
	if !d.Category.Valid() {
		return invalid("unknown category %q", d.Category)
	}
	if d.MaxAttendees != nil && *d.MaxAttendees <= 0 {
		return invalid("max_attendees must be positive")
	}
	if d.Price != nil && d.Price.IsNegative() {
		return invalid("price cannot be negative")
	}
	return nil
}

func (s *eventService) CreateEvent(ctx context.Context, organizerID string, draft *domain.EventDraft) (*domain.EventLineup, error) {
	ctx, cancel := withTimeout(ctx, s.contextTimeout)
	defer cancel()

	if draft == nil {
		return nil, invalid("event is required")
	}
	if err := validateDraft(draft); err != nil {
		return nil, err
	}
	organizer, err := s.userRepo.GetByID(ctx, organizerID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("get organizer: %w", err)
	}
	if organizer.Role != domain.RoleOrganizer {
		return nil, domain.ErrForbidden
	}

	now := time.Now().UTC()
	event := domain.NewEvent(draft.Title, draft.Description, draft.Date, draft.Time, draft.Venue, organizerID, draft.Category, now, now)
	event.MaxAttendees = draft.MaxAttendees
	event.Price = draft.Price

	lineup := &domain.EventLineup{Event: event}
	err = s.tx.WithinTx(ctx, func(store domain.LineupStore) error {
		if err := store.Events().Create(ctx, event); err != nil {
			return fmt.Errorf("create event: %w", err)
		}

		// byIndex maps draft positions to created speakers; unnamed drafts are skipped.
		byIndex := make(map[int]*domain.Speaker, len(draft.Speakers))
		speakers := make([]*domain.Speaker, 0, len(draft.Speakers))
		for i, sd := range draft.Speakers {
			sd.Name = strings.TrimSpace(sd.Name)
			if sd.Name == "" {
				continue
			}
			sp := domain.NewSpeaker(event.ID, sd, now)
			if err := store.Speakers().Create(ctx, sp); err != nil {
				return fmt.Errorf("create speaker: %w", err)
			}
			byIndex[i] = sp
			speakers = append(speakers, sp)
		}

		agenda := make([]*domain.AgendaItem, 0, len(draft.Agenda))
		for _, ad := range draft.Agenda {
			ad.Title = strings.TrimSpace(ad.Title)
			if !ad.Complete() {
				continue
			}
			item, err := newAgendaItem(event.ID, ad, now)
			if err != nil {
				return err
			}
			if ad.SpeakerIndex != nil {
				sp, ok := byIndex[*ad.SpeakerIndex]
				if !ok {
					return invalid("agenda item %q references unknown speaker %d", ad.Title, *ad.SpeakerIndex)
				}
				item.SpeakerID = &sp.ID
				item.Speaker = sp
			}
			if err := store.Agenda().Create(ctx, item); err != nil {
				return fmt.Errorf("create agenda item: %w", err)
			}
			agenda = append(agenda, item)
		}

		lineup.Speakers = speakers
		lineup.Agenda = agenda
		return nil
	})
	if err != nil {
		return nil, err
	}
	event.Organizer = &domain.OrganizerSummary{ID: organizer.ID, Name: organizer.Name, Company: organizer.Company}
	return lineup, nil
}

func newAgendaItem(eventID string, d domain.AgendaDraft, now time.Time) (*domain.AgendaItem, error) {
	if !domain.ValidClockRange(d.StartTime, d.EndTime) {
		return nil, invalid("agenda item %q needs HH:MM times with end after start", d.Title)
	}
	if d.Type == "" {
		d.Type = domain.AgendaSession
	}
	if !d.Type.Valid() {
		return nil, invalid("unknown agenda item type %q", d.Type)
	}
	return &domain.AgendaItem{
		EventID:     eventID,
		Title:       d.Title,
		Description: strings.TrimSpace(d.Description),
		StartTime:   d.StartTime,
		EndTime:     d.EndTime,
		Location:    strings.TrimSpace(d.Location),
		Type:        d.Type,
		CreatedAt:   now,
	}, nil
}

func (s *eventService) UpdateEvent(ctx context.Context, eventID, callerID string, upd domain.EventUpdate) (*domain.Event, error) {
	ctx, cancel := withTimeout(ctx, s.contextTimeout)
	defer cancel()

	if upd.Empty() {
		return nil, invalid("nothing to update")
	}
	upd.Title = trimPtr(upd.Title)
	upd.Venue = trimPtr(upd.Venue)
	switch {
	case upd.Title != nil && *upd.Title == "":
		return nil, invalid("title cannot be empty")
	case upd.Venue != nil && *upd.Venue == "":
		return nil, invalid("venue cannot be empty")
	case upd.Date != nil && !validDate(*upd.Date):
		return nil, invalid("date must be YYYY-MM-DD")
	case upd.Time != nil && !validClock(*upd.Time):
		return nil, invalid("time must be HH:MM")
	case upd.Category != nil && !upd.Category.Valid():
		return nil, invalid("unknown category %q", *upd.Category)
	case upd.Status != nil && !upd.Status.Valid():
		return nil, invalid("unknown status %q", *upd.Status)
	case upd.MaxAttendees != nil && *upd.MaxAttendees <= 0:
		return nil, invalid("max_attendees must be positive")
	case upd.Price != nil && upd.Price.IsNegative():
		return nil, invalid("price cannot be negative")
	}

	if _, err := s.ownedEvent(ctx, eventID, callerID); err != nil {
		return nil, err
	}
	if upd.MaxAttendees != nil {
		count, err := s.attendeeRepo.CountByEventID(ctx, eventID)
		if err != nil {
			return nil, fmt.Errorf("count attendees: %w", err)
		}
		if *upd.MaxAttendees < count {
			return nil, invalid("max_attendees cannot be below the %d registered attendees", count)
		}
	}

	event, err := s.eventRepo.Update(ctx, eventID, upd)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update event: %w", err)
	}
	return event, nil
}

func (s *eventService) DeleteEvent(ctx context.Context, eventID, callerID string) error {
	ctx, cancel := withTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.ownedEvent(ctx, eventID, callerID); err != nil {
		return err
	}
	if err := s.eventRepo.Delete(ctx, eventID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete event: %w", err)
	}
	return nil
}

func (s *eventService) ListSpeakers(ctx context.Context, eventID string) ([]*domain.Speaker, error) {
	ctx, cancel := withTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.getEvent(ctx, eventID); err != nil {
		return nil, err
	}
	speakers, err := s.speakerRepo.ListByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list speakers: %w", err)
	}
	return speakers, nil
}

func (s *eventService) AddSpeaker(ctx context.Context, eventID, callerID string, draft domain.SpeakerDraft) (*domain.Speaker, error) {
	ctx, cancel := withTimeout(ctx, s.contextTimeout)
	defer cancel()

	draft.Name = strings.TrimSpace(draft.Name)
	if draft.Name == "" {
		return nil, invalid("speaker name is required")
	}
	if _, err := s.ownedEvent(ctx, eventID, callerID); err != nil {
		return nil, err
	}
	sp := domain.NewSpeaker(eventID, draft, time.Now().UTC())
	if err := s.speakerRepo.Create(ctx, sp); err != nil {
		return nil, fmt.Errorf("create speaker: %w", err)
	}
	return sp, nil
}

func (s *eventService) RemoveSpeaker(ctx context.Context, eventID, speakerID, callerID string) error {
	ctx, cancel := withTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.ownedEvent(ctx, eventID, callerID); err != nil {
		return err
	}
	sp, err := s.speakerRepo.GetByID(ctx, speakerID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get speaker: %w", err)
	}
	if sp.EventID != eventID {
		return domain.ErrNotFound
	}
	if err := s.speakerRepo.Delete(ctx, speakerID); err != nil {
		return fmt.Errorf("delete speaker: %w", err)
	}
	return nil
}

func (s *eventService) ListAgenda(ctx context.Context, eventID string) ([]*domain.AgendaItem, error) {
	ctx, cancel := withTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.getEvent(ctx, eventID); err != nil {
		return nil, err
	}
	lineup, err := s.lineup(ctx, eventID)
	if err != nil {
		return nil, err
	}
	return lineup.Agenda, nil
}

// lineup loads speakers and agenda of eventID with speakers resolved onto the agenda.
func (s *eventService) lineup(ctx context.Context, eventID string) (*domain.EventLineup, error) {
	var (
		speakers []*domain.Speaker
		agenda   []*domain.AgendaItem
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		speakers, err = s.speakerRepo.ListByEventID(gctx, eventID)
		return err
	})
	g.Go(func() (err error) {
		agenda, err = s.agendaRepo.ListByEventID(gctx, eventID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load lineup: %w", err)
	}
	domain.ResolveSpeakers(agenda, speakers)
	return &domain.EventLineup{Speakers: speakers, Agenda: agenda}, nil
}

func (s *eventService) AddAgendaItem(ctx context.Context, eventID, callerID string, draft domain.AgendaDraft) (*domain.AgendaItem, error) {
	ctx, cancel := withTimeout(ctx, s.contextTimeout)
	defer cancel()

	draft.Title = strings.TrimSpace(draft.Title)
	if !draft.Complete() {
		return nil, invalid("title, start_time and end_time are required")
	}
	if draft.SpeakerIndex != nil {
		return nil, invalid("speaker_index is only valid when creating an event")
	}
	item, err := newAgendaItem(eventID, draft, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	if _, err := s.ownedEvent(ctx, eventID, callerID); err != nil {
		return nil, err
	}
	if draft.SpeakerID != nil {
		sp, err := s.speakerRepo.GetByID(ctx, *draft.SpeakerID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, invalid("unknown speaker %q", *draft.SpeakerID)
			}
			return nil, fmt.Errorf("get speaker: %w", err)
		}
		if sp.EventID != eventID {
			return nil, invalid("speaker %q does not belong to this event", sp.ID)
		}
		item.SpeakerID = &sp.ID
		item.Speaker = sp
	}
	if err := s.agendaRepo.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("create agenda item: %w", err)
	}
	return item, nil
}

func (s *eventService) RemoveAgendaItem(ctx context.Context, eventID, itemID, callerID string) error {
	ctx, cancel := withTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.ownedEvent(ctx, eventID, callerID); err != nil {
		return err
	}
	item, err := s.agendaRepo.GetByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get agenda item: %w", err)
	}
	if item.EventID != eventID {
		return domain.ErrNotFound
	}
	if err := s.agendaRepo.Delete(ctx, itemID); err != nil {
		return fmt.Errorf("delete agenda item: %w", err)
	}
	return nil
}

func (s *eventService) GetMyAgenda(ctx context.Context, userID string) ([]*domain.EventLineup, error) {
	ctx, cancel := withTimeout(ctx, s.contextTimeout)
	defer cancel()

	events, err := s.attendeeRepo.ListEventsByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list registered events: %w", err)
	}
	out := make([]*domain.EventLineup, len(events))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(myAgendaFanOut)
	for i, ev := range events {
		g.Go(func() error {
			l, err := s.lineup(gctx, ev.ID)
			if err != nil {
				return err
			}
			l.Event = ev
			out[i] = l
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
