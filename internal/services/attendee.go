package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"eventconnect/internal/domain"
	"eventconnect/internal/metrics"
)

// Registration outcomes recorded in metrics.
const (
	outcomeRegistered   = "registered"
	outcomeUnregistered = "unregistered"
	outcomeOwnEvent     = "own_event"
	outcomeDuplicate    = "already_registered"
	outcomeClosed       = "closed"
	outcomeFull         = "full"
)

type attendeeService struct {
	eventRepo      domain.EventRepository
	attendeeRepo   domain.AttendeeRepository
	contextTimeout time.Duration
}

// NewAttendeeService creates an AttendeeService.
func NewAttendeeService(eventRepo domain.EventRepository, attendeeRepo domain.AttendeeRepository, timeout time.Duration) domain.AttendeeService {
	return &attendeeService{
		eventRepo:      eventRepo,
		attendeeRepo:   attendeeRepo,
		contextTimeout: timeout,
	}
}

func (s *attendeeService) getEvent(ctx context.Context, eventID string) (*domain.Event, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return event, nil
}

// Register adds userID to the event's attendees. Checks run in order:
// own event, already registered, closed, full.
func (s *attendeeService) Register(ctx context.Context, eventID, userID string) (*domain.RegistrationState, error) {
	ctx, cancel := withTimeout(ctx, s.contextTimeout)
	defer cancel()

	var (
		event     *domain.Event
		attendees []*domain.User
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
	if err := g.Wait(); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("load registration: %w", err)
	}

	if event.OrganizerID == userID {
		metrics.Registration(outcomeOwnEvent)
		return nil, domain.ErrOwnEvent
	}
	for _, u := range attendees {
		if u.ID == userID {
			metrics.Registration(outcomeDuplicate)
			return nil, domain.ErrAlreadyRegistered
		}
	}
	if !event.AcceptsRegistrations() {
		metrics.Registration(outcomeClosed)
		return nil, domain.ErrEventClosed
	}
	if event.IsFull(len(attendees)) {
		metrics.Registration(outcomeFull)
		return nil, domain.ErrEventFull
	}

	// The store re-checks capacity under a lock; a concurrent registration
	// may have taken the last seat since the read above.
	if err := s.attendeeRepo.Create(ctx, domain.NewAttendance(eventID, userID, time.Now().UTC())); err != nil {
		switch {
		case errors.Is(err, domain.ErrAlreadyRegistered):
			metrics.Registration(outcomeDuplicate)
			return nil, domain.ErrAlreadyRegistered
		case errors.Is(err, domain.ErrEventFull):
			metrics.Registration(outcomeFull)
			return nil, domain.ErrEventFull
		case errors.Is(err, domain.ErrNotFound):
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("create registration: %w", err)
	}
	metrics.Registration(outcomeRegistered)
	return s.state(ctx, event, userID)
}

// state re-reads the attendee list so the caller sees the stored truth.
func (s *attendeeService) state(ctx context.Context, event *domain.Event, userID string) (*domain.RegistrationState, error) {
	attendees, err := s.attendeeRepo.ListUsersByEventID(ctx, event.ID)
	if err != nil {
		return nil, fmt.Errorf("list attendees: %w", err)
	}
	st := &domain.RegistrationState{
		EventID:       event.ID,
		AttendeeCount: len(attendees),
		MaxAttendees:  event.MaxAttendees,
		IsFull:        event.IsFull(len(attendees)),
	}
	for _, u := range attendees {
		if u.ID == userID {
			st.Registered = true
			break
		}
	}
	return st, nil
}

func (s *attendeeService) Unregister(ctx context.Context, eventID, userID string) (*domain.RegistrationState, error) {
	ctx, cancel := withTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.getEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if err := s.attendeeRepo.Delete(ctx, eventID, userID); err != nil {
		return nil, fmt.Errorf("delete registration: %w", err)
	}
	metrics.Registration(outcomeUnregistered)
	return s.state(ctx, event, userID)
}

func (s *attendeeService) IsRegistered(ctx context.Context, eventID, userID string) (*domain.RegistrationState, error) {
	ctx, cancel := withTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.getEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	var (
		registered bool
		count      int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		registered, err = s.attendeeRepo.Exists(gctx, eventID, userID)
		return err
	})
	g.Go(func() (err error) {
		count, err = s.attendeeRepo.CountByEventID(gctx, eventID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("registration status: %w", err)
	}
	return &domain.RegistrationState{
		EventID:       eventID,
		Registered:    registered,
		AttendeeCount: count,
		MaxAttendees:  event.MaxAttendees,
		IsFull:        event.IsFull(count),
	}, nil
}

func (s *attendeeService) ListAttendees(ctx context.Context, eventID string) ([]*domain.User, error) {
	ctx, cancel := withTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.getEvent(ctx, eventID); err != nil {
		return nil, err
	}
	users, err := s.attendeeRepo.ListUsersByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list attendees: %w", err)
	}
	return users, nil
}

func (s *attendeeService) ListMyEvents(ctx context.Context, userID string) ([]*domain.Event, error) {
	ctx, cancel := withTimeout(ctx, s.contextTimeout)
	defer cancel()

	events, err := s.attendeeRepo.ListEventsByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list registered events: %w", err)
	}
	return events, nil
}
