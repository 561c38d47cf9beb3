// Package session owns the sign-in lifecycle: sessions are started at login,
// validated on every authenticated request, rotated on refresh and ended at
// logout. Observers subscribe to lifecycle transitions instead of polling.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"eventconnect/internal/domain"
)

// Manager implements domain.SessionManager over an AuthSessionRepository.
type Manager struct {
	repo domain.AuthSessionRepository
	ttl  time.Duration
	now  func() time.Time

	mu     sync.RWMutex
	subs   map[int]func(domain.SessionEvent)
	nextID int
}

// NewManager returns a Manager issuing sessions that live for ttl.
func NewManager(repo domain.AuthSessionRepository, ttl time.Duration) *Manager {
	return &Manager{
		repo: repo,
		ttl:  ttl,
		now:  time.Now,
		subs: make(map[int]func(domain.SessionEvent)),
	}
}

// TTL returns the lifetime of new sessions.
func (m *Manager) TTL() time.Duration { return m.ttl }

// Subscribe registers fn for lifecycle events. Calling the returned func removes it.
func (m *Manager) Subscribe(fn func(domain.SessionEvent)) (unsubscribe func()) {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.subs[id] = fn
	m.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.subs, id)
			m.mu.Unlock()
		})
	}
}

func (m *Manager) notify(ev domain.SessionEvent) {
	m.mu.RLock()
	fns := make([]func(domain.SessionEvent), 0, len(m.subs))
	for _, fn := range m.subs {
		fns = append(fns, fn)
	}
	m.mu.RUnlock()
	for _, fn := range fns {
		fn(ev)
	}
}

// Start creates a session for a user who just signed in.
func (m *Manager) Start(ctx context.Context, userID string, role domain.Role) (*domain.AuthSession, error) {
	now := m.now().UTC()
	s := &domain.AuthSession{
		ID:        uuid.NewString(),
		UserID:    userID,
		Role:      role,
		ExpiresAt: now.Add(m.ttl),
		CreatedAt: now,
	}
	if err := m.repo.Create(ctx, s); err != nil {
		return nil, fmt.Errorf("start session: %w", err)
	}
	m.notify(domain.SessionEvent{Kind: domain.SessionStarted, Session: s})
	return s, nil
}

// Validate returns the live session with sessionID or domain.ErrSessionInvalid.
func (m *Manager) Validate(ctx context.Context, sessionID string) (*domain.AuthSession, error) {
	s, err := m.repo.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrSessionInvalid
		}
		return nil, fmt.Errorf("validate session: %w", err)
	}
	if s.Expired(m.now()) {
		return nil, domain.ErrSessionInvalid
	}
	return s, nil
}

// Rotate replaces a live session with a fresh one.
func (m *Manager) Rotate(ctx context.Context, sessionID string) (*domain.AuthSession, error) {
	prev, err := m.Validate(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	now := m.now().UTC()
	next := &domain.AuthSession{
		ID:        uuid.NewString(),
		UserID:    prev.UserID,
		Role:      prev.Role,
		ExpiresAt: now.Add(m.ttl),
		CreatedAt: now,
	}
	if err := m.repo.Create(ctx, next); err != nil {
		return nil, fmt.Errorf("rotate session: %w", err)
	}
	if _, err := m.repo.Delete(ctx, prev.ID); err != nil {
		return nil, fmt.Errorf("rotate session: %w", err)
	}
	m.notify(domain.SessionEvent{Kind: domain.SessionRotated, Session: next, Previous: prev})
	return next, nil
}

// End signs a session out. Ending an unknown session is not an error and notifies nobody.
func (m *Manager) End(ctx context.Context, sessionID string) error {
	s, err := m.repo.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("end session: %w", err)
	}
	deleted, err := m.repo.Delete(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("end session: %w", err)
	}
	if deleted {
		m.notify(domain.SessionEvent{Kind: domain.SessionEnded, Session: s})
	}
	return nil
}

// Sweep deletes expired sessions and returns how many were removed.
// Subscribers then receive a SessionsSwept event with the live session count,
// which includes sessions started by other processes.
func (m *Manager) Sweep(ctx context.Context) (int64, error) {
	now := m.now()
	n, err := m.repo.DeleteExpired(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("sweep sessions: %w", err)
	}
	active, err := m.repo.CountActive(ctx, now)
	if err != nil {
		return n, fmt.Errorf("count sessions: %w", err)
	}
	m.notify(domain.SessionEvent{Kind: domain.SessionsSwept, Swept: n, Active: active})
	return n, nil
}

// RunSweeper calls Sweep every interval until ctx is done.
func (m *Manager) RunSweeper(ctx context.Context, interval time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := m.Sweep(ctx)
			if err != nil {
				logger.ErrorContext(ctx, "session sweep failed", "err", err)
				continue
			}
			if n > 0 {
				logger.InfoContext(ctx, "expired sessions swept", "count", n)
			}
		}
	}
}
