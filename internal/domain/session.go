package domain

import (
	"context"
	"errors"
	"time"
)

// ErrSessionInvalid is returned when a session is unknown, ended or expired.
var ErrSessionInvalid = errors.New("session expired or signed out")

// Principal is the authenticated caller carried in the request context.
type Principal struct {
	UserID    string
	Role      Role
	SessionID string
}

// AuthSession is one sign-in. Its ID doubles as the token id (jti).
type AuthSession struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Role      Role      `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// Expired reports whether the session is past its expiry at now.
func (s *AuthSession) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// SessionEventKind names a session lifecycle transition.
type SessionEventKind string

const (
	SessionStarted SessionEventKind = "started"
	SessionRotated SessionEventKind = "rotated"
	SessionEnded   SessionEventKind = "ended"
	// SessionsSwept follows an expiry sweep. It carries counts, not a session.
	SessionsSwept SessionEventKind = "swept"
)

// SessionEvent is delivered to session subscribers.
type SessionEvent struct {
	Kind    SessionEventKind
	Session *AuthSession
	// Previous is set on rotation.
	Previous *AuthSession
	// Swept and Active are set on SessionsSwept: sessions removed, and live
	// sessions left in the store.
	Swept  int64
	Active int64
}

// AuthSessionRepository stores auth sessions.
type AuthSessionRepository interface {
	Create(ctx context.Context, s *AuthSession) error
	GetByID(ctx context.Context, id string) (*AuthSession, error)
	Delete(ctx context.Context, id string) (deleted bool, err error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
	// CountActive counts sessions not yet expired at now.
	CountActive(ctx context.Context, now time.Time) (int64, error)
}

// SessionManager owns the sign-in lifecycle.
type SessionManager interface {
	Start(ctx context.Context, userID string, role Role) (*AuthSession, error)
	Validate(ctx context.Context, sessionID string) (*AuthSession, error)
	Rotate(ctx context.Context, sessionID string) (*AuthSession, error)
	End(ctx context.Context, sessionID string) error
}

// SessionValidator is the subset of SessionManager used by request authentication.
type SessionValidator interface {
	Validate(ctx context.Context, sessionID string) (*AuthSession, error)
}

// TokenIssuer issues tokens (e.g. JWT) for an authenticated session.
type TokenIssuer interface {
	Issue(p Principal, email string, expiresAt time.Time) (string, error)
}

// TokenVerifier verifies a token and returns the principal it was issued for.
type TokenVerifier interface {
	Verify(token string) (*Principal, error)
}
