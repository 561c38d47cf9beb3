package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"eventconnect/internal/domain"
)

const minPasswordLen = 6

var emailRegexp = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

type userService struct {
	userRepo       domain.UserRepository
	hasher         domain.PasswordHasher
	tokenIssuer    domain.TokenIssuer
	sessions       domain.SessionManager
	contextTimeout time.Duration
}

// NewUserService creates a UserService with the given repository and auth ports.
func NewUserService(userRepo domain.UserRepository, hasher domain.PasswordHasher, tokenIssuer domain.TokenIssuer, sessions domain.SessionManager, timeout time.Duration) domain.UserService {
	return &userService{
		userRepo:       userRepo,
		hasher:         hasher,
		tokenIssuer:    tokenIssuer,
		sessions:       sessions,
		contextTimeout: timeout,
	}
}

func normalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}

func (s *userService) SignUp(ctx context.Context, email, password, name string, role domain.Role) (*domain.User, error) {
	ctx, cancel := withTimeout(ctx, s.contextTimeout)
	defer cancel()

	email = normalizeEmail(email)
	if !emailRegexp.MatchString(email) {
		return nil, invalid("invalid email format")
	}
	if len(password) < minPasswordLen {
		return nil, invalid("password must be at least %d characters", minPasswordLen)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalid("name is required")
	}
	if role == "" {
		role = domain.RoleAttendee
	}
	if !role.Valid() {
		return nil, invalid("unknown role %q", role)
	}

	salt, err := s.hasher.GenerateSalt()
	if err != nil {
		return nil, err
	}
	hash, err := s.hasher.Hash(salt, password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := domain.NewUser(email, name, role, now, now)
	user.PasswordHash = hash
	user.Salt = salt
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			return nil, domain.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

func (s *userService) Login(ctx context.Context, email, password string) (*domain.AuthResult, error) {
	ctx, cancel := withTimeout(ctx, s.contextTimeout)
	defer cancel()

	user, err := s.userRepo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	if err := s.hasher.Compare(user.PasswordHash, user.Salt, password); err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("compare password: %w", err)
	}

	sess, err := s.sessions.Start(ctx, user.ID, user.Role)
	if err != nil {
		return nil, err
	}
	return s.issue(user, sess)
}

func (s *userService) Refresh(ctx context.Context, p domain.Principal) (*domain.AuthResult, error) {
	ctx, cancel := withTimeout(ctx, s.contextTimeout)
	defer cancel()

	sess, err := s.sessions.Rotate(ctx, p.SessionID)
	if err != nil {
		return nil, err
	}
	user, err := s.userRepo.GetByID(ctx, sess.UserID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return s.issue(user, sess)
}

func (s *userService) issue(user *domain.User, sess *domain.AuthSession) (*domain.AuthResult, error) {
	p := domain.Principal{UserID: user.ID, Role: user.Role, SessionID: sess.ID}
	token, err := s.tokenIssuer.Issue(p, user.Email, sess.ExpiresAt)
	if err != nil {
		return nil, err
	}
	return &domain.AuthResult{Token: token, ExpiresAt: sess.ExpiresAt, User: user}, nil
}

func (s *userService) Logout(ctx context.Context, p domain.Principal) error {
	ctx, cancel := withTimeout(ctx, s.contextTimeout)
	defer cancel()
	return s.sessions.End(ctx, p.SessionID)
}

func (s *userService) GetByID(ctx context.Context, id string) (*domain.User, error) {
	ctx, cancel := withTimeout(ctx, s.contextTimeout)
	defer cancel()

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

func trimPtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := strings.TrimSpace(*p)
	return &v
}

func (s *userService) UpdateProfile(ctx context.Context, id string, upd domain.ProfileUpdate) (*domain.User, error) {
	ctx, cancel := withTimeout(ctx, s.contextTimeout)
	defer cancel()

	upd = domain.ProfileUpdate{
		Name:     trimPtr(upd.Name),
		Company:  trimPtr(upd.Company),
		Position: trimPtr(upd.Position),
		Bio:      trimPtr(upd.Bio),
		LinkedIn: trimPtr(upd.LinkedIn),
		WhatsApp: trimPtr(upd.WhatsApp),
	}
	if upd.Name != nil && *upd.Name == "" {
		return nil, invalid("name cannot be empty")
	}
	user, err := s.userRepo.UpdateProfile(ctx, id, upd)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return user, nil
}

func (s *userService) IdentityPayload(ctx context.Context, id string) (*domain.IdentityPayload, error) {
	user, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &domain.IdentityPayload{ID: user.ID, Name: user.Name, Email: user.Email, Role: user.Role}, nil
}
