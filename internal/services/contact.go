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

type contactService struct {
	contactRepo    domain.ContactRepository
	userRepo       domain.UserRepository
	contextTimeout time.Duration
}

// NewContactService creates a ContactService.
func NewContactService(contactRepo domain.ContactRepository, userRepo domain.UserRepository, timeout time.Duration) domain.ContactService {
	return &contactService{
		contactRepo:    contactRepo,
		userRepo:       userRepo,
		contextTimeout: timeout,
	}
}

// ScanPayload adds the user identified by a scanned payload to ownerID's contacts.
// Nothing is written unless the payload is valid and names a new contact.
func (s *contactService) ScanPayload(ctx context.Context, ownerID string, raw []byte) (*domain.Contact, error) {
	ctx, cancel := withTimeout(ctx, s.contextTimeout)
	defer cancel()

	payload, err := domain.ParseIdentityPayload(raw)
	if err != nil {
		return nil, err
	}
	if payload.ID == ownerID {
		return nil, invalid("cannot add yourself as a contact")
	}

	contacts, err := s.contactRepo.ListByUserID(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	for _, c := range contacts {
		if c.User.ID == payload.ID || strings.EqualFold(c.User.Email, payload.Email) {
			return nil, domain.ErrContactExists
		}
	}

	user, err := s.userRepo.GetByID(ctx, payload.ID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidQRCode
		}
		return nil, fmt.Errorf("get scanned user: %w", err)
	}

	if err := s.contactRepo.Add(ctx, ownerID, user.ID); err != nil {
		return nil, fmt.Errorf("add contact: %w", err)
	}
	mutual, err := s.contactRepo.Exists(ctx, user.ID, ownerID)
	if err != nil {
		return nil, fmt.Errorf("check reverse contact: %w", err)
	}
	return &domain.Contact{User: user, Mutual: mutual, AddedAt: time.Now().UTC()}, nil
}

func (s *contactService) AddContact(ctx context.Context, ownerID, contactID string) error {
	ctx, cancel := withTimeout(ctx, s.contextTimeout)
	defer cancel()

	if contactID == "" {
		return invalid("contact_id is required")
	}
	if contactID == ownerID {
		return invalid("cannot add yourself as a contact")
	}
	if err := s.contactRepo.Add(ctx, ownerID, contactID); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.ErrUserNotFound
		}
		return fmt.Errorf("add contact: %w", err)
	}
	return nil
}

// ListContacts returns ownerID's contacts flagged mutual when the contact
// has ownerID in their own list.
func (s *contactService) ListContacts(ctx context.Context, ownerID string) ([]*domain.Contact, error) {
	ctx, cancel := withTimeout(ctx, s.contextTimeout)
	defer cancel()

	contacts, err := s.contactRepo.ListByUserID(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	if len(contacts) == 0 {
		return contacts, nil
	}
	ids := make([]string, len(contacts))
	for i, c := range contacts {
		ids[i] = c.User.ID
	}
	reverse, err := s.contactRepo.ListReverseEdges(ctx, ownerID, ids)
	if err != nil {
		return nil, fmt.Errorf("list reverse contacts: %w", err)
	}
	for _, c := range contacts {
		c.Mutual = reverse[c.User.ID]
	}
	return contacts, nil
}

func (s *contactService) IsMutualConnection(ctx context.Context, userA, userB string) (bool, error) {
	ctx, cancel := withTimeout(ctx, s.contextTimeout)
	defer cancel()

	if userA == userB {
		return false, nil
	}
	var forward, backward bool
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		forward, err = s.contactRepo.Exists(gctx, userA, userB)
		return err
	})
	g.Go(func() (err error) {
		backward, err = s.contactRepo.Exists(gctx, userB, userA)
		return err
	})
	if err := g.Wait(); err != nil {
		return false, fmt.Errorf("check mutual connection: %w", err)
	}
	return forward && backward, nil
}
