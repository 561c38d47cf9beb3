package domain

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Sentinel errors for contact exchange.
var (
	ErrInvalidQRCode = errors.New("invalid QR code")
	ErrContactExists = errors.New("contact already exists")
)

// IdentityPayload is the identity exchanged through a scanned code.
type IdentityPayload struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role,omitempty"`
}

// ParseIdentityPayload decodes raw and requires name, email and a UUID id,
// which is returned in canonical form. Any failure is reported as ErrInvalidQRCode.
func ParseIdentityPayload(raw []byte) (*IdentityPayload, error) {
	var p IdentityPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, ErrInvalidQRCode
	}
	p.ID = strings.TrimSpace(p.ID)
	p.Name = strings.TrimSpace(p.Name)
	p.Email = strings.TrimSpace(p.Email)
	if p.ID == "" || p.Name == "" || p.Email == "" {
		return nil, ErrInvalidQRCode
	}
	id, err := uuid.Parse(p.ID)
	if err != nil {
		return nil, ErrInvalidQRCode
	}
	p.ID = id.String()
	return &p, nil
}

// Contact is an entry of a user's contact list.
// swagger:model Contact
type Contact struct {
	User    *User     `json:"user"`
	Mutual  bool      `json:"mutual"`
	AddedAt time.Time `json:"added_at"`
}

// ContactRepository stores directional contact edges.
type ContactRepository interface {
	// Add is idempotent: an existing edge is not an error.
	Add(ctx context.Context, userID, contactID string) error
	Exists(ctx context.Context, userID, contactID string) (bool, error)
	ListByUserID(ctx context.Context, userID string) ([]*Contact, error)
	// ListReverseEdges returns the subset of contactIDs that have ownerID in their own contacts.
	ListReverseEdges(ctx context.Context, ownerID string, contactIDs []string) (map[string]bool, error)
}

// ContactService defines contact exchange and listing.
type ContactService interface {
	ScanPayload(ctx context.Context, ownerID string, raw []byte) (*Contact, error)
	AddContact(ctx context.Context, ownerID, contactID string) error
	ListContacts(ctx context.Context, ownerID string) ([]*Contact, error)
	IsMutualConnection(ctx context.Context, userA, userB string) (bool, error)
}
