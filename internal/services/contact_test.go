package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventconnect/internal/domain"
)

func newTestContactService(store *memStore) domain.ContactService {
	return NewContactService(memContactRepo{store}, memUserRepo{store}, time.Second)
}

func payloadFor(t *testing.T, u *domain.User) []byte {
	t.Helper()
	raw, err := json.Marshal(domain.IdentityPayload{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role})
	require.NoError(t, err)
	return raw
}

func TestContactService_ScanPayload(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	ada := store.addUser("Ada", "ada@example.com", domain.RoleAttendee)
	bob := store.addUser("Bob", "bob@example.com", domain.RoleSpeaker)
	svc := newTestContactService(store)

	c, err := svc.ScanPayload(ctx, ada.ID, payloadFor(t, bob))
	require.NoError(t, err)
	assert.Equal(t, bob.ID, c.User.ID)
	assert.False(t, c.Mutual)

	_, err = svc.ScanPayload(ctx, ada.ID, payloadFor(t, bob))
	require.ErrorIs(t, err, domain.ErrContactExists)

	c, err = svc.ScanPayload(ctx, bob.ID, payloadFor(t, ada))
	require.NoError(t, err)
	assert.True(t, c.Mutual)

	_, err = svc.ScanPayload(ctx, ada.ID, payloadFor(t, ada))
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestContactService_ScanInvalidPayloadWritesNothing(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	ada := store.addUser("Ada", "ada@example.com", domain.RoleAttendee)
	svc := newTestContactService(store)

	for name, raw := range map[string]string{
		"not json":      "hello",
		"missing id":    `{"name":"Bob","email":"bob@example.com"}`,
		"missing name":  `{"id":"00000000-0000-4000-8000-000000000009","email":"bob@example.com"}`,
		"missing email": `{"id":"00000000-0000-4000-8000-000000000009","name":"Bob"}`,
		"id not a uuid": `{"id":"user-9","name":"Bob","email":"bob@example.com"}`,
		"unknown user":  `{"id":"ffffffff-ffff-4fff-8fff-ffffffffffff","name":"Ghost","email":"ghost@example.com"}`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := svc.ScanPayload(ctx, ada.ID, []byte(raw))
			require.ErrorIs(t, err, domain.ErrInvalidQRCode)
		})
	}
	assert.Empty(t, store.contacts[ada.ID])
}

// lookupGuardUserRepo fails the test on any user lookup.
type lookupGuardUserRepo struct {
	memUserRepo
	t *testing.T
}

func (r lookupGuardUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.t.Errorf("unexpected user lookup for %q", id)
	return nil, errors.New("unexpected lookup")
}

func TestContactService_ScanNonUUIDNeverReachesStore(t *testing.T) {
	store := newMemStore()
	ada := store.addUser("Ada", "ada@example.com", domain.RoleAttendee)
	svc := NewContactService(memContactRepo{store}, lookupGuardUserRepo{memUserRepo{store}, t}, time.Second)

	_, err := svc.ScanPayload(context.Background(), ada.ID, []byte(`{"id":"not-a-uuid","name":"Bob","email":"bob@example.com"}`))
	require.ErrorIs(t, err, domain.ErrInvalidQRCode)
	assert.Empty(t, store.contacts[ada.ID])
}

func TestContactService_ListAndMutual(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	ada := store.addUser("Ada", "ada@example.com", domain.RoleAttendee)
	bob := store.addUser("Bob", "bob@example.com", domain.RoleAttendee)
	cyd := store.addUser("Cyd", "cyd@example.com", domain.RoleAttendee)
	svc := newTestContactService(store)

	require.NoError(t, svc.AddContact(ctx, ada.ID, bob.ID))
	require.NoError(t, svc.AddContact(ctx, ada.ID, bob.ID), "adding twice is not an error")
	require.NoError(t, svc.AddContact(ctx, ada.ID, cyd.ID))
	require.NoError(t, svc.AddContact(ctx, bob.ID, ada.ID))
	require.ErrorIs(t, svc.AddContact(ctx, ada.ID, ada.ID), domain.ErrInvalidInput)
	require.ErrorIs(t, svc.AddContact(ctx, ada.ID, "missing"), domain.ErrUserNotFound)

	contacts, err := svc.ListContacts(ctx, ada.ID)
	require.NoError(t, err)
	require.Len(t, contacts, 2)
	mutual := map[string]bool{}
	for _, c := range contacts {
		mutual[c.User.ID] = c.Mutual
	}
	assert.Equal(t, map[string]bool{bob.ID: true, cyd.ID: false}, mutual)

	for _, pair := range [][2]string{{ada.ID, bob.ID}, {bob.ID, ada.ID}} {
		ok, err := svc.IsMutualConnection(ctx, pair[0], pair[1])
		require.NoError(t, err)
		assert.True(t, ok)
	}
	ok, err := svc.IsMutualConnection(ctx, ada.ID, cyd.ID)
	require.NoError(t, err)
	assert.False(t, ok)
	ok, err = svc.IsMutualConnection(ctx, ada.ID, ada.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	empty, err := svc.ListContacts(ctx, cyd.ID)
	require.NoError(t, err)
	assert.Empty(t, empty)
}
