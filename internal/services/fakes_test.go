package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"eventconnect/internal/domain"
)

// memStore is an in-memory backing store shared by the fake repositories.
type memStore struct {
	mu        sync.Mutex
	nextID    int
	users     map[string]*domain.User
	events    map[string]*domain.Event
	speakers  map[string]*domain.Speaker
	agenda    map[string]*domain.AgendaItem
	attendees map[string][]string // event id -> user ids in registration order
	contacts  map[string][]string // owner id -> contact ids
	accounts  map[string]*domain.SocialAccount

	// failOn makes the named operation fail once, e.g. "agenda.create".
	failOn string
}

func newMemStore() *memStore {
	return &memStore{
		users:     make(map[string]*domain.User),
		events:    make(map[string]*domain.Event),
		speakers:  make(map[string]*domain.Speaker),
		agenda:    make(map[string]*domain.AgendaItem),
		attendees: make(map[string][]string),
		contacts:  make(map[string][]string),
		accounts:  make(map[string]*domain.SocialAccount),
	}
}

// newID returns sequential UUIDs so ids sort in creation order.
func (m *memStore) newID() string {
	m.nextID++
	return fmt.Sprintf("00000000-0000-4000-8000-%012d", m.nextID)
}

func (m *memStore) fail(op string) error {
	if m.failOn == op {
		m.failOn = ""
		return fmt.Errorf("%s: injected failure", op)
	}
	return nil
}

func (m *memStore) addUser(name, email string, role domain.Role) *domain.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := domain.NewUser(email, name, role, time.Now(), time.Now())
	u.ID = m.newID()
	m.users[u.ID] = u
	return u
}

func (m *memStore) addEvent(title, organizerID string, max *int) *domain.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := domain.NewEvent(title, "desc", "2025-06-01", "10:00", "Hall A", organizerID, domain.CategoryConference, time.Now(), time.Now())
	e.ID = m.newID()
	e.MaxAttendees = max
	m.events[e.ID] = e
	return e
}

func (m *memStore) snapshot() *memStore {
	cp := newMemStore()
	cp.nextID = m.nextID
	for k, v := range m.users {
		cp.users[k] = v
	}
	for k, v := range m.events {
		cp.events[k] = v
	}
	for k, v := range m.speakers {
		cp.speakers[k] = v
	}
	for k, v := range m.agenda {
		cp.agenda[k] = v
	}
	for k, v := range m.attendees {
		cp.attendees[k] = append([]string(nil), v...)
	}
	for k, v := range m.contacts {
		cp.contacts[k] = append([]string(nil), v...)
	}
	for k, v := range m.accounts {
		cp.accounts[k] = v
	}
	return cp
}

func (m *memStore) restore(s *memStore) {
	m.nextID = s.nextID
	m.users, m.events, m.speakers, m.agenda = s.users, s.events, s.speakers, s.agenda
	m.attendees, m.contacts, m.accounts = s.attendees, s.contacts, s.accounts
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// users

type memUserRepo struct{ *memStore }

func (r memUserRepo) Create(_ context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return domain.ErrDuplicateEmail
		}
	}
	u.ID = r.newID()
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r memUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r memUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r memUserRepo) UpdateProfile(_ context.Context, id string, upd domain.ProfileUpdate) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	set(&u.Name, upd.Name)
	set(&u.Company, upd.Company)
	set(&u.Position, upd.Position)
	set(&u.Bio, upd.Bio)
	set(&u.LinkedIn, upd.LinkedIn)
	set(&u.WhatsApp, upd.WhatsApp)
	cp := *u
	return &cp, nil
}

// events

type memEventRepo struct{ *memStore }

func (r memEventRepo) Create(_ context.Context, e *domain.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.fail("events.create"); err != nil {
		return err
	}
	if _, ok := r.users[e.OrganizerID]; !ok {
		return domain.ErrUserNotFound
	}
	e.ID = r.newID()
	cp := *e
	r.events[e.ID] = &cp
	return nil
}

func (r memEventRepo) load(e *domain.Event) *domain.Event {
	cp := *e
	cp.AttendeeCount = len(r.attendees[e.ID])
	if o, ok := r.users[e.OrganizerID]; ok {
		cp.Organizer = &domain.OrganizerSummary{ID: o.ID, Name: o.Name, Company: o.Company}
	}
	return &cp
}

func (r memEventRepo) GetByID(_ context.Context, id string) (*domain.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.events[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return r.load(e), nil
}

func (r memEventRepo) sorted(keep func(*domain.Event) bool) []*domain.Event {
	var out []*domain.Event
	for _, e := range r.events {
		if keep(e) {
			out = append(out, r.load(e))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r memEventRepo) List(_ context.Context, f domain.EventFilter) ([]*domain.Event, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	q := strings.ToLower(f.Query)
	out := r.sorted(func(e *domain.Event) bool {
		if f.Category != nil && e.Category != *f.Category {
			return false
		}
		return q == "" ||
			strings.Contains(strings.ToLower(e.Title), q) ||
			strings.Contains(strings.ToLower(e.Description), q)
	})
	total := len(out)
	if f.Pagination.PageSize > 0 {
		start := min(f.Pagination.Offset(), total)
		end := min(start+f.Pagination.PageSize, total)
		out = out[start:end]
	}
	return out, total, nil
}

func (r memEventRepo) ListByOrganizerID(_ context.Context, organizerID string) ([]*domain.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sorted(func(e *domain.Event) bool { return e.OrganizerID == organizerID }), nil
}

func (r memEventRepo) Update(_ context.Context, id string, upd domain.EventUpdate) (*domain.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.events[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *e
	if upd.Title != nil {
		cp.Title = *upd.Title
	}
	if upd.Venue != nil {
		cp.Venue = *upd.Venue
	}
	if upd.MaxAttendees != nil {
		cp.MaxAttendees = upd.MaxAttendees
	}
	if upd.Status != nil {
		cp.Status = *upd.Status
	}
	if upd.Category != nil {
		cp.Category = *upd.Category
	}
	if upd.Price != nil {
		cp.Price = upd.Price
	}
	r.events[id] = &cp
	return r.load(&cp), nil
}

// Delete cascades like the schema's foreign keys.
func (r memEventRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.events[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.events, id)
	delete(r.attendees, id)
	for k, s := range r.speakers {
		if s.EventID == id {
			delete(r.speakers, k)
		}
	}
	for k, a := range r.agenda {
		if a.EventID == id {
			delete(r.agenda, k)
		}
	}
	return nil
}

// speakers

type memSpeakerRepo struct{ *memStore }

func (r memSpeakerRepo) Create(_ context.Context, s *domain.Speaker) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.fail("speakers.create"); err != nil {
		return err
	}
	if _, ok := r.events[s.EventID]; !ok {
		return domain.ErrNotFound
	}
	s.ID = r.newID()
	cp := *s
	r.speakers[s.ID] = &cp
	return nil
}

func (r memSpeakerRepo) GetByID(_ context.Context, id string) (*domain.Speaker, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.speakers[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (r memSpeakerRepo) ListByEventID(_ context.Context, eventID string) ([]*domain.Speaker, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*domain.Speaker{}
	for _, s := range r.speakers {
		if s.EventID == eventID {
			cp := *s
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r memSpeakerRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.speakers[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.speakers, id)
	for _, a := range r.agenda {
		if a.SpeakerID != nil && *a.SpeakerID == id {
			a.SpeakerID = nil
		}
	}
	return nil
}

// agenda

type memAgendaRepo struct{ *memStore }

func (r memAgendaRepo) Create(_ context.Context, a *domain.AgendaItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.fail("agenda.create"); err != nil {
		return err
	}
	if _, ok := r.events[a.EventID]; !ok {
		return domain.ErrNotFound
	}
	a.ID = r.newID()
	cp := *a
	cp.Speaker = nil
	r.agenda[a.ID] = &cp
	return nil
}

func (r memAgendaRepo) GetByID(_ context.Context, id string) (*domain.AgendaItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.agenda[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (r memAgendaRepo) ListByEventID(_ context.Context, eventID string) ([]*domain.AgendaItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*domain.AgendaItem{}
	for _, a := range r.agenda {
		if a.EventID == eventID {
			cp := *a
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime < out[j].StartTime })
	return out, nil
}

func (r memAgendaRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.agenda[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.agenda, id)
	return nil
}

// attendance

type memAttendeeRepo struct{ *memStore }

func (r memAttendeeRepo) Create(_ context.Context, a *domain.Attendance) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.events[a.EventID]
	if !ok {
		return domain.ErrNotFound
	}
	if e.IsFull(len(r.attendees[a.EventID])) {
		return domain.ErrEventFull
	}
	if contains(r.attendees[a.EventID], a.UserID) {
		return domain.ErrAlreadyRegistered
	}
	a.ID = r.newID()
	r.attendees[a.EventID] = append(r.attendees[a.EventID], a.UserID)
	return nil
}

func (r memAttendeeRepo) Delete(_ context.Context, eventID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := r.attendees[eventID]
	for i, id := range ids {
		if id == userID {
			r.attendees[eventID] = append(ids[:i:i], ids[i+1:]...)
			break
		}
	}
	return nil
}

func (r memAttendeeRepo) Exists(_ context.Context, eventID, userID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return contains(r.attendees[eventID], userID), nil
}

func (r memAttendeeRepo) CountByEventID(_ context.Context, eventID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.attendees[eventID]), nil
}

func (r memAttendeeRepo) ListUsersByEventID(_ context.Context, eventID string) ([]*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*domain.User{}
	for _, id := range r.attendees[eventID] {
		if u, ok := r.users[id]; ok {
			cp := *u
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r memAttendeeRepo) ListEventsByUserID(_ context.Context, userID string) ([]*domain.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	events := memEventRepo(r)
	return events.sorted(func(e *domain.Event) bool { return contains(r.attendees[e.ID], userID) }), nil
}

// contacts

type memContactRepo struct{ *memStore }

func (r memContactRepo) Add(_ context.Context, userID, contactID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[contactID]; !ok {
		return domain.ErrUserNotFound
	}
	if !contains(r.contacts[userID], contactID) {
		r.contacts[userID] = append(r.contacts[userID], contactID)
	}
	return nil
}

func (r memContactRepo) Exists(_ context.Context, userID, contactID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return contains(r.contacts[userID], contactID), nil
}

func (r memContactRepo) ListByUserID(_ context.Context, userID string) ([]*domain.Contact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*domain.Contact{}
	for _, id := range r.contacts[userID] {
		if u, ok := r.users[id]; ok {
			cp := *u
			out = append(out, &domain.Contact{User: &cp})
		}
	}
	return out, nil
}

func (r memContactRepo) ListReverseEdges(_ context.Context, ownerID string, contactIDs []string) (map[string]bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]bool)
	for _, id := range contactIDs {
		if contains(r.contacts[id], ownerID) {
			out[id] = true
		}
	}
	return out, nil
}

// social accounts

type memAccountRepo struct{ *memStore }

func (r memAccountRepo) Create(_ context.Context, a *domain.SocialAccount) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[a.UserID]; !ok {
		return domain.ErrUserNotFound
	}
	a.ID = r.newID()
	cp := *a
	r.accounts[a.ID] = &cp
	return nil
}

func (r memAccountRepo) GetByID(_ context.Context, id string) (*domain.SocialAccount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (r memAccountRepo) ListByUserID(_ context.Context, userID string) ([]*domain.SocialAccount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*domain.SocialAccount{}
	for _, a := range r.accounts {
		if a.UserID == userID {
			cp := *a
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memAccountRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.accounts, id)
	return nil
}

// memTx restores the store snapshot when fn fails, mirroring a rollback.
type memTx struct{ *memStore }

func (t memTx) Events() domain.EventRepository     { return memEventRepo(t) }
func (t memTx) Speakers() domain.SpeakerRepository { return memSpeakerRepo(t) }
func (t memTx) Agenda() domain.AgendaRepository    { return memAgendaRepo(t) }

func (t memTx) WithinTx(_ context.Context, fn func(domain.LineupStore) error) error {
	t.mu.Lock()
	snap := t.snapshot()
	t.mu.Unlock()
	if err := fn(t); err != nil {
		t.mu.Lock()
		t.restore(snap)
		t.mu.Unlock()
		return err
	}
	return nil
}

// fakeHasher stores passwords as salt+password.
type fakeHasher struct{}

func (fakeHasher) GenerateSalt() (string, error)              { return "salt", nil }
func (fakeHasher) Hash(salt, password string) (string, error) { return salt + password, nil }
func (fakeHasher) Compare(hash, salt, password string) error {
	if hash != salt+password {
		return domain.ErrInvalidCredentials
	}
	return nil
}

// fakeIssuer encodes the principal in the token so tests can inspect it.
type fakeIssuer struct{}

func (fakeIssuer) Issue(p domain.Principal, email string, _ time.Time) (string, error) {
	return p.UserID + "|" + p.SessionID + "|" + email, nil
}

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }
