package controllers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	h "eventconnect/internal/delivery/http/helpers"
	"eventconnect/internal/delivery/http/middleware"
	"eventconnect/internal/domain"
)

// testLogger is a no-op logger for controller tests so we don't assert on log output.
var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

const (
	callerID  = "aaaaaaaa-aaaa-4aaa-8aaa-aaaaaaaaaaaa"
	otherID   = "bbbbbbbb-bbbb-4bbb-8bbb-bbbbbbbbbbbb"
	eventID   = "11111111-1111-4111-8111-111111111111"
	speakerID = "22222222-2222-4222-8222-222222222222"
	itemID    = "33333333-3333-4333-8333-333333333333"
	accountID = "44444444-4444-4444-8444-444444444444"
	sessionID = "55555555-5555-4555-8555-555555555555"
)

// serve dispatches one request through a ServeMux registered with pattern so
// path values are populated. body may be empty.
func serve(t *testing.T, pattern string, handler http.HandlerFunc, method, target, body string, authed bool) *httptest.ResponseRecorder {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc(pattern, handler)
	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rdr)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		req = req.WithContext(middleware.SetPrincipal(req.Context(), domain.Principal{
			UserID: callerID, Role: domain.RoleOrganizer, SessionID: sessionID,
		}))
	}
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	return rr
}

// decodeEnvelope decodes the standard response envelope and, when data is
// non-nil, re-decodes the data payload into it.
func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder, data any) h.APIResponse {
	t.Helper()
	var env h.APIResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&env), "response must be valid JSON envelope")
	if data != nil {
		require.Nil(t, env.Error, "success response must have error nil")
		raw, err := json.Marshal(env.Data)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(raw, data))
	}
	return env
}

// fakeUserService implements domain.UserService for handler tests.
// Unset funcs panic through the nil embedded interface.
type fakeUserService struct {
	domain.UserService
	signUp          func(email, password, name string, role domain.Role) (*domain.User, error)
	login           func(email, password string) (*domain.AuthResult, error)
	refresh         func(p domain.Principal) (*domain.AuthResult, error)
	logout          func(p domain.Principal) error
	getByID         func(id string) (*domain.User, error)
	updateProfile   func(id string, upd domain.ProfileUpdate) (*domain.User, error)
	identityPayload func(id string) (*domain.IdentityPayload, error)
}

func (f *fakeUserService) SignUp(_ context.Context, email, password, name string, role domain.Role) (*domain.User, error) {
	return f.signUp(email, password, name, role)
}

func (f *fakeUserService) Login(_ context.Context, email, password string) (*domain.AuthResult, error) {
	return f.login(email, password)
}

func (f *fakeUserService) Refresh(_ context.Context, p domain.Principal) (*domain.AuthResult, error) {
	return f.refresh(p)
}

func (f *fakeUserService) Logout(_ context.Context, p domain.Principal) error {
	return f.logout(p)
}

func (f *fakeUserService) GetByID(_ context.Context, id string) (*domain.User, error) {
	return f.getByID(id)
}

func (f *fakeUserService) UpdateProfile(_ context.Context, id string, upd domain.ProfileUpdate) (*domain.User, error) {
	return f.updateProfile(id, upd)
}

func (f *fakeUserService) IdentityPayload(_ context.Context, id string) (*domain.IdentityPayload, error) {
	return f.identityPayload(id)
}

// fakeEventService implements domain.EventService for handler tests.
type fakeEventService struct {
	domain.EventService
	listEvents       func(filter domain.EventFilter) ([]*domain.Event, int, error)
	getDetail        func(eventID, viewerID string) (*domain.EventDetail, error)
	listOrganizer    func(organizerID string) ([]*domain.Event, error)
	createEvent      func(organizerID string, draft *domain.EventDraft) (*domain.EventLineup, error)
	updateEvent      func(eventID, callerID string, upd domain.EventUpdate) (*domain.Event, error)
	deleteEvent      func(eventID, callerID string) error
	listSpeakers     func(eventID string) ([]*domain.Speaker, error)
	addSpeaker       func(eventID, callerID string, d domain.SpeakerDraft) (*domain.Speaker, error)
	removeSpeaker    func(eventID, speakerID, callerID string) error
	listAgenda       func(eventID string) ([]*domain.AgendaItem, error)
	addAgendaItem    func(eventID, callerID string, d domain.AgendaDraft) (*domain.AgendaItem, error)
	removeAgendaItem func(eventID, itemID, callerID string) error
	myAgenda         func(userID string) ([]*domain.EventLineup, error)
}

func (f *fakeEventService) ListEvents(_ context.Context, filter domain.EventFilter) ([]*domain.Event, int, error) {
	return f.listEvents(filter)
}

func (f *fakeEventService) GetEventDetail(_ context.Context, eventID, viewerID string) (*domain.EventDetail, error) {
	return f.getDetail(eventID, viewerID)
}

func (f *fakeEventService) ListOrganizerEvents(_ context.Context, organizerID string) ([]*domain.Event, error) {
	return f.listOrganizer(organizerID)
}

func (f *fakeEventService) CreateEvent(_ context.Context, organizerID string, draft *domain.EventDraft) (*domain.EventLineup, error) {
	return f.createEvent(organizerID, draft)
}

func (f *fakeEventService) UpdateEvent(_ context.Context, eventID, callerID string, upd domain.EventUpdate) (*domain.Event, error) {
	return f.updateEvent(eventID, callerID, upd)
}

func (f *fakeEventService) DeleteEvent(_ context.Context, eventID, callerID string) error {
	return f.deleteEvent(eventID, callerID)
}

func (f *fakeEventService) ListSpeakers(_ context.Context, eventID string) ([]*domain.Speaker, error) {
	return f.listSpeakers(eventID)
}

func (f *fakeEventService) AddSpeaker(_ context.Context, eventID, callerID string, d domain.SpeakerDraft) (*domain.Speaker, error) {
	return f.addSpeaker(eventID, callerID, d)
}

func (f *fakeEventService) RemoveSpeaker(_ context.Context, eventID, speakerID, callerID string) error {
	return f.removeSpeaker(eventID, speakerID, callerID)
}

func (f *fakeEventService) ListAgenda(_ context.Context, eventID string) ([]*domain.AgendaItem, error) {
	return f.listAgenda(eventID)
}

func (f *fakeEventService) AddAgendaItem(_ context.Context, eventID, callerID string, d domain.AgendaDraft) (*domain.AgendaItem, error) {
	return f.addAgendaItem(eventID, callerID, d)
}

func (f *fakeEventService) RemoveAgendaItem(_ context.Context, eventID, itemID, callerID string) error {
	return f.removeAgendaItem(eventID, itemID, callerID)
}

func (f *fakeEventService) GetMyAgenda(_ context.Context, userID string) ([]*domain.EventLineup, error) {
	return f.myAgenda(userID)
}

// fakeAttendeeService implements domain.AttendeeService for handler tests.
type fakeAttendeeService struct {
	domain.AttendeeService
	register      func(eventID, userID string) (*domain.RegistrationState, error)
	unregister    func(eventID, userID string) (*domain.RegistrationState, error)
	isRegistered  func(eventID, userID string) (*domain.RegistrationState, error)
	listAttendees func(eventID string) ([]*domain.User, error)
	listMyEvents  func(userID string) ([]*domain.Event, error)
}

func (f *fakeAttendeeService) Register(_ context.Context, eventID, userID string) (*domain.RegistrationState, error) {
	return f.register(eventID, userID)
}

func (f *fakeAttendeeService) Unregister(_ context.Context, eventID, userID string) (*domain.RegistrationState, error) {
	return f.unregister(eventID, userID)
}

func (f *fakeAttendeeService) IsRegistered(_ context.Context, eventID, userID string) (*domain.RegistrationState, error) {
	return f.isRegistered(eventID, userID)
}

func (f *fakeAttendeeService) ListAttendees(_ context.Context, eventID string) ([]*domain.User, error) {
	return f.listAttendees(eventID)
}

func (f *fakeAttendeeService) ListMyEvents(_ context.Context, userID string) ([]*domain.Event, error) {
	return f.listMyEvents(userID)
}

// fakeContactService implements domain.ContactService for handler tests.
type fakeContactService struct {
	domain.ContactService
	scan   func(ownerID string, raw []byte) (*domain.Contact, error)
	add    func(ownerID, contactID string) error
	list   func(ownerID string) ([]*domain.Contact, error)
	mutual func(a, b string) (bool, error)
}

func (f *fakeContactService) ScanPayload(_ context.Context, ownerID string, raw []byte) (*domain.Contact, error) {
	return f.scan(ownerID, raw)
}

func (f *fakeContactService) AddContact(_ context.Context, ownerID, contactID string) error {
	return f.add(ownerID, contactID)
}

func (f *fakeContactService) ListContacts(_ context.Context, ownerID string) ([]*domain.Contact, error) {
	return f.list(ownerID)
}

func (f *fakeContactService) IsMutualConnection(_ context.Context, a, b string) (bool, error) {
	return f.mutual(a, b)
}

// fakeSocialService implements domain.SocialAccountService for handler tests.
type fakeSocialService struct {
	list   func(userID string) ([]*domain.SocialAccount, error)
	add    func(userID, platform, username, url string) (*domain.SocialAccount, error)
	remove func(userID, accountID string) error
}

func (f *fakeSocialService) List(_ context.Context, userID string) ([]*domain.SocialAccount, error) {
	return f.list(userID)
}

func (f *fakeSocialService) Add(_ context.Context, userID, platform, username, url string) (*domain.SocialAccount, error) {
	return f.add(userID, platform, username, url)
}

func (f *fakeSocialService) Remove(_ context.Context, userID, accountID string) error {
	return f.remove(userID, accountID)
}
