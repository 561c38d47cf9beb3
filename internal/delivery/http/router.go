package http

import (
	"context"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"eventconnect/internal/delivery/http/controllers"
	h "eventconnect/internal/delivery/http/helpers"
	"eventconnect/internal/metrics"
)

// Controllers groups the handlers mounted by NewRouter.
type Controllers struct {
	Auth     *controllers.AuthController
	User     *controllers.UserController
	Event    *controllers.EventController
	Attendee *controllers.AttendeeController
	Contact  *controllers.ContactController
	Social   *controllers.SocialController
}

// Pinger reports whether a backing store is reachable. *sql.DB satisfies it.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// NewRouter initializes the HTTP router with all application routes.
// Every route except sign-up, login, health, metrics and docs is wrapped with requireAuth.
func NewRouter(c Controllers, requireAuth func(http.HandlerFunc) http.HandlerFunc, db Pinger) *http.ServeMux {
	mux := http.NewServeMux()

	// Auth
	mux.HandleFunc("POST /auth/signup", c.Auth.SignUp)
	mux.HandleFunc("POST /auth/login", c.Auth.Login)
	mux.HandleFunc("POST /auth/refresh", requireAuth(c.Auth.Refresh))
	mux.HandleFunc("POST /auth/logout", requireAuth(c.Auth.Logout))

	// Users
	mux.HandleFunc("GET /users/me", requireAuth(c.User.GetMe))
	mux.HandleFunc("PATCH /users/me", requireAuth(c.User.UpdateMe))
	mux.HandleFunc("GET /users/me/qr-payload", requireAuth(c.User.GetQRPayload))
	mux.HandleFunc("GET /users/me/events", requireAuth(c.Attendee.ListMyEvents))
	mux.HandleFunc("GET /users/me/agenda", requireAuth(c.Event.GetMyAgenda))
	mux.HandleFunc("GET /users/me/social-accounts", requireAuth(c.Social.ListMine))
	mux.HandleFunc("POST /users/me/social-accounts", requireAuth(c.Social.Add))
	mux.HandleFunc("DELETE /users/me/social-accounts/{accountID}", requireAuth(c.Social.Remove))
	mux.HandleFunc("GET /users/{userID}", requireAuth(c.User.GetUser))
	mux.HandleFunc("GET /users/{userID}/social-accounts", requireAuth(c.Social.ListForUser))

	// Events
	mux.HandleFunc("GET /events", requireAuth(c.Event.ListEvents))
	mux.HandleFunc("POST /events", requireAuth(c.Event.CreateEvent))
	mux.HandleFunc("GET /events/{eventID}", requireAuth(c.Event.GetEvent))
	mux.HandleFunc("PATCH /events/{eventID}", requireAuth(c.Event.UpdateEvent))
	mux.HandleFunc("DELETE /events/{eventID}", requireAuth(c.Event.DeleteEvent))
	mux.HandleFunc("GET /organizer/events", requireAuth(c.Event.ListOrganizerEvents))

	// Registration
	mux.HandleFunc("GET /events/{eventID}/attendees", requireAuth(c.Attendee.ListAttendees))
	mux.HandleFunc("POST /events/{eventID}/registrations", requireAuth(c.Attendee.Register))
	mux.HandleFunc("DELETE /events/{eventID}/registrations", requireAuth(c.Attendee.Unregister))
	mux.HandleFunc("GET /events/{eventID}/registrations/me", requireAuth(c.Attendee.RegistrationStatus))

	// Lineup
	mux.HandleFunc("GET /events/{eventID}/speakers", requireAuth(c.Event.ListSpeakers))
	mux.HandleFunc("POST /events/{eventID}/speakers", requireAuth(c.Event.AddSpeaker))
	mux.HandleFunc("DELETE /events/{eventID}/speakers/{speakerID}", requireAuth(c.Event.RemoveSpeaker))
	mux.HandleFunc("GET /events/{eventID}/agenda", requireAuth(c.Event.ListAgenda))
	mux.HandleFunc("POST /events/{eventID}/agenda", requireAuth(c.Event.AddAgendaItem))
	mux.HandleFunc("DELETE /events/{eventID}/agenda/{itemID}", requireAuth(c.Event.RemoveAgendaItem))

	// Contacts
	mux.HandleFunc("GET /contacts", requireAuth(c.Contact.ListContacts))
	mux.HandleFunc("POST /contacts", requireAuth(c.Contact.AddContact))
	mux.HandleFunc("POST /contacts/scan", requireAuth(c.Contact.Scan))
	mux.HandleFunc("GET /contacts/{userID}/mutual", requireAuth(c.Contact.Mutual))

	// Ops
	mux.HandleFunc("GET /healthz", healthz(db))
	mux.Handle("GET /metrics", metrics.Handler())

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}

func healthz(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			if err := db.PingContext(r.Context()); err != nil {
				h.WriteJSONError(w, http.StatusServiceUnavailable, h.ErrCodeInternalError, "database unavailable")
				return
			}
		}
		h.WriteJSONSuccess(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
