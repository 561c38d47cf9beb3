package controllers

import (
	"log/slog"
	"net/http"

	"github.com/shopspring/decimal"

	h "eventconnect/internal/delivery/http/helpers"
	"eventconnect/internal/delivery/http/middleware"
	"eventconnect/internal/domain"
)

// SpeakerRequest is a speaker in POST /events and POST /events/{eventID}/speakers.
type SpeakerRequest struct {
	Name     string `json:"name"`
	Bio      string `json:"bio"`
	Company  string `json:"company"`
	Position string `json:"position"`
	LinkedIn string `json:"linkedin"`
	Twitter  string `json:"twitter"`
}

func (s SpeakerRequest) toDomain() domain.SpeakerDraft {
	return domain.SpeakerDraft{
		Name:     s.Name,
		Bio:      s.Bio,
		Company:  s.Company,
		Position: s.Position,
		LinkedIn: s.LinkedIn,
		Twitter:  s.Twitter,
	}
}

// AgendaItemRequest is an agenda item in POST /events and POST /events/{eventID}/agenda.
// speaker_index refers to the speakers of the same create-event request;
// speaker_id refers to an existing speaker of the event.
type AgendaItemRequest struct {
	Title        string  `json:"title"`
	Description  string  `json:"description"`
	StartTime    string  `json:"start_time"`
	EndTime      string  `json:"end_time"`
	Location     string  `json:"location"`
	Type         string  `json:"type"`
	SpeakerIndex *int    `json:"speaker_index"`
	SpeakerID    *string `json:"speaker_id"`
}

func (a AgendaItemRequest) toDomain() domain.AgendaDraft {
	return domain.AgendaDraft{
		Title:        a.Title,
		Description:  a.Description,
		StartTime:    a.StartTime,
		EndTime:      a.EndTime,
		Location:     a.Location,
		Type:         domain.AgendaItemType(a.Type),
		SpeakerIndex: a.SpeakerIndex,
		SpeakerID:    a.SpeakerID,
	}
}

// CreateEventRequest is the request body for POST /events: the event with its speakers and agenda.
type CreateEventRequest struct {
	Title        string              `json:"title"`
	Description  string              `json:"description"`
	Date         string              `json:"date"`
	Time         string              `json:"time"`
	Venue        string              `json:"venue"`
	MaxAttendees *int                `json:"max_attendees"`
	Category     string              `json:"category"`
	Price        *decimal.Decimal    `json:"price" swaggertype:"string"`
	Speakers     []SpeakerRequest    `json:"speakers"`
	Agenda       []AgendaItemRequest `json:"agenda"`
}

// Validate implements Validator. Date, time and range rules are enforced by the service.
func (c CreateEventRequest) Validate() []string {
	var errs []string
	if c.Title == "" {
		errs = append(errs, "title is required")
	}
	if c.Description == "" {
		errs = append(errs, "description is required")
	}
	if c.Date == "" {
		errs = append(errs, "date is required")
	}
	if c.Time == "" {
		errs = append(errs, "time is required")
	}
	if c.Venue == "" {
		errs = append(errs, "venue is required")
	}
	return errs
}

func (c CreateEventRequest) toDomain() *domain.EventDraft {
	d := &domain.EventDraft{
		Title:        c.Title,
		Description:  c.Description,
		Date:         c.Date,
		Time:         c.Time,
		Venue:        c.Venue,
		MaxAttendees: c.MaxAttendees,
		Category:     domain.EventCategory(c.Category),
		Price:        c.Price,
	}
	for _, s := range c.Speakers {
		d.Speakers = append(d.Speakers, s.toDomain())
	}
	for _, a := range c.Agenda {
		d.Agenda = append(d.Agenda, a.toDomain())
	}
	return d
}

// UpdateEventRequest is the request body for PATCH /events/{eventID}. All fields optional; omitted fields are unchanged.
type UpdateEventRequest struct {
	Title        *string          `json:"title"`
	Description  *string          `json:"description"`
	Date         *string          `json:"date"`
	Time         *string          `json:"time"`
	Venue        *string          `json:"venue"`
	MaxAttendees *int             `json:"max_attendees"`
	Category     *string          `json:"category"`
	Status       *string          `json:"status"`
	Price        *decimal.Decimal `json:"price" swaggertype:"string"`
}

func (u UpdateEventRequest) toDomain() domain.EventUpdate {
	upd := domain.EventUpdate{
		Title:        u.Title,
		Description:  u.Description,
		Date:         u.Date,
		Time:         u.Time,
		Venue:        u.Venue,
		MaxAttendees: u.MaxAttendees,
		Price:        u.Price,
	}
	if u.Category != nil {
		c := domain.EventCategory(*u.Category)
		upd.Category = &c
	}
	if u.Status != nil {
		s := domain.EventStatus(*u.Status)
		upd.Status = &s
	}
	return upd
}

// ListEventsResponse is the data payload for GET /events.
type ListEventsResponse struct {
	Items      []*domain.Event  `json:"items"`
	Pagination h.PaginationMeta `json:"pagination"`
}

type EventController struct {
	Logger  *slog.Logger
	Service domain.EventService
}

func NewEventController(logger *slog.Logger, svc domain.EventService) *EventController {
	return &EventController{
		Logger:  logger,
		Service: svc,
	}
}

// ListEvents godoc
// @Summary List events
// @Description Lists events by date with their organizer summary and attendee count. Optional category filter, case-insensitive title/description search and page/page_size pagination.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param category query string false "Event category"
// @Param q query string false "Search text matched against title and description"
// @Param page query int false "Page (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} helpers.APIResponse "data contains items and pagination"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [get]
func (c *EventController) ListEvents(w http.ResponseWriter, r *http.Request) {
	filter := domain.EventFilter{
		Query:      r.URL.Query().Get("q"),
		Pagination: h.ParsePagination(r),
	}
	if v := r.URL.Query().Get("category"); v != "" {
		cat := domain.EventCategory(v)
		filter.Category = &cat
	}
	events, total, err := c.Service.ListEvents(r.Context(), filter)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, ListEventsResponse{
		Items:      events,
		Pagination: h.NewPaginationMeta(filter.Pagination, total),
	})
}

// CreateEvent godoc
// @Summary Create a new event
// @Description Creates an event with its speakers and agenda in one transaction. Only organizers can create events; the caller becomes the organizer. Speakers without a name and agenda items without title, start_time or end_time are skipped.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param event body CreateEventRequest true "Event with speakers and agenda"
// @Success 201 {object} helpers.APIResponse "data contains event, speakers and agenda"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not an organizer)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [post]
func (c *EventController) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req CreateEventRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeUnauthorized(w)
		return
	}
	lineup, err := c.Service.CreateEvent(r.Context(), userID, req.toDomain())
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusCreated, lineup)
}

// GetEvent godoc
// @Summary Get an event
// @Description Returns the event with attendees, speakers and agenda plus is_registered, is_organizer and is_full for the caller.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data contains the event detail"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID} [get]
func (c *EventController) GetEvent(w http.ResponseWriter, r *http.Request) {
	eventID, ok := h.PathUUID(w, r, "eventID")
	if !ok {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeUnauthorized(w)
		return
	}
	detail, err := c.Service.GetEventDetail(r.Context(), eventID, userID)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, detail)
}

// UpdateEvent godoc
// @Summary Update event details
// @Description Only the organizer can update. Omitted fields are unchanged. max_attendees cannot drop below the current attendee count.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param body body UpdateEventRequest true "Fields to update (all optional)"
// @Success 200 {object} helpers.APIResponse "data contains the updated event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not organizer)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID} [patch]
func (c *EventController) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	eventID, ok := h.PathUUID(w, r, "eventID")
	if !ok {
		return
	}
	var req UpdateEventRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeUnauthorized(w)
		return
	}
	event, err := c.Service.UpdateEvent(r.Context(), eventID, userID, req.toDomain())
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, event)
}

// DeleteEvent godoc
// @Summary Delete an event
// @Description Deletes an event with its registrations, speakers and agenda. Only the organizer can delete.
// @Tags events
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 204 "deleted"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not organizer)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID} [delete]
func (c *EventController) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	eventID, ok := h.PathUUID(w, r, "eventID")
	if !ok {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeUnauthorized(w)
		return
	}
	if err := c.Service.DeleteEvent(r.Context(), eventID, userID); err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListOrganizerEvents godoc
// @Summary List events organized by the current user
// @Tags events
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data contains the events"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /organizer/events [get]
func (c *EventController) ListOrganizerEvents(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeUnauthorized(w)
		return
	}
	events, err := c.Service.ListOrganizerEvents(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, events)
}

// GetMyAgenda godoc
// @Summary Get the agenda of every event the current user attends
// @Tags events
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data contains one lineup per registered event"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /users/me/agenda [get]
func (c *EventController) GetMyAgenda(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeUnauthorized(w)
		return
	}
	lineups, err := c.Service.GetMyAgenda(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, lineups)
}
