package controllers

import (
	"net/http"

	h "eventconnect/internal/delivery/http/helpers"
	"eventconnect/internal/delivery/http/middleware"
)

// Validate implements Validator.
func (s SpeakerRequest) Validate() []string {
	if s.Name == "" {
		return []string{"name is required"}
	}
	return nil
}

// Validate implements Validator. Clock range and type are checked by the service.
func (a AgendaItemRequest) Validate() []string {
	var errs []string
	if a.Title == "" {
		errs = append(errs, "title is required")
	}
	if a.StartTime == "" {
		errs = append(errs, "start_time is required")
	}
	if a.EndTime == "" {
		errs = append(errs, "end_time is required")
	}
	if a.SpeakerIndex != nil {
		errs = append(errs, "speaker_index is only accepted when creating an event; use speaker_id")
	}
	return errs
}

// ListSpeakers godoc
// @Summary List an event's speakers
// @Tags lineup
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data contains the speakers"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/speakers [get]
func (c *EventController) ListSpeakers(w http.ResponseWriter, r *http.Request) {
	eventID, ok := h.PathUUID(w, r, "eventID")
	if !ok {
		return
	}
	speakers, err := c.Service.ListSpeakers(r.Context(), eventID)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, speakers)
}

// AddSpeaker godoc
// @Summary Add a speaker to an event
// @Description Only the organizer can add speakers.
// @Tags lineup
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param body body SpeakerRequest true "Speaker"
// @Success 201 {object} helpers.APIResponse "data contains the speaker"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not organizer)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/speakers [post]
func (c *EventController) AddSpeaker(w http.ResponseWriter, r *http.Request) {
	eventID, ok := h.PathUUID(w, r, "eventID")
	if !ok {
		return
	}
	var req SpeakerRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeUnauthorized(w)
		return
	}
	speaker, err := c.Service.AddSpeaker(r.Context(), eventID, userID, req.toDomain())
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusCreated, speaker)
}

// RemoveSpeaker godoc
// @Summary Remove a speaker from an event
// @Description Only the organizer can remove speakers. Agenda items keep their slot without a speaker.
// @Tags lineup
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param speakerID path string true "Speaker ID (UUID)"
// @Success 204 "removed"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not organizer)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/speakers/{speakerID} [delete]
func (c *EventController) RemoveSpeaker(w http.ResponseWriter, r *http.Request) {
	eventID, ok := h.PathUUID(w, r, "eventID")
	if !ok {
		return
	}
	speakerID, ok := h.PathUUID(w, r, "speakerID")
	if !ok {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeUnauthorized(w)
		return
	}
	if err := c.Service.RemoveSpeaker(r.Context(), eventID, speakerID, userID); err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListAgenda godoc
// @Summary List an event's agenda
// @Description Items are ordered by start time, each with its speaker resolved.
// @Tags lineup
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data contains the agenda items"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/agenda [get]
func (c *EventController) ListAgenda(w http.ResponseWriter, r *http.Request) {
	eventID, ok := h.PathUUID(w, r, "eventID")
	if !ok {
		return
	}
	items, err := c.Service.ListAgenda(r.Context(), eventID)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, items)
}

// AddAgendaItem godoc
// @Summary Add an agenda item to an event
// @Description Only the organizer can add agenda items. speaker_id must reference a speaker of the same event.
// @Tags lineup
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param body body AgendaItemRequest true "Agenda item"
// @Success 201 {object} helpers.APIResponse "data contains the agenda item"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not organizer)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/agenda [post]
func (c *EventController) AddAgendaItem(w http.ResponseWriter, r *http.Request) {
	eventID, ok := h.PathUUID(w, r, "eventID")
	if !ok {
		return
	}
	var req AgendaItemRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeUnauthorized(w)
		return
	}
	item, err := c.Service.AddAgendaItem(r.Context(), eventID, userID, req.toDomain())
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusCreated, item)
}

// RemoveAgendaItem godoc
// @Summary Remove an agenda item
// @Tags lineup
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param itemID path string true "Agenda item ID (UUID)"
// @Success 204 "removed"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not organizer)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/agenda/{itemID} [delete]
func (c *EventController) RemoveAgendaItem(w http.ResponseWriter, r *http.Request) {
	eventID, ok := h.PathUUID(w, r, "eventID")
	if !ok {
		return
	}
	itemID, ok := h.PathUUID(w, r, "itemID")
	if !ok {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeUnauthorized(w)
		return
	}
	if err := c.Service.RemoveAgendaItem(r.Context(), eventID, itemID, userID); err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
