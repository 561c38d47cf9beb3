package controllers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	h "eventconnect/internal/delivery/http/helpers"
	"eventconnect/internal/delivery/http/middleware"
	"eventconnect/internal/domain"
)

// ScanRequest is the request body for POST /contacts/scan. Payload is the raw text decoded from a QR code.
type ScanRequest struct {
	Payload string `json:"payload"`
}

// Validate implements Validator.
func (s ScanRequest) Validate() []string {
	if strings.TrimSpace(s.Payload) == "" {
		return []string{"payload is required"}
	}
	return nil
}

// AddContactRequest is the request body for POST /contacts.
type AddContactRequest struct {
	ContactID string `json:"contact_id"`
}

// Validate implements Validator.
func (a AddContactRequest) Validate() []string {
	if a.ContactID == "" {
		return []string{"contact_id is required"}
	}
	if _, err := uuid.Parse(a.ContactID); err != nil {
		return []string{"contact_id must be a UUID"}
	}
	return nil
}

// MutualResponse is the data payload for GET /contacts/{userID}/mutual.
type MutualResponse struct {
	UserID string `json:"user_id"`
	Mutual bool   `json:"mutual"`
}

type ContactController struct {
	Logger  *slog.Logger
	Service domain.ContactService
}

func NewContactController(logger *slog.Logger, svc domain.ContactService) *ContactController {
	return &ContactController{
		Logger:  logger,
		Service: svc,
	}
}

// ListContacts godoc
// @Summary List the current user's contacts
// @Description Newest first, each flagged mutual when the contact also has the caller in their list.
// @Tags contacts
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data contains the contacts"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /contacts [get]
func (c *ContactController) ListContacts(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeUnauthorized(w)
		return
	}
	contacts, err := c.Service.ListContacts(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, contacts)
}

// Scan godoc
// @Summary Add a contact from a scanned QR payload
// @Description The payload must be the identity JSON {id, name, email, role} of another user.
// @Tags contacts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body ScanRequest true "Scanned payload"
// @Success 201 {object} helpers.APIResponse "data contains the new contact"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request or invalid_qr_code"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 409 {object} helpers.APIResponse "error.code: contact_exists"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /contacts/scan [post]
func (c *ContactController) Scan(w http.ResponseWriter, r *http.Request) {
	var req ScanRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeUnauthorized(w)
		return
	}
	contact, err := c.Service.ScanPayload(r.Context(), userID, []byte(req.Payload))
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusCreated, contact)
}

// AddContact godoc
// @Summary Add a contact by user id
// @Description Idempotent: adding an existing contact succeeds.
// @Tags contacts
// @Accept json
// @Security BearerAuth
// @Param body body AddContactRequest true "Contact"
// @Success 204 "added"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /contacts [post]
func (c *ContactController) AddContact(w http.ResponseWriter, r *http.Request) {
	var req AddContactRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeUnauthorized(w)
		return
	}
	if err := c.Service.AddContact(r.Context(), userID, req.ContactID); err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Mutual godoc
// @Summary Check whether the current user and another user are mutual contacts
// @Tags contacts
// @Produce json
// @Security BearerAuth
// @Param userID path string true "Other user ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data contains user_id and mutual"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /contacts/{userID}/mutual [get]
func (c *ContactController) Mutual(w http.ResponseWriter, r *http.Request) {
	otherID, ok := h.PathUUID(w, r, "userID")
	if !ok {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeUnauthorized(w)
		return
	}
	mutual, err := c.Service.IsMutualConnection(r.Context(), userID, otherID)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, MutualResponse{UserID: otherID, Mutual: mutual})
}
