package controllers

import (
	"log/slog"
	"net/http"
	"strings"

	h "eventconnect/internal/delivery/http/helpers"
	"eventconnect/internal/delivery/http/middleware"
	"eventconnect/internal/domain"
)

// AddSocialAccountRequest is the request body for POST /users/me/social-accounts.
// URL is optional; a profile URL is derived for known platforms.
type AddSocialAccountRequest struct {
	Platform string `json:"platform"`
	Username string `json:"username"`
	URL      string `json:"url"`
}

// Validate implements Validator.
func (a AddSocialAccountRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(a.Platform) == "" {
		errs = append(errs, "platform is required")
	}
	if strings.TrimSpace(a.Username) == "" {
		errs = append(errs, "username is required")
	}
	return errs
}

type SocialController struct {
	Logger  *slog.Logger
	Service domain.SocialAccountService
}

func NewSocialController(logger *slog.Logger, svc domain.SocialAccountService) *SocialController {
	return &SocialController{
		Logger:  logger,
		Service: svc,
	}
}

// ListMine godoc
// @Summary List the current user's social accounts
// @Tags social
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data contains the accounts"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /users/me/social-accounts [get]
func (c *SocialController) ListMine(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeUnauthorized(w)
		return
	}
	c.list(w, r, userID)
}

// ListForUser godoc
// @Summary List a user's social accounts
// @Tags social
// @Produce json
// @Security BearerAuth
// @Param userID path string true "User ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data contains the accounts"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /users/{userID}/social-accounts [get]
func (c *SocialController) ListForUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.PathUUID(w, r, "userID")
	if !ok {
		return
	}
	c.list(w, r, userID)
}

func (c *SocialController) list(w http.ResponseWriter, r *http.Request, userID string) {
	accounts, err := c.Service.List(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, accounts)
}

// Add godoc
// @Summary Link a social account to the current user
// @Tags social
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body AddSocialAccountRequest true "Account"
// @Success 201 {object} helpers.APIResponse "data contains the account"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /users/me/social-accounts [post]
func (c *SocialController) Add(w http.ResponseWriter, r *http.Request) {
	var req AddSocialAccountRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeUnauthorized(w)
		return
	}
	account, err := c.Service.Add(r.Context(), userID, req.Platform, req.Username, req.URL)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusCreated, account)
}

// Remove godoc
// @Summary Unlink one of the current user's social accounts
// @Tags social
// @Security BearerAuth
// @Param accountID path string true "Account ID (UUID)"
// @Success 204 "removed"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /users/me/social-accounts/{accountID} [delete]
func (c *SocialController) Remove(w http.ResponseWriter, r *http.Request) {
	accountID, ok := h.PathUUID(w, r, "accountID")
	if !ok {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeUnauthorized(w)
		return
	}
	if err := c.Service.Remove(r.Context(), userID, accountID); err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
