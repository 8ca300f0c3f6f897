package controllers

import (
	"log/slog"
	"net/http"

	"artistevents/internal/delivery/http/helpers"
	"artistevents/internal/delivery/http/middleware"
	"artistevents/internal/domain"
)

// CreateRSVPRequest is the optional body for POST /events/{eventID}/rsvp.
// reminder_enabled defaults to true when omitted.
type CreateRSVPRequest struct {
	ReminderEnabled *bool `json:"reminder_enabled"`
}

// ReminderPreferenceRequest is the body for PATCH /events/{eventID}/rsvp.
type ReminderPreferenceRequest struct {
	ReminderEnabled *bool `json:"reminder_enabled" validate:"required"`
}

// RSVPSuccessResponse is the success envelope for endpoints returning one RSVP.
type RSVPSuccessResponse struct {
	Data  *domain.RSVP      `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// MyRSVPPageSuccessResponse is the success envelope for GET /me/rsvps.
type MyRSVPPageSuccessResponse struct {
	Data  domain.Page[*domain.RSVPWithEvent] `json:"data"`
	Error *helpers.APIError                  `json:"error"`
}

type RSVPController struct {
	Logger  *slog.Logger
	Service domain.AttendanceService
}

func NewRSVPController(logger *slog.Logger, svc domain.AttendanceService) *RSVPController {
	return &RSVPController{
		Logger:  logger,
		Service: svc,
	}
}

// CreateRSVP godoc
// @Summary RSVP to an event
// @Description Declares the caller's attendance. Fails with 409 when the caller already has an RSVP and 422 when the event has started.
// @Tags rsvps
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param rsvp body CreateRSVPRequest false "Reminder preference"
// @Success 201 {object} controllers.RSVPSuccessResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Failure 422 {object} helpers.APIResponse "error.code: invalid_state"
// @Failure 503 {object} helpers.APIResponse "error.code: unavailable"
// @Router /events/{eventID}/rsvp [post]
func (c *RSVPController) CreateRSVP(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	eventID, ok := pathUUID(w, r, "eventID")
	if !ok {
		return
	}
	var req CreateRSVPRequest
	if !helpers.DecodeOptionalAndValidate(w, r, &req) {
		return
	}
	rsvp, err := c.Service.CreateRSVP(r.Context(), domain.CreateRSVPInput{
		EventID:         eventID,
		UserID:          userID,
		ReminderEnabled: req.ReminderEnabled,
	})
	if err != nil {
		helpers.WriteDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, rsvp)
}

// RemoveRSVP godoc
// @Summary Withdraw an RSVP
// @Tags rsvps
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 204
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 503 {object} helpers.APIResponse "error.code: unavailable"
// @Router /events/{eventID}/rsvp [delete]
func (c *RSVPController) RemoveRSVP(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	eventID, ok := pathUUID(w, r, "eventID")
	if !ok {
		return
	}
	if err := c.Service.RemoveRSVP(r.Context(), eventID, userID); err != nil {
		helpers.WriteDomainError(w, r, c.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetReminderPreference godoc
// @Summary Turn the reminder for an RSVP on or off
// @Tags rsvps
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param preference body ReminderPreferenceRequest true "Reminder preference"
// @Success 200 {object} controllers.RSVPSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID}/rsvp [patch]
func (c *RSVPController) SetReminderPreference(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	eventID, ok := pathUUID(w, r, "eventID")
	if !ok {
		return
	}
	var req ReminderPreferenceRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	rsvp, err := c.Service.SetReminderPreference(r.Context(), eventID, userID, *req.ReminderEnabled)
	if err != nil {
		helpers.WriteDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, rsvp)
}

// ListMyRSVPs godoc
// @Summary List the caller's RSVPs
// @Description Each item carries the RSVP and its event, ordered by event start ascending.
// @Tags rsvps
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} controllers.MyRSVPPageSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Router /me/rsvps [get]
func (c *RSVPController) ListMyRSVPs(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	params, ok := pagination(w, r)
	if !ok {
		return
	}
	page, err := c.Service.ListMyRSVPs(r.Context(), userID, params)
	if err != nil {
		helpers.WriteDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, page)
}
