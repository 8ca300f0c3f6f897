package controllers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"artistevents/internal/delivery/http/helpers"
	"artistevents/internal/delivery/http/middleware"
	"artistevents/internal/domain"
)

// CreateEventRequest is the request body for POST /events. The caller becomes the event's artist.
type CreateEventRequest struct {
	Title       string     `json:"title" validate:"required,max=200"`
	Description string     `json:"description" validate:"max=5000"`
	Category    string     `json:"category" validate:"required,oneof=live_stream concert meet_and_greet album_release"`
	StartTime   time.Time  `json:"start_time" validate:"required"`
	EndTime     *time.Time `json:"end_time"`
	Venue       *string    `json:"venue" validate:"omitempty,max=300"`
	StreamURL   *string    `json:"stream_url" validate:"omitempty,http_url"`
	TicketURL   *string    `json:"ticket_url" validate:"omitempty,http_url"`
	IsVirtual   bool       `json:"is_virtual"`
}

// UpdateEventRequest is the request body for PATCH /events/{eventID}. All fields optional; omitted fields are unchanged.
type UpdateEventRequest struct {
	Title       *string    `json:"title" validate:"omitempty,max=200"`
	Description *string    `json:"description" validate:"omitempty,max=5000"`
	Category    *string    `json:"category" validate:"omitempty,oneof=live_stream concert meet_and_greet album_release"`
	StartTime   *time.Time `json:"start_time"`
	EndTime     *time.Time `json:"end_time"`
	Venue       *string    `json:"venue" validate:"omitempty,max=300"`
	StreamURL   *string    `json:"stream_url" validate:"omitempty,http_url"`
	TicketURL   *string    `json:"ticket_url" validate:"omitempty,http_url"`
	IsVirtual   *bool      `json:"is_virtual"`
}

// Validate implements helpers.Validator.
func (u UpdateEventRequest) Validate() []string {
	if u.Title == nil && u.Description == nil && u.Category == nil && u.StartTime == nil &&
		u.EndTime == nil && u.Venue == nil && u.StreamURL == nil && u.TicketURL == nil && u.IsVirtual == nil {
		return []string{"at least one field must be provided"}
	}
	return nil
}

func (u UpdateEventRequest) patch() domain.EventPatch {
	p := domain.EventPatch{
		Title:       u.Title,
		Description: u.Description,
		StartTime:   u.StartTime,
		EndTime:     u.EndTime,
		Venue:       u.Venue,
		StreamURL:   u.StreamURL,
		TicketURL:   u.TicketURL,
		IsVirtual:   u.IsVirtual,
	}
	if u.Category != nil {
		c := domain.EventCategory(*u.Category)
		p.Category = &c
	}
	return p
}

// EventSuccessResponse is the success envelope for endpoints returning one event.
type EventSuccessResponse struct {
	Data  *domain.Event     `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// EventPageSuccessResponse is the success envelope for paginated event listings.
type EventPageSuccessResponse struct {
	Data  domain.Page[*domain.Event] `json:"data"`
	Error *helpers.APIError          `json:"error"`
}

// AttendeePageSuccessResponse is the success envelope for GET /events/{eventID}/attendees.
type AttendeePageSuccessResponse struct {
	Data  domain.Page[*domain.RSVP] `json:"data"`
	Error *helpers.APIError         `json:"error"`
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

// CreateEvent godoc
// @Summary Create an event
// @Description Creates an event owned by the authenticated artist. start_time must be in the future and end_time, when given, after start_time.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param event body CreateEventRequest true "Event data"
// @Success 201 {object} controllers.EventSuccessResponse "data contains the created event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 422 {object} helpers.APIResponse "error.code: invalid_state"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [post]
func (c *EventController) CreateEvent(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	var req CreateEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	event := domain.NewEvent(userID, req.Title, req.Description, domain.EventCategory(req.Category), req.StartTime, time.Time{}, time.Time{})
	event.EndTime = req.EndTime
	event.Venue = req.Venue
	event.StreamURL = req.StreamURL
	event.TicketURL = req.TicketURL
	event.IsVirtual = req.IsVirtual

	if err := c.Service.CreateEvent(r.Context(), event); err != nil {
		helpers.WriteDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, event)
}

// GetEvent godoc
// @Summary Get an event by ID
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} controllers.EventSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID} [get]
func (c *EventController) GetEvent(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathUUID(w, r, "eventID")
	if !ok {
		return
	}
	event, err := c.Service.GetEvent(r.Context(), eventID)
	if err != nil {
		helpers.WriteDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

// UpdateEvent godoc
// @Summary Update an event
// @Description Owner-only partial update. The merged start/end are re-validated; a moved start must be in the future. attendee_count cannot be changed.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param event body UpdateEventRequest true "Fields to change"
// @Success 200 {object} controllers.EventSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 422 {object} helpers.APIResponse "error.code: invalid_state"
// @Router /events/{eventID} [patch]
func (c *EventController) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	eventID, ok := pathUUID(w, r, "eventID")
	if !ok {
		return
	}
	var req UpdateEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	event, err := c.Service.UpdateEvent(r.Context(), eventID, userID, req.patch())
	if err != nil {
		helpers.WriteDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

// DeleteEvent godoc
// @Summary Delete an event
// @Description Owner-only. Removes the event and all its RSVPs.
// @Tags events
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 204
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID} [delete]
func (c *EventController) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	eventID, ok := pathUUID(w, r, "eventID")
	if !ok {
		return
	}
	if err := c.Service.DeleteEvent(r.Context(), eventID, userID); err != nil {
		helpers.WriteDomainError(w, r, c.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListArtistEvents godoc
// @Summary List an artist's events
// @Description Ordered by start_time ascending.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param artistID path string true "Artist ID (UUID)"
// @Param page query int false "Page (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} controllers.EventPageSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Router /artists/{artistID}/events [get]
func (c *EventController) ListArtistEvents(w http.ResponseWriter, r *http.Request) {
	artistID, ok := pathUUID(w, r, "artistID")
	if !ok {
		return
	}
	params, ok := pagination(w, r)
	if !ok {
		return
	}
	page, err := c.Service.ListArtistEvents(r.Context(), artistID, params)
	if err != nil {
		helpers.WriteDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, page)
}

// ListAttendees godoc
// @Summary List an event's attendees
// @Description RSVPs ordered by creation time ascending.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param page query int false "Page (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} controllers.AttendeePageSuccessResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID}/attendees [get]
func (c *EventController) ListAttendees(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathUUID(w, r, "eventID")
	if !ok {
		return
	}
	params, ok := pagination(w, r)
	if !ok {
		return
	}
	page, err := c.Service.ListAttendees(r.Context(), eventID, params)
	if err != nil {
		helpers.WriteDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, page)
}

// pathUUID reads a UUID path parameter, writing a 400 when it is malformed.
func pathUUID(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	raw := r.PathValue(name)
	id, err := uuid.Parse(raw)
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid "+name)
		return "", false
	}
	return id.String(), true
}

func pagination(w http.ResponseWriter, r *http.Request) (domain.PaginationParams, bool) {
	params, err := helpers.ParsePagination(r)
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
		return domain.PaginationParams{}, false
	}
	return params, true
}
