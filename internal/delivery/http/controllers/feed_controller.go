package controllers

import (
	"log/slog"
	"net/http"

	"artistevents/internal/delivery/http/helpers"
	"artistevents/internal/delivery/http/middleware"
	"artistevents/internal/domain"
)

type FeedController struct {
	Logger  *slog.Logger
	Service domain.EventService
}

func NewFeedController(logger *slog.Logger, svc domain.EventService) *FeedController {
	return &FeedController{
		Logger:  logger,
		Service: svc,
	}
}

// Feed godoc
// @Summary Upcoming events from followed artists
// @Description Future events of every artist the caller follows, ordered by start_time ascending.
// @Tags feed
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} controllers.EventPageSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /feed [get]
func (c *FeedController) Feed(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	params, ok := pagination(w, r)
	if !ok {
		return
	}
	page, err := c.Service.Feed(r.Context(), userID, params)
	if err != nil {
		helpers.WriteDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, page)
}
