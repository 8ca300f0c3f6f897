package controllers

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"

	"artistevents/internal/delivery/http/middleware"
	"artistevents/internal/domain"
)

// testLogger is a no-op logger for controller tests so we don't assert on log output.
var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

const (
	testUserID  = "0b9f4c9e-7a4f-4f38-9d0f-0d8a4a3c2b11"
	testEventID = "6a1c8f2e-3b4d-4e5f-8a9b-0c1d2e3f4a5b"
)

// fakeEventService implements domain.EventService for handler tests.
type fakeEventService struct {
	err error

	event      *domain.Event
	eventPage  *domain.Page[*domain.Event]
	rsvpPage   *domain.Page[*domain.RSVP]
	lastEvent  *domain.Event
	lastID     string
	lastActor  string
	lastPatch  domain.EventPatch
	lastParams domain.PaginationParams
}

func (f *fakeEventService) CreateEvent(_ context.Context, e *domain.Event) error {
	f.lastEvent = e
	if f.err != nil {
		return f.err
	}
	e.ID = testEventID
	return nil
}

func (f *fakeEventService) GetEvent(_ context.Context, id string) (*domain.Event, error) {
	f.lastID = id
	return f.event, f.err
}

func (f *fakeEventService) ListArtistEvents(_ context.Context, artistID string, p domain.PaginationParams) (*domain.Page[*domain.Event], error) {
	f.lastID, f.lastParams = artistID, p
	return f.eventPage, f.err
}

func (f *fakeEventService) UpdateEvent(_ context.Context, id, actor string, patch domain.EventPatch) (*domain.Event, error) {
	f.lastID, f.lastActor, f.lastPatch = id, actor, patch
	return f.event, f.err
}

func (f *fakeEventService) DeleteEvent(_ context.Context, id, actor string) error {
	f.lastID, f.lastActor = id, actor
	return f.err
}

func (f *fakeEventService) ListAttendees(_ context.Context, id string, p domain.PaginationParams) (*domain.Page[*domain.RSVP], error) {
	f.lastID, f.lastParams = id, p
	return f.rsvpPage, f.err
}

func (f *fakeEventService) Feed(_ context.Context, userID string, p domain.PaginationParams) (*domain.Page[*domain.Event], error) {
	f.lastActor, f.lastParams = userID, p
	return f.eventPage, f.err
}

func (f *fakeEventService) FeedForArtists(_ context.Context, _ []string, p domain.PaginationParams) (*domain.Page[*domain.Event], error) {
	return f.eventPage, f.err
}

// fakeAttendanceService implements domain.AttendanceService for handler tests.
type fakeAttendanceService struct {
	err error

	rsvp       *domain.RSVP
	page       *domain.Page[*domain.RSVPWithEvent]
	lastInput  domain.CreateRSVPInput
	lastEvent  string
	lastUser   string
	lastToggle *bool
	lastParams domain.PaginationParams
}

func (f *fakeAttendanceService) CreateRSVP(_ context.Context, in domain.CreateRSVPInput) (*domain.RSVP, error) {
	f.lastInput = in
	return f.rsvp, f.err
}

func (f *fakeAttendanceService) RemoveRSVP(_ context.Context, eventID, userID string) error {
	f.lastEvent, f.lastUser = eventID, userID
	return f.err
}

func (f *fakeAttendanceService) SetReminderPreference(_ context.Context, eventID, userID string, enabled bool) (*domain.RSVP, error) {
	f.lastEvent, f.lastUser, f.lastToggle = eventID, userID, &enabled
	return f.rsvp, f.err
}

func (f *fakeAttendanceService) ListMyRSVPs(_ context.Context, userID string, p domain.PaginationParams) (*domain.Page[*domain.RSVPWithEvent], error) {
	f.lastUser, f.lastParams = userID, p
	return f.page, f.err
}

// serve routes req through a mux with the given pattern so PathValue works,
// authenticating as userID when it is non-empty.
func serve(pattern string, h http.HandlerFunc, req *http.Request, userID string) *httptest.ResponseRecorder {
	if userID != "" {
		req = req.WithContext(middleware.SetUserID(req.Context(), userID))
	}
	mux := http.NewServeMux()
	mux.HandleFunc(pattern, h)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	return rr
}
