package http

import (
	"log/slog"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"artistevents/internal/delivery/http/controllers"
	"artistevents/internal/delivery/http/middleware"
	"artistevents/internal/domain"
)

// RouterDeps holds everything NewRouter wires into the mux.
type RouterDeps struct {
	Events      *controllers.EventController
	RSVPs       *controllers.RSVPController
	Feed        *controllers.FeedController
	Verifier    domain.TokenVerifier
	Logger      *slog.Logger
	CORSOrigins []string
}

// NewRouter initializes the HTTP router with all application routes
func NewRouter(d RouterDeps) http.Handler {
	mux := http.NewServeMux()
	auth := middleware.RequireAuth(d.Verifier, d.Logger)

	// Events
	mux.HandleFunc("POST /events", auth(d.Events.CreateEvent))
	mux.HandleFunc("GET /events/{eventID}", auth(d.Events.GetEvent))
	mux.HandleFunc("PATCH /events/{eventID}", auth(d.Events.UpdateEvent))
	mux.HandleFunc("DELETE /events/{eventID}", auth(d.Events.DeleteEvent))
	mux.HandleFunc("GET /artists/{artistID}/events", auth(d.Events.ListArtistEvents))
	mux.HandleFunc("GET /events/{eventID}/attendees", auth(d.Events.ListAttendees))

	// RSVPs
	mux.HandleFunc("POST /events/{eventID}/rsvp", auth(d.RSVPs.CreateRSVP))
	mux.HandleFunc("DELETE /events/{eventID}/rsvp", auth(d.RSVPs.RemoveRSVP))
	mux.HandleFunc("PATCH /events/{eventID}/rsvp", auth(d.RSVPs.SetReminderPreference))
	mux.HandleFunc("GET /me/rsvps", auth(d.RSVPs.ListMyRSVPs))

	// Feed
	mux.HandleFunc("GET /feed", auth(d.Feed.Feed))

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	var h http.Handler = mux
	h = middleware.CORS(d.CORSOrigins, h)
	h = middleware.LoggingMiddleware(d.Logger, h)
	h = middleware.RequestID(h)
	return h
}
