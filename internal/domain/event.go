package domain

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// EventCategory is the kind of artist event.
type EventCategory string

const (
	CategoryLiveStream   EventCategory = "live_stream"
	CategoryConcert      EventCategory = "concert"
	CategoryMeetAndGreet EventCategory = "meet_and_greet"
	CategoryAlbumRelease EventCategory = "album_release"
)

// Valid reports whether c is one of the known categories.
func (c EventCategory) Valid() bool {
	switch c {
	case CategoryLiveStream, CategoryConcert, CategoryMeetAndGreet, CategoryAlbumRelease:
		return true
	}
	return false
}

// Event represents a scheduled artist event.
// AttendeeCount is denormalized: it always equals the number of RSVP rows for the event
// and is only adjusted by the attendance ledger.
// swagger:model Event
type Event struct {
	ID            string        `json:"id"`
	ArtistID      string        `json:"artist_id"`
	Title         string        `json:"title"`
	Description   string        `json:"description"`
	Category      EventCategory `json:"category"`
	StartTime     time.Time     `json:"start_time"`
	EndTime       *time.Time    `json:"end_time,omitempty"`
	Venue         *string       `json:"venue,omitempty"`
	StreamURL     *string       `json:"stream_url,omitempty"`
	TicketURL     *string       `json:"ticket_url,omitempty"`
	IsVirtual     bool          `json:"is_virtual"`
	AttendeeCount int           `json:"attendee_count"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// NewEvent returns a new Event owned by artistID. ID is set by the repository on create.
func NewEvent(artistID, title, description string, category EventCategory, start time.Time, createdAt, updatedAt time.Time) *Event {
	return &Event{
		ArtistID:    artistID,
		Title:       title,
		Description: description,
		Category:    category,
		StartTime:   start,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}
}

// HasStarted reports whether the event start is at or before now.
func (e *Event) HasStarted(now time.Time) bool {
	return !e.StartTime.After(now)
}

// Validate checks the field-level rules: non-empty title, known category and
// an end strictly after the start when present.
func (e *Event) Validate() error {
	if strings.TrimSpace(e.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if !e.Category.Valid() {
		return fmt.Errorf("%w: unknown category %q", ErrInvalidInput, e.Category)
	}
	if e.EndTime != nil && !e.EndTime.After(e.StartTime) {
		return fmt.Errorf("%w: end_time must be after start_time", ErrInvalidState)
	}
	return nil
}

// EventPatch holds the optional field edits an artist can apply to an event.
// Nil fields are left untouched.
type EventPatch struct {
	Title       *string
	Description *string
	Category    *EventCategory
	StartTime   *time.Time
	EndTime     *time.Time
	Venue       *string
	StreamURL   *string
	TicketURL   *string
	IsVirtual   *bool
}

// Apply copies the non-nil patch fields onto e.
func (p EventPatch) Apply(e *Event) {
	if p.Title != nil {
		e.Title = *p.Title
	}
	if p.Description != nil {
		e.Description = *p.Description
	}
	if p.Category != nil {
		e.Category = *p.Category
	}
	if p.StartTime != nil {
		e.StartTime = *p.StartTime
	}
	if p.EndTime != nil {
		end := *p.EndTime
		e.EndTime = &end
	}
	if p.Venue != nil {
		e.Venue = p.Venue
	}
	if p.StreamURL != nil {
		e.StreamURL = p.StreamURL
	}
	if p.TicketURL != nil {
		e.TicketURL = p.TicketURL
	}
	if p.IsVirtual != nil {
		e.IsVirtual = *p.IsVirtual
	}
}

// EventRepository defines the interface for event storage.
// All listings order by start_time then id.
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	ListByArtist(ctx context.Context, artistID string, p PaginationParams) ([]*Event, int, error)
	// ListUpcomingByArtists returns events of the given artists starting strictly after the given instant.
	ListUpcomingByArtists(ctx context.Context, artistIDs []string, after time.Time, p PaginationParams) ([]*Event, int, error)
	// ListStartingBetween returns events with from < start_time <= to.
	ListStartingBetween(ctx context.Context, from, to time.Time) ([]*Event, error)
	// Update writes the editable fields; attendee_count is never written here.
	Update(ctx context.Context, event *Event) (*Event, error)
	Delete(ctx context.Context, id string) error
	// AdjustAttendeeCount applies a relative change to attendee_count, clamped at zero.
	AdjustAttendeeCount(ctx context.Context, id string, delta int) error
}

// FollowRepository resolves the artists a user follows.
type FollowRepository interface {
	ListFollowedArtistIDs(ctx context.Context, userID string) ([]string, error)
}

// EventService defines the event operations exposed to callers.
type EventService interface {
	CreateEvent(ctx context.Context, event *Event) error
	GetEvent(ctx context.Context, eventID string) (*Event, error)
	ListArtistEvents(ctx context.Context, artistID string, p PaginationParams) (*Page[*Event], error)
	UpdateEvent(ctx context.Context, eventID, actorID string, patch EventPatch) (*Event, error)
	DeleteEvent(ctx context.Context, eventID, actorID string) error
	ListAttendees(ctx context.Context, eventID string, p PaginationParams) (*Page[*RSVP], error)
	// Feed returns upcoming events from the artists userID follows.
	Feed(ctx context.Context, userID string, p PaginationParams) (*Page[*Event], error)
	// FeedForArtists returns upcoming events of the given artists; an empty set yields an empty page.
	FeedForArtists(ctx context.Context, artistIDs []string, p PaginationParams) (*Page[*Event], error)
}
