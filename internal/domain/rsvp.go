package domain

import (
	"context"
	"time"
)

// RSVP is a user's attendance declaration for an event. At most one row exists per (event, user).
// swagger:model RSVP
type RSVP struct {
	ID              string    `json:"id"`
	EventID         string    `json:"event_id"`
	UserID          string    `json:"user_id"`
	ReminderEnabled bool      `json:"reminder_enabled"`
	ReminderSent    bool      `json:"reminder_sent"`
	CreatedAt       time.Time `json:"created_at"`
}

// NewRSVP creates an RSVP with reminderSent false. ID is set by the repository on create.
func NewRSVP(eventID, userID string, reminderEnabled bool, createdAt time.Time) *RSVP {
	return &RSVP{
		EventID:         eventID,
		UserID:          userID,
		ReminderEnabled: reminderEnabled,
		CreatedAt:       createdAt,
	}
}

// RSVPWithEvent bundles an RSVP with its event.
type RSVPWithEvent struct {
	RSVP  *RSVP  `json:"rsvp"`
	Event *Event `json:"event"`
}

// RSVPRepository defines storage operations for RSVP rows.
type RSVPRepository interface {
	// Create inserts the row; a duplicate (event, user) returns ErrAlreadyExists.
	Create(ctx context.Context, rsvp *RSVP) error
	// Delete removes the row for (event, user); ErrNotFound when absent.
	Delete(ctx context.Context, eventID, userID string) error
	GetByEventAndUser(ctx context.Context, eventID, userID string) (*RSVP, error)
	ListByEvent(ctx context.Context, eventID string, p PaginationParams) ([]*RSVP, int, error)
	ListByUser(ctx context.Context, userID string, p PaginationParams) ([]*RSVPWithEvent, int, error)
	SetReminderEnabled(ctx context.Context, eventID, userID string, enabled bool) (*RSVP, error)
	// ListPendingReminders returns rows with reminder_enabled and not reminder_sent.
	ListPendingReminders(ctx context.Context, eventID string) ([]*RSVP, error)
	// MarkRemindersSent flips reminder_sent on the given rows in one statement and
	// returns the number of rows changed.
	MarkRemindersSent(ctx context.Context, rsvpIDs []string) (int, error)
}

// Transactor runs fn inside a single store transaction. Repository calls made
// with the context passed to fn join that transaction.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// CreateRSVPInput is the input for AttendanceService.CreateRSVP.
// A nil ReminderEnabled defaults to true.
type CreateRSVPInput struct {
	EventID         string
	UserID          string
	ReminderEnabled *bool
}

// AttendanceService creates and removes RSVPs while keeping Event.AttendeeCount exact.
type AttendanceService interface {
	CreateRSVP(ctx context.Context, in CreateRSVPInput) (*RSVP, error)
	RemoveRSVP(ctx context.Context, eventID, userID string) error
	SetReminderPreference(ctx context.Context, eventID, userID string, enabled bool) (*RSVP, error)
	ListMyRSVPs(ctx context.Context, userID string, p PaginationParams) (*Page[*RSVPWithEvent], error)
}
