package domain

import (
	"context"
	"fmt"
	"time"
)

// Default lookahead window bounds and the sweep period they are designed for.
const (
	DefaultReminderLowerBound    = 55 * time.Minute
	DefaultReminderUpperBound    = 60 * time.Minute
	DefaultReminderSweepInterval = 5 * time.Minute
)

// ReminderWindow selects events with now+Lower < start_time <= now+Upper.
type ReminderWindow struct {
	Lower time.Duration
	Upper time.Duration
}

// DefaultReminderWindow returns the (55m, 60m] window.
func DefaultReminderWindow() ReminderWindow {
	return ReminderWindow{Lower: DefaultReminderLowerBound, Upper: DefaultReminderUpperBound}
}

// Bounds returns the absolute (from, to] range for the given instant.
func (w ReminderWindow) Bounds(now time.Time) (from, to time.Time) {
	return now.Add(w.Lower), now.Add(w.Upper)
}

// Contains reports whether start falls in the window relative to now.
func (w ReminderWindow) Contains(now, start time.Time) bool {
	from, to := w.Bounds(now)
	return start.After(from) && !start.After(to)
}

// ValidateFor checks the window against the sweep period: the window width must
// be at least the interval so no event falls between two consecutive sweeps.
func (w ReminderWindow) ValidateFor(interval time.Duration) error {
	if w.Lower < 0 || w.Upper <= w.Lower {
		return fmt.Errorf("%w: reminder window lower bound %s must be below upper bound %s", ErrInvalidInput, w.Lower, w.Upper)
	}
	if interval <= 0 {
		return fmt.Errorf("%w: sweep interval must be positive", ErrInvalidInput)
	}
	if w.Upper-w.Lower < interval {
		return fmt.Errorf("%w: reminder window width %s is shorter than sweep interval %s", ErrInvalidInput, w.Upper-w.Lower, interval)
	}
	return nil
}

// ReminderDispatcher delivers a reminder for event to every user in userIDs.
// A nil error means the whole batch was accepted by the channel.
type ReminderDispatcher interface {
	Dispatch(ctx context.Context, userIDs []string, event *Event) error
}

// SweepReport summarizes one sweep invocation.
type SweepReport struct {
	StartedAt     time.Time `json:"started_at"`
	Candidates    int       `json:"candidates"`
	Dispatched    int       `json:"dispatched"`
	NotifiedUsers int       `json:"notified_users"`
	Skipped       int       `json:"skipped"`
	Failed        int       `json:"failed"`
	FailedEvents  []string  `json:"failed_events,omitempty"`
}

// ReminderSweeper runs one reminder sweep. Per-event failures are recorded in the
// report; an error is returned only when the candidate selection itself fails.
type ReminderSweeper interface {
	Sweep(ctx context.Context) (*SweepReport, error)
}
