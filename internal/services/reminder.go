package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"artistevents/internal/clock"
	"artistevents/internal/domain"
)

const defaultDispatchTimeout = 30 * time.Second

type reminderSweeper struct {
	eventRepo       domain.EventRepository
	rsvpRepo        domain.RSVPRepository
	dispatcher      domain.ReminderDispatcher
	clock           clock.Clock
	logger          *slog.Logger
	window          domain.ReminderWindow
	dispatchTimeout time.Duration

	mu           sync.Mutex
	// coveredUntil is the upper bound of the last successful selection.
	coveredUntil time.Time
}

// SweeperOption configures a reminder sweeper.
type SweeperOption func(*reminderSweeper)

// WithReminderWindow overrides the default (55m, 60m] lookahead window.
func WithReminderWindow(w domain.ReminderWindow) SweeperOption {
	return func(s *reminderSweeper) { s.window = w }
}

// WithDispatchTimeout bounds each Dispatch call.
func WithDispatchTimeout(d time.Duration) SweeperOption {
	return func(s *reminderSweeper) {
		if d > 0 {
			s.dispatchTimeout = d
		}
	}
}

// NewReminderSweeper returns a ReminderSweeper that hands due reminders to dispatcher.
func NewReminderSweeper(eventRepo domain.EventRepository,
	rsvpRepo domain.RSVPRepository,
	dispatcher domain.ReminderDispatcher,
	clk clock.Clock,
	logger *slog.Logger,
	opts ...SweeperOption,
) domain.ReminderSweeper {
	s := &reminderSweeper{
		eventRepo:       eventRepo,
		rsvpRepo:        rsvpRepo,
		dispatcher:      dispatcher,
		clock:           clk,
		logger:          logger,
		window:          domain.DefaultReminderWindow(),
		dispatchTimeout: defaultDispatchTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Sweep selects the events starting inside the window and notifies each one's
// pending attendees. Events are handled independently: a failure on one is
// logged and recorded in the report, and the loop moves on. Rows are marked
// sent only after the dispatcher accepted the batch; a failed dispatch is not
// retried.
func (s *reminderSweeper) Sweep(ctx context.Context) (*domain.SweepReport, error) {
	now := s.clock.Now()
	from, to := s.window.Bounds(now)
	from = s.resumeFrom(now, from)

	events, err := s.eventRepo.ListStartingBetween(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("select reminder candidates: %w", err)
	}
	s.markCovered(to)

	report := &domain.SweepReport{StartedAt: now, Candidates: len(events)}
	for _, event := range events {
		s.sweepEvent(ctx, event, report)
	}

	s.logger.Info("reminder sweep finished",
		"window_from", from,
		"window_to", to,
		"candidates", report.Candidates,
		"dispatched", report.Dispatched,
		"notified_users", report.NotifiedUsers,
		"skipped", report.Skipped,
		"failed", report.Failed,
		"duration", s.clock.Now().Sub(now),
	)
	return report, nil
}

// resumeFrom pulls the lower bound back to where the previous selection
// stopped, so a late tick or a failed selection leaves no unswept gap. Events
// that already started are never reached because the bound must be after now.
func (s *reminderSweeper) resumeFrom(now, from time.Time) time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.coveredUntil.After(now) && s.coveredUntil.Before(from) {
		s.logger.Debug("reminder window extended over missed range", "from", s.coveredUntil, "nominal_from", from)
		return s.coveredUntil
	}
	return from
}

func (s *reminderSweeper) markCovered(to time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if to.After(s.coveredUntil) {
		s.coveredUntil = to
	}
}

func (s *reminderSweeper) sweepEvent(ctx context.Context, event *domain.Event, report *domain.SweepReport) {
	log := s.logger.With("event_id", event.ID)
	fail := func(stage string, err error) {
		log.Error("reminder sweep failed for event", "stage", stage, "error", err)
		report.Failed++
		report.FailedEvents = append(report.FailedEvents, event.ID)
	}

	pending, err := s.rsvpRepo.ListPendingReminders(ctx, event.ID)
	if err != nil {
		fail("fetch", err)
		return
	}
	if len(pending) == 0 {
		report.Skipped++
		return
	}

	userIDs := make([]string, len(pending))
	rsvpIDs := make([]string, len(pending))
	for i, r := range pending {
		userIDs[i] = r.UserID
		rsvpIDs[i] = r.ID
	}

	dctx, cancel := context.WithTimeout(ctx, s.dispatchTimeout)
	err = s.dispatcher.Dispatch(dctx, userIDs, event)
	cancel()
	if err != nil {
		fail("dispatch", err)
		return
	}
	report.Dispatched++
	report.NotifiedUsers += len(userIDs)

	marked, err := s.rsvpRepo.MarkRemindersSent(ctx, rsvpIDs)
	if err != nil {
		fail("mark", err)
		return
	}
	if marked != len(rsvpIDs) {
		log.Warn("fewer reminder rows marked than dispatched", "dispatched", len(rsvpIDs), "marked", marked)
	}
	log.Debug("reminders dispatched", "recipients", len(userIDs))
}
