package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"artistevents/internal/clock"
	"artistevents/internal/domain"
)

type attendanceService struct {
	tx             domain.Transactor
	eventRepo      domain.EventRepository
	rsvpRepo       domain.RSVPRepository
	clock          clock.Clock
	contextTimeout time.Duration
}

// NewAttendanceService returns the RSVP ledger. Every row change and its
// attendee_count adjustment run inside one transaction opened through tx.
func NewAttendanceService(tx domain.Transactor,
	eventRepo domain.EventRepository,
	rsvpRepo domain.RSVPRepository,
	clk clock.Clock,
	timeout time.Duration,
) domain.AttendanceService {
	return &attendanceService{
		tx:             tx,
		eventRepo:      eventRepo,
		rsvpRepo:       rsvpRepo,
		clock:          clk,
		contextTimeout: timeout,
	}
}

func (s *attendanceService) CreateRSVP(ctx context.Context, in domain.CreateRSVPInput) (*domain.RSVP, error) {
	if strings.TrimSpace(in.EventID) == "" || strings.TrimSpace(in.UserID) == "" {
		return nil, fmt.Errorf("%w: event and user are required", domain.ErrInvalidInput)
	}
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	reminderEnabled := true
	if in.ReminderEnabled != nil {
		reminderEnabled = *in.ReminderEnabled
	}

	var rsvp *domain.RSVP
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		event, err := s.eventRepo.GetByID(ctx, in.EventID)
		if err != nil {
			return err
		}
		now := s.clock.Now()
		if event.HasStarted(now) {
			return fmt.Errorf("%w: event has already started", domain.ErrInvalidState)
		}

		rsvp = domain.NewRSVP(in.EventID, in.UserID, reminderEnabled, now)
		if err := s.rsvpRepo.Create(ctx, rsvp); err != nil {
			return err
		}
		return s.eventRepo.AdjustAttendeeCount(ctx, in.EventID, 1)
	})
	if err != nil {
		return nil, ledgerError("create rsvp", err)
	}
	return rsvp, nil
}

func (s *attendanceService) RemoveRSVP(ctx context.Context, eventID, userID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.rsvpRepo.Delete(ctx, eventID, userID); err != nil {
			return err
		}
		return s.eventRepo.AdjustAttendeeCount(ctx, eventID, -1)
	})
	if err != nil {
		return ledgerError("remove rsvp", err)
	}
	return nil
}

// SetReminderPreference toggles reminder_enabled only; the counter and
// reminder_sent are left alone.
func (s *attendanceService) SetReminderPreference(ctx context.Context, eventID, userID string, enabled bool) (*domain.RSVP, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	rsvp, err := s.rsvpRepo.SetReminderEnabled(ctx, eventID, userID, enabled)
	if err != nil {
		return nil, ledgerError("set reminder preference", err)
	}
	return rsvp, nil
}

func (s *attendanceService) ListMyRSVPs(ctx context.Context, userID string, p domain.PaginationParams) (*domain.Page[*domain.RSVPWithEvent], error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	items, total, err := s.rsvpRepo.ListByUser(ctx, userID, p)
	if err != nil {
		return nil, fmt.Errorf("list rsvps: %w", err)
	}
	return domain.NewPage(items, p, total), nil
}

// ledgerError passes through errors carrying an outcome callers branch on
// and wraps anything else with op.
func ledgerError(op string, err error) error {
	for _, sentinel := range []error{domain.ErrNotFound, domain.ErrAlreadyExists, domain.ErrInvalidState} {
		if errors.Is(err, sentinel) {
			return err
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
