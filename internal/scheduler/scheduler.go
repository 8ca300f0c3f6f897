package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"artistevents/internal/domain"
)

// ErrSweepInProgress is returned by RunOnce when a previous sweep has not finished.
var ErrSweepInProgress = errors.New("reminder sweep already in progress")

// Scheduler runs the reminder sweep on a fixed interval. At most one sweep
// runs at a time; a tick that finds a sweep still running is skipped.
type Scheduler struct {
	mu       sync.RWMutex
	sweeper  domain.ReminderSweeper
	logger   *slog.Logger
	interval time.Duration
	running  atomic.Bool
	cancel   context.CancelFunc
	done     chan struct{}
}

// New creates a scheduler for sweeper. interval must be positive.
func New(sweeper domain.ReminderSweeper, interval time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		sweeper:  sweeper,
		logger:   logger,
		interval: interval,
	}
}

// Start begins the scheduler loop. It returns immediately; call Stop to end it.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	done := s.done
	s.mu.Unlock()

	s.logger.Info("reminder scheduler started", "interval", s.interval)
	go func() {
		defer close(done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.tick(ctx)
			}
		}
	}()
}

// Stop cancels the loop and waits for an in-flight sweep to return.
func (s *Scheduler) Stop() {
	s.mu.RLock()
	cancel := s.cancel
	done := s.done
	s.mu.RUnlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
	s.logger.Info("reminder scheduler stopped")
}

// RunOnce runs one sweep now, sharing the single-flight guard with the loop.
func (s *Scheduler) RunOnce(ctx context.Context) (*domain.SweepReport, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, ErrSweepInProgress
	}
	defer s.running.Store(false)
	return s.sweeper.Sweep(ctx)
}

func (s *Scheduler) tick(ctx context.Context) {
	if _, err := s.RunOnce(ctx); err != nil {
		if errors.Is(err, ErrSweepInProgress) {
			s.logger.Warn("reminder sweep skipped: previous sweep still running")
			return
		}
		s.logger.Error("reminder sweep failed", "error", err)
	}
}
