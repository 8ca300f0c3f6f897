// Package notify holds the ReminderDispatcher implementations: email through
// the mailer, a RabbitMQ message for downstream push workers, and a log-only
// channel for development.
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"artistevents/internal/domain"
)

// Channel names accepted by the REMINDER_CHANNEL setting.
const (
	ChannelEmail    = "email"
	ChannelRabbitMQ = "rabbitmq"
	ChannelLog      = "log"
)

// DefaultSendConcurrency bounds how many reminder emails are in flight at once.
const DefaultSendConcurrency = 10

type emailDispatcher struct {
	directory   domain.RecipientDirectory
	emails      domain.EmailService
	logger      *slog.Logger
	concurrency int
}

// EmailOption configures the email dispatcher.
type EmailOption func(*emailDispatcher)

// WithSendConcurrency sets how many recipients are emailed in parallel.
func WithSendConcurrency(n int) EmailOption {
	return func(d *emailDispatcher) {
		if n > 0 {
			d.concurrency = n
		}
	}
}

// NewEmailDispatcher resolves recipients through directory and sends one
// reminder email each, several at a time. Any failed recipient fails the
// whole dispatch.
func NewEmailDispatcher(directory domain.RecipientDirectory, emails domain.EmailService, logger *slog.Logger, opts ...EmailOption) domain.ReminderDispatcher {
	d := &emailDispatcher{
		directory:   directory,
		emails:      emails,
		logger:      logger,
		concurrency: DefaultSendConcurrency,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *emailDispatcher) Dispatch(ctx context.Context, userIDs []string, event *domain.Event) error {
	users, err := d.directory.ListByIDs(ctx, userIDs)
	if err != nil {
		return fmt.Errorf("resolve recipients: %w", err)
	}
	if len(users) < len(userIDs) {
		d.logger.Warn("some reminder recipients have no account", "event_id", event.ID, "requested", len(userIDs), "found", len(users))
	}

	var (
		mu   sync.Mutex
		errs []error
	)
	record := func(err error) {
		mu.Lock()
		errs = append(errs, err)
		mu.Unlock()
	}

	var g errgroup.Group
	g.SetLimit(d.concurrency)
	for _, u := range users {
		if err := ctx.Err(); err != nil {
			record(err)
			break
		}
		g.Go(func() error {
			if err := d.emails.SendEventReminder(ctx, reminderEmailData(u, event)); err != nil {
				record(fmt.Errorf("user %s: %w", u.ID, err))
			}
			return nil
		})
	}
	_ = g.Wait()
	return errors.Join(errs...)
}

func reminderEmailData(u *domain.User, e *domain.Event) *domain.EventReminderEmailData {
	data := &domain.EventReminderEmailData{
		Email:      u.Email,
		Name:       u.Name,
		EventTitle: e.Title,
		Category:   e.Category,
		StartTime:  e.StartTime,
		IsVirtual:  e.IsVirtual,
	}
	if e.Venue != nil {
		data.Venue = *e.Venue
	}
	if e.StreamURL != nil {
		data.StreamURL = *e.StreamURL
	}
	if e.TicketURL != nil {
		data.TicketURL = *e.TicketURL
	}
	return data
}

// Publisher sends an encoded message to a broker.
type Publisher interface {
	Publish(ctx context.Context, body []byte) error
}

// ReminderMessage is the JSON body published for the queue channel.
type ReminderMessage struct {
	Event   *domain.Event `json:"event"`
	UserIDs []string      `json:"user_ids"`
	SentAt  time.Time     `json:"sent_at"`
}

type queueDispatcher struct {
	publisher Publisher
	now       func() time.Time
}

// NewQueueDispatcher publishes one ReminderMessage per dispatch.
func NewQueueDispatcher(publisher Publisher) domain.ReminderDispatcher {
	return &queueDispatcher{publisher: publisher, now: time.Now}
}

func (d *queueDispatcher) Dispatch(ctx context.Context, userIDs []string, event *domain.Event) error {
	body, err := json.Marshal(ReminderMessage{Event: event, UserIDs: userIDs, SentAt: d.now().UTC()})
	if err != nil {
		return fmt.Errorf("encode reminder message: %w", err)
	}
	return d.publisher.Publish(ctx, body)
}

type logDispatcher struct {
	logger *slog.Logger
}

// NewLogDispatcher only logs; every dispatch succeeds.
func NewLogDispatcher(logger *slog.Logger) domain.ReminderDispatcher {
	return &logDispatcher{logger: logger}
}

func (d *logDispatcher) Dispatch(_ context.Context, userIDs []string, event *domain.Event) error {
	d.logger.Info("event reminder",
		"event_id", event.ID,
		"title", event.Title,
		"start_time", event.StartTime,
		"recipients", len(userIDs),
	)
	return nil
}
