package app

import (
	"database/sql"
	"fmt"
	"log/slog"

	"artistevents/config"
	"artistevents/internal/adapters/email"
	"artistevents/internal/adapters/notify"
	"artistevents/internal/adapters/rabbit"
	"artistevents/internal/clock"
	"artistevents/internal/domain"
	"artistevents/internal/repository/postgres"
	"artistevents/internal/services"
)

// NewDispatcher builds the reminder dispatcher selected by cfg.Reminder.Channel.
// The returned close func releases whatever the channel holds open and is
// never nil.
func NewDispatcher(cfg *config.Config, db *sql.DB, logger *slog.Logger) (domain.ReminderDispatcher, func(), error) {
	switch cfg.Reminder.Channel {
	case notify.ChannelEmail:
		mailer, err := email.NewMailer(email.MailerConfig{
			Provider:    cfg.Mailer.Provider,
			FromAddress: cfg.Mailer.FromAddress,
			FromName:    cfg.Mailer.FromName,
			SES: email.SESConfig{
				Region:             cfg.Mailer.SESRegion,
				AccessKeyID:        cfg.Mailer.SESAccessKeyID,
				SecretAccessKey:    cfg.Mailer.SESSecretAccessKey,
				InsecureSkipVerify: cfg.Mailer.InsecureSkipVerify,
			},
		}, logger)
		if err != nil {
			return nil, func() {}, fmt.Errorf("mailer: %w", err)
		}
		renderer, err := email.NewTemplateRenderer()
		if err != nil {
			return nil, func() {}, fmt.Errorf("email templates: %w", err)
		}
		emails := services.NewEmailService(mailer, renderer, logger)
		dispatcher := notify.NewEmailDispatcher(postgres.NewUserRepository(db), emails, logger,
			notify.WithSendConcurrency(cfg.Mailer.SendConcurrency),
		)
		return dispatcher, func() {}, nil

	case notify.ChannelRabbitMQ:
		client, err := rabbit.Dial(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange, cfg.RabbitMQ.Queue, logger)
		if err != nil {
			return nil, func() {}, err
		}
		return notify.NewQueueDispatcher(client), client.Close, nil

	case notify.ChannelLog:
		return notify.NewLogDispatcher(logger), func() {}, nil

	default:
		return nil, func() {}, fmt.Errorf("unknown reminder channel %q", cfg.Reminder.Channel)
	}
}

// NewSweeper wires the reminder sweeper against db and the configured channel.
func NewSweeper(cfg *config.Config, db *sql.DB, logger *slog.Logger) (domain.ReminderSweeper, func(), error) {
	dispatcher, closeFn, err := NewDispatcher(cfg, db, logger)
	if err != nil {
		return nil, closeFn, err
	}
	sweeper := services.NewReminderSweeper(
		postgres.NewEventRepository(db),
		postgres.NewRSVPRepository(db),
		dispatcher,
		clock.NewSystem(),
		logger,
		services.WithReminderWindow(cfg.Reminder.Window()),
		services.WithDispatchTimeout(cfg.Reminder.DispatchTimeout),
	)
	return sweeper, closeFn, nil
}
