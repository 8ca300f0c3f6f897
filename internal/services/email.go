package services

import (
	"context"
	"fmt"
	"log/slog"

	"artistevents/internal/domain"
)

// EventReminderTemplate is the template name rendered for reminder emails.
const EventReminderTemplate = "event_reminder"

type emailService struct {
	mailer   domain.Mailer
	renderer domain.EmailTemplateRenderer
	logger   *slog.Logger
}

// NewEmailService returns an EmailService that uses the given Mailer and template renderer.
func NewEmailService(mailer domain.Mailer, renderer domain.EmailTemplateRenderer, logger *slog.Logger) domain.EmailService {
	return &emailService{mailer: mailer, renderer: renderer, logger: logger}
}

// SendEventReminder renders the event_reminder template and sends it to data.Email.
func (s *emailService) SendEventReminder(ctx context.Context, data *domain.EventReminderEmailData) error {
	if data == nil {
		return fmt.Errorf("event reminder data is nil")
	}
	if data.Email == "" {
		return fmt.Errorf("%w: recipient email is required", domain.ErrInvalidInput)
	}
	subject, htmlBody, textBody, err := s.renderer.Render(EventReminderTemplate, data)
	if err != nil {
		return fmt.Errorf("failed to render %s template: %w", EventReminderTemplate, err)
	}
	if err := s.mailer.Send(ctx, data.Email, subject, htmlBody, textBody); err != nil {
		return fmt.Errorf("failed to send event reminder email: %w", err)
	}
	s.logger.Debug("event reminder email sent", "to", data.Email, "event_title", data.EventTitle)
	return nil
}
