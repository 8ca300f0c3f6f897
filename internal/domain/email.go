package domain

import (
	"context"
	"time"
)

// Mailer defines the contract for sending emails (infrastructure port).
type Mailer interface {
	Send(ctx context.Context, to, subject, html, text string) error
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// EventReminderEmailData holds data for the upcoming-event reminder email.
type EventReminderEmailData struct {
	Email      string
	Name       string
	EventTitle string
	Category   EventCategory
	StartTime  time.Time
	Venue      string
	StreamURL  string
	TicketURL  string
	IsVirtual  bool
}

// EmailService defines the contract for sending domain-level emails.
type EmailService interface {
	SendEventReminder(ctx context.Context, data *EventReminderEmailData) error
}
