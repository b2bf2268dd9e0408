package domain

import "context"

// Mailer defines the contract for sending emails (infrastructure port).
type Mailer interface {
	Send(ctx context.Context, to, subject, html, text string) error
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// EventDeployedEmailData holds data for the operator alert sent when a registry is deployed.
type EventDeployedEmailData struct {
	To           string
	Registry     string
	Name         string
	EventDate    string
	MaxAttendees uint32
}

// EventStatusEmailData holds data for the operator alert sent when check-in is toggled.
type EventStatusEmailData struct {
	To       string
	Registry string
	Active   bool
}

// EmailService defines the contract for sending domain-level emails.
type EmailService interface {
	SendEventDeployed(ctx context.Context, data *EventDeployedEmailData) error
	SendEventStatusChanged(ctx context.Context, data *EventStatusEmailData) error
}
