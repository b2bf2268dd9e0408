package services

import (
	"context"
	"fmt"
	"log/slog"

	"guestcheckin/internal/domain"
)

type emailService struct {
	mailer   domain.Mailer
	renderer domain.EmailTemplateRenderer
	logger   *slog.Logger
}

// NewEmailService returns an EmailService that uses the given Mailer and template renderer.
func NewEmailService(mailer domain.Mailer, renderer domain.EmailTemplateRenderer, logger *slog.Logger) domain.EmailService {
	return &emailService{mailer: mailer, renderer: renderer, logger: logger}
}

// SendEventDeployed sends the operator alert using the "event_deployed" template.
func (s *emailService) SendEventDeployed(ctx context.Context, data *domain.EventDeployedEmailData) error {
	if data == nil {
		return fmt.Errorf("event deployed data is nil")
	}
	return s.send(ctx, "event_deployed", data.To, data)
}

// SendEventStatusChanged sends the operator alert using the "event_status" template.
func (s *emailService) SendEventStatusChanged(ctx context.Context, data *domain.EventStatusEmailData) error {
	if data == nil {
		return fmt.Errorf("event status data is nil")
	}
	return s.send(ctx, "event_status", data.To, data)
}

func (s *emailService) send(ctx context.Context, template, to string, data any) error {
	subject, htmlBody, textBody, err := s.renderer.Render(template, data)
	if err != nil {
		return fmt.Errorf("failed to render %s template: %w", template, err)
	}
	if err := s.mailer.Send(ctx, to, subject, htmlBody, textBody); err != nil {
		return fmt.Errorf("failed to send %s email: %w", template, err)
	}
	s.logger.InfoContext(ctx, "email sent", "template", template, "to", to)
	return nil
}
