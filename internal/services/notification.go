package services

import (
	"context"
	"log/slog"

	"showscheduler/internal/domain"
)

const scheduleChangeTemplate = "schedule_change"

type notificationService struct {
	mailer     domain.Mailer
	renderer   domain.EmailTemplateRenderer
	recipients []string
	logger     *slog.Logger
}

// NewNotificationService returns a Notifier that emails recipients about
// schedule changes. With no recipients it does nothing.
func NewNotificationService(mailer domain.Mailer, renderer domain.EmailTemplateRenderer, recipients []string, logger *slog.Logger) domain.Notifier {
	return &notificationService{
		mailer:     mailer,
		renderer:   renderer,
		recipients: recipients,
		logger:     logger,
	}
}

func (s *notificationService) ShowChanged(ctx context.Context, action domain.ScheduleAction, show *domain.Show) {
	if len(s.recipients) == 0 || show == nil {
		return
	}
	data := domain.ScheduleChangeEmailData{
		Action:   action,
		ShowID:   show.ID,
		ShowName: show.ShowName,
		Venue:    show.Venue,
		Date:     show.Date,
	}
	subject, htmlBody, textBody, err := s.renderer.Render(scheduleChangeTemplate, data)
	if err != nil {
		s.logger.ErrorContext(ctx, "render schedule change email", "show_id", show.ID, "err", err)
		return
	}
	for _, to := range s.recipients {
		if err := s.mailer.Send(ctx, to, subject, htmlBody, textBody); err != nil {
			s.logger.ErrorContext(ctx, "send schedule change email", "to", to, "show_id", show.ID, "err", err)
			continue
		}
		s.logger.InfoContext(ctx, "schedule change email sent", "to", to, "show_id", show.ID, "action", string(action))
	}
}
