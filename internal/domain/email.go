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

// ScheduleAction names what happened to a show.
type ScheduleAction string

const (
	ScheduleAdded   ScheduleAction = "added"
	ScheduleUpdated ScheduleAction = "updated"
	ScheduleRemoved ScheduleAction = "removed"
)

// ScheduleChangeEmailData holds data for the schedule change email.
type ScheduleChangeEmailData struct {
	Action   ScheduleAction
	ShowID   int64
	ShowName string
	Venue    string
	Date     time.Time
}

// Notifier tells subscribers about schedule changes. Implementations must not
// fail the caller's operation; delivery errors are logged.
type Notifier interface {
	ShowChanged(ctx context.Context, action ScheduleAction, show *Show)
}
