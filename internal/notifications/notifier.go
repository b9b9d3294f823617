package notifications

import "context"

type SendReminderInput struct {
	Email      string
	Username   string
	Title      string
	Notes      string
	ReminderID string
}

type Notifier interface {
	SendReminder(ctx context.Context, input SendReminderInput) error
}
