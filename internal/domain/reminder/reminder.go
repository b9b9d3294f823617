package reminder

import (
	"errors"
	"time"
)

var (
	ErrNotFound    = errors.New("reminder not found")
	ErrNoneDue     = errors.New("no reminder due")
	ErrTooFarAhead = errors.New("reminder too far in the future")
	ErrInThePast   = errors.New("reminder must be in the future")
)

// Reminders may be scheduled at most a year out.
const MaxDaysAhead = 365

type Status string

const (
	StatusPending     Status = "pending"
	StatusDispatching Status = "dispatching"
	StatusDispatched  Status = "dispatched"
	StatusFailed      Status = "failed"
)

type Reminder struct {
	ID           string     `json:"id"`
	UserID       string     `json:"-"`
	Title        string     `json:"title"`
	Notes        string     `json:"notes,omitempty"`
	RemindAt     time.Time  `json:"remindAt"`
	IsCompleted  bool       `json:"isCompleted"`
	Status       Status     `json:"status"`
	Attempts     int        `json:"-"`
	LastError    *string    `json:"-"`
	DispatchedAt *time.Time `json:"dispatchedAt,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

type CreateReminderRequest struct {
	Title    string    `json:"title" binding:"required,min=2,max=120"`
	Notes    string    `json:"notes" binding:"omitempty,max=500"`
	RemindAt time.Time `json:"remindAt" binding:"required"`
}

// Validate covers the time-window rules the binding tags cannot express.
func (r CreateReminderRequest) Validate(now time.Time) error {
	if !r.RemindAt.After(now) {
		return ErrInThePast
	}
	if r.RemindAt.After(now.AddDate(0, 0, MaxDaysAhead)) {
		return ErrTooFarAhead
	}
	return nil
}

type UpdateReminderRequest struct {
	IsCompleted *bool `json:"isCompleted" binding:"required"`
}
