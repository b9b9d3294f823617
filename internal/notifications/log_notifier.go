package notifications

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"
)

// LogNotifier writes reminder notifications to the process log. It stands in
// for a real email or push provider and can simulate latency and outages via
// NOTIFIER_SLEEP_MS and NOTIFIER_FAIL.
type LogNotifier struct{}

func NewLogNotifier() *LogNotifier { return &LogNotifier{} }

func (n *LogNotifier) SendReminder(ctx context.Context, in SendReminderInput) error {
	if msStr := os.Getenv("NOTIFIER_SLEEP_MS"); msStr != "" {
		ms, _ := strconv.Atoi(msStr)
		if ms > 0 {
			select {
			case <-time.After(time.Duration(ms) * time.Millisecond):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}

	if os.Getenv("NOTIFIER_FAIL") == "1" {
		return fmt.Errorf("provider down (simulated)")
	}

	log.Printf("notification.reminder email=%s user=%s title=%q reminder=%s",
		in.Email, in.Username, in.Title, in.ReminderID,
	)
	return nil
}
