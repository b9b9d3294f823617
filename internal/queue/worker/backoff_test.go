package worker

import (
	"testing"
	"time"
)

func TestExponentialBackoff(t *testing.T) {
	// Jitter adds up to 250ms, so check against windows.
	tests := []struct {
		attempt int
		min     time.Duration
		max     time.Duration
	}{
		{attempt: 0, min: 2 * time.Second, max: 2*time.Second + 250*time.Millisecond},
		{attempt: 1, min: 4 * time.Second, max: 4*time.Second + 250*time.Millisecond},
		{attempt: 2, min: 8 * time.Second, max: 8*time.Second + 250*time.Millisecond},
		{attempt: 10, min: 5 * time.Minute, max: 5*time.Minute + 250*time.Millisecond},
	}

	for _, tt := range tests {
		d := ExponentialBackoff(tt.attempt)

		if d < tt.min || d > tt.max {
			t.Fatalf("attempt %d: got %v, want between %v and %v", tt.attempt, d, tt.min, tt.max)
		}
	}
}

func TestExponentialBackoffCapped(t *testing.T) {
	for attempt := 0; attempt < 30; attempt++ {
		if d := ExponentialBackoff(attempt); d > 5*time.Minute+250*time.Millisecond {
			t.Fatalf("attempt %d exceeded the cap: %v", attempt, d)
		}
	}
}
