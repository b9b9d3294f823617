package analytics

import (
	"testing"
	"time"
)

func day(offset int) time.Time {
	base := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	return base.AddDate(0, 0, offset)
}

func TestCurrentStreak(t *testing.T) {
	now := time.Date(2026, 8, 31, 18, 30, 0, 0, time.UTC)

	tests := []struct {
		name string
		days []time.Time
		want int
	}{
		{
			name: "no_days",
			days: nil,
			want: 0,
		},
		{
			name: "single_day_today",
			days: []time.Time{day(0)},
			want: 1,
		},
		{
			name: "anchored_yesterday",
			days: []time.Time{day(-1), day(-2), day(-3)},
			want: 3,
		},
		{
			name: "broken_two_days_ago",
			days: []time.Time{day(-2), day(-3)},
			want: 0,
		},
		{
			name: "gap_stops_the_count",
			days: []time.Time{day(0), day(-1), day(-3), day(-4)},
			want: 2,
		},
		{
			name: "long_run",
			days: []time.Time{day(0), day(-1), day(-2), day(-3), day(-4), day(-5), day(-6)},
			want: 7,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			got := CurrentStreak(tt.days, now)

			if got != tt.want {
				t.Fatalf("got streak %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCurrentStreakNormalizesTimestamps(t *testing.T) {
	now := time.Date(2026, 8, 31, 2, 0, 0, 0, time.UTC)

	// Timestamps with hours still count as their day.
	days := []time.Time{
		time.Date(2026, 8, 31, 23, 15, 0, 0, time.UTC),
		time.Date(2026, 8, 30, 6, 45, 0, 0, time.UTC),
	}

	if got := CurrentStreak(days, now); got != 2 {
		t.Fatalf("got streak %d, want 2", got)
	}
}
