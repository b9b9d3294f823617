package analytics

import "time"

// CurrentStreak counts consecutive workout days ending today or yesterday.
// days must be distinct UTC midnights, newest first. A streak whose latest
// day is older than yesterday has been broken and counts as zero.
func CurrentStreak(days []time.Time, now time.Time) int {
	if len(days) == 0 {
		return 0
	}

	today := midnightUTC(now)
	yesterday := today.AddDate(0, 0, -1)

	anchor := midnightUTC(days[0])

	if !anchor.Equal(today) && !anchor.Equal(yesterday) {
		return 0
	}

	streak := 1
	prev := anchor

	for _, d := range days[1:] {
		day := midnightUTC(d)

		if day.Equal(prev.AddDate(0, 0, -1)) {
			streak++
			prev = day
			continue
		}

		break
	}

	return streak
}

func midnightUTC(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
