package analytics

import (
	"math"

	"github.com/fitlistic/fitlistic/internal/domain/wellbeing"
)

// WellbeingStats summarizes a mood score series: count, mean and the slope
// of a least-squares line through the scores in day order. A positive trend
// means mood is improving.
type WellbeingStats struct {
	Count int     `json:"count"`
	Mean  float64 `json:"mean"`
	Trend float64 `json:"trend"`
}

func SummarizeWellbeing(scores []wellbeing.Score) WellbeingStats {
	n := len(scores)

	if n == 0 {
		return WellbeingStats{}
	}

	var sum float64
	for _, s := range scores {
		sum += float64(s.Score)
	}

	mean := sum / float64(n)

	stats := WellbeingStats{
		Count: n,
		Mean:  round2(mean),
	}

	if n < 2 {
		return stats
	}

	// Least squares over (index, score); the series is already in ascending
	// day order.
	xMean := float64(n-1) / 2

	var num, den float64
	for i, s := range scores {
		dx := float64(i) - xMean
		num += dx * (float64(s.Score) - mean)
		den += dx * dx
	}

	if den != 0 {
		stats.Trend = round2(num / den)
	}

	return stats
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
