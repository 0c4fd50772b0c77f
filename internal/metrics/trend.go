package metrics

import "fabline/internal/track"

// Trend labels a worker's recent output against their earlier output.
type Trend string

const (
	TrendImproving Trend = "improving"
	TrendStable    Trend = "stable"
	TrendDeclining Trend = "declining"
)

// recentSampleSize is the number of most recent records compared against the
// rest of the history.
const recentSampleSize = 7

// ClassifyTrend splits a worker's time-ordered records into the last seven
// entries and everything earlier, compares the mean completed quantity of the
// two groups, and labels the result. A 10% band around the earlier average
// counts as stable.
func ClassifyTrend(records []track.ProgressRecord) Trend {
	split := len(records) - recentSampleSize
	if split < 0 {
		split = 0
	}
	earlier := records[:split]
	recent := records[split:]

	recentAvg := meanQuantity(recent)
	earlierAvg := meanQuantity(earlier)

	switch {
	case recentAvg > earlierAvg*1.1:
		return TrendImproving
	case recentAvg < earlierAvg*0.9:
		return TrendDeclining
	default:
		return TrendStable
	}
}

func meanQuantity(records []track.ProgressRecord) float64 {
	var sum float64
	for _, r := range records {
		sum += float64(r.Quantity)
	}
	count := len(records)
	if count < 1 {
		count = 1
	}
	return sum / float64(count)
}
