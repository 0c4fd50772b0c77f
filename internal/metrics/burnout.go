package metrics

import (
	"time"

	"fabline/internal/track"
)

// Overtime threshold in minutes for a single logged record.
const overtimeMinutes = 480

// BurnoutInput carries the work-pattern signals for the risk estimate.
type BurnoutInput struct {
	Records    []track.ProgressRecord
	Efficiency float64
	Trend      Trend
	Now        time.Time
}

// BurnoutFactors breaks the risk score down by signal.
type BurnoutFactors struct {
	Risk               float64 `json:"risk"`
	BaseRisk           float64 `json:"baseRisk"`
	WorkIntensity      float64 `json:"workIntensity"`
	PerformanceDecline float64 `json:"performanceDecline"`
	LowEfficiency      float64 `json:"lowEfficiency"`
	WeekendFactor      float64 `json:"weekendFactor"`
	OvertimeFactor     float64 `json:"overtimeFactor"`
	IrregularFactor    float64 `json:"irregularFactor"`
}

// BurnoutRisk computes a 0-100 risk score from a worker's work patterns.
// An empty record set means no activity to assess: risk 0.
func BurnoutRisk(in BurnoutInput) BurnoutFactors {
	if len(in.Records) == 0 {
		return BurnoutFactors{}
	}

	now := in.Now
	if now.IsZero() {
		now = time.Now()
	}

	weekAgo := now.AddDate(0, 0, -7)
	last7 := 0
	weekendCount := 0
	overtimeCount := 0
	hours := make([]float64, 0, len(in.Records))

	for _, r := range in.Records {
		if !r.CompletedAt.Before(weekAgo) {
			last7++
		}
		switch r.CompletedAt.Weekday() {
		case time.Saturday, time.Sunday:
			weekendCount++
		}
		if r.MinutesSpent > overtimeMinutes {
			overtimeCount++
		}
		hours = append(hours, float64(r.CompletedAt.Hour()))
	}

	f := BurnoutFactors{
		WorkIntensity:  float64(last7) / 7.0,
		BaseRisk:       max(0, 100-in.Efficiency),
		WeekendFactor:  min(20, float64(weekendCount)*2),
		OvertimeFactor: min(25, float64(overtimeCount)*3),
	}

	if in.Trend == TrendDeclining {
		f.PerformanceDecline = 30
	}
	if in.Efficiency < 50 {
		f.LowEfficiency = (50 - in.Efficiency) * 0.8
	}
	f.IrregularFactor = min(15, StdDev(hours)*0.5)

	f.Risk = Clamp(
		f.BaseRisk+f.PerformanceDecline+f.LowEfficiency+f.WeekendFactor+f.OvertimeFactor+f.IrregularFactor,
		0, 100,
	)
	return f
}
