package forecast

import (
	"time"

	"fabline/internal/metrics"
	"fabline/internal/track"
)

// Estimate is the opaque point-estimate contract: both values sit in [0, 1].
type Estimate struct {
	Prediction float64 `json:"prediction"`
	Confidence float64 `json:"confidence"`
}

// Estimator produces a point estimate and a confidence for a project given
// its historical progress records. Implementations are treated as black
// boxes; any model honoring the Estimate contract can be plugged in.
type Estimator interface {
	Predict(window track.ProjectWindow, records []track.ProgressRecord) Estimate
}

// VelocityEstimator is the default estimator. It is fully deterministic:
// the point estimate tracks how far through its window the project is, and
// the confidence grows with the volume and day-to-day stability of the
// logged history. Projects with little history receive a low-confidence
// default.
type VelocityEstimator struct {
	// Now overrides the reference time; zero means time.Now().
	Now time.Time
}

const (
	minModelConfidence = 0.2
	maxModelConfidence = 0.9
	// Records needed before the volume component saturates.
	confidenceSaturation = 25
)

func (e VelocityEstimator) Predict(window track.ProjectWindow, records []track.ProgressRecord) Estimate {
	now := e.Now
	if now.IsZero() {
		now = time.Now()
	}

	est := Estimate{
		Prediction: elapsedFraction(window, now),
		Confidence: minModelConfidence,
	}
	if len(records) == 0 {
		return est
	}

	volume := min(1, float64(len(records))/confidenceSaturation)

	// Day-to-day stability of logged quantities.
	perDay := make(map[string]float64)
	for _, r := range records {
		perDay[track.DayKey(r.CompletedAt)] += float64(r.Quantity)
	}
	daily := make([]float64, 0, len(perDay))
	for _, q := range perDay {
		daily = append(daily, q)
	}
	stability := 1.0
	if mean := metrics.Mean(daily); mean > 0 {
		stability = metrics.Clamp(1-metrics.StdDev(daily)/mean, 0, 1)
	}

	est.Confidence = metrics.Clamp(
		minModelConfidence+(maxModelConfidence-minModelConfidence)*(0.6*volume+0.4*stability),
		0, 1,
	)
	return est
}

// elapsedFraction returns how far through its window the project is, in
// [0, 1]. Windows without a target date assume the default horizon.
func elapsedFraction(window track.ProjectWindow, now time.Time) float64 {
	if window.StartDate.IsZero() {
		return 0
	}
	end := window.StartDate.AddDate(0, 0, metrics.DefaultHorizonDays)
	if window.TargetDate != nil {
		end = *window.TargetDate
	}
	total := end.Sub(window.StartDate)
	if total <= 0 {
		return 1
	}
	return metrics.Clamp(float64(now.Sub(window.StartDate))/float64(total), 0, 1)
}
