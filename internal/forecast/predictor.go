package forecast

import (
	"fmt"
	"math"
	"time"

	"fabline/internal/metrics"
	"fabline/internal/track"
)

// Risk levels for a project forecast.
const (
	RiskLow      = "low"
	RiskMedium   = "medium"
	RiskHigh     = "high"
	RiskCritical = "critical"
)

// Velocity below this floor would project an unbounded completion date, so
// projections never assume less.
const minVelocity = 0.1

// Scenarios are the optimistic/realistic/pessimistic completion dates.
type Scenarios struct {
	Optimistic  time.Time `json:"optimistic"`
	Realistic   time.Time `json:"realistic"`
	Pessimistic time.Time `json:"pessimistic"`
}

// Forecast is the derived completion outlook for one project.
type Forecast struct {
	ProjectID           string    `json:"projectId"`
	CurrentProgress     float64   `json:"currentProgress"`
	ExpectedProgress    float64   `json:"expectedProgress"`
	ProgressDelta       float64   `json:"progressDelta"`
	RiskLevel           string    `json:"riskLevel"`
	Confidence          float64   `json:"confidenceLevel"`
	AverageVelocity     float64   `json:"averageVelocity"`
	RemainingWork       float64   `json:"remainingWork"`
	PredictedCompletion time.Time `json:"predictedCompletionDate"`
	Scenarios           Scenarios `json:"scenarios"`
	Fallback            bool      `json:"fallback,omitempty"`
}

// Predictor blends observed velocity with the external estimator signal.
type Predictor struct {
	Estimator Estimator
	// Now overrides the reference time; zero means time.Now().
	Now time.Time
}

// ProjectInput binds one project window with its assemblies and its matching
// progress records.
type ProjectInput struct {
	Window     track.ProjectWindow
	Assemblies []track.AssemblyUnit
	Records    []track.ProgressRecord
}

// PredictAll forecasts a batch of projects. A project whose computation fails
// is replaced by a fixed fallback forecast; one bad project never aborts the
// batch.
func (p Predictor) PredictAll(inputs []ProjectInput) []Forecast {
	forecasts := make([]Forecast, 0, len(inputs))
	for _, in := range inputs {
		f, err := p.Predict(in)
		if err != nil {
			f = p.fallback(in.Window.ProjectID)
		}
		forecasts = append(forecasts, f)
	}
	return forecasts
}

// Predict forecasts a single project.
func (p Predictor) Predict(in ProjectInput) (Forecast, error) {
	now := p.now()
	window := in.Window

	if window.StartDate.IsZero() {
		return Forecast{}, fmt.Errorf("project %s: window has no start date", window.ProjectID)
	}

	totalWork := 0
	for _, u := range in.Assemblies {
		totalWork += u.TotalQuantity
	}
	if totalWork <= 0 {
		return Forecast{}, fmt.Errorf("project %s: no assembly work defined", window.ProjectID)
	}

	completedWork := 0
	for _, r := range in.Records {
		completedWork += r.Quantity
	}

	target := window.StartDate.AddDate(0, 0, metrics.DefaultHorizonDays)
	if window.TargetDate != nil {
		target = *window.TargetDate
	}

	totalDuration := target.Sub(window.StartDate)
	elapsed := now.Sub(window.StartDate)

	currentProgress := metrics.Clamp(float64(completedWork)/float64(totalWork)*100, 0, 100)
	expectedProgress := 100.0
	if totalDuration > 0 {
		expectedProgress = metrics.Clamp(float64(elapsed)/float64(totalDuration)*100, 0, 100)
	}
	delta := currentProgress - expectedProgress

	elapsedDays := elapsed.Hours() / 24.0
	if elapsedDays < 1 {
		elapsedDays = 1
	}
	velocity := float64(completedWork) / elapsedDays
	if velocity < minVelocity {
		velocity = minVelocity
	}

	remaining := math.Max(0, float64(totalWork-completedWork))
	daysToComplete := remaining / velocity
	predicted := now.Add(time.Duration(daysToComplete * 24 * float64(time.Hour)))

	est := Estimate{Confidence: 0}
	if p.Estimator != nil {
		est = p.Estimator.Predict(window, in.Records)
	}

	confidence := p.blendConfidence(confidenceSignals{
		MLConfidence:      est.Confidence * 100,
		ProgressDelta:     delta,
		RecordCount:       len(in.Records),
		AssemblyCount:     len(in.Assemblies),
		TotalWork:         totalWork,
		TotalDurationDays: totalDuration.Hours() / 24.0,
		AverageVelocity:   velocity,
	})

	return Forecast{
		ProjectID:           window.ProjectID,
		CurrentProgress:     currentProgress,
		ExpectedProgress:    expectedProgress,
		ProgressDelta:       delta,
		RiskLevel:           riskLevel(delta),
		Confidence:          confidence,
		AverageVelocity:     velocity,
		RemainingWork:       remaining,
		PredictedCompletion: predicted,
		Scenarios: Scenarios{
			Optimistic:  predicted.AddDate(0, 0, -7),
			Realistic:   predicted,
			Pessimistic: predicted.AddDate(0, 0, 14),
		},
	}, nil
}

type confidenceSignals struct {
	MLConfidence      float64
	ProgressDelta     float64
	RecordCount       int
	AssemblyCount     int
	TotalWork         int
	TotalDurationDays float64
	AverageVelocity   float64
}

// blendConfidence combines the external model's confidence with local data
// quality and stability signals, bounded to [30, 95].
func (p Predictor) blendConfidence(s confidenceSignals) float64 {
	progressAccuracy := math.Max(0, 100-math.Abs(s.ProgressDelta)*1.5)
	dataQuality := math.Min(100, float64(s.RecordCount)*10)
	timeAccuracy := math.Max(0, 100-math.Abs(s.ProgressDelta)*2)
	complexityFactor := math.Max(0.5, 1-float64(s.AssemblyCount)/100)

	durationDays := math.Max(s.TotalDurationDays, 1)
	expectedVelocity := float64(s.TotalWork) / durationDays

	velocityRatio := 1.0
	if expectedVelocity > 0 {
		velocityRatio = s.AverageVelocity / expectedVelocity
	}
	velocityConsistency := 50.0
	if s.RecordCount > 1 {
		velocityConsistency = math.Max(0, 100-math.Abs(velocityRatio-1)*30)
	}

	blended := (s.MLConfidence*0.4 +
		progressAccuracy*0.2 +
		dataQuality*0.2 +
		timeAccuracy*0.1 +
		velocityConsistency*0.1) * complexityFactor

	return metrics.Clamp(blended, 30, 95)
}

// riskLevel classifies how far behind schedule a project is.
func riskLevel(delta float64) string {
	switch {
	case delta < -20:
		return RiskCritical
	case delta < -10:
		return RiskHigh
	case delta < -5:
		return RiskMedium
	default:
		return RiskLow
	}
}

// fallback is the fixed forecast substituted for a project whose computation
// failed.
func (p Predictor) fallback(projectID string) Forecast {
	now := p.now()
	predicted := now.AddDate(0, 0, 30)
	return Forecast{
		ProjectID:           projectID,
		RiskLevel:           RiskMedium,
		Confidence:          50,
		PredictedCompletion: predicted,
		Scenarios: Scenarios{
			Optimistic:  predicted.AddDate(0, 0, -7),
			Realistic:   predicted,
			Pessimistic: predicted.AddDate(0, 0, 14),
		},
		Fallback: true,
	}
}

func (p Predictor) now() time.Time {
	if p.Now.IsZero() {
		return time.Now()
	}
	return p.Now
}
