package forecast

import (
	"math"
	"testing"
	"time"

	"fabline/internal/track"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// fixedEstimator returns the same estimate for every project.
type fixedEstimator struct {
	est Estimate
}

func (f fixedEstimator) Predict(track.ProjectWindow, []track.ProgressRecord) Estimate {
	return f.est
}

func projectInput(totalWork, completedWork int, start, target time.Time) ProjectInput {
	in := ProjectInput{
		Window: track.ProjectWindow{ProjectID: "p1", StartDate: start, TargetDate: &target},
		Assemblies: []track.AssemblyUnit{
			{ID: "a1", ProjectID: "p1", StageID: "s1", TotalQuantity: totalWork},
		},
	}
	if completedWork > 0 {
		in.Records = []track.ProgressRecord{
			{WorkerID: "w1", AssemblyID: "a1", Quantity: completedWork, CompletedAt: start.Add(24 * time.Hour)},
		}
	}
	return in
}

func TestPredictVelocityProjection(t *testing.T) {
	now := day(2024, 3, 11)
	start := day(2024, 3, 1) // elapsedDays = 10
	target := day(2024, 4, 10)

	p := Predictor{Estimator: fixedEstimator{Estimate{0.5, 0.8}}, Now: now}
	f, err := p.Predict(projectInput(200, 50, start, target))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if math.Abs(f.AverageVelocity-5) > 1e-9 {
		t.Errorf("AverageVelocity = %g, want 5", f.AverageVelocity)
	}
	if f.RemainingWork != 150 {
		t.Errorf("RemainingWork = %g, want 150", f.RemainingWork)
	}
	wantCompletion := now.Add(30 * 24 * time.Hour)
	if !f.PredictedCompletion.Equal(wantCompletion) {
		t.Errorf("PredictedCompletion = %v, want %v", f.PredictedCompletion, wantCompletion)
	}
	if !f.Scenarios.Optimistic.Equal(wantCompletion.AddDate(0, 0, -7)) {
		t.Errorf("Optimistic = %v, want predicted - 7d", f.Scenarios.Optimistic)
	}
	if !f.Scenarios.Pessimistic.Equal(wantCompletion.AddDate(0, 0, 14)) {
		t.Errorf("Pessimistic = %v, want predicted + 14d", f.Scenarios.Pessimistic)
	}
}

func TestPredictRiskLevels(t *testing.T) {
	tests := []struct {
		name     string
		delta    float64
		expected string
	}{
		{"FarBehind", -25, RiskCritical},
		{"WellBehind", -15, RiskHigh},
		{"Behind", -7, RiskMedium},
		{"SlightlyBehind", -3, RiskLow},
		{"Ahead", 10, RiskLow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := riskLevel(tt.delta); got != tt.expected {
				t.Errorf("riskLevel(%g) = %q, want %q", tt.delta, got, tt.expected)
			}
		})
	}
}

func TestPredictProgressDeltaCritical(t *testing.T) {
	// 40% done where 65% was expected: delta -25 -> critical.
	now := day(2024, 3, 1).Add(65 * 24 * time.Hour)
	start := day(2024, 3, 1)
	target := start.Add(100 * 24 * time.Hour)

	p := Predictor{Estimator: fixedEstimator{Estimate{0.5, 0.6}}, Now: now}
	f, err := p.Predict(projectInput(100, 40, start, target))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if math.Abs(f.CurrentProgress-40) > 1e-9 {
		t.Errorf("CurrentProgress = %g, want 40", f.CurrentProgress)
	}
	if math.Abs(f.ExpectedProgress-65) > 1e-9 {
		t.Errorf("ExpectedProgress = %g, want 65", f.ExpectedProgress)
	}
	if f.RiskLevel != RiskCritical {
		t.Errorf("RiskLevel = %q, want critical", f.RiskLevel)
	}
}

func TestPredictVelocityFloor(t *testing.T) {
	now := day(2024, 3, 20)
	p := Predictor{Estimator: fixedEstimator{Estimate{0.5, 0.5}}, Now: now}
	f, err := p.Predict(projectInput(100, 0, day(2024, 3, 1), day(2024, 6, 1)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.AverageVelocity != minVelocity {
		t.Errorf("AverageVelocity = %g, want floor %g", f.AverageVelocity, minVelocity)
	}
}

func TestPredictConfidenceBounds(t *testing.T) {
	now := day(2024, 3, 11)
	start := day(2024, 3, 1)
	target := day(2024, 4, 10)

	tests := []struct {
		name string
		est  Estimate
	}{
		{"ZeroConfidenceEstimator", Estimate{0, 0}},
		{"FullConfidenceEstimator", Estimate{1, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Predictor{Estimator: fixedEstimator{tt.est}, Now: now}
			f, err := p.Predict(projectInput(200, 50, start, target))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if f.Confidence < 30 || f.Confidence > 95 {
				t.Errorf("Confidence = %g, want within [30, 95]", f.Confidence)
			}
		})
	}
}

func TestPredictMissingTargetUsesDefaultHorizon(t *testing.T) {
	now := day(2024, 3, 11)
	in := projectInput(200, 50, day(2024, 3, 1), day(2024, 4, 10))
	in.Window.TargetDate = nil

	p := Predictor{Estimator: fixedEstimator{Estimate{0.5, 0.5}}, Now: now}
	f, err := p.Predict(in)
	if err != nil {
		t.Fatalf("expected default horizon, got error: %v", err)
	}
	// 10 days into a 90-day horizon.
	want := 10.0 / 90.0 * 100
	if math.Abs(f.ExpectedProgress-want) > 1e-9 {
		t.Errorf("ExpectedProgress = %g, want %g", f.ExpectedProgress, want)
	}
}

func TestPredictAllFallbackOnBadProject(t *testing.T) {
	now := day(2024, 3, 11)
	good := projectInput(200, 50, day(2024, 3, 1), day(2024, 4, 10))
	bad := ProjectInput{Window: track.ProjectWindow{ProjectID: "broken"}}

	p := Predictor{Estimator: fixedEstimator{Estimate{0.5, 0.5}}, Now: now}
	forecasts := p.PredictAll([]ProjectInput{good, bad})

	if len(forecasts) != 2 {
		t.Fatalf("expected 2 forecasts, got %d", len(forecasts))
	}
	if forecasts[0].Fallback {
		t.Error("good project must not fall back")
	}

	fb := forecasts[1]
	if !fb.Fallback {
		t.Fatal("bad project must produce the fallback forecast")
	}
	if fb.Confidence != 50 || fb.RiskLevel != RiskMedium {
		t.Errorf("fallback = confidence %g risk %q, want 50/medium", fb.Confidence, fb.RiskLevel)
	}
	if !fb.PredictedCompletion.Equal(now.AddDate(0, 0, 30)) {
		t.Errorf("fallback completion = %v, want now + 30d", fb.PredictedCompletion)
	}
}

func TestPredictIdempotent(t *testing.T) {
	now := day(2024, 3, 11)
	in := projectInput(200, 50, day(2024, 3, 1), day(2024, 4, 10))
	p := Predictor{Estimator: VelocityEstimator{Now: now}, Now: now}

	a, errA := p.Predict(in)
	b, errB := p.Predict(in)
	if errA != nil || errB != nil {
		t.Fatalf("unexpected errors: %v %v", errA, errB)
	}
	if a != b {
		t.Errorf("identical inputs produced different forecasts:\n%+v\n%+v", a, b)
	}
}

func TestVelocityEstimatorDeterministicAndBounded(t *testing.T) {
	now := day(2024, 3, 11)
	target := day(2024, 4, 10)
	window := track.ProjectWindow{ProjectID: "p1", StartDate: day(2024, 3, 1), TargetDate: &target}

	var records []track.ProgressRecord
	for i := 0; i < 30; i++ {
		records = append(records, track.ProgressRecord{
			Quantity:    3,
			CompletedAt: day(2024, 3, 1).AddDate(0, 0, i%10).Add(9 * time.Hour),
		})
	}

	e := VelocityEstimator{Now: now}
	a := e.Predict(window, records)
	b := e.Predict(window, records)
	if a != b {
		t.Error("estimator must be deterministic for identical inputs")
	}
	if a.Prediction < 0 || a.Prediction > 1 || a.Confidence < 0 || a.Confidence > 1 {
		t.Errorf("estimate out of [0,1]: %+v", a)
	}

	sparse := e.Predict(window, records[:1])
	if sparse.Confidence >= a.Confidence {
		t.Errorf("sparse history confidence %g should be below rich history %g", sparse.Confidence, a.Confidence)
	}
}
