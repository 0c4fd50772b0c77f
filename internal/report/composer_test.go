package report

import (
	"slices"
	"testing"
	"time"

	"fabline/internal/metrics"
	"fabline/internal/track"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func strongWorkerTotals(start time.Time) metrics.WorkerTotals {
	var records []track.ProgressRecord
	for i := 0; i < 10; i++ {
		records = append(records, track.ProgressRecord{
			WorkerID:     "w1",
			AssemblyID:   "a1",
			StageID:      "s1",
			Quantity:     12,
			CompletedAt:  start.AddDate(0, 0, i).Add(9 * time.Hour),
			MinutesSpent: 420,
		})
	}
	return metrics.WorkerTotals{
		WorkerID:          "w1",
		AssignedQuantity:  200,
		CompletedQuantity: 120,
		WorkingDays:       10,
		Records:           records,
	}
}

func TestComposerWorkerSummary(t *testing.T) {
	start := day(2024, 3, 1)
	target := start.AddDate(0, 0, 20)
	window := track.ProjectWindow{ProjectID: "p1", StartDate: start, TargetDate: &target}
	now := start.AddDate(0, 0, 10)

	c := Composer{Now: now}
	s := c.Worker(strongWorkerTotals(start), window, start, now)

	if s.WorkerID != "w1" || s.ProjectID != "p1" {
		t.Errorf("identity fields wrong: %+v", s)
	}
	// 120 done in 10 elapsed days against a requirement of 10/day.
	if !s.IsOnTrack {
		t.Error("worker at ratio 1.2 must be on track")
	}
	if s.PerformanceScore < 85 || s.PerformanceScore > 100 {
		t.Errorf("PerformanceScore = %g, want high", s.PerformanceScore)
	}
	if s.Efficiency != 12 {
		t.Errorf("Efficiency = %g, want 12", s.Efficiency)
	}
	if s.DaysElapsed != 10 {
		t.Errorf("DaysElapsed = %g, want 10", s.DaysElapsed)
	}
	if len(s.DailyProgress) != 11 {
		t.Errorf("got %d daily buckets for an 11-day inclusive range", len(s.DailyProgress))
	}
	if len(s.WeeklyStats) != 2 {
		t.Errorf("got %d weekly buckets, want 2", len(s.WeeklyStats))
	}
	if len(s.MonthlyStats) != 1 {
		t.Errorf("got %d monthly buckets, want 1", len(s.MonthlyStats))
	}
	if len(s.Achievements) == 0 {
		t.Error("a strong worker should earn achievements")
	}
	if slices.Contains(s.Improvements, "recent output below earlier average") {
		t.Error("steady output must not be flagged as declining")
	}
}

func TestComposerWorkerZeroRecords(t *testing.T) {
	start := day(2024, 3, 1)
	target := start.AddDate(0, 0, 20)
	window := track.ProjectWindow{ProjectID: "p1", StartDate: start, TargetDate: &target}

	c := Composer{Now: start.AddDate(0, 0, 10)}
	s := c.Worker(metrics.WorkerTotals{WorkerID: "idle", AssignedQuantity: 100}, window, start, time.Time{})

	if s.PerformanceScore != 0 {
		t.Errorf("PerformanceScore = %g, want 0", s.PerformanceScore)
	}
	if s.Efficiency != 0 {
		t.Errorf("Efficiency = %g, want 0", s.Efficiency)
	}
	if s.BurnoutRisk != 0 {
		t.Errorf("BurnoutRisk = %g, want 0", s.BurnoutRisk)
	}
	if s.IsOnTrack {
		t.Error("idle worker must not be on track")
	}
}

func TestComposerWorkerReportingFloor(t *testing.T) {
	// Project starting in the future: reported elapsed days floor at 0.
	start := day(2024, 3, 20)
	target := start.AddDate(0, 0, 20)
	window := track.ProjectWindow{ProjectID: "p1", StartDate: start, TargetDate: &target}

	c := Composer{Now: day(2024, 3, 1)}
	s := c.Worker(metrics.WorkerTotals{WorkerID: "w1", AssignedQuantity: 100}, window, start, start)
	if s.DaysElapsed != 0 {
		t.Errorf("DaysElapsed = %g, want floor 0", s.DaysElapsed)
	}
}

func TestComposerDeterministic(t *testing.T) {
	start := day(2024, 3, 1)
	target := start.AddDate(0, 0, 20)
	window := track.ProjectWindow{ProjectID: "p1", StartDate: start, TargetDate: &target}
	now := start.AddDate(0, 0, 10)
	totals := strongWorkerTotals(start)

	c := Composer{Now: now}
	a := c.Worker(totals, window, start, now)
	b := c.Worker(totals, window, start, now)

	if a.PerformanceScore != b.PerformanceScore || a.BurnoutRisk != b.BurnoutRisk {
		t.Error("identical inputs must produce identical scores")
	}
	if !slices.Equal(a.Achievements, b.Achievements) || !slices.Equal(a.Improvements, b.Improvements) {
		t.Error("derived strings must be deterministic")
	}
}

func TestImprovementsForStrugglingWorker(t *testing.T) {
	start := day(2024, 3, 1)
	target := start.AddDate(0, 0, 20)
	window := track.ProjectWindow{ProjectID: "p1", StartDate: start, TargetDate: &target}
	now := start.AddDate(0, 0, 15)

	// Two weekend log entries in 15 days, well behind the required pace.
	totals := metrics.WorkerTotals{
		WorkerID:          "w2",
		AssignedQuantity:  300,
		CompletedQuantity: 6,
		WorkingDays:       2,
		Records: []track.ProgressRecord{
			{WorkerID: "w2", Quantity: 3, CompletedAt: day(2024, 3, 2).Add(21 * time.Hour), MinutesSpent: 600},
			{WorkerID: "w2", Quantity: 3, CompletedAt: day(2024, 3, 9).Add(22 * time.Hour), MinutesSpent: 600},
		},
	}

	c := Composer{Now: now}
	s := c.Worker(totals, window, start, now)

	if s.IsOnTrack {
		t.Error("worker far behind pace must not be on track")
	}
	if len(s.Improvements) == 0 {
		t.Error("struggling worker should receive improvement suggestions")
	}
	if !slices.Contains(s.Improvements, "work logged on few of the elapsed days") {
		t.Errorf("expected consistency suggestion, got %v", s.Improvements)
	}
}
