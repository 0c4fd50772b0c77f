package report

import (
	"time"

	"fabline/internal/forecast"
	"fabline/internal/metrics"
	"fabline/internal/track"
)

// WorkerSummary is the JSON-serializable per-worker report object consumed
// by the UI layer.
type WorkerSummary struct {
	WorkerID         string               `json:"workerId"`
	ProjectID        string               `json:"projectId"`
	PerformanceScore float64              `json:"performanceScore"`
	Efficiency       float64              `json:"efficiency"`
	BurnoutRisk      float64              `json:"burnoutRisk"`
	IsOnTrack        bool                 `json:"isOnTrack"`
	Trend            metrics.Trend        `json:"trend"`
	DaysElapsed      float64              `json:"daysElapsed"`
	Totals           metrics.WorkerTotals `json:"totals"`
	Score            metrics.Score        `json:"score"`
	DailyProgress    []metrics.Bucket     `json:"dailyProgress"`
	WeeklyStats      []metrics.Bucket     `json:"weeklyStats"`
	MonthlyStats     []metrics.Bucket     `json:"monthlyStats"`
	Achievements     []string             `json:"achievements"`
	Improvements     []string             `json:"improvements"`
}

// ProjectSummary is the JSON-serializable per-project forecast object.
type ProjectSummary struct {
	ProjectID           string             `json:"projectId"`
	Name                string             `json:"name,omitempty"`
	CurrentProgress     float64            `json:"currentProgress"`
	ExpectedProgress    float64            `json:"expectedProgress"`
	RiskLevel           string             `json:"riskLevel"`
	ConfidenceLevel     float64            `json:"confidenceLevel"`
	PredictedCompletion time.Time          `json:"predictedCompletionDate"`
	Scenarios           forecast.Scenarios `json:"scenarios"`
	Progress            []metrics.Bucket   `json:"progress,omitempty"`
	Fallback            bool               `json:"fallback,omitempty"`
}

// Composer assembles worker and project summaries from the computed metrics.
type Composer struct {
	// Now is the reference time for all derived values; zero means time.Now().
	Now time.Time
}

// Worker builds the summary for one worker within a project window. The
// range [start, end] scopes the bucketed series; zero bounds default to the
// project window itself.
func (c Composer) Worker(totals metrics.WorkerTotals, window track.ProjectWindow, start, end time.Time) WorkerSummary {
	now := c.now()

	target := window.StartDate.AddDate(0, 0, metrics.DefaultHorizonDays)
	if window.TargetDate != nil {
		target = *window.TargetDate
	}
	totalDuration := metrics.CeilDays(window.StartDate, target)
	rawElapsed := metrics.CeilDays(window.StartDate, now)

	score := metrics.ComputeScore(metrics.ScoreInput{
		AssignedQuantity:  totals.AssignedQuantity,
		AssignedWeight:    totals.AssignedWeight,
		CompletedQuantity: totals.CompletedQuantity,
		CompletedWeight:   totals.CompletedWeight,
		WorkingDays:       totals.WorkingDays,
		TotalDurationDays: totalDuration,
		DaysElapsed:       rawElapsed,
	})

	trend := metrics.ClassifyTrend(totals.Records)
	efficiency := totals.Efficiency()
	burnout := metrics.BurnoutRisk(metrics.BurnoutInput{
		Records:    totals.Records,
		Efficiency: efficiency,
		Trend:      trend,
		Now:        now,
	})

	if start.IsZero() {
		start = window.StartDate
	}
	if end.IsZero() {
		end = now
	}
	dailyExpected := 0.0
	if totalDuration > 0 {
		dailyExpected = float64(totals.AssignedQuantity) / totalDuration
	}

	summary := WorkerSummary{
		WorkerID:         totals.WorkerID,
		ProjectID:        window.ProjectID,
		PerformanceScore: score.PerformanceScore,
		Efficiency:       efficiency,
		BurnoutRisk:      burnout.Risk,
		IsOnTrack:        score.IsOnTrack,
		Trend:            trend,
		DaysElapsed:      max(0, rawElapsed),
		Totals:           totals,
		Score:            score,
		DailyProgress:    metrics.NewReportWindow(start, end, metrics.BucketDay).Rollup(totals.Records, dailyExpected),
		WeeklyStats:      metrics.NewReportWindow(start, end, metrics.BucketWeek).Rollup(totals.Records, dailyExpected),
		MonthlyStats:     metrics.NewReportWindow(start, end, metrics.BucketMonth).Rollup(totals.Records, dailyExpected),
	}
	summary.Achievements = achievements(summary)
	summary.Improvements = improvements(summary)
	return summary
}

// Project builds the summary for one project from its forecast and the
// bucketed completed-vs-expected series.
func (c Composer) Project(window track.ProjectWindow, f forecast.Forecast, records []track.ProgressRecord, totalWork int) ProjectSummary {
	now := c.now()

	target := window.StartDate.AddDate(0, 0, metrics.DefaultHorizonDays)
	if window.TargetDate != nil {
		target = *window.TargetDate
	}

	var progress []metrics.Bucket
	if !window.StartDate.IsZero() {
		end := now
		if end.Before(window.StartDate) {
			end = window.StartDate
		}
		totalDuration := metrics.CeilDays(window.StartDate, target)
		dailyExpected := 0.0
		if totalDuration > 0 {
			dailyExpected = float64(totalWork) / totalDuration
		}
		progress = metrics.NewReportWindow(window.StartDate, end, metrics.BucketWeek).Rollup(records, dailyExpected)
	}

	return ProjectSummary{
		ProjectID:           window.ProjectID,
		Name:                window.Name,
		CurrentProgress:     f.CurrentProgress,
		ExpectedProgress:    f.ExpectedProgress,
		RiskLevel:           f.RiskLevel,
		ConfidenceLevel:     f.Confidence,
		PredictedCompletion: f.PredictedCompletion,
		Scenarios:           f.Scenarios,
		Progress:            progress,
		Fallback:            f.Fallback,
	}
}

// achievements derives the earned-recognition strings from computed metrics.
// Thresholds are fixed so repeated runs over the same inputs are identical.
func achievements(s WorkerSummary) []string {
	var out []string
	if s.PerformanceScore >= 85 {
		out = append(out, "performance score above 85")
	}
	if s.Score.ConsistencyBonus >= 16 {
		out = append(out, "logged work on most elapsed days")
	}
	if s.Score.CompletionRate >= 100 {
		out = append(out, "completed full assigned quantity")
	}
	if s.Trend == metrics.TrendImproving {
		out = append(out, "output trending upward")
	}
	return out
}

// improvements derives the suggested-focus strings from computed metrics.
func improvements(s WorkerSummary) []string {
	var out []string
	if s.PerformanceScore < 50 && s.Totals.CompletedQuantity > 0 {
		out = append(out, "daily output below the required rate")
	}
	if s.Score.ConsistencyBonus < 10 && s.Totals.CompletedQuantity > 0 {
		out = append(out, "work logged on few of the elapsed days")
	}
	if s.Trend == metrics.TrendDeclining {
		out = append(out, "recent output below earlier average")
	}
	if s.BurnoutRisk >= 60 {
		out = append(out, "high burnout risk: review overtime and weekend load")
	}
	return out
}

func (c Composer) now() time.Time {
	if c.Now.IsZero() {
		return time.Now()
	}
	return c.Now
}
