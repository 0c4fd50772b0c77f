package metrics

// DefaultHorizonDays is the planning horizon assumed for projects without a
// target completion date.
const DefaultHorizonDays = 90

// Score is a worker performance score with its component values retained so
// the caller can explain how the total was reached.
type Score struct {
	PerformanceScore float64 `json:"performanceScore"`
	IsOnTrack        bool    `json:"isOnTrack"`
	Ratio            float64 `json:"ratio"`
	TimeScore        float64 `json:"timeScore"`
	ConsistencyBonus float64 `json:"consistencyBonus"`
	CompletionRate   float64 `json:"completionRate"`
	CompletionBonus  float64 `json:"completionBonus"`
	WeightBonus      float64 `json:"weightBonus"`
}

// ScoreInput carries the aggregated totals and the project timing context.
// DaysElapsed is the raw ceiling of days since project start. It is used
// unfloored here; flooring it to zero before scoring would inflate scores in
// the first days of a project.
type ScoreInput struct {
	AssignedQuantity  int
	AssignedWeight    float64
	CompletedQuantity int
	CompletedWeight   float64
	WorkingDays       int
	TotalDurationDays float64
	DaysElapsed       float64
}

// ComputeScore converts aggregated totals into a 0-100 performance score and
// an on-track flag using the velocity-ratio formula.
func ComputeScore(in ScoreInput) Score {
	// No logged work in range: nothing to score.
	if in.WorkingDays == 0 && in.CompletedQuantity == 0 {
		return Score{}
	}

	if in.TotalDurationDays <= 0 || in.AssignedQuantity <= 0 {
		// dailyMinReq would be undefined; the worker cannot be on track
		// against a requirement that does not exist.
		return Score{}
	}

	elapsed := in.DaysElapsed
	if elapsed < 1 {
		elapsed = 1
	}

	dailyMinReq := float64(in.AssignedQuantity) / in.TotalDurationDays
	actualDailyAvg := float64(in.CompletedQuantity) / elapsed
	ratio := actualDailyAvg / dailyMinReq

	timeScore := bandTimeScore(ratio)

	consistencyRatio := float64(in.WorkingDays) / elapsed
	consistencyBonus := min(20, consistencyRatio*20)

	completionRate := float64(in.CompletedQuantity) / float64(in.AssignedQuantity) * 100
	completionBonus := min(30, completionRate*0.3)

	weightRatio := 1.0
	dailyWeightReq := in.AssignedWeight / in.TotalDurationDays
	if dailyWeightReq > 0 {
		weightRatio = (in.CompletedWeight / elapsed) / dailyWeightReq
	}
	weightBonus := min(25, weightRatio*25)

	total := Clamp(min(timeScore, 100)+consistencyBonus+completionBonus+weightBonus, 0, 100)

	return Score{
		PerformanceScore: total,
		IsOnTrack:        ratio >= 0.8,
		Ratio:            ratio,
		TimeScore:        timeScore,
		ConsistencyBonus: consistencyBonus,
		CompletionRate:   completionRate,
		CompletionBonus:  completionBonus,
		WeightBonus:      weightBonus,
	}
}

// bandTimeScore maps the velocity ratio to the banded 0-100 time score.
func bandTimeScore(ratio float64) float64 {
	switch {
	case ratio >= 1.2:
		return 100
	case ratio >= 1.0:
		return 80 + (ratio-1.0)*100
	case ratio >= 0.8:
		return 60 + (ratio-0.8)*100
	case ratio >= 0.6:
		return 40 + (ratio-0.6)*100
	default:
		return max(0, ratio*66.67)
	}
}
