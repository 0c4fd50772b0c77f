package track

import "time"

// ProgressRecord is one discrete unit of completed work logged by a worker.
// Immutable once created.
type ProgressRecord struct {
	WorkerID     string    `json:"workerId"`
	AssemblyID   string    `json:"assemblyId"`
	StageID      string    `json:"stageId"`
	Quantity     int       `json:"quantityCompleted"`
	CompletedAt  time.Time `json:"completionTimestamp"`
	MinutesSpent int       `json:"minutesSpent"`
	Notes        string    `json:"notes,omitempty"`
}

// Assignment grants a worker eligibility to log progress against assemblies
// in a stage. Many-to-many between workers and stages.
type Assignment struct {
	WorkerID  string `json:"workerId"`
	ProjectID string `json:"projectId"`
	StageID   string `json:"stageId"`
}

// AssemblyUnit is a quantity of a specific part type to be produced within a
// stage. TotalQuantity * WeightPerUnit is the unit's total mass.
type AssemblyUnit struct {
	ID            string  `json:"id"`
	ProjectID     string  `json:"projectId"`
	StageID       string  `json:"stageId"`
	TotalQuantity int     `json:"totalQuantity"`
	WeightPerUnit float64 `json:"weightPerUnit"`
}

// ProjectWindow defines the duration used for all expected-rate calculations.
// TargetDate may be nil; duration-based formulas then degrade to a default
// horizon from StartDate.
type ProjectWindow struct {
	ProjectID  string     `json:"projectId"`
	Name       string     `json:"name,omitempty"`
	StartDate  time.Time  `json:"startDate"`
	TargetDate *time.Time `json:"targetCompletionDate,omitempty"`
	Status     string     `json:"status"`
}

// DayKey returns the calendar-date key for a timestamp, used wherever the
// model counts distinct working days.
func DayKey(t time.Time) string {
	return t.Format("2006-01-02")
}
