package track

import (
	"fmt"
	"time"
)

// Raw row shapes as they arrive from the store or an import file. Timestamps
// are strings and optional numerics are pointers so that absent fields are
// distinguishable from zero values.

// ProgressRow is a raw progress-record row.
type ProgressRow struct {
	WorkerID            string `json:"workerId"`
	AssemblyID          string `json:"assemblyId"`
	StageID             string `json:"stageId"`
	QuantityCompleted   int    `json:"quantityCompleted"`
	CompletionTimestamp string `json:"completionTimestamp"`
	MinutesSpent        *int   `json:"minutesSpent,omitempty"`
	Notes               string `json:"notes,omitempty"`
}

// AssignmentRow is a raw assignment row.
type AssignmentRow struct {
	WorkerID  string `json:"workerId"`
	ProjectID string `json:"projectId"`
	StageID   string `json:"stageId"`
}

// AssemblyRow is a raw assembly-definition row.
type AssemblyRow struct {
	ID            string   `json:"id"`
	ProjectID     string   `json:"projectId"`
	StageID       string   `json:"stageId"`
	TotalQuantity int      `json:"totalQuantity"`
	WeightPerUnit *float64 `json:"weightPerUnit,omitempty"`
}

// ProjectRow is a raw project-window row.
type ProjectRow struct {
	ProjectID            string `json:"projectId"`
	Name                 string `json:"name,omitempty"`
	StartDate            string `json:"startDate"`
	TargetCompletionDate string `json:"targetCompletionDate,omitempty"`
	Status               string `json:"status"`
}

// timeLayouts lists the accepted timestamp formats, most specific first.
var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.000-0700",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTime parses a raw timestamp string against the accepted layouts.
func ParseTime(s string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}
