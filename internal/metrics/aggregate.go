package metrics

import (
	"sort"
	"time"

	"fabline/internal/track"
)

// WorkerTotals holds the per-worker fold of assignments, assemblies and
// progress records. Records is the worker's in-range log in chronological
// order, kept for the downstream trend and burnout calculations.
type WorkerTotals struct {
	WorkerID          string                 `json:"workerId"`
	AssignedQuantity  int                    `json:"assignedQuantity"`
	AssignedWeight    float64                `json:"assignedWeight"`
	CompletedQuantity int                    `json:"completedQuantity"`
	CompletedWeight   float64                `json:"completedWeight"`
	WorkingDays       int                    `json:"workingDays"`
	Records           []track.ProgressRecord `json:"-"`
}

// Efficiency is completed quantity per distinct working day.
func (t WorkerTotals) Efficiency() float64 {
	days := t.WorkingDays
	if days < 1 {
		days = 1
	}
	return float64(t.CompletedQuantity) / float64(days)
}

// Aggregate folds normalized records into per-worker totals. The optional
// [start, end] filter applies to record completion timestamps; a zero bound
// leaves that side open. Workers without any assignment are excluded: that is
// a legitimate not-participating state, not an error.
func Aggregate(records []track.ProgressRecord, assignments []track.Assignment, assemblies []track.AssemblyUnit, start, end time.Time) []WorkerTotals {
	// Pass 1: build indexes. Stage ids repeat across projects, so assignments
	// key on the (project, stage) pair.
	stagesByWorker := make(map[string]map[stageKey]bool)
	for _, a := range assignments {
		if stagesByWorker[a.WorkerID] == nil {
			stagesByWorker[a.WorkerID] = make(map[stageKey]bool)
		}
		stagesByWorker[a.WorkerID][stageKey{a.ProjectID, a.StageID}] = true
	}

	weightByAssembly := make(map[string]float64)
	for _, u := range assemblies {
		weightByAssembly[u.ID] = u.WeightPerUnit
	}

	recordsByWorker := make(map[string][]track.ProgressRecord)
	for _, r := range records {
		if !inRange(r.CompletedAt, start, end) {
			continue
		}
		recordsByWorker[r.WorkerID] = append(recordsByWorker[r.WorkerID], r)
	}

	// Pass 2: map each assigned worker to an immutable totals struct.
	workers := make([]string, 0, len(stagesByWorker))
	for id := range stagesByWorker {
		workers = append(workers, id)
	}
	sort.Strings(workers)

	totals := make([]WorkerTotals, 0, len(workers))
	for _, id := range workers {
		stages := stagesByWorker[id]
		t := WorkerTotals{WorkerID: id}

		for _, u := range assemblies {
			if !stages[stageKey{u.ProjectID, u.StageID}] {
				continue
			}
			t.AssignedQuantity += u.TotalQuantity
			t.AssignedWeight += float64(u.TotalQuantity) * u.WeightPerUnit
		}

		workerRecords := recordsByWorker[id]
		sort.SliceStable(workerRecords, func(i, j int) bool {
			return workerRecords[i].CompletedAt.Before(workerRecords[j].CompletedAt)
		})

		days := make(map[string]bool)
		for _, r := range workerRecords {
			t.CompletedQuantity += r.Quantity
			t.CompletedWeight += float64(r.Quantity) * weightByAssembly[r.AssemblyID]
			days[track.DayKey(r.CompletedAt)] = true
		}
		t.WorkingDays = len(days)
		t.Records = workerRecords

		totals = append(totals, t)
	}

	return totals
}

type stageKey struct {
	projectID string
	stageID   string
}

func inRange(t, start, end time.Time) bool {
	if !start.IsZero() && t.Before(start) {
		return false
	}
	if !end.IsZero() && t.After(end) {
		return false
	}
	return true
}
