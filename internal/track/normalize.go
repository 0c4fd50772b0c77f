package track

import "fmt"

// NormalizeProgress reshapes a raw progress row into a canonical record.
// Missing MinutesSpent defaults to 0.
func NormalizeProgress(row ProgressRow) (ProgressRecord, error) {
	if row.WorkerID == "" {
		return ProgressRecord{}, fmt.Errorf("progress row missing workerId")
	}
	if row.AssemblyID == "" {
		return ProgressRecord{}, fmt.Errorf("progress row missing assemblyId")
	}
	if row.QuantityCompleted < 0 {
		return ProgressRecord{}, fmt.Errorf("progress row for %s: negative quantity %d", row.WorkerID, row.QuantityCompleted)
	}

	completedAt, err := ParseTime(row.CompletionTimestamp)
	if err != nil {
		return ProgressRecord{}, fmt.Errorf("progress row for %s: %w", row.WorkerID, err)
	}

	minutes := 0
	if row.MinutesSpent != nil {
		minutes = *row.MinutesSpent
		if minutes < 0 {
			return ProgressRecord{}, fmt.Errorf("progress row for %s: negative minutes %d", row.WorkerID, minutes)
		}
	}

	return ProgressRecord{
		WorkerID:     row.WorkerID,
		AssemblyID:   row.AssemblyID,
		StageID:      row.StageID,
		Quantity:     row.QuantityCompleted,
		CompletedAt:  completedAt,
		MinutesSpent: minutes,
		Notes:        row.Notes,
	}, nil
}

// NormalizeAssignment reshapes a raw assignment row.
func NormalizeAssignment(row AssignmentRow) (Assignment, error) {
	if row.WorkerID == "" || row.StageID == "" {
		return Assignment{}, fmt.Errorf("assignment row missing workerId or stageId")
	}
	return Assignment{
		WorkerID:  row.WorkerID,
		ProjectID: row.ProjectID,
		StageID:   row.StageID,
	}, nil
}

// NormalizeAssembly reshapes a raw assembly row. Missing WeightPerUnit
// defaults to 0.
func NormalizeAssembly(row AssemblyRow) (AssemblyUnit, error) {
	if row.ID == "" {
		return AssemblyUnit{}, fmt.Errorf("assembly row missing id")
	}
	if row.TotalQuantity <= 0 {
		return AssemblyUnit{}, fmt.Errorf("assembly %s: totalQuantity must be positive, got %d", row.ID, row.TotalQuantity)
	}
	weight := 0.0
	if row.WeightPerUnit != nil {
		weight = *row.WeightPerUnit
		if weight < 0 {
			return AssemblyUnit{}, fmt.Errorf("assembly %s: negative weightPerUnit %g", row.ID, weight)
		}
	}
	return AssemblyUnit{
		ID:            row.ID,
		ProjectID:     row.ProjectID,
		StageID:       row.StageID,
		TotalQuantity: row.TotalQuantity,
		WeightPerUnit: weight,
	}, nil
}

// NormalizeProject reshapes a raw project row. An absent target date maps to
// a nil TargetDate on the window.
func NormalizeProject(row ProjectRow) (ProjectWindow, error) {
	if row.ProjectID == "" {
		return ProjectWindow{}, fmt.Errorf("project row missing projectId")
	}
	start, err := ParseTime(row.StartDate)
	if err != nil {
		return ProjectWindow{}, fmt.Errorf("project %s: %w", row.ProjectID, err)
	}

	window := ProjectWindow{
		ProjectID: row.ProjectID,
		Name:      row.Name,
		StartDate: start,
		Status:    row.Status,
	}

	if row.TargetCompletionDate != "" {
		target, err := ParseTime(row.TargetCompletionDate)
		if err != nil {
			return ProjectWindow{}, fmt.Errorf("project %s: %w", row.ProjectID, err)
		}
		window.TargetDate = &target
	}

	return window, nil
}

// NormalizeProgressBatch normalizes a slice of progress rows, skipping rows
// that fail validation. Returns the clean records and the number skipped.
func NormalizeProgressBatch(rows []ProgressRow) ([]ProgressRecord, int) {
	records := make([]ProgressRecord, 0, len(rows))
	skipped := 0
	for _, row := range rows {
		rec, err := NormalizeProgress(row)
		if err != nil {
			skipped++
			continue
		}
		records = append(records, rec)
	}
	return records, skipped
}
