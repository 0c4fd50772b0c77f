package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"fabline/internal/track"
)

// Seed populates an empty database with a demo dataset: two projects, a
// handful of stages and assemblies, and six weeks of progress history ending
// at now. The work pattern is fixed relative to now so reports over the
// seeded data are reproducible within a day.
func (s *Store) Seed(ctx context.Context, now time.Time) error {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM projects").Scan(&count); err != nil {
		return fmt.Errorf("check existing data: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("database already contains %d projects, refusing to seed", count)
	}

	start := now.AddDate(0, 0, -42)
	targetA := now.AddDate(0, 0, 28)
	targetB := now.AddDate(0, 0, 56)

	projects := []track.ProjectWindow{
		{ProjectID: "hull-204", Name: "Hull Section 204", StartDate: start, TargetDate: &targetA, Status: "active"},
		{ProjectID: "frame-88", Name: "Frame Batch 88", StartDate: start.AddDate(0, 0, 14), TargetDate: &targetB, Status: "active"},
	}
	for _, p := range projects {
		if err := s.InsertProject(ctx, p); err != nil {
			return fmt.Errorf("seed project %s: %w", p.ProjectID, err)
		}
	}

	assemblies := []track.AssemblyUnit{
		{ID: uuid.NewString(), ProjectID: "hull-204", StageID: "cutting", TotalQuantity: 300, WeightPerUnit: 4.5},
		{ID: uuid.NewString(), ProjectID: "hull-204", StageID: "fabrication", TotalQuantity: 180, WeightPerUnit: 12},
		{ID: uuid.NewString(), ProjectID: "hull-204", StageID: "welding", TotalQuantity: 90, WeightPerUnit: 0},
		{ID: uuid.NewString(), ProjectID: "frame-88", StageID: "cutting", TotalQuantity: 150, WeightPerUnit: 2},
		{ID: uuid.NewString(), ProjectID: "frame-88", StageID: "assembly", TotalQuantity: 75, WeightPerUnit: 8},
	}
	for _, u := range assemblies {
		if err := s.InsertAssembly(ctx, u); err != nil {
			return fmt.Errorf("seed assembly: %w", err)
		}
	}

	assignments := []track.Assignment{
		{WorkerID: "w-ines", ProjectID: "hull-204", StageID: "cutting"},
		{WorkerID: "w-ines", ProjectID: "hull-204", StageID: "fabrication"},
		{WorkerID: "w-marco", ProjectID: "hull-204", StageID: "welding"},
		{WorkerID: "w-marco", ProjectID: "frame-88", StageID: "assembly"},
		{WorkerID: "w-tessa", ProjectID: "frame-88", StageID: "cutting"},
	}
	for _, a := range assignments {
		if err := s.InsertAssignment(ctx, a); err != nil {
			return fmt.Errorf("seed assignment: %w", err)
		}
	}

	// Work cadence per worker: steady weekday output for Ines, sparse
	// weekend-heavy output for Marco, ramping output for Tessa.
	type cadence struct {
		worker   string
		assembly track.AssemblyUnit
		qty      func(dayIdx int) int
		hour     int
		minutes  int
		skip     func(weekday time.Weekday) bool
	}
	cadences := []cadence{
		{
			worker: "w-ines", assembly: assemblies[0], hour: 9, minutes: 420,
			qty:  func(int) int { return 7 },
			skip: func(d time.Weekday) bool { return d == time.Saturday || d == time.Sunday },
		},
		{
			worker: "w-marco", assembly: assemblies[2], hour: 20, minutes: 540,
			qty:  func(int) int { return 2 },
			skip: func(d time.Weekday) bool { return d != time.Saturday && d != time.Sunday && d != time.Wednesday },
		},
		{
			worker: "w-tessa", assembly: assemblies[3], hour: 8, minutes: 450,
			qty:  func(dayIdx int) int { return 1 + dayIdx/10 },
			skip: func(d time.Weekday) bool { return d == time.Sunday },
		},
	}

	for _, c := range cadences {
		for dayIdx := 0; dayIdx < 42; dayIdx++ {
			at := start.AddDate(0, 0, dayIdx)
			if at.After(now) {
				break
			}
			if c.skip(at.Weekday()) {
				continue
			}
			rec := track.ProgressRecord{
				WorkerID:     c.worker,
				AssemblyID:   c.assembly.ID,
				StageID:      c.assembly.StageID,
				Quantity:     c.qty(dayIdx),
				CompletedAt:  time.Date(at.Year(), at.Month(), at.Day(), c.hour, 0, 0, 0, at.Location()),
				MinutesSpent: c.minutes,
			}
			if err := s.InsertProgressRecord(ctx, uuid.NewString(), rec); err != nil {
				return fmt.Errorf("seed progress record: %w", err)
			}
		}
	}

	return nil
}
