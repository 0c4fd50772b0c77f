package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"fabline/internal/track"
)

// Timestamps are persisted in this layout.
const timeLayout = time.RFC3339

// formatTime normalizes to UTC before formatting. Range filters compare the
// stored strings lexically, so every persisted and queried timestamp must
// carry the same offset for string order to equal instant order.
func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// Projects returns project windows, optionally filtered to one project id.
func (s *Store) Projects(ctx context.Context, projectID string) ([]track.ProjectWindow, error) {
	query := "SELECT id, name, start_date, target_date, status FROM projects"
	args := []any{}
	if projectID != "" {
		query += " WHERE id = ?"
		args = append(args, projectID)
	}
	query += " ORDER BY id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query projects: %w", err)
	}
	defer rows.Close()

	var windows []track.ProjectWindow
	for rows.Next() {
		var row track.ProjectRow
		var target sql.NullString
		if err := rows.Scan(&row.ProjectID, &row.Name, &row.StartDate, &target, &row.Status); err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		if target.Valid {
			row.TargetCompletionDate = target.String
		}

		window, err := track.NormalizeProject(row)
		if err != nil {
			log.Warn().Err(err).Str("project", row.ProjectID).Msg("skipping malformed project row")
			continue
		}
		windows = append(windows, window)
	}
	return windows, rows.Err()
}

// Assemblies returns assembly units, optionally filtered to one project id.
func (s *Store) Assemblies(ctx context.Context, projectID string) ([]track.AssemblyUnit, error) {
	query := "SELECT id, project_id, stage_id, total_quantity, weight_per_unit FROM assemblies"
	args := []any{}
	if projectID != "" {
		query += " WHERE project_id = ?"
		args = append(args, projectID)
	}
	query += " ORDER BY id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query assemblies: %w", err)
	}
	defer rows.Close()

	var units []track.AssemblyUnit
	for rows.Next() {
		var row track.AssemblyRow
		var weight sql.NullFloat64
		if err := rows.Scan(&row.ID, &row.ProjectID, &row.StageID, &row.TotalQuantity, &weight); err != nil {
			return nil, fmt.Errorf("scan assembly: %w", err)
		}
		if weight.Valid {
			row.WeightPerUnit = &weight.Float64
		}

		unit, err := track.NormalizeAssembly(row)
		if err != nil {
			log.Warn().Err(err).Str("assembly", row.ID).Msg("skipping malformed assembly row")
			continue
		}
		units = append(units, unit)
	}
	return units, rows.Err()
}

// Assignments returns worker/stage assignments, optionally filtered by
// project id.
func (s *Store) Assignments(ctx context.Context, projectID string) ([]track.Assignment, error) {
	query := "SELECT worker_id, project_id, stage_id FROM assignments"
	args := []any{}
	if projectID != "" {
		query += " WHERE project_id = ?"
		args = append(args, projectID)
	}
	query += " ORDER BY worker_id, stage_id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query assignments: %w", err)
	}
	defer rows.Close()

	var assignments []track.Assignment
	for rows.Next() {
		var row track.AssignmentRow
		if err := rows.Scan(&row.WorkerID, &row.ProjectID, &row.StageID); err != nil {
			return nil, fmt.Errorf("scan assignment: %w", err)
		}
		a, err := track.NormalizeAssignment(row)
		if err != nil {
			log.Warn().Err(err).Msg("skipping malformed assignment row")
			continue
		}
		assignments = append(assignments, a)
	}
	return assignments, rows.Err()
}

// ProgressRecords returns normalized progress records, optionally scoped to
// one project and a [start, end] completion-time range.
func (s *Store) ProgressRecords(ctx context.Context, projectID string, start, end time.Time) ([]track.ProgressRecord, error) {
	query := `SELECT r.worker_id, r.assembly_id, r.stage_id, r.quantity, r.completed_at, r.minutes_spent, r.notes
		FROM progress_records r`
	args := []any{}
	where := ""

	if projectID != "" {
		query += " JOIN assemblies a ON a.id = r.assembly_id"
		where = " WHERE a.project_id = ?"
		args = append(args, projectID)
	}
	if !start.IsZero() {
		where = andWhere(where) + " r.completed_at >= ?"
		args = append(args, formatTime(start))
	}
	if !end.IsZero() {
		where = andWhere(where) + " r.completed_at <= ?"
		args = append(args, formatTime(end))
	}
	query += where + " ORDER BY r.completed_at"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query progress records: %w", err)
	}
	defer rows.Close()

	var raw []track.ProgressRow
	for rows.Next() {
		var row track.ProgressRow
		var minutes sql.NullInt64
		if err := rows.Scan(&row.WorkerID, &row.AssemblyID, &row.StageID, &row.QuantityCompleted, &row.CompletionTimestamp, &minutes, &row.Notes); err != nil {
			return nil, fmt.Errorf("scan progress record: %w", err)
		}
		if minutes.Valid {
			m := int(minutes.Int64)
			row.MinutesSpent = &m
		}
		raw = append(raw, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	records, skipped := track.NormalizeProgressBatch(raw)
	if skipped > 0 {
		log.Warn().Int("skipped", skipped).Msg("dropped malformed progress rows")
	}
	return records, nil
}

func andWhere(where string) string {
	if where == "" {
		return " WHERE"
	}
	return where + " AND"
}

// Write-side helpers used by ingestion and the seeder.

func (s *Store) InsertProject(ctx context.Context, w track.ProjectWindow) error {
	var target any
	if w.TargetDate != nil {
		target = formatTime(*w.TargetDate)
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO projects (id, name, start_date, target_date, status) VALUES (?, ?, ?, ?, ?)",
		w.ProjectID, w.Name, formatTime(w.StartDate), target, w.Status)
	return err
}

func (s *Store) InsertAssembly(ctx context.Context, u track.AssemblyUnit) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO assemblies (id, project_id, stage_id, total_quantity, weight_per_unit) VALUES (?, ?, ?, ?, ?)",
		u.ID, u.ProjectID, u.StageID, u.TotalQuantity, u.WeightPerUnit)
	return err
}

func (s *Store) InsertAssignment(ctx context.Context, a track.Assignment) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO assignments (worker_id, project_id, stage_id) VALUES (?, ?, ?)",
		a.WorkerID, a.ProjectID, a.StageID)
	return err
}

func (s *Store) InsertProgressRecord(ctx context.Context, id string, r track.ProgressRecord) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO progress_records (id, worker_id, assembly_id, stage_id, quantity, completed_at, minutes_spent, notes) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		id, r.WorkerID, r.AssemblyID, r.StageID, r.Quantity, formatTime(r.CompletedAt), r.MinutesSpent, r.Notes)
	return err
}
