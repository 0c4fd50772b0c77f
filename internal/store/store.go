package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const currentVersion = 1

// Store is the SQLite-backed persistence collaborator. The report engine
// only ever reads from it; writes exist for ingestion and seeding.
type Store struct {
	db *sql.DB
}

// New opens (or creates) the SQLite database at dbPath and runs migrations.
func New(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dbPath != ":memory:" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// NewMemory creates an in-memory store for testing.
func NewMemory() (*Store, error) {
	return New(":memory:")
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	var version int
	if err := s.db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}

	if version >= currentVersion {
		return nil
	}

	if version < 1 {
		if err := s.migrateV1(); err != nil {
			return err
		}
	}

	_, err := s.db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentVersion))
	return err
}

func (s *Store) migrateV1() error {
	const ddl = `
	CREATE TABLE IF NOT EXISTS projects (
		id           TEXT PRIMARY KEY,
		name         TEXT NOT NULL,
		start_date   TEXT NOT NULL,
		target_date  TEXT,
		status       TEXT NOT NULL DEFAULT 'active'
	);

	CREATE TABLE IF NOT EXISTS assemblies (
		id              TEXT PRIMARY KEY,
		project_id      TEXT NOT NULL REFERENCES projects(id),
		stage_id        TEXT NOT NULL,
		total_quantity  INTEGER NOT NULL,
		weight_per_unit REAL
	);

	CREATE TABLE IF NOT EXISTS assignments (
		worker_id   TEXT NOT NULL,
		project_id  TEXT NOT NULL REFERENCES projects(id),
		stage_id    TEXT NOT NULL,
		PRIMARY KEY (worker_id, project_id, stage_id)
	);

	CREATE TABLE IF NOT EXISTS progress_records (
		id            TEXT PRIMARY KEY,
		worker_id     TEXT NOT NULL,
		assembly_id   TEXT NOT NULL REFERENCES assemblies(id),
		stage_id      TEXT NOT NULL,
		quantity      INTEGER NOT NULL,
		completed_at  TEXT NOT NULL,
		minutes_spent INTEGER,
		notes         TEXT NOT NULL DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_records_worker ON progress_records(worker_id);
	CREATE INDEX IF NOT EXISTS idx_records_completed ON progress_records(completed_at);
	CREATE INDEX IF NOT EXISTS idx_assemblies_project ON assemblies(project_id);
	`
	if _, err := s.db.Exec(ddl); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}
