package report

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"fabline/internal/forecast"
	"fabline/internal/metrics"
	"fabline/internal/track"
)

// Store is the read-only persistence collaborator. An empty projectID means
// all projects; zero time bounds leave the range open. The engine never
// writes.
type Store interface {
	Projects(ctx context.Context, projectID string) ([]track.ProjectWindow, error)
	Assemblies(ctx context.Context, projectID string) ([]track.AssemblyUnit, error)
	Assignments(ctx context.Context, projectID string) ([]track.Assignment, error)
	ProgressRecords(ctx context.Context, projectID string, start, end time.Time) ([]track.ProgressRecord, error)
}

// Engine drives a report request: one parallel batch read from the store,
// then a single-threaded fold over the fetched slices. It holds no mutable
// state between invocations; identical inputs and an identical Now yield
// identical reports.
type Engine struct {
	store     Store
	estimator forecast.Estimator
	now       func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithEstimator replaces the default velocity estimator.
func WithEstimator(e forecast.Estimator) Option {
	return func(eng *Engine) { eng.estimator = e }
}

// WithNow pins the reference time, mainly for tests.
func WithNow(now func() time.Time) Option {
	return func(eng *Engine) { eng.now = now }
}

// NewEngine creates a report engine over the given store.
func NewEngine(store Store, opts ...Option) *Engine {
	eng := &Engine{
		store: store,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(eng)
	}
	return eng
}

// estimatorAt resolves the estimator for one report run. The default
// velocity estimator is built here so it shares the run's reference time
// with every other derived value.
func (e *Engine) estimatorAt(now time.Time) forecast.Estimator {
	if e.estimator != nil {
		return e.estimator
	}
	return forecast.VelocityEstimator{Now: now}
}

// dataset binds one batch read. The four entity types are independent and
// read-only, so the fetches run concurrently.
type dataset struct {
	projects    []track.ProjectWindow
	assemblies  []track.AssemblyUnit
	assignments []track.Assignment
	records     []track.ProgressRecord
}

func (e *Engine) fetch(ctx context.Context, projectID string, start, end time.Time) (*dataset, error) {
	var ds dataset
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		ds.projects, err = e.store.Projects(ctx, projectID)
		return err
	})
	g.Go(func() error {
		var err error
		ds.assemblies, err = e.store.Assemblies(ctx, projectID)
		return err
	})
	g.Go(func() error {
		var err error
		ds.assignments, err = e.store.Assignments(ctx, projectID)
		return err
	})
	g.Go(func() error {
		var err error
		ds.records, err = e.store.ProgressRecords(ctx, projectID, start, end)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("batch read: %w", err)
	}
	return &ds, nil
}

// WorkerReport computes per-worker summaries. With an empty projectID every
// project is reported; each summary is scoped to its project's window.
func (e *Engine) WorkerReport(ctx context.Context, projectID string, start, end time.Time) ([]WorkerSummary, error) {
	ds, err := e.fetch(ctx, projectID, start, end)
	if err != nil {
		return nil, err
	}

	now := e.now()
	composer := Composer{Now: now}
	summaries := make([]WorkerSummary, 0)

	for _, window := range ds.projects {
		assemblies := filterAssemblies(ds.assemblies, window.ProjectID)
		assignments := filterAssignments(ds.assignments, window.ProjectID)
		records := filterRecords(ds.records, assemblies)

		totals := metrics.Aggregate(records, assignments, assemblies, start, end)
		for _, t := range totals {
			summaries = append(summaries, composer.Worker(t, window, start, end))
		}
	}

	log.Debug().
		Str("project", projectID).
		Int("workers", len(summaries)).
		Msg("worker report composed")
	return summaries, nil
}

// ProjectReport computes forecasts for each fetched project. Projects whose
// computation fails get the documented fallback summary; the batch always
// completes.
func (e *Engine) ProjectReport(ctx context.Context, projectID string) ([]ProjectSummary, error) {
	ds, err := e.fetch(ctx, projectID, time.Time{}, time.Time{})
	if err != nil {
		return nil, err
	}

	now := e.now()
	predictor := forecast.Predictor{Estimator: e.estimatorAt(now), Now: now}
	composer := Composer{Now: now}

	inputs := make([]forecast.ProjectInput, 0, len(ds.projects))
	for _, window := range ds.projects {
		assemblies := filterAssemblies(ds.assemblies, window.ProjectID)
		inputs = append(inputs, forecast.ProjectInput{
			Window:     window,
			Assemblies: assemblies,
			Records:    filterRecords(ds.records, assemblies),
		})
	}
	forecasts := predictor.PredictAll(inputs)

	summaries := make([]ProjectSummary, 0, len(inputs))
	for i, in := range inputs {
		if forecasts[i].Fallback {
			log.Warn().Str("project", in.Window.ProjectID).Msg("forecast failed, substituting fallback")
		}
		totalWork := 0
		for _, u := range in.Assemblies {
			totalWork += u.TotalQuantity
		}
		summaries = append(summaries, composer.Project(in.Window, forecasts[i], in.Records, totalWork))
	}

	log.Debug().
		Str("project", projectID).
		Int("projects", len(summaries)).
		Msg("project report composed")
	return summaries, nil
}

func filterAssemblies(units []track.AssemblyUnit, projectID string) []track.AssemblyUnit {
	out := make([]track.AssemblyUnit, 0, len(units))
	for _, u := range units {
		if u.ProjectID == projectID {
			out = append(out, u)
		}
	}
	return out
}

func filterAssignments(assignments []track.Assignment, projectID string) []track.Assignment {
	out := make([]track.Assignment, 0, len(assignments))
	for _, a := range assignments {
		if a.ProjectID == projectID {
			out = append(out, a)
		}
	}
	return out
}

// filterRecords keeps records whose assembly belongs to the project. Records
// against unknown assemblies are dropped here rather than trusted, since the
// write-side assignment check lives outside this engine.
func filterRecords(records []track.ProgressRecord, assemblies []track.AssemblyUnit) []track.ProgressRecord {
	ids := make(map[string]bool, len(assemblies))
	for _, u := range assemblies {
		ids[u.ID] = true
	}
	out := make([]track.ProgressRecord, 0, len(records))
	for _, r := range records {
		if ids[r.AssemblyID] {
			out = append(out, r)
		}
	}
	return out
}
