package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"pandemica/internal/sim"
)

// ErrRunNotFound is returned when no run has the requested id.
var ErrRunNotFound = errors.New("store: run not found")

// Run is the stored summary of one simulation.
type Run struct {
	ID        string
	CreatedAt time.Time
	Seed      uint64
	Steps     int
	Config    sim.Config
}

// RunRepository reads and writes runs.
type RunRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewRunRepository returns a repository backed by db, which must have been
// opened with InitSQLite.
func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db, now: time.Now}
}

// SaveRun stores cfg, seed and every step of history under a new id.
func (r *RunRepository) SaveRun(ctx context.Context, cfg sim.Config, seed uint64, history []sim.Counts) (string, error) {
	configBytes, err := json.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("failed to marshal config: %w", err)
	}
	id := uuid.NewString()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (run_id, created_at, seed, steps, config_json) VALUES (?, ?, ?, ?, ?)`,
		id, r.now().UTC().Format(time.RFC3339Nano), int64(seed), len(history), string(configBytes),
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO history (run_id, step, susceptible, exposed, infectious, recovered, deceased)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return "", fmt.Errorf("failed to prepare history insert: %w", err)
	}
	defer stmt.Close()
	for i, c := range history {
		_, err := stmt.ExecContext(ctx, id, i+1,
			c.Get(sim.Susceptible), c.Get(sim.Exposed), c.Get(sim.Infectious),
			c.Get(sim.Recovered), c.Get(sim.Deceased),
		)
		if err != nil {
			return "", fmt.Errorf("failed to insert step %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit run: %w", err)
	}
	return id, nil
}

// GetRun loads the summary of run id.
func (r *RunRepository) GetRun(ctx context.Context, id string) (Run, error) {
	query := `SELECT run_id, created_at, seed, steps, config_json FROM runs WHERE run_id = ?`
	run, err := scanRun(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, ErrRunNotFound
	}
	return run, err
}

// ListRuns returns every run, newest first.
func (r *RunRepository) ListRuns(ctx context.Context) ([]Run, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT run_id, created_at, seed, steps, config_json FROM runs ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// LoadHistory returns the per-step counts of run id in step order.
func (r *RunRepository) LoadHistory(ctx context.Context, id string) ([]sim.Counts, error) {
	if _, err := r.GetRun(ctx, id); err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT susceptible, exposed, infectious, recovered, deceased
		FROM history WHERE run_id = ? ORDER BY step ASC
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var history []sim.Counts
	for rows.Next() {
		var c sim.Counts
		err := rows.Scan(&c[sim.Susceptible], &c[sim.Exposed], &c[sim.Infectious], &c[sim.Recovered], &c[sim.Deceased])
		if err != nil {
			return nil, fmt.Errorf("failed to scan history: %w", err)
		}
		history = append(history, c)
	}
	return history, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (Run, error) {
	var (
		run        Run
		createdAt  string
		seed       int64
		configJSON string
	)
	if err := s.Scan(&run.ID, &createdAt, &seed, &run.Steps, &configJSON); err != nil {
		return Run{}, err
	}
	t, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return Run{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	run.CreatedAt = t
	run.Seed = uint64(seed)
	if err := json.Unmarshal([]byte(configJSON), &run.Config); err != nil {
		return Run{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return run, nil
}
