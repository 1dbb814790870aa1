package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"pandemica/internal/logger"
	"pandemica/internal/params"
	"pandemica/internal/store"
)

func TestRunWritesOutputs(t *testing.T) {
	dir := t.TempDir()
	paramsPath := filepath.Join(dir, "in.json")
	if err := os.WriteFile(paramsPath, []byte(`{"number_of_agents": 50, "initial_infected": 5}`), 0644); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	opts := options{
		paramsPath: paramsPath,
		steps:      12,
		seed:       21,
		outDir:     filepath.Join(dir, "out"),
		video:      true,
		videoScale: 0.25,
		fps:        10,
		dbPath:     filepath.Join(dir, "runs.db"),
	}

	if err := run(context.Background(), opts, logger.Discard()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, name := range []string{"history.csv", "state_history.png", "rates.png", "distributions.png", "trace.avi", "parameters.json"} {
		info, err := os.Stat(filepath.Join(opts.outDir, name))
		if err != nil {
			t.Fatalf("expected %s: %v", name, err)
		}
		if info.Size() == 0 {
			t.Fatalf("expected %s to be non-empty", name)
		}
	}

	cfg, err := params.Load(filepath.Join(opts.outDir, "parameters.json"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Population != 50 || cfg.Seed != 21 {
		t.Fatalf("expected saved parameters to match the run, got %+v", cfg)
	}

	db, err := store.InitSQLite(opts.dbPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer db.Close()
	runs, err := store.NewRunRepository(db).ListRuns(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(runs) != 1 || runs[0].Steps != 12 || runs[0].Seed != 21 {
		t.Fatalf("expected one recorded run of 12 steps, got %+v", runs)
	}
}

func TestRunCancelledWritesPartialResults(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	opts := options{steps: 100, seed: 3, outDir: t.TempDir()}

	if err := run(ctx, opts, logger.Discard()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(opts.outDir, "history.csv")); err != nil {
		t.Fatalf("expected history.csv: %v", err)
	}
	if _, err := os.Stat(filepath.Join(opts.outDir, "state_history.png")); !os.IsNotExist(err) {
		t.Fatalf("expected no state history chart for an empty run, got %v", err)
	}
}
