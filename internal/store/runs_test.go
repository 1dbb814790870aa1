package store

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"testing"
	"time"

	"pandemica/internal/sim"
)

func newTestRepo(t *testing.T) *RunRepository {
	t.Helper()
	db, err := InitSQLite(filepath.Join(t.TempDir(), "db", "runs.db"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewRunRepository(db)
}

func TestSaveAndLoadRun(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	cfg := sim.DefaultConfig()
	cfg.Population = 4
	cfg.InitialInfected = 1
	history := []sim.Counts{{3, 0, 1, 0, 0}, {2, 1, 1, 0, 0}, {2, 0, 1, 0, 1}}

	id, err := repo.SaveRun(ctx, cfg, math.MaxUint64, history)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	run, err := repo.GetRun(ctx, id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if run.Seed != math.MaxUint64 || run.Steps != 3 || run.Config != cfg {
		t.Fatalf("unexpected run %+v", run)
	}
	got, err := repo.LoadHistory(ctx, id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != len(history) {
		t.Fatalf("expected %d steps, got %d", len(history), len(got))
	}
	for i := range history {
		if got[i] != history[i] {
			t.Fatalf("step %d: expected %v, got %v", i+1, history[i], got[i])
		}
	}
}

func TestListRunsNewestFirst(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	var ids []string
	for i := 0; i < 3; i++ {
		at := base.Add(time.Duration(i) * time.Minute)
		repo.now = func() time.Time { return at }
		id, err := repo.SaveRun(ctx, sim.DefaultConfig(), uint64(i), nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		ids = append(ids, id)
	}

	runs, err := repo.ListRuns(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("expected 3 runs, got %d", len(runs))
	}
	if runs[0].ID != ids[2] || runs[2].ID != ids[0] {
		t.Fatalf("expected newest first, got %s, %s, %s", runs[0].ID, runs[1].ID, runs[2].ID)
	}
	if !runs[0].CreatedAt.Equal(base.Add(2 * time.Minute)) {
		t.Fatalf("unexpected created_at %v", runs[0].CreatedAt)
	}
}

func TestUnknownRun(t *testing.T) {
	repo := newTestRepo(t)
	if _, err := repo.GetRun(context.Background(), "missing"); !errors.Is(err, ErrRunNotFound) {
		t.Fatalf("expected ErrRunNotFound, got %v", err)
	}
	if _, err := repo.LoadHistory(context.Background(), "missing"); !errors.Is(err, ErrRunNotFound) {
		t.Fatalf("expected ErrRunNotFound, got %v", err)
	}
}
