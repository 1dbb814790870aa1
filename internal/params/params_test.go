package params

import (
	"path/filepath"
	"strings"
	"testing"

	"pandemica/internal/sim"
)

func TestDecodePartialOverlaysDefaults(t *testing.T) {
	input := `{"number_of_agents": 250, "infection_rate": 0.12, "initial_infected": 4, "recovery_period": 21}`

	cfg, err := Decode(strings.NewReader(input), sim.DefaultConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Population != 250 || cfg.InfectionRate != 0.12 || cfg.InitialInfected != 4 || cfg.RecoveryPeriod != 21 {
		t.Fatalf("expected file values to apply, got %+v", cfg)
	}
	if cfg.Width != sim.DefaultConfig().Width {
		t.Fatalf("expected unspecified width to keep its default, got %v", cfg.Width)
	}
}

func TestDecodeRejectsUnknownKeys(t *testing.T) {
	if _, err := Decode(strings.NewReader(`{"infecton_rate": 0.2}`), sim.DefaultConfig()); err == nil {
		t.Fatal("expected an error for an unknown key")
	}
}

func TestSaveThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "parameters.json")
	cfg := sim.DefaultConfig()
	cfg.Quarantine = false
	cfg.Seed = 77

	if err := Save(path, cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loaded != cfg {
		t.Fatalf("expected %+v, got %+v", cfg, loaded)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}
