package sim

import (
	"errors"
	"testing"
)

func TestDefaultConfigIsValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("expected default config to be valid, got %v", err)
	}
}

func TestValidateRejects(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"negative population", func(c *Config) { c.Population = -1 }, "number_of_agents"},
		{"too many infected", func(c *Config) { c.InitialInfected = c.Population + 1 }, "initial_infected"},
		{"probability above one", func(c *Config) { c.InfectionRate = 1.5 }, "infection_rate"},
		{"negative probability", func(c *Config) { c.QuarantineVisitProba = -0.1 }, "quarantine_visit_proba"},
		{"zero period", func(c *Config) { c.IncubationPeriod = 0 }, "incubation_period"},
		{"negative radius", func(c *Config) { c.InfectionRadius = -5 }, "infection_radius"},
		{"zero repulsion radius", func(c *Config) { c.RepulsionRadius = 0 }, "social_distancing_repulsion_radius"},
		{"negative force", func(c *Config) { c.RepulsionForce = -1 }, "social_distancing_repulsion_force"},
		{"board too small", func(c *Config) { c.Width = 120 }, "width/height"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(&cfg)

			err := cfg.Validate()
			var cfgErr *ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("expected a ConfigError, got %v", err)
			}
			if cfgErr.Field != tc.field {
				t.Fatalf("expected field %q, got %q", tc.field, cfgErr.Field)
			}
		})
	}
}

func TestValidateDoesNotClamp(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MortalityRate = 2
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error")
	}
	if cfg.MortalityRate != 2 {
		t.Fatalf("expected config to be left untouched, got %v", cfg.MortalityRate)
	}
}

func TestFreeRoamSizeShrinksForQuarantine(t *testing.T) {
	cfg := DefaultConfig()
	w, h := cfg.FreeRoamSize()
	if w != 650 || h != 650 {
		t.Fatalf("expected 650x650 free-roam area, got %vx%v", w, h)
	}

	cfg.Quarantine = false
	w, h = cfg.FreeRoamSize()
	if w != 800 || h != 800 {
		t.Fatalf("expected full board without quarantine, got %vx%v", w, h)
	}
}
