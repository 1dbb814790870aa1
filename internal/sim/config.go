package sim

import (
	"errors"
	"fmt"
)

// Config bundles every parameter of a run. It is read once by New and never
// mutated afterwards.
type Config struct {
	Population      int `json:"number_of_agents"`
	InitialInfected int `json:"initial_infected"`

	InfectionRate      float64 `json:"infection_rate"`
	IncubationPeriod   int     `json:"incubation_period"`
	RecoveryRate       float64 `json:"recovery_rate"`
	RecoveryPeriod     int     `json:"recovery_period"`
	MortalityRate      float64 `json:"mortality_rate"`
	MortalityPeriod    int     `json:"mortality_period"`
	ImmunityLossRate   float64 `json:"immunity_loss_rate"`
	ImmunityLossPeriod int     `json:"immunity_loss_period"`

	Width                float64 `json:"width"`
	Height               float64 `json:"height"`
	InfectionRadius      float64 `json:"infection_radius"`
	ChangeDirectionProba float64 `json:"change_direction_proba"`

	CentralLocations          int     `json:"num_central_locations"`
	CentralLocationSize       float64 `json:"central_location_size"`
	CentralLocationVisitProba float64 `json:"central_location_visit_proba"`
	CentralLocationDwell      int     `json:"frames_spent_in_central_location"`

	Quarantine           bool    `json:"quarantine"`
	QuarantineVisitProba float64 `json:"quarantine_visit_proba"`

	RepulsionForce  float64 `json:"social_distancing_repulsion_force"`
	RepulsionRadius float64 `json:"social_distancing_repulsion_radius"`

	Demographics     bool    `json:"demographics"`
	MaxAge           int     `json:"max_age"`
	MaskWearingProba float64 `json:"mask_wearing_proba"`
	VaccinatedProba  float64 `json:"vaccinated_proba"`

	AgentSpeed        float64 `json:"agent_speed"`
	AgentRadius       float64 `json:"agent_radius"`
	QuickTravelFrames int     `json:"quick_travel_frames"`

	// Seed initializes the random source. Zero seeds from the wall clock.
	Seed uint64 `json:"seed"`
}

// DefaultConfig returns the parameter set used when nothing else is supplied.
func DefaultConfig() Config {
	return Config{
		Population:      1000,
		InitialInfected: 20,

		InfectionRate:      0.03,
		IncubationPeriod:   15,
		RecoveryRate:       0.3,
		RecoveryPeriod:     30,
		MortalityRate:      0.007,
		MortalityPeriod:    50,
		ImmunityLossRate:   0.02,
		ImmunityLossPeriod: 30,

		Width:                800,
		Height:               800,
		InfectionRadius:      25,
		ChangeDirectionProba: 0.1,

		CentralLocations:          1,
		CentralLocationSize:       100,
		CentralLocationVisitProba: 0.005,
		CentralLocationDwell:      50,

		Quarantine:           true,
		QuarantineVisitProba: 0.04,

		RepulsionForce:  0,
		RepulsionRadius: 35,

		Demographics:     true,
		MaxAge:           90,
		MaskWearingProba: 0.7,
		VaccinatedProba:  0.5,

		AgentSpeed:        2,
		AgentRadius:       5,
		QuickTravelFrames: 15,
	}
}

// ConfigError describes a single rejected configuration field.
type ConfigError struct {
	Field  string
	Reason string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid config %s: %s", e.Field, e.Reason)
}

// FreeRoamSize returns the dimensions of the area agents roam in. With
// quarantine enabled the board shrinks to leave room for the quarantine square
// plus a margin of two infection radii.
func (c Config) FreeRoamSize() (width, height float64) {
	if !c.Quarantine {
		return c.Width, c.Height
	}
	margin := c.CentralLocationSize + 2*c.InfectionRadius
	return c.Width - margin, c.Height - margin
}

// Validate reports every problem with the configuration. Values are never
// adjusted to make them fit.
func (c Config) Validate() error {
	var errs []error
	reject := func(field, reason string) {
		errs = append(errs, &ConfigError{Field: field, Reason: reason})
	}

	if c.Population < 0 {
		reject("number_of_agents", "must not be negative")
	}
	if c.InitialInfected < 0 {
		reject("initial_infected", "must not be negative")
	} else if c.InitialInfected > c.Population {
		reject("initial_infected", "exceeds number_of_agents")
	}
	if c.CentralLocations < 0 {
		reject("num_central_locations", "must not be negative")
	}
	if c.MaxAge < 0 {
		reject("max_age", "must not be negative")
	}

	probabilities := []struct {
		name  string
		value float64
	}{
		{"infection_rate", c.InfectionRate},
		{"recovery_rate", c.RecoveryRate},
		{"mortality_rate", c.MortalityRate},
		{"immunity_loss_rate", c.ImmunityLossRate},
		{"change_direction_proba", c.ChangeDirectionProba},
		{"central_location_visit_proba", c.CentralLocationVisitProba},
		{"quarantine_visit_proba", c.QuarantineVisitProba},
		{"mask_wearing_proba", c.MaskWearingProba},
		{"vaccinated_proba", c.VaccinatedProba},
	}
	for _, p := range probabilities {
		if p.value < 0 || p.value > 1 {
			reject(p.name, "must be within [0, 1]")
		}
	}

	periods := []struct {
		name  string
		value int
	}{
		{"incubation_period", c.IncubationPeriod},
		{"recovery_period", c.RecoveryPeriod},
		{"mortality_period", c.MortalityPeriod},
		{"immunity_loss_period", c.ImmunityLossPeriod},
		{"frames_spent_in_central_location", c.CentralLocationDwell},
		{"quick_travel_frames", c.QuickTravelFrames},
	}
	for _, p := range periods {
		if p.value <= 0 {
			reject(p.name, "must be positive")
		}
	}

	positives := []struct {
		name  string
		value float64
	}{
		{"width", c.Width},
		{"height", c.Height},
		{"infection_radius", c.InfectionRadius},
		{"social_distancing_repulsion_radius", c.RepulsionRadius},
		{"central_location_size", c.CentralLocationSize},
		{"agent_speed", c.AgentSpeed},
		{"agent_radius", c.AgentRadius},
	}
	for _, p := range positives {
		if p.value <= 0 {
			reject(p.name, "must be positive")
		}
	}
	if c.RepulsionForce < 0 {
		reject("social_distancing_repulsion_force", "must not be negative")
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	freeW, freeH := c.FreeRoamSize()
	if freeW <= 2*c.AgentRadius || freeH <= 2*c.AgentRadius {
		reject("width/height", "board leaves no free-roam area")
	} else if c.CentralLocations > 0 && (c.CentralLocationSize > freeW || c.CentralLocationSize > freeH) {
		reject("central_location_size", "does not fit the free-roam area")
	}
	if c.Quarantine && (c.CentralLocationSize > c.Width || c.CentralLocationSize > c.Height) {
		reject("central_location_size", "quarantine does not fit the board")
	}

	return errors.Join(errs...)
}
