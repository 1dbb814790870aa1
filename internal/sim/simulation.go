package sim

import (
	"context"
	"errors"
	"io"
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// ErrNotInitialized is raised when a Simulation is used without New.
var ErrNotInitialized = errors.New("sim: simulation not initialized")

// LockdownSpeedModifier is the movement modifier applied while lockdown is on.
const LockdownSpeedModifier = 0.1

// AgentView is a read-only copy of an agent for rendering.
type AgentView struct {
	ID          int
	X, Y        float64
	State       State
	TimeInState int
	Location    LocationRef
	Quarantined bool
	Travelling  bool
}

// Profile is an agent's demographic attributes and derived rates, fixed at
// creation.
type Profile struct {
	ID              int
	Demographics    Demographics
	HasDemographics bool
	Rates           Rates
}

// Frame is everything a renderer needs after a step.
type Frame struct {
	Step          int
	Width, Height float64
	FreeWidth     float64
	FreeHeight    float64
	Agents        []AgentView
	Locations     []Location
	Counts        Counts
}

// ControlSettings are the live knobs applied between steps.
type ControlSettings struct {
	TransmissionModifier float64
	SpeedModifier        float64
	LockdownEnabled      bool
	Paused               bool
}

// Option customizes a Simulation at construction.
type Option func(*Simulation)

// WithLogger sets the logger used for run diagnostics.
func WithLogger(logger *log.Logger) Option {
	return func(s *Simulation) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Simulation owns the population, the locations and the spatial grid, and
// advances them in discrete steps.
type Simulation struct {
	mu     sync.RWMutex
	cfg    Config
	rng    *rand.Rand
	logger *log.Logger
	seed   uint64

	agents    []*Agent
	locations []Location
	grid      *Grid
	env       stepEnv

	history  []Counts
	profiles []Profile
	steps    int

	transmissionMod float64
	speedMod        float64
	lockdown        bool
	paused          bool
}

// New validates cfg and builds the initial population.
func New(cfg Config, opts ...Option) (*Simulation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	s := &Simulation{
		cfg:             cfg,
		rng:             rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		logger:          log.New(io.Discard),
		seed:            seed,
		transmissionMod: 1.0,
		speedMod:        1.0,
	}
	for _, opt := range opts {
		opt(s)
	}

	freeW, freeH := cfg.FreeRoamSize()
	s.locations = layoutLocations(cfg, freeW, freeH)
	quarantine := NoLocation
	if cfg.Quarantine {
		quarantine = LocationRef(len(s.locations))
		s.locations = append(s.locations, Location{
			X:    cfg.Width - cfg.CentralLocationSize,
			Y:    cfg.Height - cfg.CentralLocationSize,
			Size: cfg.CentralLocationSize,
			Kind: QuarantineLocation,
		})
	}

	s.grid = NewGrid(cfg.Width, cfg.Height, math.Max(cfg.InfectionRadius, cfg.RepulsionRadius))
	s.env = stepEnv{
		cfg:        cfg,
		rng:        s.rng,
		grid:       s.grid,
		locations:  s.locations,
		central:    cfg.CentralLocations,
		quarantine: quarantine,
		freeW:      freeW,
		freeH:      freeH,
	}

	s.agents = make([]*Agent, cfg.Population)
	s.profiles = make([]Profile, cfg.Population)
	r := cfg.AgentRadius
	for i := range s.agents {
		a := &Agent{
			ID:       i,
			State:    Susceptible,
			X:        r + s.rng.Float64()*(freeW-2*r),
			Y:        r + s.rng.Float64()*(freeH-2*r),
			Location: NoLocation,
		}
		a.randomDirection(&s.env)
		if cfg.Demographics {
			a.Demographics = s.randomDemographics()
			a.HasDemographics = true
			a.rates = ComputeRates(cfg, a.Demographics)
		} else {
			a.rates = BaseRates(cfg)
		}
		s.agents[i] = a
		s.profiles[i] = Profile{
			ID:              i,
			Demographics:    a.Demographics,
			HasDemographics: a.HasDemographics,
			Rates:           a.rates,
		}
	}
	for i := 0; i < cfg.InitialInfected; i++ {
		s.agents[i].setState(Infectious)
	}

	s.logger.Info("simulation initialized",
		"population", cfg.Population,
		"infected", cfg.InitialInfected,
		"locations", cfg.CentralLocations,
		"quarantine", cfg.Quarantine,
		"seed", seed,
	)
	return s, nil
}

func (s *Simulation) randomDemographics() Demographics {
	d := Demographics{
		Age:        s.rng.IntN(s.cfg.MaxAge + 1),
		Gender:     Gender(s.rng.IntN(2)),
		Vaccinated: s.rng.Float64() < s.cfg.VaccinatedProba,
		Mask:       s.rng.Float64() < s.cfg.MaskWearingProba,
	}
	return d
}

// layoutLocations spreads the central locations over a near-square grid of
// the free-roam area, each centred in its slot. A single location sits in the
// middle of the board.
func layoutLocations(cfg Config, freeW, freeH float64) []Location {
	n := cfg.CentralLocations
	locations := make([]Location, 0, n+1)
	if n == 0 {
		return locations
	}
	cols := int(math.Ceil(math.Sqrt(float64(n))))
	rows := int(math.Ceil(float64(n) / float64(cols)))
	slotW, slotH := freeW/float64(cols), freeH/float64(rows)
	size := cfg.CentralLocationSize
	for i := 0; i < n; i++ {
		col, row := i%cols, i/cols
		x := (float64(col)+0.5)*slotW - size/2
		y := (float64(row)+0.5)*slotH - size/2
		x = math.Min(math.Max(x, 0), freeW-size)
		y = math.Min(math.Max(y, 0), freeH-size)
		locations = append(locations, Location{X: x, Y: y, Size: size, Kind: CentralLocation})
	}
	return locations
}

// Config returns the configuration the simulation was built with.
func (s *Simulation) Config() Config {
	return s.cfg
}

// Seed returns the seed of the random source.
func (s *Simulation) Seed() uint64 {
	return s.seed
}

// Step rebuilds the grid, updates every agent in population order and
// records the resulting state counts.
func (s *Simulation) Step() {
	if s.grid == nil {
		panic(ErrNotInitialized)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.env.transmissionModifier = s.transmissionMod
	s.env.speedModifier = s.speedMod

	s.grid.Rebuild(s.agents)
	for _, a := range s.agents {
		a.step(&s.env)
	}

	counts := s.countLocked()
	s.history = append(s.history, counts)
	s.steps++

	s.logger.Debug("step",
		"n", s.steps,
		"S", counts[Susceptible],
		"E", counts[Exposed],
		"I", counts[Infectious],
		"R", counts[Recovered],
		"D", counts[Deceased],
	)
}

func (s *Simulation) countLocked() Counts {
	var counts Counts
	for _, a := range s.agents {
		counts[a.State]++
	}
	return counts
}

// RunFor performs n steps, checking ctx between steps. On cancellation it
// returns the history accumulated so far together with the context error.
func (s *Simulation) RunFor(ctx context.Context, n int) ([]Counts, error) {
	if s.grid == nil {
		return nil, ErrNotInitialized
	}
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			s.logger.Warn("run cancelled", "completed", i, "requested", n)
			return s.History(), err
		}
		s.Step()
	}
	s.logger.Info("run finished", "steps", n, "counts", s.Counts())
	return s.History(), nil
}

// Run steps the simulation on every tick of interval until ctx is done,
// passing each frame to report. Ticks are skipped while paused, but the
// current frame is still reported.
func (s *Simulation) Run(ctx context.Context, interval time.Duration, report func(Frame)) {
	if s.grid == nil {
		panic(ErrNotInitialized)
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !s.Paused() {
				s.Step()
			}
			if report != nil {
				report(s.Frame())
			}
		}
	}
}

// History returns a copy of the per-step state counts.
func (s *Simulation) History() []Counts {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Counts, len(s.history))
	copy(out, s.history)
	return out
}

// Counts returns the current state counts.
func (s *Simulation) Counts() Counts {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.countLocked()
}

// Steps returns the number of steps taken.
func (s *Simulation) Steps() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.steps
}

// Agents returns a snapshot of every agent in population order.
func (s *Simulation) Agents() []AgentView {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.agentViewsLocked()
}

func (s *Simulation) agentViewsLocked() []AgentView {
	views := make([]AgentView, len(s.agents))
	for i, a := range s.agents {
		views[i] = AgentView{
			ID:          a.ID,
			X:           a.X,
			Y:           a.Y,
			State:       a.State,
			TimeInState: a.TimeInState,
			Location:    a.Location,
			Quarantined: a.Quarantined,
			Travelling:  a.travelling,
		}
	}
	return views
}

// Locations returns every location, central ones first and quarantine (if
// enabled) last.
func (s *Simulation) Locations() []Location {
	out := make([]Location, len(s.locations))
	copy(out, s.locations)
	return out
}

// Quarantine returns the quarantine location when quarantine is enabled.
func (s *Simulation) Quarantine() (Location, bool) {
	if s.env.quarantine == NoLocation {
		return Location{}, false
	}
	return s.locations[s.env.quarantine], true
}

// Profiles returns the demographic attributes and rates computed at creation.
func (s *Simulation) Profiles() []Profile {
	out := make([]Profile, len(s.profiles))
	copy(out, s.profiles)
	return out
}

// Frame returns a consistent snapshot of the board after the last step.
func (s *Simulation) Frame() Frame {
	s.mu.RLock()
	defer s.mu.RUnlock()

	freeW, freeH := s.cfg.FreeRoamSize()
	return Frame{
		Step:       s.steps,
		Width:      s.cfg.Width,
		Height:     s.cfg.Height,
		FreeWidth:  freeW,
		FreeHeight: freeH,
		Agents:     s.agentViewsLocked(),
		Locations:  s.Locations(),
		Counts:     s.countLocked(),
	}
}

// UpdateTransmissionModifier scales every infection probability from the next
// step on. Values are clamped to [0, 1].
func (s *Simulation) UpdateTransmissionModifier(modifier float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transmissionMod = clamp01(modifier)
}

// CurrentTransmissionModifier returns the active transmission modifier.
func (s *Simulation) CurrentTransmissionModifier() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.transmissionMod
}

// InfectionProbability returns the configured base infection rate after the
// transmission modifier, capped at 1.
func (s *Simulation) InfectionProbability() float64 {
	return math.Min(s.cfg.InfectionRate*s.CurrentTransmissionModifier(), 1.0)
}

// SetSpeedModifier scales roaming displacement. Values below zero are clamped
// to zero and values above one to one.
func (s *Simulation) SetSpeedModifier(modifier float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.speedMod = clamp01(modifier)
}

// SpeedModifier returns the active movement modifier.
func (s *Simulation) SpeedModifier() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.speedMod
}

// SetLockdown slows roaming to LockdownSpeedModifier, or restores full speed.
func (s *Simulation) SetLockdown(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lockdown = enabled
	if enabled {
		s.speedMod = LockdownSpeedModifier
	} else {
		s.speedMod = 1.0
	}
}

// LockdownEnabled reports whether lockdown is on.
func (s *Simulation) LockdownEnabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lockdown
}

// SetPaused stops or resumes Run's stepping.
func (s *Simulation) SetPaused(paused bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paused = paused
}

// Paused reports whether Run is paused.
func (s *Simulation) Paused() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.paused
}

// ApplyControlSettings applies every knob at once and returns the resulting
// settings. Lockdown overrides the requested speed modifier. Leaving lockdown
// with the speed still at LockdownSpeedModifier restores full speed.
func (s *Simulation) ApplyControlSettings(settings ControlSettings) ControlSettings {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.applyControlsLocked(settings)
	return s.controlSettingsLocked()
}

// UpdateControlSettings applies the settings returned by update, which is
// called with the active settings. Reading and applying happen under one lock,
// so no step observes a partial update. If update fails nothing changes.
func (s *Simulation) UpdateControlSettings(update func(current ControlSettings) (ControlSettings, error)) (ControlSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, err := update(s.controlSettingsLocked())
	if err != nil {
		return s.controlSettingsLocked(), err
	}
	s.applyControlsLocked(next)
	return s.controlSettingsLocked(), nil
}

func (s *Simulation) applyControlsLocked(settings ControlSettings) {
	speed := clamp01(settings.SpeedModifier)
	switch {
	case settings.LockdownEnabled:
		speed = LockdownSpeedModifier
	case s.lockdown && speed == LockdownSpeedModifier:
		speed = 1.0
	}
	s.transmissionMod = clamp01(settings.TransmissionModifier)
	s.speedMod = speed
	s.lockdown = settings.LockdownEnabled
	s.paused = settings.Paused
}

func (s *Simulation) controlSettingsLocked() ControlSettings {
	return ControlSettings{
		TransmissionModifier: s.transmissionMod,
		SpeedModifier:        s.speedMod,
		LockdownEnabled:      s.lockdown,
		Paused:               s.paused,
	}
}

// ControlSettings returns the active knobs.
func (s *Simulation) ControlSettings() ControlSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.controlSettingsLocked()
}
