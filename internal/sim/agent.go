package sim

import (
	"math"
	"math/rand/v2"
)

// Agent is a single member of the population. Agents are owned and mutated
// exclusively by the Simulation that created them.
type Agent struct {
	ID          int
	State       State
	TimeInState int

	X, Y float64
	// VX and VY are the per-step displacement: a unit direction scaled to the
	// agent speed while roaming, or the per-frame leg of a quick travel.
	VX, VY float64

	Location    LocationRef
	Quarantined bool

	Demographics    Demographics
	HasDemographics bool
	rates           Rates

	travelling   bool
	destX, destY float64
	travelFrame  int
	dwell        int
}

// stepEnv is everything an agent reads while it updates: the configuration,
// the random source, the start-of-step grid and the current control knobs.
type stepEnv struct {
	cfg          Config
	rng          *rand.Rand
	grid         *Grid
	locations    []Location
	central      int
	quarantine   LocationRef
	freeW, freeH float64

	transmissionModifier float64
	speedModifier        float64

	buf []GridEntry
}

// Rates returns the agent's transition probabilities.
func (a *Agent) Rates() Rates {
	return a.rates
}

// Travelling reports whether the agent is in quick-travel transit.
func (a *Agent) Travelling() bool {
	return a.travelling
}

// Destination returns the target of the current or most recent quick travel.
func (a *Agent) Destination() (float64, float64) {
	return a.destX, a.destY
}

func (a *Agent) setState(s State) {
	a.State = s
	a.TimeInState = 0
}

// step runs one full update: visits, direction, repulsion, movement,
// transition and the state timer.
func (a *Agent) step(env *stepEnv) {
	if a.State != Deceased {
		if !a.visitQuarantine(env) {
			a.visitLocation(env)
		}
		a.changeDirection(env)
		if env.cfg.RepulsionForce > 0 {
			a.repel(env)
		}
		a.move(env)
		a.transition(env)
	}
	a.TimeInState++
}

func (a *Agent) transition(env *stepEnv) {
	transitions[a.State](a, env)
}

func (a *Agent) infectionProbability(env *stepEnv) float64 {
	return clamp01(a.rates.Infection * env.transmissionModifier)
}

// transitionSusceptible scans neighbors in grid order; the first infectious
// contact whose draw succeeds exposes the agent.
func (a *Agent) transitionSusceptible(env *stepEnv) {
	env.buf = env.grid.Neighbors(a.X, a.Y, env.buf[:0])
	radius := env.cfg.InfectionRadius
	for _, other := range env.buf {
		if other.Index == a.ID || other.State != Infectious {
			continue
		}
		if math.Hypot(other.X-a.X, other.Y-a.Y) >= radius {
			continue
		}
		if env.rng.Float64() < a.infectionProbability(env) {
			a.setState(Exposed)
			return
		}
	}
}

func (a *Agent) transitionExposed(env *stepEnv) {
	if a.TimeInState >= env.cfg.IncubationPeriod {
		a.setState(Infectious)
	}
}

// transitionInfectious checks recovery before mortality; at most one fires.
func (a *Agent) transitionInfectious(env *stepEnv) {
	if a.TimeInState >= env.cfg.RecoveryPeriod && env.rng.Float64() < a.rates.Recovery {
		a.setState(Recovered)
		return
	}
	if a.TimeInState >= env.cfg.MortalityPeriod && env.rng.Float64() < a.rates.Mortality {
		a.die()
	}
}

func (a *Agent) transitionRecovered(env *stepEnv) {
	if a.TimeInState >= env.cfg.ImmunityLossPeriod && env.rng.Float64() < a.rates.ImmunityLoss {
		a.setState(Susceptible)
	}
}

// die freezes the agent where it stands.
func (a *Agent) die() {
	a.setState(Deceased)
	a.Quarantined = false
	a.travelling = false
	a.VX, a.VY = 0, 0
}

func (a *Agent) randomDirection(env *stepEnv) {
	for {
		dx := env.rng.Float64()*2 - 1
		dy := env.rng.Float64()*2 - 1
		length := math.Hypot(dx, dy)
		if length == 0 {
			continue
		}
		a.VX = dx / length * env.cfg.AgentSpeed
		a.VY = dy / length * env.cfg.AgentSpeed
		return
	}
}

func (a *Agent) changeDirection(env *stepEnv) {
	if a.travelling {
		return
	}
	if env.rng.Float64() < env.cfg.ChangeDirectionProba {
		a.randomDirection(env)
	}
}

// repel pushes the agent away from live neighbors inside the repulsion radius,
// weighting each by the inverse squared distance.
func (a *Agent) repel(env *stepEnv) {
	if a.travelling {
		return
	}
	radius := env.cfg.RepulsionRadius
	force := env.cfg.RepulsionForce

	var fx, fy float64
	env.buf = env.grid.Neighbors(a.X, a.Y, env.buf[:0])
	for _, other := range env.buf {
		if other.Index == a.ID || other.State == Deceased {
			continue
		}
		dx, dy := other.X-a.X, other.Y-a.Y
		dist := math.Hypot(dx, dy)
		if dist > radius {
			continue
		}
		if dist == 0 {
			dist = 1e-10
		}
		fx -= dx / (dist * dist) * force
		fy -= dy / (dist * dist) * force
	}

	vx, vy := a.VX+fx, a.VY+fy
	length := math.Hypot(vx, vy)
	if length == 0 || math.IsInf(length, 0) || math.IsNaN(length) {
		return
	}
	a.VX = vx / length * env.cfg.AgentSpeed
	a.VY = vy / length * env.cfg.AgentSpeed
}

// travelTo starts a quick travel to (x, y) spread over the configured number
// of frames.
func (a *Agent) travelTo(x, y float64, env *stepEnv) {
	frames := float64(env.cfg.QuickTravelFrames)
	a.destX, a.destY = x, y
	a.VX = (x - a.X) / frames
	a.VY = (y - a.Y) / frames
	a.travelFrame = 0
	a.travelling = true
}

// assignLocation moves the agent into ref, or back onto a random free-roam
// point when ref is NoLocation.
func (a *Agent) assignLocation(ref LocationRef, env *stepEnv) {
	a.Location = ref
	if ref == NoLocation {
		r := env.cfg.AgentRadius
		x := r + env.rng.Float64()*(env.freeW-2*r)
		y := r + env.rng.Float64()*(env.freeH-2*r)
		a.travelTo(x, y, env)
		return
	}
	cx, cy := env.locations[ref].Center()
	a.travelTo(cx, cy, env)
}

// visitQuarantine sends infectious agents into quarantine and releases
// recovered ones. It reports whether it took the step's visit decision.
func (a *Agent) visitQuarantine(env *stepEnv) bool {
	if !env.cfg.Quarantine || env.quarantine == NoLocation {
		return false
	}
	switch {
	case a.State == Infectious && !a.Quarantined:
		if env.rng.Float64() < env.cfg.QuarantineVisitProba {
			a.Quarantined = true
			a.dwell = 0
			a.assignLocation(env.quarantine, env)
			return true
		}
	case a.State == Recovered && a.Quarantined:
		a.Quarantined = false
		a.assignLocation(NoLocation, env)
		return true
	}
	return a.Quarantined
}

func (a *Agent) visitLocation(env *stepEnv) {
	if env.central == 0 || a.Quarantined || a.travelling {
		return
	}
	if a.Location != NoLocation {
		a.dwell--
		if a.dwell <= 0 {
			a.assignLocation(NoLocation, env)
		}
		return
	}
	if env.rng.Float64() < env.cfg.CentralLocationVisitProba {
		a.dwell = env.cfg.CentralLocationDwell
		a.assignLocation(LocationRef(env.rng.IntN(env.central)), env)
	}
}

// move advances the agent one step. A quick travel lands exactly on its
// destination on its last frame; roaming agents reflect off the edges of the
// board or of their location.
func (a *Agent) move(env *stepEnv) {
	if a.travelling {
		a.travelFrame++
		if a.travelFrame >= env.cfg.QuickTravelFrames {
			a.travelling = false
			a.X, a.Y = a.destX, a.destY
			a.randomDirection(env)
			return
		}
		a.X += a.VX
		a.Y += a.VY
		return
	}

	stepX := a.VX * env.speedModifier
	stepY := a.VY * env.speedModifier
	a.X += stepX
	a.Y += stepY

	left, right, top, bottom := 0.0, env.freeW, 0.0, env.freeH
	if a.Location != NoLocation {
		left, right, top, bottom = env.locations[a.Location].Bounds()
	}
	r := env.cfg.AgentRadius

	if (a.X <= left+r && a.VX < 0) || (a.X >= right-r && a.VX > 0) {
		a.VX = -a.VX
		a.X -= 2 * stepX
	}
	if (a.Y <= top+r && a.VY < 0) || (a.Y >= bottom-r && a.VY > 0) {
		a.VY = -a.VY
		a.Y -= 2 * stepY
	}
	a.X = math.Min(math.Max(a.X, left), right)
	a.Y = math.Min(math.Max(a.Y, top), bottom)
}
