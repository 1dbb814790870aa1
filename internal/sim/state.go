package sim

// State is an agent's health compartment.
type State uint8

const (
	Susceptible State = iota
	Exposed
	Infectious
	Recovered
	Deceased

	numStates
)

var stateNames = [numStates]string{"S", "E", "I", "R", "D"}

// String returns the single-letter SEIRD code.
func (s State) String() string {
	if s >= numStates {
		return "?"
	}
	return stateNames[s]
}

// States lists every health state in progression order.
func States() []State {
	return []State{Susceptible, Exposed, Infectious, Recovered, Deceased}
}

// Counts is the number of agents in each state at the end of a step.
type Counts [numStates]int

// Get returns the count for s.
func (c Counts) Get(s State) int {
	if s >= numStates {
		return 0
	}
	return c[s]
}

// Total returns the population size the counts were taken over.
func (c Counts) Total() int {
	total := 0
	for _, n := range c {
		total += n
	}
	return total
}

// transitionFunc evaluates one state's outgoing transitions for an agent.
type transitionFunc func(a *Agent, env *stepEnv)

// transitions is indexed by State; every state has exactly one handler.
var transitions = [numStates]transitionFunc{
	Susceptible: (*Agent).transitionSusceptible,
	Exposed:     (*Agent).transitionExposed,
	Infectious:  (*Agent).transitionInfectious,
	Recovered:   (*Agent).transitionRecovered,
	Deceased:    func(*Agent, *stepEnv) {},
}
