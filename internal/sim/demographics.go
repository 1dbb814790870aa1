package sim

import "math"

// Gender is the binary gender attribute of an agent.
type Gender uint8

const (
	Male Gender = iota
	Female
)

// String returns "Male" or "Female".
func (g Gender) String() string {
	if g == Female {
		return "Female"
	}
	return "Male"
}

// Demographics are the attributes assigned to an agent at creation.
type Demographics struct {
	Age        int
	Gender     Gender
	Vaccinated bool
	Mask       bool
}

// Rates are the per-agent transition probabilities, each within [0, 1].
type Rates struct {
	Infection    float64
	Recovery     float64
	Mortality    float64
	ImmunityLoss float64
}

func logistic(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

// InfectionAdjustment is added to the base infection rate.
func InfectionAdjustment(d Demographics) float64 {
	adj := logistic(0.03*float64(d.Age) - 5)
	if d.Gender == Female {
		adj += 0.01
	}
	if d.Vaccinated {
		adj -= 0.11
	}
	if d.Mask {
		adj -= 0.07
	}
	return adj
}

// RecoveryAdjustment is added to the base recovery rate. Vaccination and masks
// leave it unchanged.
func RecoveryAdjustment(d Demographics) float64 {
	adj := -logistic(0.02*float64(d.Age) - 3)
	if d.Gender == Female {
		adj -= 0.01
	}
	return adj
}

// MortalityAdjustment is added to the base mortality rate.
func MortalityAdjustment(d Demographics) float64 {
	adj := 0.1 * logistic(0.02*(float64(d.Age)-40))
	if d.Gender == Male {
		adj += 0.002
	} else {
		adj += 0.001
	}
	if d.Vaccinated {
		adj -= 0.03
	}
	return adj
}

// ImmunityLossAdjustment is added to the base immunity loss rate.
func ImmunityLossAdjustment(d Demographics) float64 {
	adj := float64(d.Age-30)*0.001 + 0.05
	if d.Gender == Male {
		adj += 0.02
	} else {
		adj += 0.01
	}
	if d.Vaccinated {
		adj -= 0.15
	}
	return adj
}

// BaseRates returns the configured rates without demographic adjustment.
func BaseRates(cfg Config) Rates {
	return Rates{
		Infection:    clamp01(cfg.InfectionRate),
		Recovery:     clamp01(cfg.RecoveryRate),
		Mortality:    clamp01(cfg.MortalityRate),
		ImmunityLoss: clamp01(cfg.ImmunityLossRate),
	}
}

// ComputeRates combines the configured base rates with the demographic
// adjustments for d.
func ComputeRates(cfg Config, d Demographics) Rates {
	return Rates{
		Infection:    clamp01(cfg.InfectionRate + InfectionAdjustment(d)),
		Recovery:     clamp01(cfg.RecoveryRate + RecoveryAdjustment(d)),
		Mortality:    clamp01(cfg.MortalityRate + MortalityAdjustment(d)),
		ImmunityLoss: clamp01(cfg.ImmunityLossRate + ImmunityLossAdjustment(d)),
	}
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
