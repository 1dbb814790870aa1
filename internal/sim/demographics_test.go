package sim

import (
	"math"
	"testing"
)

func TestInfectionAdjustmentLiteral(t *testing.T) {
	got := InfectionAdjustment(Demographics{Age: 0, Gender: Male})
	expected := 1 / (1 + math.Exp(5))
	if math.Abs(got-expected) > 1e-12 {
		t.Fatalf("expected %v, got %v", expected, got)
	}

	got = InfectionAdjustment(Demographics{Age: 0, Gender: Female, Vaccinated: true, Mask: true})
	expected += 0.01 - 0.11 - 0.07
	if math.Abs(got-expected) > 1e-12 {
		t.Fatalf("expected %v, got %v", expected, got)
	}
}

func TestProtectionLowersInfectionAndMortality(t *testing.T) {
	base := Demographics{Age: 45, Gender: Female}
	vaccinated := base
	vaccinated.Vaccinated = true
	masked := base
	masked.Mask = true

	if InfectionAdjustment(vaccinated) >= InfectionAdjustment(base) {
		t.Fatal("expected vaccination to lower infection probability")
	}
	if InfectionAdjustment(masked) >= InfectionAdjustment(base) {
		t.Fatal("expected masks to lower infection probability")
	}
	if MortalityAdjustment(vaccinated) >= MortalityAdjustment(base) {
		t.Fatal("expected vaccination to lower mortality probability")
	}
	if RecoveryAdjustment(vaccinated) < RecoveryAdjustment(base) || RecoveryAdjustment(masked) < RecoveryAdjustment(base) {
		t.Fatal("expected protection never to lower recovery probability")
	}
}

func TestAgingEffects(t *testing.T) {
	young := Demographics{Age: 20, Gender: Male}
	old := Demographics{Age: 80, Gender: Male}

	if InfectionAdjustment(old) <= InfectionAdjustment(young) {
		t.Fatal("expected infection probability to rise with age")
	}
	if MortalityAdjustment(old) <= MortalityAdjustment(young) {
		t.Fatal("expected mortality probability to rise with age")
	}
	if RecoveryAdjustment(old) >= RecoveryAdjustment(young) {
		t.Fatal("expected recovery probability to fall with age")
	}
	if ImmunityLossAdjustment(old) <= ImmunityLossAdjustment(young) {
		t.Fatal("expected immunity loss probability to rise with age")
	}
}

func TestComputeRatesClamps(t *testing.T) {
	cfg := DefaultConfig()
	cfg.InfectionRate = 1
	cfg.MortalityRate = 1
	cfg.RecoveryRate = 0
	cfg.ImmunityLossRate = 0

	rates := ComputeRates(cfg, Demographics{Age: 90, Gender: Male})
	if rates.Infection != 1 || rates.Mortality != 1 {
		t.Fatalf("expected rates clamped to 1, got %+v", rates)
	}
	if rates.Recovery != 0 {
		t.Fatalf("expected recovery clamped to 0, got %v", rates.Recovery)
	}

	rates = ComputeRates(cfg, Demographics{Age: 0, Gender: Female, Vaccinated: true})
	if rates.ImmunityLoss != 0 {
		t.Fatalf("expected immunity loss clamped to 0, got %v", rates.ImmunityLoss)
	}
}

func TestBaseRatesMatchConfig(t *testing.T) {
	cfg := DefaultConfig()
	rates := BaseRates(cfg)
	if rates.Infection != cfg.InfectionRate || rates.Recovery != cfg.RecoveryRate {
		t.Fatalf("expected base rates to copy the config, got %+v", rates)
	}
}
