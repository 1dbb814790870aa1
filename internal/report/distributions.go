// Package report summarizes finished runs as tables and charts.
package report

import (
	"math"
	"sort"

	"pandemica/internal/sim"
)

// Bucket counts profiles sharing one integer key, such as an age or a rate
// in whole percent.
type Bucket struct {
	Key   int
	Count int
}

// Category counts profiles sharing one labelled attribute value.
type Category struct {
	Label string
	Count int
}

// Distributions describe the demographic makeup of a population.
type Distributions struct {
	Age        []Bucket
	Gender     []Category
	Vaccinated []Category
	Mask       []Category
}

// Empty reports whether no profile carried demographics.
func (d Distributions) Empty() bool {
	return len(d.Age) == 0
}

// RateDistributions bucket per-agent rates rounded to whole percent.
type RateDistributions struct {
	Infection    []Bucket
	Recovery     []Bucket
	Mortality    []Bucket
	ImmunityLoss []Bucket
}

// Empty reports whether there were no profiles to bucket.
func (r RateDistributions) Empty() bool {
	return len(r.Infection) == 0
}

// AttributeDistributions counts ages, genders, vaccination and mask wearing.
// Profiles without demographics are skipped.
func AttributeDistributions(profiles []sim.Profile) Distributions {
	ages := map[int]int{}
	genders := map[string]int{}
	vaccinated := map[string]int{}
	masks := map[string]int{}
	for _, p := range profiles {
		if !p.HasDemographics {
			continue
		}
		d := p.Demographics
		ages[d.Age]++
		genders[d.Gender.String()]++
		vaccinated[yesNo(d.Vaccinated)]++
		masks[yesNo(d.Mask)]++
	}
	return Distributions{
		Age:        buckets(ages),
		Gender:     categories(genders),
		Vaccinated: categories(vaccinated),
		Mask:       categories(masks),
	}
}

// RateHistograms counts how many agents share each rate percentage.
func RateHistograms(profiles []sim.Profile) RateDistributions {
	infection, recovery, mortality, loss := map[int]int{}, map[int]int{}, map[int]int{}, map[int]int{}
	for _, p := range profiles {
		infection[percent(p.Rates.Infection)]++
		recovery[percent(p.Rates.Recovery)]++
		mortality[percent(p.Rates.Mortality)]++
		loss[percent(p.Rates.ImmunityLoss)]++
	}
	return RateDistributions{
		Infection:    buckets(infection),
		Recovery:     buckets(recovery),
		Mortality:    buckets(mortality),
		ImmunityLoss: buckets(loss),
	}
}

func percent(rate float64) int {
	return int(math.Round(rate * 100))
}

func yesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}

func buckets(m map[int]int) []Bucket {
	out := make([]Bucket, 0, len(m))
	for k, n := range m {
		out = append(out, Bucket{Key: k, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

func categories(m map[string]int) []Category {
	out := make([]Category, 0, len(m))
	for label, n := range m {
		out = append(out, Category{Label: label, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out
}
