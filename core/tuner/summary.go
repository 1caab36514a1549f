package tuner

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary describes the cost distribution of a batch of experiments.
type Summary struct {
	Experiments       int     `json:"experiments"`
	StructuralRejects int     `json:"structural_rejects"`
	MeanCost          float64 `json:"mean_cost"`
	StdDevCost        float64 `json:"stddev_cost"`
	MinCost           float64 `json:"min_cost"`
	MaxCost           float64 `json:"max_cost"`
	BestCost          float64 `json:"best_cost"`
}

// Summarize computes distribution statistics over the clean experiments.
// Structurally penalized runs are counted but excluded from the statistics.
func Summarize(experiments []Experiment) Summary {
	s := Summary{Experiments: len(experiments)}
	costs := make([]float64, 0, len(experiments))
	best := false
	for _, e := range experiments {
		if e.Penalties.StructuralSum() > 0 {
			s.StructuralRejects++
			continue
		}
		costs = append(costs, e.TotalCost)
		if !best || e.TotalCost < s.BestCost {
			s.BestCost = e.TotalCost
			best = true
		}
	}
	if len(costs) == 0 {
		return s
	}
	s.MeanCost = stat.Mean(costs, nil)
	if len(costs) > 1 {
		s.StdDevCost = stat.StdDev(costs, nil)
	}
	s.MinCost = floats.Min(costs)
	s.MaxCost = floats.Max(costs)
	return s
}
