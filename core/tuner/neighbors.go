package tuner

import "github.com/flightops/rotables/core/strategy"

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Neighbors generates coordinate perturbations around a base configuration.
// stepScale shrinks the deltas as the search converges.
func Neighbors(base strategy.Config, stepScale float64) []strategy.Config {
	var out []strategy.Config

	perturb := func(apply func(*strategy.Config, float64), delta float64) {
		for _, sign := range [2]float64{-1, 1} {
			cfg := base
			apply(&cfg, sign*delta*stepScale)
			out = append(out, cfg)
		}
	}

	perturb(func(c *strategy.Config, d float64) {
		c.RepositionDistanceKm = clampFloat(c.RepositionDistanceKm+d, 100, 10000)
	}, 100)
	perturb(func(c *strategy.Config, d float64) {
		c.CostDominanceFactor = clampFloat(c.CostDominanceFactor+d, 0.01, 5)
	}, 0.1)
	perturb(func(c *strategy.Config, d float64) {
		c.PurchaseSafetyRatio = clampFloat(c.PurchaseSafetyRatio+d, 0.01, 5)
	}, 0.05)
	perturb(func(c *strategy.Config, d float64) {
		c.SafeLoadRatio = clampFloat(c.SafeLoadRatio+d, 0.05, 1)
	}, 0.05)
	perturb(func(c *strategy.Config, d float64) {
		for i := range c.SafetyStockRatio {
			c.SafetyStockRatio[i] = clampFloat(c.SafetyStockRatio[i]+d, 0.01, 5)
		}
	}, 0.05)
	for kit := 0; kit < 4; kit++ {
		k := kit
		perturb(func(c *strategy.Config, d float64) {
			c.HorizonMultipliers[k] = clampFloat(c.HorizonMultipliers[k]+d, 0.01, 5)
		}, 0.25)
	}
	perturb(func(c *strategy.Config, d float64) {
		c.SafetyBufferHours = int(clampFloat(float64(c.SafetyBufferHours)+d, 0, 72))
	}, 4)

	return out
}
