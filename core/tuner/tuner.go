package tuner

import (
	"context"
	"time"

	"github.com/flightops/rotables/core/logger"
	"github.com/flightops/rotables/core/strategy"
)

// Experiment is the outcome of one full session played with a candidate
// configuration.
type Experiment struct {
	ID        int64            `json:"id"`
	Config    strategy.Config  `json:"config"`
	TotalCost float64          `json:"total_cost"`
	Penalties PenaltyBreakdown `json:"penalties"`
	Accepted  bool             `json:"accepted"`
	RunAt     time.Time        `json:"run_at"`
}

// Evaluator plays one full session with the given knobs.
type Evaluator interface {
	Evaluate(ctx context.Context, cfg strategy.Config) (Experiment, error)
}

// EvaluatorFunc adapts a function to the Evaluator interface.
type EvaluatorFunc func(ctx context.Context, cfg strategy.Config) (Experiment, error)

func (f EvaluatorFunc) Evaluate(ctx context.Context, cfg strategy.Config) (Experiment, error) {
	return f(ctx, cfg)
}

// Store persists experiments as the search progresses.
type Store interface {
	SaveExperiment(ctx context.Context, e Experiment) error
}

// NopStore discards experiments.
type NopStore struct{}

func (NopStore) SaveExperiment(context.Context, Experiment) error { return nil }

// Tuner runs a coordinate-descent search over the strategy knobs. A
// configuration with any structural penalty is rejected outright; among the
// clean ones, lower total cost wins. The perturbation step halves whenever a
// full sweep brings no improvement and the search stops once it shrinks
// below MinStepScale.
type Tuner struct {
	eval  Evaluator
	store Store
	log   logger.Logger

	MaxIterations int
	MinStepScale  float64
}

// New builds a tuner. A nil store discards experiments.
func New(eval Evaluator, store Store, log logger.Logger) *Tuner {
	if store == nil {
		store = NopStore{}
	}
	if log == nil {
		log = logger.Nop{}
	}
	return &Tuner{
		eval:          eval,
		store:         store,
		log:           log,
		MaxIterations: 10,
		MinStepScale:  0.1,
	}
}

// Tune searches from the base configuration and returns the best one found
// along with every experiment played.
func (t *Tuner) Tune(ctx context.Context, base strategy.Config) (strategy.Config, []Experiment, error) {
	best, err := t.runOne(ctx, base)
	if err != nil {
		return base, nil, err
	}
	best.Accepted = true
	t.save(ctx, best)
	experiments := []Experiment{best}
	bestCfg := base
	stepScale := 1.0

	for i := 0; i < t.MaxIterations; i++ {
		improved := false
		for _, cfg := range Neighbors(bestCfg, stepScale) {
			if ctx.Err() != nil {
				return bestCfg, experiments, ctx.Err()
			}
			exp, err := t.runOne(ctx, cfg)
			if err != nil {
				return bestCfg, experiments, err
			}
			switch {
			case exp.Penalties.StructuralSum() > 0:
				t.log.Debugf("rejected candidate: structural penalties %.2f", exp.Penalties.StructuralSum())
			case exp.TotalCost < best.TotalCost:
				exp.Accepted = true
				best = exp
				bestCfg = cfg
				improved = true
				t.log.Infof("iteration %d: improved to %.2f", i, best.TotalCost)
			}
			t.save(ctx, exp)
			experiments = append(experiments, exp)
		}
		if !improved {
			stepScale *= 0.5
			if stepScale < t.MinStepScale {
				break
			}
			t.log.Debugf("no improvement, step scale now %.3f", stepScale)
		}
	}
	return bestCfg, experiments, nil
}

func (t *Tuner) runOne(ctx context.Context, cfg strategy.Config) (Experiment, error) {
	exp, err := t.eval.Evaluate(ctx, cfg)
	if err != nil {
		return Experiment{}, err
	}
	exp.Config = cfg
	if exp.RunAt.IsZero() {
		exp.RunAt = time.Now()
	}
	return exp, nil
}

func (t *Tuner) save(ctx context.Context, exp Experiment) {
	if err := t.store.SaveExperiment(ctx, exp); err != nil {
		t.log.Warnf("save experiment: %v", err)
	}
}
