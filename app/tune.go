package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	coremetrics "github.com/flightops/rotables/core/metrics"
	"github.com/flightops/rotables/core/scoring"
	"github.com/flightops/rotables/core/strategy"
	"github.com/flightops/rotables/core/tuner"
	"github.com/flightops/rotables/infra/kpi"
	"github.com/flightops/rotables/infra/logger"
	"github.com/flightops/rotables/pkg/export"
)

// penaltyCollector captures the penalties of one session so the tuner can
// break them down by code. The runner calls it from a single goroutine.
type penaltyCollector struct {
	coremetrics.NopSink
	penalties []scoring.Penalty
}

func (c *penaltyCollector) RecordPenalty(ev coremetrics.PenaltyEvent) error {
	c.penalties = append(c.penalties, scoring.Penalty{
		Code:       ev.Code,
		IssuedDay:  ev.Day,
		IssuedHour: ev.Hour,
		Penalty:    ev.Cost,
	})
	return nil
}

// Tune searches for cheaper strategy knobs by playing full sessions against
// the scoring backend, persisting every experiment and exporting the results.
func (s *Service) Tune(ctx context.Context) error {
	logg := logger.New("tuner")

	base, ok := strategy.Presets()[s.cfg.Tuner.StartPreset]
	if !ok {
		return fmt.Errorf("unknown start preset %q", s.cfg.Tuner.StartPreset)
	}

	store, err := kpi.NewSQLiteStore(s.cfg.Tuner.DBPath)
	if err != nil {
		return fmt.Errorf("experiment store: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logg.Errorf("close experiment store: %v", err)
		}
	}()

	eval := tuner.EvaluatorFunc(func(ctx context.Context, cfg strategy.Config) (tuner.Experiment, error) {
		collector := &penaltyCollector{}
		runner, err := s.newRunnerWithConfig(cfg, nil, collector)
		if err != nil {
			return tuner.Experiment{}, err
		}
		if err := runner.Run(ctx); err != nil {
			return tuner.Experiment{}, err
		}
		return tuner.Experiment{
			TotalCost: runner.CumulativeCost(),
			Penalties: tuner.Aggregate(collector.penalties),
		}, nil
	})

	search := tuner.New(eval, store, logg)
	search.MaxIterations = s.cfg.Tuner.Rounds

	best, experiments, err := search.Tune(ctx, base)
	if err != nil {
		return err
	}

	summary := tuner.Summarize(experiments)
	logg.Infof("tuning done: %d experiments, %d structural rejects, best cost %.2f",
		summary.Experiments, summary.StructuralRejects, summary.BestCost)
	logg.Debugw("best configuration", map[string]any{
		"safe_load_ratio":        best.SafeLoadRatio,
		"purchase_safety_ratio":  best.PurchaseSafetyRatio,
		"reposition_distance_km": best.RepositionDistanceKm,
	})

	if dir := s.cfg.Tuner.ExportDir; dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("export dir: %w", err)
		}
		if err := export.WriteCSV(filepath.Join(dir, "experiments.csv"), experiments); err != nil {
			return fmt.Errorf("export csv: %w", err)
		}
		if err := export.WriteJSON(filepath.Join(dir, "experiments.json"), experiments); err != nil {
			return fmt.Errorf("export json: %w", err)
		}
	}
	return nil
}
