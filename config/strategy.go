package config

import (
	"fmt"

	"github.com/flightops/rotables/core/strategy"
)

// StrategyConfig selects a named preset, optionally replaced wholesale by a
// custom knob set.
type StrategyConfig struct {
	Preset string           `json:"preset"`
	Custom *strategy.Config `json:"custom"`
}

// SetDefaults falls back to the balanced preset.
func (c *StrategyConfig) SetDefaults() {
	if c.Preset == "" {
		c.Preset = "balanced"
	}
}

// Validate checks the preset name exists.
func (c StrategyConfig) Validate() error {
	if c.Custom != nil {
		return nil
	}
	if _, ok := strategy.Presets()[c.Preset]; !ok {
		return fmt.Errorf("unknown strategy preset %q", c.Preset)
	}
	return nil
}

// Resolve returns the effective strategy knobs.
func (c StrategyConfig) Resolve() strategy.Config {
	if c.Custom != nil {
		return *c.Custom
	}
	if cfg, ok := strategy.Presets()[c.Preset]; ok {
		return cfg
	}
	return strategy.DefaultConfig()
}
