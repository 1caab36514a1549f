package config

import "fmt"

// TunerConfig drives the parameter search.
type TunerConfig struct {
	// Rounds is the number of tuning iterations to run.
	Rounds int `json:"rounds"`
	// StartPreset seeds the search.
	StartPreset string `json:"start_preset"`
	// DBPath is the sqlite file experiments are persisted to.
	DBPath string `json:"db_path"`
	// ExportDir receives CSV/JSON experiment exports.
	ExportDir string `json:"export_dir"`
}

// SetDefaults applies sane defaults.
func (c *TunerConfig) SetDefaults() {
	if c.Rounds <= 0 {
		c.Rounds = 20
	}
	if c.StartPreset == "" {
		c.StartPreset = "balanced"
	}
	if c.DBPath == "" {
		c.DBPath = "experiments.db"
	}
	if c.ExportDir == "" {
		c.ExportDir = "experiments"
	}
}

// Validate checks mandatory fields.
func (c TunerConfig) Validate() error {
	if c.Rounds <= 0 {
		return fmt.Errorf("tuner.rounds must be positive")
	}
	return nil
}
