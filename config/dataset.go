package config

import (
	"fmt"
	"path/filepath"
)

// DatasetConfig locates the static CSV files.
type DatasetConfig struct {
	Dir           string `json:"dir"`
	AirportsFile  string `json:"airports_file"`
	AircraftFile  string `json:"aircraft_file"`
	FlightPlanCSV string `json:"flight_plan_file"`
}

// SetDefaults applies the file names shipped with the scoring backend.
func (c *DatasetConfig) SetDefaults() {
	if c.Dir == "" {
		c.Dir = "data"
	}
	if c.AirportsFile == "" {
		c.AirportsFile = "airports_with_stocks.csv"
	}
	if c.AircraftFile == "" {
		c.AircraftFile = "aircraft_types.csv"
	}
	if c.FlightPlanCSV == "" {
		c.FlightPlanCSV = "flight_plan.csv"
	}
}

// Validate checks mandatory fields.
func (c DatasetConfig) Validate() error {
	if c.Dir == "" {
		return fmt.Errorf("dataset.dir is required")
	}
	return nil
}

// AirportsPath returns the absolute or dir-relative airports file path.
func (c DatasetConfig) AirportsPath() string { return filepath.Join(c.Dir, c.AirportsFile) }

// AircraftPath returns the aircraft types file path.
func (c DatasetConfig) AircraftPath() string { return filepath.Join(c.Dir, c.AircraftFile) }

// FlightPlanPath returns the flight plan file path.
func (c DatasetConfig) FlightPlanPath() string { return filepath.Join(c.Dir, c.FlightPlanCSV) }
