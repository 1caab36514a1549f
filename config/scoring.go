package config

import "fmt"

// ScoringConfig holds the scoring backend endpoint and credentials.
type ScoringConfig struct {
	BaseURL        string `json:"base_url"`
	APIKey         string `json:"api_key"`
	TimeoutSeconds int    `json:"timeout_seconds"`
}

// SetDefaults applies sane defaults.
func (c *ScoringConfig) SetDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = "http://localhost:8080"
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 15
	}
}

// Validate checks mandatory fields.
func (c ScoringConfig) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("scoring.api_key is required")
	}
	return nil
}
