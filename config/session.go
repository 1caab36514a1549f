package config

import (
	"fmt"

	"github.com/flightops/rotables/core/timeindex"
)

// SessionConfig bounds a single session run.
type SessionConfig struct {
	EndDay  int `json:"end_day"`
	EndHour int `json:"end_hour"`
	// ZeroLeadPurchases makes purchase orders land the hour they are
	// placed instead of after the supplier lead time.
	ZeroLeadPurchases bool `json:"zero_lead_purchases"`
}

// SetDefaults plays the full horizon.
func (c *SessionConfig) SetDefaults() {
	if c.EndDay == 0 && c.EndHour == 0 {
		c.EndDay = timeindex.MaxDay - 1
		c.EndHour = 23
	}
}

// Validate checks the end marker stays inside the horizon.
func (c SessionConfig) Validate() error {
	if c.EndDay < 0 || c.EndDay >= timeindex.MaxDay {
		return fmt.Errorf("session.end_day must be in [0, %d]", timeindex.MaxDay-1)
	}
	if c.EndHour < 0 || c.EndHour > 23 {
		return fmt.Errorf("session.end_hour must be in [0, 23]")
	}
	return nil
}

// EndGlobalHour returns the last played global hour.
func (c SessionConfig) EndGlobalHour() int {
	return timeindex.ToGlobalHour(c.EndDay, c.EndHour)
}
