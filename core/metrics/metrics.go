// Package metrics defines the observability contracts implemented by the
// infra sinks. The session runner records one RoundStats per simulated hour
// plus individual purchase and penalty events.
package metrics

import "time"

// RoundStats summarizes a single played round.
type RoundStats struct {
	SessionID      string
	Day            int
	Hour           int
	FlightsLoaded  int
	KitsLoaded     int
	KitsPurchased  int
	RoundCost      float64
	CumulativeCost float64
	Penalties      int
	RoundDuration  time.Duration
	Time           time.Time
}

// PurchaseEvent records a purchase order placed at the hub.
type PurchaseEvent struct {
	SessionID string
	Day       int
	Hour      int
	Kit       string
	Quantity  int
	Time      time.Time
}

// PenaltyEvent records a single penalty returned by the scoring service.
type PenaltyEvent struct {
	SessionID string
	Day       int
	Hour      int
	Code      string
	Cost      float64
	Time      time.Time
}

// Sink records simulation telemetry for observability purposes.
type Sink interface {
	RecordRound(s RoundStats) error
	RecordPurchase(ev PurchaseEvent) error
	RecordPenalty(ev PenaltyEvent) error
}

// NopSink implements Sink with no-op methods.
type NopSink struct{}

func (NopSink) RecordRound(RoundStats) error       { return nil }
func (NopSink) RecordPurchase(PurchaseEvent) error { return nil }
func (NopSink) RecordPenalty(PenaltyEvent) error   { return nil }
