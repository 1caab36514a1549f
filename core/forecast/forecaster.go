// Package forecast computes the per-round demand and supply picture the
// allocation strategy plans against. Everything here is recomputed from
// scratch each decision hour and discarded afterwards; the forecaster owns
// no state between rounds.
package forecast

import (
	"github.com/flightops/rotables/core/model"
	"github.com/flightops/rotables/core/state"
	"github.com/flightops/rotables/core/timeindex"
)

// Config controls the lookahead horizon per kit type.
type Config struct {
	// SafetyBufferHours pads every kit's horizon.
	SafetyBufferHours int
	// HorizonMultiplier scales each kit's procurement lead time when
	// sizing its horizon.
	HorizonMultiplier [4]float64
	// EndgameWindowHours extends horizons once the session enters the
	// final stretch, so end-of-horizon demand is not planned blind.
	EndgameWindowHours int
}

// DefaultConfig mirrors the tuned baseline.
func DefaultConfig() Config {
	return Config{
		SafetyBufferHours:  12,
		HorizonMultiplier:  [4]float64{1, 1, 1, 1},
		EndgameWindowHours: 48,
	}
}

// Snapshot is the transient per-round aggregate consumed by the strategy.
// Deficit and surplus are mutually exclusive and non-negative per
// (airport, kit).
type Snapshot struct {
	Hour     int
	Horizons [4]int // lookahead length per kit, in hours

	Stock    map[string]model.KitQuantities
	Demand   map[string]model.KitQuantities
	Incoming map[string]model.KitQuantities
	Deficit  map[string]model.KitQuantities
	Surplus  map[string]model.KitQuantities
}

// Compute builds the forecast for the given decision hour. Demand counts
// passengers of non-landed flights departing after the decision hour within
// each kit's horizon; departures at the decision hour itself are the current
// round's business and are served directly, not forecast. Incoming counts
// processing and purchase deliveries landing within the same window.
func Compute(m *state.Matrix, flights []*model.Flight, hour int, cfg Config) *Snapshot {
	return ComputeWithStock(m, flights, hour, cfg, nil)
}

// ComputeWithStock is Compute with an explicit stock baseline per airport,
// used by the strategy after it has already committed this hour's loads to
// its working copy. A nil stock map reads the matrix directly.
func ComputeWithStock(m *state.Matrix, flights []*model.Flight, hour int, cfg Config, stock map[string]model.KitQuantities) *Snapshot {
	snap := &Snapshot{
		Hour:     hour,
		Stock:    make(map[string]model.KitQuantities),
		Demand:   make(map[string]model.KitQuantities),
		Incoming: make(map[string]model.KitQuantities),
		Deficit:  make(map[string]model.KitQuantities),
		Surplus:  make(map[string]model.KitQuantities),
	}
	snap.Horizons = horizons(m, hour, cfg)

	for _, code := range m.AirportCodes() {
		base, ok := stock[code]
		if !ok {
			var err error
			base, err = m.AvailableKits(code, hour)
			if err != nil {
				continue
			}
		}
		snap.Stock[code] = base
		snap.Demand[code] = model.KitQuantities{}
		snap.Incoming[code] = model.KitQuantities{}
	}

	for _, f := range flights {
		if f.Status == model.StatusLanded {
			continue
		}
		dep, ok := f.DepartureHour()
		if !ok || dep <= hour {
			continue
		}
		demand := snap.Demand[f.Origin]
		for _, kit := range model.AllKitTypes {
			if dep > hour+snap.Horizons[kit] {
				continue
			}
			if qty := f.Passengers(kit); qty > 0 {
				demand.Add(kit, qty)
			}
		}
		snap.Demand[f.Origin] = demand
	}

	maxHorizon := 0
	for _, h := range snap.Horizons {
		if h > maxHorizon {
			maxHorizon = h
		}
	}
	m.ForEachArrival(hour, hour+maxHorizon, func(mv *state.Movement) {
		if mv.Kind != state.MovementProcessing && mv.Kind != state.MovementPurchase {
			return
		}
		if mv.DestHour > hour+snap.Horizons[mv.Kit] {
			return
		}
		incoming := snap.Incoming[mv.DestAirport]
		incoming.Add(mv.Kit, mv.Quantity)
		snap.Incoming[mv.DestAirport] = incoming
	})

	for _, code := range m.AirportCodes() {
		var deficit, surplus model.KitQuantities
		for _, kit := range model.AllKitTypes {
			available := snap.Stock[code].Get(kit) + snap.Incoming[code].Get(kit)
			need := snap.Demand[code].Get(kit)
			if need > available {
				deficit.Set(kit, need-available)
			} else {
				surplus.Set(kit, available-need)
			}
		}
		snap.Deficit[code] = deficit
		snap.Surplus[code] = surplus
	}
	return snap
}

// horizons sizes the per-kit lookahead: lead time scaled by the configured
// multiplier, plus the worst-case processing delay for the kit across
// airports, plus the safety buffer, extended inside the endgame window.
func horizons(m *state.Matrix, hour int, cfg Config) [4]int {
	var out [4]int
	for _, kit := range model.AllKitTypes {
		maxProcessing := 0
		for _, code := range m.AirportCodes() {
			if p := m.Airport(code).ProcessingHours(kit); p > maxProcessing {
				maxProcessing = p
			}
		}
		base := int(float64(kit.LeadTimeHours())*cfg.HorizonMultiplier[kit]) + maxProcessing + cfg.SafetyBufferHours
		if hour >= timeindex.MaxHour-cfg.EndgameWindowHours {
			base += cfg.EndgameWindowHours
		}
		if base > timeindex.MaxHour {
			base = timeindex.MaxHour
		}
		out[kit] = base
	}
	return out
}
