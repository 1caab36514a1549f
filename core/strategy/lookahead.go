// Package strategy decides, hour by hour, how many kits are loaded onto
// departing flights, repositioned between airports and purchased at the hub.
// One parameterized greedy algorithm covers every named preset; Config is
// the only thing that varies.
package strategy

import (
	"math"
	"sort"

	"github.com/flightops/rotables/core/forecast"
	"github.com/flightops/rotables/core/logger"
	"github.com/flightops/rotables/core/model"
	"github.com/flightops/rotables/core/state"
	"github.com/flightops/rotables/core/timeindex"
)

// Lookahead is a greedy-but-safe heuristic. It serves passengers first from
// available stock, repositions surplus kits on cheap legs toward forecast
// deficits, and triggers hub purchases when the projected balance dips below
// a threshold. It holds no inventory state of its own; every round starts
// from the matrix and a fresh forecast.
type Lookahead struct {
	cfg Config
	log logger.Logger
}

// New builds a Lookahead strategy with the given knobs.
func New(cfg Config, log logger.Logger) *Lookahead {
	if log == nil {
		log = logger.Nop{}
	}
	return &Lookahead{cfg: cfg, log: log}
}

// Config returns the knobs the strategy was built with.
func (s *Lookahead) Config() Config { return s.cfg }

func (s *Lookahead) forecastConfig() forecast.Config {
	return forecast.Config{
		SafetyBufferHours:  s.cfg.SafetyBufferHours,
		HorizonMultiplier:  s.cfg.HorizonMultipliers,
		EndgameWindowHours: s.cfg.EndgameWindowHours,
	}
}

// Decide produces the load and purchase decisions for one hour. flights is
// the full set of live flights; only those departing this hour receive
// loads, the rest feed the forecast.
func (s *Lookahead) Decide(hour int, flights []*model.Flight, m *state.Matrix) ([]LoadDecision, []PurchaseDecision) {
	stock := make(map[string]model.KitQuantities, len(m.AirportCodes()))
	for _, code := range m.AirportCodes() {
		q, err := m.AvailableKits(code, hour)
		if err != nil {
			continue
		}
		stock[code] = q
	}

	var departures []*model.Flight
	for _, f := range flights {
		if f.Status != model.StatusLanded && f.DepartsAt(hour) {
			departures = append(departures, f)
		}
	}
	// Repositioning splits shared surplus in iteration order, so rank
	// departures the same way stage 1 ranks them: longer legs first,
	// ties by flight ID.
	sort.SliceStable(departures, func(i, j int) bool {
		if departures[i].Distance() != departures[j].Distance() {
			return departures[i].Distance() > departures[j].Distance()
		}
		return departures[i].ID < departures[j].ID
	})

	loads := s.servePassengers(departures, stock, m)

	snap := forecast.ComputeWithStock(m, flights, hour, s.forecastConfig(), stock)
	if s.cfg.AllowReposition {
		s.reposition(departures, loads, stock, snap, m)
	}
	purchases := s.planPurchases(snap, m, hour)

	decisions := make([]LoadDecision, 0, len(loads))
	for id, kits := range loads {
		if kits.IsZero() {
			continue
		}
		decisions = append(decisions, LoadDecision{FlightID: id, Kits: *kits})
	}
	sort.Slice(decisions, func(i, j int) bool { return decisions[i].FlightID < decisions[j].FlightID })
	return decisions, purchases
}

// servePassengers allocates stage 1: passenger demand for flights departing
// now. Flights sharing an origin compete for a shared pool sized by
// SafeLoadRatio so one flight cannot strip the airport bare, ranked by
// distance x kit cost with ties broken by flight ID for reproducibility.
func (s *Lookahead) servePassengers(departures []*model.Flight, stock map[string]model.KitQuantities, m *state.Matrix) map[string]*model.KitQuantities {
	loads := make(map[string]*model.KitQuantities)
	byOrigin := make(map[string][]*model.Flight)
	for _, f := range departures {
		byOrigin[f.Origin] = append(byOrigin[f.Origin], f)
	}

	for origin, flights := range byOrigin {
		originStock := stock[origin]
		for _, kit := range model.AllKitTypes {
			available := originStock.Get(kit)
			pool := int(float64(available) * s.cfg.SafeLoadRatio)

			type candidate struct {
				flight   *model.Flight
				ideal    int
				priority float64
			}
			var candidates []candidate
			for _, f := range flights {
				aircraft := m.Aircraft(f.AircraftType)
				if aircraft == nil {
					s.log.Warnf("strategy: unknown aircraft type %q on flight %s", f.AircraftType, f.ID)
					continue
				}
				passengers := f.Passengers(kit)
				capacity := aircraft.KitCapacity.Get(kit)
				if passengers <= 0 || capacity <= 0 {
					continue
				}
				candidates = append(candidates, candidate{
					flight:   f,
					ideal:    minInt(passengers, capacity),
					priority: f.Distance() * kit.UnitCost(),
				})
			}
			sort.SliceStable(candidates, func(i, j int) bool {
				if candidates[i].priority != candidates[j].priority {
					return candidates[i].priority > candidates[j].priority
				}
				return candidates[i].flight.ID < candidates[j].flight.ID
			})

			loaded := 0
			for _, c := range candidates {
				qty := minInt(c.ideal, pool)
				if qty <= 0 {
					continue
				}
				l := loads[c.flight.ID]
				if l == nil {
					l = &model.KitQuantities{}
					loads[c.flight.ID] = l
				}
				l.Add(kit, qty)
				pool -= qty
				loaded += qty
			}
			originStock.Set(kit, maxInt(0, available-loaded))
		}
		stock[origin] = originStock
	}
	return loads
}

// reposition fills spare aircraft capacity with surplus kits headed toward
// forecast deficits, when flying them is cheaper than buying replacements at
// the destination.
func (s *Lookahead) reposition(departures []*model.Flight, loads map[string]*model.KitQuantities, stock map[string]model.KitQuantities, snap *forecast.Snapshot, m *state.Matrix) {
	for _, f := range departures {
		aircraft := m.Aircraft(f.AircraftType)
		if aircraft == nil {
			continue
		}
		dest := m.Airport(f.Destination)
		if dest == nil {
			continue
		}
		for _, kit := range model.AllKitTypes {
			var current int
			if l := loads[f.ID]; l != nil {
				current = l.Get(kit)
			}
			spare := aircraft.KitCapacity.Get(kit) - current
			if spare <= 0 {
				continue
			}

			originSurplus := snap.Surplus[f.Origin].Get(kit)
			reserve := maxInt(
				s.cfg.MinReserveAtOrigin,
				int(s.cfg.SafetyStockRatio[kit]*float64(snap.Demand[f.Origin].Get(kit))),
			)
			originAvailable := minInt(stock[f.Origin].Get(kit), maxInt(0, originSurplus-reserve))
			destDeficit := snap.Deficit[f.Destination].Get(kit)
			if originAvailable <= 0 || destDeficit <= 0 {
				continue
			}
			if !s.worthMoving(f, kit, m) {
				continue
			}

			destCap := int(float64(dest.Capacity.Get(kit)) * s.cfg.DestinationHeadroomPc)
			destSpace := destCap - (stock[f.Destination].Get(kit) + snap.Incoming[f.Destination].Get(kit))
			if destSpace <= 0 {
				continue
			}

			extra := minInt(minInt(spare, originAvailable), minInt(destDeficit, destSpace))
			if extra <= 0 {
				continue
			}

			l := loads[f.ID]
			if l == nil {
				l = &model.KitQuantities{}
				loads[f.ID] = l
			}
			l.Add(kit, extra)

			originStock := stock[f.Origin]
			originStock.Set(kit, maxInt(0, originStock.Get(kit)-extra))
			stock[f.Origin] = originStock

			deficit := snap.Deficit[f.Destination]
			deficit.Set(kit, maxInt(0, destDeficit-extra))
			snap.Deficit[f.Destination] = deficit

			surplus := snap.Surplus[f.Origin]
			surplus.Set(kit, maxInt(0, originSurplus-extra))
			snap.Surplus[f.Origin] = surplus
		}
	}
}

// worthMoving is the cost-dominance gate: short legs always qualify; longer
// ones only when loading plus fuel for the kit's weight undercuts buying a
// replacement at the destination.
func (s *Lookahead) worthMoving(f *model.Flight, kit model.KitType, m *state.Matrix) bool {
	distance := f.Distance()
	if distance <= s.cfg.RepositionDistanceKm {
		return true
	}
	aircraft := m.Aircraft(f.AircraftType)
	origin := m.Airport(f.Origin)
	if aircraft == nil || origin == nil {
		return false
	}
	transportCost := origin.LoadingCost[kit] + distance*aircraft.FuelCostPerKg*kit.WeightKg()
	return transportCost <= kit.UnitCost()*s.cfg.CostDominanceFactor
}

// planPurchases closes forecast deficits at the hub, with a safety margin
// proportional to projected demand that grows inside the endgame window,
// bounded by remaining hub storage headroom.
func (s *Lookahead) planPurchases(snap *forecast.Snapshot, m *state.Matrix, hour int) []PurchaseDecision {
	hub := m.Hub()
	var purchases []PurchaseDecision
	hubStock := snap.Stock[hub.Code]
	hubIncoming := snap.Incoming[hub.Code]
	hubDemand := snap.Demand[hub.Code]

	for _, kit := range model.AllKitTypes {
		projected := hubStock.Get(kit) + hubIncoming.Get(kit)
		space := hub.Headroom(kit, projected)
		if space <= 0 {
			continue
		}
		need := hubDemand.Get(kit)
		if projected-need >= s.cfg.MinPurchaseThreshold {
			continue
		}

		deficit := maxInt(0, need-projected)
		safety := maxInt(s.cfg.MinPurchaseThreshold, int(s.cfg.PurchaseSafetyRatio*float64(need)))
		if hour >= timeindex.MaxHour-s.cfg.EndgameWindowHours {
			safety += int(math.Floor(float64(need) * s.cfg.EndgamePurchaseBoost))
		}
		qty := minInt(space, deficit+safety)
		if qty > 0 {
			purchases = append(purchases, PurchaseDecision{Kit: kit, Quantity: qty})
		}
	}
	return purchases
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
