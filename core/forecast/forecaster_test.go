package forecast

import (
	"testing"

	"github.com/flightops/rotables/core/model"
	"github.com/flightops/rotables/core/state"
	"github.com/flightops/rotables/core/timeindex"
)

func uniform(v int) model.KitQuantities {
	var q model.KitQuantities
	for _, kit := range model.AllKitTypes {
		q.Set(kit, v)
	}
	return q
}

func newMatrix(t *testing.T) *state.Matrix {
	t.Helper()
	hub := &model.Airport{Code: "HUB1", IsHub: true, Capacity: uniform(100), InitialStock: uniform(10)}
	out := &model.Airport{Code: "OUT1", Capacity: uniform(100)}
	for _, kit := range model.AllKitTypes {
		hub.ProcessingTime[kit] = 2
		out.ProcessingTime[kit] = 1
	}
	aircraft := map[string]*model.AircraftType{
		"T1": {Code: "T1", Seats: uniform(200), KitCapacity: uniform(50)},
	}
	m, err := state.NewMatrix(map[string]*model.Airport{"HUB1": hub, "OUT1": out}, aircraft)
	if err != nil {
		t.Fatalf("NewMatrix: %v", err)
	}
	if err := m.ApplyMovementsForHour(0); err != nil {
		t.Fatalf("apply 0: %v", err)
	}
	return m
}

func flightAt(id string, dep int, passengers int) *model.Flight {
	day, hour := timeindex.FromGlobalHour(dep)
	f := &model.Flight{
		ID:           id,
		Origin:       "HUB1",
		Destination:  "OUT1",
		AircraftType: "T1",
		Status:       model.StatusScheduled,

		PlannedDeparture: &model.HourRef{Day: day, Hour: hour},
	}
	f.PlannedPassengers.Set(model.KitEconomy, passengers)
	return f
}

func TestHorizonSizing(t *testing.T) {
	m := newMatrix(t)
	cfg := Config{SafetyBufferHours: 12, HorizonMultiplier: [4]float64{1, 1, 1, 1}, EndgameWindowHours: 48}
	snap := Compute(m, nil, 0, cfg)
	// economy: lead 12 * 1 + max processing 2 + buffer 12
	if snap.Horizons[model.KitEconomy] != 26 {
		t.Fatalf("economy horizon = %d, want 26", snap.Horizons[model.KitEconomy])
	}
	// first: lead 48 * 1 + 2 + 12
	if snap.Horizons[model.KitFirst] != 62 {
		t.Fatalf("first horizon = %d, want 62", snap.Horizons[model.KitFirst])
	}
}

func TestHorizonEndgameExtension(t *testing.T) {
	m := newMatrix(t)
	cfg := DefaultConfig()
	early := Compute(m, nil, 0, cfg)
	late := Compute(m, nil, timeindex.MaxHour-10, cfg)
	if late.Horizons[model.KitEconomy] != early.Horizons[model.KitEconomy]+cfg.EndgameWindowHours {
		t.Fatalf("endgame horizon = %d, want %d", late.Horizons[model.KitEconomy], early.Horizons[model.KitEconomy]+cfg.EndgameWindowHours)
	}
}

func TestDemandWindow(t *testing.T) {
	m := newMatrix(t)
	cfg := Config{SafetyBufferHours: 12, HorizonMultiplier: [4]float64{1, 1, 1, 1}}
	// horizon for economy = 12 + 2 + 12 = 26
	flights := []*model.Flight{
		flightAt("NOW", 0, 3),      // departs this hour: served, not forecast
		flightAt("IN", 10, 5),      // inside window
		flightAt("EDGE", 26, 7),    // on the window edge, inclusive
		flightAt("BEYOND", 27, 11), // past the window
		flightAt("LANDED", 10, 13),
	}
	flights[4].Status = model.StatusLanded

	snap := Compute(m, flights, 0, cfg)
	if got := snap.Demand["HUB1"].Get(model.KitEconomy); got != 12 {
		t.Fatalf("demand = %d, want 12 (5 inside + 7 at edge)", got)
	}
}

func TestIncomingCountsProcessingAndPurchase(t *testing.T) {
	m := newMatrix(t)
	var req model.KitQuantities
	req.Set(model.KitEconomy, 4)
	// Arrives OUT1 hour 2, processed at hour 3.
	if _, err := m.ScheduleFlightLoad("F1", "HUB1", "OUT1", "T1", 0, 2, req); err != nil {
		t.Fatalf("ScheduleFlightLoad: %v", err)
	}
	m.SchedulePurchase(model.KitEconomy, 6, 0) // lands at hub hour 12

	snap := Compute(m, nil, 0, DefaultConfig())
	if got := snap.Incoming["OUT1"].Get(model.KitEconomy); got != 4 {
		t.Fatalf("OUT1 incoming = %d, want 4 (processing completion)", got)
	}
	if got := snap.Incoming["HUB1"].Get(model.KitEconomy); got != 6 {
		t.Fatalf("HUB1 incoming = %d, want 6 (purchase delivery)", got)
	}
}

func TestDeficitSurplusMutuallyExclusive(t *testing.T) {
	m := newMatrix(t)
	flights := []*model.Flight{flightAt("F1", 5, 25)} // demand 25 vs stock 10
	snap := Compute(m, flights, 0, DefaultConfig())

	for _, code := range m.AirportCodes() {
		for _, kit := range model.AllKitTypes {
			d := snap.Deficit[code].Get(kit)
			s := snap.Surplus[code].Get(kit)
			if d < 0 || s < 0 {
				t.Fatalf("negative deficit/surplus at %s %v: %d %d", code, kit, d, s)
			}
			if d*s != 0 {
				t.Fatalf("deficit and surplus both set at %s %v: %d %d", code, kit, d, s)
			}
		}
	}
	if got := snap.Deficit["HUB1"].Get(model.KitEconomy); got != 15 {
		t.Fatalf("hub economy deficit = %d, want 15", got)
	}
	if got := snap.Surplus["HUB1"].Get(model.KitFirst); got != 10 {
		t.Fatalf("hub first surplus = %d, want 10", got)
	}
}
