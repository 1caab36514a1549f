package state

import (
	"fmt"
	"sort"

	"github.com/flightops/rotables/core/logger"
	"github.com/flightops/rotables/core/model"
	"github.com/flightops/rotables/core/timeindex"
)

// ViolationKind classifies a structural inventory violation.
type ViolationKind int

const (
	ViolationNegativeStock ViolationKind = iota
	ViolationOverCapacity
)

// Violation records a structural inconsistency observed while applying
// movements. Violations mirror a backend penalty category: they are recorded
// and surfaced, never silently repaired, because avoiding them is the
// strategy's responsibility.
type Violation struct {
	Kind    ViolationKind
	Airport string
	Hour    int
	Kit     model.KitType
	Stock   int
}

// Matrix owns the time-expanded inventory network for one session: a
// pre-sized arena of per-(airport, hour) stock snapshots plus the
// append-only movement ledger connecting them.
//
// Every inventory fact is a pure function of initial stock and the movements
// scheduled so far, so callers may query future hours freely while planning;
// nothing mutates until a movement is scheduled.
type Matrix struct {
	airports map[string]*model.Airport
	aircraft map[string]*model.AircraftType
	codes    []string       // deterministic airport iteration order
	index    map[string]int // airport code -> arena row
	hub      *model.Airport

	arena      [][]node // [airport][hour], bounded by MaxHour+1
	realized   []int    // highest materialized hour per airport
	ledger     *ledger
	applied    int // last hour whose movements have been applied
	violations []Violation

	zeroLeadPurchases bool
	log               logger.Logger
}

// Option configures a Matrix.
type Option func(*Matrix)

// WithZeroLeadPurchases makes purchases land at the hub in the same hour
// they are ordered instead of after the kit's procurement lead time.
func WithZeroLeadPurchases() Option {
	return func(m *Matrix) { m.zeroLeadPurchases = true }
}

// WithLogger sets the logger used to report structural violations.
func WithLogger(l logger.Logger) Option {
	return func(m *Matrix) { m.log = l }
}

// NewMatrix builds the matrix for the given static catalog. Exactly one
// airport must carry the hub flag.
func NewMatrix(airports map[string]*model.Airport, aircraft map[string]*model.AircraftType, opts ...Option) (*Matrix, error) {
	m := &Matrix{
		airports: airports,
		aircraft: aircraft,
		index:    make(map[string]int, len(airports)),
		ledger:   newLedger(),
		applied:  -1,
		log:      logger.Nop{},
	}
	for _, opt := range opts {
		opt(m)
	}
	for code, a := range airports {
		m.codes = append(m.codes, code)
		if a.IsHub {
			if m.hub != nil {
				return nil, fmt.Errorf("state: airports %s and %s both flagged as hub", m.hub.Code, code)
			}
			m.hub = a
		}
	}
	if m.hub == nil {
		return nil, fmt.Errorf("state: no hub airport in catalog")
	}
	sort.Strings(m.codes)

	m.arena = make([][]node, len(m.codes))
	m.realized = make([]int, len(m.codes))
	for i, code := range m.codes {
		m.index[code] = i
		m.arena[i] = make([]node, timeindex.MaxHour+1)
		m.arena[i][0] = node{hour: 0, stock: airports[code].InitialStock, realized: true}
	}
	return m, nil
}

// Hub returns the procurement hub airport.
func (m *Matrix) Hub() *model.Airport { return m.hub }

// AirportCodes returns airport codes in deterministic order.
func (m *Matrix) AirportCodes() []string { return m.codes }

// Airport returns the airport for the given code, or nil if unknown.
func (m *Matrix) Airport(code string) *model.Airport { return m.airports[code] }

// Aircraft returns the aircraft type for the given code, or nil if unknown.
func (m *Matrix) Aircraft(code string) *model.AircraftType { return m.aircraft[code] }

// Violations returns the structural violations recorded so far.
func (m *Matrix) Violations() []Violation { return m.violations }

// ensure materializes (and caches) the node for the airport row at the given
// hour by forward-filling from the last realized snapshot. Amortized O(1)
// per distinct (airport, hour).
func (m *Matrix) ensure(row, hour int) *node {
	if hour > timeindex.MaxHour {
		hour = timeindex.MaxHour
	}
	if hour <= m.realized[row] {
		return &m.arena[row][hour]
	}
	for h := m.realized[row] + 1; h <= hour; h++ {
		m.arena[row][h] = node{hour: h, stock: m.arena[row][h-1].stock, realized: true}
	}
	m.realized[row] = hour
	return &m.arena[row][hour]
}

// adjust applies a stock delta at fromHour and carries it through every
// later snapshot already materialized, keeping lookahead queries consistent.
func (m *Matrix) adjust(row, fromHour int, kit model.KitType, delta int) {
	if fromHour > timeindex.MaxHour {
		return
	}
	m.ensure(row, fromHour)
	for h := fromHour; h <= m.realized[row]; h++ {
		m.arena[row][h].stock.Add(kit, delta)
	}
}

// ApplyMovementsForHour forward-fills every airport's snapshot for the hour,
// credits movements arriving at it and debits movements leaving it. Hours
// must be applied in strictly increasing order; skipped hours in between are
// settled as well so no movement is ever lost.
//
// Debits are intentionally not clamped at zero: a negative balance is a
// structural violation that must stay observable.
func (m *Matrix) ApplyMovementsForHour(hour int) error {
	if hour <= m.applied {
		return fmt.Errorf("state: hour %d already applied (last was %d)", hour, m.applied)
	}
	if hour > timeindex.MaxHour {
		return fmt.Errorf("state: hour %d beyond horizon %d", hour, timeindex.MaxHour)
	}
	for h := m.applied + 1; h <= hour; h++ {
		m.applyHour(h)
	}
	m.applied = hour
	return nil
}

func (m *Matrix) applyHour(hour int) {
	for row := range m.codes {
		m.ensure(row, hour)
	}
	for _, mv := range m.ledger.destinationsAt(hour) {
		m.adjust(m.index[mv.DestAirport], hour, mv.Kit, mv.Quantity)
	}
	for _, mv := range m.ledger.originsAt(hour) {
		// Purchases create kits at the destination; nothing leaves stock
		// at the origin side of the edge.
		if mv.Kind == MovementPurchase {
			continue
		}
		m.adjust(m.index[mv.OriginAirport], hour, mv.Kit, -mv.Quantity)
	}
	m.checkHour(hour)
}

func (m *Matrix) checkHour(hour int) {
	for row, code := range m.codes {
		airport := m.airports[code]
		stock := m.arena[row][hour].stock
		for _, kit := range model.AllKitTypes {
			q := stock.Get(kit)
			switch {
			case q < 0:
				m.record(Violation{Kind: ViolationNegativeStock, Airport: code, Hour: hour, Kit: kit, Stock: q})
			case q > airport.Capacity.Get(kit):
				m.record(Violation{Kind: ViolationOverCapacity, Airport: code, Hour: hour, Kit: kit, Stock: q})
			}
		}
	}
}

func (m *Matrix) record(v Violation) {
	m.violations = append(m.violations, v)
	kind := "negative_stock"
	if v.Kind == ViolationOverCapacity {
		kind = "over_capacity"
	}
	m.log.Warnf("structural violation %s: airport=%s hour=%d kit=%s stock=%d", kind, v.Airport, v.Hour, v.Kit, v.Stock)
}

// ScheduleFlightLoad schedules kits onto a departing flight. Per kit the
// accepted quantity is min(requested, aircraft kit capacity, stock available
// at departure); zero-quantity kits are skipped. Accepted kits are debited
// from the origin at the departure hour immediately and two chained
// movements are recorded: the flight leg and the mandatory post-landing
// processing hold at the destination. Destination capacity is not enforced
// here; respecting it is the strategy's job.
func (m *Matrix) ScheduleFlightLoad(flightID, origin, destination, aircraftCode string, departT, arriveT int, requested model.KitQuantities) (model.KitQuantities, error) {
	var accepted model.KitQuantities
	originRow, ok := m.index[origin]
	if !ok {
		return accepted, fmt.Errorf("state: unknown origin airport %q for flight %s", origin, flightID)
	}
	destAirport, ok := m.airports[destination]
	if !ok {
		return accepted, fmt.Errorf("state: unknown destination airport %q for flight %s", destination, flightID)
	}
	aircraft, ok := m.aircraft[aircraftCode]
	if !ok {
		return accepted, fmt.Errorf("state: unknown aircraft type %q for flight %s", aircraftCode, flightID)
	}
	if departT > timeindex.MaxHour {
		return accepted, nil
	}
	arriveT = timeindex.Clamp(arriveT)

	originNode := m.ensure(originRow, departT)
	for _, kit := range model.AllKitTypes {
		qty := requested.Get(kit)
		if qty <= 0 {
			continue
		}
		load := min3(qty, aircraft.KitCapacity.Get(kit), originNode.stock.Get(kit))
		if load <= 0 {
			continue
		}
		accepted.Set(kit, load)

		m.schedule(&Movement{
			Kind:          MovementFlight,
			OriginAirport: origin,
			OriginHour:    departT,
			DestAirport:   destination,
			DestHour:      arriveT,
			Kit:           kit,
			Quantity:      load,
			FlightID:      flightID,
		})
		m.schedule(&Movement{
			Kind:          MovementProcessing,
			OriginAirport: destination,
			OriginHour:    arriveT,
			DestAirport:   destination,
			DestHour:      timeindex.Clamp(arriveT + destAirport.ProcessingHours(kit)),
			Kit:           kit,
			Quantity:      load,
			FlightID:      flightID,
		})
	}
	return accepted, nil
}

// SchedulePurchase orders kits at the hub. The delivery lands after the
// kit's lead time (or immediately under the zero-lead policy), capped at the
// horizon. Returns nil for non-positive quantities.
func (m *Matrix) SchedulePurchase(kit model.KitType, quantity, purchaseHour int) *Movement {
	if quantity <= 0 || purchaseHour > timeindex.MaxHour {
		return nil
	}
	arrival := purchaseHour + kit.LeadTimeHours()
	if m.zeroLeadPurchases {
		arrival = purchaseHour
	}
	mv := &Movement{
		Kind:          MovementPurchase,
		OriginAirport: m.hub.Code,
		OriginHour:    purchaseHour,
		DestAirport:   m.hub.Code,
		DestHour:      timeindex.Clamp(arrival),
		Kit:           kit,
		Quantity:      quantity,
	}
	m.schedule(mv)
	return mv
}

// schedule appends the movement to the ledger and settles straight away any
// side of the edge whose hour has already been applied; apply will handle
// the rest when its hour comes.
func (m *Matrix) schedule(mv *Movement) {
	m.ledger.append(mv)
	if mv.Kind != MovementPurchase && mv.OriginHour <= m.applied {
		m.adjust(m.index[mv.OriginAirport], mv.OriginHour, mv.Kit, -mv.Quantity)
	}
	if mv.DestHour <= m.applied {
		m.adjust(m.index[mv.DestAirport], mv.DestHour, mv.Kit, mv.Quantity)
	}
}

// AvailableKits returns a copy of the clean stock snapshot for the airport
// at the given hour, materializing it if needed.
func (m *Matrix) AvailableKits(code string, hour int) (model.KitQuantities, error) {
	row, ok := m.index[code]
	if !ok {
		return model.KitQuantities{}, fmt.Errorf("state: unknown airport %q", code)
	}
	return m.ensure(row, hour).stock, nil
}

// ForEachArrival visits every movement landing in the half-open hour window
// (from, to], in scheduling order per hour.
func (m *Matrix) ForEachArrival(from, to int, fn func(*Movement)) {
	if to > timeindex.MaxHour {
		to = timeindex.MaxHour
	}
	for h := from + 1; h <= to; h++ {
		for _, mv := range m.ledger.destinationsAt(h) {
			fn(mv)
		}
	}
}

// TotalStock sums clean stock across all airports at the given hour.
func (m *Matrix) TotalStock(hour int) model.KitQuantities {
	var total model.KitQuantities
	for row := range m.codes {
		stock := m.ensure(row, hour).stock
		for _, kit := range model.AllKitTypes {
			total.Add(kit, stock.Get(kit))
		}
	}
	return total
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
