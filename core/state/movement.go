package state

import "github.com/flightops/rotables/core/model"

// MovementKind categorizes an edge in the time-expanded network.
type MovementKind int

const (
	// MovementFlight carries kits on board between two airports.
	MovementFlight MovementKind = iota
	// MovementProcessing holds landed kits at the destination until
	// turnaround cleaning completes.
	MovementProcessing
	// MovementPurchase delivers newly bought kits to the hub after the
	// procurement lead time.
	MovementPurchase
)

// String returns a human-readable representation of the movement kind.
func (k MovementKind) String() string {
	switch k {
	case MovementFlight:
		return "flight"
	case MovementProcessing:
		return "processing"
	case MovementPurchase:
		return "purchase"
	default:
		return "unknown"
	}
}

// Movement is one scheduled kit transfer between (airport, hour) pairs.
// Movements are append-only: once scheduled they are never mutated.
type Movement struct {
	Kind          MovementKind
	OriginAirport string
	OriginHour    int
	DestAirport   string
	DestHour      int
	Kit           model.KitType
	Quantity      int
	FlightID      string // set for flight and processing edges
}

// ledger indexes movements by origin hour and destination hour so applying
// one hour's movements never scans the whole history.
type ledger struct {
	all      []*Movement
	byOrigin map[int][]*Movement
	byDest   map[int][]*Movement
}

func newLedger() *ledger {
	return &ledger{
		byOrigin: make(map[int][]*Movement),
		byDest:   make(map[int][]*Movement),
	}
}

func (l *ledger) append(mv *Movement) {
	l.all = append(l.all, mv)
	l.byOrigin[mv.OriginHour] = append(l.byOrigin[mv.OriginHour], mv)
	l.byDest[mv.DestHour] = append(l.byDest[mv.DestHour], mv)
}

func (l *ledger) originsAt(hour int) []*Movement { return l.byOrigin[hour] }

func (l *ledger) destinationsAt(hour int) []*Movement { return l.byDest[hour] }
