package model

import "fmt"

// KitType identifies one of the four cabin-class rotable kits.
type KitType int

const (
	KitFirst KitType = iota
	KitBusiness
	KitPremiumEconomy
	KitEconomy
)

// AllKitTypes lists every kit type in a fixed, deterministic order.
var AllKitTypes = [4]KitType{KitFirst, KitBusiness, KitPremiumEconomy, KitEconomy}

// kitSpec holds the static per-kit constants fixed at startup.
type kitSpec struct {
	passengerKey string
	weightKg     float64
	unitCost     float64
	leadTime     int
}

var kitSpecs = [4]kitSpec{
	KitFirst:          {passengerKey: "first", weightKg: 5.0, unitCost: 200.0, leadTime: 48},
	KitBusiness:       {passengerKey: "business", weightKg: 3.0, unitCost: 150.0, leadTime: 36},
	KitPremiumEconomy: {passengerKey: "premiumEconomy", weightKg: 2.5, unitCost: 100.0, leadTime: 24},
	KitEconomy:        {passengerKey: "economy", weightKg: 1.5, unitCost: 50.0, leadTime: 12},
}

// PassengerKey returns the JSON cabin-class key used by the scoring backend.
func (k KitType) PassengerKey() string { return kitSpecs[k].passengerKey }

// WeightKg returns the kit unit weight in kilograms.
func (k KitType) WeightKg() float64 { return kitSpecs[k].weightKg }

// UnitCost returns the replacement cost of a single kit.
func (k KitType) UnitCost() float64 { return kitSpecs[k].unitCost }

// LeadTimeHours returns the procurement lead time at the hub in hours.
func (k KitType) LeadTimeHours() int { return kitSpecs[k].leadTime }

// String returns a human-readable representation of the kit type.
func (k KitType) String() string {
	switch k {
	case KitFirst:
		return "first"
	case KitBusiness:
		return "business"
	case KitPremiumEconomy:
		return "premiumEconomy"
	case KitEconomy:
		return "economy"
	default:
		return "unknown"
	}
}

var kitByPassengerKey = map[string]KitType{
	"first":          KitFirst,
	"business":       KitBusiness,
	"premiumEconomy": KitPremiumEconomy,
	"economy":        KitEconomy,
}

// KitFromPassengerKey maps a backend cabin-class key to a KitType.
func KitFromPassengerKey(key string) (KitType, error) {
	k, ok := kitByPassengerKey[key]
	if !ok {
		return 0, fmt.Errorf("unknown passenger key: %q", key)
	}
	return k, nil
}

// KitQuantities maps each kit type to an integer quantity. The array form
// keeps per-round allocation maps allocation-free and deterministic to
// iterate.
type KitQuantities [4]int

// Get returns the quantity for the given kit.
func (q KitQuantities) Get(k KitType) int { return q[k] }

// Set assigns the quantity for the given kit.
func (q *KitQuantities) Set(k KitType, v int) { q[k] = v }

// Add increments the quantity for the given kit.
func (q *KitQuantities) Add(k KitType, v int) { q[k] += v }

// Total returns the sum over all kit types.
func (q KitQuantities) Total() int {
	t := 0
	for _, v := range q {
		t += v
	}
	return t
}

// IsZero reports whether every quantity is zero.
func (q KitQuantities) IsZero() bool {
	for _, v := range q {
		if v != 0 {
			return false
		}
	}
	return true
}
