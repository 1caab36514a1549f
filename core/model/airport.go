package model

// Airport holds the static per-airport facts loaded from the dataset.
// Instances are immutable once loaded; exactly one airport carries the hub
// flag.
type Airport struct {
	Code           string
	Name           string
	IsHub          bool
	Capacity       KitQuantities // max clean kits storable per kit type
	InitialStock   KitQuantities // clean kits on hand at hour 0
	LoadingCost    [4]float64    // cost to load one kit onto a flight
	ProcessingCost [4]float64    // cost to process one returned kit
	ProcessingTime [4]int        // turnaround hours before a landed kit is reusable
}

// ProcessingHours returns the turnaround delay for the given kit type.
func (a *Airport) ProcessingHours(k KitType) int { return a.ProcessingTime[k] }

// Headroom returns the remaining storage capacity for the given kit type at
// the provided stock level. Never negative.
func (a *Airport) Headroom(k KitType, stock int) int {
	h := a.Capacity.Get(k) - stock
	if h < 0 {
		return 0
	}
	return h
}

// AircraftType holds the static per-aircraft-type facts loaded from the
// dataset.
type AircraftType struct {
	Code          string
	FuelCostPerKg float64 // fuel cost per kg per km flown
	Seats         KitQuantities
	KitCapacity   KitQuantities
}
