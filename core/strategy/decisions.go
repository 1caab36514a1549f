package strategy

import "github.com/flightops/rotables/core/model"

// LoadDecision is the strategy's verdict for a single departing flight.
type LoadDecision struct {
	FlightID string
	Kits     model.KitQuantities
}

// PurchaseDecision orders kits at the hub for the current hour.
type PurchaseDecision struct {
	Kit      model.KitType
	Quantity int
}
