// Package tuner implements the closed-loop hyperparameter search: it plays
// full sessions with perturbed strategy knobs, rejects configurations that
// trigger structural penalties and keeps the cheapest clean one.
package tuner

import (
	"strings"

	"github.com/flightops/rotables/core/scoring"
)

// PenaltyBreakdown aggregates backend penalties by code over one session.
// The structural ones mean the engine's book-keeping disagreed with the
// backend; any cost there disqualifies the configuration regardless of the
// total.
type PenaltyBreakdown struct {
	NegativeInventory         float64 `json:"negative_inventory"`
	OverCapacityStock         float64 `json:"over_capacity_stock"`
	FlightOverload            float64 `json:"flight_overload"`
	IncorrectFlightLoad       float64 `json:"incorrect_flight_load"`
	UnfulfilledKits           float64 `json:"unfulfilled_kits"`
	EndgameRemainingStock     float64 `json:"endgame_remaining_stock"`
	EndgamePendingProcessing  float64 `json:"endgame_pending_processing"`
	EndgameUnfulfilledFlights float64 `json:"endgame_unfulfilled_flights"`
	EarlyEndOfGame            float64 `json:"early_end_of_game"`
}

// StructuralSum returns the cost of penalties that indicate an invalid plan
// rather than a merely expensive one.
func (b PenaltyBreakdown) StructuralSum() float64 {
	return b.NegativeInventory +
		b.OverCapacityStock +
		b.FlightOverload +
		b.IncorrectFlightLoad +
		b.EarlyEndOfGame
}

// Total returns the cost of all aggregated penalties.
func (b PenaltyBreakdown) Total() float64 {
	return b.StructuralSum() +
		b.UnfulfilledKits +
		b.EndgameRemainingStock +
		b.EndgamePendingProcessing +
		b.EndgameUnfulfilledFlights
}

// Aggregate folds raw backend penalties into a breakdown. Unknown codes are
// ignored.
func Aggregate(penalties []scoring.Penalty) PenaltyBreakdown {
	var b PenaltyBreakdown
	for _, p := range penalties {
		code := strings.ToUpper(strings.TrimSpace(p.Code))
		v := p.Penalty
		switch code {
		case "NEGATIVE_INVENTORY":
			b.NegativeInventory += v
		case "OVER_CAPACITY_STOCK":
			b.OverCapacityStock += v
		case "FLIGHT_OVERLOAD":
			b.FlightOverload += v
		case "INCORRECT_FLIGHT_LOAD":
			b.IncorrectFlightLoad += v
		case "UNFULFILLED_KIT", "UNFULFILLED_FLIGHT_KIT", "UNFULFILLED_FLIGHT_KITS":
			b.UnfulfilledKits += v
		case "END_OF_GAME_REMAINING_STOCK":
			b.EndgameRemainingStock += v
		case "END_OF_GAME_PENDING_KIT_PROCESSING":
			b.EndgamePendingProcessing += v
		case "END_OF_GAME_UNFULFILLED_FLIGHT_KITS":
			b.EndgameUnfulfilledFlights += v
		case "EARLY_END_OF_GAME":
			b.EarlyEndOfGame += v
		}
	}
	return b
}
