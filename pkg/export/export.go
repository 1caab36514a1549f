// Package export writes tuning experiments to CSV and JSON files for
// offline analysis.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/flightops/rotables/core/tuner"
)

var csvHeader = []string{
	"run_at", "accepted", "total_cost",
	"negative_inventory", "over_capacity_stock", "flight_overload",
	"incorrect_flight_load", "unfulfilled_kits", "endgame_remaining_stock",
	"endgame_pending_processing", "endgame_unfulfilled_flights", "early_end_of_game",
	"safety_buffer_hours",
	"horizon_multiplier_first", "horizon_multiplier_business",
	"horizon_multiplier_premium_economy", "horizon_multiplier_economy",
	"endgame_window_hours", "safe_load_ratio",
	"allow_reposition", "reposition_distance_km", "cost_dominance_factor",
	"min_reserve_at_origin",
	"safety_stock_ratio_first", "safety_stock_ratio_business",
	"safety_stock_ratio_premium_economy", "safety_stock_ratio_economy",
	"destination_headroom_pct",
	"min_purchase_threshold", "purchase_safety_ratio", "endgame_purchase_boost",
}

func f(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }

func row(e tuner.Experiment) []string {
	c := e.Config
	p := e.Penalties
	return []string{
		e.RunAt.UTC().Format(time.RFC3339),
		strconv.FormatBool(e.Accepted),
		f(e.TotalCost),
		f(p.NegativeInventory), f(p.OverCapacityStock), f(p.FlightOverload),
		f(p.IncorrectFlightLoad), f(p.UnfulfilledKits), f(p.EndgameRemainingStock),
		f(p.EndgamePendingProcessing), f(p.EndgameUnfulfilledFlights), f(p.EarlyEndOfGame),
		strconv.Itoa(c.SafetyBufferHours),
		f(c.HorizonMultipliers[0]), f(c.HorizonMultipliers[1]),
		f(c.HorizonMultipliers[2]), f(c.HorizonMultipliers[3]),
		strconv.Itoa(c.EndgameWindowHours), f(c.SafeLoadRatio),
		strconv.FormatBool(c.AllowReposition), f(c.RepositionDistanceKm), f(c.CostDominanceFactor),
		strconv.Itoa(c.MinReserveAtOrigin),
		f(c.SafetyStockRatio[0]), f(c.SafetyStockRatio[1]),
		f(c.SafetyStockRatio[2]), f(c.SafetyStockRatio[3]),
		f(c.DestinationHeadroomPc),
		strconv.Itoa(c.MinPurchaseThreshold), f(c.PurchaseSafetyRatio), f(c.EndgamePurchaseBoost),
	}
}

// WriteCSV writes all experiments to path, one row per experiment.
func WriteCSV(path string, experiments []tuner.Experiment) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}

	w := csv.NewWriter(file)
	writeErr := w.Write(csvHeader)
	for _, e := range experiments {
		if writeErr != nil {
			break
		}
		writeErr = w.Write(row(e))
	}
	w.Flush()
	if writeErr == nil {
		writeErr = w.Error()
	}
	if err := file.Close(); writeErr == nil {
		writeErr = err
	}
	return writeErr
}

// WriteJSON writes the experiments plus a distribution summary.
func WriteJSON(path string, experiments []tuner.Experiment) error {
	doc := struct {
		Summary     tuner.Summary      `json:"summary"`
		Experiments []tuner.Experiment `json:"experiments"`
	}{
		Summary:     tuner.Summarize(experiments),
		Experiments: experiments,
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode experiments: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
