package strategy

// Config holds every tunable knob of the allocation heuristic. The knobs are
// deliberately exposed so the closed-loop tuner can explore the space
// without touching the decision logic itself.
type Config struct {
	// Lookahead sizing.
	SafetyBufferHours  int        `json:"safety_buffer_hours"`
	HorizonMultipliers [4]float64 `json:"horizon_multipliers"` // first, business, premium economy, economy
	EndgameWindowHours int        `json:"endgame_window_hours"`

	// Passenger service.
	SafeLoadRatio float64 `json:"safe_load_ratio"`

	// Repositioning.
	AllowReposition       bool       `json:"allow_reposition"`
	RepositionDistanceKm  float64    `json:"reposition_distance_km"`
	CostDominanceFactor   float64    `json:"cost_dominance_factor"`
	MinReserveAtOrigin    int        `json:"min_reserve_at_origin"`
	SafetyStockRatio      [4]float64 `json:"safety_stock_ratio"`
	DestinationHeadroomPc float64    `json:"destination_headroom_pct"`

	// Hub purchases.
	MinPurchaseThreshold int     `json:"min_purchase_threshold"`
	PurchaseSafetyRatio  float64 `json:"purchase_safety_ratio"`
	EndgamePurchaseBoost float64 `json:"endgame_purchase_boost"`
}

// DefaultConfig returns the tuned baseline knobs.
func DefaultConfig() Config {
	return Config{
		SafetyBufferHours:  12,
		HorizonMultipliers: [4]float64{1, 1, 1, 1},
		EndgameWindowHours: 48,

		SafeLoadRatio: 0.35,

		AllowReposition:       true,
		RepositionDistanceKm:  1200,
		CostDominanceFactor:   1.1,
		MinReserveAtOrigin:    2,
		SafetyStockRatio:      [4]float64{0.2, 0.2, 0.2, 0.2},
		DestinationHeadroomPc: 1.0,

		MinPurchaseThreshold: 3,
		PurchaseSafetyRatio:  0.05,
		EndgamePurchaseBoost: 0.2,
	}
}

// Presets maps the named tuning profiles onto the single parameterized
// algorithm. Kept as an explicit factory constructed on demand rather than
// process-wide registry state.
func Presets() map[string]Config {
	base := DefaultConfig()

	aggressive := base
	aggressive.SafeLoadRatio = 0.6
	aggressive.PurchaseSafetyRatio = 0.15
	aggressive.RepositionDistanceKm = 2000

	conservative := base
	conservative.SafeLoadRatio = 0.25
	conservative.MinReserveAtOrigin = 4
	conservative.SafetyStockRatio = [4]float64{0.3, 0.3, 0.3, 0.3}
	conservative.PurchaseSafetyRatio = 0.02

	hubPriority := base
	hubPriority.AllowReposition = false
	hubPriority.MinPurchaseThreshold = 6
	hubPriority.PurchaseSafetyRatio = 0.1

	noReposition := base
	noReposition.AllowReposition = false

	shortHaul := base
	shortHaul.RepositionDistanceKm = 600
	shortHaul.CostDominanceFactor = 0.9

	longLookahead := base
	longLookahead.SafetyBufferHours = 24
	longLookahead.HorizonMultipliers = [4]float64{1.5, 1.5, 1.25, 1.25}

	endgamePush := base
	endgamePush.EndgameWindowHours = 72
	endgamePush.EndgamePurchaseBoost = 0.35

	leanStock := base
	leanStock.SafetyStockRatio = [4]float64{0.1, 0.1, 0.1, 0.1}
	leanStock.MinReserveAtOrigin = 1

	bulkBuyer := base
	bulkBuyer.MinPurchaseThreshold = 8
	bulkBuyer.PurchaseSafetyRatio = 0.2

	return map[string]Config{
		"balanced":       base,
		"aggressive":     aggressive,
		"conservative":   conservative,
		"hub_priority":   hubPriority,
		"no_reposition":  noReposition,
		"short_haul":     shortHaul,
		"long_lookahead": longLookahead,
		"endgame_push":   endgamePush,
		"lean_stock":     leanStock,
		"bulk_buyer":     bulkBuyer,
	}
}
