package model

// FlightPlanEntry is one recurring row of the static flight plan. The plan
// is informational: live flights arrive as backend events, but the plan
// drives dataset sanity checks and offline demand estimates.
type FlightPlanEntry struct {
	Origin         string
	Destination    string
	DepartureHour  int // hour of day 0..23
	ArrivalHour    int // hour of day 0..23
	ArrivalNextDay bool
	DistanceKm     float64
	Weekdays       [7]bool // Monday-first operating days
}

// OperatesOn reports whether the entry operates on the given weekday index
// (0 = Monday).
func (e FlightPlanEntry) OperatesOn(weekday int) bool {
	if weekday < 0 || weekday >= len(e.Weekdays) {
		return false
	}
	return e.Weekdays[weekday]
}
