package model

import "github.com/flightops/rotables/core/timeindex"

// FlightStatus tracks the lifecycle reported by the scoring backend.
type FlightStatus string

const (
	StatusScheduled FlightStatus = "SCHEDULED"
	StatusCheckedIn FlightStatus = "CHECKED_IN"
	StatusLanded    FlightStatus = "LANDED"
)

// HourRef is an optional (day, hour) reference from a backend event.
type HourRef struct {
	Day  int
	Hour int
}

// GlobalHour converts the reference to a global hour index.
func (r HourRef) GlobalHour() int { return timeindex.ToGlobalHour(r.Day, r.Hour) }

// Flight is one live flight instance. It is created on the first
// SCHEDULED or CHECKED_IN event, updated in place as the backend reports
// progress, and discarded once LANDED.
type Flight struct {
	ID           string
	Number       string
	Origin       string
	Destination  string
	AircraftType string
	Status       FlightStatus

	PlannedDeparture *HourRef
	PlannedArrival   *HourRef
	ActualDeparture  *HourRef
	ActualArrival    *HourRef

	PlannedDistance float64
	ActualDistance  float64

	PlannedPassengers KitQuantities
	ActualPassengers  KitQuantities
}

// DepartureHour returns the flight's departure as a global hour, preferring
// the actual departure over the planned one. ok is false when neither is
// known yet.
func (f *Flight) DepartureHour() (t int, ok bool) {
	if f.ActualDeparture != nil {
		return f.ActualDeparture.GlobalHour(), true
	}
	if f.PlannedDeparture != nil {
		return f.PlannedDeparture.GlobalHour(), true
	}
	return 0, false
}

// ArrivalHour returns the flight's arrival as a global hour, preferring the
// actual arrival over the planned one.
func (f *Flight) ArrivalHour() (t int, ok bool) {
	if f.ActualArrival != nil {
		return f.ActualArrival.GlobalHour(), true
	}
	if f.PlannedArrival != nil {
		return f.PlannedArrival.GlobalHour(), true
	}
	return 0, false
}

// Distance returns the best known flown distance in km.
func (f *Flight) Distance() float64 {
	if f.ActualDistance > 0 {
		return f.ActualDistance
	}
	return f.PlannedDistance
}

// Passengers returns the best known passenger count for the given kit type.
// Checked-in counts take precedence over the schedule.
func (f *Flight) Passengers(k KitType) int {
	if !f.ActualPassengers.IsZero() {
		return f.ActualPassengers.Get(k)
	}
	return f.PlannedPassengers.Get(k)
}

// DepartsAt reports whether the flight departs at the given global hour.
func (f *Flight) DepartsAt(t int) bool {
	dep, ok := f.DepartureHour()
	return ok && dep == t
}
