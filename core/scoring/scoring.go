// Package scoring defines the contract with the external scoring backend:
// the per-hour instruction we submit, the outcome it returns, and the client
// interface the session runner drives. Decoding is tolerant by design — the
// backend may omit any optional field and the engine must never crash on it.
package scoring

import (
	"context"
	"strings"

	"github.com/flightops/rotables/core/model"
)

// CabinKits is the per-cabin-class quantity object used on the wire.
type CabinKits struct {
	First          int `json:"first"`
	Business       int `json:"business"`
	PremiumEconomy int `json:"premiumEconomy"`
	Economy        int `json:"economy"`
}

// CabinKitsFrom converts internal quantities to the wire shape.
func CabinKitsFrom(q model.KitQuantities) CabinKits {
	return CabinKits{
		First:          q.Get(model.KitFirst),
		Business:       q.Get(model.KitBusiness),
		PremiumEconomy: q.Get(model.KitPremiumEconomy),
		Economy:        q.Get(model.KitEconomy),
	}
}

// Quantities converts the wire shape to internal quantities.
func (c CabinKits) Quantities() model.KitQuantities {
	var q model.KitQuantities
	q.Set(model.KitFirst, c.First)
	q.Set(model.KitBusiness, c.Business)
	q.Set(model.KitPremiumEconomy, c.PremiumEconomy)
	q.Set(model.KitEconomy, c.Economy)
	return q
}

// FlightLoad reports the kits loaded onto one flight this hour.
type FlightLoad struct {
	FlightID   string    `json:"flightId"`
	LoadedKits CabinKits `json:"loadedKits"`
}

// Instruction is the payload submitted once per hour.
type Instruction struct {
	Day                 int          `json:"day"`
	Hour                int          `json:"hour"`
	FlightLoads         []FlightLoad `json:"flightLoads"`
	KitPurchasingOrders *CabinKits   `json:"kitPurchasingOrders"`
}

// HourRef mirrors the backend's {day, hour} objects.
type HourRef struct {
	Day  int `json:"day"`
	Hour int `json:"hour"`
}

// FlightUpdate is one flight event inside an outcome.
type FlightUpdate struct {
	EventType          string    `json:"eventType"`
	FlightID           string    `json:"flightId"`
	FlightNumber       string    `json:"flightNumber"`
	OriginAirport      string    `json:"originAirport"`
	DestinationAirport string    `json:"destinationAirport"`
	Departure          *HourRef  `json:"departure"`
	Arrival            *HourRef  `json:"arrival"`
	Passengers         CabinKits `json:"passengers"`
	AircraftType       string    `json:"aircraftType"`
	Distance           float64   `json:"distance"`
}

// Penalty is one penalty entry inside an outcome.
type Penalty struct {
	Code       string  `json:"code"`
	FlightID   string  `json:"flightId"`
	IssuedDay  int     `json:"issuedDay"`
	IssuedHour int     `json:"issuedHour"`
	Penalty    float64 `json:"penalty"`
	Reason     string  `json:"reason"`
}

// Outcome is the backend's response for one round. Missing lists decode to
// nil and are treated as empty.
type Outcome struct {
	Day           int            `json:"day"`
	Hour          int            `json:"hour"`
	FlightUpdates []FlightUpdate `json:"flightUpdates"`
	Penalties     []Penalty      `json:"penalties"`
	TotalCost     float64        `json:"totalCost"`
}

// Client talks to the scoring backend for one session.
type Client interface {
	// StartSession opens a session and returns its identifier.
	StartSession(ctx context.Context) (string, error)
	// PlayRound submits one hour's instruction and returns the outcome.
	PlayRound(ctx context.Context, in Instruction) (*Outcome, error)
	// EndSession closes the session. Safe to call after failures.
	EndSession(ctx context.Context) error
}

// Status reads the event type as a flight status, defaulting to the
// current status when absent.
func (u FlightUpdate) Status(current model.FlightStatus) model.FlightStatus {
	ev := strings.ToUpper(strings.TrimSpace(u.EventType))
	if ev == "" {
		return current
	}
	return model.FlightStatus(ev)
}

// ApplyTo folds the event into the live flight instance. Actual times,
// distances and passenger counts override planned values once the backend
// reports check-in or landing; absent fields leave the flight untouched.
func (u FlightUpdate) ApplyTo(f *model.Flight) {
	status := u.Status(f.Status)
	f.Status = status
	if u.FlightNumber != "" {
		f.Number = u.FlightNumber
	}
	if u.AircraftType != "" {
		f.AircraftType = u.AircraftType
	}
	if u.OriginAirport != "" {
		f.Origin = u.OriginAirport
	}
	if u.DestinationAirport != "" {
		f.Destination = u.DestinationAirport
	}

	if u.Departure != nil {
		ref := &model.HourRef{Day: u.Departure.Day, Hour: u.Departure.Hour}
		if status == model.StatusCheckedIn {
			f.ActualDeparture = ref
		} else {
			f.PlannedDeparture = ref
		}
	}
	if u.Arrival != nil {
		ref := &model.HourRef{Day: u.Arrival.Day, Hour: u.Arrival.Hour}
		if status == model.StatusLanded {
			f.ActualArrival = ref
		} else {
			f.PlannedArrival = ref
		}
	}

	if u.Distance > 0 {
		if status == model.StatusLanded {
			f.ActualDistance = u.Distance
		} else {
			f.PlannedDistance = u.Distance
		}
	}

	passengers := u.Passengers.Quantities()
	switch status {
	case model.StatusCheckedIn:
		f.ActualPassengers = passengers
	case model.StatusLanded:
		if !passengers.IsZero() {
			f.ActualPassengers = passengers
		}
	default:
		f.PlannedPassengers = passengers
	}
}
