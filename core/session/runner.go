// Package session drives the hourly game loop: it owns the live flight set,
// feeds each hour's departures to the strategy, writes the resulting
// movements into the stock matrix and exchanges instructions with the
// scoring backend until the horizon is played out.
package session

import (
	"context"
	"fmt"
	"time"

	"github.com/flightops/rotables/core/logger"
	"github.com/flightops/rotables/core/metrics"
	"github.com/flightops/rotables/core/model"
	"github.com/flightops/rotables/core/monitoring"
	"github.com/flightops/rotables/core/scoring"
	"github.com/flightops/rotables/core/state"
	"github.com/flightops/rotables/core/strategy"
	"github.com/flightops/rotables/core/timeindex"
	"github.com/flightops/rotables/internal/eventbus"
)

// State is the lifecycle of one session attempt.
type State string

const (
	StateIdle      State = "idle"
	StateRunning   State = "running"
	StateCompleted State = "completed"
	StateStopped   State = "stopped"
	StateFailed    State = "failed"
)

// Event summarizes one played round for observers.
type Event struct {
	SessionID      string    `json:"sessionId"`
	Day            int       `json:"day"`
	Hour           int       `json:"hour"`
	FlightsLoaded  int       `json:"flightsLoaded"`
	KitsLoaded     int       `json:"kitsLoaded"`
	KitsPurchased  int       `json:"kitsPurchased"`
	RoundCost      float64   `json:"roundCost"`
	CumulativeCost float64   `json:"cumulativeCost"`
	Penalties      int       `json:"penalties"`
	Time           time.Time `json:"time"`
}

// Runner plays a single session from hour 0 to the end of the horizon. It
// is not safe for concurrent use; Worker wraps it for background execution.
type Runner struct {
	matrix  *state.Matrix
	strat   *strategy.Lookahead
	client  scoring.Client
	log     logger.Logger
	sink    metrics.Sink
	bus     *eventbus.Bus[Event]
	endHour int

	flights   map[string]*model.Flight
	sessionID string
	cost      float64
}

// Option customizes a Runner.
type Option func(*Runner)

// WithLogger sets the runner's logger.
func WithLogger(l logger.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.log = l
		}
	}
}

// WithMetrics sets the telemetry sink.
func WithMetrics(s metrics.Sink) Option {
	return func(r *Runner) {
		if s != nil {
			r.sink = s
		}
	}
}

// WithBus sets the event bus round events are published to.
func WithBus(b *eventbus.Bus[Event]) Option {
	return func(r *Runner) { r.bus = b }
}

// WithEndHour sets the last played global hour. Hours beyond the horizon
// are clamped.
func WithEndHour(t int) Option {
	return func(r *Runner) {
		if t >= 0 {
			r.endHour = timeindex.Clamp(t)
		}
	}
}

// NewRunner builds a runner over a fresh matrix. The matrix must not be
// shared with another runner.
func NewRunner(m *state.Matrix, strat *strategy.Lookahead, client scoring.Client, opts ...Option) *Runner {
	r := &Runner{
		matrix:  m,
		strat:   strat,
		client:  client,
		log:     logger.Nop{},
		sink:    metrics.NopSink{},
		endHour: timeindex.MaxHour,
		flights: make(map[string]*model.Flight),
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// SessionID returns the backend session identifier, empty until started.
func (r *Runner) SessionID() string { return r.sessionID }

// CumulativeCost returns the total cost reported by the backend so far.
func (r *Runner) CumulativeCost() float64 { return r.cost }

// TotalRounds returns the number of rounds a full run plays.
func (r *Runner) TotalRounds() int { return r.endHour + 1 }

// Run plays the whole session. Cancellation is honored at hour boundaries
// only, so every submitted instruction gets its outcome ingested. Whatever
// the outcome, a best-effort end-session call is made before returning.
func (r *Runner) Run(ctx context.Context) (err error) {
	r.sessionID, err = r.client.StartSession(ctx)
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	r.log.Infof("session %s started", r.sessionID)

	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("session round panicked: %v", p)
			monitoring.CaptureException(err, map[string]string{"session_id": r.sessionID})
		}
		endCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if endErr := r.client.EndSession(endCtx); endErr != nil {
			r.log.Warnf("end session %s: %v", r.sessionID, endErr)
		}
	}()

	for t := 0; t <= r.endHour; t++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err := r.playHour(ctx, t); err != nil {
			monitoring.CaptureException(err, map[string]string{"session_id": r.sessionID})
			return err
		}
	}
	r.log.Infof("session %s completed: total cost %.2f", r.sessionID, r.cost)
	return nil
}

// playHour advances the matrix to t, lets the strategy decide, schedules the
// decisions and plays the round against the backend.
func (r *Runner) playHour(ctx context.Context, t int) error {
	started := time.Now()
	if err := r.matrix.ApplyMovementsForHour(t); err != nil {
		return err
	}
	day, hour := timeindex.FromGlobalHour(t)

	flights := make([]*model.Flight, 0, len(r.flights))
	for _, f := range r.flights {
		flights = append(flights, f)
	}
	loads, purchases := r.strat.Decide(t, flights, r.matrix)

	in, kitsLoaded, kitsPurchased, err := r.applyDecisions(day, hour, t, loads, purchases)
	if err != nil {
		return err
	}

	// The decisions are already scheduled in the matrix, so the round call
	// must run to completion; a stop takes effect at the next hour boundary.
	out, err := r.client.PlayRound(context.WithoutCancel(ctx), in)
	if err != nil {
		return fmt.Errorf("play round day=%d hour=%d: %w", day, hour, err)
	}
	r.ingest(out, day, hour)

	stats := metrics.RoundStats{
		SessionID:      r.sessionID,
		Day:            day,
		Hour:           hour,
		FlightsLoaded:  len(in.FlightLoads),
		KitsLoaded:     kitsLoaded,
		KitsPurchased:  kitsPurchased,
		RoundCost:      out.TotalCost,
		CumulativeCost: r.cost,
		Penalties:      len(out.Penalties),
		RoundDuration:  time.Since(started),
		Time:           time.Now(),
	}
	if err := r.sink.RecordRound(stats); err != nil {
		r.log.Warnf("record round day=%d hour=%d: %v", day, hour, err)
	}
	if r.bus != nil {
		r.bus.Publish(Event{
			SessionID:      r.sessionID,
			Day:            day,
			Hour:           hour,
			FlightsLoaded:  len(in.FlightLoads),
			KitsLoaded:     kitsLoaded,
			KitsPurchased:  kitsPurchased,
			RoundCost:      out.TotalCost,
			CumulativeCost: r.cost,
			Penalties:      len(out.Penalties),
			Time:           stats.Time,
		})
	}
	r.log.Debugf("day=%02d hour=%02d loads=%d kits=%d purchased=%d cost=%.2f cum=%.2f",
		day, hour, len(in.FlightLoads), kitsLoaded, kitsPurchased, out.TotalCost, r.cost)
	return nil
}

// applyDecisions schedules the strategy's decisions in the matrix and builds
// the round instruction from what the matrix actually accepted.
func (r *Runner) applyDecisions(day, hour, t int, loads []strategy.LoadDecision, purchases []strategy.PurchaseDecision) (scoring.Instruction, int, int, error) {
	in := scoring.Instruction{Day: day, Hour: hour, FlightLoads: []scoring.FlightLoad{}}
	kitsLoaded := 0

	for _, d := range loads {
		f := r.flights[d.FlightID]
		if f == nil {
			continue
		}
		depT, ok := f.DepartureHour()
		if !ok {
			continue
		}
		arrT, ok := f.ArrivalHour()
		if !ok {
			continue
		}
		accepted, err := r.matrix.ScheduleFlightLoad(f.ID, f.Origin, f.Destination, f.AircraftType, depT, arrT, d.Kits)
		if err != nil {
			return in, 0, 0, fmt.Errorf("schedule load for flight %s: %w", f.ID, err)
		}
		if accepted.IsZero() {
			continue
		}
		kitsLoaded += accepted.Total()
		in.FlightLoads = append(in.FlightLoads, scoring.FlightLoad{
			FlightID:   f.ID,
			LoadedKits: scoring.CabinKitsFrom(accepted),
		})
	}

	var bought model.KitQuantities
	for _, p := range purchases {
		mv := r.matrix.SchedulePurchase(p.Kit, p.Quantity, t)
		if mv == nil {
			continue
		}
		bought.Add(p.Kit, p.Quantity)
		if err := r.sink.RecordPurchase(metrics.PurchaseEvent{
			SessionID: r.sessionID,
			Day:       day,
			Hour:      hour,
			Kit:       p.Kit.PassengerKey(),
			Quantity:  p.Quantity,
			Time:      time.Now(),
		}); err != nil {
			r.log.Warnf("record purchase: %v", err)
		}
	}
	if !bought.IsZero() {
		orders := scoring.CabinKitsFrom(bought)
		in.KitPurchasingOrders = &orders
	}
	return in, kitsLoaded, bought.Total(), nil
}

// ingest folds the backend outcome into the live flight set and running cost.
func (r *Runner) ingest(out *scoring.Outcome, day, hour int) {
	if out == nil {
		return
	}
	for _, u := range out.FlightUpdates {
		if u.FlightID == "" {
			continue
		}
		f := r.flights[u.FlightID]
		if f == nil {
			f = &model.Flight{ID: u.FlightID, Status: model.StatusScheduled}
		}
		u.ApplyTo(f)
		if f.Status == model.StatusLanded {
			delete(r.flights, u.FlightID)
		} else {
			r.flights[u.FlightID] = f
		}
	}
	r.cost += out.TotalCost
	for _, p := range out.Penalties {
		r.log.Warnf("penalty %s flight=%s day=%d hour=%d: %.2f (%s)",
			p.Code, p.FlightID, day, hour, p.Penalty, p.Reason)
		if err := r.sink.RecordPenalty(metrics.PenaltyEvent{
			SessionID: r.sessionID,
			Day:       day,
			Hour:      hour,
			Code:      p.Code,
			Cost:      p.Penalty,
			Time:      time.Now(),
		}); err != nil {
			r.log.Warnf("record penalty: %v", err)
		}
	}
}
