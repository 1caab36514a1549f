package metrics

import (
	coremetrics "github.com/flightops/rotables/core/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

// PromSink records simulation telemetry in Prometheus metrics.
type PromSink struct {
	rounds    *prometheus.CounterVec
	cost      *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	purchases *prometheus.CounterVec
	penalties *prometheus.CounterVec
}

// NewPromSink registers simulation metrics on the default Prometheus
// registerer. The Prometheus server is started separately.
func NewPromSink() (coremetrics.Sink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (coremetrics.Sink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	rounds := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "simulation_rounds_total",
		Help: "Total number of rounds played",
	}, []string{"session_id"})
	cost := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "simulation_cost_total",
		Help: "Total cost reported by the scoring backend",
	}, []string{"session_id"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "simulation_round_duration_seconds",
		Help:    "Time spent deciding and playing one round",
		Buckets: prometheus.DefBuckets,
	}, []string{"session_id"})
	purchases := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "simulation_kits_purchased_total",
		Help: "Kits purchased at the hub by kit type",
	}, []string{"session_id", "kit"})
	penalties := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "simulation_penalties_total",
		Help: "Penalties returned by the scoring backend by code",
	}, []string{"session_id", "code"})

	collectors := []prometheus.Collector{rounds, cost, duration, purchases, penalties}
	for i, c := range collectors {
		if err := reg.Register(c); err != nil {
			are, ok := err.(prometheus.AlreadyRegisteredError)
			if !ok {
				return nil, err
			}
			collectors[i] = are.ExistingCollector
		}
	}
	return &PromSink{
		rounds:    collectors[0].(*prometheus.CounterVec),
		cost:      collectors[1].(*prometheus.CounterVec),
		duration:  collectors[2].(*prometheus.HistogramVec),
		purchases: collectors[3].(*prometheus.CounterVec),
		penalties: collectors[4].(*prometheus.CounterVec),
	}, nil
}

// RecordRound updates the per-round counters and the duration histogram.
func (s *PromSink) RecordRound(r coremetrics.RoundStats) error {
	s.rounds.WithLabelValues(r.SessionID).Inc()
	s.cost.WithLabelValues(r.SessionID).Add(r.RoundCost)
	s.duration.WithLabelValues(r.SessionID).Observe(r.RoundDuration.Seconds())
	return nil
}

// RecordPurchase increments the purchased-kit counter.
func (s *PromSink) RecordPurchase(ev coremetrics.PurchaseEvent) error {
	s.purchases.WithLabelValues(ev.SessionID, ev.Kit).Add(float64(ev.Quantity))
	return nil
}

// RecordPenalty increments the penalty counter for the code.
func (s *PromSink) RecordPenalty(ev coremetrics.PenaltyEvent) error {
	s.penalties.WithLabelValues(ev.SessionID, ev.Code).Inc()
	return nil
}
