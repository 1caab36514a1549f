// Package app wires configuration, datasets, telemetry and the session
// runner into runnable services.
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	apisession "github.com/flightops/rotables/api/session"
	"github.com/flightops/rotables/config"
	coremetrics "github.com/flightops/rotables/core/metrics"
	"github.com/flightops/rotables/core/model"
	"github.com/flightops/rotables/core/monitoring"
	"github.com/flightops/rotables/core/session"
	"github.com/flightops/rotables/core/state"
	"github.com/flightops/rotables/core/strategy"
	"github.com/flightops/rotables/infra/dataset"
	"github.com/flightops/rotables/infra/logger"
	"github.com/flightops/rotables/infra/metrics"
	infraMonitoring "github.com/flightops/rotables/infra/monitoring"
	infraScoring "github.com/flightops/rotables/infra/scoring"
	"github.com/flightops/rotables/internal/eventbus"
)

// Service holds everything needed to play scoring sessions: the loaded
// fleet datasets, the resolved strategy knobs and the telemetry sinks.
type Service struct {
	cfg      *config.Config
	airports map[string]*model.Airport
	aircraft map[string]*model.AircraftType
	plan     []model.FlightPlanEntry
	sink     coremetrics.Sink
	log      logger.Logger

	promEnabled bool
	promAddr    string
}

// New creates a Service from the configuration. Datasets are loaded once
// and shared by every runner the service builds.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("service")

	airports, err := dataset.LoadAirports(cfg.Dataset.AirportsPath())
	if err != nil {
		return nil, fmt.Errorf("load airports: %w", err)
	}
	aircraft, err := dataset.LoadAircraftTypes(cfg.Dataset.AircraftPath())
	if err != nil {
		return nil, fmt.Errorf("load aircraft types: %w", err)
	}
	plan, err := dataset.LoadFlightPlan(cfg.Dataset.FlightPlanPath())
	if err != nil {
		return nil, fmt.Errorf("load flight plan: %w", err)
	}
	for _, entry := range plan {
		if _, ok := airports[entry.Origin]; !ok {
			logg.Warnf("flight plan references unknown origin airport %s", entry.Origin)
		}
		if _, ok := airports[entry.Destination]; !ok {
			logg.Warnf("flight plan references unknown destination airport %s", entry.Destination)
		}
	}
	logg.Infof("datasets loaded: %d airports, %d aircraft types, %d flight plan entries",
		len(airports), len(aircraft), len(plan))

	var sinks []coremetrics.Sink
	if cfg.Metrics.Prometheus.Enabled {
		sink, err := metrics.NewPromSink()
		if err != nil {
			return nil, fmt.Errorf("prom sink: %w", err)
		}
		sinks = append(sinks, sink)
	}
	if cfg.Metrics.Influx.Enabled {
		ic := cfg.Metrics.Influx
		sinks = append(sinks, metrics.NewInfluxSinkWithFallback(ic.URL, ic.Token, ic.Org, ic.Bucket))
	}
	var sink coremetrics.Sink = coremetrics.NopSink{}
	if len(sinks) == 1 {
		sink = sinks[0]
	} else if len(sinks) > 1 {
		sink = coremetrics.NewMultiSink(sinks...)
	}

	monitor, err := infraMonitoring.NewSentryMonitor(cfg.Sentry)
	if err != nil {
		return nil, fmt.Errorf("sentry: %w", err)
	}
	monitoring.Init(monitor)

	return &Service{
		cfg:         cfg,
		airports:    airports,
		aircraft:    aircraft,
		plan:        plan,
		sink:        sink,
		log:         logg,
		promEnabled: cfg.Metrics.Prometheus.Enabled,
		promAddr:    fmt.Sprintf(":%d", cfg.Metrics.Prometheus.Port),
	}, nil
}

// FlightPlan returns the loaded flight plan entries.
func (s *Service) FlightPlan() []model.FlightPlanEntry { return s.plan }

// NewRunner assembles a session runner with a fresh inventory matrix. The
// provided bus may be nil when nobody observes events; extra sinks are
// combined with the service-level telemetry sink.
func (s *Service) NewRunner(bus *eventbus.Bus[session.Event], extra ...coremetrics.Sink) (*session.Runner, error) {
	return s.newRunnerWithConfig(s.cfg.Strategy.Resolve(), bus, extra...)
}

func (s *Service) newRunnerWithConfig(stratCfg strategy.Config, bus *eventbus.Bus[session.Event], extra ...coremetrics.Sink) (*session.Runner, error) {
	var opts []state.Option
	opts = append(opts, state.WithLogger(logger.New("matrix")))
	if s.cfg.Session.ZeroLeadPurchases {
		opts = append(opts, state.WithZeroLeadPurchases())
	}
	matrix, err := state.NewMatrix(s.airports, s.aircraft, opts...)
	if err != nil {
		return nil, fmt.Errorf("inventory matrix: %w", err)
	}

	strat := strategy.New(stratCfg, logger.New("strategy"))
	client := infraScoring.New(s.cfg.Scoring.BaseURL, s.cfg.Scoring.APIKey,
		infraScoring.WithHTTPClient(&http.Client{Timeout: time.Duration(s.cfg.Scoring.TimeoutSeconds) * time.Second}),
		infraScoring.WithLogger(logger.New("scoring-client")),
	)

	sink := s.sink
	if len(extra) > 0 {
		all := append([]coremetrics.Sink{sink}, extra...)
		sink = coremetrics.NewMultiSink(all...)
	}

	ropts := []session.Option{
		session.WithLogger(logger.New("runner")),
		session.WithMetrics(sink),
		session.WithEndHour(s.cfg.Session.EndGlobalHour()),
	}
	if bus != nil {
		ropts = append(ropts, session.WithBus(bus))
	}
	return session.NewRunner(matrix, strat, client, ropts...), nil
}

// Run plays a single full session and blocks until it completes or the
// context is cancelled.
func (s *Service) Run(ctx context.Context) error {
	s.startPromServer(ctx)
	defer monitoring.Flush(2 * time.Second)

	runner, err := s.NewRunner(nil)
	if err != nil {
		return err
	}
	if err := runner.Run(ctx); err != nil {
		return err
	}
	s.log.Infof("session %s completed, cumulative cost %.2f", runner.SessionID(), runner.CumulativeCost())
	return nil
}

// Serve exposes the session worker over HTTP and blocks until the context
// is cancelled.
func (s *Service) Serve(ctx context.Context) error {
	s.startPromServer(ctx)
	defer monitoring.Flush(2 * time.Second)

	worker := session.NewWorker(func(bus *eventbus.Bus[session.Event]) (*session.Runner, error) {
		return s.NewRunner(bus)
	})
	srv := &http.Server{Addr: s.cfg.Server.Address, Handler: apisession.New(worker)}
	go func() {
		<-ctx.Done()
		worker.Stop()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.log.Errorf("server shutdown: %v", err)
		}
	}()
	s.log.Infof("simulation API listening on %s", s.cfg.Server.Address)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	worker.Wait()
	return nil
}

func (s *Service) startPromServer(ctx context.Context) {
	if !s.promEnabled {
		return
	}
	go func() {
		if err := metrics.StartPromServer(ctx, s.promAddr); err != nil {
			s.log.Errorf("prom server: %v", err)
		}
	}()
}
