package metrics

import (
	"context"
	"math"
	"net/http"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/flightops/rotables/core/metrics"
	"github.com/flightops/rotables/infra/logger"
)

// InfluxSink writes simulation telemetry to an InfluxDB instance using the
// official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and returns
// a NopSink if the health check fails.
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.Sink {
	sink := NewInfluxSink(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordRound writes the round as a line protocol point.
func (s *InfluxSink) RecordRound(r coremetrics.RoundStats) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("simulation_round").
		AddTag("session_id", r.SessionID).
		AddTag("component", "session_runner").
		AddField("day", r.Day).
		AddField("hour", r.Hour).
		AddField("flights_loaded", r.FlightsLoaded).
		AddField("kits_loaded", r.KitsLoaded).
		AddField("kits_purchased", r.KitsPurchased).
		AddField("round_cost", round3(r.RoundCost)).
		AddField("cumulative_cost", round3(r.CumulativeCost)).
		AddField("penalties", r.Penalties).
		AddField("duration_ms", r.RoundDuration.Milliseconds()).
		SetTime(r.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordPurchase writes one purchase order point.
func (s *InfluxSink) RecordPurchase(ev coremetrics.PurchaseEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("kit_purchase").
		AddTag("session_id", ev.SessionID).
		AddTag("kit", ev.Kit).
		AddField("day", ev.Day).
		AddField("hour", ev.Hour).
		AddField("quantity", ev.Quantity).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordPenalty writes one penalty point.
func (s *InfluxSink) RecordPenalty(ev coremetrics.PenaltyEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("penalty").
		AddTag("session_id", ev.SessionID).
		AddTag("code", ev.Code).
		AddField("day", ev.Day).
		AddField("hour", ev.Hour).
		AddField("cost", round3(ev.Cost)).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// Close releases the underlying client.
func (s *InfluxSink) Close() {
	s.client.Close()
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
