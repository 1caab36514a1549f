package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/flightops/rotables/core/metrics"
)

func TestInfluxSink_RecordRound(t *testing.T) {
	var body string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		body = string(data)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	sink := NewInfluxSink(srv.URL, "token", "org", "bucket")
	defer sink.Close()
	now := time.Now()
	rec := coremetrics.RoundStats{
		SessionID:      "sess-1",
		Day:            2,
		Hour:           14,
		FlightsLoaded:  3,
		KitsLoaded:     18,
		KitsPurchased:  5,
		RoundCost:      120.5,
		CumulativeCost: 940.25,
		Penalties:      1,
		RoundDuration:  1500 * time.Millisecond,
		Time:           now,
	}

	if err := sink.RecordRound(rec); err != nil {
		t.Fatalf("record error: %v", err)
	}
	p := write.NewPointWithMeasurement("simulation_round").
		AddTag("session_id", "sess-1").
		AddTag("component", "session_runner").
		AddField("day", 2).
		AddField("hour", 14).
		AddField("flights_loaded", 3).
		AddField("kits_loaded", 18).
		AddField("kits_purchased", 5).
		AddField("round_cost", 120.5).
		AddField("cumulative_cost", 940.25).
		AddField("penalties", 1).
		AddField("duration_ms", int64(1500)).
		SetTime(now)
	expected := strings.TrimSpace(write.PointToLineProtocol(p, time.Nanosecond))
	if strings.TrimSpace(body) != expected {
		t.Errorf("unexpected body:\n got %s\nwant %s", body, expected)
	}
}

func TestNewInfluxSinkWithFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	sink := NewInfluxSinkWithFallback(srv.URL, "token", "org", "bucket")
	if _, ok := sink.(coremetrics.NopSink); !ok {
		t.Fatalf("expected NopSink fallback, got %T", sink)
	}
}
