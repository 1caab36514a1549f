package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/flightops/rotables/core/metrics"
)

func gatherValue(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, f := range families {
		if f.GetName() != name {
			continue
		}
		var total float64
		for _, m := range f.GetMetric() {
			total += m.GetCounter().GetValue()
		}
		return total
	}
	t.Fatalf("metric %s not found", name)
	return 0
}

func TestPromSinkRecords(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("new sink: %v", err)
	}

	if err := sink.RecordRound(coremetrics.RoundStats{
		SessionID:     "s1",
		RoundCost:     10,
		RoundDuration: time.Second,
	}); err != nil {
		t.Fatalf("record round: %v", err)
	}
	if err := sink.RecordRound(coremetrics.RoundStats{SessionID: "s1", RoundCost: 5}); err != nil {
		t.Fatalf("record round: %v", err)
	}
	if err := sink.RecordPurchase(coremetrics.PurchaseEvent{SessionID: "s1", Kit: "economy", Quantity: 7}); err != nil {
		t.Fatalf("record purchase: %v", err)
	}
	if err := sink.RecordPenalty(coremetrics.PenaltyEvent{SessionID: "s1", Code: "NEGATIVE_INVENTORY"}); err != nil {
		t.Fatalf("record penalty: %v", err)
	}

	if got := gatherValue(t, reg, "simulation_rounds_total"); got != 2 {
		t.Fatalf("rounds = %v, want 2", got)
	}
	if got := gatherValue(t, reg, "simulation_cost_total"); got != 15 {
		t.Fatalf("cost = %v, want 15", got)
	}
	if got := gatherValue(t, reg, "simulation_kits_purchased_total"); got != 7 {
		t.Fatalf("purchased = %v, want 7", got)
	}
	if got := gatherValue(t, reg, "simulation_penalties_total"); got != 1 {
		t.Fatalf("penalties = %v, want 1", got)
	}
}

func TestPromSinkDoubleRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := NewPromSinkWithRegistry(reg); err != nil {
		t.Fatalf("first registration: %v", err)
	}
	if _, err := NewPromSinkWithRegistry(reg); err != nil {
		t.Fatalf("second registration should reuse collectors: %v", err)
	}
}
