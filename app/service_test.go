package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/flightops/rotables/config"
)

func writeDataset(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"airports_with_stocks.csv": "code;name;capacity_fc;capacity_bc;capacity_pe;capacity_ec;initial_ec_stock\n" +
			"HUB1;Main Hub;10;20;30;100;50\n" +
			"OUT1;Outstation;5;5;5;20;0\n",
		"aircraft_types.csv": "type_code;cost_per_kg_per_km;first_class_seats;business_seats;premium_economy_seats;economy_seats;first_class_kits_capacity;business_kits_capacity;premium_economy_kits_capacity;economy_kits_capacity\n" +
			"T1;0.1;4;20;30;200;4;20;30;50\n",
		"flight_plan.csv": "depart_code;arrival_code;scheduled_hour;scheduled_arrival_hour;arrival_next_day;distance_km;Mon;Tue;Wed;Thu;Fri;Sat;Sun\n" +
			"HUB1;OUT1;8;12;0;1500;1;0;1;0;1;0;0\n",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := &config.Config{}
	cfg.Scoring.APIKey = "key"
	cfg.Scoring.BaseURL = "http://localhost:8080"
	cfg.Dataset.Dir = writeDataset(t)
	cfg.Dataset.SetDefaults()
	cfg.Session.SetDefaults()
	cfg.Strategy.SetDefaults()
	cfg.Scoring.SetDefaults()
	cfg.Server.SetDefaults()
	cfg.Tuner.SetDefaults()
	return cfg
}

func TestNewLoadsDatasets(t *testing.T) {
	svc, err := New(testConfig(t))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	if len(svc.airports) != 2 {
		t.Fatalf("got %d airports", len(svc.airports))
	}
	if len(svc.aircraft) != 1 {
		t.Fatalf("got %d aircraft types", len(svc.aircraft))
	}
	if got := svc.FlightPlan(); len(got) != 1 || got[0].Origin != "HUB1" {
		t.Fatalf("flight plan = %+v", got)
	}
}

func TestNewRunnerBuildsFreshMatrix(t *testing.T) {
	svc, err := New(testConfig(t))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	r1, err := svc.NewRunner(nil)
	if err != nil {
		t.Fatalf("first runner: %v", err)
	}
	r2, err := svc.NewRunner(nil)
	if err != nil {
		t.Fatalf("second runner: %v", err)
	}
	if r1 == r2 {
		t.Fatal("runners should be distinct")
	}
	if got := r1.TotalRounds(); got != 30*24 {
		t.Fatalf("total rounds = %d", got)
	}
}

func TestNewFailsOnMissingDataset(t *testing.T) {
	cfg := testConfig(t)
	cfg.Dataset.Dir = filepath.Join(cfg.Dataset.Dir, "nope")
	if _, err := New(cfg); err == nil {
		t.Fatal("expected error for missing dataset directory")
	}
}
