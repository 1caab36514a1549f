// Package dataset loads the static game data (airports, aircraft types and
// the recurring flight plan) from the semicolon-separated CSV files shipped
// with the scoring backend. Missing columns read as zero so datasets can
// evolve without breaking older files; malformed values are errors.
package dataset

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/flightops/rotables/core/model"
)

// HubCode identifies the single hub airport in the dataset.
const HubCode = "HUB1"

const delimiter = ';'

var weekdayColumns = [7]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// row gives name-based access to one CSV record.
type row struct {
	header map[string]int
	fields []string
	line   int
}

func (r row) get(name string) string {
	i, ok := r.header[name]
	if !ok || i >= len(r.fields) {
		return ""
	}
	return strings.TrimSpace(r.fields[i])
}

func (r row) getInt(name string) (int, error) {
	s := r.get(name)
	if s == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("line %d: column %s: %w", r.line, name, err)
	}
	return v, nil
}

func (r row) getFloat(name string) (float64, error) {
	s := r.get(name)
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("line %d: column %s: %w", r.line, name, err)
	}
	return v, nil
}

func (r row) getBool(name string) bool {
	switch strings.ToLower(r.get(name)) {
	case "1", "true", "yes":
		return true
	}
	return false
}

// readRows parses the whole file and returns one row per record.
func readRows(path string) ([]row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	rd := csv.NewReader(f)
	rd.Comma = delimiter
	rd.TrimLeadingSpace = true
	records, err := rd.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("read %s: empty file", path)
	}
	header := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		header[strings.TrimSpace(name)] = i
	}
	rows := make([]row, 0, len(records)-1)
	for i, rec := range records[1:] {
		rows = append(rows, row{header: header, fields: rec, line: i + 2})
	}
	return rows, nil
}

// quantities reads the four per-kit integer columns in kit-type order.
func (r row) quantities(first, business, premium, economy string) (model.KitQuantities, error) {
	var q model.KitQuantities
	names := [4]string{first, business, premium, economy}
	for i, kit := range model.AllKitTypes {
		v, err := r.getInt(names[i])
		if err != nil {
			return q, err
		}
		q.Set(kit, v)
	}
	return q, nil
}

// costs reads the four per-kit float columns in kit-type order.
func (r row) costs(first, business, premium, economy string) ([4]float64, error) {
	var c [4]float64
	names := [4]string{first, business, premium, economy}
	for i := range names {
		v, err := r.getFloat(names[i])
		if err != nil {
			return c, err
		}
		c[i] = v
	}
	return c, nil
}

// LoadAirports reads airports_with_stocks.csv keyed by airport code. The
// airport whose code matches HubCode is flagged as the hub.
func LoadAirports(path string) (map[string]*model.Airport, error) {
	rows, err := readRows(path)
	if err != nil {
		return nil, err
	}
	airports := make(map[string]*model.Airport, len(rows))
	for _, r := range rows {
		code := r.get("code")
		if code == "" {
			return nil, fmt.Errorf("line %d: missing airport code", r.line)
		}
		a := &model.Airport{
			Code:  code,
			Name:  r.get("name"),
			IsHub: strings.EqualFold(code, HubCode),
		}
		if a.Capacity, err = r.quantities("capacity_fc", "capacity_bc", "capacity_pe", "capacity_ec"); err != nil {
			return nil, err
		}
		if a.InitialStock, err = r.quantities("initial_fc_stock", "initial_bc_stock", "initial_pe_stock", "initial_ec_stock"); err != nil {
			return nil, err
		}
		if a.LoadingCost, err = r.costs("first_loading_cost", "business_loading_cost", "premium_economy_loading_cost", "economy_loading_cost"); err != nil {
			return nil, err
		}
		if a.ProcessingCost, err = r.costs("first_processing_cost", "business_processing_cost", "premium_economy_processing_cost", "economy_processing_cost"); err != nil {
			return nil, err
		}
		var pt model.KitQuantities
		if pt, err = r.quantities("first_processing_time", "business_processing_time", "premium_economy_processing_time", "economy_processing_time"); err != nil {
			return nil, err
		}
		for i, kit := range model.AllKitTypes {
			a.ProcessingTime[i] = pt.Get(kit)
		}
		airports[code] = a
	}
	return airports, nil
}

// LoadAircraftTypes reads aircraft_types.csv keyed by type code.
func LoadAircraftTypes(path string) (map[string]*model.AircraftType, error) {
	rows, err := readRows(path)
	if err != nil {
		return nil, err
	}
	aircraft := make(map[string]*model.AircraftType, len(rows))
	for _, r := range rows {
		code := r.get("type_code")
		if code == "" {
			return nil, fmt.Errorf("line %d: missing aircraft type code", r.line)
		}
		t := &model.AircraftType{Code: code}
		if t.FuelCostPerKg, err = r.getFloat("cost_per_kg_per_km"); err != nil {
			return nil, err
		}
		if t.Seats, err = r.quantities("first_class_seats", "business_seats", "premium_economy_seats", "economy_seats"); err != nil {
			return nil, err
		}
		if t.KitCapacity, err = r.quantities("first_class_kits_capacity", "business_kits_capacity", "premium_economy_kits_capacity", "economy_kits_capacity"); err != nil {
			return nil, err
		}
		aircraft[code] = t
	}
	return aircraft, nil
}

// LoadFlightPlan reads flight_plan.csv in file order.
func LoadFlightPlan(path string) ([]model.FlightPlanEntry, error) {
	rows, err := readRows(path)
	if err != nil {
		return nil, err
	}
	entries := make([]model.FlightPlanEntry, 0, len(rows))
	for _, r := range rows {
		e := model.FlightPlanEntry{
			Origin:         r.get("depart_code"),
			Destination:    r.get("arrival_code"),
			ArrivalNextDay: r.getBool("arrival_next_day"),
		}
		if e.Origin == "" || e.Destination == "" {
			return nil, fmt.Errorf("line %d: missing airport codes", r.line)
		}
		if e.DepartureHour, err = r.getInt("scheduled_hour"); err != nil {
			return nil, err
		}
		if e.ArrivalHour, err = r.getInt("scheduled_arrival_hour"); err != nil {
			return nil, err
		}
		if e.DistanceKm, err = r.getFloat("distance_km"); err != nil {
			return nil, err
		}
		for i, day := range weekdayColumns {
			v, err := r.getInt(day)
			if err != nil {
				return nil, err
			}
			e.Weekdays[i] = v == 1
		}
		entries = append(entries, e)
	}
	return entries, nil
}
