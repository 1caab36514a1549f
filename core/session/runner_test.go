package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/flightops/rotables/core/model"
	"github.com/flightops/rotables/core/scoring"
	"github.com/flightops/rotables/core/state"
	"github.com/flightops/rotables/core/strategy"
)

func uniformQuantities(v int) model.KitQuantities {
	var q model.KitQuantities
	for _, kit := range model.AllKitTypes {
		q.Set(kit, v)
	}
	return q
}

func testCatalog(hubEconomy int) (map[string]*model.Airport, map[string]*model.AircraftType) {
	var hubStock model.KitQuantities
	hubStock.Set(model.KitEconomy, hubEconomy)
	airports := map[string]*model.Airport{
		"HUB1": {
			Code:           "HUB1",
			IsHub:          true,
			Capacity:       uniformQuantities(100),
			InitialStock:   hubStock,
			ProcessingTime: [4]int{1, 1, 1, 1},
		},
		"OUT1": {
			Code:           "OUT1",
			Capacity:       uniformQuantities(100),
			ProcessingTime: [4]int{1, 1, 1, 1},
		},
	}
	aircraft := map[string]*model.AircraftType{
		"T1": {Code: "T1", FuelCostPerKg: 0.1, Seats: uniformQuantities(200), KitCapacity: uniformQuantities(50)},
	}
	return airports, aircraft
}

// fakeClient scripts outcomes per round and records every instruction.
type fakeClient struct {
	mu           sync.Mutex
	instructions []scoring.Instruction
	outcomes     map[int]*scoring.Outcome
	startErr     error
	playErrAt    int
	panicAt      int
	ended        bool
}

func newFakeClient() *fakeClient {
	return &fakeClient{outcomes: map[int]*scoring.Outcome{}, playErrAt: -1, panicAt: -1}
}

func (c *fakeClient) StartSession(context.Context) (string, error) {
	if c.startErr != nil {
		return "", c.startErr
	}
	return "sess-1", nil
}

func (c *fakeClient) PlayRound(_ context.Context, in scoring.Instruction) (*scoring.Outcome, error) {
	c.mu.Lock()
	round := len(c.instructions)
	c.instructions = append(c.instructions, in)
	c.mu.Unlock()
	if round == c.panicAt {
		panic("scripted panic")
	}
	if round == c.playErrAt {
		return nil, errors.New("connection reset")
	}
	if out, ok := c.outcomes[round]; ok {
		return out, nil
	}
	return &scoring.Outcome{Day: in.Day, Hour: in.Hour}, nil
}

func (c *fakeClient) EndSession(context.Context) error {
	c.mu.Lock()
	c.ended = true
	c.mu.Unlock()
	return nil
}

func (c *fakeClient) recorded() []scoring.Instruction {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]scoring.Instruction(nil), c.instructions...)
}

func newTestRunner(client scoring.Client, hubEconomy, endHour int) *Runner {
	airports, aircraft := testCatalog(hubEconomy)
	m, err := state.NewMatrix(airports, aircraft)
	if err != nil {
		panic(err)
	}
	strat := strategy.New(strategy.DefaultConfig(), nil)
	return NewRunner(m, strat, client, WithEndHour(endHour))
}

func TestRunnerPlaysEveryHourAndEndsSession(t *testing.T) {
	client := newFakeClient()
	r := newTestRunner(client, 10, 2)

	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	ins := client.recorded()
	if len(ins) != 3 {
		t.Fatalf("expected 3 rounds, got %d", len(ins))
	}
	for i, in := range ins {
		if in.Day != 0 || in.Hour != i {
			t.Fatalf("round %d posted day=%d hour=%d", i, in.Day, in.Hour)
		}
	}
	if !client.ended {
		t.Fatal("session was not ended")
	}
	if r.SessionID() != "sess-1" {
		t.Fatalf("session id = %q", r.SessionID())
	}
}

func TestRunnerLoadsScheduledFlightAndDropsItOnLanding(t *testing.T) {
	client := newFakeClient()
	client.outcomes[0] = &scoring.Outcome{
		FlightUpdates: []scoring.FlightUpdate{{
			EventType:          "SCHEDULED",
			FlightID:           "F1",
			OriginAirport:      "HUB1",
			DestinationAirport: "OUT1",
			AircraftType:       "T1",
			Departure:          &scoring.HourRef{Day: 0, Hour: 1},
			Arrival:            &scoring.HourRef{Day: 0, Hour: 3},
			Passengers:         scoring.CabinKits{Economy: 20},
			Distance:           500,
		}},
		TotalCost: 40,
	}
	client.outcomes[1] = &scoring.Outcome{
		FlightUpdates: []scoring.FlightUpdate{{
			EventType: "LANDED",
			FlightID:  "F1",
			Arrival:   &scoring.HourRef{Day: 0, Hour: 3},
		}},
		TotalCost: 2,
	}
	r := newTestRunner(client, 10, 4)

	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	ins := client.recorded()

	// the flight departs hour 1; the shared pool caps the load at
	// floor(10 * 0.35) = 3 economy kits
	if len(ins[1].FlightLoads) != 1 {
		t.Fatalf("expected one flight load at hour 1, got %d", len(ins[1].FlightLoads))
	}
	load := ins[1].FlightLoads[0]
	if load.FlightID != "F1" {
		t.Fatalf("loaded flight %s", load.FlightID)
	}
	if load.LoadedKits.Economy != 3 {
		t.Fatalf("economy load = %d, want 3", load.LoadedKits.Economy)
	}

	// once landed the flight is discarded and never loaded again
	for i := 2; i < len(ins); i++ {
		if len(ins[i].FlightLoads) != 0 {
			t.Fatalf("round %d still carries flight loads", i)
		}
	}
	if got := r.CumulativeCost(); got != 42 {
		t.Fatalf("cumulative cost = %.2f, want 42", got)
	}
}

func TestRunnerOrdersPurchasesOnForecastDeficit(t *testing.T) {
	client := newFakeClient()
	client.outcomes[0] = &scoring.Outcome{
		FlightUpdates: []scoring.FlightUpdate{{
			EventType:          "SCHEDULED",
			FlightID:           "F2",
			OriginAirport:      "HUB1",
			DestinationAirport: "OUT1",
			AircraftType:       "T1",
			Departure:          &scoring.HourRef{Day: 0, Hour: 5},
			Arrival:            &scoring.HourRef{Day: 0, Hour: 7},
			Passengers:         scoring.CabinKits{Economy: 40},
			Distance:           500,
		}},
	}
	r := newTestRunner(client, 10, 2)

	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	ins := client.recorded()
	// demand 40 against stock 10 leaves a hub deficit; hour 1 must order
	if ins[1].KitPurchasingOrders == nil || ins[1].KitPurchasingOrders.Economy == 0 {
		t.Fatalf("expected an economy purchase order at hour 1, got %+v", ins[1].KitPurchasingOrders)
	}
}

func TestRunnerTransportFailureIsFatalButEndsSession(t *testing.T) {
	client := newFakeClient()
	client.playErrAt = 1
	r := newTestRunner(client, 10, 5)

	err := r.Run(context.Background())
	if err == nil || !strings.Contains(err.Error(), "connection reset") {
		t.Fatalf("expected transport error, got %v", err)
	}
	if len(client.recorded()) != 2 {
		t.Fatalf("expected the run to stop after the failing round")
	}
	if !client.ended {
		t.Fatal("end session was not attempted after failure")
	}
}

func TestRunnerRecoversRoundPanic(t *testing.T) {
	client := newFakeClient()
	client.panicAt = 0
	r := newTestRunner(client, 10, 5)

	err := r.Run(context.Background())
	if err == nil || !strings.Contains(err.Error(), "panicked") {
		t.Fatalf("expected panic error, got %v", err)
	}
	if !client.ended {
		t.Fatal("end session was not attempted after panic")
	}
}

// cancellingClient cancels the run context from inside the first round call
// and fails that call if the cancellation reached it.
type cancellingClient struct {
	*fakeClient
	cancel context.CancelFunc
}

func (c *cancellingClient) PlayRound(ctx context.Context, in scoring.Instruction) (*scoring.Outcome, error) {
	c.cancel()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return c.fakeClient.PlayRound(ctx, in)
}

func TestRunnerStopWaitsForInFlightRound(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	base := newFakeClient()
	base.outcomes[0] = &scoring.Outcome{TotalCost: 7}
	client := &cancellingClient{fakeClient: base, cancel: cancel}
	r := newTestRunner(client, 10, 5)

	err := r.Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("run error = %v, want context.Canceled at the hour boundary", err)
	}
	if got := len(base.recorded()); got != 1 {
		t.Fatalf("rounds completed = %d, want the in-flight round to finish", got)
	}
	if got := r.CumulativeCost(); got != 7 {
		t.Fatalf("cumulative cost = %v, want the round outcome ingested", got)
	}
	if !base.ended {
		t.Fatal("end session was not attempted after stop")
	}
}

func TestRunnerStartFailureSkipsSessionEnd(t *testing.T) {
	client := newFakeClient()
	client.startErr = errors.New("401 unauthorized")
	r := newTestRunner(client, 10, 5)

	if err := r.Run(context.Background()); err == nil {
		t.Fatal("expected start error")
	}
	if client.ended {
		t.Fatal("no session was opened, nothing to end")
	}
}
