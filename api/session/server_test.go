package session

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/flightops/rotables/core/model"
	"github.com/flightops/rotables/core/scoring"
	coresession "github.com/flightops/rotables/core/session"
	"github.com/flightops/rotables/core/state"
	"github.com/flightops/rotables/core/strategy"
	"github.com/flightops/rotables/internal/eventbus"
)

// stubClient plays empty outcomes, optionally blocking each round until
// released.
type stubClient struct {
	release chan struct{}
}

func (c *stubClient) StartSession(context.Context) (string, error) { return "sess-9", nil }

func (c *stubClient) PlayRound(_ context.Context, in scoring.Instruction) (*scoring.Outcome, error) {
	if c.release != nil {
		<-c.release
	}
	return &scoring.Outcome{Day: in.Day, Hour: in.Hour}, nil
}

func (c *stubClient) EndSession(context.Context) error { return nil }

func newTestWorker(client scoring.Client, endHour int) *coresession.Worker {
	return coresession.NewWorker(func(bus *eventbus.Bus[coresession.Event]) (*coresession.Runner, error) {
		var stock model.KitQuantities
		stock.Set(model.KitEconomy, 10)
		airports := map[string]*model.Airport{
			"HUB1": {Code: "HUB1", IsHub: true, Capacity: stock, InitialStock: stock},
		}
		aircraft := map[string]*model.AircraftType{}
		m, err := state.NewMatrix(airports, aircraft)
		if err != nil {
			return nil, err
		}
		strat := strategy.New(strategy.DefaultConfig(), nil)
		return coresession.NewRunner(m, strat, client,
			coresession.WithEndHour(endHour),
			coresession.WithBus(bus),
		), nil
	})
}

func TestStartStatusLifecycle(t *testing.T) {
	w := newTestWorker(&stubClient{}, 3)
	srv := httptest.NewServer(New(w))
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/api/simulation/start", "application/json", nil)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("start status = %d, want 202", resp.StatusCode)
	}
	w.Wait()

	deadline := time.Now().Add(time.Second)
	var st coresession.Status
	for {
		r, err := http.Get(srv.URL + "/api/simulation/status")
		if err != nil {
			t.Fatalf("status: %v", err)
		}
		if err := json.NewDecoder(r.Body).Decode(&st); err != nil {
			t.Fatalf("decode status: %v", err)
		}
		_ = r.Body.Close()
		if st.Progress.Step == 4 || time.Now().After(deadline) {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	if st.State != coresession.StateCompleted {
		t.Fatalf("state = %s, want completed", st.State)
	}
	if st.SessionID != "sess-9" {
		t.Fatalf("session id = %q", st.SessionID)
	}
	if st.Progress.Step != 4 {
		t.Fatalf("step = %d, want 4", st.Progress.Step)
	}
}

func TestStartWhileRunningConflicts(t *testing.T) {
	client := &stubClient{release: make(chan struct{})}
	w := newTestWorker(client, 10)
	srv := httptest.NewServer(New(w))
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/api/simulation/start", "application/json", nil)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	_ = resp.Body.Close()

	resp, err = http.Post(srv.URL+"/api/simulation/start", "application/json", nil)
	if err != nil {
		t.Fatalf("second start: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("second start status = %d, want 409", resp.StatusCode)
	}
	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if body["error"] == "" {
		t.Fatal("expected a JSON error body")
	}

	// reset while running conflicts as well
	resp, err = http.Post(srv.URL+"/api/simulation/reset", "application/json", nil)
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("reset status = %d, want 409", resp.StatusCode)
	}

	// stop, let the round finish, then reset succeeds
	resp, err = http.Post(srv.URL+"/api/simulation/stop", "application/json", nil)
	if err != nil {
		t.Fatalf("stop: %v", err)
	}
	_ = resp.Body.Close()
	close(client.release)
	w.Wait()

	resp, err = http.Post(srv.URL+"/api/simulation/reset", "application/json", nil)
	if err != nil {
		t.Fatalf("reset after stop: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("reset status = %d, want 200", resp.StatusCode)
	}
}
