package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/flightops/rotables/core/scoring"
	"github.com/flightops/rotables/internal/eventbus"
)

func testFactory(client scoring.Client, endHour int) RunnerFactory {
	return func(bus *eventbus.Bus[Event]) (*Runner, error) {
		r := newTestRunner(client, 10, endHour)
		WithBus(bus)(r)
		return r, nil
	}
}

// blockingClient parks every PlayRound until released, so tests can hold a
// session mid-run.
type blockingClient struct {
	*fakeClient
	firstRound chan struct{}
	release    chan struct{}
	signaled   bool
}

func (c *blockingClient) PlayRound(ctx context.Context, in scoring.Instruction) (*scoring.Outcome, error) {
	if !c.signaled {
		c.signaled = true
		close(c.firstRound)
	}
	<-c.release
	return c.fakeClient.PlayRound(ctx, in)
}

func TestWorkerRunsSessionToCompletion(t *testing.T) {
	client := newFakeClient()
	for i := 0; i < 5; i++ {
		client.outcomes[i] = &scoring.Outcome{TotalCost: 1.5}
	}
	w := NewWorker(testFactory(client, 4))

	if err := w.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	w.Wait()
	// drain the observer goroutine
	deadline := time.After(time.Second)
	for {
		st := w.Status()
		if st.Progress.Step == 5 {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("status never reached step 5: %+v", w.Status().Progress)
		case <-time.After(5 * time.Millisecond):
		}
	}

	st := w.Status()
	if st.State != StateCompleted {
		t.Fatalf("state = %s, want completed", st.State)
	}
	if st.SessionID != "sess-1" {
		t.Fatalf("session id = %q", st.SessionID)
	}
	if st.Progress.TotalSteps != 5 || st.Progress.PercentComplete != 100 {
		t.Fatalf("progress = %+v", st.Progress)
	}
	if st.CumulativeCost != 7.5 {
		t.Fatalf("cumulative cost = %.2f, want 7.5", st.CumulativeCost)
	}
	if len(st.Daily) != 1 || st.Daily[0].Cost != 7.5 {
		t.Fatalf("daily totals = %+v", st.Daily)
	}
	if len(st.Logs) != 5 || len(st.Events) != 5 {
		t.Fatalf("history = %d logs / %d events", len(st.Logs), len(st.Events))
	}
}

func TestWorkerRejectsConcurrentStartAndStops(t *testing.T) {
	client := &blockingClient{
		fakeClient: newFakeClient(),
		firstRound: make(chan struct{}),
		release:    make(chan struct{}),
	}
	w := NewWorker(testFactory(client, 10))

	if err := w.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	select {
	case <-client.firstRound:
	case <-time.After(time.Second):
		t.Fatal("session never reached the first round")
	}

	if err := w.Start(); !errors.Is(err, ErrAlreadyRunning) {
		t.Fatalf("second start: %v, want ErrAlreadyRunning", err)
	}
	if err := w.Reset(); !errors.Is(err, ErrAlreadyRunning) {
		t.Fatalf("reset while running: %v, want ErrAlreadyRunning", err)
	}

	w.Stop()
	close(client.release)
	w.Wait()

	st := w.Status()
	if st.State != StateStopped {
		t.Fatalf("state = %s, want stopped", st.State)
	}
	if !client.ended {
		t.Fatal("session was not ended after stop")
	}

	if err := w.Reset(); err != nil {
		t.Fatalf("reset after stop: %v", err)
	}
	if got := w.Status().State; got != StateIdle {
		t.Fatalf("state after reset = %s, want idle", got)
	}
}

func TestWorkerReportsFactoryFailure(t *testing.T) {
	boom := errors.New("dataset missing")
	w := NewWorker(func(*eventbus.Bus[Event]) (*Runner, error) { return nil, boom })

	if err := w.Start(); !errors.Is(err, boom) {
		t.Fatalf("start: %v, want factory error", err)
	}
	st := w.Status()
	if st.State != StateFailed || st.Error == "" {
		t.Fatalf("status = %+v, want failed with error", st)
	}
}

func TestWorkerMarksTransportFailureAsFailed(t *testing.T) {
	client := newFakeClient()
	client.playErrAt = 0
	w := NewWorker(testFactory(client, 4))

	if err := w.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	w.Wait()

	st := w.Status()
	if st.State != StateFailed {
		t.Fatalf("state = %s, want failed", st.State)
	}
	if st.Error == "" {
		t.Fatal("expected the transport error in the snapshot")
	}
}
