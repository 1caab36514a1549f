package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/flightops/rotables/core/monitoring"
	"github.com/flightops/rotables/internal/eventbus"
)

// ErrAlreadyRunning is returned when a session is started while another one
// is still in flight.
var ErrAlreadyRunning = errors.New("session already running")

const statusHistoryLimit = 400

// Progress tracks how far into the horizon the current session is.
type Progress struct {
	Step            int     `json:"step"`
	TotalSteps      int     `json:"totalSteps"`
	Day             int     `json:"day"`
	Hour            int     `json:"hour"`
	PercentComplete float64 `json:"percentComplete"`
}

// DailyTotals aggregates one simulated day for the dashboard.
type DailyTotals struct {
	Day           int     `json:"day"`
	Cost          float64 `json:"cost"`
	KitsPurchased int     `json:"kitsPurchased"`
	Penalties     int     `json:"penalties"`
}

// Status is a point-in-time snapshot of the worker, safe to serialize.
type Status struct {
	ID             string        `json:"id"`
	State          State         `json:"state"`
	SessionID      string        `json:"sessionId"`
	Error          string        `json:"error,omitempty"`
	Progress       Progress      `json:"progress"`
	CumulativeCost float64       `json:"cumulativeCost"`
	Daily          []DailyTotals `json:"daily"`
	Events         []Event       `json:"events"`
	Logs           []string      `json:"logs"`
}

// RunnerFactory builds a fresh runner for one session attempt. Each call
// must return a runner over its own matrix.
type RunnerFactory func(bus *eventbus.Bus[Event]) (*Runner, error)

// Worker supervises one background session at a time. Its lock guards only
// the status snapshot; the runner owns the matrix and strategy exclusively.
type Worker struct {
	factory RunnerFactory

	mu     sync.Mutex
	st     Status
	daily  map[int]*DailyTotals
	cancel context.CancelFunc
	done   chan struct{}
}

// NewWorker creates an idle worker.
func NewWorker(factory RunnerFactory) *Worker {
	w := &Worker{factory: factory}
	w.resetLocked()
	return w
}

func (w *Worker) resetLocked() {
	w.st = Status{
		State:  StateIdle,
		Daily:  []DailyTotals{},
		Events: []Event{},
		Logs:   []string{},
		Progress: Progress{
			TotalSteps: 1,
		},
	}
	w.daily = make(map[int]*DailyTotals)
	w.cancel = nil
	w.done = nil
}

// Start launches a new session in the background. It fails fast when a
// session is already running or the factory cannot build a runner.
func (w *Worker) Start() error {
	w.mu.Lock()
	if w.st.State == StateRunning {
		w.mu.Unlock()
		return ErrAlreadyRunning
	}
	w.resetLocked()
	w.st.ID = uuid.NewString()
	w.st.State = StateRunning
	w.mu.Unlock()

	bus := eventbus.New[Event]()
	runner, err := w.factory(bus)
	if err != nil {
		bus.Close()
		w.mu.Lock()
		w.st.State = StateFailed
		w.st.Error = err.Error()
		w.mu.Unlock()
		return err
	}

	w.mu.Lock()
	w.st.Progress.TotalSteps = runner.TotalRounds()
	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel
	done := make(chan struct{})
	w.done = done
	w.mu.Unlock()

	events := bus.Subscribe()
	go func() {
		for ev := range events {
			w.observe(ev)
		}
	}()

	go func() {
		defer close(done)
		defer monitoring.Recover()
		runErr := runner.Run(ctx)
		bus.Close()

		w.mu.Lock()
		defer w.mu.Unlock()
		w.st.SessionID = runner.SessionID()
		w.st.CumulativeCost = runner.CumulativeCost()
		switch {
		case runErr == nil:
			w.st.State = StateCompleted
		case errors.Is(runErr, context.Canceled):
			w.st.State = StateStopped
		default:
			w.st.State = StateFailed
			w.st.Error = runErr.Error()
		}
	}()
	return nil
}

// Stop requests cancellation. The runner stops at the next hour boundary;
// use Wait to block until it has.
func (w *Worker) Stop() {
	w.mu.Lock()
	cancel := w.cancel
	w.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Wait blocks until the current session finishes. It returns immediately
// when no session was started.
func (w *Worker) Wait() {
	w.mu.Lock()
	done := w.done
	w.mu.Unlock()
	if done != nil {
		<-done
	}
}

// Reset clears the snapshot of a finished session.
func (w *Worker) Reset() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.st.State == StateRunning {
		return ErrAlreadyRunning
	}
	w.resetLocked()
	return nil
}

// Status returns a deep copy of the current snapshot.
func (w *Worker) Status() Status {
	w.mu.Lock()
	defer w.mu.Unlock()
	st := w.st
	st.Daily = append([]DailyTotals(nil), w.st.Daily...)
	st.Events = append([]Event(nil), w.st.Events...)
	st.Logs = append([]string(nil), w.st.Logs...)
	return st
}

// observe folds one round event into the status snapshot.
func (w *Worker) observe(ev Event) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.st.SessionID == "" {
		w.st.SessionID = ev.SessionID
	}
	w.st.CumulativeCost = ev.CumulativeCost

	p := &w.st.Progress
	p.Step++
	p.Day = ev.Day
	p.Hour = ev.Hour
	if p.TotalSteps > 0 {
		p.PercentComplete = 100 * float64(p.Step) / float64(p.TotalSteps)
	}

	d := w.daily[ev.Day]
	if d == nil {
		d = &DailyTotals{Day: ev.Day}
		w.daily[ev.Day] = d
		w.st.Daily = append(w.st.Daily, *d)
	}
	d.Cost += ev.RoundCost
	d.KitsPurchased += ev.KitsPurchased
	d.Penalties += ev.Penalties
	// days arrive in order, so the entry being updated is the last one
	w.st.Daily[len(w.st.Daily)-1] = *d

	line := fmt.Sprintf("day=%02d hour=%02d flights=%d kits=%d purchased=%d cost=%.2f cum=%.2f penalties=%d",
		ev.Day, ev.Hour, ev.FlightsLoaded, ev.KitsLoaded, ev.KitsPurchased, ev.RoundCost, ev.CumulativeCost, ev.Penalties)
	w.st.Logs = append(w.st.Logs, line)
	w.st.Events = append(w.st.Events, ev)
	if len(w.st.Logs) > statusHistoryLimit {
		w.st.Logs = w.st.Logs[len(w.st.Logs)-statusHistoryLimit:]
	}
	if len(w.st.Events) > statusHistoryLimit {
		w.st.Events = w.st.Events[len(w.st.Events)-statusHistoryLimit:]
	}
}
