// Package session exposes the dashboard HTTP API for driving simulation
// sessions: start a background run, poll its status, reset after it ends.
package session

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	coresession "github.com/flightops/rotables/core/session"
)

type Server struct {
	worker *coresession.Worker
}

// New constructs the HTTP router wired to the session worker.
func New(worker *coresession.Worker) http.Handler {
	s := &Server{worker: worker}
	r := chi.NewRouter()
	r.Use(corsMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Post("/api/simulation/start", s.handleStart)
	r.Get("/api/simulation/status", s.handleStatus)
	r.Post("/api/simulation/stop", s.handleStop)
	r.Post("/api/simulation/reset", s.handleReset)

	return r
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	if err := s.worker.Start(); err != nil {
		if errors.Is(err, coresession.ErrAlreadyRunning) {
			writeJSONError(w, http.StatusConflict, err.Error())
			return
		}
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "started"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(s.worker.Status())
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	s.worker.Stop()
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "stopping"})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if err := s.worker.Reset(); err != nil {
		writeJSONError(w, http.StatusConflict, err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "reset"})
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	if msg == "" {
		msg = http.StatusText(status)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
