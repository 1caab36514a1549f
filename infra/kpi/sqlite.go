// Package kpi persists tuning experiments to a SQLite database so search
// runs survive restarts and can be analyzed offline.
package kpi

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/flightops/rotables/core/tuner"
)

// SQLiteStore persists experiments to a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

var _ tuner.Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens or creates the database at path and ensures schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	schema := `CREATE TABLE IF NOT EXISTS experiments (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        run_at INTEGER,
        total_cost REAL,
        structural_cost REAL,
        accepted INTEGER,
        config TEXT,
        penalties TEXT
    );`
	if _, err := db.Exec(schema); err != nil {
		if cerr := db.Close(); cerr != nil {
			return nil, fmt.Errorf("close db: %v (schema err: %w)", cerr, err)
		}
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

// SaveExperiment appends the experiment.
func (s *SQLiteStore) SaveExperiment(ctx context.Context, e tuner.Experiment) error {
	cfg, err := json.Marshal(e.Config)
	if err != nil {
		return err
	}
	pen, err := json.Marshal(e.Penalties)
	if err != nil {
		return err
	}
	accepted := 0
	if e.Accepted {
		accepted = 1
	}
	runAt := e.RunAt
	if runAt.IsZero() {
		runAt = time.Now()
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO experiments (run_at, total_cost, structural_cost, accepted, config, penalties)
         VALUES (?, ?, ?, ?, ?, ?)`,
		runAt.Unix(), e.TotalCost, e.Penalties.StructuralSum(), accepted, string(cfg), string(pen))
	return err
}

// Experiments returns stored experiments ordered by insertion.
func (s *SQLiteStore) Experiments(ctx context.Context) ([]tuner.Experiment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, run_at, total_cost, accepted, config, penalties FROM experiments ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var res []tuner.Experiment
	for rows.Next() {
		var (
			e        tuner.Experiment
			runAt    int64
			accepted int
			cfg      string
			pen      string
		)
		if err := rows.Scan(&e.ID, &runAt, &e.TotalCost, &accepted, &cfg, &pen); err != nil {
			return nil, err
		}
		e.RunAt = time.Unix(runAt, 0)
		e.Accepted = accepted == 1
		if err := json.Unmarshal([]byte(cfg), &e.Config); err != nil {
			return nil, fmt.Errorf("unmarshal config: %w", err)
		}
		if err := json.Unmarshal([]byte(pen), &e.Penalties); err != nil {
			return nil, fmt.Errorf("unmarshal penalties: %w", err)
		}
		res = append(res, e)
	}
	return res, rows.Err()
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error { return s.db.Close() }
