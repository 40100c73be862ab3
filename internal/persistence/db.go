// Package persistence provides SQLite storage for finished sweeps and
// compressed per-step trajectories of single runs.
package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"gopkg.in/yaml.v3"
	_ "modernc.org/sqlite"

	"github.com/talgya/defector-percolation/internal/config"
	"github.com/talgya/defector-percolation/internal/sweep"
)

// ErrNotFound is returned when a sweep ID does not exist.
var ErrNotFound = errors.New("sweep not found")

// DB wraps a SQLite connection for sweep results.
type DB struct {
	conn *sqlx.DB
}

// SweepHeader describes one stored sweep.
type SweepHeader struct {
	ID        string  `db:"id" json:"id"`
	CreatedAt string  `db:"created_at" json:"created_at"`
	BaseSeed  int64   `db:"base_seed" json:"base_seed"`
	Workers   int     `db:"workers" json:"workers"`
	Steps     int     `db:"steps" json:"steps"`
	Points    int     `db:"points" json:"points"`
	Runs      int     `db:"runs" json:"runs"`
	Elapsed   float64 `db:"elapsed_seconds" json:"elapsed_seconds"`
	Config    string  `db:"config_yaml" json:"-"`
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sweeps (
		id TEXT PRIMARY KEY,
		created_at TEXT NOT NULL,
		base_seed INTEGER NOT NULL,
		workers INTEGER NOT NULL,
		steps INTEGER NOT NULL,
		points INTEGER NOT NULL,
		runs INTEGER NOT NULL,
		elapsed_seconds REAL NOT NULL,
		config_yaml TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS runs (
		sweep_id TEXT NOT NULL REFERENCES sweeps(id),
		param_index INTEGER NOT NULL,
		repetition INTEGER NOT NULL,
		seed INTEGER NOT NULL,
		density REAL NOT NULL,
		defector_ratio REAL NOT NULL,
		temptation REAL NOT NULL,
		agent_count INTEGER NOT NULL,
		final_compliance REAL NOT NULL,
		defector_percolation INTEGER NOT NULL,
		geometric_percolation INTEGER NOT NULL,
		largest_cluster_fraction REAL NOT NULL,
		PRIMARY KEY (sweep_id, param_index, repetition)
	);

	CREATE TABLE IF NOT EXISTS aggregates (
		sweep_id TEXT NOT NULL REFERENCES sweeps(id),
		param_index INTEGER NOT NULL,
		density REAL NOT NULL,
		defector_ratio REAL NOT NULL,
		temptation REAL NOT NULL,
		agent_count INTEGER NOT NULL,
		runs INTEGER NOT NULL,
		avg_compliance REAL NOT NULL,
		defector_percolation_probability REAL NOT NULL,
		geometric_percolation_probability REAL NOT NULL,
		avg_largest_cluster_fraction REAL NOT NULL,
		PRIMARY KEY (sweep_id, param_index)
	);

	CREATE INDEX IF NOT EXISTS idx_sweeps_created ON sweeps(created_at);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// SaveSweep writes a sweep header, its runs and aggregates in one
// transaction and returns the new sweep ID.
func (db *DB) SaveSweep(ctx context.Context, res sweep.Results, cfg config.Config) (string, error) {
	cfgYAML, err := yaml.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("marshal config: %w", err)
	}
	id := uuid.NewString()

	tx, err := db.conn.BeginTxx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `INSERT INTO sweeps
		(id, created_at, base_seed, workers, steps, points, runs, elapsed_seconds, config_yaml)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, time.Now().UTC().Format(time.RFC3339Nano), res.BaseSeed, res.Workers,
		cfg.Simulation.Steps, len(res.Aggregates), len(res.Runs), res.Elapsed, string(cfgYAML),
	)
	if err != nil {
		return "", fmt.Errorf("insert sweep: %w", err)
	}

	runStmt, err := tx.PreparexContext(ctx, `INSERT INTO runs
		(sweep_id, param_index, repetition, seed, density, defector_ratio, temptation, agent_count,
		 final_compliance, defector_percolation, geometric_percolation, largest_cluster_fraction)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", err
	}
	defer runStmt.Close()

	for _, r := range res.Runs {
		_, err := runStmt.ExecContext(ctx,
			id, r.ParamIndex, r.Repetition, r.Seed, r.Density, r.DefectorRatio, r.Temptation, r.AgentCount,
			r.FinalCompliance, boolInt(r.DefectorPercolation), boolInt(r.GeometricPercolation), r.LargestClusterFraction,
		)
		if err != nil {
			return "", fmt.Errorf("insert run %d/%d: %w", r.ParamIndex, r.Repetition, err)
		}
	}

	for _, a := range res.Aggregates {
		_, err := tx.ExecContext(ctx, `INSERT INTO aggregates
			(sweep_id, param_index, density, defector_ratio, temptation, agent_count, runs,
			 avg_compliance, defector_percolation_probability, geometric_percolation_probability,
			 avg_largest_cluster_fraction)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			id, a.ParamIndex, a.Density, a.DefectorRatio, a.Temptation, a.AgentCount, a.Runs,
			a.AvgCompliance, a.DefectorPercolationProbability, a.GeometricPercolationProbability,
			a.AvgLargestClusterFraction,
		)
		if err != nil {
			return "", fmt.Errorf("insert aggregate %d: %w", a.ParamIndex, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	slog.Info("sweep saved", "id", id, "runs", len(res.Runs), "points", len(res.Aggregates))
	return id, nil
}

const sweepColumns = `id, created_at, base_seed, workers, steps, points, runs, elapsed_seconds, config_yaml`

// ListSweeps returns all stored sweeps, newest first.
func (db *DB) ListSweeps(ctx context.Context) ([]SweepHeader, error) {
	var out []SweepHeader
	err := db.conn.SelectContext(ctx, &out,
		"SELECT "+sweepColumns+" FROM sweeps ORDER BY created_at DESC, id")
	return out, err
}

// GetSweep returns one sweep header.
func (db *DB) GetSweep(ctx context.Context, id string) (SweepHeader, error) {
	var h SweepHeader
	err := db.conn.GetContext(ctx, &h, "SELECT "+sweepColumns+" FROM sweeps WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return h, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return h, err
}

// LatestSweep returns the most recently stored sweep.
func (db *DB) LatestSweep(ctx context.Context) (SweepHeader, error) {
	var h SweepHeader
	err := db.conn.GetContext(ctx, &h,
		"SELECT "+sweepColumns+" FROM sweeps ORDER BY created_at DESC LIMIT 1")
	if errors.Is(err, sql.ErrNoRows) {
		return h, ErrNotFound
	}
	return h, err
}

// Aggregates returns the per-point aggregates of a sweep in grid order.
func (db *DB) Aggregates(ctx context.Context, sweepID string) ([]sweep.Aggregate, error) {
	var out []sweep.Aggregate
	err := db.conn.SelectContext(ctx, &out, `SELECT
		param_index, density, defector_ratio, temptation, agent_count, runs,
		avg_compliance, defector_percolation_probability, geometric_percolation_probability,
		avg_largest_cluster_fraction
		FROM aggregates WHERE sweep_id = ? ORDER BY param_index`, sweepID)
	return out, err
}

// Runs returns the run records of a sweep in grid order.
func (db *DB) Runs(ctx context.Context, sweepID string) ([]sweep.RunRecord, error) {
	var out []sweep.RunRecord
	err := db.conn.SelectContext(ctx, &out, `SELECT
		param_index, repetition, seed, density, defector_ratio, temptation, agent_count,
		final_compliance, defector_percolation, geometric_percolation, largest_cluster_fraction
		FROM runs WHERE sweep_id = ? ORDER BY param_index, repetition`, sweepID)
	return out, err
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
