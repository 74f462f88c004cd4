package recorder

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"foreknown/internal/model"
)

// SQLiteRecorder persists forecast runs to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so readers do not block the scheduler's writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Infof("sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS forecast_runs (
			run_id          TEXT PRIMARY KEY,
			timestamp       INTEGER NOT NULL,
			symbol          TEXT,
			source          TEXT,
			observations    INTEGER,
			steps           INTEGER,
			step_size       REAL,
			paths           INTEGER,
			seed            INTEGER,
			mean_log_return REAL,
			variance        REAL,
			drift           REAL,
			volatility      REAL,
			last_value      REAL,
			final_value     REAL,
			p5              REAL,
			p50             REAL,
			p95             REAL,
			risk            TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_symbol_ts ON forecast_runs(symbol, timestamp)`,

		`CREATE TABLE IF NOT EXISTS forecast_points (
			run_id TEXT NOT NULL,
			step   INTEGER NOT NULL,
			value  REAL,
			PRIMARY KEY (run_id, step)
		)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// RecordForecast stores the run header and its representative path in one
// transaction and returns the run id. A forecast without RunID gets a new uuid.
func (r *SQLiteRecorder) RecordForecast(f *model.Forecast) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	runID := f.RunID
	if runID == "" {
		runID = uuid.NewString()
	}
	ts := f.GeneratedAt
	if ts.IsZero() {
		ts = time.Now()
	}
	paths := 1
	var pct model.Percentiles
	if f.Ensemble != nil {
		paths = len(f.Ensemble.Paths)
		pct = f.Ensemble.Final
	}
	cal := f.Calibration

	tx, err := r.db.Begin()
	if err != nil {
		return "", fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`INSERT INTO forecast_runs
		(run_id, timestamp, symbol, source, observations, steps, step_size, paths, seed,
		 mean_log_return, variance, drift, volatility,
		 last_value, final_value, p5, p50, p95, risk)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		runID, ts.UnixNano(), f.Symbol, f.Source, len(f.History), f.Steps, f.StepSize, paths, f.Seed,
		cal.MeanLogReturn, cal.Variance, cal.Drift, cal.Volatility,
		cal.LastValue, f.FinalValue(), pct.P5, pct.P50, pct.P95, string(f.Risk.Level),
	); err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO forecast_points (run_id, step, value) VALUES (?,?,?)`)
	if err != nil {
		return "", fmt.Errorf("prepare points: %w", err)
	}
	defer stmt.Close()
	for i, v := range f.Predicted {
		if _, err := stmt.Exec(runID, i+1, v); err != nil {
			return "", fmt.Errorf("insert point %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	return runID, nil
}

// LatestForecast returns the most recent run header for symbol.
func (r *SQLiteRecorder) LatestForecast(symbol string) (*RunSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var (
		s    RunSummary
		ts   int64
		risk string
	)
	err := r.db.QueryRow(`SELECT run_id, timestamp, symbol, source, observations, steps, step_size, paths, seed,
		mean_log_return, variance, drift, volatility, last_value, final_value, p5, p50, p95, risk
		FROM forecast_runs WHERE symbol = ? ORDER BY timestamp DESC LIMIT 1`, symbol).Scan(
		&s.RunID, &ts, &s.Symbol, &s.Source, &s.Observations, &s.Steps, &s.StepSize, &s.Paths, &s.Seed,
		&s.MeanLogReturn, &s.Variance, &s.Drift, &s.Volatility, &s.LastValue, &s.FinalValue,
		&s.Final.P5, &s.Final.P50, &s.Final.P95, &risk,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query latest forecast: %w", err)
	}
	s.Timestamp = time.Unix(0, ts)
	s.Risk = model.RiskLevel(risk)
	return &s, nil
}

// Path returns the recorded predicted path of a run, in step order.
func (r *SQLiteRecorder) Path(runID string) ([]float64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.Query(`SELECT value FROM forecast_points WHERE run_id = ? ORDER BY step`, runID)
	if err != nil {
		return nil, fmt.Errorf("query points: %w", err)
	}
	defer rows.Close()

	var out []float64
	for rows.Next() {
		var v float64
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	log.Info("closing sqlite recorder")
	return r.db.Close()
}
