package recorder

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists scan runs and level snapshots to a SQLite database.
type SQLiteRecorder struct {
	db     *sql.DB
	mu     sync.Mutex
	logger zerolog.Logger
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string, logger zerolog.Logger) (*SQLiteRecorder, error) {
	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL so the API can read while a scan writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, logger: logger.With().Str("component", "recorder").Logger()}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	r.logger.Info().Str("path", dbPath).Msg("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS scan_runs (
			id          TEXT PRIMARY KEY,
			trigger     TEXT,
			steps       TEXT,
			started_at  INTEGER NOT NULL,
			finished_at INTEGER,
			symbols     INTEGER,
			failed      INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_scan_started ON scan_runs(started_at)`,

		`CREATE TABLE IF NOT EXISTS level_snapshots (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id      TEXT,
			symbol      TEXT NOT NULL,
			bar_time    INTEGER NOT NULL,
			settled     INTEGER NOT NULL,
			reference   REAL NOT NULL,
			atr         REAL,
			steps       TEXT NOT NULL,
			resistances TEXT NOT NULL,
			supports    TEXT NOT NULL,
			computed_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_levels_symbol ON level_snapshots(symbol, computed_at)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordScan(run *ScanRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	steps, err := json.Marshal(run.Steps)
	if err != nil {
		return fmt.Errorf("encode steps: %w", err)
	}
	_, err = r.db.Exec(`INSERT INTO scan_runs
		(id, trigger, steps, started_at, finished_at, symbols, failed)
		VALUES (?,?,?,?,?,?,?)`,
		run.ID, run.Trigger, string(steps),
		run.StartedAt.Unix(), run.FinishedAt.Unix(), run.Symbols, run.Failed,
	)
	return err
}

func (r *SQLiteRecorder) RecordLevels(snap *LevelSnapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	steps, err := json.Marshal(snap.Steps)
	if err != nil {
		return fmt.Errorf("encode steps: %w", err)
	}
	res, err := json.Marshal(snap.Resistances)
	if err != nil {
		return fmt.Errorf("encode resistances: %w", err)
	}
	sup, err := json.Marshal(snap.Supports)
	if err != nil {
		return fmt.Errorf("encode supports: %w", err)
	}

	_, err = r.db.Exec(`INSERT INTO level_snapshots
		(run_id, symbol, bar_time, settled, reference, atr, steps, resistances, supports, computed_at)
		VALUES (?,?,?,?,?,?,?,?,?,?)`,
		snap.RunID, snap.Symbol, snap.BarTime.Unix(), snap.Settled, snap.Reference, snap.ATR,
		string(steps), string(res), string(sup), snap.ComputedAt.Unix(),
	)
	return err
}

// History returns the latest snapshots for symbol, newest first.
func (r *SQLiteRecorder) History(symbol string, limit int) ([]LevelSnapshot, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := r.db.Query(`SELECT run_id, symbol, bar_time, settled, reference, atr,
			steps, resistances, supports, computed_at
		FROM level_snapshots WHERE symbol = ?
		ORDER BY computed_at DESC, id DESC LIMIT ?`, symbol, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var out []LevelSnapshot
	for rows.Next() {
		var (
			s                   LevelSnapshot
			runID               sql.NullString
			atr                 sql.NullFloat64
			barTime, computedAt int64
			steps, res, sup     string
		)
		if err := rows.Scan(&runID, &s.Symbol, &barTime, &s.Settled, &s.Reference, &atr,
			&steps, &res, &sup, &computedAt); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		s.RunID = runID.String
		s.ATR = atr.Float64
		s.BarTime = time.Unix(barTime, 0)
		s.ComputedAt = time.Unix(computedAt, 0)
		if err := json.Unmarshal([]byte(steps), &s.Steps); err != nil {
			return nil, fmt.Errorf("decode steps: %w", err)
		}
		if err := json.Unmarshal([]byte(res), &s.Resistances); err != nil {
			return nil, fmt.Errorf("decode resistances: %w", err)
		}
		if err := json.Unmarshal([]byte(sup), &s.Supports); err != nil {
			return nil, fmt.Errorf("decode supports: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	r.logger.Info().Msg("closing sqlite recorder")
	return r.db.Close()
}
