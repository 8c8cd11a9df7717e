package recorder

import (
	"database/sql"
	"fmt"
	"log"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists classification runs to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode for better concurrent read performance (dashboards read while the bot writes).
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp   INTEGER NOT NULL,
			symbol      TEXT NOT NULL,
			n_obs       INTEGER,
			log_lik     REAL,
			iterations  INTEGER,
			converged   INTEGER,
			label       TEXT,
			streak      INTEGER,
			mean_0      REAL,
			mean_1      REAL,
			var_0       REAL,
			var_1       REAL,
			stay_0      REAL,
			stay_1      REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_ts ON runs(timestamp)`,

		`CREATE TABLE IF NOT EXISTS regime_points (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id     INTEGER NOT NULL REFERENCES runs(id),
			week       INTEGER NOT NULL,
			return_pct REAL,
			state      INTEGER,
			label      TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_points_run ON regime_points(run_id)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// RecordRun inserts the run and its full labeled series in one transaction.
func (r *SQLiteRecorder) RecordRun(rec *RunRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	converged := 0
	if rec.Converged {
		converged = 1
	}

	res, err := tx.Exec(`INSERT INTO runs
		(timestamp, symbol, n_obs, log_lik, iterations, converged, label, streak,
		 mean_0, mean_1, var_0, var_1, stay_0, stay_1)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		time.Now().Unix(), rec.Symbol, rec.NObs, rec.LogLik, rec.Iterations, converged,
		string(rec.Label), rec.Streak,
		rec.Mean[0], rec.Mean[1], rec.Var[0], rec.Var[1], rec.Stay[0], rec.Stay[1],
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("run id: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO regime_points (run_id, week, return_pct, state, label) VALUES (?,?,?,?,?)`)
	if err != nil {
		return fmt.Errorf("prepare points insert: %w", err)
	}
	defer stmt.Close()
	for _, p := range rec.Points {
		if _, err := stmt.Exec(runID, p.Time.Unix(), p.Return, p.State, string(p.Label)); err != nil {
			return fmt.Errorf("insert point: %w", err)
		}
	}

	return tx.Commit()
}

// RecentRuns returns the latest runs, newest first.
func (r *SQLiteRecorder) RecentRuns(limit int) ([]RunSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.Query(`SELECT timestamp, symbol, label, streak, log_lik, n_obs
		FROM runs ORDER BY timestamp DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var s RunSummary
		var ts int64
		if err := rows.Scan(&ts, &s.Symbol, &s.Label, &s.Streak, &s.LogLik, &s.NObs); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		s.At = time.Unix(ts, 0)
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}
