// Package sqlite persists run history. The engine itself never persists
// state; this store is the caller-side record of past decisions.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/irwinb/tradecouncil/internal/models"
)

type Store struct {
	db *sql.DB
}

// RunRecord is one persisted run.
type RunRecord struct {
	RunID      string
	Subject    string
	AsOfDate   string
	Action     string
	Confidence float64
	RiskScore  float64
	Reasoning  string
	ErrorsJSON string
	Succeeded  bool
	CreatedAt  string
}

// Open opens (creating if needed) the history database at dbPath.
func Open(dbPath string) (*Store, error) {
	if strings.TrimSpace(dbPath) == "" {
		return nil, fmt.Errorf("db path is required")
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA busy_timeout=3000;",
		"PRAGMA synchronous=NORMAL;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("set pragma %s: %w", p, err)
		}
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func initSchema(db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS runs (
    run_id TEXT PRIMARY KEY,
    subject TEXT NOT NULL,
    as_of_date TEXT NOT NULL,
    action TEXT,
    confidence REAL,
    risk_score REAL,
    reasoning TEXT,
    errors_json TEXT,
    succeeded INTEGER NOT NULL,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_runs_subject ON runs(subject, as_of_date);
`
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	return nil
}

// SaveRun records a finished run, successful or aborted.
func (s *Store) SaveRun(ctx context.Context, result *models.RunResult) error {
	st := result.State
	rec := RunRecord{
		RunID:     result.RunID,
		Subject:   st.Subject,
		AsOfDate:  st.AsOfDate,
		Succeeded: result.Succeeded(),
	}
	if d := st.FinalDecision; d != nil {
		rec.Action = string(d.Action)
		rec.Confidence = d.Confidence
		rec.RiskScore = d.RiskScore
		rec.Reasoning = d.Reasoning
	}
	if len(st.Errors) > 0 {
		data, err := json.Marshal(st.Errors)
		if err != nil {
			return fmt.Errorf("marshal errors: %w", err)
		}
		rec.ErrorsJSON = string(data)
	}

	_, err := s.db.ExecContext(ctx, `
INSERT INTO runs (run_id, subject, as_of_date, action, confidence, risk_score, reasoning, errors_json, succeeded)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.RunID, rec.Subject, rec.AsOfDate, rec.Action, rec.Confidence,
		rec.RiskScore, rec.Reasoning, rec.ErrorsJSON, rec.Succeeded)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT run_id, subject, as_of_date, action, confidence, risk_score, reasoning, errors_json, succeeded, created_at
FROM runs ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		var rec RunRecord
		if err := rows.Scan(&rec.RunID, &rec.Subject, &rec.AsOfDate, &rec.Action,
			&rec.Confidence, &rec.RiskScore, &rec.Reasoning, &rec.ErrorsJSON,
			&rec.Succeeded, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
