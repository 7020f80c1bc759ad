// Package store provides SQLite-backed persistence of generated insight
// reports. The archive lives in .informes/informes.db and lets callers
// list past analysis runs and re-render a stored report without
// re-deriving statistics.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/afelipfo/informes-med/internal/insight"
)

// Store manages the .informes/informes.db SQLite database holding the
// report archive.
type Store struct {
	db     *sql.DB
	dbPath string
}

// Open opens or creates the archive database inside the given .informes
// directory. It initializes the schema if the database is new.
func Open(dir string) (*Store, error) {
	dbPath := filepath.Join(dir, "informes.db")

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open archive db: %w", err)
	}

	// Enable WAL mode for better concurrent access
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	s := &Store{db: db, dbPath: dbPath}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.dbPath
}

// RunSummary is one archived analysis run's listing entry.
type RunSummary struct {
	ID          string    `yaml:"id" json:"id"`
	GeneratedAt time.Time `yaml:"generated_at" json:"generated_at"`
	RecordCount int       `yaml:"record_count" json:"record_count"`
	Insights    int       `yaml:"insights" json:"insights"`
	Partial     bool      `yaml:"partial" json:"partial"`
}

// SaveReport archives a report. The full report is stored as JSON for
// lossless retrieval; summary columns support listing without unmarshaling.
func (s *Store) SaveReport(r *insight.Report) error {
	payload, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT OR REPLACE INTO runs (id, generated_at, record_count, insight_count, partial, report)
		VALUES (?, ?, ?, ?, ?, ?)`,
		r.ID, r.GeneratedAt.Format(time.RFC3339Nano), r.RecordCount,
		len(r.Insights), boolToInt(r.Partial), string(payload),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// GetReport retrieves an archived report by run ID.
func (s *Store) GetReport(id string) (*insight.Report, error) {
	var payload string
	err := s.db.QueryRow("SELECT report FROM runs WHERE id = ?", id).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("query run: %w", err)
	}

	var r insight.Report
	if err := json.Unmarshal([]byte(payload), &r); err != nil {
		return nil, fmt.Errorf("unmarshal report: %w", err)
	}
	return &r, nil
}

// ListRuns returns summaries of all archived runs, newest first.
func (s *Store) ListRuns() ([]RunSummary, error) {
	rows, err := s.db.Query(`
		SELECT id, generated_at, record_count, insight_count, partial
		FROM runs ORDER BY generated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var r RunSummary
		var generatedAt string
		var partial int
		if err := rows.Scan(&r.ID, &generatedAt, &r.RecordCount, &r.Insights, &partial); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if t, err := time.Parse(time.RFC3339Nano, generatedAt); err == nil {
			r.GeneratedAt = t
		}
		r.Partial = partial != 0
		out = append(out, r)
	}
	return out, rows.Err()
}

// DeleteRun removes one archived run.
func (s *Store) DeleteRun(id string) error {
	_, err := s.db.Exec("DELETE FROM runs WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete run: %w", err)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
