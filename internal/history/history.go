// Package history keeps a local record of every submission in a SQLite
// database. Rows are written once at submission time and never updated;
// tracking job state after submission is the scheduler's business, not
// ours.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // pure Go SQLite driver
)

// Record is one submitted job.
type Record struct {
	ID          int64
	Name        string
	JobID       string
	ScriptPath  string
	Args        string
	Summary     string
	SubmittedAt time.Time
}

// Store wraps the submissions database.
type Store struct {
	db *sql.DB
}

// DefaultPath returns the per-user database location.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".slaunch", "history.db"), nil
}

// Open opens (and if needed creates) the submissions database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if err := initSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

func initSchema(db *sql.DB) error {
	const create = `
CREATE TABLE IF NOT EXISTS submissions (
  id           INTEGER PRIMARY KEY AUTOINCREMENT,
  name         TEXT,
  job_id       TEXT,
  script_path  TEXT,
  args         TEXT,
  summary      TEXT,
  submitted_at TEXT
);`
	_, err := db.Exec(create)
	return err
}

// Add inserts a submission record and returns its local id.
func (s *Store) Add(r Record) (int64, error) {
	res, err := s.db.Exec(
		`INSERT INTO submissions (name, job_id, script_path, args, summary, submitted_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		r.Name, r.JobID, r.ScriptPath, r.Args, r.Summary,
		r.SubmittedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("record submission: %w", err)
	}
	return res.LastInsertId()
}

// List returns all submissions, most recent first.
func (s *Store) List() ([]Record, error) {
	rows, err := s.db.Query(
		`SELECT id, name, job_id, script_path, args, summary, submitted_at
		 FROM submissions ORDER BY id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		r, err := scanRecord(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Get returns one submission by local id.
func (s *Store) Get(id int64) (*Record, error) {
	row := s.db.QueryRow(
		`SELECT id, name, job_id, script_path, args, summary, submitted_at
		 FROM submissions WHERE id = ?`, id)
	r, err := scanRecord(row.Scan)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func scanRecord(scan func(...any) error) (Record, error) {
	var r Record
	var submitted sql.NullString
	if err := scan(&r.ID, &r.Name, &r.JobID, &r.ScriptPath, &r.Args, &r.Summary, &submitted); err != nil {
		return Record{}, err
	}
	if submitted.Valid && submitted.String != "" {
		if t, err := time.Parse(time.RFC3339, submitted.String); err == nil {
			r.SubmittedAt = t
		}
	}
	return r, nil
}
