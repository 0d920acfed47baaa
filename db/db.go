package db

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"go-extension-audit/internal/audit"
)

// DB wraps the SQLite connection holding scan history
type DB struct {
	conn *sql.DB
}

// Run is one recorded scan
type Run struct {
	ID        string
	StartedAt time.Time
	OutputDir string
	Findings  int
	Flagged   int
	Hits      int
}

// StoredFinding is the summary kept for each finding of a run
type StoredFinding struct {
	Browser            string
	Profile            string
	ExtensionID        string
	Version            string
	ManifestPath       string
	Name               string
	FlaggedPermissions []string
	Hits               int
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		started_at INTEGER NOT NULL,
		output_dir TEXT NOT NULL,
		findings INTEGER NOT NULL,
		flagged INTEGER NOT NULL,
		hits INTEGER NOT NULL
	)`,
	// Two roots can hold the same browser/profile/id/version, the manifest path tells them apart
	`CREATE TABLE IF NOT EXISTS findings (
		run_id TEXT NOT NULL REFERENCES runs(id),
		browser TEXT NOT NULL,
		profile TEXT NOT NULL,
		ext_id TEXT NOT NULL,
		version TEXT NOT NULL,
		manifest_path TEXT NOT NULL,
		name TEXT NOT NULL,
		flagged_permissions TEXT NOT NULL,
		hits INTEGER NOT NULL,
		PRIMARY KEY (run_id, browser, profile, ext_id, version, manifest_path)
	)`,
}

// NewDB initializes a new SQLite database connection
func NewDB(path string) (*DB, error) {
	conn, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	for _, query := range schema {
		if _, err := conn.Exec(query); err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to create schema: %w", err)
		}
	}

	return &DB{conn: conn}, nil
}

// Close closes the database connection
func (d *DB) Close() error {
	return d.conn.Close()
}

// RecordRun stores a run and its findings in one transaction
func (d *DB) RecordRun(startedAt time.Time, outputDir string, findings []audit.Finding) (Run, error) {
	run := Run{
		ID:        uuid.NewString(),
		StartedAt: startedAt.Truncate(time.Second),
		OutputDir: outputDir,
		Findings:  len(findings),
	}
	for _, f := range findings {
		if len(f.FlaggedPermissions) > 0 {
			run.Flagged++
		}
		run.Hits += len(f.Hits)
	}

	tx, err := d.conn.Begin()
	if err != nil {
		return Run{}, fmt.Errorf("failed to begin transaction: %w", err)
	}

	if _, err := tx.Exec("INSERT INTO runs (id, started_at, output_dir, findings, flagged, hits) VALUES (?, ?, ?, ?, ?, ?)",
		run.ID, run.StartedAt.Unix(), run.OutputDir, run.Findings, run.Flagged, run.Hits); err != nil {
		tx.Rollback()
		return Run{}, fmt.Errorf("failed to insert run: %w", err)
	}

	query := "INSERT INTO findings (run_id, browser, profile, ext_id, version, manifest_path, name, flagged_permissions, hits) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)"
	for _, f := range findings {
		if _, err := tx.Exec(query, run.ID, f.Browser, f.Profile, f.ExtensionID, f.Version, f.Manifest.Path, f.Name,
			strings.Join(f.FlaggedPermissions, ","), len(f.Hits)); err != nil {
			tx.Rollback()
			return Run{}, fmt.Errorf("failed to insert finding: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return Run{}, fmt.Errorf("failed to commit run: %w", err)
	}
	return run, nil
}

// ListRuns returns recorded runs, newest first. limit <= 0 returns all.
func (d *DB) ListRuns(limit int) ([]Run, error) {
	query := "SELECT id, started_at, output_dir, findings, flagged, hits FROM runs ORDER BY started_at DESC, rowid DESC"
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := d.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var ts int64
		if err := rows.Scan(&r.ID, &ts, &r.OutputDir, &r.Findings, &r.Flagged, &r.Hits); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		r.StartedAt = time.Unix(ts, 0)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// FindingsForRun returns the stored findings of one run
func (d *DB) FindingsForRun(id string) ([]StoredFinding, error) {
	rows, err := d.conn.Query(`SELECT browser, profile, ext_id, version, manifest_path, name, flagged_permissions, hits
		FROM findings WHERE run_id = ? ORDER BY browser, profile, ext_id, version, manifest_path`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch findings: %w", err)
	}
	defer rows.Close()

	var findings []StoredFinding
	for rows.Next() {
		var f StoredFinding
		var perms string
		if err := rows.Scan(&f.Browser, &f.Profile, &f.ExtensionID, &f.Version, &f.ManifestPath, &f.Name, &perms, &f.Hits); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		if perms != "" {
			f.FlaggedPermissions = strings.Split(perms, ",")
		}
		findings = append(findings, f)
	}
	return findings, rows.Err()
}
