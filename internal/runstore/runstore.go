// Package runstore persists extraction run metadata and summary statistics
// to a local SQLite database, so successive parameter sweeps can be
// compared and exported.
package runstore

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/thermotrace/thermotrace/internal/contract"
	"github.com/thermotrace/thermotrace/internal/parquet"
	"github.com/thermotrace/thermotrace/schema"
)

const runsTable = "thermotrace_runs"

// Store records extraction runs. The none backend returns a no-op store so
// callers never branch on configuration.
type Store interface {
	BeginRun(start time.Time, snapshotDir string, configParams map[string]any) (int64, error)
	EndRun(runID int64, end time.Time, summary schema.RunSummary) error
	ListRuns(limit int) ([]parquet.RunRecord, error)
	Close() error
}

// Open creates a store for the configured backend. An empty connect string
// with the sqlite backend falls back to the default database path.
func Open(backend schema.StoreBackend, connStr string) (Store, error) {
	switch backend {
	case schema.NoneBackend:
		return noopStore{}, nil
	case schema.SQLiteBackend:
		dbPath := connStr
		if dbPath == "" {
			dbPath = contract.GetRunsDBFilePath()
		}
		db, err := sql.Open("sqlite", dbPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open SQLite database at %q: %w. Check that the directory is writable", dbPath, err)
		}
		// Limit SQLite to a single open connection to avoid "database is
		// locked" errors.
		db.SetMaxOpenConns(1)
		if err := db.Ping(); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to connect to SQLite database %q: %w", dbPath, err)
		}
		if err := createRunsTable(db); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to create runs table: %w", err)
		}
		return &sqliteStore{db: db}, nil
	default:
		return nil, fmt.Errorf("unsupported store backend: %s", backend)
	}
}

// createRunsTable ensures the schema exists for fresh databases; managed
// upgrades go through Migrate.
func createRunsTable(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS ` + runsTable + ` (
		run_id INTEGER PRIMARY KEY AUTOINCREMENT,
		start_time TIMESTAMP NOT NULL,
		end_time TIMESTAMP,
		snapshot_dir TEXT NOT NULL,
		snapshot_count INTEGER NOT NULL DEFAULT 0,
		grid_points INTEGER NOT NULL DEFAULT 0,
		solidified INTEGER NOT NULL DEFAULT 0,
		incomplete INTEGER NOT NULL DEFAULT 0,
		never_melted INTEGER NOT NULL DEFAULT 0,
		config_params TEXT
	)`)
	return err
}

type sqliteStore struct {
	db *sql.DB
}

var _ Store = (*sqliteStore)(nil)

func (s *sqliteStore) BeginRun(start time.Time, snapshotDir string, configParams map[string]any) (int64, error) {
	var paramsJSON *string
	if configParams != nil {
		b, err := json.Marshal(configParams)
		if err != nil {
			return 0, fmt.Errorf("marshaling config params: %w", err)
		}
		str := string(b)
		paramsJSON = &str
	}
	res, err := s.db.Exec(
		`INSERT INTO `+runsTable+` (start_time, snapshot_dir, config_params) VALUES (?, ?, ?)`,
		start, snapshotDir, paramsJSON,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (s *sqliteStore) EndRun(runID int64, end time.Time, summary schema.RunSummary) error {
	_, err := s.db.Exec(
		`UPDATE `+runsTable+` SET end_time = ?, snapshot_count = ?, grid_points = ?,
			solidified = ?, incomplete = ?, never_melted = ? WHERE run_id = ?`,
		end, summary.SnapshotCount, summary.GridPoints,
		summary.Solidified, summary.Incomplete, summary.NeverMelted, runID,
	)
	return err
}

func (s *sqliteStore) ListRuns(limit int) ([]parquet.RunRecord, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.Query(
		`SELECT run_id, start_time, end_time, snapshot_dir, snapshot_count,
			grid_points, solidified, incomplete, never_melted, config_params
		 FROM `+runsTable+` ORDER BY run_id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []parquet.RunRecord
	for rows.Next() {
		var rec parquet.RunRecord
		var endTime sql.NullTime
		var params sql.NullString
		if err := rows.Scan(&rec.RunID, &rec.StartTime, &endTime, &rec.SnapshotDir,
			&rec.SnapshotCount, &rec.GridPoints, &rec.Solidified,
			&rec.Incomplete, &rec.NeverMelted, &params); err != nil {
			return nil, err
		}
		if endTime.Valid {
			t := endTime.Time
			rec.EndTime = &t
		}
		if params.Valid {
			p := params.String
			rec.ConfigParams = &p
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *sqliteStore) Close() error {
	return s.db.Close()
}

// noopStore satisfies Store when run tracking is disabled.
type noopStore struct{}

func (noopStore) BeginRun(time.Time, string, map[string]any) (int64, error) { return 0, nil }
func (noopStore) EndRun(int64, time.Time, schema.RunSummary) error          { return nil }
func (noopStore) ListRuns(int) ([]parquet.RunRecord, error)                 { return nil, nil }
func (noopStore) Close() error                                              { return nil }
