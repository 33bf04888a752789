package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/loykin/repobatch/internal/common"
	"github.com/loykin/repobatch/internal/outcome"
)

const (
	DriverSqlite     = "sqlite"
	DriverPostgresql = "postgresql"

	// DBFileName is the default sqlite file when no path is configured.
	DBFileName = "repobatch.db"
)

// Config selects and configures the optional run-history store.
type Config struct {
	Disabled bool             `mapstructure:"disabled" yaml:"disabled"`
	Type     string           `mapstructure:"type" yaml:"type"`
	SQLite   SQLiteConfig     `mapstructure:"sqlite" yaml:"sqlite"`
	Postgres PostgresqlConfig `mapstructure:"postgres" yaml:"postgres"`
}

// SQLiteConfig holds the sqlite backend settings.
type SQLiteConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

// Run is one recorded invocation of the tool.
type Run struct {
	ID           int64
	Command      string
	Organization string
	StartedAt    string
	FinishedAt   string
	Succeeded    bool
	Targets      int
	Failed       int
}

// dialect abstracts the SQL differences between the sqlite and postgresql
// backends.
type dialect interface {
	DriverName() string
	Open() (*sql.DB, error)
	EnsureStatements() []string
	Placeholder(n int) string
	InsertRun(db *sql.DB, command, org, startedAt string) (int64, error)
}

// Store records one row per outcome record under a run id, written as the
// run progresses so a crash mid-run still leaves a queryable trail.
type Store struct {
	db      *sql.DB
	dialect dialect
	logger  *common.Logger
}

// New builds a Store for the configured backend type. Returns nil when the
// store is disabled.
func New(c Config) (*Store, error) {
	if c.Disabled {
		return nil, nil
	}
	var d dialect
	switch c.Type {
	case DriverSqlite, "":
		d = &sqliteDialect{path: c.SQLite.Path}
	case DriverPostgresql, "postgres":
		d = &postgresqlDialect{config: c.Postgres}
	default:
		return nil, fmt.Errorf("store: unsupported type: %s", c.Type)
	}
	return &Store{
		dialect: d,
		logger:  common.GetLogger().WithStore(d.DriverName()),
	}, nil
}

// Connect opens the database connection and ensures the schema.
func (s *Store) Connect() error {
	db, err := s.dialect.Open()
	if err != nil {
		return fmt.Errorf("store: failed to connect: %w", err)
	}
	s.db = db
	for i, q := range s.dialect.EnsureStatements() {
		if _, err := s.db.Exec(q); err != nil {
			return fmt.Errorf("store: failed to create table %d: %w", i+1, err)
		}
	}
	s.logger.Debug("run-history store ready")
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// BeginRun inserts a run row and returns its id.
func (s *Store) BeginRun(command, organization string) (int64, error) {
	startedAt := time.Now().UTC().Format(time.RFC3339)
	id, err := s.dialect.InsertRun(s.db, command, organization, startedAt)
	if err != nil {
		return 0, fmt.Errorf("store: failed to begin run: %w", err)
	}
	s.logger.Debug("run started", "run_id", id, "command", command)
	return id, nil
}

// RecordTarget inserts one row for a resolved target.
func (s *Store) RecordTarget(runID int64, rec outcome.Record) error {
	q := fmt.Sprintf(
		"INSERT INTO run_targets(run_id, org, target, status, status_code, message, error, recorded_at) VALUES(%s,%s,%s,%s,%s,%s,%s,%s)",
		s.dialect.Placeholder(1), s.dialect.Placeholder(2), s.dialect.Placeholder(3),
		s.dialect.Placeholder(4), s.dialect.Placeholder(5), s.dialect.Placeholder(6),
		s.dialect.Placeholder(7), s.dialect.Placeholder(8))
	_, err := s.db.Exec(q,
		runID, rec.Org, rec.Target, string(rec.Status), rec.StatusCode,
		rec.Message, rec.Err, rec.Time.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("store: failed to record target %s: %w", rec.Target, err)
	}
	return nil
}

// FinishRun marks the run finished with its summary.
func (s *Store) FinishRun(runID int64, succeeded bool) error {
	q := fmt.Sprintf("UPDATE runs SET finished_at = %s, succeeded = %s WHERE id = %s",
		s.dialect.Placeholder(1), s.dialect.Placeholder(2), s.dialect.Placeholder(3))
	finishedAt := time.Now().UTC().Format(time.RFC3339)
	// succeeded is stored as 0/1 so both backends share one schema shape
	succeededVal := 0
	if succeeded {
		succeededVal = 1
	}
	if _, err := s.db.Exec(q, finishedAt, succeededVal, runID); err != nil {
		return fmt.Errorf("store: failed to finish run %d: %w", runID, err)
	}
	return nil
}

// ListRuns returns run history, most recent first, with per-run target
// counts folded in.
func (s *Store) ListRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	q := fmt.Sprintf(`SELECT r.id, r.command, r.organization, r.started_at,
		COALESCE(r.finished_at, ''), COALESCE(r.succeeded, 0),
		COUNT(t.id), COALESCE(SUM(CASE WHEN t.status = 'failure' THEN 1 ELSE 0 END), 0)
		FROM runs r LEFT JOIN run_targets t ON t.run_id = r.id
		GROUP BY r.id, r.command, r.organization, r.started_at, r.finished_at, r.succeeded
		ORDER BY r.id DESC LIMIT %s`, s.dialect.Placeholder(1))

	rows, err := s.db.Query(q, limit)
	if err != nil {
		return nil, fmt.Errorf("store: failed to list runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []Run
	for rows.Next() {
		var r Run
		var succeeded int64
		if err := rows.Scan(&r.ID, &r.Command, &r.Organization, &r.StartedAt,
			&r.FinishedAt, &succeeded, &r.Targets, &r.Failed); err != nil {
			return nil, fmt.Errorf("store: failed to scan run: %w", err)
		}
		r.Succeeded = succeeded != 0
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: error iterating runs: %w", err)
	}
	return runs, nil
}
