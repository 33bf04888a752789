package store

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

const sqliteBusyTimeoutMS = 5000

type sqliteDialect struct {
	path string
}

func (d *sqliteDialect) DriverName() string { return DriverSqlite }

func (d *sqliteDialect) Open() (*sql.DB, error) {
	dsn := ":memory:"
	if d.path != "" {
		dsn = fmt.Sprintf("file:%s?_busy_timeout=%d&_pragma=foreign_keys(1)", d.path, sqliteBusyTimeoutMS)
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if d.path == "" {
		// a second pooled connection would see a different in-memory database
		db.SetMaxOpenConns(1)
	}
	return db, nil
}

func (d *sqliteDialect) EnsureStatements() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			command TEXT NOT NULL,
			organization TEXT NOT NULL,
			started_at TEXT NOT NULL,
			finished_at TEXT,
			succeeded INTEGER
		)`,
		`CREATE TABLE IF NOT EXISTS run_targets (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id INTEGER NOT NULL REFERENCES runs(id),
			org TEXT NOT NULL,
			target TEXT NOT NULL,
			status TEXT NOT NULL,
			status_code INTEGER NOT NULL,
			message TEXT,
			error TEXT,
			recorded_at TEXT NOT NULL
		)`,
	}
}

func (d *sqliteDialect) Placeholder(_ int) string { return "?" }

func (d *sqliteDialect) InsertRun(db *sql.DB, command, org, startedAt string) (int64, error) {
	res, err := db.Exec("INSERT INTO runs(command, organization, started_at) VALUES(?,?,?)",
		command, org, startedAt)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}
