package store

import (
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// PostgresqlConfig holds the postgresql backend settings.
type PostgresqlConfig struct {
	Host     string `mapstructure:"host" yaml:"host"`
	Port     int    `mapstructure:"port" yaml:"port"`
	User     string `mapstructure:"user" yaml:"user"`
	Password string `mapstructure:"password" yaml:"password"`
	DBName   string `mapstructure:"dbname" yaml:"dbname"`
	SSLMode  string `mapstructure:"sslmode" yaml:"sslmode"`
	DSN      string `mapstructure:"dsn" yaml:"dsn"`
}

func (c PostgresqlConfig) dsn() string {
	if c.DSN != "" {
		return c.DSN
	}
	port := c.Port
	if port == 0 {
		port = 5432
	}
	sslmode := c.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, port, c.User, c.Password, c.DBName, sslmode)
}

type postgresqlDialect struct {
	config PostgresqlConfig
}

func (d *postgresqlDialect) DriverName() string { return DriverPostgresql }

func (d *postgresqlDialect) Open() (*sql.DB, error) {
	return sql.Open("pgx", d.config.dsn())
}

func (d *postgresqlDialect) EnsureStatements() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id BIGSERIAL PRIMARY KEY,
			command TEXT NOT NULL,
			organization TEXT NOT NULL,
			started_at TEXT NOT NULL,
			finished_at TEXT,
			succeeded INTEGER
		)`,
		`CREATE TABLE IF NOT EXISTS run_targets (
			id BIGSERIAL PRIMARY KEY,
			run_id BIGINT NOT NULL REFERENCES runs(id),
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

func (d *postgresqlDialect) Placeholder(n int) string { return fmt.Sprintf("$%d", n) }

func (d *postgresqlDialect) InsertRun(db *sql.DB, command, org, startedAt string) (int64, error) {
	// pgx does not implement LastInsertId; use RETURNING instead
	var id int64
	err := db.QueryRow("INSERT INTO runs(command, organization, started_at) VALUES($1,$2,$3) RETURNING id",
		command, org, startedAt).Scan(&id)
	return id, err
}
