package db

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping sqlite database: %w", err)
	}
	if _, err := db.Exec(`PRAGMA foreign_keys = ON;`); err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	return db, nil
}

// PostgresOptions are pool settings for OpenPostgres. Zero values keep the driver defaults.
type PostgresOptions struct {
	MaxOpenConns int
	MaxIdleConns int
}

func OpenPostgres(dsn string, opts PostgresOptions) (*sql.DB, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("postgres dsn is required")
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres database: %w", err)
	}
	if opts.MaxOpenConns > 0 {
		db.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		db.SetMaxIdleConns(opts.MaxIdleConns)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres database: %w", err)
	}
	return db, nil
}

// OpenDialect opens the database for dialect. target is a file path for SQLite and a DSN
// for PostgreSQL.
func OpenDialect(dialect Dialect, target string) (*sql.DB, error) {
	switch dialect {
	case SQLite:
		return Open(target)
	case Postgres:
		return OpenPostgres(target, PostgresOptions{MaxOpenConns: 10, MaxIdleConns: 5})
	default:
		return nil, fmt.Errorf("unsupported database driver %q", dialect)
	}
}
