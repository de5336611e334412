package database

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Supported backends.
const (
	TypeSQLite   = "sqlite"
	TypePostgres = "postgres"
)

// DB wraps the sql handle with the backend it was opened against. Repositories
// write queries once with $N placeholders and rebind for SQLite; nothing above
// this package branches on the backend.
type DB struct {
	*sql.DB
	dbType string
}

// NewSQLiteConnection opens (or creates) the embedded file-based store.
func NewSQLiteConnection(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	// Serialized access: the pipeline is single-writer and modernc sqlite
	// does not support concurrent writers.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode = WAL; PRAGMA busy_timeout = 5000;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to configure sqlite: %w", err)
	}

	return &DB{DB: db, dbType: TypeSQLite}, nil
}

// NewPostgresConnection opens the client/server store, retrying the initial
// ping while the server comes up.
func NewPostgresConnection(host, port, user, password, name string) (*DB, error) {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, name)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres database: %w", err)
	}

	for i := 0; i < 10; i++ {
		if err = db.Ping(); err == nil {
			break
		}
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres ping failed after retries: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	return &DB{DB: db, dbType: TypePostgres}, nil
}

func (db *DB) Type() string {
	return db.dbType
}

// Rebind converts $N placeholders to ? for the SQLite driver. Queries are
// written with positional arguments in ascending order, so a plain substitution
// is sufficient.
func (db *DB) Rebind(query string) string {
	if db.dbType != TypeSQLite {
		return query
	}

	var b strings.Builder
	b.Grow(len(query))
	for i := 0; i < len(query); i++ {
		if query[i] == '$' && i+1 < len(query) && isDigit(query[i+1]) {
			b.WriteByte('?')
			for i+1 < len(query) && isDigit(query[i+1]) {
				i++
			}
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// Day formats a timestamp as the calendar-day key used by the daily snapshot
// table. Day keys are always UTC, independent of the configured timezone, so
// stored rows keep stable keys when the TZ setting changes.
func Day(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// nullFloat adapts *float64 for driver arguments.
func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
