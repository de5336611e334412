package database

import (
	"database/sql"
	"fmt"
	"time"
)

var _ WatchRepository = (*WatchRepo)(nil)

// WatchRepo persists scheduling state for configured watches.
type WatchRepo struct {
	db *DB
}

func NewWatchRepository(db *DB) *WatchRepo {
	return &WatchRepo{db: db}
}

func (r *WatchRepo) GetWatch(name string) (*Watch, error) {
	query := r.db.Rebind(`
		SELECT id, name, query, enabled, last_run_at, next_run_at, created_at, updated_at
		FROM watches
		WHERE name = $1
	`)

	var w Watch
	var lastRun, nextRun sql.NullTime

	err := r.db.QueryRow(query, name).Scan(
		&w.ID, &w.Name, &w.Query, &w.Enabled, &lastRun, &nextRun,
		&w.CreatedAt, &w.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get watch: %w", err)
	}

	if lastRun.Valid {
		w.LastRunAt = &lastRun.Time
	}
	if nextRun.Valid {
		w.NextRunAt = &nextRun.Time
	}
	return &w, nil
}

func (r *WatchRepo) UpsertWatch(name, query string, enabled bool) error {
	existing, err := r.GetWatch(name)
	if err != nil {
		return err
	}

	now := time.Now().UTC()

	if existing == nil {
		stmt := r.db.Rebind(`
			INSERT INTO watches (name, query, enabled, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5)
		`)
		if _, err := r.db.Exec(stmt, name, query, enabled, now, now); err != nil {
			return fmt.Errorf("failed to insert watch: %w", err)
		}
		return nil
	}

	stmt := r.db.Rebind(`
		UPDATE watches
		SET query = $2, enabled = $3, updated_at = $4
		WHERE name = $1
	`)
	if _, err := r.db.Exec(stmt, name, query, enabled, now); err != nil {
		return fmt.Errorf("failed to update watch: %w", err)
	}
	return nil
}

func (r *WatchRepo) UpdateNextRun(name string, lastRun, nextRun time.Time) error {
	stmt := r.db.Rebind(`
		UPDATE watches
		SET last_run_at = $2, next_run_at = $3, updated_at = $4
		WHERE name = $1
	`)

	_, err := r.db.Exec(stmt, name, lastRun.UTC(), nextRun.UTC(), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to update watch schedule: %w", err)
	}
	return nil
}

func (r *WatchRepo) GetWatchCount() (int, error) {
	var count int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM watches").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to get watch count: %w", err)
	}
	return count, nil
}
