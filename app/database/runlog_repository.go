package database

import (
	"database/sql"
	"fmt"
	"time"
)

var _ RunLogRepository = (*RunLogRepo)(nil)

// RunLogRepo records one row per ingestion run.
type RunLogRepo struct {
	db *DB
}

func NewRunLogRepository(db *DB) *RunLogRepo {
	return &RunLogRepo{db: db}
}

func (r *RunLogRepo) InsertRunLog(entry RunLog) error {
	query := r.db.Rebind(`
		INSERT INTO run_logs (watch_name, scraped, new_count, updated_count, duration_ms, status, error, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`)

	_, err := r.db.Exec(query,
		entry.WatchName, entry.Scraped, entry.New, entry.Updated,
		entry.DurationMs, entry.Status, entry.Error, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to insert run log: %w", err)
	}
	return nil
}

const runLogColumns = `id, watch_name, scraped, new_count, updated_count, duration_ms, status, error, created_at`

func (r *RunLogRepo) RecentRuns(limit int) ([]RunLog, error) {
	query := r.db.Rebind(`
		SELECT ` + runLogColumns + `
		FROM run_logs
		ORDER BY created_at DESC
		LIMIT $1
	`)

	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query run logs: %w", err)
	}
	defer rows.Close()

	var runs []RunLog
	for rows.Next() {
		entry, err := scanRunLog(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run log row: %w", err)
		}
		runs = append(runs, *entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating run log rows: %w", err)
	}

	return runs, nil
}

func (r *RunLogRepo) GetRunCount() (int, error) {
	var count int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM run_logs").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to get run count: %w", err)
	}
	return count, nil
}

func (r *RunLogRepo) GetLastRun() (*RunLog, error) {
	query := `
		SELECT ` + runLogColumns + `
		FROM run_logs
		ORDER BY created_at DESC
		LIMIT 1
	`

	entry, err := scanRunLog(r.db.QueryRow(query))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get last run: %w", err)
	}
	return entry, nil
}

func scanRunLog(row rowScanner) (*RunLog, error) {
	var entry RunLog
	err := row.Scan(
		&entry.ID, &entry.WatchName, &entry.Scraped, &entry.New, &entry.Updated,
		&entry.DurationMs, &entry.Status, &entry.Error, &entry.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &entry, nil
}
