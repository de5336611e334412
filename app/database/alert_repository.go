package database

import (
	"database/sql"
	"fmt"
	"time"
)

var _ AlertRepository = (*AlertRepo)(nil)

// AlertRepo handles the append-only alert event log.
type AlertRepo struct {
	db *DB
}

func NewAlertRepository(db *DB) *AlertRepo {
	return &AlertRepo{db: db}
}

func (r *AlertRepo) InsertAlert(kind, message, key string, oldPrice, newPrice *float64) error {
	query := r.db.Rebind(`
		INSERT INTO alerts (kind, message, product_key, old_price, new_price, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`)

	_, err := r.db.Exec(query, kind, message, key, nullFloat(oldPrice), nullFloat(newPrice), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to insert alert: %w", err)
	}
	return nil
}

func (r *AlertRepo) RecentAlerts(limit int) ([]Alert, error) {
	query := r.db.Rebind(`
		SELECT id, kind, COALESCE(message, ''), COALESCE(product_key, ''),
		       old_price, new_price, created_at
		FROM alerts
		ORDER BY created_at DESC
		LIMIT $1
	`)

	return r.queryAlerts(query, limit)
}

func (r *AlertRepo) RecentAlertsByKind(kind string, limit int) ([]Alert, error) {
	query := r.db.Rebind(`
		SELECT id, kind, COALESCE(message, ''), COALESCE(product_key, ''),
		       old_price, new_price, created_at
		FROM alerts
		WHERE kind = $1
		ORDER BY created_at DESC
		LIMIT $2
	`)

	return r.queryAlerts(query, kind, limit)
}

func (r *AlertRepo) queryAlerts(query string, args ...interface{}) ([]Alert, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query alerts: %w", err)
	}
	defer rows.Close()

	var alerts []Alert
	for rows.Next() {
		var a Alert
		var oldPrice, newPrice sql.NullFloat64

		err := rows.Scan(&a.ID, &a.Kind, &a.Message, &a.Key, &oldPrice, &newPrice, &a.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan alert row: %w", err)
		}

		a.OldPrice = floatPtr(oldPrice)
		a.NewPrice = floatPtr(newPrice)
		alerts = append(alerts, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating alert rows: %w", err)
	}

	return alerts, nil
}
