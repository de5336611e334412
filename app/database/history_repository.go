package database

import (
	"database/sql"
	"fmt"
	"time"
)

var _ HistoryRepository = (*HistoryRepo)(nil)

// HistoryRepo handles the append-only observation log. Rows are never mutated
// or deleted.
type HistoryRepo struct {
	db *DB
}

func NewHistoryRepository(db *DB) *HistoryRepo {
	return &HistoryRepo{db: db}
}

func (r *HistoryRepo) AppendObservation(key string, price, rating *float64) error {
	query := r.db.Rebind(`
		INSERT INTO price_history (product_key, price, rating, observed_at)
		VALUES ($1, $2, $3, $4)
	`)

	_, err := r.db.Exec(query, key, nullFloat(price), nullFloat(rating), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to append price observation: %w", err)
	}
	return nil
}

func (r *HistoryRepo) GetHistory(key string, limit int) ([]PricePoint, error) {
	query := r.db.Rebind(`
		SELECT id, product_key, price, rating, observed_at
		FROM price_history
		WHERE product_key = $1
		ORDER BY observed_at DESC
		LIMIT $2
	`)

	rows, err := r.db.Query(query, key, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get price history: %w", err)
	}
	defer rows.Close()

	var points []PricePoint
	for rows.Next() {
		var pt PricePoint
		var price, rating sql.NullFloat64

		if err := rows.Scan(&pt.ID, &pt.Key, &price, &rating, &pt.ObservedAt); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}

		pt.Price = floatPtr(price)
		pt.Rating = floatPtr(rating)
		points = append(points, pt)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating history rows: %w", err)
	}

	return points, nil
}
