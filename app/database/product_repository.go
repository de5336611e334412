package database

import (
	"database/sql"
	"fmt"
	"time"
)

var _ ProductRepository = (*ProductRepo)(nil)

// ProductRepo handles the daily snapshot table.
type ProductRepo struct {
	db *DB
}

func NewProductRepository(db *DB) *ProductRepo {
	return &ProductRepo{db: db}
}

const productColumns = `id, product_key, title, price, COALESCE(currency, ''), rating,
	       COALESCE(image_url, ''), price_bucket, rating_bucket, value_ratio,
	       scrape_day, scraped_at, created_at, updated_at`

func (r *ProductRepo) GetDailyProduct(key, day string) (*Product, error) {
	query := r.db.Rebind(`
		SELECT ` + productColumns + `
		FROM products
		WHERE product_key = $1 AND scrape_day = $2
	`)

	p, err := r.scanProduct(r.db.QueryRow(query, key, day))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get daily product: %w", err)
	}
	return p, nil
}

func (r *ProductRepo) InsertDailyProduct(rec ProductRecord) error {
	query := r.db.Rebind(`
		INSERT INTO products (
			product_key, title, price, currency, rating, image_url,
			price_bucket, rating_bucket, value_ratio, scrape_day, scraped_at,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`)

	now := time.Now().UTC()
	_, err := r.db.Exec(query,
		rec.Key, rec.Title, nullFloat(rec.Price), rec.Currency, nullFloat(rec.Rating),
		rec.ImageURL, rec.PriceBucket, rec.RatingBucket, nullFloat(rec.ValueRatio),
		rec.ScrapeDay, rec.ScrapedAt.UTC(), now, now)
	if err != nil {
		return fmt.Errorf("failed to insert daily product: %w", err)
	}
	return nil
}

func (r *ProductRepo) UpdateDailyProduct(id int64, rec ProductRecord) error {
	query := r.db.Rebind(`
		UPDATE products
		SET price = $2, rating = $3, price_bucket = $4, rating_bucket = $5,
		    value_ratio = $6, scraped_at = $7, updated_at = $8
		WHERE id = $1
	`)

	_, err := r.db.Exec(query,
		id, nullFloat(rec.Price), nullFloat(rec.Rating), rec.PriceBucket,
		rec.RatingBucket, nullFloat(rec.ValueRatio), rec.ScrapedAt.UTC(), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to update daily product: %w", err)
	}
	return nil
}

func (r *ProductRepo) CountProductsForDay(day string) (int, error) {
	query := r.db.Rebind("SELECT COUNT(*) FROM products WHERE scrape_day = $1")

	var count int
	if err := r.db.QueryRow(query, day).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count products for day: %w", err)
	}
	return count, nil
}

// TopProductsByValue returns the day's products ordered by value ratio
// descending, rows without a ratio last.
func (r *ProductRepo) TopProductsByValue(day string, limit int) ([]Product, error) {
	query := r.db.Rebind(`
		SELECT ` + productColumns + `
		FROM products
		WHERE scrape_day = $1
		ORDER BY value_ratio DESC NULLS LAST
		LIMIT $2
	`)

	return r.queryProducts(query, day, limit)
}

func (r *ProductRepo) BestValueProducts(day string, minRatio float64, limit int) ([]Product, error) {
	query := r.db.Rebind(`
		SELECT ` + productColumns + `
		FROM products
		WHERE scrape_day = $1 AND value_ratio > $2
		ORDER BY value_ratio DESC
		LIMIT $3
	`)

	return r.queryProducts(query, day, minRatio, limit)
}

func (r *ProductRepo) RecentProducts(limit int) ([]Product, error) {
	query := r.db.Rebind(`
		SELECT ` + productColumns + `
		FROM products
		ORDER BY scraped_at DESC
		LIMIT $1
	`)

	return r.queryProducts(query, limit)
}

func (r *ProductRepo) GetProductCount() (int, error) {
	var count int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM products").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to get product count: %w", err)
	}
	return count, nil
}

func (r *ProductRepo) queryProducts(query string, args ...interface{}) ([]Product, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		p, err := r.scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product row: %w", err)
		}
		products = append(products, *p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating product rows: %w", err)
	}

	return products, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *ProductRepo) scanProduct(row rowScanner) (*Product, error) {
	var p Product
	var price, rating, ratio sql.NullFloat64

	err := row.Scan(
		&p.ID, &p.Key, &p.Title, &price, &p.Currency, &rating,
		&p.ImageURL, &p.PriceBucket, &p.RatingBucket, &ratio,
		&p.ScrapeDay, &p.ScrapedAt, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	p.Price = floatPtr(price)
	p.Rating = floatPtr(rating)
	p.ValueRatio = floatPtr(ratio)
	return &p, nil
}
