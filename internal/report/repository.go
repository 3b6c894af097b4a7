package report

import (
	"context"
	"database/sql"
	"time"

	"kopimas-be/internal/catalog"

	"github.com/shopspring/decimal"
)

type Repository interface {
	CountOrders(ctx context.Context) (int64, error)
	CountOrdersBetween(ctx context.Context, from, to time.Time) (int64, error)
	SumRevenue(ctx context.Context) (decimal.Decimal, error)
	CountActiveProducts(ctx context.Context) (int64, error)
	TopProducts(ctx context.Context, since time.Time, limit int) ([]TopProduct, error)
	DailyRevenue(ctx context.Context, since time.Time) ([]DailyRevenue, error)
	RevenueEntries(ctx context.Context, since time.Time) ([]RevenueEntry, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CountOrders(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders`).Scan(&count)
	return count, err
}

func (r *repository) CountOrdersBetween(ctx context.Context, from, to time.Time) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM orders
		WHERE created_at >= $1 AND created_at < $2
	`, from, to).Scan(&count)
	return count, err
}

// SumRevenue totals the denormalized order totals, not the line items.
func (r *repository) SumRevenue(ctx context.Context) (decimal.Decimal, error) {
	var revenue decimal.Decimal
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(total_amount), 0) FROM orders`,
	).Scan(&revenue)
	return revenue, err
}

func (r *repository) CountActiveProducts(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM products WHERE is_active = true`,
	).Scan(&count)
	return count, err
}

func (r *repository) TopProducts(ctx context.Context, since time.Time, limit int) ([]TopProduct, error) {
	query := `
		SELECT
			SUM(oi.quantity) AS total_quantity,
			COUNT(oi.id) AS order_count,
			p.id, p.name, p.price, p.category, p.description, p.is_active, p.created_at, p.updated_at
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id
		JOIN products p ON p.id = oi.product_id
		WHERE o.created_at >= $1
		GROUP BY p.id
		ORDER BY SUM(oi.quantity) DESC
		LIMIT $2
	`

	rows, err := r.db.QueryContext(ctx, query, since, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	top := []TopProduct{}
	for rows.Next() {
		var tp TopProduct
		var p catalog.Product
		err := rows.Scan(
			&tp.TotalQuantity,
			&tp.OrderCount,
			&p.ID,
			&p.Name,
			&p.Price,
			&p.Category,
			&p.Description,
			&p.IsActive,
			&p.CreatedAt,
			&p.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		tp.Product = p
		top = append(top, tp)
	}

	return top, rows.Err()
}

// DailyRevenue buckets by the database session's timezone; the deployment
// keeps it aligned with the app server's local zone so these buckets agree
// with the todayOrders window.
func (r *repository) DailyRevenue(ctx context.Context, since time.Time) ([]DailyRevenue, error) {
	query := `
		SELECT created_at::date AS day, SUM(total_amount) AS revenue
		FROM orders
		WHERE created_at >= $1
		GROUP BY day
		ORDER BY day ASC
	`

	rows, err := r.db.QueryContext(ctx, query, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	days := []DailyRevenue{}
	for rows.Next() {
		var day time.Time
		var revenue decimal.Decimal
		if err := rows.Scan(&day, &revenue); err != nil {
			return nil, err
		}
		days = append(days, DailyRevenue{
			Date:    day.Format("2006-01-02"),
			Revenue: revenue,
		})
	}

	return days, rows.Err()
}

func (r *repository) RevenueEntries(ctx context.Context, since time.Time) ([]RevenueEntry, error) {
	query := `
		SELECT total_amount, created_at
		FROM orders
		WHERE created_at >= $1
		ORDER BY created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []RevenueEntry{}
	for rows.Next() {
		var e RevenueEntry
		if err := rows.Scan(&e.Amount, &e.Date); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}
