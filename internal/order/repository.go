package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"kopimas-be/internal/catalog"
	"kopimas-be/internal/logger"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Repository interface {
	List(ctx context.Context) ([]Order, error)
	ListRecent(ctx context.Context, limit int) ([]Order, error)
	GetByID(ctx context.Context, id int64) (*Order, error)
	Exists(ctx context.Context, id int64) (bool, error)

	CreateTx(ctx context.Context, customerName string, items []OrderItem, total decimal.Decimal) (int64, error)
	ReplaceItemsTx(ctx context.Context, orderID int64, customerName *string, items []OrderItem, total decimal.Decimal) error
	UpdateCustomerName(ctx context.Context, id int64, name string) error
	SetPaid(ctx context.Context, id int64, paid bool) error
	Delete(ctx context.Context, id int64) error

	GetItem(ctx context.Context, orderID, itemID int64) (*OrderItem, error)
	AddItemTx(ctx context.Context, orderID int64, item OrderItem) (int64, error)
	UpdateItemTx(ctx context.Context, orderID int64, item OrderItem, diff decimal.Decimal) error
	RemoveItemTx(ctx context.Context, orderID, itemID int64, reduction decimal.Decimal) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const orderColumns = "id, customer_name, total_amount, is_paid, created_at, updated_at"

func scanOrder(row interface{ Scan(dest ...any) error }) (*Order, error) {
	var o Order
	err := row.Scan(
		&o.ID,
		&o.CustomerName,
		&o.TotalAmount,
		&o.IsPaid,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *repository) List(ctx context.Context) ([]Order, error) {
	return r.list(ctx, 0)
}

func (r *repository) ListRecent(ctx context.Context, limit int) ([]Order, error) {
	return r.list(ctx, limit)
}

func (r *repository) list(ctx context.Context, limit int) ([]Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		ORDER BY created_at DESC
	`
	args := []any{}
	if limit > 0 {
		query += " LIMIT $1"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := []Order{}
	var ids []int64
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
		ids = append(ids, o.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(orders) == 0 {
		return orders, nil
	}

	itemsByOrder, err := r.fetchItems(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		items := itemsByOrder[orders[i].ID]
		if items == nil {
			items = []OrderItem{}
		}
		orders[i].Items = items
	}

	return orders, nil
}

func (r *repository) GetByID(ctx context.Context, id int64) (*Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE id = $1
	`

	o, err := scanOrder(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}

	itemsByOrder, err := r.fetchItems(ctx, []int64{o.ID})
	if err != nil {
		return nil, err
	}
	o.Items = itemsByOrder[o.ID]
	if o.Items == nil {
		o.Items = []OrderItem{}
	}

	return o, nil
}

// fetchItems loads line items with their current product details for a batch
// of orders in a single query.
func (r *repository) fetchItems(ctx context.Context, orderIDs []int64) (map[int64][]OrderItem, error) {
	query := `
		SELECT
			oi.id, oi.order_id, oi.product_id, oi.quantity, oi.price,
			p.id, p.name, p.price, p.category, p.description, p.is_active, p.created_at, p.updated_at
		FROM order_items oi
		JOIN products p ON p.id = oi.product_id
		WHERE oi.order_id = ANY($1)
		ORDER BY oi.id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(orderIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	itemsByOrder := make(map[int64][]OrderItem)
	for rows.Next() {
		var item OrderItem
		var p catalog.Product
		err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.ProductID,
			&item.Quantity,
			&item.Price,
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
		item.Product = &p
		itemsByOrder[item.OrderID] = append(itemsByOrder[item.OrderID], item)
	}

	return itemsByOrder, rows.Err()
}

func (r *repository) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM orders WHERE id = $1)`, id,
	).Scan(&exists)
	return exists, err
}

// CreateTx persists the order header and all line items as one unit.
func (r *repository) CreateTx(ctx context.Context, customerName string, items []OrderItem, total decimal.Decimal) (int64, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "CreateTx"),
		zap.Int("item_count", len(items)),
	)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}

	committed := false
	defer func() {
		if !committed {
			if rbErr := tx.Rollback(); rbErr != nil {
				log.Error("failed to rollback transaction", zap.Error(rbErr))
			}
		}
	}()

	var orderID int64
	err = tx.QueryRowContext(ctx, `
		INSERT INTO orders (customer_name, total_amount)
		VALUES ($1, $2)
		RETURNING id
	`, customerName, total).Scan(&orderID)
	if err != nil {
		return 0, err
	}

	for _, item := range items {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_items (order_id, product_id, quantity, price)
			VALUES ($1, $2, $3, $4)
		`, orderID, item.ProductID, item.Quantity, item.Price)
		if err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}

	committed = true
	log.Info("order created", zap.Int64("order_id", orderID))
	return orderID, nil
}

// ReplaceItemsTx swaps the entire item set and rewrites the total atomically.
// A failure at any step rolls the whole replacement back.
func (r *repository) ReplaceItemsTx(ctx context.Context, orderID int64, customerName *string, items []OrderItem, total decimal.Decimal) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "ReplaceItemsTx"),
		zap.Int64("order_id", orderID),
	)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	committed := false
	defer func() {
		if !committed {
			if rbErr := tx.Rollback(); rbErr != nil {
				log.Error("failed to rollback transaction", zap.Error(rbErr))
			}
		}
	}()

	var res sql.Result
	if customerName != nil {
		res, err = tx.ExecContext(ctx, `
			UPDATE orders
			SET customer_name = $1, total_amount = $2, updated_at = NOW()
			WHERE id = $3
		`, *customerName, total, orderID)
	} else {
		res, err = tx.ExecContext(ctx, `
			UPDATE orders
			SET total_amount = $1, updated_at = NOW()
			WHERE id = $2
		`, total, orderID)
	}
	if err != nil {
		return err
	}

	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrOrderNotFound
	}

	_, err = tx.ExecContext(ctx, `DELETE FROM order_items WHERE order_id = $1`, orderID)
	if err != nil {
		return err
	}

	for _, item := range items {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_items (order_id, product_id, quantity, price)
			VALUES ($1, $2, $3, $4)
		`, orderID, item.ProductID, item.Quantity, item.Price)
		if err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	committed = true
	log.Info("order items replaced", zap.Int("item_count", len(items)))
	return nil
}

func (r *repository) UpdateCustomerName(ctx context.Context, id int64, name string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE orders
		SET customer_name = $1, updated_at = NOW()
		WHERE id = $2
	`, name, id)
	if err != nil {
		return err
	}

	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrOrderNotFound
	}
	return nil
}

func (r *repository) SetPaid(ctx context.Context, id int64, paid bool) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE orders
		SET is_paid = $1, updated_at = NOW()
		WHERE id = $2
	`, paid, id)
	if err != nil {
		return err
	}

	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrOrderNotFound
	}
	return nil
}

// Delete removes the order; line items go with it via the FK cascade.
func (r *repository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return err
	}

	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrOrderNotFound
	}
	return nil
}

// GetItem enforces ownership: an item id from another order is not visible
// through this path.
func (r *repository) GetItem(ctx context.Context, orderID, itemID int64) (*OrderItem, error) {
	query := `
		SELECT
			oi.id, oi.order_id, oi.product_id, oi.quantity, oi.price,
			p.id, p.name, p.price, p.category, p.description, p.is_active, p.created_at, p.updated_at
		FROM order_items oi
		JOIN products p ON p.id = oi.product_id
		WHERE oi.id = $1 AND oi.order_id = $2
	`

	var item OrderItem
	var p catalog.Product
	err := r.db.QueryRowContext(ctx, query, itemID, orderID).Scan(
		&item.ID,
		&item.OrderID,
		&item.ProductID,
		&item.Quantity,
		&item.Price,
		&p.ID,
		&p.Name,
		&p.Price,
		&p.Category,
		&p.Description,
		&p.IsActive,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderItemNotFound
	}
	if err != nil {
		return nil, err
	}

	item.Product = &p
	return &item, nil
}

// AddItemTx inserts one line item and bumps the order total by its subtotal
// in the same transaction.
func (r *repository) AddItemTx(ctx context.Context, orderID int64, item OrderItem) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}

	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var itemID int64
	err = tx.QueryRowContext(ctx, `
		INSERT INTO order_items (order_id, product_id, quantity, price)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, orderID, item.ProductID, item.Quantity, item.Price).Scan(&itemID)
	if err != nil {
		return 0, err
	}

	err = r.adjustTotal(ctx, tx, orderID, item.Subtotal())
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}

	committed = true
	return itemID, nil
}

// UpdateItemTx rewrites one line item and applies the subtotal difference to
// the order total in the same transaction.
func (r *repository) UpdateItemTx(ctx context.Context, orderID int64, item OrderItem, diff decimal.Decimal) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx, `
		UPDATE order_items
		SET product_id = $1, quantity = $2, price = $3
		WHERE id = $4 AND order_id = $5
	`, item.ProductID, item.Quantity, item.Price, item.ID, orderID)
	if err != nil {
		return err
	}

	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrOrderItemNotFound
	}

	if err := r.adjustTotal(ctx, tx, orderID, diff); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	committed = true
	return nil
}

// RemoveItemTx deletes one line item and reduces the order total by its
// subtotal in the same transaction.
func (r *repository) RemoveItemTx(ctx context.Context, orderID, itemID int64, reduction decimal.Decimal) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx, `
		DELETE FROM order_items
		WHERE id = $1 AND order_id = $2
	`, itemID, orderID)
	if err != nil {
		return err
	}

	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrOrderItemNotFound
	}

	if err := r.adjustTotal(ctx, tx, orderID, reduction.Neg()); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	committed = true
	return nil
}

func (r *repository) adjustTotal(ctx context.Context, tx *sql.Tx, orderID int64, delta decimal.Decimal) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE orders
		SET total_amount = total_amount + $1, updated_at = NOW()
		WHERE id = $2
	`, delta, orderID)
	if err != nil {
		return err
	}

	affected, _ := res.RowsAffected()
	if affected == 0 {
		return fmt.Errorf("adjust total: %w", ErrOrderNotFound)
	}
	return nil
}
