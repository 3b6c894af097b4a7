package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"kopimas-be/internal/logger"

	"go.uber.org/zap"
)

type Repository interface {
	ListActive(ctx context.Context) ([]Product, error)
	GetByID(ctx context.Context, id int64) (*Product, error)
	Create(ctx context.Context, input NewProduct) (*Product, error)
	Update(ctx context.Context, id int64, input UpdateProduct) (*Product, error)
	Deactivate(ctx context.Context, id int64) (*Product, error)
	HardDelete(ctx context.Context, id int64) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const productColumns = "id, name, price, category, description, is_active, created_at, updated_at"

func scanProduct(row interface{ Scan(dest ...any) error }) (*Product, error) {
	var p Product
	err := row.Scan(
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
	return &p, nil
}

func (r *repository) ListActive(ctx context.Context) ([]Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE is_active = true
		ORDER BY category ASC, name ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := []Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}

	return products, rows.Err()
}

func (r *repository) GetByID(ctx context.Context, id int64) (*Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE id = $1
	`

	p, err := scanProduct(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}

	return p, nil
}

func (r *repository) Create(ctx context.Context, input NewProduct) (*Product, error) {
	query := `
		INSERT INTO products (name, price, category, description, is_active)
		VALUES ($1, $2, $3, $4, true)
		RETURNING ` + productColumns + `
	`

	return scanProduct(r.db.QueryRowContext(ctx, query,
		input.Name,
		input.Price,
		input.Category,
		input.Description,
	))
}

// Update applies only the supplied fields, building the SET clause dynamically.
func (r *repository) Update(ctx context.Context, id int64, input UpdateProduct) (*Product, error) {
	set := ""
	args := []any{}
	argIndex := 1

	appendSet := func(column string, value any) {
		if set != "" {
			set += ", "
		}
		set += fmt.Sprintf("%s = $%d", column, argIndex)
		args = append(args, value)
		argIndex++
	}

	if input.Name != nil {
		appendSet("name", *input.Name)
	}
	if input.Price != nil {
		appendSet("price", *input.Price)
	}
	if input.Category != nil {
		appendSet("category", *input.Category)
	}
	if input.Description != nil {
		appendSet("description", *input.Description)
	}
	if input.IsActive != nil {
		appendSet("is_active", *input.IsActive)
	}

	if set == "" {
		return r.GetByID(ctx, id)
	}

	set += ", updated_at = NOW()"

	query := fmt.Sprintf(`
		UPDATE products
		SET %s
		WHERE id = $%d
		RETURNING `+productColumns, set, argIndex)
	args = append(args, id)

	p, err := scanProduct(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}

	return p, nil
}

func (r *repository) Deactivate(ctx context.Context, id int64) (*Product, error) {
	query := `
		UPDATE products
		SET is_active = false, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + productColumns

	p, err := scanProduct(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}

	return p, nil
}

// HardDelete removes a product permanently. Products referenced by any order
// item are protected; the FK RESTRICT constraint backs the same rule.
func (r *repository) HardDelete(ctx context.Context, id int64) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "HardDelete"),
		zap.Int64("product_id", id),
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

	var referenced bool
	err = tx.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM order_items WHERE product_id = $1)`, id,
	).Scan(&referenced)
	if err != nil {
		return err
	}
	if referenced {
		return ErrProductReferenced
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return err
	}

	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrProductNotFound
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	committed = true
	log.Info("product hard deleted")
	return nil
}
