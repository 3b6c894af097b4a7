package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func productRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "name", "price", "category", "description", "is_active", "created_at", "updated_at",
	})
}

func TestRepository_ListActive(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		rows := productRows().
			AddRow(1, "Espresso", "2.50", "Coffee", "Strong shot", true, time.Now(), time.Now()).
			AddRow(2, "Croissant", "3.25", "Pastry", "Buttery", true, time.Now(), time.Now())

		mock.ExpectQuery(`(?s)SELECT .* FROM products\s+WHERE is_active = true\s+ORDER BY category ASC, name ASC`).
			WillReturnRows(rows)

		products, err := repo.ListActive(ctx)
		assert.NoError(t, err)
		assert.Len(t, products, 2)
		assert.Equal(t, "Espresso", products[0].Name)
		assert.True(t, products[0].Price.Equal(decimal.RequireFromString("2.50")))
	})

	t.Run("NoRowsReturnsEmptySlice", func(t *testing.T) {
		mock.ExpectQuery(`(?s)SELECT .* FROM products`).
			WillReturnRows(productRows())

		products, err := repo.ListActive(ctx)
		assert.NoError(t, err)
		assert.NotNil(t, products)
		assert.Len(t, products, 0)
	})

	t.Run("DBError", func(t *testing.T) {
		mock.ExpectQuery(`(?s)SELECT .* FROM products`).
			WillReturnError(errors.New("db error"))

		_, err := repo.ListActive(ctx)
		assert.Error(t, err)
	})
}

func TestRepository_GetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		rows := productRows().
			AddRow(7, "Latte", "4.00", "Coffee", "Milky", true, time.Now(), time.Now())

		mock.ExpectQuery(`(?s)SELECT .* FROM products\s+WHERE id = \$1`).
			WithArgs(int64(7)).
			WillReturnRows(rows)

		p, err := repo.GetByID(ctx, 7)
		assert.NoError(t, err)
		assert.Equal(t, int64(7), p.ID)
	})

	t.Run("NotFound", func(t *testing.T) {
		mock.ExpectQuery(`(?s)SELECT .* FROM products\s+WHERE id = \$1`).
			WithArgs(int64(99)).
			WillReturnRows(productRows())

		_, err := repo.GetByID(ctx, 99)
		assert.ErrorIs(t, err, ErrProductNotFound)
	})
}

func TestRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	ctx := context.Background()

	input := NewProduct{
		Name:        "Espresso",
		Price:       decimal.RequireFromString("2.50"),
		Category:    "Coffee",
		Description: "Strong shot",
	}

	rows := productRows().
		AddRow(1, "Espresso", "2.50", "Coffee", "Strong shot", true, time.Now(), time.Now())

	mock.ExpectQuery(`(?s)INSERT INTO products .* RETURNING`).
		WithArgs(input.Name, input.Price, input.Category, input.Description).
		WillReturnRows(rows)

	p, err := repo.Create(ctx, input)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), p.ID)
	assert.True(t, p.IsActive)
}

func TestRepository_Update(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	ctx := context.Background()

	t.Run("SingleField", func(t *testing.T) {
		name := "Double Espresso"
		rows := productRows().
			AddRow(1, name, "2.50", "Coffee", "Strong shot", true, time.Now(), time.Now())

		mock.ExpectQuery(`(?s)UPDATE products\s+SET name = \$1, updated_at = NOW\(\)\s+WHERE id = \$2\s+RETURNING`).
			WithArgs(name, int64(1)).
			WillReturnRows(rows)

		p, err := repo.Update(ctx, 1, UpdateProduct{Name: &name})
		assert.NoError(t, err)
		assert.Equal(t, name, p.Name)
	})

	t.Run("MultipleFields", func(t *testing.T) {
		price := decimal.RequireFromString("2.75")
		active := false
		rows := productRows().
			AddRow(1, "Espresso", "2.75", "Coffee", "Strong shot", false, time.Now(), time.Now())

		mock.ExpectQuery(`(?s)UPDATE products\s+SET price = \$1, is_active = \$2, updated_at = NOW\(\)\s+WHERE id = \$3\s+RETURNING`).
			WithArgs(price, active, int64(1)).
			WillReturnRows(rows)

		p, err := repo.Update(ctx, 1, UpdateProduct{Price: &price, IsActive: &active})
		assert.NoError(t, err)
		assert.False(t, p.IsActive)
	})

	t.Run("NoFieldsFallsBackToGet", func(t *testing.T) {
		rows := productRows().
			AddRow(1, "Espresso", "2.50", "Coffee", "Strong shot", true, time.Now(), time.Now())

		mock.ExpectQuery(`(?s)SELECT .* FROM products\s+WHERE id = \$1`).
			WithArgs(int64(1)).
			WillReturnRows(rows)

		p, err := repo.Update(ctx, 1, UpdateProduct{})
		assert.NoError(t, err)
		assert.Equal(t, "Espresso", p.Name)
	})

	t.Run("NotFound", func(t *testing.T) {
		name := "Ghost"
		mock.ExpectQuery(`(?s)UPDATE products`).
			WithArgs(name, int64(42)).
			WillReturnRows(productRows())

		_, err := repo.Update(ctx, 42, UpdateProduct{Name: &name})
		assert.ErrorIs(t, err, ErrProductNotFound)
	})
}

func TestRepository_Deactivate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		rows := productRows().
			AddRow(3, "Mocha", "4.50", "Coffee", "Chocolate", false, time.Now(), time.Now())

		mock.ExpectQuery(`(?s)UPDATE products\s+SET is_active = false, updated_at = NOW\(\)\s+WHERE id = \$1\s+RETURNING`).
			WithArgs(int64(3)).
			WillReturnRows(rows)

		p, err := repo.Deactivate(ctx, 3)
		assert.NoError(t, err)
		assert.False(t, p.IsActive)
	})

	t.Run("NotFound", func(t *testing.T) {
		mock.ExpectQuery(`(?s)UPDATE products`).
			WithArgs(int64(404)).
			WillReturnRows(productRows())

		_, err := repo.Deactivate(ctx, 404)
		assert.ErrorIs(t, err, ErrProductNotFound)
	})
}

func TestRepository_HardDelete(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM order_items WHERE product_id = \$1\)`).
			WithArgs(int64(5)).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
		mock.ExpectExec(`DELETE FROM products WHERE id = \$1`).
			WithArgs(int64(5)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := repo.HardDelete(ctx, 5)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Referenced", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM order_items WHERE product_id = \$1\)`).
			WithArgs(int64(6)).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
		mock.ExpectRollback()

		err := repo.HardDelete(ctx, 6)
		assert.ErrorIs(t, err, ErrProductReferenced)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("NotFound", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM order_items WHERE product_id = \$1\)`).
			WithArgs(int64(7)).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
		mock.ExpectExec(`DELETE FROM products WHERE id = \$1`).
			WithArgs(int64(7)).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		err := repo.HardDelete(ctx, 7)
		assert.ErrorIs(t, err, ErrProductNotFound)
	})
}
