package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationSection(t *testing.T) {
	content := `
-- +migrate Up
CREATE TABLE products (id BIGSERIAL PRIMARY KEY);
CREATE TABLE orders (id BIGSERIAL PRIMARY KEY);

-- +migrate Down
DROP TABLE orders;
DROP TABLE products;
`
	t.Run("Up", func(t *testing.T) {
		up := migrationSection(content, "Up")
		assert.Contains(t, up, "CREATE TABLE products")
		assert.Contains(t, up, "CREATE TABLE orders")
		assert.NotContains(t, up, "DROP TABLE")
		assert.NotContains(t, up, "-- +migrate")
	})

	t.Run("Down", func(t *testing.T) {
		down := migrationSection(content, "Down")
		assert.Contains(t, down, "DROP TABLE orders")
		assert.NotContains(t, down, "CREATE TABLE")
	})
}

func TestApplyPending(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	tmpDir := t.TempDir()
	fileName := "001_create_tables.sql"
	content := "-- +migrate Up\nCREATE TABLE products (id int);\n-- +migrate Down\nDROP TABLE products;"
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, fileName), []byte(content), 0644))

	files := []string{filepath.Join(tmpDir, fileName)}

	mock.ExpectQuery("SELECT EXISTS.*schema_migrations").
		WithArgs(fileName).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectExec("CREATE TABLE products").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO schema_migrations").
		WithArgs(fileName).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, applyPending(db, files))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyPendingSkipsApplied(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	tmpDir := t.TempDir()
	fileName := "001_create_tables.sql"
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, fileName), []byte("-- +migrate Up\nSELECT 1;"), 0644))

	mock.ExpectQuery("SELECT EXISTS.*schema_migrations").
		WithArgs(fileName).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	require.NoError(t, applyPending(db, []string{filepath.Join(tmpDir, fileName)}))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRollbackLast(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	tmpDir := t.TempDir()
	fileName := "001_create_tables.sql"
	content := "-- +migrate Up\nCREATE TABLE products (id int);\n-- +migrate Down\nDROP TABLE products;"
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, fileName), []byte(content), 0644))

	mock.ExpectQuery("SELECT version FROM schema_migrations").
		WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow(fileName))
	mock.ExpectExec("DROP TABLE products").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM schema_migrations").
		WithArgs(fileName).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, rollbackLast(db, []string{filepath.Join(tmpDir, fileName)}))
	require.NoError(t, mock.ExpectationsWereMet())
}
