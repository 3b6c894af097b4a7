package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"kopimas-be/internal/config"
	"kopimas-be/internal/db"

	_ "github.com/lib/pq"
)

func main() {
	mode := flag.String("mode", "up", "migration mode: up or down")
	dir := flag.String("dir", "./migrations", "directory containing .sql migration files")
	flag.Parse()

	cfg := config.LoadConfig()

	database, err := db.NewDatabase(cfg)
	if err != nil {
		log.Fatalf("failed to connect db: %v", err)
	}
	defer database.Close()

	if err := run(database, *mode, *dir); err != nil {
		log.Fatal(err)
	}
}

func run(database *sql.DB, mode, dir string) error {
	_, err := database.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version TEXT PRIMARY KEY,
			applied_at TIMESTAMP NOT NULL DEFAULT NOW()
		);
	`)
	if err != nil {
		return fmt.Errorf("failed to ensure schema_migrations table: %w", err)
	}

	files, err := filepath.Glob(filepath.Join(dir, "*.sql"))
	if err != nil {
		return fmt.Errorf("failed to read migrations: %w", err)
	}
	sort.Strings(files)

	switch mode {
	case "up":
		return applyPending(database, files)
	case "down":
		return rollbackLast(database, files)
	default:
		return fmt.Errorf("unknown mode: %s (use 'up' or 'down')", mode)
	}
}

func applyPending(database *sql.DB, files []string) error {
	for _, file := range files {
		version := filepath.Base(file)

		var applied bool
		err := database.QueryRow(`SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = $1)`, version).Scan(&applied)
		if err != nil {
			return fmt.Errorf("failed to check migration status: %w", err)
		}
		if applied {
			log.Printf("skipping already applied migration: %s", version)
			continue
		}

		content, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", file, err)
		}

		log.Printf("applying migration: %s", version)
		if _, err := database.Exec(migrationSection(string(content), "Up")); err != nil {
			return fmt.Errorf("migration failed (%s): %w", version, err)
		}

		if _, err := database.Exec(`INSERT INTO schema_migrations (version) VALUES ($1)`, version); err != nil {
			return fmt.Errorf("failed to record migration version: %w", err)
		}
	}
	log.Println("all pending migrations applied")
	return nil
}

func rollbackLast(database *sql.DB, files []string) error {
	var lastVersion string
	err := database.QueryRow(`SELECT version FROM schema_migrations ORDER BY applied_at DESC LIMIT 1`).Scan(&lastVersion)
	if err == sql.ErrNoRows {
		log.Println("no migrations to roll back")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to get last applied migration: %w", err)
	}

	var path string
	for _, f := range files {
		if filepath.Base(f) == lastVersion {
			path = f
			break
		}
	}
	if path == "" {
		return fmt.Errorf("migration file not found for version: %s", lastVersion)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	log.Printf("rolling back migration: %s", lastVersion)
	if _, err := database.Exec(migrationSection(string(content), "Down")); err != nil {
		return fmt.Errorf("rollback failed (%s): %w", lastVersion, err)
	}

	if _, err := database.Exec(`DELETE FROM schema_migrations WHERE version = $1`, lastVersion); err != nil {
		return fmt.Errorf("failed to remove migration record: %w", err)
	}

	log.Println("rollback successful")
	return nil
}

// migrationSection returns the SQL between the "-- +migrate <section>" marker
// and the next marker (or end of file).
func migrationSection(content, section string) string {
	var sb strings.Builder
	inSection := false

	for _, line := range strings.Split(content, "\n") {
		if strings.Contains(line, "-- +migrate "+section) {
			inSection = true
			continue
		}
		if inSection && strings.HasPrefix(line, "-- +migrate") {
			break
		}
		if inSection {
			sb.WriteString(line + "\n")
		}
	}
	return sb.String()
}
