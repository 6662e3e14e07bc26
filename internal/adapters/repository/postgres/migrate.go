package postgres

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"regexp"
	"sort"
	"strings"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Migrate applies every up migration in lexical order. The statements are
// idempotent, so running it against an already migrated database is a no-op.
func Migrate(ctx context.Context, db *sql.DB) error {
	names, err := migrationNames(".up.sql")
	if err != nil {
		return err
	}

	for _, name := range names {
		if err := execMigration(ctx, db, name); err != nil {
			return err
		}
	}
	return nil
}

// RunMigration executes the single migration file whose name ends with
// "<migrationName>.sql", e.g. "create_questions.up".
func RunMigration(ctx context.Context, db *sql.DB, migrationName string) error {
	name, err := migrationFilePath(migrationName)
	if err != nil {
		return err
	}
	return execMigration(ctx, db, name)
}

func execMigration(ctx context.Context, db *sql.DB, name string) error {
	content, err := migrationFiles.ReadFile("migrations/" + name)
	if err != nil {
		return fmt.Errorf("failed to read migration file %s: %w", name, err)
	}

	if _, err := db.ExecContext(ctx, string(content)); err != nil {
		return fmt.Errorf("failed to execute migration %s: %w", name, err)
	}
	return nil
}

func migrationFilePath(migrationName string) (string, error) {
	regex, err := regexp.Compile(fmt.Sprintf(`^.*%s\.sql$`, regexp.QuoteMeta(migrationName)))
	if err != nil {
		return "", fmt.Errorf("invalid migration name: %w", err)
	}

	names, err := migrationNames(".sql")
	if err != nil {
		return "", err
	}
	for _, name := range names {
		if regex.MatchString(name) {
			return name, nil
		}
	}

	return "", fmt.Errorf("migration file not found: %s", migrationName)
}

func migrationNames(suffix string) ([]string, error) {
	entries, err := fs.ReadDir(migrationFiles, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), suffix) {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return names, nil
}
