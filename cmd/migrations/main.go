package main

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"time"

	_ "github.com/lib/pq"
	"github.com/vncsmyrnk/polls/internal/adapters/repository/postgres"
	"github.com/vncsmyrnk/polls/internal/config"
)

// Usage: migrations [flags] [migration-name]
// Without a name every up migration is applied.
func main() {
	cfg, err := config.Load("migrations", os.Args[1:])
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	if cfg.DatabaseType != config.DatabasePostgres {
		slog.Error("migrations only apply to postgres; the sqlite store creates its schema on open")
		os.Exit(1)
	}

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		slog.Error("failed to reach database", "error", err)
		os.Exit(1)
	}

	if len(cfg.Args) == 0 {
		err = postgres.Migrate(ctx, db)
	} else {
		err = postgres.RunMigration(ctx, db, cfg.Args[0])
	}
	if err != nil {
		slog.Error("migration failed", "error", err)
		os.Exit(1)
	}

	slog.Info("migrations executed successfully")
}
