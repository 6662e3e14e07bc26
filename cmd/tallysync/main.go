package main

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"time"

	_ "github.com/lib/pq"
	redisadapter "github.com/vncsmyrnk/polls/internal/adapters/cache/redis"
	"github.com/vncsmyrnk/polls/internal/adapters/repository/postgres"
	"github.com/vncsmyrnk/polls/internal/adapters/repository/sqlite"
	"github.com/vncsmyrnk/polls/internal/config"
	"github.com/vncsmyrnk/polls/internal/core/ports"
	"github.com/vncsmyrnk/polls/internal/core/services"
)

// tallysync rebuilds the live tally cache from the stored vote counters.
func main() {
	cfg, err := config.Load("tallysync", os.Args[1:])
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	if cfg.RedisURL == "" {
		slog.Error("REDIS_URL is required")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	var (
		db   *sql.DB
		repo ports.QuestionRepository
	)
	if cfg.DatabaseType == config.DatabaseSQLite {
		db, err = sqlite.Open(cfg.SQLitePath)
		if err == nil {
			repo = sqlite.NewRepository(db)
		}
	} else {
		db, err = sql.Open("postgres", cfg.DatabaseURL)
		if err == nil {
			err = db.PingContext(ctx)
			repo = postgres.NewQuestionRepository(db)
		}
	}
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	client, err := redisadapter.Connect(ctx, cfg.RedisURL)
	if err != nil {
		slog.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	defer client.Close()

	tallyService := services.NewTallyService(repo, redisadapter.NewTallyCache(client), nil, time.Now)

	slog.Info("starting tally sync")
	start := time.Now()
	if err := tallyService.SyncAll(ctx); err != nil {
		slog.Error("tally sync failed", "error", err)
		os.Exit(1)
	}
	slog.Info("tally sync completed", "elapsed", time.Since(start))
}
