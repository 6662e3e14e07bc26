package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	stdhttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	redisadapter "github.com/vncsmyrnk/polls/internal/adapters/cache/redis"
	"github.com/vncsmyrnk/polls/internal/adapters/handler/http"
	"github.com/vncsmyrnk/polls/internal/adapters/handler/ws"
	"github.com/vncsmyrnk/polls/internal/adapters/messaging/rabbitmq"
	"github.com/vncsmyrnk/polls/internal/adapters/repository/postgres"
	"github.com/vncsmyrnk/polls/internal/adapters/repository/sqlite"
	"github.com/vncsmyrnk/polls/internal/config"
	"github.com/vncsmyrnk/polls/internal/core/ports"
	"github.com/vncsmyrnk/polls/internal/core/services"
)

// @title          Polls API
// @version        1.0
// @description    Publish questions, vote on their choices and follow the results.
// @BasePath       /api
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	if err := run(); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load("server", os.Args[1:])
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, questionRepo, voteRepo, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	questionService := services.NewQuestionService(questionRepo, time.Now)
	authService := services.NewAuthService(cfg.JWTSecret, time.Now)
	if cfg.JWTSecret == "" {
		slog.Warn("JWT_SECRET is not set; admin routes will reject every request")
	}

	var (
		publisher   ports.VotePublisher
		liveHandler stdhttp.HandlerFunc
	)

	if cfg.RedisURL != "" {
		redisClient, err := redisadapter.Connect(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer redisClient.Close()

		hub := ws.NewHub()
		go hub.Run(ctx)

		tallyService := services.NewTallyService(questionRepo, redisadapter.NewTallyCache(redisClient), hub, time.Now)
		liveHandler = ws.NewHandler(hub, tallyService).Live
		publisher = tallyService

		if cfg.RabbitMQURL != "" {
			conn, err := rabbitmq.Connect(cfg.RabbitMQURL)
			if err != nil {
				return err
			}
			defer conn.Close()

			amqpPublisher, err := rabbitmq.NewPublisher(conn, cfg.RabbitMQQueue)
			if err != nil {
				return err
			}
			defer amqpPublisher.Close()
			publisher = amqpPublisher

			go consumeVotes(ctx, conn, cfg.RabbitMQQueue, tallyService)
		}
	} else {
		slog.Info("REDIS_URL is not set; live tallies are disabled")
	}

	voteService := services.NewVoteService(questionRepo, voteRepo, publisher, time.Now)

	handler := http.NewHandler(http.Handlers{
		Questions: http.NewQuestionHandler(questionService, time.Now),
		Votes:     http.NewVoteHandler(voteService, questionService),
		Admin:     http.NewAdminHandler(questionService),
		Auth:      authService,
		Live:      liveHandler,
	})

	server := &stdhttp.Server{
		Addr:    fmt.Sprintf("0.0.0.0:%d", cfg.Port),
		Handler: otelhttp.NewHandler(handler, "polls"),
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", server.Addr, "database", cfg.DatabaseType)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}
	slog.Info("gracefully shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return server.Shutdown(shutdownCtx)
}

func openStore(ctx context.Context, cfg config.Config) (*sql.DB, ports.QuestionRepository, ports.VoteRepository, error) {
	if cfg.DatabaseType == config.DatabaseSQLite {
		db, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, nil, nil, err
		}
		repo := sqlite.NewRepository(db)
		return db, repo, repo, nil
	}

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, nil, nil, fmt.Errorf("failed to reach database: %w", err)
	}
	return db, postgres.NewQuestionRepository(db), postgres.NewVoteRepository(db), nil
}

func consumeVotes(ctx context.Context, conn *amqp.Connection, queue string, tallies *services.TallyService) {
	consumer := rabbitmq.NewConsumer(conn, queue)
	if err := consumer.Start(ctx, tallies.Apply); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("vote consumer stopped", "error", err)
	}
}
