// Package config resolves process settings from flags, the environment and an
// optional .env file, in that order of precedence.
package config

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

const (
	DatabasePostgres = "postgres"
	DatabaseSQLite   = "sqlite"
)

type Config struct {
	Port          int
	DatabaseType  string
	DatabaseURL   string
	SQLitePath    string
	RedisURL      string
	RabbitMQURL   string
	RabbitMQQueue string
	JWTSecret     string

	// Args holds the positional arguments left after flag parsing.
	Args []string
}

// Load parses args for the named command. Values not given as flags fall back
// to environment variables.
func Load(name string, args []string) (Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "error", err)
	}

	var cfg Config
	fs := flag.NewFlagSet(name, flag.ContinueOnError)

	port, err := envInt("PORT", 8080)
	if err != nil {
		return Config{}, err
	}
	fs.IntVar(&cfg.Port, "port", port, "HTTP port")
	fs.StringVar(&cfg.DatabaseType, "db-type", getEnv("DATABASE_TYPE", DatabasePostgres), "Database type (postgres or sqlite)")
	fs.StringVar(&cfg.DatabaseURL, "db-url", getEnv("DATABASE_URL", postgresURLFromEnv()), "PostgreSQL connection URL")
	fs.StringVar(&cfg.SQLitePath, "sqlite-path", getEnv("SQLITE_PATH", "polls.db"), "SQLite database file")
	fs.StringVar(&cfg.RedisURL, "redis-url", os.Getenv("REDIS_URL"), "Redis URL; live tallies are disabled when empty")
	fs.StringVar(&cfg.RabbitMQURL, "rabbitmq-url", os.Getenv("RABBITMQ_URL"), "RabbitMQ URL; vote events stay in process when empty")
	fs.StringVar(&cfg.RabbitMQQueue, "rabbitmq-queue", getEnv("RABBITMQ_QUEUE", "votes"), "RabbitMQ vote queue")
	fs.StringVar(&cfg.JWTSecret, "jwt-secret", os.Getenv("JWT_SECRET"), "Secret for admin tokens (prefer env)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	cfg.Args = fs.Args()

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.DatabaseType {
	case DatabasePostgres:
		if c.DatabaseURL == "" {
			return errors.New("database URL required (use -db-url, DATABASE_URL or POSTGRES_* env)")
		}
	case DatabaseSQLite:
		if c.SQLitePath == "" {
			return errors.New("sqlite path required (use -sqlite-path or SQLITE_PATH env)")
		}
	default:
		return fmt.Errorf("unsupported database type %q", c.DatabaseType)
	}

	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	return nil
}

// postgresURLFromEnv builds a connection URL from the POSTGRES_* variables
// used by the postgres container image. Empty when POSTGRES_HOST is unset.
func postgresURLFromEnv() string {
	host := os.Getenv("POSTGRES_HOST")
	if host == "" {
		return ""
	}

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(os.Getenv("POSTGRES_USER"), os.Getenv("POSTGRES_PASSWORD")),
		Host:     host + ":" + getEnv("POSTGRES_PORT", "5432"),
		Path:     "/" + os.Getenv("POSTGRES_DB"),
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func envInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s env variable: %w", key, err)
	}
	return n, nil
}
