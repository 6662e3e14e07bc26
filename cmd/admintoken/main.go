package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/joho/godotenv"
	"github.com/vncsmyrnk/polls/internal/core/services"
)

// admintoken prints a signed token for the admin routes.
func main() {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "error", err)
	}

	var (
		subject string
		secret  string
		ttl     time.Duration
	)
	flag.StringVar(&subject, "subject", "admin", "Token subject")
	flag.StringVar(&secret, "jwt-secret", os.Getenv("JWT_SECRET"), "Signing secret (prefer env)")
	flag.DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime")
	flag.Parse()

	now := time.Now()
	token, err := services.NewAuthService(secret, func() time.Time { return now }).IssueAdminToken(subject, ttl)
	if err != nil {
		slog.Error("failed to issue token", "error", err)
		os.Exit(1)
	}

	slog.Info("issued admin token", "subject", subject, "expires", humanize.RelTime(now.Add(ttl), now, "ago", "from now"))

	fmt.Println(token)
}
