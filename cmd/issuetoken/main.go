// Command issuetoken mints a custom sign-in token for INITIAL_AUTH_TOKEN, so a
// deployment can pin every page to a known guest identity.
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Bolt667/TallyAndSimon/internal/adapters/auth"
	"github.com/Bolt667/TallyAndSimon/internal/adapters/repository/postgres"
	"github.com/Bolt667/TallyAndSimon/internal/config"
)

func main() {
	var (
		uid string
		ttl time.Duration
	)
	flag.StringVar(&uid, "uid", "", "User id the token signs in as, a new one is generated when empty")
	flag.DurationVar(&ttl, "ttl", 30*24*time.Hour, "Token lifetime")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// logs go to stderr, the token alone to stdout
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	if ttl <= 0 {
		logger.Error("-ttl must be positive", "ttl", ttl)
		os.Exit(2)
	}

	var cfg config.DatabaseConfig
	if err := config.Process(&cfg); err != nil {
		logger.Error("failed to load database config", "error", err)
		os.Exit(1)
	}

	db, err := sql.Open("postgres", fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode,
	))
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	token, err := auth.NewService(postgres.NewUnitOfWork(db), logger).IssueCustomToken(ctx, uid, ttl)
	if err != nil {
		logger.Error("failed to issue token", "error", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
