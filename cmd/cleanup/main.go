// Command cleanup removes review sessions older than the configured
// retention window. The server prunes on every session write; this command
// covers installs where nobody reviews for a while. It is intended to be
// invoked by an external cron job.
//
// Exit codes: 0 = success, 1 = error.
package main

import (
	"context"
	"errors"
	"io/fs"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/tannibunni/dramaword-backend/internal/adapter/postgres"
	"github.com/tannibunni/dramaword-backend/internal/adapter/postgres/session"
	"github.com/tannibunni/dramaword-backend/internal/app"
	"github.com/tannibunni/dramaword-backend/internal/config"
	"github.com/tannibunni/dramaword-backend/internal/domain"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("load .env: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := app.NewLogger(cfg.Log)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Error("connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	today := domain.DateOf(time.Now(), cfg.Review.Location)
	cutoff := domain.AddDays(today, -cfg.Review.SessionRetentionDays)

	deleted, err := session.New(pool).DeleteBefore(ctx, cutoff)
	if err != nil {
		logger.Error("prune sessions failed",
			slog.String("error", err.Error()),
			slog.Time("cutoff", cutoff),
		)
		os.Exit(1)
	}

	logger.Info("prune sessions completed",
		slog.Int64("deleted", deleted),
		slog.Time("cutoff", cutoff),
	)
}
