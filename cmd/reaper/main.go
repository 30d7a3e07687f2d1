// Command reaper deletes stories that expired more than REAPER_RETENTION ago.
// It is meant to run from cron; the API never deletes stories itself.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"time"

	"snapgram/internal/cache"
	"snapgram/internal/config"
	"snapgram/internal/database"
	"snapgram/internal/observability"
	"snapgram/internal/repository"
	"snapgram/internal/service"
)

func main() {
	retention := flag.Duration("retention", -1, "Override REAPER_RETENTION (e.g. 72h)")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	observability.InitLogger(cfg.Env)

	if *retention >= 0 {
		cfg.ReaperRetention = *retention
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() {
		if err := database.Close(db); err != nil {
			observability.Logger.Error("Failed to close database", slog.String("error", err.Error()))
		}
	}()

	opts := service.OptionsFromConfig(cfg)
	stories := service.NewStoryService(
		repository.NewStoryRepository(db),
		repository.NewUserRepository(db, cache.New(nil)),
		opts,
	)

	ctx := observability.WithCorrelationID(context.Background(), observability.NewCorrelationID())
	cutoff := time.Now().UTC().Add(-cfg.ReaperRetention)

	n, err := stories.Reap(ctx, cutoff)
	if err != nil {
		observability.Logger.ErrorContext(ctx, "Reap failed", slog.String("error", err.Error()))
		return
	}
	observability.Logger.InfoContext(ctx, "Reap finished",
		slog.Int64("deleted", n),
		slog.Duration("retention", cfg.ReaperRetention),
	)
}
