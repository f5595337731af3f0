package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"messages-service/internal/config"
	"messages-service/internal/observability"
	"messages-service/migrations"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	observability.InitLogger(cfg.LogLevel, cfg.LogFormat)

	if err := run(cfg); err != nil {
		slog.Error("migration failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	db := config.NewDatabase(cfg.DSN(), cfg.Pool())
	defer db.Close()

	sqlDB, err := db.EnsureReady(ctx)
	if err != nil {
		return err
	}

	names, err := migrations.Files()
	if err != nil {
		return err
	}

	if err := migrations.Apply(ctx, sqlDB); err != nil {
		return err
	}

	slog.Info("migrations applied", slog.Any("files", names))
	return nil
}
