package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"messages-service/internal/config"
	"messages-service/internal/middleware"
	"messages-service/internal/observability"
	"messages-service/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	observability.InitLogger(cfg.LogLevel, cfg.LogFormat)

	slog.Info("starting messages api",
		slog.String("environment", cfg.Environment),
		slog.String("db_host", cfg.DBHost),
		slog.Int("db_port", cfg.DBPort),
		slog.String("db_name", cfg.DBName))

	// Connects on the first request that needs the store
	db := config.NewDatabase(cfg.DSN(), cfg.Pool())
	defer func() {
		if err := db.Close(); err != nil {
			slog.Error("failed to close database", slog.String("error", err.Error()))
		}
	}()

	router, err := server.NewRouter(db, server.Options{
		AllowedOrigins:    middleware.ParseOrigins(cfg.AllowedOrigins),
		OpenAPIValidation: cfg.OpenAPIValidation,
	})
	if err != nil {
		slog.Error("failed to build router", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.Run(ctx, server.New(cfg.Port, router)); err != nil {
		slog.Error("server stopped with error", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}
