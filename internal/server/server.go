// Package server wires the message handlers, middleware and operational endpoints into one router.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"messages-service/api"
	"messages-service/internal/config"
	"messages-service/internal/handler"
	"messages-service/internal/middleware"
	"messages-service/internal/observability"
	"messages-service/internal/repository/postgres"
	"messages-service/internal/service"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const shutdownTimeout = 10 * time.Second

// Options controls the optional parts of the router
type Options struct {
	AllowedOrigins    []string
	OpenAPIValidation bool
}

// NewRouter builds the HTTP surface on top of a lazily connecting database handle
func NewRouter(db *config.Database, opts Options) (http.Handler, error) {
	validator, err := middleware.OpenAPIValidator(
		middleware.DefaultOpenAPIValidatorConfig(opts.OpenAPIValidation, api.Spec()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to set up request validation: %w", err)
	}

	messageRepo := postgres.NewMessageRepository(db)
	messageService := service.NewMessageService(messageRepo)
	messageHandler := handler.NewMessageHandler(messageService)

	r := chi.NewRouter()

	r.Use(middleware.RequestID())
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger())
	r.Use(middleware.Recoverer())
	r.Use(middleware.CORS(opts.AllowedOrigins))
	r.Use(middleware.Metrics())

	r.Get("/health", handler.Health)
	r.Get("/health/ready", handler.Ready(db))
	r.Handle("/metrics", metricsHandler(db))
	r.Get("/openapi.yaml", api.Handler)

	// Validation runs after routing so rejected requests keep their route label
	r.Group(func(r chi.Router) {
		r.Use(validator)

		r.Post("/messages", messageHandler.Create)
		r.Get("/messages", messageHandler.List)
		r.Get("/messages/{id}", messageHandler.Get)
		r.Put("/messages/{id}", messageHandler.Update)
		r.Delete("/messages/{id}", messageHandler.Delete)
	})

	r.NotFound(handler.NotFound)
	r.MethodNotAllowed(handler.MethodNotAllowed)

	return r, nil
}

// metricsHandler refreshes the pool gauges before each scrape
func metricsHandler(db *config.Database) http.Handler {
	next := promhttp.Handler()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if stats, ok := db.Stats(); ok {
			observability.RecordDBStats(stats)
		}
		next.ServeHTTP(w, r)
	})
}

// New returns an http.Server with the service timeouts
func New(port string, h http.Handler) *http.Server {
	return &http.Server{
		Addr:         ":" + port,
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully
func Run(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		slog.Info("messages api listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}
	return nil
}
