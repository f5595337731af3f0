package handler

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"messages-service/internal/observability"
)

// Health returns basic health check
func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// HealthCheckResult represents the result of a health check
type HealthCheckResult struct {
	Status    string                 `json:"status"`
	LatencyMs int64                  `json:"latency_ms,omitempty"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Error     string                 `json:"error,omitempty"`
}

// DatabaseHandle hands out the connection pool, connecting on first use
type DatabaseHandle interface {
	EnsureReady(ctx context.Context) (*sql.DB, error)
}

// Ready returns readiness of the database. The first probe may be what opens the pool.
func Ready(db DatabaseHandle) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		dbCheck := checkDatabase(ctx, db)

		response := map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
			"checks": map[string]HealthCheckResult{
				"database": dbCheck,
			},
		}

		status := http.StatusOK
		response["status"] = "ready"
		if dbCheck.Status != "up" {
			status = http.StatusServiceUnavailable
			response["status"] = "not_ready"
		}

		writeJSON(w, status, response)
	}
}

// checkDatabase verifies database connectivity
func checkDatabase(ctx context.Context, handle DatabaseHandle) HealthCheckResult {
	start := time.Now()

	db, err := handle.EnsureReady(ctx)
	if err == nil {
		err = db.PingContext(ctx)
	}
	latency := time.Since(start)

	if err != nil {
		observability.FromContext(ctx).Warn("readiness check failed", slog.String("error", err.Error()))
		return HealthCheckResult{
			Status:    "down",
			LatencyMs: latency.Milliseconds(),
			Error:     "database unavailable",
		}
	}

	stats := db.Stats()
	observability.RecordDBStats(stats)

	return HealthCheckResult{
		Status:    "up",
		LatencyMs: latency.Milliseconds(),
		Metadata: map[string]interface{}{
			"connections_open":   stats.OpenConnections,
			"connections_in_use": stats.InUse,
			"connections_idle":   stats.Idle,
			"max_open":           stats.MaxOpenConnections,
		},
	}
}
