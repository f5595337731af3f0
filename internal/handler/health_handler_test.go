package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"messages-service/internal/domain"
	"messages-service/internal/testutil"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubHandle struct {
	db  *sql.DB
	err error
}

func (s stubHandle) EnsureReady(context.Context) (*sql.DB, error) {
	return s.db, s.err
}

func TestHealth_ReturnsOK(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	Health(w, req)

	testutil.AssertStatusCode(t, w, http.StatusOK)
	testutil.AssertHeader(t, w, "Content-Type", "application/json")

	response := testutil.DecodeJSON[map[string]string](t, w)
	assert.Equal(t, "ok", response["status"])
}

func TestHealthCheckResult_OmitsEmptyFields(t *testing.T) {
	data, err := json.Marshal(HealthCheckResult{Status: "up"})
	require.NoError(t, err)

	jsonStr := string(data)
	assert.NotContains(t, jsonStr, "latency_ms")
	assert.NotContains(t, jsonStr, "error")
	assert.NotContains(t, jsonStr, "metadata")
}

func TestReady_DatabaseUp(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectPing()

	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	w := httptest.NewRecorder()

	Ready(stubHandle{db: db})(w, req)

	testutil.AssertStatusCode(t, w, http.StatusOK)

	var response struct {
		Status string                       `json:"status"`
		Checks map[string]HealthCheckResult `json:"checks"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, "ready", response.Status)
	assert.Equal(t, "up", response.Checks["database"].Status)
	assert.Contains(t, response.Checks["database"].Metadata, "connections_open")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReady_PingFails(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectPing().WillReturnError(errors.New("connection reset by peer"))

	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	w := httptest.NewRecorder()

	Ready(stubHandle{db: db})(w, req)

	testutil.AssertStatusCode(t, w, http.StatusServiceUnavailable)
	body := w.Body.String()
	assert.Contains(t, body, "not_ready")
	assert.Contains(t, body, "database unavailable")
	assert.NotContains(t, body, "connection reset by peer")
}

func TestReady_ConnectionNeverEstablished(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	w := httptest.NewRecorder()

	Ready(stubHandle{err: domain.ErrConnection})(w, req)

	testutil.AssertStatusCode(t, w, http.StatusServiceUnavailable)

	var response struct {
		Status string                       `json:"status"`
		Checks map[string]HealthCheckResult `json:"checks"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, "not_ready", response.Status)
	assert.Equal(t, "down", response.Checks["database"].Status)
}

// Benchmark health endpoint
func BenchmarkHealth(b *testing.B) {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		w := httptest.NewRecorder()
		Health(w, req)
	}
}
