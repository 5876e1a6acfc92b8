package health

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maschh/sports-edge/internal/metrics"
)

func newTestServer(checks map[string]Checker) *Server {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return NewServer(Config{
		ServiceName: "sports-edge",
		Version:     "test",
		MetricsPath: "/metrics",
		Logger:      log,
		Checks:      checks,
	})
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "sports-edge", resp.Service)
	assert.Equal(t, "test", resp.Version)
}

func TestReadyEndpoint(t *testing.T) {
	ok := CheckFunc(func(context.Context) error { return nil })
	failing := CheckFunc(func(context.Context) error { return errors.New("no run yet") })

	tests := []struct {
		name       string
		ready      bool
		checks     map[string]Checker
		wantStatus int
		wantChecks map[string]string
	}{
		{
			name:       "ready",
			ready:      true,
			checks:     map[string]Checker{"database": ok},
			wantStatus: http.StatusOK,
			wantChecks: map[string]string{"service": "ok", "database": "ok"},
		},
		{
			name:       "not marked ready",
			checks:     map[string]Checker{"database": ok},
			wantStatus: http.StatusServiceUnavailable,
			wantChecks: map[string]string{"service": "not_ready", "database": "ok"},
		},
		{
			name:       "failing check",
			ready:      true,
			checks:     map[string]Checker{"database": ok, "last_run": failing},
			wantStatus: http.StatusServiceUnavailable,
			wantChecks: map[string]string{"service": "ok", "database": "ok", "last_run": "error: no run yet"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(tt.checks)
			srv.SetReady(tt.ready)

			rec := httptest.NewRecorder()
			srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			var resp ReadyResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantChecks, resp.Checks)
		})
	}
}

func TestMetricsEndpoint(t *testing.T) {
	metrics.RecordPredictions("NFL", 3)
	srv := newTestServer(nil)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "sports_edge_predictions_emitted_total")
}
