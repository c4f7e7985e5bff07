package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"humesync/internal/workers"
	"humesync/pkg/logger"
)

type staticWorkers map[string]workers.WorkerHealth

func (s staticWorkers) Health() map[string]workers.WorkerHealth { return s }

func ok(context.Context) error   { return nil }
func down(context.Context) error { return errors.New("connection refused") }

func serve(t *testing.T, h http.HandlerFunc) (int, HealthStatus) {
	t.Helper()
	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	var status HealthStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	return rec.Code, status
}

func TestHandleHealth(t *testing.T) {
	log := logger.Get()

	t.Run("healthy", func(t *testing.T) {
		h := New(log, map[string]Checker{"postgres": ok, "redis": ok}, nil, "humesync", "1.0.0")
		code, status := serve(t, h.HandleHealth)

		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, "healthy", status.Status)
		assert.Equal(t, "humesync", status.Service)
		assert.Len(t, status.Checks, 2)
	})

	t.Run("degraded", func(t *testing.T) {
		h := New(log, map[string]Checker{"postgres": ok, "redis": down}, nil, "humesync", "")
		code, status := serve(t, h.HandleHealth)

		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, "degraded", status.Status)
		assert.Equal(t, "connection refused", status.Checks["redis"].Error)
	})

	t.Run("unhealthy", func(t *testing.T) {
		h := New(log, map[string]Checker{"postgres": down}, nil, "humesync", "")
		code, status := serve(t, h.HandleHealth)

		assert.Equal(t, http.StatusServiceUnavailable, code)
		assert.Equal(t, "unhealthy", status.Status)
	})

	t.Run("includes workers", func(t *testing.T) {
		reporter := staticWorkers{
			"agent_reconcile": {
				Enabled:           true,
				LastRun:           time.Date(2024, 6, 20, 9, 30, 0, 0, time.UTC),
				LastError:         errors.New("list failed"),
				LastDuration:      time.Second,
				RunCount:          4,
				ErrorCount:        1,
				ConsecutiveErrors: 1,
			},
			"cache_warmup": {Enabled: false},
		}
		h := New(log, map[string]Checker{"postgres": ok}, reporter, "humesync", "")
		_, status := serve(t, h.HandleHealth)

		ws := status.Workers["agent_reconcile"]
		assert.True(t, ws.Enabled)
		assert.Equal(t, int64(4), ws.Runs)
		assert.Equal(t, "list failed", ws.LastError)
		assert.Equal(t, "2024-06-20T09:30:00Z", ws.LastRun)
		assert.Equal(t, "1s", ws.LastDuration)
		assert.Equal(t, "failing", ws.Status)
		assert.Equal(t, "disabled", status.Workers["cache_warmup"].Status)
	})
}

func TestHandleReadiness(t *testing.T) {
	h := New(logger.Get(), map[string]Checker{"postgres": ok, "redis": down}, nil, "humesync", "")
	code, status := serve(t, h.HandleReadiness)

	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "unhealthy", status.Status)
	assert.Nil(t, status.Workers)
}

func TestHandleLiveness(t *testing.T) {
	rec := httptest.NewRecorder()
	New(logger.Get(), nil, nil, "humesync", "").HandleLiveness(rec, httptest.NewRequest(http.MethodGet, "/live", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"alive"}`, rec.Body.String())
}
