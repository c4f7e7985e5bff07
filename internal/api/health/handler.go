package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"time"

	"humesync/internal/workers"
	"humesync/pkg/logger"
)

// Checker pings one dependency
type Checker func(ctx context.Context) error

// WorkerReporter exposes background worker health
type WorkerReporter interface {
	Health() map[string]workers.WorkerHealth
}

// Handler provides health check endpoints
type Handler struct {
	log         *logger.Logger
	checks      map[string]Checker
	workers     WorkerReporter
	startTime   time.Time
	serviceName string
	version     string
	now         func() time.Time
}

// New creates a new health check handler. Checks are probed in name order.
func New(log *logger.Logger, checks map[string]Checker, workers WorkerReporter, serviceName, version string) *Handler {
	if checks == nil {
		checks = map[string]Checker{}
	}
	return &Handler{
		log:         log,
		checks:      checks,
		workers:     workers,
		startTime:   time.Now(),
		serviceName: serviceName,
		version:     version,
		now:         time.Now,
	}
}

// HealthStatus represents the overall health status
type HealthStatus struct {
	Status    string                     `json:"status"` // "healthy", "degraded", "unhealthy"
	Service   string                     `json:"service"`
	Version   string                     `json:"version"`
	Uptime    string                     `json:"uptime"`
	Timestamp string                     `json:"timestamp"`
	Checks    map[string]ComponentHealth `json:"checks"`
	Workers   map[string]WorkerStatus    `json:"workers,omitempty"`
}

// ComponentHealth represents health of a single component
type ComponentHealth struct {
	Status       string `json:"status"`
	ResponseTime string `json:"response_time,omitempty"`
	Error        string `json:"error,omitempty"`
}

// WorkerStatus is the JSON view of a worker's last run
type WorkerStatus struct {
	Status       string `json:"status"` // "idle", "ok", "failing", "disabled"
	Enabled      bool   `json:"enabled"`
	LastRun      string `json:"last_run,omitempty"`
	LastDuration string `json:"last_duration,omitempty"`
	LastError    string `json:"last_error,omitempty"`
	Runs         int64  `json:"runs"`
	Errors       int64  `json:"errors"`
	Consecutive  int64  `json:"consecutive_errors"`
}

// HandleLiveness returns 200 OK if service is running
func (h *Handler) HandleLiveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

// HandleReadiness fails when any dependency check fails
func (h *Handler) HandleReadiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status, healthy, _ := h.probe(ctx)

	code := http.StatusOK
	if healthy < len(h.checks) {
		status.Status = "unhealthy"
		code = http.StatusServiceUnavailable
		h.log.Warnw("Readiness check failed", "checks", status.Checks)
	}
	writeJSON(w, code, status)
}

// HandleHealth returns detailed status, including background workers.
// Partial failure reports "degraded" with 200.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	status, healthy, total := h.probe(ctx)
	status.Workers = h.workerStatus()

	code := http.StatusOK
	switch {
	case total > 0 && healthy == 0:
		status.Status = "unhealthy"
		code = http.StatusServiceUnavailable
	case healthy < total:
		status.Status = "degraded"
	}
	writeJSON(w, code, status)
}

func (h *Handler) probe(ctx context.Context) (HealthStatus, int, int) {
	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	checks := make(map[string]ComponentHealth, len(names))
	healthy := 0
	for _, name := range names {
		c := h.check(ctx, name, h.checks[name])
		if c.Status == "healthy" {
			healthy++
		}
		checks[name] = c
	}

	return HealthStatus{
		Status:    "healthy",
		Service:   h.serviceName,
		Version:   h.version,
		Uptime:    h.now().Sub(h.startTime).Round(time.Second).String(),
		Timestamp: h.now().Format(time.RFC3339),
		Checks:    checks,
	}, healthy, len(names)
}

func (h *Handler) check(ctx context.Context, name string, fn Checker) ComponentHealth {
	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start)

	if err != nil {
		h.log.Errorw("Health check failed", "component", name, "error", err, "elapsed", elapsed)
		return ComponentHealth{
			Status:       "unhealthy",
			ResponseTime: elapsed.String(),
			Error:        err.Error(),
		}
	}

	return ComponentHealth{
		Status:       "healthy",
		ResponseTime: elapsed.String(),
	}
}

func (h *Handler) workerStatus() map[string]WorkerStatus {
	if h.workers == nil {
		return nil
	}

	out := make(map[string]WorkerStatus)
	for name, wh := range h.workers.Health() {
		ws := WorkerStatus{
			Status:      "idle",
			Enabled:     wh.Enabled,
			Runs:        wh.RunCount,
			Errors:      wh.ErrorCount,
			Consecutive: wh.ConsecutiveErrors,
		}
		switch {
		case !wh.Enabled:
			ws.Status = "disabled"
		case wh.Failing():
			ws.Status = "failing"
		case wh.RunCount > 0:
			ws.Status = "ok"
		}
		if !wh.LastRun.IsZero() {
			ws.LastRun = wh.LastRun.Format(time.RFC3339)
			ws.LastDuration = wh.LastDuration.String()
		}
		if wh.LastError != nil {
			ws.LastError = wh.LastError.Error()
		}
		out[name] = ws
	}
	return out
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
