package workers

import (
	"context"
	"sync"
	"time"

	"humesync/pkg/logger"
)

// Worker defines the interface for background workers
type Worker interface {
	// Name returns the unique identifier for this worker
	Name() string

	// Run executes one iteration of work and returns.
	// The scheduler calls it again every Interval().
	Run(ctx context.Context) error

	// Interval returns how often this worker should run
	Interval() time.Duration

	// Enabled returns whether this worker is active
	Enabled() bool
}

// WorkerHealth contains health information for a worker
type WorkerHealth struct {
	LastRun      time.Time
	LastError    error
	LastDuration time.Duration
	RunCount     int64
	ErrorCount   int64
	// ConsecutiveErrors resets on the first successful run
	ConsecutiveErrors int64
	AvgDuration       time.Duration
	Enabled           bool
}

// Failing reports whether the most recent run failed
func (h WorkerHealth) Failing() bool {
	return h.ConsecutiveErrors > 0
}

// runRecorder is implemented by workers embedding BaseWorker
type runRecorder interface {
	RecordRun(duration time.Duration)
	RecordError(err error, duration time.Duration)
	Health() WorkerHealth
}

// BaseWorker provides common functionality for workers
type BaseWorker struct {
	name     string
	interval time.Duration
	log      *logger.Logger

	healthMu      sync.RWMutex
	enabled       bool
	lastRun       time.Time
	lastError     error
	lastDuration  time.Duration
	runCount      int64
	errorCount    int64
	consecutive   int64
	totalDuration time.Duration
}

// NewBaseWorker creates a new base worker
func NewBaseWorker(name string, interval time.Duration, enabled bool) *BaseWorker {
	return &BaseWorker{
		name:     name,
		interval: interval,
		enabled:  enabled,
		log:      logger.Get().With("worker", name),
	}
}

func (w *BaseWorker) Name() string {
	return w.name
}

func (w *BaseWorker) Interval() time.Duration {
	return w.interval
}

func (w *BaseWorker) Enabled() bool {
	w.healthMu.RLock()
	defer w.healthMu.RUnlock()
	return w.enabled
}

// SetEnabled updates the enabled status; it takes effect on the next Start
func (w *BaseWorker) SetEnabled(enabled bool) {
	w.healthMu.Lock()
	defer w.healthMu.Unlock()
	w.enabled = enabled
	w.log.Infof("Worker enabled state changed to: %v", enabled)
}

// Log returns the logger
func (w *BaseWorker) Log() *logger.Logger {
	return w.log
}

// Health returns health information for the worker
func (w *BaseWorker) Health() WorkerHealth {
	w.healthMu.RLock()
	defer w.healthMu.RUnlock()

	avgDuration := time.Duration(0)
	if w.runCount > 0 {
		avgDuration = time.Duration(int64(w.totalDuration) / w.runCount)
	}

	return WorkerHealth{
		LastRun:           w.lastRun,
		LastError:         w.lastError,
		LastDuration:      w.lastDuration,
		RunCount:          w.runCount,
		ErrorCount:        w.errorCount,
		ConsecutiveErrors: w.consecutive,
		AvgDuration:       avgDuration,
		Enabled:           w.enabled,
	}
}

// RecordRun records a successful run
func (w *BaseWorker) RecordRun(duration time.Duration) {
	w.healthMu.Lock()
	defer w.healthMu.Unlock()

	w.lastRun = time.Now()
	w.lastDuration = duration
	w.runCount++
	w.totalDuration += duration
	w.lastError = nil
	w.consecutive = 0
}

// RecordError records a failed run
func (w *BaseWorker) RecordError(err error, duration time.Duration) {
	w.healthMu.Lock()
	defer w.healthMu.Unlock()

	w.lastRun = time.Now()
	w.lastDuration = duration
	w.runCount++
	w.errorCount++
	w.consecutive++
	w.totalDuration += duration
	w.lastError = err
}
