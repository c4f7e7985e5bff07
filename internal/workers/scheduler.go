package workers

import (
	"context"
	"sync"
	"time"

	"humesync/internal/metrics"
	"humesync/pkg/errors"
	"humesync/pkg/logger"
)

// DefaultShutdownTimeout bounds how long Stop waits for running iterations
const DefaultShutdownTimeout = 30 * time.Second

// Scheduler manages and coordinates multiple workers
type Scheduler struct {
	workers         []Worker
	ctx             context.Context
	cancel          context.CancelFunc
	wg              sync.WaitGroup
	mu              sync.RWMutex
	log             *logger.Logger
	started         bool
	shutdownTimeout time.Duration
}

// NewScheduler creates a new worker scheduler
func NewScheduler() *Scheduler {
	return &Scheduler{
		workers:         make([]Worker, 0),
		log:             logger.Get().With("component", "scheduler"),
		shutdownTimeout: DefaultShutdownTimeout,
	}
}

// SetShutdownTimeout changes how long Stop waits
func (s *Scheduler) SetShutdownTimeout(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shutdownTimeout = d
}

// RegisterWorker adds a worker to the scheduler
func (s *Scheduler) RegisterWorker(w Worker) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		s.log.Warnw("Cannot register worker after scheduler has started", "worker", w.Name())
		return
	}

	s.workers = append(s.workers, w)
	s.log.Infow("Worker registered", "worker", w.Name(), "interval", w.Interval())
}

// Start begins running all registered workers
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return errors.Wrapf(errors.ErrInternal, "scheduler already started")
	}

	s.started = true
	s.ctx, s.cancel = context.WithCancel(ctx)
	workers := make([]Worker, len(s.workers))
	copy(workers, s.workers)
	s.mu.Unlock()

	s.log.Infow("Starting worker scheduler", "workers", len(workers))

	for _, worker := range workers {
		if !worker.Enabled() {
			s.log.Infow("Skipping disabled worker", "worker", worker.Name())
			continue
		}

		s.wg.Add(1)
		go s.runWorker(worker)
	}

	return nil
}

// Stop cancels all workers and waits for in-flight iterations
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return errors.Wrapf(errors.ErrInternal, "scheduler not started")
	}
	s.cancel()
	timeout := s.shutdownTimeout
	s.mu.Unlock()

	s.log.Info("Stopping worker scheduler...")

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	var shutdownErr error
	select {
	case <-done:
		s.log.Info("All workers stopped gracefully")
	case <-time.After(timeout):
		s.log.Warnw("Worker shutdown timed out", "timeout", timeout)
		shutdownErr = errors.Wrapf(errors.ErrTimeout, "shutdown after %s", timeout)
	}

	s.mu.Lock()
	s.started = false
	s.mu.Unlock()

	return shutdownErr
}

func (s *Scheduler) runWorker(worker Worker) {
	defer s.wg.Done()

	s.log.Infow("Worker started", "worker", worker.Name())

	ticker := time.NewTicker(worker.Interval())
	defer ticker.Stop()

	// Run immediately on start
	s.executeWorker(worker)

	for {
		select {
		case <-s.ctx.Done():
			s.log.Infow("Worker stopping due to context cancellation", "worker", worker.Name())
			return

		case <-ticker.C:
			s.executeWorker(worker)
		}
	}
}

// executeWorker runs one iteration, converting panics into errors
func (s *Scheduler) executeWorker(worker Worker) {
	start := time.Now()

	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = errors.Wrapf(errors.ErrInternal, "worker panicked: %v", r)
			}
		}()
		return worker.Run(s.ctx)
	}()

	duration := time.Since(start)
	metrics.RecordWorkerExecution(worker.Name(), duration, err)

	rec, hasHealth := worker.(runRecorder)
	if err != nil {
		s.log.Errorw("Worker execution failed",
			"worker", worker.Name(),
			"error", err,
			"duration", duration,
		)
		if hasHealth {
			rec.RecordError(err, duration)
		}
		return
	}

	s.log.Debugw("Worker execution completed",
		"worker", worker.Name(),
		"duration", duration,
	)
	if hasHealth {
		rec.RecordRun(duration)
	}
}

// GetWorkers returns a list of all registered workers
func (s *Scheduler) GetWorkers() []Worker {
	s.mu.RLock()
	defer s.mu.RUnlock()

	workers := make([]Worker, len(s.workers))
	copy(workers, s.workers)
	return workers
}

// Health reports health for every worker that tracks it, keyed by name
func (s *Scheduler) Health() map[string]WorkerHealth {
	out := make(map[string]WorkerHealth)
	for _, w := range s.GetWorkers() {
		if rec, ok := w.(runRecorder); ok {
			out[w.Name()] = rec.Health()
		}
	}
	return out
}

// IsRunning returns whether the scheduler is currently running
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.started
}

