package bootstrap

import (
	"context"
	"sync"
	"time"

	"humesync/internal/adapters/kafka"
	pgclient "humesync/internal/adapters/postgres"
	redisclient "humesync/internal/adapters/redis"
	"humesync/internal/api"
	"humesync/internal/workers"
	"humesync/pkg/errors"
	"humesync/pkg/logger"
)

// Lifecycle manages graceful shutdown of components
type Lifecycle struct {
	shutdownTimeout time.Duration
}

// NewLifecycle creates a new lifecycle manager
func NewLifecycle() *Lifecycle {
	return &Lifecycle{
		shutdownTimeout: 60 * time.Second,
	}
}

// Shutdown releases components in order:
// HTTP server, workers, goroutines, Kafka producer, error tracker, logs, then
// databases, which other components may still need while stopping.
func (l *Lifecycle) Shutdown(
	wg *sync.WaitGroup,
	httpServer *api.Server,
	workerScheduler *workers.Scheduler,
	kafkaProducer *kafka.Producer,
	pgClient *pgclient.Client,
	redisClient *redisclient.Client,
	errorTracker errors.Tracker,
	log *logger.Logger,
) {
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), l.shutdownTimeout)
	defer shutdownCancel()

	log.Info("[1/7] Stopping HTTP server...")
	if httpServer != nil {
		httpCtx, httpCancel := context.WithTimeout(shutdownCtx, 5*time.Second)
		if err := httpServer.Shutdown(httpCtx); err != nil {
			log.Errorw("HTTP server shutdown failed", "error", err)
		} else {
			log.Info("✓ HTTP server stopped")
		}
		httpCancel()
	}

	log.Info("[2/7] Stopping background workers...")
	if workerScheduler != nil {
		if err := workerScheduler.Stop(); err != nil {
			log.Errorw("Workers shutdown failed", "error", err)
		} else {
			log.Info("✓ Workers stopped")
		}
	}

	log.Info("[3/7] Waiting for goroutines...")
	l.waitForGoroutines(wg, 5*time.Second, log)

	log.Info("[4/7] Closing Kafka producer...")
	if kafkaProducer != nil {
		if err := kafkaProducer.Close(); err != nil {
			log.Errorw("Kafka producer close failed", "error", err)
		} else {
			log.Info("✓ Kafka producer closed")
		}
	}

	log.Info("[5/7] Flushing error tracker...")
	l.flushErrorTracker(shutdownCtx, errorTracker, log)

	log.Info("[6/7] Syncing logs...")
	_ = logger.Sync()

	log.Info("[7/7] Closing database connections...")
	l.closeDatabases(pgClient, redisClient, log)

	log.Info("✅ Graceful shutdown complete")
}

// waitForGoroutines waits for all goroutines with a timeout
func (l *Lifecycle) waitForGoroutines(wg *sync.WaitGroup, timeout time.Duration, log *logger.Logger) {
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Info("✓ All goroutines finished")
	case <-time.After(timeout):
		log.Warnw("⚠ Some goroutines did not finish within timeout", "timeout", timeout)
	}
}

func (l *Lifecycle) flushErrorTracker(ctx context.Context, tracker errors.Tracker, log *logger.Logger) {
	if tracker == nil {
		return
	}

	flushCtx, flushCancel := context.WithTimeout(ctx, 3*time.Second)
	defer flushCancel()

	if err := tracker.Flush(flushCtx); err != nil {
		log.Warnw("Error tracker flush failed", "error", err)
	} else {
		log.Info("✓ Error tracker flushed")
	}
}

func (l *Lifecycle) closeDatabases(pgClient *pgclient.Client, redisClient *redisclient.Client, log *logger.Logger) {
	var dbErrors []error

	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			dbErrors = append(dbErrors, errors.Wrap(err, "redis"))
		}
	}
	if pgClient != nil {
		if err := pgClient.Close(); err != nil {
			dbErrors = append(dbErrors, errors.Wrap(err, "postgres"))
		}
	}

	if len(dbErrors) > 0 {
		log.Warnw("Database close errors", "error", errors.Join(dbErrors...))
	} else {
		log.Info("✓ Database connections closed")
	}
}
