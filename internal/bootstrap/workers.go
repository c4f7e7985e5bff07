package bootstrap

import (
	"humesync/internal/adapters/config"
	"humesync/internal/workers"
	"humesync/internal/workers/reconcile"
)

// provideWorkers registers all background workers with a new scheduler
func provideWorkers(cfg config.WorkerConfig, reconciler reconcile.Reconciler) *workers.Scheduler {
	scheduler := workers.NewScheduler()

	scheduler.RegisterWorker(reconcile.NewWorker(reconciler, cfg.ReconcileInterval, cfg.ReconcileEnabled))

	return scheduler
}
