// Package reconcile periodically checks that every local agent still has its
// remote config, clearing links the provider no longer knows about.
package reconcile

import (
	"context"
	"time"

	agentsvc "humesync/internal/services/agent"
	"humesync/internal/workers"
)

// Reconciler is the part of the sync service the worker drives
type Reconciler interface {
	Reconcile(ctx context.Context) (*agentsvc.ReconcileReport, error)
}

// Worker runs a reconciliation pass on every tick
type Worker struct {
	*workers.BaseWorker
	reconciler Reconciler
	timeout    time.Duration
}

// NewWorker creates the reconcile worker. Each pass is bounded by half the interval.
func NewWorker(reconciler Reconciler, interval time.Duration, enabled bool) *Worker {
	return &Worker{
		BaseWorker: workers.NewBaseWorker("agent_reconcile", interval, enabled),
		reconciler: reconciler,
		timeout:    interval / 2,
	}
}

// Run executes one reconciliation pass
func (w *Worker) Run(ctx context.Context) error {
	if w.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.timeout)
		defer cancel()
	}

	report, err := w.reconciler.Reconcile(ctx)
	if err != nil {
		return err
	}

	if len(report.Missing) > 0 || len(report.Orphaned) > 0 {
		w.Log().Warnw("Drift between local agents and remote configs",
			"checked", report.Checked,
			"missing", report.Missing,
			"orphaned", report.Orphaned,
		)
	}
	return nil
}
