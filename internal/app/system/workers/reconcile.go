// internal/app/system/workers/reconcile.go
package workers

import (
	"context"
	"sync"
	"time"

	"github.com/dalemusser/orgmanager/internal/app/tenants"
	"go.uber.org/zap"
)

// Reconciler is satisfied by *tenants.Manager.
type Reconciler interface {
	Reconcile(ctx context.Context) (tenants.ReconcileReport, error)
}

// PartitionReconcile is a background worker that periodically recreates
// missing tenant collections and reports unreferenced ones.
type PartitionReconcile struct {
	target   Reconciler
	log      *zap.Logger
	interval time.Duration
	timeout  time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewPartitionReconcile creates a reconcile worker.
//
// Parameters:
//   - target: usually the tenant lifecycle manager
//   - logger: zap logger for logging
//   - interval: how often to run (e.g., 15 minutes)
//   - timeout: deadline for a single pass
func NewPartitionReconcile(target Reconciler, logger *zap.Logger, interval, timeout time.Duration) *PartitionReconcile {
	return &PartitionReconcile{
		target:   target,
		log:      logger,
		interval: interval,
		timeout:  timeout,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the background loop.
func (w *PartitionReconcile) Start() {
	w.wg.Add(1)
	go w.run()
	w.log.Info("partition reconcile worker started",
		zap.Duration("interval", w.interval))
}

// Stop signals the worker to stop and waits for it to finish. It is safe to
// call more than once.
func (w *PartitionReconcile) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		w.wg.Wait()
		w.log.Info("partition reconcile worker stopped")
	})
}

func (w *PartitionReconcile) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.RunOnce(context.Background())
		}
	}
}

// RunOnce performs a single reconcile pass and returns its report.
func (w *PartitionReconcile) RunOnce(parent context.Context) tenants.ReconcileReport {
	ctx, cancel := context.WithTimeout(parent, w.timeout)
	defer cancel()

	rep, err := w.target.Reconcile(ctx)
	if err != nil {
		w.log.Error("partition reconcile failed", zap.Error(err))
		return rep
	}
	if len(rep.Created) > 0 || len(rep.Orphans) > 0 || len(rep.Unsettled) > 0 {
		w.log.Info("partition reconcile pass",
			zap.Strings("created", rep.Created),
			zap.Strings("orphans", rep.Orphans),
			zap.Strings("unsettled", rep.Unsettled))
	}
	return rep
}
