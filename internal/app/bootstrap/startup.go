// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"fmt"

	"github.com/dalemusser/orgmanager/internal/app/system/authutil"
	"github.com/dalemusser/orgmanager/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built.
//
// It applies operation timeouts and the bcrypt cost, then reconciles tenant
// collections with the registry so a create interrupted between the registry
// insert and the collection create is finished before traffic arrives.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if n := timeouts.ConfigureFromEnv(); n > 0 {
		cur := timeouts.Current()
		logger.Info("operation timeouts overridden from environment",
			zap.Int("overrides", n),
			zap.Duration("ping", cur.Ping),
			zap.Duration("short", cur.Short),
			zap.Duration("long", cur.Long),
			zap.Duration("migration", cur.Migration))
	}

	if err := authutil.SetCost(appCfg.BcryptCost); err != nil {
		return fmt.Errorf("bcrypt_cost: %w", err)
	}

	mgr := newTenants(deps.MongoDatabase, appCfg, logger)
	rep, err := mgr.Reconcile(ctx)
	if err != nil {
		logger.Error("tenant reconcile failed", zap.Error(err))
		return fmt.Errorf("reconcile tenant collections: %w", err)
	}
	logger.Info("tenant collections reconciled",
		zap.Int("created", len(rep.Created)),
		zap.Int("orphans", len(rep.Orphans)))

	startReconcileWorker(mgr, appCfg.ReconcileInterval, logger)
	return nil
}
