// internal/app/bootstrap/services.go
package bootstrap

import (
	"sync"
	"time"

	loginstore "github.com/dalemusser/orgmanager/internal/app/store/logins"
	organizationstore "github.com/dalemusser/orgmanager/internal/app/store/organizations"
	partitionstore "github.com/dalemusser/orgmanager/internal/app/store/partitions"
	"github.com/dalemusser/orgmanager/internal/app/system/ratelimit"
	"github.com/dalemusser/orgmanager/internal/app/system/timeouts"
	"github.com/dalemusser/orgmanager/internal/app/system/workers"
	"github.com/dalemusser/orgmanager/internal/app/tenants"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// newPartitions returns the tenant collection store. Collections the app
// keeps for itself in the master database are reserved.
func newPartitions(db *mongo.Database, appCfg AppConfig, logger *zap.Logger) *partitionstore.Store {
	parts := partitionstore.New(db, logger,
		organizationstore.CollectionName,
		loginstore.CollectionName,
	)
	if appCfg.MigrationBatchSize > 0 {
		parts.SetBatchSize(appCfg.MigrationBatchSize)
	}
	return parts
}

// newTenants wires the lifecycle manager over the Mongo stores.
func newTenants(db *mongo.Database, appCfg AppConfig, logger *zap.Logger) *tenants.Manager {
	return tenants.New(organizationstore.New(db), newPartitions(db, appCfg, logger), logger)
}

// Background components started by Startup and BuildHandler and stopped by
// Shutdown.
var (
	bgMu            sync.Mutex
	loginLimiter    *ratelimit.LoginLimiter
	reconcileWorker *workers.PartitionReconcile
)

func setLoginLimiter(l *ratelimit.LoginLimiter) {
	bgMu.Lock()
	defer bgMu.Unlock()
	if loginLimiter != nil {
		loginLimiter.Stop()
	}
	loginLimiter = l
}

func stopLoginLimiter() {
	setLoginLimiter(nil)
}

// startReconcileWorker runs the periodic reconcile pass. A non-positive
// interval disables it.
func startReconcileWorker(m *tenants.Manager, interval time.Duration, logger *zap.Logger) {
	bgMu.Lock()
	defer bgMu.Unlock()
	if reconcileWorker != nil {
		reconcileWorker.Stop()
		reconcileWorker = nil
	}
	if interval <= 0 {
		return
	}
	reconcileWorker = workers.NewPartitionReconcile(m, logger, interval, timeouts.Long())
	reconcileWorker.Start()
}

func stopReconcileWorker() {
	bgMu.Lock()
	defer bgMu.Unlock()
	if reconcileWorker != nil {
		reconcileWorker.Stop()
		reconcileWorker = nil
	}
}
