// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	"github.com/dalemusser/orgmanager/internal/app/adminauth"
	adminfeature "github.com/dalemusser/orgmanager/internal/app/features/admin"
	activityfeature "github.com/dalemusser/orgmanager/internal/app/features/activity"
	healthfeature "github.com/dalemusser/orgmanager/internal/app/features/health"
	organizationsfeature "github.com/dalemusser/orgmanager/internal/app/features/organizations"
	loginstore "github.com/dalemusser/orgmanager/internal/app/store/logins"
	organizationstore "github.com/dalemusser/orgmanager/internal/app/store/organizations"
	"github.com/dalemusser/orgmanager/internal/app/system/ratelimit"
	"github.com/dalemusser/orgmanager/internal/app/system/tokens"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed.
//
// Routes:
//
//	GET    /                       liveness
//	GET    /health                 readiness (Mongo ping)
//	POST   /admin/login            email + password -> bearer token
//	GET    /admin/activity/logins  bearer token; caller's recent logins
//	POST   /org/create             public
//	GET    /org/get                public
//	PUT    /org/update             bearer token for the organization
//	DELETE /org/delete             bearer token for the organization
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	secret, err := signingSecret(coreCfg, appCfg, logger)
	if err != nil {
		return nil, err
	}
	tok, err := tokens.New(tokens.Config{
		Secret:    secret,
		Algorithm: appCfg.JWTAlgorithm,
		TTL:       appCfg.JWTExpire,
	})
	if err != nil {
		logger.Error("token service init failed", zap.Error(err))
		return nil, err
	}

	db := deps.MongoDatabase
	admins := adminauth.New(organizationstore.New(db), tok, logger)

	var history *loginstore.Store
	if appCfg.RecordLogins {
		history = loginstore.New(db)
	}

	limiter := ratelimit.NewLoginLimiter(ratelimit.LoginConfig{
		IPLimit:     appCfg.LoginIPLimit,
		IPWindow:    appCfg.LoginIPWindow,
		EmailLimit:  appCfg.LoginEmailLimit,
		EmailWindow: appCfg.LoginEmailWindow,
	})
	setLoginLimiter(limiter)

	r := chi.NewRouter()

	// Liveness and readiness
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Get("/", healthHandler.ServeRoot)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Admin authentication
	var recorder adminfeature.LoginRecorder
	if history != nil {
		recorder = history
	}
	adminHandler := adminfeature.NewHandler(admins, limiter, recorder, logger)
	r.Mount("/admin", adminfeature.Routes(adminHandler))

	// Admin activity
	if history != nil {
		activityHandler := activityfeature.NewHandler(history, logger)
		r.Mount("/admin/activity", activityfeature.Routes(activityHandler, admins, logger))
	}

	// Organization lifecycle
	orgHandler := organizationsfeature.NewHandler(newTenants(db, appCfg, logger), logger)
	if history != nil {
		orgHandler.History = history
	}
	r.Mount("/org", organizationsfeature.Routes(orgHandler, admins, logger))

	return r, nil
}
