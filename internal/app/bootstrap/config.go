// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"time"

	"github.com/dalemusser/orgmanager/internal/app/system/tokens"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/gorilla/securecookie"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// appConfigKeys defines the configuration keys for the organization manager.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, jwt_secret, etc.
//   - Environment variables: ORGMANAGER_MONGO_URI, ORGMANAGER_JWT_SECRET, etc.
//   - Command-line flags: --mongo_uri, --jwt_secret, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "organizationMaster", Desc: "MongoDB master database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},
	{Name: "mongo_server_selection_timeout", Default: "5s", Desc: "MongoDB server selection timeout (e.g., 5s)"},

	// Tokens
	{Name: "jwt_secret", Default: "", Desc: "Token signing secret (required in production)"},
	{Name: "jwt_algorithm", Default: "HS256", Desc: "Token signing algorithm: HS256, HS384 or HS512"},
	{Name: "jwt_expire_hours", Default: 24, Desc: "Token lifetime in hours"},

	// Passwords
	{Name: "bcrypt_cost", Default: 12, Desc: "bcrypt work factor for admin passwords"},

	// Login throttling
	{Name: "login_ip_limit", Default: 10, Desc: "Login attempts allowed per client IP per window"},
	{Name: "login_ip_window", Default: "1m", Desc: "Per-IP login window (e.g., 1m)"},
	{Name: "login_email_limit", Default: 5, Desc: "Login attempts allowed per email per window"},
	{Name: "login_email_window", Default: "5m", Desc: "Per-email login window (e.g., 5m)"},

	// Rename migration
	{Name: "migration_batch_size", Default: 1000, Desc: "Documents copied per batch when renaming an organization"},
	{Name: "reconcile_interval", Default: "15m", Desc: "How often to reconcile tenant collections after startup (0 disables)"},

	// Login history
	{Name: "record_logins", Default: true, Desc: "Record successful admin logins"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles:
//   - Loading from .env files
//   - Loading from config.yaml/json/toml files
//   - Reading environment variables (WAFFLE_* for core, ORGMANAGER_* for app)
//   - Parsing command-line flags
//   - Merging with precedence: flags > env > files > defaults
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "ORGMANAGER", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:                    appValues.String("mongo_uri"),
		MongoDatabase:               appValues.String("mongo_database"),
		MongoMaxPoolSize:            uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize:            uint64(appValues.Int("mongo_min_pool_size")),
		MongoServerSelectionTimeout: appValues.Duration("mongo_server_selection_timeout", 5*time.Second),

		JWTSecret:    appValues.String("jwt_secret"),
		JWTAlgorithm: appValues.String("jwt_algorithm"),
		JWTExpire:    time.Duration(appValues.Int("jwt_expire_hours")) * time.Hour,

		BcryptCost: appValues.Int("bcrypt_cost"),

		LoginIPLimit:     appValues.Int("login_ip_limit"),
		LoginIPWindow:    appValues.Duration("login_ip_window", time.Minute),
		LoginEmailLimit:  appValues.Int("login_email_limit"),
		LoginEmailWindow: appValues.Duration("login_email_window", 5*time.Minute),

		MigrationBatchSize: appValues.Int("migration_batch_size"),
		ReconcileInterval:  appValues.Duration("reconcile_interval", 15*time.Minute),
		RecordLogins:       appValues.Bool("record_logins"),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// The MongoDB URI is checked before connecting. Outside production a missing
// jwt_secret is replaced by a random one, which invalidates tokens on every
// restart; in production it aborts startup.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}
	if appCfg.MongoDatabase == "" {
		return fmt.Errorf("mongo_database must not be empty")
	}
	if _, err := tokens.SigningMethod(appCfg.JWTAlgorithm); err != nil {
		return fmt.Errorf("jwt_algorithm: %w", err)
	}
	if appCfg.JWTExpire <= 0 {
		return fmt.Errorf("jwt_expire_hours must be positive")
	}
	if appCfg.BcryptCost < bcrypt.MinCost || appCfg.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("bcrypt_cost must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}
	if appCfg.JWTSecret == "" && coreCfg.Env == "prod" {
		return fmt.Errorf("jwt_secret is required in production")
	}
	return nil
}

// signingSecret returns the configured secret, or a random one outside
// production.
func signingSecret(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) ([]byte, error) {
	if appCfg.JWTSecret != "" {
		return []byte(appCfg.JWTSecret), nil
	}
	if coreCfg.Env == "prod" {
		return nil, fmt.Errorf("jwt_secret is required in production")
	}
	key := securecookie.GenerateRandomKey(32)
	if key == nil {
		return nil, fmt.Errorf("generate signing secret")
	}
	logger.Warn("jwt_secret not set; using a random secret, tokens will not survive a restart",
		zap.String("env", coreCfg.Env))
	return key, nil
}
