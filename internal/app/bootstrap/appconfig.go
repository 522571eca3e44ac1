// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). They represent *app-level*
// configuration, not WAFFLE core configuration.
//
// WAFFLE's CoreConfig handles framework-level settings like:
//   - HTTP/HTTPS ports and TLS configuration
//   - Logging level and format
//   - CORS settings
//   - Request body size limits
//
// AppConfig carries the master database location, token signing settings,
// password hashing cost and login throttling limits.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI                    string        // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase               string        // Master database holding the registry and every tenant collection
	MongoMaxPoolSize            uint64        // Maximum connections in pool (default: 100)
	MongoMinPoolSize            uint64        // Minimum connections to keep warm (default: 10)
	MongoServerSelectionTimeout time.Duration // How long to wait for a usable server

	// Token configuration
	JWTSecret    string        // HMAC signing secret (required in production)
	JWTAlgorithm string        // HS256, HS384 or HS512
	JWTExpire    time.Duration // Token lifetime

	// Password hashing
	BcryptCost int

	// Login throttling
	LoginIPLimit     int
	LoginIPWindow    time.Duration
	LoginEmailLimit  int
	LoginEmailWindow time.Duration

	// Tenant collection copy batch size used when renaming
	MigrationBatchSize int

	// How often tenant collections are reconciled after startup (0 disables)
	ReconcileInterval time.Duration

	// Record successful admin logins in admin_logins
	RecordLogins bool
}
