// Package timeouts holds the per-operation deadlines used around store I/O.
//
//   - Ping: health checks
//   - Short: single registry reads and writes, login
//   - Long: create and delete workflows (registry plus partition)
//   - Migration: rename workflows that copy a whole partition
//
// Values start at the defaults below and may be replaced at startup with
// Configure or ConfigureFromEnv.
package timeouts

import (
	"context"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultPing      = 2 * time.Second
	DefaultShort     = 5 * time.Second
	DefaultLong      = 30 * time.Second
	DefaultMigration = 5 * time.Minute
)

var (
	mu        sync.RWMutex
	ping      = DefaultPing
	short     = DefaultShort
	long      = DefaultLong
	migration = DefaultMigration
)

func get(d *time.Duration) time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return *d
}

// Ping is the deadline for connectivity checks.
func Ping() time.Duration { return get(&ping) }

// Short is the deadline for single-document operations.
func Short() time.Duration { return get(&short) }

// Long is the deadline for workflows touching the registry and a partition.
func Long() time.Duration { return get(&long) }

// Migration is the deadline for a rename, which copies every document of a
// partition.
func Migration() time.Duration { return get(&migration) }

// Config holds timeout values. Zero fields keep the current value.
type Config struct {
	Ping      time.Duration
	Short     time.Duration
	Long      time.Duration
	Migration time.Duration
}

func (c Config) fields() []struct {
	src time.Duration
	dst *time.Duration
} {
	return []struct {
		src time.Duration
		dst *time.Duration
	}{
		{c.Ping, &ping},
		{c.Short, &short},
		{c.Long, &long},
		{c.Migration, &migration},
	}
}

// Configure replaces the non-zero values of cfg. Call it during startup,
// before handlers are built.
func Configure(cfg Config) {
	mu.Lock()
	defer mu.Unlock()
	for _, f := range cfg.fields() {
		if f.src > 0 {
			*f.dst = f.src
		}
	}
}

// Reset restores the defaults. Used by tests.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	ping, short, long, migration = DefaultPing, DefaultShort, DefaultLong, DefaultMigration
}

// envKeys maps environment variables to Config fields.
var envKeys = []struct {
	name string
	set  func(*Config, time.Duration)
}{
	{"TIMEOUT_PING", func(c *Config, d time.Duration) { c.Ping = d }},
	{"TIMEOUT_SHORT", func(c *Config, d time.Duration) { c.Short = d }},
	{"TIMEOUT_LONG", func(c *Config, d time.Duration) { c.Long = d }},
	{"TIMEOUT_MIGRATION", func(c *Config, d time.Duration) { c.Migration = d }},
}

// ConfigureFromEnv reads TIMEOUT_PING, TIMEOUT_SHORT, TIMEOUT_LONG and
// TIMEOUT_MIGRATION (Go duration strings such as "5s" or "2m"). Unset,
// unparsable and non-positive values are ignored. It returns how many values
// were applied.
func ConfigureFromEnv() int {
	var cfg Config
	n := 0
	for _, k := range envKeys {
		v := os.Getenv(k.name)
		if v == "" {
			continue
		}
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			continue
		}
		k.set(&cfg, d)
		n++
	}
	Configure(cfg)
	return n
}

// Current returns the values in effect, for startup logging.
func Current() Config {
	mu.RLock()
	defer mu.RUnlock()
	return Config{Ping: ping, Short: short, Long: long, Migration: migration}
}

// WithTimeout derives a context with the given deadline. The returned cancel
// func logs a warning when the deadline was what ended the operation.
//
//	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Migration(), m.log, "rename organization")
//	defer cancel()
func WithTimeout(parent context.Context, timeout time.Duration, log *zap.Logger, operation string) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(parent, timeout)
	return ctx, func() {
		if ctx.Err() == context.DeadlineExceeded && log != nil {
			log.Warn("operation timed out",
				zap.String("operation", operation),
				zap.Duration("timeout", timeout),
			)
		}
		cancel()
	}
}
