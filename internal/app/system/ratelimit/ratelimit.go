// internal/app/system/ratelimit/ratelimit.go
package ratelimit

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Limiter counts hits per key in fixed windows. It is safe for concurrent
// use. Call Stop to end its cleanup goroutine.
type Limiter struct {
	mu       sync.Mutex
	windows  map[string]*window
	limit    int
	duration time.Duration
	now      func() time.Time
	stop     chan struct{}
	stopOnce sync.Once
}

type window struct {
	count     int
	expiresAt time.Time
}

// New returns a limiter allowing limit hits per key every duration.
func New(limit int, duration time.Duration) *Limiter {
	l := &Limiter{
		windows:  make(map[string]*window),
		limit:    limit,
		duration: duration,
		now:      time.Now,
		stop:     make(chan struct{}),
	}
	go l.cleanupLoop(duration * 2)
	return l
}

// Allow records a hit for key and reports whether it is within the limit.
// When it is not, the second result is how long until the window resets.
func (l *Limiter) Allow(key string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, ok := l.windows[key]
	if !ok || !now.Before(w.expiresAt) {
		l.windows[key] = &window{count: 1, expiresAt: now.Add(l.duration)}
		return true, 0
	}
	if w.count >= l.limit {
		return false, w.expiresAt.Sub(now)
	}
	w.count++
	return true, 0
}

// Remaining returns how many hits key has left in its current window.
func (l *Limiter) Remaining(key string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.windows[key]
	if !ok || !l.now().Before(w.expiresAt) {
		return l.limit
	}
	return max(l.limit-w.count, 0)
}

// Reset forgets key.
func (l *Limiter) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.windows, key)
}

// Stop ends the cleanup goroutine. The limiter keeps working afterwards but
// expired keys are only replaced, not removed.
func (l *Limiter) Stop() {
	l.stopOnce.Do(func() { close(l.stop) })
}

func (l *Limiter) cleanupLoop(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-l.stop:
			return
		case <-ticker.C:
			l.sweep()
		}
	}
}

func (l *Limiter) sweep() {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	for key, w := range l.windows {
		if !now.Before(w.expiresAt) {
			delete(l.windows, key)
		}
	}
}

// ClientIP returns the caller's address: the first X-Forwarded-For entry,
// then X-Real-IP, then RemoteAddr without its port.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// LoginConfig sets the admin login limits. Zero values take the defaults
// from DefaultLoginConfig.
type LoginConfig struct {
	IPLimit     int
	IPWindow    time.Duration
	EmailLimit  int
	EmailWindow time.Duration
}

// DefaultLoginConfig allows 10 attempts per IP per minute and 5 per email
// per 5 minutes.
func DefaultLoginConfig() LoginConfig {
	return LoginConfig{IPLimit: 10, IPWindow: time.Minute, EmailLimit: 5, EmailWindow: 5 * time.Minute}
}

// Decision is the outcome of LoginLimiter.Check.
type Decision struct {
	Allowed    bool
	Reason     string
	RetryAfter time.Duration
}

// LoginLimiter throttles admin logins per client IP (spraying many
// accounts) and per email (guessing one account's password).
type LoginLimiter struct {
	ip    *Limiter
	email *Limiter
}

func NewLoginLimiter(cfg LoginConfig) *LoginLimiter {
	def := DefaultLoginConfig()
	if cfg.IPLimit <= 0 {
		cfg.IPLimit = def.IPLimit
	}
	if cfg.IPWindow <= 0 {
		cfg.IPWindow = def.IPWindow
	}
	if cfg.EmailLimit <= 0 {
		cfg.EmailLimit = def.EmailLimit
	}
	if cfg.EmailWindow <= 0 {
		cfg.EmailWindow = def.EmailWindow
	}
	return &LoginLimiter{
		ip:    New(cfg.IPLimit, cfg.IPWindow),
		email: New(cfg.EmailLimit, cfg.EmailWindow),
	}
}

// Check records one login attempt by r for email.
func (ll *LoginLimiter) Check(r *http.Request, email string) Decision {
	if ok, wait := ll.ip.Allow(ClientIP(r)); !ok {
		return Decision{Reason: "too many login attempts, try again later", RetryAfter: wait}
	}
	if key := emailKey(email); key != "" {
		if ok, wait := ll.email.Allow(key); !ok {
			return Decision{Reason: "too many login attempts for this account, try again later", RetryAfter: wait}
		}
	}
	return Decision{Allowed: true}
}

// ResetEmail clears the email window after a successful login.
func (ll *LoginLimiter) ResetEmail(email string) {
	if key := emailKey(email); key != "" {
		ll.email.Reset(key)
	}
}

// Stop ends both limiters' cleanup goroutines.
func (ll *LoginLimiter) Stop() {
	ll.ip.Stop()
	ll.email.Stop()
}

func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
