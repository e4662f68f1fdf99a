// File: internal/ratelimit/ratelimit.go
package ratelimit

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Config holds the limiter's window and ban parameters.
type Config struct {
	WindowSize    time.Duration
	MaxAttempts   int
	CleanupPeriod time.Duration
	BanDuration   time.Duration
}

// DefaultAuthConfig returns sensible defaults for the login and registration
// endpoints.
func DefaultAuthConfig() *Config {
	return &Config{
		WindowSize:    15 * time.Minute,
		MaxAttempts:   5,
		CleanupPeriod: 30 * time.Minute,
		BanDuration:   30 * time.Minute,
	}
}

// Decision describes the outcome of an Allow call.
type Decision struct {
	Allowed    bool
	Remaining  int
	ResetTime  time.Time
	RetryAfter time.Duration
	Banned     bool
}

type attemptRecord struct {
	count     int
	firstSeen time.Time
	bannedAt  *time.Time
}

// MemoryLimiter is an in-memory sliding-window limiter keyed by client
// identifier (normally the IP). Safe for concurrent use.
type MemoryLimiter struct {
	config   *Config
	mu       sync.Mutex
	attempts map[string]*attemptRecord
	stopCh   chan struct{}
}

func NewMemoryLimiter(config *Config) *MemoryLimiter {
	l := &MemoryLimiter{
		config:   config,
		attempts: make(map[string]*attemptRecord),
		stopCh:   make(chan struct{}),
	}
	go l.cleanupLoop()
	return l
}

// Allow records an attempt for the identifier and reports whether it may
// proceed. Exceeding the window's budget bans the identifier.
func (l *MemoryLimiter) Allow(identifier string) Decision {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	record, exists := l.attempts[identifier]

	if !exists {
		l.attempts[identifier] = &attemptRecord{count: 1, firstSeen: now}
		return Decision{
			Allowed:   true,
			Remaining: l.config.MaxAttempts - 1,
			ResetTime: now.Add(l.config.WindowSize),
		}
	}

	if record.bannedAt != nil {
		if banned := now.Sub(*record.bannedAt); banned < l.config.BanDuration {
			return Decision{
				ResetTime:  record.bannedAt.Add(l.config.BanDuration),
				RetryAfter: l.config.BanDuration - banned,
				Banned:     true,
			}
		}
	}

	if now.Sub(record.firstSeen) > l.config.WindowSize {
		record.count = 1
		record.firstSeen = now
		record.bannedAt = nil
		return Decision{
			Allowed:   true,
			Remaining: l.config.MaxAttempts - 1,
			ResetTime: now.Add(l.config.WindowSize),
		}
	}

	record.count++
	if record.count > l.config.MaxAttempts {
		banTime := now
		record.bannedAt = &banTime
		return Decision{
			ResetTime:  now.Add(l.config.BanDuration),
			RetryAfter: l.config.BanDuration,
			Banned:     true,
		}
	}

	return Decision{
		Allowed:   true,
		Remaining: l.config.MaxAttempts - record.count,
		ResetTime: record.firstSeen.Add(l.config.WindowSize),
	}
}

// RecordSuccess clears the identifier's attempts after a successful login so
// legitimate users do not inherit their earlier typos.
func (l *MemoryLimiter) RecordSuccess(identifier string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.attempts, identifier)
}

// Close stops the cleanup goroutine.
func (l *MemoryLimiter) Close() {
	close(l.stopCh)
}

func (l *MemoryLimiter) cleanupLoop() {
	ticker := time.NewTicker(l.config.CleanupPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.cleanup()
		case <-l.stopCh:
			return
		}
	}
}

func (l *MemoryLimiter) cleanup() {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	for identifier, record := range l.attempts {
		windowExpired := now.Sub(record.firstSeen) > l.config.WindowSize
		banExpired := record.bannedAt != nil && now.Sub(*record.bannedAt) > l.config.BanDuration

		if (windowExpired && record.bannedAt == nil) || banExpired {
			delete(l.attempts, identifier)
		}
	}
}

// ClientIP extracts the real client IP, honoring proxy headers.
func ClientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		if ip := strings.TrimSpace(strings.Split(forwarded, ",")[0]); ip != "" {
			return ip
		}
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
