package auth

import (
	"strings"
	"sync"
	"time"
)

// RateLimiter throttles login attempts per client IP and email.
// After MaxAttempts failures inside Window the pair is locked out for LockoutDuration.
type RateLimiter struct {
	mu       sync.Mutex
	cfg      RateLimitConfig
	failures map[string]*loginFailures
	now      func() time.Time
	done     chan struct{}
	stopOnce sync.Once
}

type loginFailures struct {
	count       int
	windowStart time.Time
	lockedUntil time.Time
}

// RateLimitConfig contains configuration for the rate limiter.
type RateLimitConfig struct {
	MaxAttempts     int
	Window          time.Duration
	LockoutDuration time.Duration
	CleanupInterval time.Duration
}

// DefaultRateLimitConfig allows 5 failures per 15 minutes, then locks for 30.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		MaxAttempts:     5,
		Window:          15 * time.Minute,
		LockoutDuration: 30 * time.Minute,
		CleanupInterval: 5 * time.Minute,
	}
}

// NewRateLimiter creates a limiter and starts its background sweep.
// Zero fields fall back to DefaultRateLimitConfig.
func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	def := DefaultRateLimitConfig()
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = def.MaxAttempts
	}
	if cfg.Window <= 0 {
		cfg.Window = def.Window
	}
	if cfg.LockoutDuration <= 0 {
		cfg.LockoutDuration = def.LockoutDuration
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = def.CleanupInterval
	}

	rl := &RateLimiter{
		cfg:      cfg,
		failures: make(map[string]*loginFailures),
		now:      time.Now,
		done:     make(chan struct{}),
	}
	go rl.sweepLoop()
	return rl
}

// Stop ends the background sweep. It is safe to call more than once.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.done) })
}

func limiterKey(ip, email string) string {
	return ip + "|" + strings.ToLower(strings.TrimSpace(email))
}

// Allow reports whether a login attempt may proceed and, if not, how long to wait.
func (rl *RateLimiter) Allow(ip, email string) (bool, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	f, ok := rl.failures[limiterKey(ip, email)]
	if !ok {
		return true, 0
	}

	now := rl.now()
	if now.Before(f.lockedUntil) {
		return false, f.lockedUntil.Sub(now)
	}
	return true, 0
}

// RecordFailure counts a failed attempt and reports whether it triggered a lockout.
func (rl *RateLimiter) RecordFailure(ip, email string) (bool, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	key := limiterKey(ip, email)
	f, ok := rl.failures[key]
	if ok && now.Before(f.lockedUntil) {
		return true, f.lockedUntil.Sub(now)
	}
	if !ok || now.Sub(f.windowStart) > rl.cfg.Window {
		f = &loginFailures{windowStart: now}
		rl.failures[key] = f
	}

	f.count++
	if f.count >= rl.cfg.MaxAttempts {
		// A served lockout starts a fresh window, even when the old one has not expired.
		f.count = 0
		f.windowStart = now
		f.lockedUntil = now.Add(rl.cfg.LockoutDuration)
		return true, rl.cfg.LockoutDuration
	}
	return false, 0
}

// RecordSuccess forgets earlier failures for the pair.
func (rl *RateLimiter) RecordSuccess(ip, email string) {
	rl.mu.Lock()
	delete(rl.failures, limiterKey(ip, email))
	rl.mu.Unlock()
}

func (rl *RateLimiter) sweepLoop() {
	ticker := time.NewTicker(rl.cfg.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.sweep()
		case <-rl.done:
			return
		}
	}
}

// sweep drops records whose window and lockout have both passed.
func (rl *RateLimiter) sweep() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	for key, f := range rl.failures {
		if now.Sub(f.windowStart) > rl.cfg.Window && !now.Before(f.lockedUntil) {
			delete(rl.failures, key)
		}
	}
}
