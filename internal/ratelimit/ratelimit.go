package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	gerr "github.com/jekabolt/creator-analytics/internal/errors"
)

// Config holds the fixed window applied to manual backfill triggers.
type Config struct {
	Window time.Duration `mapstructure:"backfill_limit_window"`
	Max    int           `mapstructure:"backfill_limit_max"`
}

// DefaultConfig returns default configuration values.
func DefaultConfig() Config {
	return Config{
		Window: 10 * time.Minute,
		Max:    3,
	}
}

// Limiter implements a simple in-memory fixed window rate limiter per key
type Limiter struct {
	mu       sync.Mutex
	counters map[string]*counter
	window   time.Duration
	max      int
	now      func() time.Time
}

type counter struct {
	count     int
	expiresAt time.Time
}

// NewLimiter creates a new rate limiter with the specified window and max requests
func NewLimiter(c Config) *Limiter {
	dc := DefaultConfig()
	if c.Window <= 0 {
		c.Window = dc.Window
	}
	if c.Max <= 0 {
		c.Max = dc.Max
	}
	return &Limiter{
		counters: make(map[string]*counter),
		window:   c.Window,
		max:      c.Max,
		now:      time.Now,
	}
}

// Allow checks if a request for the given key is allowed
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	c, exists := l.counters[key]
	if !exists || !now.Before(c.expiresAt) {
		l.counters[key] = &counter{
			count:     1,
			expiresAt: now.Add(l.window),
		}
		return true
	}
	if c.count >= l.max {
		return false
	}
	c.count++
	return true
}

// Check is Allow returning a ResourceExhausted status for rejected keys.
func (l *Limiter) Check(key string) error {
	if !l.Allow(key) {
		return fmt.Errorf("%s: %w", key, gerr.TooManyBackfills)
	}
	return nil
}

// Remaining returns the number of remaining requests for the given key
func (l *Limiter) Remaining(key string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	c, exists := l.counters[key]
	if !exists || !l.now().Before(c.expiresAt) {
		return l.max
	}
	if remaining := l.max - c.count; remaining > 0 {
		return remaining
	}
	return 0
}

// Run removes expired counters every interval until ctx is done.
func (l *Limiter) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			l.sweep()
		case <-ctx.Done():
			return
		}
	}
}

func (l *Limiter) sweep() {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	for key, c := range l.counters {
		if !now.Before(c.expiresAt) {
			delete(l.counters, key)
		}
	}
}
