package cache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jekabolt/creator-analytics/internal/dependency"
)

// Config selects and configures the response cache backend. An empty Addr
// keeps entries in process memory.
type Config struct {
	Addr      string        `mapstructure:"addr"`
	Password  string        `mapstructure:"password"`
	DB        int           `mapstructure:"db"`
	KeyPrefix string        `mapstructure:"key_prefix"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// New returns a redis backed cache when an address is configured and an
// in-memory one otherwise.
func New(ctx context.Context, cfg Config) (dependency.Cache, func() error, error) {
	if cfg.Addr == "" {
		slog.Default().InfoContext(ctx, "redis address is empty, using in-memory cache")
		m := NewMemory()
		return m, func() error { return nil }, nil
	}
	r, err := NewRedis(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("can't create redis cache: %w", err)
	}
	return r, r.Close, nil
}
