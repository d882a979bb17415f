package analytics

import (
	"time"

	"github.com/jekabolt/creator-analytics/internal/dependency"
	"golang.org/x/sync/singleflight"
)

// Config holds configuration for the revenue analytics engine.
type Config struct {
	CacheTTL              time.Duration `mapstructure:"cache_ttl"`
	FetchTimeout          time.Duration `mapstructure:"fetch_timeout"`
	TopCustomersLimit     int           `mapstructure:"top_customers_limit"`
	LoyalSubscribersLimit int           `mapstructure:"loyal_subscribers_limit"`
	DefaultAvatarURL      string        `mapstructure:"default_avatar_url"`
}

// DefaultConfig returns default configuration values.
func DefaultConfig() Config {
	return Config{
		CacheTTL:              5 * time.Minute,
		FetchTimeout:          5 * time.Second,
		TopCustomersLimit:     5,
		LoyalSubscribersLimit: 5,
		DefaultAvatarURL:      "/static/avatar-default.png",
	}
}

// Engine computes revenue analytics for creators on top of the data store and
// caches complete responses per filter combination.
type Engine struct {
	store     dependency.AnalyticsStore
	gw        *gateway
	c         *Config
	now       func() time.Time
	backfills singleflight.Group
}

var _ dependency.Analytics = (*Engine)(nil)

// New creates a new analytics engine. Zero config fields fall back to defaults.
func New(c *Config, store dependency.AnalyticsStore, cache dependency.Cache) *Engine {
	dc := DefaultConfig()
	if c == nil {
		c = &dc
	}
	if c.CacheTTL == 0 {
		c.CacheTTL = dc.CacheTTL
	}
	if c.FetchTimeout == 0 {
		c.FetchTimeout = dc.FetchTimeout
	}
	if c.TopCustomersLimit <= 0 {
		c.TopCustomersLimit = dc.TopCustomersLimit
	}
	if c.LoyalSubscribersLimit <= 0 {
		c.LoyalSubscribersLimit = dc.LoyalSubscribersLimit
	}
	if c.DefaultAvatarURL == "" {
		c.DefaultAvatarURL = dc.DefaultAvatarURL
	}
	return &Engine{
		store: store,
		gw:    newGateway(cache, c.CacheTTL),
		c:     c,
		now:   func() time.Time { return time.Now().UTC() },
	}
}
