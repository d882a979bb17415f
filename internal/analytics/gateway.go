package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/jekabolt/creator-analytics/internal/dependency"
	"github.com/jekabolt/creator-analytics/internal/entity"
)

const cacheNamespace = "analytics"

// gateway is the cache-aside boundary of the engine. Backend failures are
// logged and never returned: a failed get is a miss, a failed set or
// invalidation leaves staleness bounded by ttl.
type gateway struct {
	cache dependency.Cache
	ttl   time.Duration
}

func newGateway(cache dependency.Cache, ttl time.Duration) *gateway {
	return &gateway{cache: cache, ttl: ttl}
}

func creatorPrefix(creatorId string) string {
	return fmt.Sprintf("%s:%s:", cacheNamespace, creatorId)
}

func cacheKey(creatorId string, f entity.RevenueFilter, rng entity.DateRange) string {
	occasion := string(f.Occasion)
	if occasion == "" {
		occasion = "all"
	}
	subs := "nosubs"
	if f.WithSubscriptions() {
		subs = "subs"
	}
	return fmt.Sprintf("%s%s:%s:%s:%s:%s",
		creatorPrefix(creatorId), f.Period, dayKey(rng.Start), dayKey(rng.End), occasion, subs)
}

func (g *gateway) get(ctx context.Context, key string) (*entity.AnalyticsResponse, bool) {
	if g.cache == nil {
		return nil, false
	}
	b, ok, err := g.cache.Get(ctx, key)
	if err != nil {
		slog.Default().WarnContext(ctx, "analytics cache get failed, recomputing",
			slog.String("key", key),
			slog.String("err", err.Error()),
		)
		return nil, false
	}
	if !ok {
		return nil, false
	}
	var resp entity.AnalyticsResponse
	if err := json.Unmarshal(b, &resp); err != nil {
		slog.Default().WarnContext(ctx, "can't decode cached analytics response",
			slog.String("key", key),
			slog.String("err", err.Error()),
		)
		return nil, false
	}
	return &resp, true
}

func (g *gateway) set(ctx context.Context, key string, resp *entity.AnalyticsResponse) {
	if g.cache == nil {
		return
	}
	b, err := json.Marshal(resp)
	if err != nil {
		slog.Default().ErrorContext(ctx, "can't encode analytics response",
			slog.String("key", key),
			slog.String("err", err.Error()),
		)
		return
	}
	if err := g.cache.Set(ctx, key, b, g.ttl); err != nil {
		slog.Default().WarnContext(ctx, "analytics cache set failed",
			slog.String("key", key),
			slog.String("err", err.Error()),
		)
	}
}

// invalidateAll drops every cached response of the creator.
func (g *gateway) invalidateAll(ctx context.Context, creatorId string) {
	if g.cache == nil {
		return
	}
	if err := g.cache.InvalidatePrefix(ctx, creatorPrefix(creatorId)); err != nil {
		slog.Default().ErrorContext(ctx, "can't invalidate analytics cache",
			slog.String("creator_id", creatorId),
			slog.String("err", err.Error()),
		)
	}
}
