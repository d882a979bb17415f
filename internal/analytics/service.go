package analytics

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jekabolt/creator-analytics/internal/entity"
	gerr "github.com/jekabolt/creator-analytics/internal/errors"
)

// GetRevenueAnalytics returns the full dashboard response for a creator.
// Only invalid filters fail the call; store and cache failures degrade the
// response instead.
func (e *Engine) GetRevenueAnalytics(ctx context.Context, creatorId string, f entity.RevenueFilter) (*entity.AnalyticsResponse, error) {
	if strings.TrimSpace(creatorId) == "" {
		return nil, fmt.Errorf("creator id is required: %w", gerr.InvalidFilter)
	}
	if f.Period == "" {
		f.Period = entity.Period30Days
	}
	if f.Occasion != "" {
		occ, ok := entity.ParseOccasion(string(f.Occasion))
		if !ok {
			return nil, fmt.Errorf("unknown occasion %q: %w", f.Occasion, gerr.InvalidFilter)
		}
		f.Occasion = occ
	}
	now := e.now()
	rng, err := resolveRange(f, now)
	if err != nil {
		return nil, err
	}

	key := cacheKey(creatorId, f, rng)
	if resp, ok := e.gw.get(ctx, key); ok {
		return resp, nil
	}

	prev := rng.Previous()
	data := e.fetchAll(ctx, creatorId, f, rng, prev)
	resp := &entity.AnalyticsResponse{
		CreatorID:         creatorId,
		Period:            f.Period,
		PeriodLabel:       f.Period.Label(),
		Range:             rng,
		PreviousRange:     prev,
		Occasion:          f.Occasion,
		Totals:            data.totals,
		PreviousTotals:    data.previousTotals,
		AverageOrderValue: data.totals.AverageOrderValue(),
		Growth:            growthMetrics(data.totals, data.previousTotals),
		DailyRevenue:      data.daily,
		MonthlyRevenue:    data.monthly,
		OccasionBreakdown: data.breakdown,
		TopCustomers:      data.customers,
		LoyalSubscribers:  data.subscribers,
		Subscriptions:     data.subscriptions,
		Degraded:          data.degraded,
		GeneratedAt:       now,
	}

	if len(resp.Degraded) > 0 {
		slog.Default().WarnContext(ctx, "serving degraded analytics response",
			slog.String("creator_id", creatorId),
			slog.Any("degraded", resp.Degraded),
		)
		return resp, nil
	}
	e.gw.set(ctx, key, resp)
	return resp, nil
}

// GetAnalyticsSummary condenses the analytics of a relative period into the
// headline figures.
func (e *Engine) GetAnalyticsSummary(ctx context.Context, creatorId string, period entity.Period) (*entity.AnalyticsSummary, error) {
	noSubs := false
	resp, err := e.GetRevenueAnalytics(ctx, creatorId, entity.RevenueFilter{
		Period:               period,
		IncludeSubscriptions: &noSubs,
	})
	if err != nil {
		return nil, err
	}
	return summarize(resp), nil
}

func summarize(resp *entity.AnalyticsResponse) *entity.AnalyticsSummary {
	cur, prev := resp.Totals, resp.PreviousTotals
	s := &entity.AnalyticsSummary{
		TotalRevenue:  cur.TotalRevenue,
		TotalOrders:   cur.TotalOrders,
		AvgOrderValue: cur.AverageOrderValue(),
		RevenueGrowth: growthSummary(cur.TotalRevenue, prev.TotalRevenue),
		OrderGrowth:   growthSummary(intDecimal(cur.TotalOrders), intDecimal(prev.TotalOrders)),
		PeriodLabel:   resp.PeriodLabel,
	}
	for _, b := range resp.OccasionBreakdown {
		if s.TopOccasion == nil || b.Revenue.GreaterThan(s.TopOccasion.Revenue) {
			s.TopOccasion = &entity.OccasionSummary{
				Type:       b.Occasion,
				Revenue:    b.Revenue,
				Percentage: b.SharePercent,
			}
		}
	}
	return s
}
