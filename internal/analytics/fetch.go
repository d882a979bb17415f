package analytics

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/jekabolt/creator-analytics/internal/entity"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

const (
	fetchDailyRevenue       = "daily_revenue"
	fetchMonthlyRevenue     = "monthly_revenue"
	fetchOccasionBreakdown  = "occasion_breakdown"
	fetchTotals             = "totals"
	fetchPreviousTotals     = "previous_totals"
	fetchTopCustomers       = "top_customers"
	fetchLoyalSubscribers   = "loyal_subscribers"
	fetchSubscriptionCounts = "subscription_metrics"
)

const monthLabelLayout = "Jan 2006"

// fetched is the joined result of all fetchers for one request.
type fetched struct {
	daily          []entity.DailyRevenuePoint
	monthly        []entity.MonthlyRevenuePoint
	breakdown      []entity.OccasionBreakdownEntry
	totals         entity.TotalsSnapshot
	previousTotals entity.TotalsSnapshot
	customers      []entity.CustomerRankEntry
	subscribers    []entity.SubscriberLoyaltyEntry
	subscriptions  entity.SubscriptionMetrics

	mu       sync.Mutex
	degraded []string
}

func (f *fetched) degrade(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.degraded = append(f.degraded, name)
}

// fetchAll runs every fetcher concurrently and waits for all of them. A
// failing fetcher is logged, its slice of the result stays zeroed and its
// name is recorded as degraded. It never returns an error.
func (e *Engine) fetchAll(ctx context.Context, creatorId string, f entity.RevenueFilter, rng, prev entity.DateRange) *fetched {
	res := &fetched{
		daily:         zeroDaily(rng),
		monthly:       []entity.MonthlyRevenuePoint{},
		breakdown:     []entity.OccasionBreakdownEntry{},
		customers:     []entity.CustomerRankEntry{},
		subscribers:   []entity.SubscriberLoyaltyEntry{},
		totals:        entity.TotalsSnapshot{TotalRevenue: decimal.Zero},
		subscriptions: entity.SubscriptionMetrics{MRR: decimal.Zero},
	}
	res.previousTotals = res.totals
	now := e.now()

	var g errgroup.Group
	run := func(name string, fn func(ctx context.Context) error) {
		g.Go(func() error {
			fctx, cancel := context.WithTimeout(ctx, e.c.FetchTimeout)
			defer cancel()
			if err := fn(fctx); err != nil {
				slog.Default().ErrorContext(ctx, "analytics fetcher failed",
					slog.String("creator_id", creatorId),
					slog.String("fetcher", name),
					slog.String("err", err.Error()),
				)
				res.degrade(name)
			}
			return nil
		})
	}

	run(fetchDailyRevenue, func(ctx context.Context) error {
		var (
			rows []entity.DailyRevenueRow
			err  error
		)
		if f.Occasion != "" {
			rows, err = e.store.GetDailyOccasionRevenue(ctx, creatorId, f.Occasion, rng.Start, rng.UpperBound())
		} else {
			rows, err = e.store.GetDailyRevenue(ctx, creatorId, rng.Start, rng.UpperBound())
		}
		if err != nil {
			return err
		}
		res.daily = fillDailyGaps(rows, rng)
		return nil
	})

	// Boundary months only count days inside the range; the whole month
	// before the range is the growth baseline of the first point.
	run(fetchMonthlyRevenue, func(ctx context.Context) error {
		first := monthStart(rng.Start)
		last := monthStart(rng.End)
		baseline, err := e.store.GetMonthlyRevenue(ctx, creatorId, f.Occasion, first.AddDate(0, -1, 0), first)
		if err != nil {
			return err
		}
		rows, err := e.store.GetMonthlyRevenue(ctx, creatorId, f.Occasion, rng.Start, rng.UpperBound())
		if err != nil {
			return err
		}
		res.monthly = monthlySeries(append(baseline, rows...), first, last)
		return nil
	})

	run(fetchOccasionBreakdown, func(ctx context.Context) error {
		rows, err := e.store.GetOccasionTotals(ctx, creatorId, rng.Start, rng.UpperBound())
		if err != nil {
			return err
		}
		res.breakdown = occasionBreakdown(rows)
		return nil
	})

	run(fetchTotals, func(ctx context.Context) error {
		t, err := e.store.GetTotals(ctx, creatorId, f.Occasion, rng.Start, rng.UpperBound())
		if err != nil {
			return err
		}
		res.totals = t
		return nil
	})

	run(fetchPreviousTotals, func(ctx context.Context) error {
		t, err := e.store.GetTotals(ctx, creatorId, f.Occasion, prev.Start, prev.UpperBound())
		if err != nil {
			return err
		}
		res.previousTotals = t
		return nil
	})

	run(fetchTopCustomers, func(ctx context.Context) error {
		orders, err := e.store.GetCompletedOrders(ctx, creatorId, rng.Start, rng.UpperBound())
		if err != nil {
			return err
		}
		res.customers = topCustomers(orders, e.c.TopCustomersLimit, e.c.DefaultAvatarURL)
		return nil
	})

	if f.WithSubscriptions() {
		run(fetchLoyalSubscribers, func(ctx context.Context) error {
			subs, err := e.store.GetSubscriptions(ctx, creatorId, entity.SubscriptionActive, entity.SubscriptionPaused)
			if err != nil {
				return err
			}
			res.subscribers = loyalSubscribers(subs, now, e.c.LoyalSubscribersLimit, e.c.DefaultAvatarURL)
			return nil
		})

		run(fetchSubscriptionCounts, func(ctx context.Context) error {
			c, err := e.store.GetSubscriptionCounts(ctx, creatorId)
			if err != nil {
				return err
			}
			res.subscriptions = entity.SubscriptionMetrics{
				ActiveCount: c.Active,
				PausedCount: c.Paused,
				MRR:         c.MRR,
			}
			return nil
		})
	}

	_ = g.Wait()
	sort.Strings(res.degraded)
	return res
}

func dayKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// fillDailyGaps walks the range day by day and returns exactly one point per
// day, synthesizing zero points for days absent from rows.
func fillDailyGaps(rows []entity.DailyRevenueRow, rng entity.DateRange) []entity.DailyRevenuePoint {
	byDay := make(map[string]entity.DailyRevenueRow, len(rows))
	for _, r := range rows {
		k := dayKey(r.Day)
		if cur, ok := byDay[k]; ok {
			r.Revenue = r.Revenue.Add(cur.Revenue)
			r.OrderCount += cur.OrderCount
		}
		byDay[k] = r
	}
	res := make([]entity.DailyRevenuePoint, 0, rng.Days())
	for cur := rng.Start; !cur.After(rng.End); cur = cur.AddDate(0, 0, 1) {
		p := entity.DailyRevenuePoint{Date: cur, Revenue: decimal.Zero}
		if r, ok := byDay[dayKey(cur)]; ok {
			p.Revenue = r.Revenue
			p.OrderCount = r.OrderCount
		}
		res = append(res, p)
	}
	return res
}

func zeroDaily(rng entity.DateRange) []entity.DailyRevenuePoint {
	return fillDailyGaps(nil, rng)
}

func monthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// monthlySeries returns one point per calendar month from first to last. rows
// may include the month before first, which only serves as growth baseline.
func monthlySeries(rows []entity.MonthlyRevenueRow, first, last time.Time) []entity.MonthlyRevenuePoint {
	byMonth := make(map[string]entity.MonthlyRevenueRow, len(rows))
	for _, r := range rows {
		byMonth[r.Month.Format("2006-01")] = r
	}
	prevRevenue := decimal.Zero
	if r, ok := byMonth[first.AddDate(0, -1, 0).Format("2006-01")]; ok {
		prevRevenue = r.Revenue
	}
	res := make([]entity.MonthlyRevenuePoint, 0)
	for cur := first; !cur.After(last); cur = cur.AddDate(0, 1, 0) {
		p := entity.MonthlyRevenuePoint{
			Month:      cur,
			MonthLabel: cur.Format(monthLabelLayout),
			Revenue:    decimal.Zero,
		}
		if r, ok := byMonth[cur.Format("2006-01")]; ok {
			p.Revenue = r.Revenue
			p.OrderCount = r.OrderCount
		}
		p.GrowthPercent = Growth(p.Revenue, prevRevenue)
		prevRevenue = p.Revenue
		res = append(res, p)
	}
	return res
}

// occasionBreakdown returns one entry per occasion with orders, in category
// order. Shares are relative to revenue across all categories.
func occasionBreakdown(rows []entity.OccasionTotalRow) []entity.OccasionBreakdownEntry {
	byOccasion := make(map[entity.Occasion]entity.OccasionTotalRow, len(rows))
	total := decimal.Zero
	for _, r := range rows {
		cur := byOccasion[r.Occasion]
		cur.Occasion = r.Occasion
		cur.Revenue = cur.Revenue.Add(r.Revenue)
		cur.OrderCount += r.OrderCount
		byOccasion[r.Occasion] = cur
		total = total.Add(r.Revenue)
	}
	res := make([]entity.OccasionBreakdownEntry, 0, len(byOccasion))
	for _, o := range entity.Occasions {
		r, ok := byOccasion[o]
		if !ok || r.OrderCount == 0 {
			continue
		}
		res = append(res, entity.OccasionBreakdownEntry{
			Occasion:          o,
			Revenue:           r.Revenue,
			OrderCount:        r.OrderCount,
			AverageOrderValue: entity.TotalsSnapshot{TotalRevenue: r.Revenue, TotalOrders: r.OrderCount}.AverageOrderValue(),
			SharePercent:      sharePercent(r.Revenue, total),
		})
	}
	return res
}
