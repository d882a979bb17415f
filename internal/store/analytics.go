package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jekabolt/creator-analytics/internal/dependency"
	"github.com/jekabolt/creator-analytics/internal/entity"
	"github.com/shopspring/decimal"
)

var _ dependency.AnalyticsStore = (*MYSQLStore)(nil)

const dayLayout = "2006-01-02"

// dailySource picks the rollup table for an optional occasion filter.
func dailySource(occasion entity.Occasion) (table, cond string) {
	if occasion == "" {
		return "creator_daily_revenue", ""
	}
	return "creator_daily_occasion", "AND occasion = :occasion"
}

func (ms *MYSQLStore) GetDailyRevenue(ctx context.Context, creatorId string, from, to time.Time) ([]entity.DailyRevenueRow, error) {
	query := `
		SELECT day, revenue, order_count
		FROM creator_daily_revenue
		WHERE creator_id = :creatorId AND day >= :from AND day < :to
		ORDER BY day
	`
	rows, err := QueryListNamed[entity.DailyRevenueRow](ctx, ms.DB(), query, map[string]any{
		"creatorId": creatorId,
		"from":      from.Format(dayLayout),
		"to":        to.Format(dayLayout),
	})
	if err != nil {
		return nil, fmt.Errorf("can't get daily revenue: %w", err)
	}
	return rows, nil
}

func (ms *MYSQLStore) GetDailyOccasionRevenue(ctx context.Context, creatorId string, occasion entity.Occasion, from, to time.Time) ([]entity.DailyRevenueRow, error) {
	query := `
		SELECT day, revenue, order_count
		FROM creator_daily_occasion
		WHERE creator_id = :creatorId AND occasion = :occasion AND day >= :from AND day < :to
		ORDER BY day
	`
	rows, err := QueryListNamed[entity.DailyRevenueRow](ctx, ms.DB(), query, map[string]any{
		"creatorId": creatorId,
		"occasion":  string(occasion),
		"from":      from.Format(dayLayout),
		"to":        to.Format(dayLayout),
	})
	if err != nil {
		return nil, fmt.Errorf("can't get daily occasion revenue: %w", err)
	}
	return rows, nil
}

func (ms *MYSQLStore) GetMonthlyRevenue(ctx context.Context, creatorId string, occasion entity.Occasion, from, to time.Time) ([]entity.MonthlyRevenueRow, error) {
	table, cond := dailySource(occasion)
	query := fmt.Sprintf(`
		SELECT DATE(DATE_FORMAT(day, '%%Y-%%m-01')) AS month,
			COALESCE(SUM(revenue), 0) AS revenue,
			COALESCE(SUM(order_count), 0) AS order_count
		FROM %s
		WHERE creator_id = :creatorId AND day >= :from AND day < :to %s
		GROUP BY month
		ORDER BY month
	`, table, cond)
	rows, err := QueryListNamed[entity.MonthlyRevenueRow](ctx, ms.DB(), query, map[string]any{
		"creatorId": creatorId,
		"occasion":  string(occasion),
		"from":      from.Format(dayLayout),
		"to":        to.Format(dayLayout),
	})
	if err != nil {
		return nil, fmt.Errorf("can't get monthly revenue: %w", err)
	}
	return rows, nil
}

func (ms *MYSQLStore) GetOccasionTotals(ctx context.Context, creatorId string, from, to time.Time) ([]entity.OccasionTotalRow, error) {
	query := `
		SELECT occasion,
			COALESCE(SUM(revenue), 0) AS revenue,
			COALESCE(SUM(order_count), 0) AS order_count
		FROM creator_daily_occasion
		WHERE creator_id = :creatorId AND day >= :from AND day < :to
		GROUP BY occasion
		ORDER BY revenue DESC, occasion
	`
	rows, err := QueryListNamed[entity.OccasionTotalRow](ctx, ms.DB(), query, map[string]any{
		"creatorId": creatorId,
		"from":      from.Format(dayLayout),
		"to":        to.Format(dayLayout),
	})
	if err != nil {
		return nil, fmt.Errorf("can't get occasion totals: %w", err)
	}
	return rows, nil
}

func (ms *MYSQLStore) GetTotals(ctx context.Context, creatorId string, occasion entity.Occasion, from, to time.Time) (entity.TotalsSnapshot, error) {
	table, cond := dailySource(occasion)
	query := fmt.Sprintf(`
		SELECT COALESCE(SUM(revenue), 0) AS revenue,
			COALESCE(SUM(order_count), 0) AS order_count
		FROM %s
		WHERE creator_id = :creatorId AND day >= :from AND day < :to %s
	`, table, cond)
	r, err := QueryNamedOne[struct {
		Revenue    decimal.Decimal `db:"revenue"`
		OrderCount int             `db:"order_count"`
	}](ctx, ms.DB(), query, map[string]any{
		"creatorId": creatorId,
		"occasion":  string(occasion),
		"from":      from.Format(dayLayout),
		"to":        to.Format(dayLayout),
	})
	if err != nil {
		return entity.TotalsSnapshot{}, fmt.Errorf("can't get totals: %w", err)
	}
	return entity.TotalsSnapshot{TotalRevenue: r.Revenue, TotalOrders: r.OrderCount}, nil
}

const completedOrderColumns = `
	o.id, o.creator_id, o.customer_id, o.amount, o.occasion_text, o.occasion,
	o.created_at, o.analytics_state,
	cp.display_name AS customer_name, cp.email AS customer_email, cp.avatar_url AS customer_avatar
`

func (ms *MYSQLStore) GetCompletedOrders(ctx context.Context, creatorId string, from, to time.Time) ([]entity.CompletedOrder, error) {
	query := `
		SELECT ` + completedOrderColumns + `
		FROM booking_order o
		LEFT JOIN customer_profile cp ON cp.id = o.customer_id
		WHERE o.creator_id = :creatorId AND o.status = :status
		AND o.created_at >= :from AND o.created_at < :to
		ORDER BY o.created_at, o.id
	`
	rows, err := QueryListNamed[entity.CompletedOrder](ctx, ms.DB(), query, map[string]any{
		"creatorId": creatorId,
		"status":    entity.OrderStatusCompleted,
		"from":      from,
		"to":        to,
	})
	if err != nil {
		return nil, fmt.Errorf("can't get completed orders: %w", err)
	}
	return rows, nil
}

func (ms *MYSQLStore) GetSubscriptions(ctx context.Context, creatorId string, statuses ...entity.SubscriptionStatus) ([]entity.SubscriptionRecord, error) {
	if len(statuses) == 0 {
		return nil, nil
	}
	st := make([]string, 0, len(statuses))
	for _, s := range statuses {
		st = append(st, string(s))
	}
	query := `
		SELECT s.id, s.creator_id, s.subscriber_id, s.status, s.started_at, s.next_billing_at,
			t.name AS tier_name, COALESCE(t.price, 0) AS tier_price,
			cp.display_name AS subscriber_name, cp.avatar_url AS subscriber_avatar
		FROM subscription s
		LEFT JOIN subscription_tier t ON t.id = s.tier_id
		LEFT JOIN customer_profile cp ON cp.id = s.subscriber_id
		WHERE s.creator_id = :creatorId AND s.status IN (:statuses)
		ORDER BY s.started_at, s.id
	`
	rows, err := QueryListNamed[entity.SubscriptionRecord](ctx, ms.DB(), query, map[string]any{
		"creatorId": creatorId,
		"statuses":  st,
	})
	if err != nil {
		return nil, fmt.Errorf("can't get subscriptions: %w", err)
	}
	return rows, nil
}

func (ms *MYSQLStore) GetSubscriptionCounts(ctx context.Context, creatorId string) (entity.SubscriptionCounts, error) {
	query := `
		SELECT
			COALESCE(SUM(CASE WHEN s.status = 'active' THEN 1 ELSE 0 END), 0) AS active_count,
			COALESCE(SUM(CASE WHEN s.status = 'paused' THEN 1 ELSE 0 END), 0) AS paused_count,
			COALESCE(SUM(CASE WHEN s.status = 'active' THEN t.price ELSE 0 END), 0) AS mrr
		FROM subscription s
		JOIN subscription_tier t ON t.id = s.tier_id
		WHERE s.creator_id = :creatorId
	`
	r, err := QueryNamedOne[entity.SubscriptionCounts](ctx, ms.DB(), query, map[string]any{
		"creatorId": creatorId,
	})
	if err != nil {
		return entity.SubscriptionCounts{}, fmt.Errorf("can't get subscription counts: %w", err)
	}
	return r, nil
}
