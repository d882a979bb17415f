package analytics

import (
	"sort"
	"time"

	"github.com/jekabolt/creator-analytics/internal/entity"
	"github.com/shopspring/decimal"
)

const unknownName = "Unknown"

var daysPerBillingCycle = decimal.NewFromInt(30)

// topCustomers groups completed orders by customer and returns the highest
// revenue customers. Ties go to the earlier first order, then the lower id.
func topCustomers(orders []entity.CompletedOrder, limit int, defaultAvatar string) []entity.CustomerRankEntry {
	byID := make(map[string]*entity.CustomerRankEntry)
	ranked := make([]*entity.CustomerRankEntry, 0)
	for _, o := range orders {
		c, ok := byID[o.CustomerID]
		if !ok {
			c = &entity.CustomerRankEntry{
				CustomerID:     o.CustomerID,
				DisplayName:    nullOr(o.CustomerName.String, unknownName),
				Email:          o.CustomerEmail.String,
				AvatarURL:      nullOr(o.CustomerAvatar.String, defaultAvatar),
				TotalRevenue:   decimal.Zero,
				FirstOrderDate: o.CreatedAt,
				LastOrderDate:  o.CreatedAt,
			}
			byID[o.CustomerID] = c
			ranked = append(ranked, c)
		}
		c.TotalOrders++
		c.TotalRevenue = c.TotalRevenue.Add(o.Amount)
		if o.CreatedAt.Before(c.FirstOrderDate) {
			c.FirstOrderDate = o.CreatedAt
		}
		if o.CreatedAt.After(c.LastOrderDate) {
			c.LastOrderDate = o.CreatedAt
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if cmp := a.TotalRevenue.Cmp(b.TotalRevenue); cmp != 0 {
			return cmp > 0
		}
		if !a.FirstOrderDate.Equal(b.FirstOrderDate) {
			return a.FirstOrderDate.Before(b.FirstOrderDate)
		}
		return a.CustomerID < b.CustomerID
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	res := make([]entity.CustomerRankEntry, 0, len(ranked))
	for _, c := range ranked {
		c.AverageOrderValue = c.TotalRevenue.Div(decimal.NewFromInt(int64(c.TotalOrders))).Round(2)
		res = append(res, *c)
	}
	return res
}

// loyalSubscribers ranks active and paused subscriptions by how long they
// have run. Ties go to the earlier start, then the lower subscriber id.
func loyalSubscribers(subs []entity.SubscriptionRecord, now time.Time, limit int, defaultAvatar string) []entity.SubscriberLoyaltyEntry {
	res := make([]entity.SubscriberLoyaltyEntry, 0, len(subs))
	for _, s := range subs {
		if !s.Status.Live() {
			continue
		}
		days := entity.DaysBetween(s.StartedAt, now)
		if days < 0 {
			days = 0
		}
		e := entity.SubscriberLoyaltyEntry{
			SubscriberID:             s.SubscriberID,
			DisplayName:              nullOr(s.SubscriberName.String, unknownName),
			AvatarURL:                nullOr(s.SubscriberAvatar.String, defaultAvatar),
			TierName:                 nullOr(s.TierName.String, unknownName),
			TierPrice:                s.TierPrice,
			SubscriptionDurationDays: days,
			AccruedRevenueEstimate:   accruedEstimate(s.TierPrice, days),
			Status:                   s.Status,
			StartDate:                s.StartedAt,
		}
		if s.NextBillingAt.Valid {
			t := s.NextBillingAt.Time
			e.NextBillingDate = &t
		}
		res = append(res, e)
	}

	sort.SliceStable(res, func(i, j int) bool {
		a, b := res[i], res[j]
		if a.SubscriptionDurationDays != b.SubscriptionDurationDays {
			return a.SubscriptionDurationDays > b.SubscriptionDurationDays
		}
		if !a.StartDate.Equal(b.StartDate) {
			return a.StartDate.Before(b.StartDate)
		}
		return a.SubscriberID < b.SubscriberID
	})

	if len(res) > limit {
		res = res[:limit]
	}
	return res
}

// accruedEstimate is tierPrice × floor(days / 30). Tier changes and
// resubscriptions are not reflected.
func accruedEstimate(price decimal.Decimal, days int) decimal.Decimal {
	cycles := decimal.NewFromInt(int64(days)).Div(daysPerBillingCycle).Floor()
	return price.Mul(cycles)
}

func nullOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
