package analytics

import (
	"github.com/jekabolt/creator-analytics/internal/entity"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Growth returns the percentage change from previous to current rounded to
// one decimal. A zero baseline yields 100 for any positive current value and
// 0 otherwise.
func Growth(current, previous decimal.Decimal) float64 {
	if previous.IsZero() {
		if current.IsPositive() {
			return 100
		}
		return 0
	}
	f, _ := current.Sub(previous).Div(previous).Mul(hundred).Round(1).Float64()
	return f
}

// GrowthInt is Growth for counts.
func GrowthInt(current, previous int) float64 {
	return Growth(intDecimal(current), intDecimal(previous))
}

func trendOf(pct float64) entity.Trend {
	switch {
	case pct > 0:
		return entity.TrendUp
	case pct < 0:
		return entity.TrendDown
	default:
		return entity.TrendStable
	}
}

func growthSummary(current, previous decimal.Decimal) entity.GrowthSummary {
	pct := Growth(current, previous)
	return entity.GrowthSummary{
		Current:    current,
		Previous:   previous,
		Change:     current.Sub(previous),
		Percentage: pct,
		Trend:      trendOf(pct),
	}
}

func growthMetrics(cur, prev entity.TotalsSnapshot) entity.GrowthMetrics {
	return entity.GrowthMetrics{
		RevenueGrowth:       Growth(cur.TotalRevenue, prev.TotalRevenue),
		OrderGrowth:         GrowthInt(cur.TotalOrders, prev.TotalOrders),
		AvgOrderValueGrowth: Growth(cur.AverageOrderValue(), prev.AverageOrderValue()),
	}
}

// sharePercent returns part / total as a percentage rounded to one decimal.
func sharePercent(part, total decimal.Decimal) float64 {
	if !total.IsPositive() {
		return 0
	}
	f, _ := part.Div(total).Mul(hundred).Round(1).Float64()
	return f
}

func intDecimal(n int) decimal.Decimal {
	return decimal.NewFromInt(int64(n))
}
