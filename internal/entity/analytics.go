package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// RevenueFilter narrows a revenue analytics request.
type RevenueFilter struct {
	Period    Period
	StartDate *time.Time
	EndDate   *time.Time
	// Occasion restricts series and totals to a single category when set.
	Occasion Occasion
	// IncludeSubscriptions defaults to true when nil.
	IncludeSubscriptions *bool
}

// WithSubscriptions reports whether subscription fetchers should run.
func (f RevenueFilter) WithSubscriptions() bool {
	return f.IncludeSubscriptions == nil || *f.IncludeSubscriptions
}

type DailyRevenuePoint struct {
	Date       time.Time       `json:"date"`
	Revenue    decimal.Decimal `json:"revenue"`
	OrderCount int             `json:"orderCount"`
}

type MonthlyRevenuePoint struct {
	Month         time.Time       `json:"month"`
	MonthLabel    string          `json:"monthLabel"`
	Revenue       decimal.Decimal `json:"revenue"`
	OrderCount    int             `json:"orderCount"`
	GrowthPercent float64         `json:"growthPercent"`
}

type OccasionBreakdownEntry struct {
	Occasion          Occasion        `json:"occasion"`
	Revenue           decimal.Decimal `json:"revenue"`
	OrderCount        int             `json:"orderCount"`
	AverageOrderValue decimal.Decimal `json:"averageOrderValue"`
	SharePercent      float64         `json:"sharePercent"`
}

// TotalsSnapshot is the unit compared between the current and previous window.
type TotalsSnapshot struct {
	TotalRevenue decimal.Decimal `json:"totalRevenue"`
	TotalOrders  int             `json:"totalOrders"`
}

// AverageOrderValue returns revenue per order rounded to cents.
func (t TotalsSnapshot) AverageOrderValue() decimal.Decimal {
	if t.TotalOrders == 0 {
		return decimal.Zero
	}
	return t.TotalRevenue.Div(decimal.NewFromInt(int64(t.TotalOrders))).Round(2)
}

type GrowthMetrics struct {
	RevenueGrowth       float64 `json:"revenueGrowth"`
	OrderGrowth         float64 `json:"orderGrowth"`
	AvgOrderValueGrowth float64 `json:"avgOrderValueGrowth"`
}

type CustomerRankEntry struct {
	CustomerID        string          `json:"customerId"`
	DisplayName       string          `json:"displayName"`
	Email             string          `json:"email,omitempty"`
	AvatarURL         string          `json:"avatarUrl"`
	TotalOrders       int             `json:"totalOrders"`
	TotalRevenue      decimal.Decimal `json:"totalRevenue"`
	AverageOrderValue decimal.Decimal `json:"averageOrderValue"`
	FirstOrderDate    time.Time       `json:"firstOrderDate"`
	LastOrderDate     time.Time       `json:"lastOrderDate"`
}

type SubscriberLoyaltyEntry struct {
	SubscriberID             string             `json:"subscriberId"`
	DisplayName              string             `json:"displayName"`
	AvatarURL                string             `json:"avatarUrl"`
	TierName                 string             `json:"tierName"`
	TierPrice                decimal.Decimal    `json:"tierPrice"`
	SubscriptionDurationDays int                `json:"subscriptionDurationDays"`
	AccruedRevenueEstimate   decimal.Decimal    `json:"accruedRevenueEstimate"`
	Status                   SubscriptionStatus `json:"status"`
	StartDate                time.Time          `json:"startDate"`
	NextBillingDate          *time.Time         `json:"nextBillingDate,omitempty"`
}

// SubscriptionMetrics summarizes a creator's live subscriptions. MRR is the
// sum of active subscribers' tier prices.
type SubscriptionMetrics struct {
	ActiveCount int             `json:"activeCount"`
	PausedCount int             `json:"pausedCount"`
	MRR         decimal.Decimal `json:"mrr"`
}

// AnalyticsResponse is everything a revenue dashboard renders for one request.
type AnalyticsResponse struct {
	CreatorID         string                   `json:"creatorId"`
	Period            Period                   `json:"period"`
	PeriodLabel       string                   `json:"periodLabel"`
	Range             DateRange                `json:"range"`
	PreviousRange     DateRange                `json:"previousRange"`
	Occasion          Occasion                 `json:"occasion,omitempty"`
	Totals            TotalsSnapshot           `json:"totals"`
	PreviousTotals    TotalsSnapshot           `json:"previousTotals"`
	AverageOrderValue decimal.Decimal          `json:"averageOrderValue"`
	Growth            GrowthMetrics            `json:"growth"`
	DailyRevenue      []DailyRevenuePoint      `json:"dailyRevenue"`
	MonthlyRevenue    []MonthlyRevenuePoint    `json:"monthlyRevenue"`
	OccasionBreakdown []OccasionBreakdownEntry `json:"occasionBreakdown"`
	TopCustomers      []CustomerRankEntry      `json:"topCustomers"`
	LoyalSubscribers  []SubscriberLoyaltyEntry `json:"loyalSubscribers"`
	Subscriptions     SubscriptionMetrics      `json:"subscriptions"`
	// Degraded names the fetchers that failed and were zeroed.
	Degraded    []string  `json:"degraded,omitempty"`
	GeneratedAt time.Time `json:"generatedAt"`
}

// Trend is the direction of a growth figure.
type Trend string

const (
	TrendUp     Trend = "up"
	TrendDown   Trend = "down"
	TrendStable Trend = "stable"
)

type GrowthSummary struct {
	Current    decimal.Decimal `json:"current"`
	Previous   decimal.Decimal `json:"previous"`
	Change     decimal.Decimal `json:"change"`
	Percentage float64         `json:"percentage"`
	Trend      Trend           `json:"trend"`
}

type OccasionSummary struct {
	Type       Occasion        `json:"type"`
	Revenue    decimal.Decimal `json:"revenue"`
	Percentage float64         `json:"percentage"`
}

// AnalyticsSummary is the compact headline view of a period.
type AnalyticsSummary struct {
	TotalRevenue  decimal.Decimal  `json:"totalRevenue"`
	TotalOrders   int              `json:"totalOrders"`
	AvgOrderValue decimal.Decimal  `json:"avgOrderValue"`
	RevenueGrowth GrowthSummary    `json:"revenueGrowth"`
	OrderGrowth   GrowthSummary    `json:"orderGrowth"`
	TopOccasion   *OccasionSummary `json:"topOccasion"`
	PeriodLabel   string           `json:"periodLabel"`
}

// BackfillReport describes one historical backfill run.
type BackfillReport struct {
	RunID     string `json:"runId"`
	CreatorID string `json:"creatorId"`
	Scanned   int    `json:"scanned"`
	Processed int    `json:"processed"`
	Skipped   int    `json:"skipped"`
	Failed    int    `json:"failed"`
}
