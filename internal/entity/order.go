package entity

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

// AnalyticsState tracks whether an order has been folded into the aggregates.
type AnalyticsState string

const (
	AnalyticsUnprocessed AnalyticsState = "unprocessed"
	AnalyticsProcessing  AnalyticsState = "processing"
	AnalyticsProcessed   AnalyticsState = "processed"
)

// OrderStatusCompleted is the only booking status that carries revenue.
const OrderStatusCompleted = "completed"

// CompletedOrder is a booking_order row joined with its customer profile.
type CompletedOrder struct {
	ID             string          `db:"id"`
	CreatorID      string          `db:"creator_id"`
	CustomerID     string          `db:"customer_id"`
	Amount         decimal.Decimal `db:"amount"`
	OccasionText   sql.NullString  `db:"occasion_text"`
	Occasion       sql.NullString  `db:"occasion"`
	CreatedAt      time.Time       `db:"created_at"`
	AnalyticsState AnalyticsState  `db:"analytics_state"`
	CustomerName   sql.NullString  `db:"customer_name"`
	CustomerEmail  sql.NullString  `db:"customer_email"`
	CustomerAvatar sql.NullString  `db:"customer_avatar"`
}

// OrderAggregate is the per-order increment applied to the daily rollups.
type OrderAggregate struct {
	CreatorID string
	OrderID   string
	Day       time.Time
	Occasion  Occasion
	Amount    decimal.Decimal
}

type DailyRevenueRow struct {
	Day        time.Time       `db:"day"`
	Revenue    decimal.Decimal `db:"revenue"`
	OrderCount int             `db:"order_count"`
}

type MonthlyRevenueRow struct {
	Month      time.Time       `db:"month"`
	Revenue    decimal.Decimal `db:"revenue"`
	OrderCount int             `db:"order_count"`
}

type OccasionTotalRow struct {
	Occasion   Occasion        `db:"occasion"`
	Revenue    decimal.Decimal `db:"revenue"`
	OrderCount int             `db:"order_count"`
}
