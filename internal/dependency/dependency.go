package dependency

import (
	"context"
	"database/sql"
	"time"

	"github.com/jekabolt/creator-analytics/internal/entity"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

type (
	// AnalyticsReader is the read-only side of the data store used by the fetchers.
	AnalyticsReader interface {
		// GetDailyRevenue returns stored per-day rows in [from, to). Days without
		// orders are absent.
		GetDailyRevenue(ctx context.Context, creatorId string, from, to time.Time) ([]entity.DailyRevenueRow, error)
		// GetDailyOccasionRevenue returns per-day rows for one occasion in [from, to).
		GetDailyOccasionRevenue(ctx context.Context, creatorId string, occasion entity.Occasion, from, to time.Time) ([]entity.DailyRevenueRow, error)
		// GetMonthlyRevenue returns monthly rollups in [from, to), optionally for one occasion.
		GetMonthlyRevenue(ctx context.Context, creatorId string, occasion entity.Occasion, from, to time.Time) ([]entity.MonthlyRevenueRow, error)
		// GetOccasionTotals sums revenue and orders per occasion in [from, to).
		GetOccasionTotals(ctx context.Context, creatorId string, from, to time.Time) ([]entity.OccasionTotalRow, error)
		// GetTotals sums revenue and orders in [from, to), optionally for one occasion.
		GetTotals(ctx context.Context, creatorId string, occasion entity.Occasion, from, to time.Time) (entity.TotalsSnapshot, error)
		// GetCompletedOrders returns completed orders in [from, to) joined with customer profiles.
		GetCompletedOrders(ctx context.Context, creatorId string, from, to time.Time) ([]entity.CompletedOrder, error)
		// GetSubscriptions returns subscriptions in the given statuses joined with tier and profile.
		GetSubscriptions(ctx context.Context, creatorId string, statuses ...entity.SubscriptionStatus) ([]entity.SubscriptionRecord, error)
		// GetSubscriptionCounts counts active and paused subscriptions and sums MRR.
		GetSubscriptionCounts(ctx context.Context, creatorId string) (entity.SubscriptionCounts, error)
	}

	// AnalyticsWriter owns the aggregate rows and the per-order processed flag.
	AnalyticsWriter interface {
		// GetUnprocessedOrders lists completed orders not yet folded into aggregates.
		GetUnprocessedOrders(ctx context.Context, creatorId string) ([]entity.CompletedOrder, error)
		// GetCreatorsWithUnprocessedOrders lists creators that need a backfill.
		GetCreatorsWithUnprocessedOrders(ctx context.Context, limit int) ([]string, error)
		// ClaimOrder moves an order from unprocessed to processing and returns
		// the state it was in before the call.
		ClaimOrder(ctx context.Context, creatorId, orderId string) (entity.AnalyticsState, error)
		// ApplyOrderAggregate upserts the per-day and per-occasion rows.
		ApplyOrderAggregate(ctx context.Context, agg entity.OrderAggregate) error
		// MarkOrderProcessed finishes the processing -> processed transition.
		MarkOrderProcessed(ctx context.Context, creatorId, orderId string) error
	}

	// AnalyticsStore is the data store collaborator of the analytics engine.
	AnalyticsStore interface {
		AnalyticsReader
		AnalyticsWriter
		// Tx runs f in a single transaction; f must use the store it receives.
		Tx(ctx context.Context, f func(context.Context, AnalyticsStore) error) error
	}

	// Cache is a key/value store with TTL and prefix invalidation.
	Cache interface {
		Get(ctx context.Context, key string) ([]byte, bool, error)
		Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
		InvalidatePrefix(ctx context.Context, prefix string) error
	}

	// Analytics is the inbound surface of the revenue analytics engine.
	Analytics interface {
		GetRevenueAnalytics(ctx context.Context, creatorId string, filter entity.RevenueFilter) (*entity.AnalyticsResponse, error)
		GetAnalyticsSummary(ctx context.Context, creatorId string, period entity.Period) (*entity.AnalyticsSummary, error)
		UpdateAnalyticsForOrder(ctx context.Context, creatorId, orderId string, amount decimal.Decimal, occasion string, orderDate time.Time) error
		ProcessHistoricalData(ctx context.Context, creatorId string) (*entity.BackfillReport, error)
	}

	// DB represents database interface.
	DB interface {
		BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
		ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
		GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
		QueryRowxContext(ctx context.Context, query string, args ...interface{}) *sqlx.Row
		QueryxContext(ctx context.Context, query string, args ...interface{}) (*sqlx.Rows, error)
		SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	}
)
