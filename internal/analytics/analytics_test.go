package analytics

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/jekabolt/creator-analytics/internal/cache"
	"github.com/jekabolt/creator-analytics/internal/dependency"
	"github.com/jekabolt/creator-analytics/internal/entity"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const creator = "creator-1"

var testNow = time.Date(2024, 3, 20, 15, 30, 0, 0, time.UTC)

func newTestEngine(store dependency.AnalyticsStore, c dependency.Cache) *Engine {
	if c == nil {
		c = cache.NewMemory()
	}
	e := New(nil, store, c)
	e.now = func() time.Time { return testNow }
	return e
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func ptrTime(t time.Time) *time.Time {
	return &t
}

func completedOrder(id, customer, amount string, at time.Time, occasionText string) entity.CompletedOrder {
	return entity.CompletedOrder{
		ID:           id,
		CreatorID:    creator,
		CustomerID:   customer,
		Amount:       dec(amount),
		OccasionText: sql.NullString{String: occasionText, Valid: occasionText != ""},
		CreatedAt:    at,
	}
}

func customRangeFilter(start, end time.Time) entity.RevenueFilter {
	return entity.RevenueFilter{
		Period:    entity.PeriodCustom,
		StartDate: ptrTime(start),
		EndDate:   ptrTime(end),
	}
}

type mockCache struct {
	mock.Mock
}

func (m *mockCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	args := m.Called(ctx, key)
	b, _ := args.Get(0).([]byte)
	return b, args.Bool(1), args.Error(2)
}

func (m *mockCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

func (m *mockCache) InvalidatePrefix(ctx context.Context, prefix string) error {
	args := m.Called(ctx, prefix)
	return args.Error(0)
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return string(b)
}
