package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jekabolt/creator-analytics/internal/entity"
	gerr "github.com/jekabolt/creator-analytics/internal/errors"
	"github.com/jekabolt/creator-analytics/internal/ratelimit"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockAnalytics struct {
	mock.Mock
}

func (m *mockAnalytics) GetRevenueAnalytics(ctx context.Context, creatorId string, filter entity.RevenueFilter) (*entity.AnalyticsResponse, error) {
	args := m.Called(ctx, creatorId, filter)
	resp, _ := args.Get(0).(*entity.AnalyticsResponse)
	return resp, args.Error(1)
}

func (m *mockAnalytics) GetAnalyticsSummary(ctx context.Context, creatorId string, period entity.Period) (*entity.AnalyticsSummary, error) {
	args := m.Called(ctx, creatorId, period)
	sum, _ := args.Get(0).(*entity.AnalyticsSummary)
	return sum, args.Error(1)
}

func (m *mockAnalytics) UpdateAnalyticsForOrder(ctx context.Context, creatorId, orderId string, amount decimal.Decimal, occasion string, orderDate time.Time) error {
	return m.Called(ctx, creatorId, orderId, amount, occasion, orderDate).Error(0)
}

func (m *mockAnalytics) ProcessHistoricalData(ctx context.Context, creatorId string) (*entity.BackfillReport, error) {
	args := m.Called(ctx, creatorId)
	rep, _ := args.Get(0).(*entity.BackfillReport)
	return rep, args.Error(1)
}

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func newTestServer(a *mockAnalytics, health map[string]Pinger) *Server {
	return New(&Config{
		Backfill: ratelimit.Config{Window: time.Minute, Max: 1},
	}, a, health)
}

func do(t *testing.T, h http.Handler, method, target, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, target, nil)
	} else {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	out := map[string]any{}
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	}
	return w, out
}

func TestGetRevenueAnalytics(t *testing.T) {
	a := &mockAnalytics{}
	a.On("GetRevenueAnalytics", mock.Anything, "c1", mock.MatchedBy(func(f entity.RevenueFilter) bool {
		return f.Period == entity.Period7Days &&
			f.Occasion == entity.OccasionBirthday &&
			f.IncludeSubscriptions != nil && !*f.IncludeSubscriptions
	})).Return(&entity.AnalyticsResponse{CreatorID: "c1", Period: entity.Period7Days}, nil)

	h := newTestServer(a, nil).Router()
	w, body := do(t, h, http.MethodGet, "/api/analytics/c1/revenue?period=7d&occasionType=birthday&includeSubscriptions=false", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "c1", body["creatorId"])
	assert.Equal(t, "7d", body["period"])
	a.AssertExpectations(t)
}

func TestGetRevenueAnalyticsDefaultsPeriod(t *testing.T) {
	a := &mockAnalytics{}
	a.On("GetRevenueAnalytics", mock.Anything, "c1", mock.MatchedBy(func(f entity.RevenueFilter) bool {
		return f.Period == entity.Period30Days && f.WithSubscriptions()
	})).Return(&entity.AnalyticsResponse{CreatorID: "c1"}, nil)

	w, _ := do(t, newTestServer(a, nil).Router(), http.MethodGet, "/api/analytics/c1/revenue", "")
	assert.Equal(t, http.StatusOK, w.Code)
	a.AssertExpectations(t)
}

func TestGetRevenueAnalyticsInvalidQuery(t *testing.T) {
	a := &mockAnalytics{}
	h := newTestServer(a, nil).Router()

	w, body := do(t, h, http.MethodGet, "/api/analytics/c1/revenue?period=2w", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	fields, ok := body["fields"].(map[string]any)
	require.True(t, ok, body)
	assert.Contains(t, fields, "period")

	w, body = do(t, h, http.MethodGet, "/api/analytics/c1/revenue?period=custom&startDate=2024-03-10", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	fields, ok = body["fields"].(map[string]any)
	require.True(t, ok, body)
	assert.Contains(t, fields, "endDate")

	a.AssertNumberOfCalls(t, "GetRevenueAnalytics", 0)
}

func TestErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		text   bool
	}{
		{"invalid filter", fmt.Errorf("range too long: %w", gerr.InvalidFilter), http.StatusBadRequest, true},
		{"store down", fmt.Errorf("%w: totals: timeout", gerr.DataStoreUnavailable), http.StatusServiceUnavailable, true},
		{"internal", errors.New("boom"), http.StatusInternalServerError, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := &mockAnalytics{}
			a.On("GetRevenueAnalytics", mock.Anything, "c1", mock.Anything).Return(nil, tt.err)

			w, body := do(t, newTestServer(a, nil).Router(), http.MethodGet, "/api/analytics/c1/revenue?period=90d", "")
			assert.Equal(t, tt.status, w.Code)
			if tt.text {
				assert.Equal(t, tt.err.Error(), body["error"])
			} else {
				assert.NotContains(t, body, "error")
			}
		})
	}
}

func TestGetAnalyticsSummary(t *testing.T) {
	a := &mockAnalytics{}
	a.On("GetAnalyticsSummary", mock.Anything, "c1", entity.Period30Days).
		Return(&entity.AnalyticsSummary{TotalOrders: 3, PeriodLabel: "Last 30 days"}, nil)
	h := newTestServer(a, nil).Router()

	w, body := do(t, h, http.MethodGet, "/api/analytics/c1/summary", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 3, body["totalOrders"])

	w, _ = do(t, h, http.MethodGet, "/api/analytics/c1/summary?period=custom", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	a.AssertNumberOfCalls(t, "GetAnalyticsSummary", 1)
}

func TestPostOrderUpdate(t *testing.T) {
	a := &mockAnalytics{}
	orderDate := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	a.On("UpdateAnalyticsForOrder", mock.Anything, "c1", "o1",
		mock.MatchedBy(func(d decimal.Decimal) bool { return d.Equal(decimal.RequireFromString("49.99")) }),
		"Birthday shoutout",
		mock.MatchedBy(func(t time.Time) bool { return t.Equal(orderDate) }),
	).Return(nil)
	h := newTestServer(a, nil).Router()

	w, _ := do(t, h, http.MethodPost, "/api/analytics/c1/orders",
		`{"orderId":"o1","amount":49.99,"occasion":"Birthday shoutout","orderDate":"2024-03-10T12:00:00Z"}`)
	assert.Equal(t, http.StatusNoContent, w.Code)
	a.AssertExpectations(t)
}

func TestPostOrderUpdateInvalid(t *testing.T) {
	a := &mockAnalytics{}
	h := newTestServer(a, nil).Router()

	w, body := do(t, h, http.MethodPost, "/api/analytics/c1/orders",
		`{"amount":-1,"orderDate":"2024-03-10T12:00:00Z"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	fields, ok := body["fields"].(map[string]any)
	require.True(t, ok, body)
	assert.Contains(t, fields, "orderId")
	assert.Contains(t, fields, "amount")
	a.AssertNumberOfCalls(t, "UpdateAnalyticsForOrder", 0)
}

func TestPostOrderUpdateNotFound(t *testing.T) {
	a := &mockAnalytics{}
	a.On("UpdateAnalyticsForOrder", mock.Anything, "c1", "missing", mock.Anything, mock.Anything, mock.Anything).
		Return(fmt.Errorf("order missing: %w", gerr.OrderNotFound))

	w, _ := do(t, newTestServer(a, nil).Router(), http.MethodPost, "/api/analytics/c1/orders",
		`{"orderId":"missing","amount":"10","orderDate":"2024-03-10T12:00:00Z"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPostBackfillRateLimited(t *testing.T) {
	a := &mockAnalytics{}
	a.On("ProcessHistoricalData", mock.Anything, "c1").
		Return(&entity.BackfillReport{RunID: "r1", CreatorID: "c1", Scanned: 2, Processed: 2}, nil)
	h := newTestServer(a, nil).Router()

	w, body := do(t, h, http.MethodPost, "/api/analytics/c1/backfill", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "r1", body["runId"])
	assert.EqualValues(t, 2, body["processed"])

	w, _ = do(t, h, http.MethodPost, "/api/analytics/c1/backfill", "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	a.AssertNumberOfCalls(t, "ProcessHistoricalData", 1)
}

func TestGetHealth(t *testing.T) {
	ok := pingerFunc(func(context.Context) error { return nil })
	down := pingerFunc(func(context.Context) error { return errors.New("connection refused") })

	w, body := do(t, newTestServer(&mockAnalytics{}, map[string]Pinger{"mysql": ok}).Router(), http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", body["status"])

	w, body = do(t, newTestServer(&mockAnalytics{}, map[string]Pinger{"mysql": ok, "redis": down}).Router(), http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "degraded", body["status"])
	assert.Equal(t, map[string]any{"mysql": "ok", "redis": "connection refused"}, body["services"])
}

func TestIsOriginAllowed(t *testing.T) {
	assert.True(t, isOriginAllowed("http://localhost:3000", nil))
	assert.True(t, isOriginAllowed("https://app.example.com", []string{"https://app.example.com"}))
	assert.True(t, isOriginAllowed("https://any.example.com", []string{"*"}))
	assert.False(t, isOriginAllowed("https://evil.example.com", []string{"https://app.example.com"}))
}
