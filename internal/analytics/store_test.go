package analytics

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jekabolt/creator-analytics/internal/dependency"
	"github.com/jekabolt/creator-analytics/internal/entity"
	gerr "github.com/jekabolt/creator-analytics/internal/errors"
	"github.com/shopspring/decimal"
)

type dayAgg struct {
	revenue decimal.Decimal
	orders  int
}

// fakeStore is an in-memory AnalyticsStore. fail makes the named method
// return an error. afterTx, when set, runs after every committed transaction.
type fakeStore struct {
	mu       sync.Mutex
	txMu     sync.Mutex
	orders   []entity.CompletedOrder
	statuses map[string]string
	subs     []entity.SubscriptionRecord
	daily    map[string]map[string]*dayAgg
	occasion map[string]map[string]map[entity.Occasion]*dayAgg
	fail     map[string]error
	failFor  map[string]error
	calls    map[string]int
	afterTx  func()
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		statuses: map[string]string{},
		daily:    map[string]map[string]*dayAgg{},
		occasion: map[string]map[string]map[entity.Occasion]*dayAgg{},
		fail:     map[string]error{},
		failFor:  map[string]error{},
		calls:    map[string]int{},
	}
}

var _ dependency.AnalyticsStore = (*fakeStore)(nil)

func (s *fakeStore) hit(method string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[method]++
	return s.fail[method]
}

func (s *fakeStore) callCount(method string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[method]
}

func (s *fakeStore) addOrder(o entity.CompletedOrder) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if o.AnalyticsState == "" {
		o.AnalyticsState = entity.AnalyticsUnprocessed
	}
	s.orders = append(s.orders, o)
}

// addOrderStatus stores an order whose booking status is not completed.
func (s *fakeStore) addOrderStatus(o entity.CompletedOrder, status string) {
	s.addOrder(o)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses[o.ID] = status
}

func (s *fakeStore) completed(o entity.CompletedOrder) bool {
	st, ok := s.statuses[o.ID]
	return !ok || st == entity.OrderStatusCompleted
}

func (s *fakeStore) addSubscription(r entity.SubscriptionRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, r)
}

func inRange(t, from, to time.Time) bool {
	return !t.Before(from) && t.Before(to)
}

func parseDay(k string) time.Time {
	t, _ := time.Parse("2006-01-02", k)
	return t
}

func (s *fakeStore) GetDailyRevenue(ctx context.Context, creatorId string, from, to time.Time) ([]entity.DailyRevenueRow, error) {
	if err := s.hit("GetDailyRevenue"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var rows []entity.DailyRevenueRow
	for k, a := range s.daily[creatorId] {
		d := parseDay(k)
		if inRange(d, from, to) {
			rows = append(rows, entity.DailyRevenueRow{Day: d, Revenue: a.revenue, OrderCount: a.orders})
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Day.Before(rows[j].Day) })
	return rows, nil
}

func (s *fakeStore) GetDailyOccasionRevenue(ctx context.Context, creatorId string, occasion entity.Occasion, from, to time.Time) ([]entity.DailyRevenueRow, error) {
	if err := s.hit("GetDailyOccasionRevenue"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var rows []entity.DailyRevenueRow
	for k, byOcc := range s.occasion[creatorId] {
		d := parseDay(k)
		if a, ok := byOcc[occasion]; ok && inRange(d, from, to) {
			rows = append(rows, entity.DailyRevenueRow{Day: d, Revenue: a.revenue, OrderCount: a.orders})
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Day.Before(rows[j].Day) })
	return rows, nil
}

func (s *fakeStore) dailyRows(creatorId string, occasion entity.Occasion, from, to time.Time) []entity.DailyRevenueRow {
	var rows []entity.DailyRevenueRow
	if occasion == "" {
		for k, a := range s.daily[creatorId] {
			if d := parseDay(k); inRange(d, from, to) {
				rows = append(rows, entity.DailyRevenueRow{Day: d, Revenue: a.revenue, OrderCount: a.orders})
			}
		}
		return rows
	}
	for k, byOcc := range s.occasion[creatorId] {
		if d := parseDay(k); inRange(d, from, to) {
			if a, ok := byOcc[occasion]; ok {
				rows = append(rows, entity.DailyRevenueRow{Day: d, Revenue: a.revenue, OrderCount: a.orders})
			}
		}
	}
	return rows
}

func (s *fakeStore) GetMonthlyRevenue(ctx context.Context, creatorId string, occasion entity.Occasion, from, to time.Time) ([]entity.MonthlyRevenueRow, error) {
	if err := s.hit("GetMonthlyRevenue"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	byMonth := map[time.Time]*entity.MonthlyRevenueRow{}
	for _, r := range s.dailyRows(creatorId, occasion, from, to) {
		m := time.Date(r.Day.Year(), r.Day.Month(), 1, 0, 0, 0, 0, time.UTC)
		cur, ok := byMonth[m]
		if !ok {
			cur = &entity.MonthlyRevenueRow{Month: m, Revenue: decimal.Zero}
			byMonth[m] = cur
		}
		cur.Revenue = cur.Revenue.Add(r.Revenue)
		cur.OrderCount += r.OrderCount
	}
	rows := make([]entity.MonthlyRevenueRow, 0, len(byMonth))
	for _, r := range byMonth {
		rows = append(rows, *r)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Month.Before(rows[j].Month) })
	return rows, nil
}

func (s *fakeStore) GetOccasionTotals(ctx context.Context, creatorId string, from, to time.Time) ([]entity.OccasionTotalRow, error) {
	if err := s.hit("GetOccasionTotals"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	totals := map[entity.Occasion]*entity.OccasionTotalRow{}
	for k, byOcc := range s.occasion[creatorId] {
		if !inRange(parseDay(k), from, to) {
			continue
		}
		for o, a := range byOcc {
			cur, ok := totals[o]
			if !ok {
				cur = &entity.OccasionTotalRow{Occasion: o, Revenue: decimal.Zero}
				totals[o] = cur
			}
			cur.Revenue = cur.Revenue.Add(a.revenue)
			cur.OrderCount += a.orders
		}
	}
	rows := make([]entity.OccasionTotalRow, 0, len(totals))
	for _, r := range totals {
		rows = append(rows, *r)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Revenue.GreaterThan(rows[j].Revenue) })
	return rows, nil
}

func (s *fakeStore) GetTotals(ctx context.Context, creatorId string, occasion entity.Occasion, from, to time.Time) (entity.TotalsSnapshot, error) {
	if err := s.hit("GetTotals"); err != nil {
		return entity.TotalsSnapshot{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	t := entity.TotalsSnapshot{TotalRevenue: decimal.Zero}
	for _, r := range s.dailyRows(creatorId, occasion, from, to) {
		t.TotalRevenue = t.TotalRevenue.Add(r.Revenue)
		t.TotalOrders += r.OrderCount
	}
	return t, nil
}

func (s *fakeStore) GetCompletedOrders(ctx context.Context, creatorId string, from, to time.Time) ([]entity.CompletedOrder, error) {
	if err := s.hit("GetCompletedOrders"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var res []entity.CompletedOrder
	for _, o := range s.orders {
		if o.CreatorID == creatorId && s.completed(o) && inRange(o.CreatedAt, from, to) {
			res = append(res, o)
		}
	}
	return res, nil
}

func (s *fakeStore) GetSubscriptions(ctx context.Context, creatorId string, statuses ...entity.SubscriptionStatus) ([]entity.SubscriptionRecord, error) {
	if err := s.hit("GetSubscriptions"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var res []entity.SubscriptionRecord
	for _, r := range s.subs {
		if r.CreatorID != creatorId {
			continue
		}
		for _, st := range statuses {
			if r.Status == st {
				res = append(res, r)
				break
			}
		}
	}
	return res, nil
}

func (s *fakeStore) GetSubscriptionCounts(ctx context.Context, creatorId string) (entity.SubscriptionCounts, error) {
	if err := s.hit("GetSubscriptionCounts"); err != nil {
		return entity.SubscriptionCounts{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c := entity.SubscriptionCounts{MRR: decimal.Zero}
	for _, r := range s.subs {
		if r.CreatorID != creatorId {
			continue
		}
		switch r.Status {
		case entity.SubscriptionActive:
			c.Active++
			c.MRR = c.MRR.Add(r.TierPrice)
		case entity.SubscriptionPaused:
			c.Paused++
		}
	}
	return c, nil
}

func (s *fakeStore) GetUnprocessedOrders(ctx context.Context, creatorId string) ([]entity.CompletedOrder, error) {
	if err := s.hit("GetUnprocessedOrders"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var res []entity.CompletedOrder
	for _, o := range s.orders {
		if o.CreatorID == creatorId && s.completed(o) && o.AnalyticsState == entity.AnalyticsUnprocessed {
			res = append(res, o)
		}
	}
	return res, nil
}

func (s *fakeStore) GetCreatorsWithUnprocessedOrders(ctx context.Context, limit int) ([]string, error) {
	if err := s.hit("GetCreatorsWithUnprocessedOrders"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := map[string]bool{}
	var res []string
	for _, o := range s.orders {
		if s.completed(o) && o.AnalyticsState == entity.AnalyticsUnprocessed && !seen[o.CreatorID] {
			seen[o.CreatorID] = true
			res = append(res, o.CreatorID)
		}
	}
	sort.Strings(res)
	if len(res) > limit {
		res = res[:limit]
	}
	return res, nil
}

func (s *fakeStore) orderIndex(creatorId, orderId string) int {
	for i, o := range s.orders {
		if o.ID == orderId && o.CreatorID == creatorId {
			return i
		}
	}
	return -1
}

func (s *fakeStore) ClaimOrder(ctx context.Context, creatorId, orderId string) (entity.AnalyticsState, error) {
	if err := s.hit("ClaimOrder"); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failFor[orderId]; err != nil {
		return "", err
	}
	i := s.orderIndex(creatorId, orderId)
	if i < 0 || !s.completed(s.orders[i]) {
		return "", fmt.Errorf("completed order %s: %w", orderId, gerr.OrderNotFound)
	}
	prev := s.orders[i].AnalyticsState
	if prev == entity.AnalyticsUnprocessed {
		s.orders[i].AnalyticsState = entity.AnalyticsProcessing
	}
	return prev, nil
}

func (s *fakeStore) ApplyOrderAggregate(ctx context.Context, agg entity.OrderAggregate) error {
	if err := s.hit("ApplyOrderAggregate"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	k := agg.Day.Format("2006-01-02")
	if s.daily[agg.CreatorID] == nil {
		s.daily[agg.CreatorID] = map[string]*dayAgg{}
		s.occasion[agg.CreatorID] = map[string]map[entity.Occasion]*dayAgg{}
	}
	d, ok := s.daily[agg.CreatorID][k]
	if !ok {
		d = &dayAgg{revenue: decimal.Zero}
		s.daily[agg.CreatorID][k] = d
	}
	d.revenue = d.revenue.Add(agg.Amount)
	d.orders++

	if s.occasion[agg.CreatorID][k] == nil {
		s.occasion[agg.CreatorID][k] = map[entity.Occasion]*dayAgg{}
	}
	o, ok := s.occasion[agg.CreatorID][k][agg.Occasion]
	if !ok {
		o = &dayAgg{revenue: decimal.Zero}
		s.occasion[agg.CreatorID][k][agg.Occasion] = o
	}
	o.revenue = o.revenue.Add(agg.Amount)
	o.orders++
	return nil
}

func (s *fakeStore) MarkOrderProcessed(ctx context.Context, creatorId, orderId string) error {
	if err := s.hit("MarkOrderProcessed"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.orderIndex(creatorId, orderId)
	if i < 0 || s.orders[i].AnalyticsState != entity.AnalyticsProcessing {
		return fmt.Errorf("order %s is not processing", orderId)
	}
	s.orders[i].AnalyticsState = entity.AnalyticsProcessed
	return nil
}

// Tx serializes transactions and restores aggregates and order states when f
// fails.
func (s *fakeStore) Tx(ctx context.Context, f func(context.Context, dependency.AnalyticsStore) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	snap := s.snapshot()
	if err := f(ctx, s); err != nil {
		s.restore(snap)
		return err
	}
	if s.afterTx != nil {
		s.afterTx()
	}
	return nil
}

type fakeSnapshot struct {
	orders   []entity.CompletedOrder
	daily    map[string]map[string]dayAgg
	occasion map[string]map[string]map[entity.Occasion]dayAgg
}

func (s *fakeStore) snapshot() fakeSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := fakeSnapshot{
		orders:   append([]entity.CompletedOrder(nil), s.orders...),
		daily:    map[string]map[string]dayAgg{},
		occasion: map[string]map[string]map[entity.Occasion]dayAgg{},
	}
	for c, days := range s.daily {
		snap.daily[c] = map[string]dayAgg{}
		for k, a := range days {
			snap.daily[c][k] = *a
		}
	}
	for c, days := range s.occasion {
		snap.occasion[c] = map[string]map[entity.Occasion]dayAgg{}
		for k, byOcc := range days {
			snap.occasion[c][k] = map[entity.Occasion]dayAgg{}
			for o, a := range byOcc {
				snap.occasion[c][k][o] = *a
			}
		}
	}
	return snap
}

func (s *fakeStore) restore(snap fakeSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders = snap.orders
	s.daily = map[string]map[string]*dayAgg{}
	s.occasion = map[string]map[string]map[entity.Occasion]*dayAgg{}
	for c, days := range snap.daily {
		s.daily[c] = map[string]*dayAgg{}
		for k, a := range days {
			a := a
			s.daily[c][k] = &a
		}
	}
	for c, days := range snap.occasion {
		s.occasion[c] = map[string]map[entity.Occasion]*dayAgg{}
		for k, byOcc := range days {
			s.occasion[c][k] = map[entity.Occasion]*dayAgg{}
			for o, a := range byOcc {
				a := a
				s.occasion[c][k][o] = &a
			}
		}
	}
}
