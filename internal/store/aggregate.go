package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jekabolt/creator-analytics/internal/entity"
	gerr "github.com/jekabolt/creator-analytics/internal/errors"
)

func (ms *MYSQLStore) GetUnprocessedOrders(ctx context.Context, creatorId string) ([]entity.CompletedOrder, error) {
	query := `
		SELECT ` + completedOrderColumns + `
		FROM booking_order o
		LEFT JOIN customer_profile cp ON cp.id = o.customer_id
		WHERE o.creator_id = :creatorId AND o.status = :status
		AND o.analytics_state = :state
		ORDER BY o.created_at, o.id
	`
	rows, err := QueryListNamed[entity.CompletedOrder](ctx, ms.DB(), query, map[string]any{
		"creatorId": creatorId,
		"status":    entity.OrderStatusCompleted,
		"state":     string(entity.AnalyticsUnprocessed),
	})
	if err != nil {
		return nil, fmt.Errorf("can't get unprocessed orders: %w", err)
	}
	return rows, nil
}

func (ms *MYSQLStore) GetCreatorsWithUnprocessedOrders(ctx context.Context, limit int) ([]string, error) {
	query := `
		SELECT DISTINCT creator_id
		FROM booking_order
		WHERE status = :status AND analytics_state = :state
		ORDER BY creator_id
		LIMIT :limit
	`
	rows, err := QueryListNamed[struct {
		CreatorID string `db:"creator_id"`
	}](ctx, ms.DB(), query, map[string]any{
		"status": entity.OrderStatusCompleted,
		"state":  string(entity.AnalyticsUnprocessed),
		"limit":  limit,
	})
	if err != nil {
		return nil, fmt.Errorf("can't get creators with unprocessed orders: %w", err)
	}
	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.CreatorID)
	}
	return ids, nil
}

// ClaimOrder locks the completed order row and moves it to processing when it
// is still unprocessed. Orders in any other booking status are reported as not
// found. Callers run it inside Tx so the lock spans the aggregate upsert.
func (ms *MYSQLStore) ClaimOrder(ctx context.Context, creatorId, orderId string) (entity.AnalyticsState, error) {
	params := map[string]any{
		"creatorId": creatorId,
		"orderId":   orderId,
		"status":    entity.OrderStatusCompleted,
	}
	r, err := QueryNamedOne[struct {
		State entity.AnalyticsState `db:"analytics_state"`
	}](ctx, ms.DB(), `
		SELECT analytics_state
		FROM booking_order
		WHERE id = :orderId AND creator_id = :creatorId AND status = :status
		FOR UPDATE
	`, params)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("completed order %s: %w", orderId, gerr.OrderNotFound)
		}
		return "", fmt.Errorf("can't lock order: %w", err)
	}
	if r.State != entity.AnalyticsUnprocessed {
		return r.State, nil
	}

	params["state"] = string(entity.AnalyticsProcessing)
	_, err = ExecNamed(ctx, ms.DB(), `
		UPDATE booking_order SET analytics_state = :state
		WHERE id = :orderId AND creator_id = :creatorId
	`, params)
	if err != nil {
		return "", fmt.Errorf("can't claim order: %w", err)
	}
	return entity.AnalyticsUnprocessed, nil
}

func (ms *MYSQLStore) ApplyOrderAggregate(ctx context.Context, agg entity.OrderAggregate) error {
	params := map[string]any{
		"creatorId": agg.CreatorID,
		"day":       agg.Day.Format(dayLayout),
		"occasion":  string(agg.Occasion),
		"amount":    agg.Amount,
	}
	_, err := ExecNamed(ctx, ms.DB(), `
		INSERT INTO creator_daily_revenue (creator_id, day, revenue, order_count)
		VALUES (:creatorId, :day, :amount, 1)
		ON DUPLICATE KEY UPDATE revenue = revenue + VALUES(revenue), order_count = order_count + 1
	`, params)
	if err != nil {
		return fmt.Errorf("can't upsert daily revenue: %w", err)
	}
	_, err = ExecNamed(ctx, ms.DB(), `
		INSERT INTO creator_daily_occasion (creator_id, day, occasion, revenue, order_count)
		VALUES (:creatorId, :day, :occasion, :amount, 1)
		ON DUPLICATE KEY UPDATE revenue = revenue + VALUES(revenue), order_count = order_count + 1
	`, params)
	if err != nil {
		return fmt.Errorf("can't upsert daily occasion revenue: %w", err)
	}
	return nil
}

func (ms *MYSQLStore) MarkOrderProcessed(ctx context.Context, creatorId, orderId string) error {
	n, err := ExecNamed(ctx, ms.DB(), `
		UPDATE booking_order
		SET analytics_state = :processed, analytics_processed_at = :now
		WHERE id = :orderId AND creator_id = :creatorId AND analytics_state = :processing
	`, map[string]any{
		"creatorId":  creatorId,
		"orderId":    orderId,
		"processed":  string(entity.AnalyticsProcessed),
		"processing": string(entity.AnalyticsProcessing),
		"now":        ms.Now(),
	})
	if err != nil {
		return fmt.Errorf("can't mark order processed: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("order %s was not in processing state", orderId)
	}
	return nil
}
