package analytics

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jekabolt/creator-analytics/internal/dependency"
	"github.com/jekabolt/creator-analytics/internal/entity"
	gerr "github.com/jekabolt/creator-analytics/internal/errors"
	"github.com/shopspring/decimal"
)

// UpdateAnalyticsForOrder folds one completed order into the daily and
// per-occasion aggregates and invalidates the creator's cached responses.
// occasion may be a category name or free text to classify. Orders that were
// already processed are left untouched.
func (e *Engine) UpdateAnalyticsForOrder(ctx context.Context, creatorId, orderId string, amount decimal.Decimal, occasion string, orderDate time.Time) error {
	switch {
	case strings.TrimSpace(creatorId) == "":
		return fmt.Errorf("creator id is required: %w", gerr.InvalidOrderUpdate)
	case strings.TrimSpace(orderId) == "":
		return fmt.Errorf("order id is required: %w", gerr.InvalidOrderUpdate)
	case amount.IsNegative():
		return fmt.Errorf("amount must not be negative: %w", gerr.InvalidOrderUpdate)
	case orderDate.IsZero():
		return fmt.Errorf("order date is required: %w", gerr.InvalidOrderUpdate)
	}

	agg := entity.OrderAggregate{
		CreatorID: creatorId,
		OrderID:   orderId,
		Day:       entity.TruncateDay(orderDate.UTC()),
		Occasion:  resolveOccasion(occasion),
		Amount:    amount,
	}
	applied, err := e.applyOrder(ctx, agg)
	if err != nil {
		return fmt.Errorf("can't update analytics for order %s: %w", orderId, err)
	}
	if !applied {
		slog.Default().InfoContext(ctx, "order already counted in analytics",
			slog.String("creator_id", creatorId),
			slog.String("order_id", orderId),
		)
		return nil
	}
	e.gw.invalidateAll(ctx, creatorId)
	return nil
}

// applyOrder claims the order, upserts its aggregates and marks it processed
// in one transaction. It reports false when the order was not unprocessed.
func (e *Engine) applyOrder(ctx context.Context, agg entity.OrderAggregate) (bool, error) {
	var applied bool
	err := e.store.Tx(ctx, func(ctx context.Context, rep dependency.AnalyticsStore) error {
		applied = false
		state, err := rep.ClaimOrder(ctx, agg.CreatorID, agg.OrderID)
		if err != nil {
			return err
		}
		if state != entity.AnalyticsUnprocessed {
			return nil
		}
		if err := rep.ApplyOrderAggregate(ctx, agg); err != nil {
			return err
		}
		if err := rep.MarkOrderProcessed(ctx, agg.CreatorID, agg.OrderID); err != nil {
			return err
		}
		applied = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return applied, nil
}
