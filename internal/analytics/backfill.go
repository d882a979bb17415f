package analytics

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/jekabolt/creator-analytics/internal/entity"
	gerr "github.com/jekabolt/creator-analytics/internal/errors"
)

// ProcessHistoricalData folds every completed, unprocessed order of the
// creator into the aggregates. Orders are handled one at a time; a failing
// order is logged and left unprocessed for the next run. Concurrent calls for
// the same creator share one run and its report. The shared run is not
// cancelled when the caller that started it goes away.
func (e *Engine) ProcessHistoricalData(ctx context.Context, creatorId string) (*entity.BackfillReport, error) {
	if strings.TrimSpace(creatorId) == "" {
		return nil, fmt.Errorf("creator id is required: %w", gerr.InvalidFilter)
	}
	v, err, shared := e.backfills.Do(creatorId, func() (any, error) {
		return e.backfill(context.WithoutCancel(ctx), creatorId)
	})
	var rep *entity.BackfillReport
	if r, ok := v.(*entity.BackfillReport); ok && r != nil {
		cp := *r
		rep = &cp
	}
	if err != nil {
		return rep, err
	}
	if shared {
		slog.Default().DebugContext(ctx, "joined in-flight backfill",
			slog.String("creator_id", creatorId),
			slog.String("run_id", rep.RunID),
		)
	}
	return rep, nil
}

// backfill processes the creator's unprocessed orders until done or ctx ends.
// An interrupted run returns its partial report with the context error. Cached
// responses are dropped whenever at least one order was committed.
func (e *Engine) backfill(ctx context.Context, creatorId string) (*entity.BackfillReport, error) {
	rep := &entity.BackfillReport{
		RunID:     uuid.NewString(),
		CreatorID: creatorId,
	}
	orders, err := e.store.GetUnprocessedOrders(ctx, creatorId)
	if err != nil {
		slog.Default().ErrorContext(ctx, "can't get unprocessed orders",
			slog.String("run_id", rep.RunID),
			slog.String("creator_id", creatorId),
			slog.String("err", err.Error()),
		)
		return nil, gerr.DataStoreUnavailable
	}
	rep.Scanned = len(orders)

	defer func() {
		if rep.Processed > 0 {
			e.gw.invalidateAll(context.WithoutCancel(ctx), creatorId)
		}
	}()

	for _, o := range orders {
		if err := ctx.Err(); err != nil {
			slog.Default().WarnContext(ctx, "analytics backfill interrupted",
				slog.String("run_id", rep.RunID),
				slog.String("creator_id", creatorId),
				slog.Int("processed", rep.Processed),
				slog.Int("remaining", rep.Scanned-rep.Processed-rep.Skipped-rep.Failed),
			)
			return rep, fmt.Errorf("backfill %s interrupted: %w", rep.RunID, err)
		}
		if o.AnalyticsState == entity.AnalyticsProcessed {
			rep.Skipped++
			continue
		}
		applied, err := e.applyOrder(ctx, entity.OrderAggregate{
			CreatorID: creatorId,
			OrderID:   o.ID,
			Day:       entity.TruncateDay(o.CreatedAt.UTC()),
			Occasion:  orderOccasion(o),
			Amount:    o.Amount,
		})
		if err != nil {
			slog.Default().ErrorContext(ctx, "can't backfill order",
				slog.String("run_id", rep.RunID),
				slog.String("creator_id", creatorId),
				slog.String("order_id", o.ID),
				slog.String("err", err.Error()),
			)
			rep.Failed++
			continue
		}
		if applied {
			rep.Processed++
		} else {
			rep.Skipped++
		}
	}

	slog.Default().InfoContext(ctx, "analytics backfill finished",
		slog.String("run_id", rep.RunID),
		slog.String("creator_id", creatorId),
		slog.Int("scanned", rep.Scanned),
		slog.Int("processed", rep.Processed),
		slog.Int("skipped", rep.Skipped),
		slog.Int("failed", rep.Failed),
	)
	return rep, nil
}
