package backfill

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// SweepOnce backfills every creator returned by the lister, at most
// MaxConcurrentCreators at a time. A failing creator is logged and does not
// stop the others. It returns the number of orders processed.
func (w *Worker) SweepOnce(ctx context.Context) (int, error) {
	creators, err := w.lister.GetCreatorsWithUnprocessedOrders(ctx, w.c.CreatorsPerSweep)
	if err != nil {
		return 0, fmt.Errorf("can't get creators with unprocessed orders: %w", err)
	}
	if len(creators) == 0 {
		return 0, nil
	}

	var processed atomic.Int64
	var g errgroup.Group
	g.SetLimit(w.c.MaxConcurrentCreators)
	for _, id := range creators {
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			rep, err := w.processor.ProcessHistoricalData(ctx, id)
			if rep != nil {
				processed.Add(int64(rep.Processed))
			}
			if err != nil {
				slog.Default().ErrorContext(ctx, "can't backfill creator",
					slog.String("creator_id", id),
					slog.String("err", err.Error()),
				)
				return nil
			}
			return nil
		})
	}
	_ = g.Wait()

	slog.Default().InfoContext(ctx, "backfill sweep finished",
		slog.Int("creators", len(creators)),
		slog.Int64("processed", processed.Load()),
	)
	return int(processed.Load()), ctx.Err()
}
