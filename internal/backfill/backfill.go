package backfill

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/jekabolt/creator-analytics/internal/entity"
)

// Config holds configuration for the backfill sweeper.
type Config struct {
	Enabled               bool          `mapstructure:"enabled"`
	WorkerInterval        time.Duration `mapstructure:"worker_interval"`
	MaxConcurrentCreators int           `mapstructure:"max_concurrent_creators"`
	CreatorsPerSweep      int           `mapstructure:"creators_per_sweep"`
}

// DefaultConfig returns default configuration values.
func DefaultConfig() Config {
	return Config{
		Enabled:               true,
		WorkerInterval:        time.Hour,
		MaxConcurrentCreators: 4,
		CreatorsPerSweep:      500,
	}
}

// CreatorLister finds creators with completed orders missing from the aggregates.
type CreatorLister interface {
	GetCreatorsWithUnprocessedOrders(ctx context.Context, limit int) ([]string, error)
}

// Processor backfills one creator.
type Processor interface {
	ProcessHistoricalData(ctx context.Context, creatorId string) (*entity.BackfillReport, error)
}

// Worker periodically backfills every creator that has unprocessed orders.
// Creators are handled concurrently, each creator's orders sequentially.
type Worker struct {
	lister    CreatorLister
	processor Processor
	c         *Config
	sched     gocron.Scheduler
	ctx       context.Context
	stop      context.CancelFunc
}

// New creates a new backfill worker.
func New(c *Config, lister CreatorLister, processor Processor) *Worker {
	dc := DefaultConfig()
	if c == nil {
		c = &dc
	}
	if c.WorkerInterval <= 0 {
		c.WorkerInterval = dc.WorkerInterval
	}
	if c.MaxConcurrentCreators <= 0 {
		c.MaxConcurrentCreators = dc.MaxConcurrentCreators
	}
	if c.CreatorsPerSweep <= 0 {
		c.CreatorsPerSweep = dc.CreatorsPerSweep
	}
	return &Worker{
		lister:    lister,
		processor: processor,
		c:         c,
	}
}

// Start schedules the sweep every WorkerInterval, the first one immediately.
func (w *Worker) Start(ctx context.Context) error {
	if w.ctx != nil && w.stop != nil {
		return fmt.Errorf("backfill worker already started")
	}
	s, err := gocron.NewScheduler(gocron.WithLocation(time.UTC))
	if err != nil {
		return fmt.Errorf("can't create backfill scheduler: %w", err)
	}
	jobCtx, stop := context.WithCancel(ctx)
	w.ctx, w.stop = jobCtx, stop
	_, err = s.NewJob(
		gocron.DurationJob(w.c.WorkerInterval),
		gocron.NewTask(func() {
			if _, err := w.SweepOnce(jobCtx); err != nil {
				slog.Default().ErrorContext(jobCtx, "can't sweep unprocessed orders",
					slog.String("err", err.Error()),
				)
			}
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		w.stop()
		w.ctx, w.stop = nil, nil
		return fmt.Errorf("can't schedule backfill job: %w", err)
	}
	w.sched = s
	s.Start()
	slog.Default().InfoContext(ctx, "backfill worker started",
		slog.Duration("interval", w.c.WorkerInterval),
		slog.Int("max_concurrent_creators", w.c.MaxConcurrentCreators),
	)
	return nil
}

// Stop stops the worker gracefully.
func (w *Worker) Stop() error {
	if w.stop == nil {
		return fmt.Errorf("backfill worker already stopped or not started")
	}
	w.stop()
	err := w.sched.Shutdown()
	w.stop = nil
	w.ctx = nil
	w.sched = nil
	if err != nil {
		return fmt.Errorf("can't shutdown backfill scheduler: %w", err)
	}
	return nil
}
