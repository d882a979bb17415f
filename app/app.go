package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jekabolt/creator-analytics/config"
	"github.com/jekabolt/creator-analytics/internal/analytics"
	httpapi "github.com/jekabolt/creator-analytics/internal/api/http"
	"github.com/jekabolt/creator-analytics/internal/backfill"
	"github.com/jekabolt/creator-analytics/internal/cache"
	"github.com/jekabolt/creator-analytics/internal/store"
)

// App is the main application
type App struct {
	c          *config.Config
	db         *store.MYSQLStore
	closeCache func() error
	engine     *analytics.Engine
	bw         *backfill.Worker
	hs         *httpapi.Server
	done       chan struct{}
}

// New returns a new instance of App
func New(c *config.Config) *App {
	return &App{
		c:    c,
		done: make(chan struct{}),
	}
}

// Init connects the data store and cache and builds the analytics engine
// without starting any background work.
func (a *App) Init(ctx context.Context) error {
	var err error
	a.db, err = store.New(ctx, a.c.DB)
	if err != nil {
		slog.Default().ErrorContext(ctx, "couldn't connect to mysql",
			slog.String("err", err.Error()),
		)
		return err
	}

	cc, closeCache, err := cache.New(ctx, a.c.Redis)
	if err != nil {
		a.db.Close()
		slog.Default().ErrorContext(ctx, "couldn't connect to redis",
			slog.String("err", err.Error()),
		)
		return err
	}
	a.closeCache = closeCache

	a.engine = analytics.New(&a.c.Analytics, a.db, cc)

	health := map[string]httpapi.Pinger{"mysql": a.db}
	if p, ok := cc.(httpapi.Pinger); ok {
		health["redis"] = p
	}
	a.hs = httpapi.New(&a.c.HTTP, a.engine, health)
	a.bw = backfill.New(&a.c.Backfill, a.db, a.engine)
	return nil
}

// Start starts the app
func (a *App) Start(ctx context.Context) error {
	slog.Default().InfoContext(ctx, "starting creator analytics")

	if err := a.Init(ctx); err != nil {
		return err
	}

	if a.c.Backfill.Enabled {
		if err := a.bw.Start(ctx); err != nil {
			slog.Default().ErrorContext(ctx, "failed to start backfill worker",
				slog.String("err", err.Error()),
			)
			return err
		}
	}

	if err := a.hs.Start(ctx); err != nil {
		slog.Default().ErrorContext(ctx, "cannot start http server",
			slog.String("err", err.Error()),
		)
		return err
	}

	go func() {
		<-a.hs.Done()
		a.finish()
	}()
	return nil
}

// Backfill runs the historical backfill for one creator, or a single sweep
// over every creator with unprocessed orders when creatorId is empty.
func (a *App) Backfill(ctx context.Context, creatorId string) error {
	if creatorId != "" {
		rep, err := a.engine.ProcessHistoricalData(ctx, creatorId)
		if err != nil {
			return fmt.Errorf("backfill creator %s: %w", creatorId, err)
		}
		slog.Default().InfoContext(ctx, "backfill finished",
			slog.String("run_id", rep.RunID),
			slog.String("creator_id", rep.CreatorID),
			slog.Int("scanned", rep.Scanned),
			slog.Int("processed", rep.Processed),
			slog.Int("skipped", rep.Skipped),
			slog.Int("failed", rep.Failed),
		)
		return nil
	}
	n, err := a.bw.SweepOnce(ctx)
	if err != nil {
		return fmt.Errorf("backfill sweep: %w", err)
	}
	slog.Default().InfoContext(ctx, "backfill command finished", slog.Int("processed", n))
	return nil
}

// Stop stops the application and waits for all services to exit
func (a *App) Stop(ctx context.Context) {
	if a.hs != nil {
		if err := a.hs.Stop(ctx); err != nil {
			slog.Default().ErrorContext(ctx, "failed to stop http server",
				slog.String("err", err.Error()),
			)
		}
	}
	if a.bw != nil && a.c.Backfill.Enabled {
		if err := a.bw.Stop(); err != nil {
			slog.Default().ErrorContext(ctx, "failed to stop backfill worker",
				slog.String("err", err.Error()),
			)
		}
	}
	a.Close(ctx)
}

// Close releases the cache and database connections.
func (a *App) Close(ctx context.Context) {
	if a.closeCache != nil {
		if err := a.closeCache(); err != nil {
			slog.Default().ErrorContext(ctx, "failed to close cache",
				slog.String("err", err.Error()),
			)
		}
		a.closeCache = nil
	}
	if a.db != nil {
		a.db.Close()
		a.db = nil
	}
}

func (a *App) finish() {
	close(a.done)
}

// Done returns a channel that is closed after the http server has exited
func (a *App) Done() <-chan struct{} {
	return a.done
}
