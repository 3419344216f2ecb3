package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/pageview/pageview/internal/book"
	"github.com/pageview/pageview/internal/config"
	"github.com/pageview/pageview/internal/metrics"
	"github.com/pageview/pageview/internal/models"
	"github.com/pageview/pageview/internal/services"
	"github.com/pageview/pageview/internal/store"
	"github.com/pageview/pageview/internal/store/migrations"
	"github.com/pageview/pageview/pkg/scheduler"
)

const shutdownTimeout = 10 * time.Second

// app is the wiring shared by run and serve.
type app struct {
	cfg        *config.Configuration
	db         *sql.DB
	store      *store.Store
	metrics    *metrics.Prometheus
	engine     *scheduler.Engine
	categories *services.Categories
	content    *services.PageContentService
	thumbnails *services.ThumbnailService
	workers    *services.WorkerService
	book       *book.Book
}

func newApp(ctx context.Context, cfg *config.Configuration, folder string) (*app, error) {
	a := &app{cfg: cfg}
	if err := a.open(ctx, folder); err != nil {
		if cerr := a.close(); cerr != nil {
			zap.S().Named("app").Warnw("failed to release resources", "error", cerr)
		}
		return nil, err
	}
	return a, nil
}

// open wires the components in dependency order. On error the fields set so
// far are left for close.
func (a *app) open(ctx context.Context, folder string) (err error) {
	cfg := a.cfg

	zap.S().Named("app").Debugw("starting", "config", cfg.DebugMap())

	a.db, err = store.NewDB(store.DBPath(cfg.Store.DataFolder))
	if err != nil {
		return err
	}
	if err = migrations.Run(ctx, a.db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	a.store = store.NewStore(a.db)

	a.book, err = book.Open(folder, a.store.Thumbnails())
	if err != nil {
		return err
	}

	a.metrics = metrics.NewPrometheus()
	a.engine = scheduler.NewEngine(
		scheduler.WithMaxWorkers(cfg.Engine.MaxWorkers),
		scheduler.WithWorkerCount(cfg.Engine.WorkerCount),
		scheduler.WithLockOSThread(cfg.Engine.LockOSThread),
		scheduler.WithMetrics(a.metrics),
	)

	a.workers = services.NewWorkerService(a.engine, a.store.Preferences(), cfg.Engine.WorkerCount)
	if _, err = a.workers.Load(ctx); err != nil {
		return err
	}

	a.categories = services.NewCategories()
	if a.content, err = services.NewPageContentService(a.engine, a.categories); err != nil {
		return err
	}
	if a.thumbnails, err = services.NewThumbnailService(a.engine, a.categories); err != nil {
		return err
	}
	return nil
}

func (a *app) pages() []models.Page {
	return toPages(a.book.Pages)
}

// close stops the engine first so no job touches the store afterwards.
func (a *app) close() error {
	var errs []error
	if a.content != nil {
		errs = append(errs, a.content.Close())
	}
	if a.thumbnails != nil {
		errs = append(errs, a.thumbnails.Close())
	}
	if a.engine != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		errs = append(errs, a.engine.Shutdown(ctx))
	}
	if a.store != nil {
		errs = append(errs, a.store.Close())
	} else if a.db != nil {
		errs = append(errs, a.db.Close())
	}
	return errors.Join(errs...)
}

func toPages(pages []*book.FilePage) []models.Page {
	out := make([]models.Page, 0, len(pages))
	for _, p := range pages {
		out = append(out, p)
	}
	return out
}
