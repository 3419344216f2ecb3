package services

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pageview/pageview/internal/models"
	"github.com/pageview/pageview/pkg/scheduler"
)

// PageContentService loads page content through two clients: the pages on
// screen and the pages the reader is likely to turn to next.
type PageContentService struct {
	view  *scheduler.Client[models.Page]
	ahead *scheduler.Client[models.Page]
}

func NewPageContentService(engine *scheduler.Engine, categories *Categories) (*PageContentService, error) {
	loaded := scheduler.WithSatisfied(func(p models.Page) bool { return p.IsContentLoaded() })

	view, err := scheduler.NewClient(engine, "content-view", categories.View, loaded)
	if err != nil {
		return nil, err
	}
	ahead, err := scheduler.NewClient(engine, "content-ahead", categories.Ahead, loaded)
	if err != nil {
		_ = view.Close()
		return nil, err
	}

	return &PageContentService{view: view, ahead: ahead}, nil
}

// RequestView replaces the pages on screen. Loaded pages are skipped.
func (s *PageContentService) RequestView(pages []models.Page) ([]*scheduler.Source, error) {
	sources, err := s.view.Order(pages)
	if err != nil {
		return nil, err
	}
	zap.S().Named("content").Debugw("view requested", "pages", len(pages), "queued", len(sources))
	return sources, nil
}

// RequestAhead replaces the pages to preload. Loaded pages are skipped.
func (s *PageContentService) RequestAhead(pages []models.Page) ([]*scheduler.Source, error) {
	sources, err := s.ahead.Order(pages)
	if err != nil {
		return nil, err
	}
	zap.S().Named("content").Debugw("ahead requested", "pages", len(pages), "queued", len(sources))
	return sources, nil
}

// Wait blocks until the requested content of pages is loaded or canceled.
// A positive timeout bounds the wait.
func (s *PageContentService) Wait(ctx context.Context, pages []models.Page, timeout time.Duration) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.view.Wait(gctx, pages, 0) })
	g.Go(func() error { return s.ahead.Wait(gctx, pages, 0) })
	return g.Wait()
}

// Cancel withdraws every pending request.
func (s *PageContentService) Cancel() error {
	return errors.Join(s.view.CancelOrder(), s.ahead.CancelOrder())
}

func (s *PageContentService) Close() error {
	return errors.Join(s.view.Close(), s.ahead.Close())
}
