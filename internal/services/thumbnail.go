package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/pageview/pageview/internal/models"
	"github.com/pageview/pageview/pkg/scheduler"
)

// ThumbnailService renders thumbnails in the background.
type ThumbnailService struct {
	client *scheduler.Client[models.Page]
}

func NewThumbnailService(engine *scheduler.Engine, categories *Categories) (*ThumbnailService, error) {
	client, err := scheduler.NewClient(engine, "thumbnail", categories.Thumbnail,
		scheduler.WithSatisfied(func(p models.Page) bool { return p.IsThumbnailValid() }),
	)
	if err != nil {
		return nil, err
	}
	return &ThumbnailService{client: client}, nil
}

// Request replaces the pages whose thumbnails are wanted, first to last.
func (s *ThumbnailService) Request(pages []models.Page) ([]*scheduler.Source, error) {
	sources, err := s.client.Order(pages)
	if err != nil {
		return nil, err
	}
	zap.S().Named("thumbnail").Debugw("thumbnails requested", "pages", len(pages), "queued", len(sources))
	return sources, nil
}

func (s *ThumbnailService) Wait(ctx context.Context, pages []models.Page, timeout time.Duration) error {
	return s.client.Wait(ctx, pages, timeout)
}

func (s *ThumbnailService) Cancel() error {
	return s.client.CancelOrder()
}

func (s *ThumbnailService) Close() error {
	return s.client.Close()
}
