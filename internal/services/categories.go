package services

import (
	"context"

	"github.com/pageview/pageview/internal/models"
	"github.com/pageview/pageview/pkg/scheduler"
)

const (
	PriorityPageView  = 10
	PriorityPageAhead = 8
	PriorityThumbnail = 5
)

// Categories are the three kinds of page work, highest priority first.
type Categories struct {
	View      *scheduler.Category[models.Page]
	Ahead     *scheduler.Category[models.Page]
	Thumbnail *scheduler.Category[models.Page]
}

func NewCategories() *Categories {
	return &Categories{
		View:      scheduler.NewCategory("page-view", PriorityPageView, loadContent),
		Ahead:     scheduler.NewCategory("page-ahead", PriorityPageAhead, loadContent),
		Thumbnail: scheduler.NewCategory("thumbnail", PriorityThumbnail, loadThumbnail),
	}
}

func loadContent(page models.Page) (scheduler.Command, error) {
	return scheduler.CommandFunc(func(ctx context.Context) error {
		return page.LoadContent(ctx)
	}), nil
}

func loadThumbnail(page models.Page) (scheduler.Command, error) {
	return scheduler.CommandFunc(func(ctx context.Context) error {
		return page.LoadThumbnail(ctx)
	}), nil
}
