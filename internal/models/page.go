package models

import (
	"context"
	"time"
)

// Page is one image of an open book. Loading is long running and must
// honour ctx; both loaders are safe to call from several goroutines.
type Page interface {
	ID() string
	Index() int
	IsContentLoaded() bool
	LoadContent(ctx context.Context) error
	IsThumbnailValid() bool
	LoadThumbnail(ctx context.Context) error
}

// Content is the decoded header of a page plus its raw bytes.
type Content struct {
	Format string
	Width  int
	Height int
	Size   int64
	Data   []byte
}

// Thumbnail is a PNG-encoded, downscaled rendition of a page.
type Thumbnail struct {
	PageID    string
	Data      []byte
	Width     int
	Height    int
	CreatedAt time.Time
}

// Preferences are the persisted user settings.
type Preferences struct {
	WorkerCount int
	UpdatedAt   time.Time
}
