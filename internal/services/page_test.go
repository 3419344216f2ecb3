package services_test

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
)

// fakePage blocks its loads until released.
type fakePage struct {
	id        string
	index     int
	release   chan struct{}
	content   atomic.Bool
	thumbnail atomic.Bool

	mu    sync.Mutex
	loads []string
}

func newFakePage(index int) *fakePage {
	return &fakePage{
		id:      fmt.Sprintf("%03d.png", index),
		index:   index,
		release: make(chan struct{}),
	}
}

func (p *fakePage) ID() string             { return p.id }
func (p *fakePage) Index() int             { return p.index }
func (p *fakePage) IsContentLoaded() bool  { return p.content.Load() }
func (p *fakePage) IsThumbnailValid() bool { return p.thumbnail.Load() }

func (p *fakePage) LoadContent(ctx context.Context) error {
	if err := p.wait(ctx, "content"); err != nil {
		return err
	}
	p.content.Store(true)
	return nil
}

func (p *fakePage) LoadThumbnail(ctx context.Context) error {
	if err := p.wait(ctx, "thumbnail"); err != nil {
		return err
	}
	p.thumbnail.Store(true)
	return nil
}

func (p *fakePage) wait(ctx context.Context, kind string) error {
	p.mu.Lock()
	p.loads = append(p.loads, kind)
	p.mu.Unlock()

	select {
	case <-p.release:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *fakePage) Loads() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.loads...)
}
