package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	srvErrors "github.com/pageview/pageview/pkg/errors"
)

type ClientOption[K comparable] func(*Client[K])

// WithSatisfied sets the filter dropping keys that need no work.
func WithSatisfied[K comparable](fn func(K) bool) ClientOption[K] {
	return func(c *Client[K]) {
		c.satisfied = fn
	}
}

// Client submits ordered keys of one category and awaits their completion.
// A client replaces its whole order on every call; keys it stops asking
// for are canceled unless another client still wants them.
type Client[K comparable] struct {
	id        uuid.UUID
	name      string
	category  *Category[K]
	engine    *Engine
	satisfied func(K) bool

	mu     sync.Mutex
	closed bool
}

func NewClient[K comparable](engine *Engine, name string, category *Category[K], opts ...ClientOption[K]) (*Client[K], error) {
	c := &Client[K]{
		id:        uuid.New(),
		name:      name,
		category:  category,
		engine:    engine,
		satisfied: func(K) bool { return false },
	}
	for _, opt := range opts {
		opt(c)
	}

	if err := engine.RegisterClient(c); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Client[K]) ID() uuid.UUID { return c.id }

func (c *Client[K]) Name() string { return c.name }

func (c *Client[K]) Class() Class { return c.category }

func (c *Client[K]) Category() *Category[K] { return c.category }

// Order replaces the client's order with keys, first to last, skipping
// satisfied keys and duplicates.
func (c *Client[K]) Order(keys []K) ([]*Source, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, srvErrors.NewClientClosedError(c.name)
	}

	orders := make([]Order, 0, len(keys))
	for _, k := range keys {
		if c.satisfied(k) {
			continue
		}
		orders = append(orders, c.category.Order(k))
	}

	return c.engine.Submit(c, orders)
}

// CancelOrder withdraws every key of the client.
func (c *Client[K]) CancelOrder() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return srvErrors.NewClientClosedError(c.name)
	}
	_, err := c.engine.Submit(c, nil)
	return err
}

// Wait blocks until every key of the current order that is listed in keys
// is done. Keys outside the order are ignored. A canceled job counts as done.
// A positive timeout bounds the wait and yields context.DeadlineExceeded.
func (c *Client[K]) Wait(ctx context.Context, keys []K, timeout time.Duration) error {
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return srvErrors.NewClientClosedError(c.name)
	}

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	wanted := make(map[any]struct{}, len(keys))
	for _, k := range keys {
		wanted[k] = struct{}{}
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, src := range c.engine.Sources(c) {
		if _, ok := wanted[src.Key()]; !ok {
			continue
		}
		g.Go(func() error {
			return src.Wait(gctx)
		})
	}

	if err := g.Wait(); err != nil {
		zap.S().Named("client").Debugw("wait interrupted", "client", c.name, "error", err)
		return err
	}
	return nil
}

// Close withdraws the order and unregisters the client. It is idempotent.
func (c *Client[K]) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true

	_, err := c.engine.Submit(c, nil)
	c.engine.UnregisterClient(c)
	if err != nil && !srvErrors.IsInvalidOperationError(err) {
		return err
	}
	return nil
}
