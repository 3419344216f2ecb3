package scheduler

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	srvErrors "github.com/pageview/pageview/pkg/errors"
)

// Owner identifies a registered requester of work bound to one category.
type Owner interface {
	ID() uuid.UUID
	Name() string
	Class() Class
}

type clientState struct {
	owner   Owner
	sources []*Source
}

type sourceKey struct {
	class Class
	key   any
}

// Scheduler owns the global priority-ordered queue.
//
// Every operation runs under one mutex and is O(n) in the queue size. No
// command is ever executed and nothing blocks while the mutex is held.
type Scheduler struct {
	mu      sync.Mutex
	clients []*clientState
	byID    map[uuid.UUID]*clientState
	queue   []*Source
	changed chan struct{}
	closed  bool

	ctx    context.Context
	cancel context.CancelFunc
}

func NewScheduler() *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		byID:    make(map[uuid.UUID]*clientState),
		changed: make(chan struct{}),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// RegisterClient adds an empty source list for owner. Registering twice is a no-op.
func (s *Scheduler) RegisterClient(owner Owner) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return srvErrors.NewClosedError("scheduler")
	}
	if _, found := s.byID[owner.ID()]; found {
		return nil
	}

	state := &clientState{owner: owner}
	s.clients = append(s.clients, state)
	s.byID[owner.ID()] = state

	zap.S().Named("scheduler").Debugw("client registered", "client", owner.Name(), "id", owner.ID(), "category", owner.Class().Name())
	return nil
}

// UnregisterClient drops the bookkeeping of owner. It does not cancel the
// client's sources: callers submit an empty order first. Whatever is left is
// reconciled away by the next Submit.
func (s *Scheduler) UnregisterClient(owner Owner) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, found := s.byID[owner.ID()]
	if !found {
		return
	}
	delete(s.byID, owner.ID())
	s.clients = slices.DeleteFunc(s.clients, func(c *clientState) bool { return c == state })

	zap.S().Named("scheduler").Debugw("client unregistered", "client", owner.Name(), "id", owner.ID())
}

// Submit replaces the order list of owner and reconciles the global queue.
//
// An order matching a queued source of the same category and key reuses it,
// so the same work is never queued twice. Sources that are no longer
// referenced by any client are canceled. Workers are always notified, even
// when nothing changed.
func (s *Scheduler) Submit(owner Owner, orders []Order) ([]*Source, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, srvErrors.NewClosedError("scheduler")
	}
	state, found := s.byID[owner.ID()]
	if !found {
		return nil, srvErrors.NewClientNotRegisteredError(owner.Name())
	}
	for _, o := range orders {
		if o.class != owner.Class() {
			return nil, srvErrors.NewCategoryMismatchError(owner.Name(), owner.Class().Name(), o.class.Name())
		}
	}

	index := make(map[sourceKey]*Source, len(s.queue))
	for _, src := range s.queue {
		index[sourceKey{class: src.class, key: src.key}] = src
	}

	sources := make([]*Source, 0, len(orders))
	seen := make(map[any]struct{}, len(orders))
	created := 0
	for _, o := range orders {
		if _, dup := seen[o.key]; dup {
			continue
		}
		seen[o.key] = struct{}{}

		src, found := index[sourceKey{class: o.class, key: o.key}]
		if !found {
			src = newSource(s.ctx, owner.ID(), o)
			index[sourceKey{class: o.class, key: o.key}] = src
			created++
		}
		sources = append(sources, src)
	}

	state.sources = sources
	canceled := s.rebuild()
	s.notify()

	zap.S().Named("scheduler").Debugw("order reconciled",
		"client", owner.Name(),
		"orders", len(sources),
		"created", created,
		"canceled", canceled,
		"queue", len(s.queue),
	)

	return slices.Clone(sources), nil
}

// rebuild recomputes the queue from the client lists: priority descending,
// then registration order, then the order each client submitted. It cancels
// and returns the number of sources that fell out.
func (s *Scheduler) rebuild() int {
	clients := slices.Clone(s.clients)
	slices.SortStableFunc(clients, func(a, b *clientState) int {
		return cmp.Compare(b.owner.Class().Priority(), a.owner.Class().Priority())
	})

	live := make(map[*Source]struct{}, len(s.queue))
	next := make([]*Source, 0, len(s.queue))
	for _, c := range clients {
		for _, src := range c.sources {
			if _, dup := live[src]; dup {
				continue
			}
			live[src] = struct{}{}
			next = append(next, src)
		}
	}

	canceled := 0
	for _, src := range s.queue {
		if _, ok := live[src]; !ok {
			src.abandon()
			canceled++
		}
	}
	s.queue = next
	return canceled
}

// FetchNext claims the earliest unprocessed source whose priority lies in
// [min, max]. It returns nil when there is none.
func (s *Scheduler) FetchNext(min, max int) *Source {
	checkWindow(min, max)

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fetch(min, max)
}

// Acquire is FetchNext plus the handle to block on when nothing is eligible.
// Both are read under the same lock, so a Submit landing after the fetch
// always closes the returned channel.
func (s *Scheduler) Acquire(min, max int) (*Source, <-chan struct{}, error) {
	checkWindow(min, max)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, nil, srvErrors.NewClosedError("scheduler")
	}
	if src := s.fetch(min, max); src != nil {
		return src, nil, nil
	}
	return nil, s.changed, nil
}

func (s *Scheduler) fetch(min, max int) *Source {
	for _, src := range s.queue {
		if src.processed.Load() {
			continue
		}
		if p := src.class.Priority(); p < min || p > max {
			continue
		}
		src.processed.Store(true)
		return src
	}
	return nil
}

func checkWindow(min, max int) {
	if min > max {
		panic(fmt.Sprintf("scheduler: invalid priority window [%d, %d]", min, max))
	}
}

// Notify wakes every blocked worker so it re-checks its window.
func (s *Scheduler) Notify() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.notify()
	}
}

func (s *Scheduler) notify() {
	close(s.changed)
	s.changed = make(chan struct{})
}

// Sources returns the current order list of owner.
func (s *Scheduler) Sources(owner Owner) []*Source {
	s.mu.Lock()
	defer s.mu.Unlock()

	if state, found := s.byID[owner.ID()]; found {
		return slices.Clone(state.sources)
	}
	return nil
}

// Len returns the number of queued sources, processed ones included.
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

// Snapshot returns the queue in fetch order.
func (s *Scheduler) Snapshot() []SourceInfo {
	s.mu.Lock()
	queue := slices.Clone(s.queue)
	s.mu.Unlock()

	infos := make([]SourceInfo, 0, len(queue))
	for _, src := range queue {
		infos = append(infos, src.info())
	}
	return infos
}

// Close cancels every queued source and wakes every worker. Later calls
// to Submit and Acquire fail. Close is idempotent.
func (s *Scheduler) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true

	for _, src := range s.queue {
		src.abandon()
	}
	s.queue = nil
	for _, c := range s.clients {
		c.sources = nil
	}
	s.cancel()
	close(s.changed)

	zap.S().Named("scheduler").Debug("scheduler closed")
}
