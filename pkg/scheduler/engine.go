package scheduler

import (
	"cmp"
	"context"
	"runtime"
	"slices"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	srvErrors "github.com/pageview/pageview/pkg/errors"
)

const (
	DefaultWorkerCount = 2
	minWorkerSlots     = 4
	maxPrimaryWorkers  = 2
)

type EngineOption func(*Engine)

// WithMaxWorkers sets the number of worker slots. Values below one are ignored.
func WithMaxWorkers(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.maxWorkers = n
		}
	}
}

// WithWorkerCount sets the number of workers started by NewEngine.
func WithWorkerCount(n int) EngineOption {
	return func(e *Engine) {
		e.initialCount = n
	}
}

func WithWindowPolicy(p WindowPolicy) EngineOption {
	return func(e *Engine) {
		e.policy = p
	}
}

func WithMetrics(m Metrics) EngineOption {
	return func(e *Engine) {
		if m != nil {
			e.metrics = m
		}
	}
}

// WithLockOSThread pins every worker goroutine to its own OS thread.
func WithLockOSThread(lock bool) EngineOption {
	return func(e *Engine) {
		e.lockOSThread = lock
	}
}

// Engine owns the scheduler and a resizable pool of workers.
type Engine struct {
	mu           sync.Mutex
	scheduler    *Scheduler
	slots        []*Worker
	retiring     map[*Worker]struct{}
	nextID       int
	count        int
	primaryCount atomic.Int32
	closed       bool

	maxWorkers   int
	initialCount int
	policy       WindowPolicy
	metrics      Metrics
	lockOSThread bool

	wg sync.WaitGroup
}

func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		scheduler:    NewScheduler(),
		maxWorkers:   max(minWorkerSlots, runtime.NumCPU()),
		initialCount: DefaultWorkerCount,
		policy:       DefaultWindowPolicy(),
		metrics:      NoopMetrics{},
		retiring:     make(map[*Worker]struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.slots = make([]*Worker, e.maxWorkers)

	// a fresh engine cannot be closed
	_, _ = e.SetWorkerCount(e.initialCount)

	zap.S().Named("engine").Infow("engine started",
		"workers", e.WorkerCount(),
		"max_workers", e.maxWorkers,
		"lock_os_thread", e.lockOSThread,
	)
	return e
}

// SetWorkerCount resizes the pool to n clamped to [1, MaxWorkers] and
// returns the applied count. The first two workers are primary unless the
// pool has a single worker, which then serves every category.
func (e *Engine) SetWorkerCount(n int) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return 0, srvErrors.NewClosedError("engine")
	}

	n = min(max(n, 1), e.maxWorkers)
	primary := maxPrimaryWorkers
	if n <= maxPrimaryWorkers {
		primary = n - 1
	}
	e.primaryCount.Store(int32(primary))

	for i, w := range e.slots {
		switch {
		case i >= n:
			if w != nil {
				e.retire(w)
				e.slots[i] = nil
			}
		case w == nil:
			w = newWorker(e, e.nextID, i, i < primary)
			e.nextID++
			e.slots[i] = w
			e.wg.Add(1)
			go w.run()
		default:
			w.primary.Store(i < primary)
		}
	}

	if n != e.count {
		zap.S().Named("engine").Infow("worker count changed", "from", e.count, "to", n, "primary", primary)
	}
	e.count = n
	e.metrics.WorkersChanged(n, primary)

	// stopped workers must wake up and live ones must re-read their window
	e.scheduler.Notify()

	return n, nil
}

func (e *Engine) WorkerCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.count
}

func (e *Engine) MaxWorkers() int { return e.maxWorkers }

func (e *Engine) window(w *Worker) PriorityWindow {
	return e.policy.Window(w.IsPrimary(), e.primaryCount.Load() == 0)
}

// retire stops w and keeps it visible until its loop exits. Callers hold e.mu.
func (e *Engine) retire(w *Worker) {
	w.Stop()
	e.retiring[w] = struct{}{}
}

// retired is called by the worker loop on exit.
func (e *Engine) retired(w *Worker) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.retiring, w)
}

// retiringWorkers returns the stopped workers still finishing a job, by ID.
// Callers hold e.mu.
func (e *Engine) retiringWorkers() []*Worker {
	workers := make([]*Worker, 0, len(e.retiring))
	for w := range e.retiring {
		workers = append(workers, w)
	}
	slices.SortFunc(workers, func(a, b *Worker) int { return cmp.Compare(a.id, b.id) })
	return workers
}

// IsBusy reports whether any worker, retiring ones included, is executing
// a job.
func (e *Engine) IsBusy() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, w := range e.slots {
		if w != nil && w.IsBusy() {
			return true
		}
	}
	for w := range e.retiring {
		if w.IsBusy() {
			return true
		}
	}
	return false
}

// Workers returns the live workers in slot order.
func (e *Engine) Workers() []*Worker {
	e.mu.Lock()
	defer e.mu.Unlock()

	workers := make([]*Worker, 0, e.count)
	for _, w := range e.slots {
		if w != nil {
			workers = append(workers, w)
		}
	}
	return workers
}

// EngineStatus is a point-in-time view of the engine.
type EngineStatus struct {
	WorkerCount  int            `json:"worker_count"`
	MaxWorkers   int            `json:"max_workers"`
	PrimaryCount int            `json:"primary_count"`
	Busy         bool           `json:"busy"`
	QueueLength  int            `json:"queue_length"`
	Closed       bool           `json:"closed"`
	Workers      []WorkerStatus `json:"workers"`
}

func (e *Engine) Status() EngineStatus {
	e.mu.Lock()
	defer e.mu.Unlock()

	st := EngineStatus{
		WorkerCount:  e.count,
		MaxWorkers:   e.maxWorkers,
		PrimaryCount: int(e.primaryCount.Load()),
		QueueLength:  e.scheduler.Len(),
		Closed:       e.closed,
		Workers:      make([]WorkerStatus, 0, e.count),
	}
	for _, w := range e.slots {
		if w == nil {
			continue
		}
		ws := w.status()
		st.Busy = st.Busy || ws.Busy
		st.Workers = append(st.Workers, ws)
	}
	// retiring workers follow the live ones
	for _, w := range e.retiringWorkers() {
		ws := w.status()
		st.Busy = st.Busy || ws.Busy
		st.Workers = append(st.Workers, ws)
	}
	return st
}

// Snapshot returns the global queue in fetch order.
func (e *Engine) Snapshot() []SourceInfo {
	return e.scheduler.Snapshot()
}

func (e *Engine) RegisterClient(owner Owner) error {
	return e.scheduler.RegisterClient(owner)
}

func (e *Engine) UnregisterClient(owner Owner) {
	e.scheduler.UnregisterClient(owner)
}

func (e *Engine) Submit(owner Owner, orders []Order) ([]*Source, error) {
	return e.scheduler.Submit(owner, orders)
}

// Sources returns the current order list of owner.
func (e *Engine) Sources(owner Owner) []*Source {
	return e.scheduler.Sources(owner)
}

// Shutdown stops every worker, cancels every queued source and waits for
// the worker goroutines to exit or ctx to be done. Running commands are
// canceled through their context and are expected to return promptly.
func (e *Engine) Shutdown(ctx context.Context) error {
	e.mu.Lock()
	if !e.closed {
		e.closed = true
		for i, w := range e.slots {
			if w != nil {
				e.retire(w)
				e.slots[i] = nil
			}
		}
		e.count = 0
		e.primaryCount.Store(0)
		e.scheduler.Close()
		e.metrics.WorkersChanged(0, 0)
		zap.S().Named("engine").Info("engine shutting down")
	}
	e.mu.Unlock()

	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		zap.S().Named("engine").Info("engine stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close is Shutdown without a deadline.
func (e *Engine) Close() {
	_ = e.Shutdown(context.Background())
}
