package scheduler

import (
	"fmt"
	"runtime"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Worker is one long-lived execution loop. Its role is owned by the engine:
// the flags are flipped under the engine mutex and read by the loop on
// every iteration.
type Worker struct {
	id     int
	slot   int
	engine *Engine

	primary     atomic.Bool
	terminating atomic.Bool
	busy        atomic.Bool
	current     atomic.Pointer[Job]
	executed    atomic.Uint64

	stopped chan struct{}
}

func newWorker(e *Engine, id, slot int, primary bool) *Worker {
	w := &Worker{
		id:      id,
		slot:    slot,
		engine:  e,
		stopped: make(chan struct{}),
	}
	w.primary.Store(primary)
	return w
}

// ID is unique for the lifetime of the engine. A slot freed by a shrink
// gets a new ID when it is refilled.
func (w *Worker) ID() int { return w.id }

func (w *Worker) Slot() int { return w.slot }

func (w *Worker) IsPrimary() bool { return w.primary.Load() }

func (w *Worker) IsBusy() bool { return w.busy.Load() }

func (w *Worker) Terminating() bool { return w.terminating.Load() }

// Window is the priority range the worker currently serves.
func (w *Worker) Window() PriorityWindow { return w.engine.window(w) }

// Stop asks the loop to exit after the current job. A worker blocked on
// an empty queue only notices once the scheduler broadcasts.
func (w *Worker) Stop() { w.terminating.Store(true) }

// Done is closed when the loop has exited.
func (w *Worker) Done() <-chan struct{} { return w.stopped }

// WorkerStatus is a point-in-time view of a worker.
type WorkerStatus struct {
	ID          int            `json:"id"`
	Slot        int            `json:"slot"`
	Primary     bool           `json:"primary"`
	Busy        bool           `json:"busy"`
	Terminating bool           `json:"terminating"`
	Window      PriorityWindow `json:"window"`
	Executed    uint64         `json:"executed"`
	CurrentJob  uint64         `json:"current_job,omitempty"`
	Category    string         `json:"category,omitempty"`
}

func (w *Worker) status() WorkerStatus {
	st := WorkerStatus{
		ID:          w.id,
		Slot:        w.slot,
		Primary:     w.IsPrimary(),
		Busy:        w.IsBusy(),
		Terminating: w.Terminating(),
		Window:      w.Window(),
		Executed:    w.executed.Load(),
	}
	if job := w.current.Load(); job != nil {
		st.CurrentJob = job.Serial()
		st.Category = job.Class().Name()
	}
	return st
}

// run is the worker loop. It exits once the worker is marked terminating
// or the scheduler is closed.
func (w *Worker) run() {
	e := w.engine
	defer close(w.stopped)
	defer e.wg.Done()
	defer e.retired(w)

	if e.lockOSThread {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
	}

	log := zap.S().Named("worker").With("worker", w.id)
	log.Debugw("worker started", "slot", w.slot, "primary", w.IsPrimary())
	defer log.Debug("worker stopped")

	for !w.terminating.Load() {
		window := w.Window()

		src, changed, err := e.scheduler.Acquire(window.Min, window.Max)
		if err != nil {
			return
		}
		if src == nil {
			// role changes are stored before the broadcast, so anything
			// published after Acquire took the lock is visible here
			if w.terminating.Load() || w.Window() != window {
				continue
			}
			<-changed
			continue
		}

		w.execute(src, e.metrics)
	}
}

func (w *Worker) execute(src *Source, metrics Metrics) {
	log := zap.S().Named("worker").With("worker", w.id)

	job, err := src.Job()
	if err != nil {
		log.Errorw("failed to build job", "category", src.Class().Name(), "key", src.Key(), "error", err)
		return
	}
	if !job.start() {
		return
	}

	category := job.Class().Name()
	w.current.Store(job)
	w.busy.Store(true)
	metrics.WorkerBusy(w.id, true)
	metrics.JobStarted(category)

	started := time.Now()
	if job.ctx.Err() == nil {
		err = invoke(job)
	}
	elapsed := time.Since(started)
	result := job.finish(err, elapsed)

	w.executed.Add(1)
	w.current.Store(nil)
	w.busy.Store(false)
	metrics.JobFinished(category, result, elapsed)
	metrics.WorkerBusy(w.id, false)

	if err != nil && result != JobResultCanceled {
		log.Errorw("job failed", "serial", job.Serial(), "category", category, "key", src.Key(), "error", err)
	}
}

func invoke(job *Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("command panicked: %v", r)
		}
	}()
	return job.command.Execute(job.ctx)
}

