package scheduler

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	srvErrors "github.com/pageview/pageview/pkg/errors"
)

var closedChan = func() chan struct{} {
	c := make(chan struct{})
	close(c)
	return c
}()

// Source is the scheduler-owned handle wrapping one (Category, Key) pair.
//
// The job is built on first use. The processed flag is set exactly once,
// under the scheduler mutex, when a worker claims the source; a processed
// source stays queued only so late waiters can still await it.
type Source struct {
	class Class
	key   any
	owner uuid.UUID
	build func() (Command, error)

	ctx    context.Context
	cancel context.CancelFunc

	processed atomic.Bool
	abandoned atomic.Bool

	once sync.Once
	job  atomic.Pointer[Job]
	err  error
}

func newSource(parent context.Context, owner uuid.UUID, order Order) *Source {
	ctx, cancel := context.WithCancel(parent)
	return &Source{
		class:  order.class,
		key:    order.key,
		owner:  owner,
		build:  order.build,
		ctx:    ctx,
		cancel: cancel,
	}
}

func (s *Source) Class() Class { return s.class }

func (s *Source) Key() any { return s.key }

func (s *Source) Processed() bool { return s.processed.Load() }

// Cancel sets the cancellation signal. It is propagated to the job.
func (s *Source) Cancel() { s.cancel() }

func (s *Source) Canceled() bool { return s.ctx.Err() != nil }

// abandon cancels a source leaving the queue. A source no worker claimed
// will never run, so its job is closed here, or as soon as it is built.
// Must be called under the scheduler mutex.
func (s *Source) abandon() {
	s.cancel()
	if s.processed.Load() {
		return
	}
	s.abandoned.Store(true)
	if job := s.job.Load(); job != nil {
		job.discard()
	}
}

// Job materializes the job on first call. A failing factory is reported to
// every caller as a JobFactoryError.
func (s *Source) Job() (*Job, error) {
	s.once.Do(func() {
		defer func() {
			if r := recover(); r != nil {
				s.err = srvErrors.NewJobFactoryError(s.class.Name(), fmt.Errorf("factory panicked: %v", r))
			}
		}()

		cmd, err := s.build()
		if err != nil {
			s.err = srvErrors.NewJobFactoryError(s.class.Name(), err)
			return
		}
		if cmd == nil {
			s.err = srvErrors.NewJobFactoryError(s.class.Name(), fmt.Errorf("factory returned no command"))
			return
		}
		job := newJob(s.ctx, s.class, s.owner, cmd)
		s.job.Store(job)
		if s.abandoned.Load() {
			job.discard()
		}
	})
	return s.job.Load(), s.err
}

// Wait materializes the job and waits for it to close.
func (s *Source) Wait(ctx context.Context) error {
	job, err := s.Job()
	if err != nil {
		return err
	}
	return job.Wait(ctx)
}

// Done is closed when the job is closed. It is closed immediately when the
// job cannot be built.
func (s *Source) Done() <-chan struct{} {
	job, err := s.Job()
	if err != nil {
		return closedChan
	}
	return job.Done()
}

// SourceInfo is a point-in-time view of a queued source.
type SourceInfo struct {
	Serial    uint64   `json:"serial"`
	Category  string   `json:"category"`
	Priority  int      `json:"priority"`
	Key       string   `json:"key"`
	Processed bool     `json:"processed"`
	Canceled  bool     `json:"canceled"`
	State     string   `json:"state"`
	Result    string   `json:"result"`
	Logs      []string `json:"logs,omitempty"`
}

func (s *Source) info() SourceInfo {
	info := SourceInfo{
		Category:  s.class.Name(),
		Priority:  s.class.Priority(),
		Key:       fmt.Sprint(s.key),
		Processed: s.Processed(),
		Canceled:  s.Canceled(),
		State:     JobStateWaiting.String(),
		Result:    JobResultNone.String(),
	}
	if job := s.job.Load(); job != nil {
		info.Serial = job.Serial()
		info.State = job.State().String()
		info.Result = job.Result().String()
		info.Logs = job.Logs()
	}
	return info
}
