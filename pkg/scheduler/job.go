package scheduler

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const maxJobLogs = 32

var jobSerial atomic.Uint64

// Job is one schedulable, cancellable, awaitable unit of work.
//
// A job is created lazily by its Source and is mutated only by the worker
// that claims it.
type Job struct {
	serial  uint64
	class   Class
	owner   uuid.UUID
	command Command

	ctx    context.Context
	cancel context.CancelFunc

	state  atomic.Int32
	result atomic.Int32
	done   chan struct{}

	// err is written before done is closed and read only after.
	err error

	mu   sync.Mutex
	logs []string
}

func newJob(parent context.Context, class Class, owner uuid.UUID, command Command) *Job {
	ctx, cancel := context.WithCancel(parent)
	return &Job{
		serial:  jobSerial.Add(1),
		class:   class,
		owner:   owner,
		command: command,
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
	}
}

func (j *Job) Serial() uint64 { return j.serial }

func (j *Job) Class() Class { return j.class }

// Owner returns the id of the client whose submission created the job.
func (j *Job) Owner() uuid.UUID { return j.owner }

func (j *Job) State() JobState { return JobState(j.state.Load()) }

func (j *Job) Result() JobResult { return JobResult(j.result.Load()) }

// Context carries the job's cancellation signal.
func (j *Job) Context() context.Context { return j.ctx }

// Canceled reports whether cancellation was requested.
func (j *Job) Canceled() bool { return j.ctx.Err() != nil }

// Cancel requests early exit. Cancellation is cooperative.
func (j *Job) Cancel() { j.cancel() }

// Done is closed once the job is closed.
func (j *Job) Done() <-chan struct{} { return j.done }

// Err returns the error the command failed with, if any. It is only
// meaningful after Done is closed.
func (j *Job) Err() error {
	select {
	case <-j.done:
		return j.err
	default:
		return nil
	}
}

// Wait blocks until the job is closed or ctx is done. It returns
// immediately when the job already completed, whatever its result.
func (j *Job) Wait(ctx context.Context) error {
	select {
	case <-j.done:
		return nil
	default:
	}
	select {
	case <-j.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Logf appends a diagnostic message tagged with the job serial.
func (j *Job) Logf(format string, args ...any) {
	msg := fmt.Sprintf("[%d] %s", j.serial, fmt.Sprintf(format, args...))

	j.mu.Lock()
	if len(j.logs) == maxJobLogs {
		j.logs = append(j.logs[:0], j.logs[1:]...)
	}
	j.logs = append(j.logs, msg)
	j.mu.Unlock()

	zap.S().Named("job").Debugw(msg, "serial", j.serial, "category", j.class.Name())
}

func (j *Job) Logs() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]string(nil), j.logs...)
}

// start moves a waiting job to running. It fails if the job was already claimed.
func (j *Job) start() bool {
	if !j.state.CompareAndSwap(int32(JobStateWaiting), int32(JobStateRunning)) {
		return false
	}
	j.Logf("start")
	return true
}

// finish records the result, closes the job and fires the completion signal.
func (j *Job) finish(err error, elapsed time.Duration) JobResult {
	result := JobResultCompleted
	if j.ctx.Err() != nil {
		result = JobResultCanceled
	}
	j.err = err
	j.result.Store(int32(result))
	j.state.Store(int32(JobStateClosed))
	j.Logf("%s in %s", result, elapsed)
	close(j.done)
	return result
}

// discard closes a job that will never be claimed.
func (j *Job) discard() {
	if j.state.CompareAndSwap(int32(JobStateWaiting), int32(JobStateRunning)) {
		j.finish(nil, 0)
	}
}
