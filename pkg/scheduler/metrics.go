package scheduler

import "time"

// Metrics receives engine events. Implementations must be safe for
// concurrent use and must not block.
type Metrics interface {
	JobStarted(category string)
	JobFinished(category string, result JobResult, elapsed time.Duration)
	WorkerBusy(worker int, busy bool)
	WorkersChanged(live, primary int)
}

// NoopMetrics discards every event.
type NoopMetrics struct{}

func (NoopMetrics) JobStarted(string) {}

func (NoopMetrics) JobFinished(string, JobResult, time.Duration) {}

func (NoopMetrics) WorkerBusy(int, bool) {}

func (NoopMetrics) WorkersChanged(int, int) {}
