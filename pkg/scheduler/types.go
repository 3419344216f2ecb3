package scheduler

import (
	"context"
	"fmt"
)

// Command is the executable part of a job. Implementations are expected to
// poll ctx at a reasonable granularity and return early once it is done.
type Command interface {
	Execute(ctx context.Context) error
}

// CommandFunc adapts a plain function to Command.
type CommandFunc func(ctx context.Context) error

func (f CommandFunc) Execute(ctx context.Context) error {
	return f(ctx)
}

// JobFactory turns a key into the command that does the work for it.
// Factories must not share mutable state: they may be called from a worker
// or from an awaiting client, whichever materializes the job first.
type JobFactory[K comparable] func(key K) (Command, error)

// Class is the type-erased view of a Category that the scheduler orders by.
type Class interface {
	Name() string
	Priority() int
}

// Category is an immutable priority class plus the factory turning a key into work.
type Category[K comparable] struct {
	name     string
	priority int
	factory  JobFactory[K]
}

func NewCategory[K comparable](name string, priority int, factory JobFactory[K]) *Category[K] {
	return &Category[K]{name: name, priority: priority, factory: factory}
}

func (c *Category[K]) Name() string { return c.name }

func (c *Category[K]) Priority() int { return c.priority }

func (c *Category[K]) String() string {
	return fmt.Sprintf("%s(%d)", c.name, c.priority)
}

// Order builds a request for key. Orders are consumed by Submit.
func (c *Category[K]) Order(key K) Order {
	return Order{
		class: c,
		key:   key,
		build: func() (Command, error) {
			return c.factory(key)
		},
	}
}

// Order is a (Category, Key) request. It has no life of its own: Submit
// either matches it to an existing Source or wraps it in a new one.
type Order struct {
	class Class
	key   any
	build func() (Command, error)
}

func (o Order) Class() Class { return o.class }

func (o Order) Key() any { return o.key }

// JobState is the lifecycle of a job.
type JobState int32

const (
	JobStateWaiting JobState = iota
	JobStateRunning
	JobStateClosed
)

func (s JobState) String() string {
	switch s {
	case JobStateWaiting:
		return "waiting"
	case JobStateRunning:
		return "running"
	case JobStateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// JobResult is recorded when a job enters JobStateClosed.
type JobResult int32

const (
	JobResultNone JobResult = iota
	JobResultCompleted
	JobResultCanceled
)

func (r JobResult) String() string {
	switch r {
	case JobResultCompleted:
		return "completed"
	case JobResultCanceled:
		return "canceled"
	default:
		return "none"
	}
}

// PriorityWindow is the inclusive priority range a worker serves.
type PriorityWindow struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

func (w PriorityWindow) Contains(priority int) bool {
	return priority >= w.Min && priority <= w.Max
}

// WindowPolicy decides which priorities primary and background workers serve.
type WindowPolicy struct {
	// MinPriority is the lowest priority any worker serves.
	MinPriority int
	// PrimaryPriority is the lowest priority reserved for primary workers.
	PrimaryPriority int
	// MaxPriority is the highest priority any worker serves.
	MaxPriority int
}

// DefaultWindowPolicy reserves [10,99] for primary workers and leaves [0,9]
// to the background.
func DefaultWindowPolicy() WindowPolicy {
	return WindowPolicy{
		MinPriority:     0,
		PrimaryPriority: 10,
		MaxPriority:     99,
	}
}

// Window returns the window of a worker. A starved pool has no primary
// worker, so its background workers have to drain every category.
func (p WindowPolicy) Window(primary, starved bool) PriorityWindow {
	switch {
	case primary:
		return PriorityWindow{Min: p.PrimaryPriority, Max: p.MaxPriority}
	case starved:
		return PriorityWindow{Min: p.MinPriority, Max: p.MaxPriority}
	default:
		return PriorityWindow{Min: p.MinPriority, Max: p.PrimaryPriority - 1}
	}
}
