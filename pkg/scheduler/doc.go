// Package scheduler implements a prioritized, cancellable job engine.
//
// Clients submit ordered lists of keys for their category. The scheduler
// merges every client's list into one global queue ordered by category
// priority, and a resizable pool of long-lived workers drains that queue.
// Each worker serves a priority window, so urgent work never waits behind
// background work.
//
// # Architecture Overview
//
//	┌─────────────────────────────────────────────────────────────────────┐
//	│                              Engine                                 │
//	│                                                                     │
//	│  ┌──────────────┐      ┌──────────────┐      ┌──────────────┐       │
//	│  │  Worker 0    │      │  Worker 1    │      │  Worker 2    │       │
//	│  │  primary     │      │  primary     │      │  background  │       │
//	│  │  [10, 99]    │      │  [10, 99]    │      │  [0, 9]      │       │
//	│  └──────┬───────┘      └──────┬───────┘      └──────┬───────┘       │
//	│         │ Acquire(min, max)   │                     │               │
//	│         └─────────────────────┼─────────────────────┘               │
//	│                               ▼                                     │
//	│  ┌─────────────────────────────────────────────────────────┐        │
//	│  │                     Scheduler                           │        │
//	│  │  queue: [view:p3] [view:p4] [ahead:p5] [thumb:p1] ...   │        │
//	│  │  changed: broadcast channel (close and replace)         │        │
//	│  └─────────────────────────────────────────────────────────┘        │
//	│                               ▲                                     │
//	│                               │ Submit(owner, orders)               │
//	│         ┌─────────────────────┼─────────────────────┐               │
//	│  ┌──────┴───────┐      ┌──────┴───────┐      ┌──────┴───────┐       │
//	│  │ Client view  │      │ Client ahead │      │ Client thumb │       │
//	│  │ priority 10  │      │ priority 8   │      │ priority 5   │       │
//	│  └──────────────┘      └──────────────┘      └──────────────┘       │
//	└─────────────────────────────────────────────────────────────────────┘
//
// # Core Components
//
// Category:
//   - Immutable name and priority, higher runs first
//   - Turns a key into a Command through its JobFactory
//
// Source:
//   - Wraps one (category, key) pair in the queue
//   - Builds its Job lazily, at most once
//   - Owns the cancellation of that job
//
// Job:
//   - Waiting, Running, Closed
//   - Completed or Canceled once closed
//   - Done is closed exactly once, Wait returns at once afterwards
//
// Scheduler:
//   - One mutex around the queue and the per-client lists
//   - Never runs a command or blocks while holding it
//
// Engine:
//   - Worker slots sized max(4, NumCPU)
//   - The first two workers are primary, the rest background
//   - A single-worker pool widens its window to every priority
//
// # Submission Flow
//
//  1. Client calls Order(keys)
//     │
//     ▼
//  2. Satisfied keys are filtered out, the rest become Orders
//     │
//     ▼
//  3. Scheduler.Submit reconciles:
//     - Reuses a queued Source with the same category and key
//     - Replaces the client's list
//     - Rebuilds the queue by priority, then client, then list order
//     - Cancels every Source no list references any more
//     - Broadcasts queue changed
//     │
//     ▼
//  4. Every idle worker wakes and calls Acquire with its window
//     │
//     ▼
//  5. The first unprocessed Source in the window is marked processed
//     and executed outside the lock
//     │
//     ▼
//  6. The job closes as Completed or Canceled and Done fires
//
// # Cancellation
//
// Cancellation is cooperative. A canceled Source cancels the context passed
// to Command.Execute; a job canceled before it started is closed without
// running. Command errors and panics are logged with the job serial and
// never leave the worker loop.
package scheduler
