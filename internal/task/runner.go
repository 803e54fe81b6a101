// Package task runs fire-and-forget mutations off the request path. Callers
// submit work and optionally observe completion through a callback, so tests
// can assert on outcomes without sleeping.
package task

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"
)

// ErrQueueFull is reported to a task's Done callback when the runner's
// buffer is saturated and the task was dropped.
var ErrQueueFull = errors.New("task queue full")

type job struct {
	run  func(context.Context) error
	done func(error)
}

// Runner executes submitted tasks sequentially on a single worker
// goroutine. Submission never blocks the caller.
type Runner struct {
	ch chan job
}

// NewRunner creates a Runner with the given queue capacity.
func NewRunner(buffer int) *Runner {
	return &Runner{ch: make(chan job, buffer)}
}

// Submit enqueues run for execution. done, if non-nil, is invoked with the
// task's result once it completes, or with ErrQueueFull if the queue is
// saturated.
func (r *Runner) Submit(run func(context.Context) error, done func(error)) {
	j := job{run: run, done: done}
	select {
	case r.ch <- j:
	default:
		logrus.Warn("task runner queue is full, task dropped")
		if done != nil {
			done(ErrQueueFull)
		}
	}
}

// Start consumes and executes tasks until ctx is cancelled, then drains
// whatever is already queued before returning.
func (r *Runner) Start(ctx context.Context) {
	for {
		select {
		case j := <-r.ch:
			r.exec(ctx, j)
		case <-ctx.Done():
			logrus.Info("shutting down task runner, draining queued tasks")
			for {
				select {
				case j := <-r.ch:
					r.exec(context.Background(), j)
				default:
					return
				}
			}
		}
	}
}

func (r *Runner) exec(ctx context.Context, j job) {
	err := j.run(ctx)
	if err != nil {
		logrus.Errorf("task failed: %v", err)
	}
	if j.done != nil {
		j.done(err)
	}
}
