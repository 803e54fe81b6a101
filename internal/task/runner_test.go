package task

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitDone(t *testing.T, ch <-chan error) error {
	t.Helper()
	select {
	case err := <-ch:
		return err
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for task completion")
		return nil
	}
}

func TestRunnerExecutesSubmittedTask(t *testing.T) {
	r := NewRunner(8)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go r.Start(ctx)

	ran := make(chan error, 1)
	r.Submit(func(context.Context) error { return nil }, func(err error) { ran <- err })

	assert.NoError(t, waitDone(t, ran))
}

func TestRunnerReportsTaskError(t *testing.T) {
	r := NewRunner(8)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go r.Start(ctx)

	boom := errors.New("boom")
	done := make(chan error, 1)
	r.Submit(func(context.Context) error { return boom }, func(err error) { done <- err })

	assert.ErrorIs(t, waitDone(t, done), boom)
}

func TestRunnerDropsWhenQueueFull(t *testing.T) {
	// Runner never started, so the buffer fills immediately.
	r := NewRunner(1)

	r.Submit(func(context.Context) error { return nil }, nil)

	done := make(chan error, 1)
	r.Submit(func(context.Context) error { return nil }, func(err error) { done <- err })

	require.ErrorIs(t, <-done, ErrQueueFull)
}

func TestRunnerDrainsOnShutdown(t *testing.T) {
	r := NewRunner(8)

	done := make(chan error, 1)
	r.Submit(func(context.Context) error { return nil }, func(err error) { done <- err })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r.Start(ctx) // returns after draining

	assert.NoError(t, waitDone(t, done))
}

func TestRunnerTasksRunInOrder(t *testing.T) {
	r := NewRunner(8)

	var order []int
	last := make(chan error, 1)
	r.Submit(func(context.Context) error { order = append(order, 1); return nil }, nil)
	r.Submit(func(context.Context) error { order = append(order, 2); return nil }, nil)
	r.Submit(func(context.Context) error { order = append(order, 3); return nil }, func(err error) { last <- err })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r.Start(ctx)

	require.NoError(t, waitDone(t, last))
	assert.Equal(t, []int{1, 2, 3}, order)
}
