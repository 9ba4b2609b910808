// Package future provides a single-slot asynchronous cell: a value computed
// at most once whose pending result is shared with every waiter.
package future

import "context"

// Value holds the eventual result of one computation. A second caller
// awaiting a pending Value joins the in-flight computation instead of
// triggering duplicate work.
type Value[T any] struct {
	done chan struct{}
	val  T
}

// Go starts fn in its own goroutine and returns the pending value.
func Go[T any](fn func() T) *Value[T] {
	v := &Value[T]{done: make(chan struct{})}
	go func() {
		v.val = fn()
		close(v.done)
	}()
	return v
}

// Done returns an already-completed value.
func Done[T any](val T) *Value[T] {
	v := &Value[T]{done: make(chan struct{}), val: val}
	close(v.done)
	return v
}

// Await blocks until the value is ready or ctx is cancelled. Cancellation
// abandons the wait only; the underlying computation keeps running and its
// result stays available to later waiters.
func (v *Value[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-v.done:
		return v.val, nil
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
