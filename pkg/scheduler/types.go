package scheduler

import (
	"context"
)

// Work is a unit of suspending work executed by the pool. It must honor ctx
// cancellation while waiting on external I/O.
type Work[T any] func(ctx context.Context) (T, error)

// Result pairs the value produced by a Work function with its error.
type Result[T any] struct {
	Data T
	Err  error
}

// Future represents a pending Result from submitted work. Exactly one value
// is delivered on C().
type Future[T any] struct {
	input  chan Result[T]
	cancel context.CancelFunc
}

func NewFuture[T any](input chan Result[T], cancel context.CancelFunc) *Future[T] {
	return &Future[T]{
		input:  input,
		cancel: cancel,
	}
}

func (f *Future[T]) C() chan Result[T] {
	return f.input
}

// Stop cancels the context of the underlying work.
func (f *Future[T]) Stop() {
	f.cancel()
}
