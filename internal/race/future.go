package race

import (
	"context"
	"sync"
)

// Future is a single-fire event source with separate success and failure
// notifications. Only the first Resolve or Reject takes effect.
type Future[T any] struct {
	once  sync.Once
	done  chan struct{}
	value T
	err   error
}

// NewFuture returns an unsettled Future.
func NewFuture[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

// Resolve settles the future with v. It reports whether this call settled it.
func (f *Future[T]) Resolve(v T) bool {
	settled := false
	f.once.Do(func() {
		f.value = v
		settled = true
		close(f.done)
	})
	return settled
}

// Reject settles the future with err. It reports whether this call settled it.
func (f *Future[T]) Reject(err error) bool {
	settled := false
	f.once.Do(func() {
		f.err = err
		settled = true
		close(f.done)
	})
	return settled
}

// Done is closed once the future is settled.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Result returns the settled value and error. It must only be called after
// Done is closed.
func (f *Future[T]) Result() (T, error) {
	return f.value, f.err
}

// Source adapts the future for use with Resolve.
func (f *Future[T]) Source() Source[T] {
	return func(ctx context.Context) (T, error) {
		select {
		case <-f.done:
			return f.Result()
		case <-ctx.Done():
			var zero T
			return zero, ctx.Err()
		}
	}
}
