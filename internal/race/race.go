// Package race resolves the first terminal signal among several asynchronous
// operations, bounded by a deadline.
package race

import (
	"context"
	"errors"
	"time"
)

// ErrNoSources is reported when Resolve is called without any source.
var ErrNoSources = errors.New("race: no sources")

// Kind identifies how a race was settled.
type Kind int

const (
	Resolved Kind = iota
	Failed
	TimedOut
)

func (k Kind) String() string {
	switch k {
	case Resolved:
		return "resolved"
	case Failed:
		return "failed"
	case TimedOut:
		return "timed out"
	default:
		return "unknown"
	}
}

// Source is a single-fire operation: it either returns a value or an error.
// The context is cancelled once the race settles; sources that ignore it keep
// running, but their result is discarded.
type Source[T any] func(ctx context.Context) (T, error)

// Outcome is the settled result of a race.
type Outcome[T any] struct {
	Kind  Kind
	Value T
	Err   error
}

type signal[T any] struct {
	value T
	err   error
}

// Resolve starts every source concurrently and returns the first terminal
// signal: a source succeeding, a source failing, or the timeout elapsing.
// A timeout <= 0 disables the deadline. Cancellation of ctx settles the race
// as Failed with ctx.Err(). With no sources the race fails at once with
// ErrNoSources.
func Resolve[T any](ctx context.Context, timeout time.Duration, sources ...Source[T]) Outcome[T] {
	if len(sources) == 0 {
		return Outcome[T]{Kind: Failed, Err: ErrNoSources}
	}

	raceCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Buffered to len(sources) so losers never block after we stop reading.
	signals := make(chan signal[T], len(sources))
	for _, src := range sources {
		go func(src Source[T]) {
			v, err := src(raceCtx)
			signals <- signal[T]{value: v, err: err}
		}(src)
	}

	var deadline <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		deadline = timer.C
	}

	select {
	case s := <-signals:
		if s.err != nil {
			return Outcome[T]{Kind: Failed, Err: s.err}
		}
		return Outcome[T]{Kind: Resolved, Value: s.value}
	case <-deadline:
		return Outcome[T]{Kind: TimedOut}
	case <-ctx.Done():
		return Outcome[T]{Kind: Failed, Err: ctx.Err()}
	}
}
