// Package streamsrc provides concrete reactor.PullSource implementations:
// the concrete producers wrapped via reactor.FromPull to feed a Conduit, as
// opposed to the combinators in streamops that reshape an existing
// PullSource.
package streamsrc

import (
	"context"
	"time"

	"github.com/corewire/reactor"
)

// FromSlice returns a PullSource that yields each element of items in order,
// then signals exhaustion.
func FromSlice[T any](items []T) reactor.PullSource[T] {
	i := 0
	return func(reactor.Yield) (T, bool, error) {
		if i >= len(items) {
			var zero T
			return zero, false, nil
		}
		v := items[i]
		i++
		return v, true, nil
	}
}

// FromChannel returns a PullSource that yields values read from ch until it
// is closed, at which point it signals exhaustion.
func FromChannel[T any](ch <-chan T) reactor.PullSource[T] {
	type recv struct {
		v  T
		ok bool
	}
	return func(y reactor.Yield) (T, bool, error) {
		r, err := reactor.Suspend(y, func(settle reactor.Settle[recv]) {
			go func() {
				v, ok := <-ch
				settle(reactor.Next(recv{v, ok}))
			}()
		})
		if err != nil {
			var zero T
			return zero, false, err
		}
		return r.v, r.ok, nil
	}
}

// Interval returns a PullSource that yields an increasing counter, once every
// d, forever (until its owning job ends).
func Interval(d time.Duration) reactor.PullSource[int] {
	n := 0
	return func(y reactor.Yield) (int, bool, error) {
		v, err := reactor.Suspend(y, func(settle reactor.Settle[int]) {
			t := time.AfterFunc(d, func() { settle(reactor.Next(n)) })
			_ = t
		})
		if err != nil {
			return 0, false, err
		}
		n++
		return v, true, nil
	}
}

// FromContext returns a PullSource that yields nothing and signals exhaustion
// as soon as ctx is done, letting a conduit be driven by an external
// context deadline in addition to its job's own lifetime.
func FromContext(ctx context.Context) reactor.PullSource[struct{}] {
	return func(y reactor.Yield) (struct{}, bool, error) {
		select {
		case <-ctx.Done():
			return struct{}{}, false, ctx.Err()
		case <-y.JobDone():
			return struct{}{}, false, nil
		}
	}
}
