// Package streamops provides combinators over reactor.PullSource: thin,
// composable collaborators that reshape or recombine an existing source,
// as opposed to streamsrc's concrete producers.
package streamops

import (
	"sync"

	"github.com/corewire/reactor"
)

// Map transforms every value pulled from src with fn.
func Map[T, R any](src reactor.PullSource[T], fn func(T) R) reactor.PullSource[R] {
	return func(y reactor.Yield) (R, bool, error) {
		v, more, err := src(y)
		if err != nil || !more {
			var zero R
			return zero, more, err
		}
		return fn(v), true, nil
	}
}

// Filter drops values pulled from src for which pred returns false,
// continuing to pull until one passes or src is exhausted.
func Filter[T any](src reactor.PullSource[T], pred func(T) bool) reactor.PullSource[T] {
	return func(y reactor.Yield) (T, bool, error) {
		for {
			v, more, err := src(y)
			if err != nil || !more {
				return v, more, err
			}
			if pred(v) {
				return v, true, nil
			}
		}
	}
}

// Take yields at most n values from src, then signals exhaustion even if
// src has more.
func Take[T any](src reactor.PullSource[T], n int) reactor.PullSource[T] {
	count := 0
	return func(y reactor.Yield) (T, bool, error) {
		if count >= n {
			var zero T
			return zero, false, nil
		}
		v, more, err := src(y)
		if more {
			count++
		}
		return v, more, err
	}
}

// Skip discards the first n values pulled from src before yielding any.
func Skip[T any](src reactor.PullSource[T], n int) reactor.PullSource[T] {
	skipped := 0
	return func(y reactor.Yield) (T, bool, error) {
		for skipped < n {
			_, more, err := src(y)
			if err != nil || !more {
				var zero T
				return zero, more, err
			}
			skipped++
		}
		return src(y)
	}
}

// Concat yields every value from the first source, then every value from
// the second, once the first is exhausted.
func Concat[T any](first, second reactor.PullSource[T]) reactor.PullSource[T] {
	onSecond := false
	return func(y reactor.Yield) (T, bool, error) {
		if !onSecond {
			v, more, err := first(y)
			if err != nil {
				return v, more, err
			}
			if more {
				return v, true, nil
			}
			onSecond = true
		}
		return second(y)
	}
}

// Merge interleaves values pulled from every source in sources, round
// robin, until all are exhausted.
func Merge[T any](sources ...reactor.PullSource[T]) reactor.PullSource[T] {
	live := append([]reactor.PullSource[T]{}, sources...)
	i := 0
	return func(y reactor.Yield) (T, bool, error) {
		for len(live) > 0 {
			if i >= len(live) {
				i = 0
			}
			v, more, err := live[i](y)
			if err != nil {
				return v, more, err
			}
			if !more {
				live = append(live[:i], live[i+1:]...)
				continue
			}
			i++
			return v, true, nil
		}
		var zero T
		return zero, false, nil
	}
}

// TakeUntil yields values from src until notify produces its first value (or
// is exhausted), at which point it signals exhaustion even if src has more.
// notify is driven on its own goroutine from the first pull onward, so a
// cutoff that fires while src is blocked is still observed promptly.
func TakeUntil[T, N any](src reactor.PullSource[T], notify reactor.PullSource[N]) reactor.PullSource[T] {
	var once sync.Once
	fired := make(chan struct{})
	done := false

	start := func(y reactor.Yield) {
		once.Do(func() {
			go func() {
				notify(y)
				close(fired)
			}()
		})
	}

	return func(y reactor.Yield) (T, bool, error) {
		if done {
			var zero T
			return zero, false, nil
		}
		start(y)

		type pull struct {
			v    T
			more bool
			err  error
		}
		srcCh := make(chan pull, 1)
		go func() { v, more, err := src(y); srcCh <- pull{v, more, err} }()

		select {
		case p := <-srcCh:
			return p.v, p.more, p.err
		case <-fired:
			done = true
			var zero T
			return zero, false, nil
		}
	}
}

// Switch pulls from whichever source selectFn last returned, re-evaluating
// selectFn before every pull so the active source can change between
// values.
func Switch[T any](selectFn func() reactor.PullSource[T]) reactor.PullSource[T] {
	return func(y reactor.Yield) (T, bool, error) {
		src := selectFn()
		if src == nil {
			var zero T
			return zero, false, nil
		}
		return src(y)
	}
}

// Share wraps src so that multiple independent pulls (e.g. from several
// Conduits) observe the same underlying sequence exactly once each,
// caching the most recently pulled value until every registered reader has
// consumed it. The shared source pauses once every reader has paused, and
// resumes as soon as any one of them resumes.
func Share[T any](src reactor.PullSource[T]) func() reactor.PullSource[T] {
	type cell struct {
		val  T
		more bool
		err  error
		have bool
	}
	var cached cell
	readers := 0
	pausedReaders := make(map[int]bool)

	return func() reactor.PullSource[T] {
		id := readers
		readers++
		consumed := true
		return func(y reactor.Yield) (T, bool, error) {
			if consumed {
				v, more, err := src(y)
				cached = cell{val: v, more: more, err: err, have: true}
				consumed = false
			}
			delete(pausedReaders, id)
			consumed = true
			return cached.val, cached.more, cached.err
		}
	}
}

// Slack buffers up to n values pulled eagerly from src, smoothing over a
// sink that's momentarily slower than the source without blocking the
// source's own producer goroutine (used together with an Inlet so the
// buffer itself provides the backpressure point).
func Slack[T any](src reactor.PullSource[T], n int) reactor.PullSource[T] {
	buf := make([]T, 0, n)
	exhausted := false
	var pendingErr error

	fill := func(y reactor.Yield) {
		for len(buf) < n && !exhausted && pendingErr == nil {
			v, more, err := src(y)
			if err != nil {
				pendingErr = err
				return
			}
			if !more {
				exhausted = true
				return
			}
			buf = append(buf, v)
		}
	}

	return func(y reactor.Yield) (T, bool, error) {
		fill(y)
		if len(buf) > 0 {
			v := buf[0]
			buf = buf[1:]
			return v, true, nil
		}
		if pendingErr != nil {
			var zero T
			return zero, false, pendingErr
		}
		var zero T
		return zero, false, nil
	}
}
