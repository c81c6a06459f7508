package reactor

// StreamCell creates a stream-backed cell that tracks the most recent
// value pulled from src under job's lifetime. This bridges cells and
// streams: a stream becomes an ordinary reactive source for Rule/Computed
// bodies to read. The cell starts observed (subscribed immediately, like
// Rule); Release stops the underlying conduit and reverts the cell's
// value back to initial, the demand-hits-zero transition.
func StreamCell[T any](job anyJob, scope *Scope, src PullSource[T], initial T) *CellHandle[T] {
	h := newCell[T](scope, kindStream, nil)
	h.c.value = initial
	h.c.streamSrc = src
	h.c.streamInitial = initial
	h.c.streamParent = job.core()

	ts := scope.scheduler.advanceForWrite()
	h.c.lastChanged = ts
	h.c.validThrough = ts

	h.c.mu.Lock()
	h.c.observed = true
	h.c.mu.Unlock()
	h.startStream()
	return h
}

// Pipe drains every change to a cell out as a PullSource, letting a
// reactive value be consumed by the stream combinators in streamops. The
// first pull returns the value the cell held when Pipe was called; each
// later pull suspends until a scheduler Defer callback peeks the cell's
// current value. A pull does not wait for the value to change, so
// consecutive pulls can return the same value.
func Pipe[T any](h *CellHandle[T]) PullSource[T] {
	last, _ := h.Peek(), struct{}{}
	first := true
	return func(y Yield) (T, bool, error) {
		if first {
			first = false
			return last, true, nil
		}
		v, err := Suspend(y, func(settle Settle[T]) {
			h.c.scope.scheduler.Defer(func() {
				v := h.Peek()
				settle(Next(v))
			})
		})
		return v, err == nil, err
	}
}
