package reactor

import "time"

// SuspendFn is a convenience wrapper over Suspend for the common case of a
// single async callback that resolves or rejects a value, without the
// caller writing out the Settle plumbing by hand.
func SuspendFn[T any](y Yield, register func(resolve func(T), reject func(error))) (T, error) {
	return Suspend(y, func(settle Settle[T]) {
		register(
			func(v T) { settle(Next(v)) },
			func(err error) { settle(Throw[T](err)) },
		)
	})
}

// Sleep suspends the calling generator body for d, or until its job ends,
// whichever comes first.
func Sleep(y Yield, d time.Duration) error {
	_, err := Suspend[any](y, func(settle Settle[any]) {
		time.AfterFunc(d, func() { settle(Next[any](nil)) })
	})
	return err
}

// To adapts a Future into a form a generator body can await directly via
// Suspend, bridging the promise world back into the generator world.
func To[T any](y Yield, f *Future[T]) (T, error) {
	return Suspend(y, func(settle Settle[T]) {
		f.req.OnSettle(func(r Result[Result[T]]) {
			v, _ := r.Value()
			settle(v)
		})
	})
}

// Until suspends until cond returns true, re-checking on every Defer tick.
// Intended for short-lived polling against a condition backed by a signal
// cell or external state, not as a general-purpose busy loop.
func Until(y Yield, sched *Scheduler, cond func() bool) error {
	for !cond() {
		_, err := Suspend[any](y, func(settle Settle[any]) {
			sched.Defer(func() { settle(Next[any](nil)) })
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// Each pulls every value from src in turn, calling fn for each, returning
// when src is exhausted or fn/the source reports an error.
func Each[T any](y Yield, src PullSource[T], fn func(T) error) error {
	for {
		v, more, err := src(y)
		if err != nil {
			return err
		}
		if !more {
			return nil
		}
		if err := fn(v); err != nil {
			return err
		}
	}
}

// ForEach starts a Conduit under parent that runs fn for every value
// pulled from src, returning the conduit so the caller can manage its
// lifetime (Inlet, Job) without writing the pump loop by hand.
func ForEach[T any](parent anyJob, src PullSource[T], fn func(T) error) *Conduit[T] {
	return Connect(parent, FromPull(src), fn, nil)
}
