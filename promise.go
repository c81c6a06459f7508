package reactor

// Future bridges a Job's eventual settlement to promise-style consumers
// that don't want to write a generator body. Built on Request, the
// one-shot settlement primitive (Suspend itself waits on a channel).
type Future[T any] struct {
	req *Request[Result[T]]
}

// Await blocks until the future settles, returning its value or error. A
// cancellation is surfaced as a *CancelError.
func (f *Future[T]) Await() (T, error) {
	done := make(chan Result[T], 1)
	f.req.OnSettle(func(r Result[Result[T]]) {
		v, _ := r.Value()
		done <- v
	})
	res := <-done
	if res.IsError() {
		var zero T
		return zero, res.Err()
	}
	if res.IsCancel() {
		var zero T
		return zero, &CancelError{}
	}
	v, _ := res.Value()
	return v, nil
}

// Then registers a callback for a successful settlement.
func (f *Future[T]) Then(cb func(T)) *Future[T] {
	f.req.OnSettle(func(r Result[Result[T]]) {
		v, _ := r.Value()
		if v.IsValue() {
			val, _ := v.Value()
			cb(val)
		}
	})
	return f
}

// Catch registers a callback for a failed or cancelled settlement.
func (f *Future[T]) Catch(cb func(error)) *Future[T] {
	f.req.OnSettle(func(r Result[Result[T]]) {
		v, _ := r.Value()
		if v.IsError() {
			cb(v.Err())
		} else if v.IsCancel() {
			cb(&CancelError{})
		}
	})
	return f
}

// Finally registers a callback that runs once the future settles, whatever
// the outcome.
func (f *Future[T]) Finally(cb func()) *Future[T] {
	f.req.OnSettle(func(Result[Result[T]]) { cb() })
	return f
}
