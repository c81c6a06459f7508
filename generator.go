package reactor

// GenFunc is a job's body: it runs on its own goroutine and may call
// Suspend any number of times via y before returning its final value or
// error. The body runs once but may yield control repeatedly via y before
// finally returning.
type GenFunc[T any] func(y Yield) (T, error)

// Settle is how a Suspend callback reports its outcome back to the blocked
// generator goroutine.
type Settle[T any] func(Result[T])

// Yield is the handle a running generator body uses to suspend itself
// until some asynchronous event settles. It is bound to the job it was
// created for: if that job ends while a Suspend is outstanding, the
// Suspend call returns ErrJobAlreadyEnded immediately instead of blocking
// forever.
type Yield struct {
	job *jobCore
}

// JobDone returns a channel closed when the job this Yield belongs to
// ends, letting a Source select against job cancellation alongside its own
// events (streamsrc.FromContext does this).
func (y Yield) JobDone() <-chan struct{} { return y.job.done() }

// Suspend blocks the calling generator body until register calls the
// Settle function it is handed, or the owning job ends first. This is the
// single suspension primitive every other blocking helper (To, Sleep,
// Until, glue.go's SuspendFn) is built from.
func Suspend[T any](y Yield, register func(settle Settle[T])) (T, error) {
	resultCh := make(chan Result[T], 1)
	settle := func(r Result[T]) {
		select {
		case resultCh <- r:
		default:
		}
	}

	register(settle)

	select {
	case r := <-resultCh:
		v, _ := r.Value()
		if r.IsError() {
			return v, r.Err()
		}
		if r.IsCancel() {
			return v, ErrJobAlreadyEnded
		}
		return v, nil
	case <-y.job.done():
		var zero T
		return zero, ErrJobAlreadyEnded
	}
}

// genHandoff is the internal message passed from a generator goroutine
// to the goroutine runGenerator starts to settle the job with it.
type genHandoff[T any] struct {
	val T
	err error
}

// runGenerator starts fn on a new goroutine bound to job, recovering any
// panic into a UserError (with a captured stack trace) and settling job
// with the outcome.
func runGenerator[T any](job *Job[T], fn GenFunc[T]) {
	out := make(chan genHandoff[T], 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				out <- genHandoff[T]{err: newUserError(asAnyError(r), "job body")}
			}
		}()
		pushJobFrame(job.jobCore)
		defer popJobFrame()
		v, err := fn(Yield{job: job.jobCore})
		out <- genHandoff[T]{val: v, err: err}
	}()

	go func() {
		h := <-out
		// A body can finish after its job was already ended out of band
		// (parent cancellation, an explicit End() from another goroutine).
		// A returned value is simply discarded in that case, but a
		// returned error must not be: it still needs to escalate via the
		// async-throw chain instead of vanishing silently.
		if job.isEnded() {
			if h.err != nil {
				job.AsyncThrow(h.err)
			}
			return
		}
		if h.err != nil {
			_ = job.Throw(h.err)
			return
		}
		_ = job.Return(h.val)
	}()
}
