package reactor

import "sync"

// resultOp tags the discriminated variant of a Result.
type resultOp int

const (
	opNext resultOp = iota
	opThrow
	opCancel
)

// handledMarker is the out-of-band "handled" bit attached to error results;
// it is shared by value across copies of the same Result so that marking
// one copy handled is visible through every other copy.
type handledMarker struct {
	mu      sync.Mutex
	handled bool
}

// Result is a job's settlement: exactly one of a value, an error, or a
// cancellation.
type Result[T any] struct {
	op      resultOp
	val     T
	err     error
	handled *handledMarker
}

// Next constructs a value result.
func Next[T any](v T) Result[T] {
	return Result[T]{op: opNext, val: v}
}

// Throw constructs an error result.
func Throw[T any](err error) Result[T] {
	return Result[T]{op: opThrow, err: err, handled: &handledMarker{}}
}

// Cancel constructs a cancellation result.
func Cancel[T any]() Result[T] {
	return Result[T]{op: opCancel}
}

// IsValue reports whether the result is a settled value.
func (r Result[T]) IsValue() bool { return r.op == opNext }

// IsError reports whether the result is an error.
func (r Result[T]) IsError() bool { return r.op == opThrow }

// IsCancel reports whether the result is a cancellation.
func (r Result[T]) IsCancel() bool { return r.op == opCancel }

// Value returns the settled value and whether the result actually carries one.
func (r Result[T]) Value() (T, bool) {
	if r.op != opNext {
		var zero T
		return zero, false
	}
	return r.val, true
}

// Err returns the settled error, or nil if the result is not an error.
func (r Result[T]) Err() error {
	if r.op != opThrow {
		return nil
	}
	return r.err
}

// MarkHandled suppresses async re-throw for an error result.
func (r Result[T]) MarkHandled() {
	if r.handled == nil {
		return
	}
	r.handled.mu.Lock()
	r.handled.handled = true
	r.handled.mu.Unlock()
}

// IsHandled reports whether an error result has been marked handled.
func (r Result[T]) IsHandled() bool {
	if r.handled == nil {
		return false
	}
	r.handled.mu.Lock()
	defer r.handled.mu.Unlock()
	return r.handled.handled
}

// mapResultToAny converts a Result[T] into a Result[any], preserving the handled
// marker so MarkHandled on either view is observed by the other.
func mapResultToAny[T any](r Result[T]) Result[any] {
	switch r.op {
	case opNext:
		return Result[any]{op: opNext, val: r.val}
	case opThrow:
		return Result[any]{op: opThrow, err: r.err, handled: r.handled}
	default:
		return Result[any]{op: opCancel}
	}
}

// Request is a one-shot settleable value: the first of Resolve/Reject wins,
// subsequent calls are no-ops. It is the building block behind Job.Future
// and behind Suspend callbacks.
type Request[T any] struct {
	mu      sync.Mutex
	settled bool
	result  Result[T]
	waiters []func(Result[T])
}

// NewRequest creates an unsettled request.
func NewRequest[T any]() *Request[T] {
	return &Request[T]{}
}

func (r *Request[T]) settle(res Result[T]) bool {
	r.mu.Lock()
	if r.settled {
		r.mu.Unlock()
		return false
	}
	r.settled = true
	r.result = res
	waiters := r.waiters
	r.waiters = nil
	r.mu.Unlock()

	for _, w := range waiters {
		w(res)
	}
	return true
}

// Resolve settles the request with a value. Returns false if already settled.
func (r *Request[T]) Resolve(v T) bool {
	return r.settle(Next(v))
}

// Reject settles the request with an error. Returns false if already settled.
func (r *Request[T]) Reject(err error) bool {
	return r.settle(Throw[T](err))
}

// Resolver returns a bound single-arg function that resolves the request.
func (r *Request[T]) Resolver() func(T) {
	return func(v T) { r.Resolve(v) }
}

// Rejecter returns a bound single-arg function that rejects the request.
func (r *Request[T]) Rejecter() func(error) {
	return func(err error) { r.Reject(err) }
}

// OnSettle registers a callback fired once the request settles; if already
// settled, it fires synchronously and immediately.
func (r *Request[T]) OnSettle(cb func(Result[T])) {
	r.mu.Lock()
	if r.settled {
		res := r.result
		r.mu.Unlock()
		cb(res)
		return
	}
	r.waiters = append(r.waiters, cb)
	r.mu.Unlock()
}

// IsSettled reports whether the request has been settled yet.
func (r *Request[T]) IsSettled() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.settled
}

// Resolve is the free-function form of Request.Resolve.
func Resolve[T any](req *Request[T], v T) bool { return req.Resolve(v) }

// Reject is the free-function form of Request.Reject.
func Reject[T any](req *Request[T], err error) bool { return req.Reject(err) }

// Resolver is the free-function form of Request.Resolver.
func Resolver[T any](req *Request[T]) func(T) { return req.Resolver() }

// Rejecter is the free-function form of Request.Rejecter.
func Rejecter[T any](req *Request[T]) func(error) { return req.Rejecter() }

// IsValue reports whether a result is a settled value.
func IsValue[T any](r Result[T]) bool { return r.IsValue() }

// IsError reports whether a result is an error.
func IsError[T any](r Result[T]) bool { return r.IsError() }

// IsCancel reports whether a result is a cancellation.
func IsCancel[T any](r Result[T]) bool { return r.IsCancel() }

// MarkHandled suppresses async re-throw for an error result.
func MarkHandled[T any](r Result[T]) { r.MarkHandled() }

// IsHandled reports whether an error result has been marked handled.
func IsHandled[T any](r Result[T]) bool { return r.IsHandled() }
