package reactor

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// jobStatus is the lifecycle state of a job: running or ended.
type jobStatus int32

const (
	statusRunning jobStatus = iota
	statusEnded
)

// jobCore is the untyped half of a Job: the tree edges, cleanup chain and
// metadata that don't depend on the job's result type T. Job[T] embeds a
// *jobCore and adds the typed settlement on top.
type jobCore struct {
	id         uint64
	scope      *Scope
	parent     *jobCore
	mu         sync.Mutex
	children   map[*jobCore]struct{}
	cleanups   cleanupChain
	status     atomic.Int32
	result     Result[any]
	metadata   map[string]any
	onEnd      []func(Result[any])
	doneCh     chan struct{}
	asyncCatch func(error) // installed via Job.AsyncCatch; intercepts asyncThrow before it ends/escalates
}

// done returns a channel closed once jc ends, lazily allocated. Used by
// Inlet and Suspend to select against job cancellation without polling.
func (jc *jobCore) done() <-chan struct{} {
	jc.mu.Lock()
	defer jc.mu.Unlock()
	if jc.doneCh == nil {
		jc.doneCh = make(chan struct{})
		if jobStatus(jc.status.Load()) == statusEnded {
			close(jc.doneCh)
		}
	}
	return jc.doneCh
}

func (jc *jobCore) metaMap() map[string]any {
	jc.mu.Lock()
	defer jc.mu.Unlock()
	if jc.metadata == nil {
		jc.metadata = make(map[string]any)
	}
	return jc.metadata
}

// addChild links child under jc, unless jc has already ended, in which case
// child is ended immediately with the same result: a job started after its
// parent ended is cancelled synchronously.
func (jc *jobCore) addChild(child *jobCore) {
	jc.mu.Lock()
	if jobStatus(jc.status.Load()) == statusEnded {
		res := jc.result
		jc.mu.Unlock()
		child.end(res)
		return
	}
	if jc.children == nil {
		jc.children = make(map[*jobCore]struct{})
	}
	jc.children[child] = struct{}{}
	jc.mu.Unlock()
}

func (jc *jobCore) removeChild(child *jobCore) {
	jc.mu.Lock()
	delete(jc.children, child)
	jc.mu.Unlock()
}

// end settles jc exactly once with res, then sweeps: ends every child with
// the same result (running their cleanup chains), runs jc's own cleanup
// chain, and fires onEnd callbacks. Entries are captured under lock before
// anything runs: a single lock-guarded transition decides the winner of a
// concurrent release-vs-end race, and everything after that happens
// without the lock held.
func (jc *jobCore) end(res Result[any]) bool {
	jc.mu.Lock()
	if jobStatus(jc.status.Load()) == statusEnded {
		jc.mu.Unlock()
		return false
	}
	jc.status.Store(int32(statusEnded))
	jc.result = res
	children := make([]*jobCore, 0, len(jc.children))
	for c := range jc.children {
		children = append(children, c)
	}
	jc.children = nil
	callbacks := jc.onEnd
	jc.onEnd = nil
	if jc.doneCh != nil {
		close(jc.doneCh)
	}
	jc.mu.Unlock()

	if jc.parent != nil {
		jc.parent.removeChild(jc)
	}

	if jc.scope != nil && jc.scope.jobTree != nil {
		jc.scope.jobTree.Snapshot(jc)
	}

	// Children are torn down, and their own cleanups run, before this job's
	// cleanup chain runs: a child's resources are released while the parent
	// resources it may depend on are still live.
	for _, c := range children {
		c.end(res)
	}

	jc.cleanups.runAll(func(err error) {
		jc.reportCleanupError(err)
	})

	for _, cb := range callbacks {
		cb(res)
	}

	// An error result that nothing marked handled (no OnError/AsyncCatch
	// observer claimed it) outlives this job's stack and must escalate:
	// to the parent's own asyncThrow, or to the scope's unhandled-error
	// facility if this is the root.
	if res.op == opThrow && !res.IsHandled() {
		if jc.parent != nil {
			jc.parent.asyncThrow(res.err)
		} else if jc.scope != nil {
			jc.scope.notifyError(Operation{Kind: OpJobAsyncThrow, ID: jc.id}, res.err)
		}
	}
	return true
}

// asyncThrow is the escalation primitive behind Job.AsyncThrow: call the
// installed asyncCatch handler if there is one; otherwise end the job with
// the error (running its cleanup chain like any other throw) or, if it has
// already ended, re-dispatch to the parent's asyncThrow, and ultimately to
// the scope's unhandled-error facility at the root.
func (jc *jobCore) asyncThrow(err error) {
	jc.mu.Lock()
	handler := jc.asyncCatch
	jc.mu.Unlock()
	if handler != nil {
		handler(err)
		return
	}

	if jc.end(Result[any]{op: opThrow, err: err, handled: &handledMarker{}}) {
		return
	}

	if jc.parent != nil {
		jc.parent.asyncThrow(err)
		return
	}
	if jc.scope != nil {
		jc.scope.notifyError(Operation{Kind: OpJobAsyncThrow, ID: jc.id}, err)
	}
}

func (jc *jobCore) reportCleanupError(err error) {
	if jc.scope == nil {
		return
	}
	jc.scope.notifyCleanupError(&CleanupError{JobID: jc.id, Err: err, Context: "end"})
}

// isEnded reports whether the job has already settled.
func (jc *jobCore) isEnded() bool {
	return jobStatus(jc.status.Load()) == statusEnded
}

// onEndedCall registers cb to run once jc ends, firing immediately if jc
// has already ended.
func (jc *jobCore) onEndedCall(cb func(Result[any])) {
	jc.mu.Lock()
	if jobStatus(jc.status.Load()) == statusEnded {
		res := jc.result
		jc.mu.Unlock()
		cb(res)
		return
	}
	jc.onEnd = append(jc.onEnd, cb)
	jc.mu.Unlock()
}

// Job is a structured-concurrency unit: a cancellable node in a job tree
// that owns a cleanup chain and settles exactly once with a Result[T].
type Job[T any] struct {
	*jobCore
}

// newJobCore allocates a jobCore under parent (nil for a root job) and
// registers it with scope's id counter.
func newJobCore(scope *Scope, parent *jobCore) *jobCore {
	jc := &jobCore{
		id:     scope.nextID(),
		scope:  scope,
		parent: parent,
	}
	if parent != nil {
		parent.addChild(jc)
	}
	if scope.jobTree != nil {
		scope.jobTree.Snapshot(jc)
	}
	return jc
}

// NewRoot creates a new top-level job tree rooted at a fresh scope's
// implicit root job.
func NewRoot() *Job[any] {
	scope := NewScope()
	return scope.rootJob
}

// anyJob is satisfied by every Job[T] regardless of T, so APIs that only
// need tree/lifetime access (Start, Connect) don't force callers to box
// their job as Job[any].
type anyJob interface {
	core() *jobCore
}

func (j *Job[T]) core() *jobCore { return j.jobCore }

// jobCoreRef adapts a raw *jobCore to anyJob, used internally wherever a
// parent job handle must be reconstructed from a jobCore pointer stored
// outside any Job[T] (e.g. a stream-backed cell's remembered parent).
type jobCoreRef struct{ jc *jobCore }

func (r jobCoreRef) core() *jobCore { return r.jc }

// Start spawns a child job under parent running fn as a generator body on
// its own goroutine, returning the child immediately. The child inherits
// parent's scope and is ended automatically if parent ends first.
func Start[T any](parent anyJob, fn GenFunc[T]) *Job[T] {
	parentCore := parent.core()
	core := newJobCore(parentCore.scope, parentCore)
	child := &Job[T]{jobCore: core}
	runGenerator(child, fn)
	return child
}

// Must registers a cleanup callback that always runs when j ends,
// regardless of whether it ends in a value, error, or cancellation.
func (j *Job[T]) Must(cb func() error) {
	if !j.cleanups.add(cb) {
		if err := runGuarded(cb); err != nil {
			j.reportCleanupError(err)
		}
	}
}

// Release registers a cleanup callback identically to Must; the distinct
// name exists to read naturally at call sites that acquire a resource and
// immediately arrange its release ("acquire, then j.Release(resource.Close)").
func (j *Job[T]) Release(cb func() error) {
	j.Must(cb)
}

// Do runs fn immediately and, if it returns a non-nil teardown, registers
// that teardown via Must. A convenience for the common
// "acquire resource, arrange its release" pairing.
func (j *Job[T]) Do(fn func() (func() error, error)) error {
	teardown, err := fn()
	if err != nil {
		return err
	}
	if teardown != nil {
		j.Must(teardown)
	}
	return nil
}

// Result returns the job's settled Result, or the zero Result with ok=false
// if it hasn't ended yet.
func (j *Job[T]) Result() (Result[T], bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if jobStatus(j.status.Load()) != statusEnded {
		return Result[T]{}, false
	}
	return convertResult[T](j.result), true
}

func convertResult[T any](r Result[any]) Result[T] {
	switch r.op {
	case opNext:
		v, _ := r.val.(T)
		return Next(v)
	case opThrow:
		return Result[T]{op: opThrow, err: r.err, handled: r.handled}
	default:
		return Cancel[T]()
	}
}

// Return settles j with a value, ending its cleanup sweep. Returns
// ErrJobAlreadyEnded if j has already settled.
func (j *Job[T]) Return(v T) error {
	if !j.end(Next[any](v)) {
		return ErrJobAlreadyEnded
	}
	return nil
}

// Throw settles j with an error. Returns ErrJobAlreadyEnded if j has
// already settled.
func (j *Job[T]) Throw(err error) error {
	if !j.end(Result[any]{op: opThrow, err: err, handled: &handledMarker{}}) {
		return ErrJobAlreadyEnded
	}
	return nil
}

// End settles j with a cancellation. Idempotent: ending an already-ended
// job is a no-op (unlike Return/Throw, which report ErrJobAlreadyEnded) —
// cancelling twice is not an error.
func (j *Job[T]) End() {
	j.end(Cancel[any]())
}

// Restart ends j with a cancellation and immediately starts a fresh
// generator run in its place, reusing the same jobCore identity. Intended
// for long-running supervisors that want to replace their child's body
// without losing the parent edge.
func (j *Job[T]) Restart(fn GenFunc[T]) {
	j.End()
	j.status.Store(int32(statusRunning))
	j.cleanups = cleanupChain{}
	runGenerator(j, fn)
}

// OnValue registers cb to run if j ends with a value.
func (j *Job[T]) OnValue(cb func(T)) {
	j.onEndedCall(func(res Result[any]) {
		if res.op == opNext {
			v, _ := res.val.(T)
			cb(v)
		}
	})
}

// OnError registers cb to run if j ends with an error, marking it handled
// so no async re-throw escapes to the scope's uncaught-error extension hook.
func (j *Job[T]) OnError(cb func(error)) {
	j.onEndedCall(func(res Result[any]) {
		if res.op == opThrow {
			res.MarkHandled()
			cb(res.err)
		}
	})
}

// OnCancel registers cb to run if j ends via cancellation.
func (j *Job[T]) OnCancel(cb func()) {
	j.onEndedCall(func(res Result[any]) {
		if res.op == opCancel {
			cb()
		}
	})
}

// AsyncThrow reports an error on j without requiring the caller to be
// inside the generator body: if j has an AsyncCatch handler installed,
// that handler intercepts it; otherwise it ends j with the error, or, if j
// has already ended, escalates to the parent job's AsyncThrow and
// eventually to the scope's unhandled-error facility at the root. Used by
// the generator driver when a body finishes with an error after its job
// was already cancelled out of band.
func (j *Job[T]) AsyncThrow(err error) {
	j.asyncThrow(err)
}

// AsyncCatch installs cb as j's async-throw handler: every subsequent
// AsyncThrow on j (including ones that would otherwise escalate to j from
// an already-ended child) calls cb instead of ending j or re-dispatching
// to its parent.
func (j *Job[T]) AsyncCatch(cb func(error)) {
	j.mu.Lock()
	j.asyncCatch = cb
	j.mu.Unlock()
}

// Future returns a Future that settles when j ends, bridging the
// generator/job world to promise-style consumers (see promise.go).
func (j *Job[T]) Future() *Future[T] {
	f := &Future[T]{req: NewRequest[Result[T]]()}
	j.onEndedCall(func(res Result[any]) {
		f.req.Resolve(convertResult[T](res))
	})
	return f
}

// String renders a debug identifier, used by GraphDebugExtension.
func (j *Job[T]) String() string {
	return fmt.Sprintf("job#%d", j.id)
}
