package reactor

// RuleQueue is a named, memoised rule-dispatch queue: every Rule cell
// constructed against the same *RuleQueue reruns together when it
// flushes, via dispatch. A scope's default queue (Scope.defaultRuleQueue)
// is just a RuleQueue like any other, constructed with a nil dispatch.
//
// While one scope's RuleQueue is draining, every other RuleQueue sharing
// that scope's scheduler defers its own drain rather than running
// reentrantly alongside it — draining two rule queues' bodies at once
// would let one rule's write land in the middle of another rule queue's
// recompute, defeating the batch's glitch-freedom.
type RuleQueue struct {
	scope    *Scope
	batch    *BatchQueue[uint64]
	dispatch func(run func())
}

// NewRuleQueue creates a rule queue bound to scope. dispatch wraps each
// drain (e.g. to hop onto a different goroutine or run loop); nil means
// "run the drain inline".
func NewRuleQueue(scope *Scope, dispatch func(run func())) *RuleQueue {
	if dispatch == nil {
		dispatch = func(run func()) { run() }
	}
	rq := &RuleQueue{scope: scope, dispatch: dispatch}
	rq.batch = NewBatchQueue(scope.reapRules, func(flush func()) {
		scope.scheduler.Defer(func() { rq.guardedFlush(flush) })
	})
	return rq
}

// guardedFlush enforces the cross-queue reentrancy guard described on
// RuleQueue before calling through to the underlying batch flush via
// dispatch.
func (rq *RuleQueue) guardedFlush(flush func()) {
	sched := rq.scope.scheduler
	if !sched.drainingRule.CompareAndSwap(nil, rq) {
		sched.Defer(func() { rq.guardedFlush(flush) })
		return
	}
	defer sched.drainingRule.Store(nil)
	rq.dispatch(flush)
}

// Add enqueues a rule cell id onto this queue.
func (rq *RuleQueue) Add(id uint64) { rq.batch.Add(id) }

// Flush drains this queue synchronously, subject to the cross-queue
// reentrancy guard (it defers to a later Defer tick if another queue is
// currently draining).
func (rq *RuleQueue) Flush() { rq.guardedFlush(rq.batch.Flush) }

// Empty reports whether the queue currently has no pending rule cells.
func (rq *RuleQueue) Empty() bool { return rq.batch.Empty() }
