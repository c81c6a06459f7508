package reactor

import (
	"reflect"
	"sync"
)

type cellKind int

const (
	kindValue cellKind = iota
	kindComputed
	kindRule
	kindStream
)

// anyCell is the untyped surface Scope drives its three batch queues
// through (reapPull/reapRules/reapDemand).
type anyCell interface {
	cellID() uint64
	metaMap() map[string]any
	recalc()
	runRule()
	updateDemand()
	ruleQueueOf() *RuleQueue
}

// cell is the untyped core of Cell[T]: the graph bookkeeping, timestamps
// and demand state that don't depend on T.
type cell struct {
	id    uint64
	scope *Scope
	kind  cellKind
	name  string

	mu           sync.RWMutex
	lastChanged  uint64 // timestamp the value last actually changed
	validThrough uint64 // timestamp through which the cached value is known current
	latestSource uint64 // newest lastChanged among this cell's dependencies
	lastRead     uint64 // timestamp this cell was last read via Get; 0 if never read or last read at timestamp 0
	computing    bool   // reentrancy guard: true while this cell's compute is on the stack
	observed     bool   // true once something is actively watching this cell
	released     bool

	validate func(any) (any, error) // set by WithValidate; nil for an unvalidated value cell

	ruleJob   *jobCore   // kindRule only: the current execution's owning child job
	ruleQueue *RuleQueue // kindRule only: which queue dispatches this rule's reruns

	streamParent *jobCore // kindStream only: the job its backing conduit runs under
	streamJob    *jobCore // kindStream only: the backing conduit's job while demand is live

	metadata map[string]any
}

func (c *cell) cellID() uint64 { return c.id }

// rotateRuleJob ends the rule cell's previous execution job (running
// whatever cleanups its RuleCtx registered via OnCleanup) and starts a
// fresh child job under the scope's root for the upcoming execution. A
// rule cell's body always runs inside a job whose lifetime matches that
// one execution, never the cell's entire lifetime.
func (c *cell) rotateRuleJob() *jobCore {
	c.mu.Lock()
	prev := c.ruleJob
	c.mu.Unlock()
	if prev != nil {
		prev.end(Cancel[any]())
	}

	next := newJobCore(c.scope, c.scope.rootJob.jobCore)
	c.mu.Lock()
	c.ruleJob = next
	c.mu.Unlock()
	return next
}

func (c *cell) metaMap() map[string]any {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.metadata == nil {
		c.metadata = make(map[string]any)
	}
	return c.metadata
}

// Cell is a typed reactive signal cell: a value, a computed derivation, or
// a rule's backing node. Reads and writes go through CellHandle, which is
// what Value/Computed*/StreamCell return (Rule returns a stop function
// instead).
type Cell[T any] struct {
	*cell
	value       T
	err         error
	compute     func(rc *RuleCtx) (T, error)
	unchangedIf func(old, new T) bool

	streamSrc     PullSource[T] // kindStream only: the producer feeding this cell
	streamInitial T         // kindStream only: the value to revert to when demand hits zero
}

// CellHandle is the public handle to a cell: Get/Peek/Update/Release/
// Reload/IsCached.
type CellHandle[T any] struct {
	c *Cell[T]
}

func newCell[T any](scope *Scope, kind cellKind, compute func(rc *RuleCtx) (T, error)) *CellHandle[T] {
	core := &cell{id: scope.nextID(), scope: scope, kind: kind}
	typed := &Cell[T]{cell: core, compute: compute}
	h := &CellHandle[T]{c: typed}
	scope.registerCell(core.id, h)
	return h
}

func (h *CellHandle[T]) cellID() uint64          { return h.c.id }
func (h *CellHandle[T]) metaMap() map[string]any { return h.c.metaMap() }

// ValueOption configures a Value cell at construction, mirroring the
// functional-options shape ScopeOption already uses.
type ValueOption[T any] func(*Cell[T])

// WithValidate attaches a schema.Schema (or any compatible validator) that
// every subsequent Update must pass before it reaches the signal graph: a
// rejected write returns the validator's error and never advances the
// cell's timestamp or dirties a subscriber.
func WithValidate[T any](validator interface {
	Validate(value any) (any, error)
}) ValueOption[T] {
	return func(c *Cell[T]) {
		c.validate = func(v any) (any, error) { return validator.Validate(v) }
	}
}

// Value creates a mutable source cell seeded with initial.
func Value[T any](scope *Scope, initial T, opts ...ValueOption[T]) *CellHandle[T] {
	h := newCell[T](scope, kindValue, nil)
	for _, opt := range opts {
		opt(h.c)
	}
	h.c.value = initial
	ts := scope.scheduler.advanceForWrite()
	h.c.lastChanged = ts
	h.c.validThrough = ts
	return h
}

// Computed1 creates a derived cell computed from dep on its first Get and
// recomputed whenever dep's value changes: the write's pull-queue flush
// recomputes it right away, whether or not the computed cell is observed.
// See computed_generated.go for Computed2..Computed9.
func Computed1[A, T any](dep *CellHandle[A], fn func(rc *RuleCtx, a *CellHandle[A]) (T, error)) *CellHandle[T] {
	h := newCell[T](dep.c.scope, kindComputed, func(rc *RuleCtx) (T, error) {
		return fn(rc, dep)
	})
	dep.c.scope.graph.AddDependency(dep.c.id, h.c.id)
	return h
}

// Rule registers a side-effecting body that reruns whenever any cell it
// reads changes, dispatched through queue if given, or the scope's
// default rule queue otherwise. Every run gets its own child job (see
// RuleCtx.OnCleanup), ended when the rule reruns or is stopped. Rule
// returns a stop function that permanently disables further reruns.
func Rule(scope *Scope, fn func(rc *RuleCtx) error, queue ...*RuleQueue) func() {
	rq := scope.defaultRuleQueue
	if len(queue) > 0 && queue[0] != nil {
		rq = queue[0]
	}

	h := newCell[struct{}](scope, kindRule, func(rc *RuleCtx) (struct{}, error) {
		return struct{}{}, fn(rc)
	})
	h.c.observed = true
	h.c.ruleQueue = rq
	rq.Add(h.c.id)
	return func() {
		h.c.mu.Lock()
		h.c.released = true
		job := h.c.ruleJob
		h.c.ruleJob = nil
		h.c.mu.Unlock()
		if job != nil {
			job.end(Cancel[any]())
		}
	}
}

// UnchangedIf installs a comparator used to suppress propagation when a
// computed cell recomputes to a value the comparator considers equal to
// its previous one, avoiding needless downstream reruns.
func (h *CellHandle[T]) UnchangedIf(eq func(old, new T) bool) *CellHandle[T] {
	h.c.unchangedIf = eq
	return h
}

// IsObserved reports the cell's observed flag: set by Reactive, and at
// construction for rule and stream-backed cells; cleared by Release. It is
// not derived from the cell's dependents, so a cell that an observed cell
// reads is not reported as observed.
func (h *CellHandle[T]) IsObserved() bool {
	h.c.mu.RLock()
	defer h.c.mu.RUnlock()
	return h.c.observed
}

// Named attaches a debug name to the cell, surfaced by extensions like
// LoggingExtension and GraphDebugExtension instead of a bare cell id.
func (h *CellHandle[T]) Named(name string) *CellHandle[T] {
	h.c.name = name
	return h
}

// Peek reads the cell's current cached value without registering a
// dependency edge and without forcing a recompute.
func (h *CellHandle[T]) Peek() T {
	h.c.mu.RLock()
	defer h.c.mu.RUnlock()
	return h.c.value
}

// Get reads the cell's value, recomputing first if it is a stale
// computed cell, and registers a dependency edge from rc's running cell
// onto this one if rc identifies one. Returns a CircularDependency error
// if this cell is already on the current compute stack.
func (h *CellHandle[T]) Get(rc *RuleCtx) (T, error) {
	h.c.mu.RLock()
	computing := h.c.computing
	h.c.mu.RUnlock()
	if computing {
		var zero T
		return zero, &CircularDependency{Cell: h.c.id}
	}

	h.c.scope.scheduler.noteRead()
	h.c.mu.Lock()
	h.c.lastRead = h.c.scope.scheduler.timestampNow()
	h.c.mu.Unlock()

	if h.c.kind == kindComputed {
		h.c.mu.RLock()
		// A computed cell that has never run has both timestamps at 0, which
		// would otherwise pass for current at timestamp 0; such a cell is
		// recomputed on every Get until the timestamp first advances.
		stale := h.c.validThrough < h.c.scope.scheduler.timestampNow() ||
			(h.c.validThrough == 0 && h.c.lastChanged == 0)
		h.c.mu.RUnlock()
		if stale {
			h.recalcTyped()
		}
	}

	if rc != nil && rc.reader != 0 {
		h.c.scope.graph.AddDependency(h.c.id, rc.reader)
	}

	h.c.mu.RLock()
	v, err := h.c.value, h.c.err
	h.c.mu.RUnlock()
	return v, err
}

// Update writes a new value into a Value cell. Returns a WriteConflict if
// the cell has already been read at the scope's current timestamp by a
// rule/computed still in the same batch: a cell must not change after
// something has already observed its prior value this tick (glitch
// freedom).
func (h *CellHandle[T]) Update(v T) error {
	op := Operation{Kind: OpCellWrite, ID: h.c.id, Name: h.c.name}
	err := h.c.scope.wrap(op, func() error { return h.doUpdate(v) })
	if err != nil {
		h.c.scope.notifyError(op, err)
	}
	return err
}

// doUpdate implements the write-rules summary: outside any rule or
// computed body, a same-value write is a no-op, else the timestamp
// advances before dirtying; inside a rule body, a write is allowed unless
// the cell was already read this timestamp or is a direct source of the
// running rule (either throws), and it never advances the timestamp
// itself (rule-phase writes ride the timestamp the rule itself runs at);
// inside a computed body, writes are always forbidden.
func (h *CellHandle[T]) doUpdate(v T) error {
	if h.c.kind != kindValue && h.c.kind != kindStream {
		return &WriteConflict{Cell: h.c.id, Cause: "not a value or stream-backed cell"}
	}

	frame, inBody := currentCellFrame()
	if inBody && frame.kind == kindComputed {
		return &WriteConflict{Cell: h.c.id, Cause: "writes are forbidden inside a computed cell body"}
	}
	inRule := inBody && frame.kind == kindRule

	if h.c.validate != nil {
		if _, err := h.c.validate(v); err != nil {
			return err
		}
	}

	if inRule {
		if h.c.scope.graph.IsDirectSourceOf(h.c.id, frame.cellID) {
			return &CircularDependency{Cell: h.c.id}
		}
		h.c.mu.RLock()
		alreadyRead := h.c.lastRead != 0 && h.c.lastRead == h.c.scope.scheduler.timestampNow()
		h.c.mu.RUnlock()
		if alreadyRead {
			return &WriteConflict{Cell: h.c.id, Cause: "already read at the current timestamp inside a rule"}
		}
	}

	h.c.mu.RLock()
	unchanged := reflect.DeepEqual(h.c.value, v)
	h.c.mu.RUnlock()
	if unchanged && !inRule {
		return nil
	}

	var ts uint64
	if inRule {
		ts = h.c.scope.scheduler.timestampNow()
	} else {
		ts = h.c.scope.scheduler.advanceForWrite()
	}

	h.c.mu.Lock()
	if h.c.validThrough >= ts && ts != 0 && h.c.lastChanged == ts {
		h.c.mu.Unlock()
		return &WriteConflict{Cell: h.c.id, Cause: "already written at current timestamp"}
	}
	h.c.value = v
	h.c.lastChanged = ts
	h.c.validThrough = ts
	h.c.mu.Unlock()

	h.propagate()
	return nil
}

// propagate marks every transitive dependent dirty: rule cells go onto
// whichever RuleQueue they were constructed with; every other dependent
// goes onto the pull queue, whose flush (run through the scheduler's
// Defer) recomputes it right away rather than on its next Get, whether or
// not it is observed. Every touched rule queue is then scheduled to flush.
func (h *CellHandle[T]) propagate() {
	touched := map[*RuleQueue]struct{}{}
	for _, depID := range h.c.scope.graph.FindDependents(h.c.id) {
		h.c.scope.mu.RLock()
		dep, ok := h.c.scope.cells[depID]
		h.c.scope.mu.RUnlock()
		if !ok {
			continue
		}
		if rq := dep.ruleQueueOf(); rq != nil {
			rq.Add(depID)
			touched[rq] = struct{}{}
		} else {
			h.c.scope.pullQueue.Add(depID)
		}
	}
	for rq := range touched {
		rq := rq
		h.c.scope.scheduler.Defer(rq.Flush)
	}
}

// Release detaches the cell from the graph and marks it unobserved; a
// subsequent Get on a computed cell will still work but will never be
// marked observed again automatically. For a stream-backed cell, this is
// also the demand-drops-to-zero transition: its backing conduit is ended
// and its value reverts to the initial one it was constructed with.
func (h *CellHandle[T]) Release() {
	h.c.mu.Lock()
	h.c.released = true
	h.c.observed = false
	h.c.mu.Unlock()
	if h.c.kind == kindStream {
		h.stopStream()
	}
	h.c.scope.graph.RemoveReader(h.c.id)
	h.c.scope.unregisterCell(h.c.id)
}

// Reload forces a computed cell to recompute immediately, ignoring its
// cached validThrough.
func (h *CellHandle[T]) Reload() (T, error) {
	h.recalcTyped()
	h.c.mu.RLock()
	defer h.c.mu.RUnlock()
	return h.c.value, h.c.err
}

// IsCached reports whether the cell's cached value is valid at the
// scope's current timestamp.
func (h *CellHandle[T]) IsCached() bool {
	h.c.mu.RLock()
	defer h.c.mu.RUnlock()
	return h.c.validThrough >= h.c.scope.scheduler.timestampNow()
}

// Reactive sets the cell's observed flag and queues a demand update for it:
// a stream-backed cell starts its conduit, any other cell passes the
// update on to its upstream sources. Write propagation does not consult
// the flag; dependents are recomputed the same way whether or not they are
// observed. Returns h for chaining at construction
// (`Computed1(v.Reactive(), ...)`, per the package doc's usage example).
func (h *CellHandle[T]) Reactive() *CellHandle[T] {
	h.c.mu.Lock()
	h.c.observed = true
	h.c.mu.Unlock()
	h.c.scope.demandQueue.Add(h.c.id)
	return h
}

// ruleQueueOf returns the RuleQueue this cell reruns through, or nil for
// anything but a rule cell.
func (h *CellHandle[T]) ruleQueueOf() *RuleQueue {
	h.c.mu.RLock()
	defer h.c.mu.RUnlock()
	return h.c.ruleQueue
}

func (h *CellHandle[T]) recalc() { h.recalcTyped() }

func (h *CellHandle[T]) recalcTyped() {
	if h.c.compute == nil {
		return
	}

	h.c.mu.Lock()
	if h.c.computing {
		h.c.mu.Unlock()
		h.c.err = &CircularDependency{Cell: h.c.id}
		return
	}
	h.c.computing = true
	h.c.mu.Unlock()

	h.c.scope.graph.RemoveReader(h.c.id)

	var job *jobCore
	if h.c.kind == kindRule {
		job = h.c.rotateRuleJob()
	}

	pool := GetGlobalPoolManager().RuleCtxPool
	rc := pool.get(h.c.scope, h.c.id, job)

	pushCellFrame(h.c.id, h.c.kind)
	if job != nil {
		pushJobFrame(job)
	}
	v, err := h.runCompute(rc)
	if job != nil {
		popJobFrame()
	}
	popCellFrame()

	pool.put(rc)

	ts := h.c.scope.scheduler.timestampNow()
	h.c.mu.Lock()
	h.c.computing = false
	if h.c.unchangedIf != nil && err == nil && h.c.unchangedIf(h.c.value, v) {
		h.c.validThrough = ts
		h.c.mu.Unlock()
		return
	}
	h.c.value = v
	h.c.err = err
	h.c.lastChanged = ts
	h.c.validThrough = ts
	h.c.mu.Unlock()
}

func (h *CellHandle[T]) runCompute(rc *RuleCtx) (v T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = newUserError(asAnyError(r), "computed cell")
		}
	}()
	return h.c.compute(rc)
}

func (h *CellHandle[T]) runRule() {
	h.c.mu.RLock()
	released := h.c.released
	h.c.mu.RUnlock()
	if released {
		return
	}
	h.recalcTyped()
	if h.c.err != nil {
		h.c.scope.notifyError(Operation{Kind: OpRuleRun, ID: h.c.id}, h.c.err)
	}
}

func (h *CellHandle[T]) updateDemand() {
	if h.c.kind == kindStream {
		h.updateStreamDemand()
		return
	}
	// Demand propagation: re-evaluate demand on every upstream source, all
	// the way down the chain. Only a stream-backed source acts on it,
	// starting or stopping its conduit by its own observed flag; no
	// source's observed flag is changed here.
	for _, srcID := range h.c.scope.graph.Upstream(h.c.id) {
		h.c.scope.mu.RLock()
		src, ok := h.c.scope.cells[srcID]
		h.c.scope.mu.RUnlock()
		if ok {
			src.updateDemand()
		}
	}
}

// updateStreamDemand starts or stops a stream-backed cell's conduit to
// match its current observed state.
func (h *CellHandle[T]) updateStreamDemand() {
	h.c.mu.Lock()
	observed := h.c.observed
	running := h.c.streamJob != nil
	h.c.mu.Unlock()

	switch {
	case observed && !running:
		h.startStream()
	case !observed && running:
		h.stopStream()
	}
}

// startStream subscribes the cell's source under its stored parent job.
func (h *CellHandle[T]) startStream() {
	h.c.mu.Lock()
	src := h.c.streamSrc
	parent := h.c.streamParent
	h.c.mu.Unlock()
	if src == nil || parent == nil {
		return
	}
	conduit := Connect(jobCoreRef{parent}, FromPull(src), func(v T) error {
		return h.Update(v)
	}, nil)
	h.c.mu.Lock()
	h.c.streamJob = conduit.job.jobCore
	h.c.mu.Unlock()
}

// stopStream ends the cell's backing conduit, if running, and reverts its
// value to the one it was constructed with.
func (h *CellHandle[T]) stopStream() {
	h.c.mu.Lock()
	job := h.c.streamJob
	initial := h.c.streamInitial
	h.c.streamJob = nil
	h.c.mu.Unlock()
	if job != nil {
		job.end(Cancel[any]())
	}
	_ = h.doUpdate(initial)
}
