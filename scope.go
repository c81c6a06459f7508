package reactor

import (
	"sort"
	"sync"
	"sync/atomic"
)

// ScopeOption configures a Scope at construction via the functional-options
// pattern.
type ScopeOption func(*Scope)

// WithExtension registers ext on the scope, applied in Order() order.
func WithExtension(ext Extension) ScopeOption {
	return func(s *Scope) {
		s.extensions = append(s.extensions, ext)
		sort.SliceStable(s.extensions, func(i, j int) bool {
			return s.extensions[i].Order() < s.extensions[j].Order()
		})
	}
}

// WithScopeTag sets a tag on the scope at construction time.
func WithScopeTag[T any](tag Tag[T], value T) ScopeOption {
	return func(s *Scope) {
		tag.Set(s.metaMap(), value)
	}
}

// Scope owns one Scheduler, one job tree, the signal graph's cell
// registry, and the extension chain every job/cell/rule operation is
// wrapped through: a sync.RWMutex-guarded struct holding the cell
// registry, a downstream dependency map, an extension slice, and an
// atomic id counter for the whole reactive runtime of one independent
// tree.
type Scope struct {
	mu         sync.RWMutex
	idCounter  atomic.Uint64
	scheduler  *Scheduler
	graph      *reactiveGraph
	extensions []Extension
	metadata   map[string]any
	cells      map[uint64]anyCell
	rootJob    *Job[any]
	jobTree    *JobTree

	pullQueue        *BatchQueue[uint64]
	defaultRuleQueue *RuleQueue
	demandQueue      *BatchQueue[uint64]
}

// NewScope constructs an independent reactive runtime: its own scheduler,
// signal graph, job tree root, and extension chain.
func NewScope(opts ...ScopeOption) *Scope {
	s := &Scope{
		scheduler: NewScheduler(),
		graph:     newReactiveGraph(),
		cells:     make(map[uint64]anyCell),
		metadata:  make(map[string]any),
		jobTree:   NewJobTree(1024),
	}

	s.pullQueue = NewBatchQueue(s.reapPull, s.scheduler.Defer)
	s.defaultRuleQueue = NewRuleQueue(s, nil)
	s.demandQueue = NewBatchQueue(s.reapDemand, s.scheduler.Defer)

	core := newJobCore(s, nil)
	s.rootJob = &Job[any]{jobCore: core}

	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Scope) metaMap() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.metadata == nil {
		s.metadata = make(map[string]any)
	}
	return s.metadata
}

func (s *Scope) nextID() uint64 {
	return s.idCounter.Add(1)
}

// Scheduler returns the scope's microtask scheduler.
func (s *Scope) Scheduler() *Scheduler { return s.scheduler }

// GetJobTree returns the scope's job-tree observability registry.
func (s *Scope) GetJobTree() *JobTree { return s.jobTree }

// UpstreamOf returns the cell ids that the cell with the given id directly
// depends on, for extensions (GraphDebugExtension) that need to render the
// subscription graph without reaching into unexported internals.
func (s *Scope) UpstreamOf(id uint64) []uint64 {
	return s.graph.Upstream(id)
}

// RootJob returns the scope's implicit top-level job. Start always takes an
// explicit parent; rule cells start their per-run jobs under this one.
func (s *Scope) RootJob() *Job[any] { return s.rootJob }

// Dispose ends the root job (cancelling its entire subtree and running
// every registered cleanup) and disposes every extension.
func (s *Scope) Dispose() {
	s.rootJob.End()
	s.mu.RLock()
	exts := append([]Extension(nil), s.extensions...)
	s.mu.RUnlock()
	for _, ext := range exts {
		ext.Dispose()
	}
}

// registerCell adds a newly-constructed cell to the scope's registry,
// used by GraphDebugExtension and by demand-propagation sweeps that need
// to enumerate every live cell.
func (s *Scope) registerCell(id uint64, c anyCell) {
	s.mu.Lock()
	s.cells[id] = c
	s.mu.Unlock()
}

func (s *Scope) unregisterCell(id uint64) {
	s.mu.Lock()
	delete(s.cells, id)
	s.mu.Unlock()
}

// notifyCleanupError routes a cleanup failure through every extension's
// OnCleanupError hook.
func (s *Scope) notifyCleanupError(err *CleanupError) {
	s.mu.RLock()
	exts := append([]Extension(nil), s.extensions...)
	s.mu.RUnlock()
	for _, ext := range exts {
		ext.OnCleanupError(err)
	}
}

// notifyError routes an uncaught error through every extension's OnError
// hook.
func (s *Scope) notifyError(op Operation, err error) {
	s.mu.RLock()
	exts := append([]Extension(nil), s.extensions...)
	s.mu.RUnlock()
	for _, ext := range exts {
		ext.OnError(op, err)
	}
}

// wrap runs fn through every registered extension's Wrap, innermost
// extension closest to fn, outermost last.
func (s *Scope) wrap(op Operation, fn func() error) error {
	s.mu.RLock()
	exts := append([]Extension(nil), s.extensions...)
	s.mu.RUnlock()

	wrapped := fn
	for i := len(exts) - 1; i >= 0; i-- {
		ext := exts[i]
		next := wrapped
		wrapped = func() error { return ext.Wrap(op, next) }
	}
	return wrapped()
}

// RunRules drains the rule queue synchronously, running every rule whose
// dependency changed since the last drain. Exposed directly (rather than
// only via the scheduler) for callers that want rules to observe a batch
// of writes deterministically before returning.
func (s *Scope) RunRules() {
	s.defaultRuleQueue.Flush()
}

func (s *Scope) reapPull(bq *BatchQueue[uint64], items []uint64) {
	for _, id := range items {
		s.mu.RLock()
		c, ok := s.cells[id]
		s.mu.RUnlock()
		bq.Delete(id)
		if ok {
			c.recalc()
		}
	}
}

func (s *Scope) reapRules(bq *BatchQueue[uint64], items []uint64) {
	for _, id := range items {
		s.mu.RLock()
		c, ok := s.cells[id]
		s.mu.RUnlock()
		bq.Delete(id)
		if ok {
			c.runRule()
		}
	}
}

func (s *Scope) reapDemand(bq *BatchQueue[uint64], items []uint64) {
	for _, id := range items {
		s.mu.RLock()
		c, ok := s.cells[id]
		s.mu.RUnlock()
		bq.Delete(id)
		if ok {
			c.updateDemand()
		}
	}
}
