package reactor

import (
	"sync"
	"sync/atomic"
)

// Scheduler provides a single microtask-deferral primitive (Defer) and the
// generic batch-queue contract used by the pull queue, rule queues, and the
// demand-change queue. It also owns the monotonically increasing logical
// timestamp shared by the signal graph.
//
// Scheduler never holds its internal mutex while invoking user-supplied or
// queue-supplied callbacks: locks are taken only to mutate the pending
// slice/flags, then released before any callback runs. This is what lets
// reentrant calls (a deferred callback that itself calls Defer, or a rule
// body that reads/writes cells) proceed without deadlocking.
type Scheduler struct {
	mu        sync.Mutex
	pending   []func()
	draining  bool
	timestamp uint64
	dirtySeen bool // a read happened since the last advance; gates timestamp advance

	// drainingRule holds the RuleQueue currently draining, if any. While
	// it is non-nil, every other RuleQueue on this scheduler defers its
	// own drain instead of running reentrantly alongside it.
	drainingRule atomic.Pointer[RuleQueue]
}

// NewScheduler creates a scheduler with an empty microtask queue.
func NewScheduler() *Scheduler {
	return &Scheduler{}
}

// Defer enqueues cb and, unless a drain is already in progress, drains the
// queue at once on the calling goroutine, so cb has run by the time Defer
// returns. A Defer made from inside a running callback is queued and runs,
// in FIFO order, later in that same drain. Defer never postpones cb past
// the current call.
func (s *Scheduler) Defer(cb func()) {
	s.mu.Lock()
	s.pending = append(s.pending, cb)
	shouldDrain := !s.draining
	s.mu.Unlock()

	if shouldDrain {
		s.drain()
	}
}

// drain runs every pending callback, including ones scheduled by callbacks
// that ran earlier in the same drain, until the queue is empty. Reentrant
// calls to drain (from within a callback) are no-ops; the outstanding drain
// picks up anything newly enqueued.
func (s *Scheduler) drain() {
	s.mu.Lock()
	if s.draining {
		s.mu.Unlock()
		return
	}
	s.draining = true
	s.mu.Unlock()

	for {
		s.mu.Lock()
		if len(s.pending) == 0 {
			s.draining = false
			s.mu.Unlock()
			return
		}
		cb := s.pending[0]
		s.pending = s.pending[1:]
		s.mu.Unlock()

		cb()
	}
}

// timestampNow returns the current logical timestamp without advancing it.
func (s *Scheduler) timestampNow() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timestamp
}

// noteRead records that some cell has been read/touched since the last
// timestamp advance. The timestamp only increments on a write that follows
// at least one read, never on every write.
func (s *Scheduler) noteRead() {
	s.mu.Lock()
	s.dirtySeen = true
	s.mu.Unlock()
}

// advanceForWrite bumps the timestamp if a read has happened since the last
// bump, and returns the (possibly just-advanced) current timestamp.
func (s *Scheduler) advanceForWrite() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dirtySeen {
		s.timestamp++
		s.dirtySeen = false
	}
	return s.timestamp
}

// BatchQueue is a reentrancy-guarded set of items with an injected reap
// function and scheduling callback: Add is idempotent and schedules a
// flush only on the empty→non-empty transition; Delete removes without
// disturbing the schedule; Flush is reentrancy-guarded and reschedules
// itself if reap leaves items behind.
type BatchQueue[T comparable] struct {
	mu        sync.Mutex
	items     map[T]struct{}
	order     []T
	scheduled bool
	running   bool

	// reap is handed the queue's live item slice; it must mutate bq (via
	// Delete) as it processes items. It returns nothing: it signals "work
	// remains" purely by which items it left in the queue.
	reap func(bq *BatchQueue[T], items []T)
	// schedule arranges for flush to be invoked later (e.g. sched.Defer).
	schedule func(flush func())
}

// NewBatchQueue constructs a batch queue with the given reap and scheduling
// functions.
func NewBatchQueue[T comparable](reap func(bq *BatchQueue[T], items []T), schedule func(flush func())) *BatchQueue[T] {
	return &BatchQueue[T]{
		items:    make(map[T]struct{}),
		reap:     reap,
		schedule: schedule,
	}
}

// Add inserts item into the queue, scheduling a flush if the queue was
// empty and not already scheduled.
func (q *BatchQueue[T]) Add(item T) {
	q.mu.Lock()
	if _, exists := q.items[item]; exists {
		q.mu.Unlock()
		return
	}
	q.items[item] = struct{}{}
	q.order = append(q.order, item)
	wasEmptyUnscheduled := !q.scheduled
	if wasEmptyUnscheduled {
		q.scheduled = true
	}
	q.mu.Unlock()

	if wasEmptyUnscheduled {
		q.schedule(q.Flush)
	}
}

// Delete removes item from the queue without altering its schedule.
func (q *BatchQueue[T]) Delete(item T) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if _, exists := q.items[item]; !exists {
		return
	}
	delete(q.items, item)
	for i, it := range q.order {
		if it == item {
			q.order = append(q.order[:i], q.order[i+1:]...)
			break
		}
	}
}

// Empty reports whether the queue currently has no items.
func (q *BatchQueue[T]) Empty() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items) == 0
}

// Scheduled reports whether a flush is currently outstanding.
func (q *BatchQueue[T]) Scheduled() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.scheduled
}

// Running reports whether a flush is currently draining this queue.
func (q *BatchQueue[T]) Running() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.running
}

// Flush drains the queue once. If already running, it returns immediately
// (the in-progress flush will see anything added meanwhile). Reap is
// responsible for deleting items as it handles them; anything reap leaves
// behind causes a fresh flush to be scheduled before Flush returns.
func (q *BatchQueue[T]) Flush() {
	q.mu.Lock()
	if q.running {
		q.mu.Unlock()
		return
	}
	q.running = true
	q.scheduled = false
	live := make([]T, len(q.order))
	copy(live, q.order)
	q.mu.Unlock()

	if q.reap != nil {
		q.reap(q, live)
	}

	q.mu.Lock()
	q.running = false
	remaining := len(q.items) > 0
	if remaining && !q.scheduled {
		q.scheduled = true
	}
	q.mu.Unlock()

	if remaining {
		q.schedule(q.Flush)
	}
}
