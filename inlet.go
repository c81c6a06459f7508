package reactor

import "sync"

// Inlet is the demand/backpressure gate a Conduit's Source consults on
// its own: IsOpen/IsReady report whether delivery may proceed right now;
// OnReady registers a callback to run once it does (auto-dropped if its
// job ends first); Pause/Resume close and reopen the gate, with Resume
// draining every callback registered up to that point exactly once, in
// registration order.
type Inlet struct {
	mu       sync.Mutex
	open     bool
	draining bool // true while Resume is running the callbacks it took
	pending  []*readyEntry
}

type readyEntry struct {
	cb   func()
	done bool
}

// NewInlet creates an open (ready) inlet.
func NewInlet() *Inlet {
	return &Inlet{open: true}
}

// IsOpen reports whether the inlet currently permits delivery.
func (in *Inlet) IsOpen() bool {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.open
}

// IsReady is a synonym for IsOpen, read naturally from the consumer side:
// "is there demand to deliver into right now".
func (in *Inlet) IsReady() bool { return in.IsOpen() }

// OnReady registers cb to run once the inlet is (or becomes) open,
// observed from job. If the inlet is already open and no Resume is
// draining it, cb is handed to job's scope scheduler via Defer, which runs
// it before OnReady returns unless that scheduler is already draining (cb
// is called directly if job has no scope). A call made while Resume is
// draining queues cb for the next Resume. If job ends before the inlet
// opens, cb is dropped instead of ever running.
func (in *Inlet) OnReady(job anyJob, cb func()) {
	jc := job.core()
	in.mu.Lock()
	if in.open && !in.draining {
		in.mu.Unlock()
		if jc.scope != nil {
			jc.scope.scheduler.Defer(cb)
		} else {
			cb()
		}
		return
	}
	entry := &readyEntry{cb: cb}
	in.pending = append(in.pending, entry)
	in.mu.Unlock()

	jc.onEndedCall(func(Result[any]) {
		in.mu.Lock()
		entry.done = true
		in.mu.Unlock()
	})
}

// Await returns a channel that closes once the inlet becomes ready for
// job (or immediately, if it already is). Callers typically select
// against it alongside y.JobDone() so a paused source still unblocks
// promptly when its job ends.
func (in *Inlet) Await(job anyJob) <-chan struct{} {
	ch := make(chan struct{})
	in.OnReady(job, func() { close(ch) })
	return ch
}

// Pause closes the inlet: OnReady registrations made from this point on
// queue until the next Resume instead of firing.
func (in *Inlet) Pause() {
	in.mu.Lock()
	in.open = false
	in.mu.Unlock()
}

// Resume opens the inlet and drains every callback currently registered
// via OnReady exactly once, in registration order. A callback registered
// by another OnReady call made during this drain is not invoked until the
// next Resume — the drain runs over a snapshot taken up front, so a fresh
// registration is never silently dropped, only deferred a cycle.
func (in *Inlet) Resume() {
	in.mu.Lock()
	in.open = true
	in.draining = true
	drain := in.pending
	in.pending = nil
	in.mu.Unlock()
	defer func() {
		in.mu.Lock()
		in.draining = false
		in.mu.Unlock()
	}()

	for _, entry := range drain {
		in.mu.Lock()
		already := entry.done
		entry.done = true
		in.mu.Unlock()
		if !already {
			entry.cb()
		}
	}
}
