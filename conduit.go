package reactor

// PullSource is a lazy pull-based data producer: each call returns the
// next value, or more=false once exhausted, or an error. The combinators
// in streamops operate on this shape, and streamsrc's producers return it.
type PullSource[T any] func(y Yield) (value T, more bool, err error)

// Source is a Conduit's actual contract: given a sink, the conduit driving
// it, and the inlet gating delivery, drive as many values into sink as it
// can and return when done (exhausted, cancelled, or erroring). A Source
// owns its own pump loop; it consults inlet itself rather than having one
// imposed on it, so push-native producers (a subscription callback, an
// external event feed) can deliver without a pull loop at all.
type Source[T any] func(sink Sink[T], conn *Conduit[T], inlet *Inlet) error

// Sink consumes one value at a time. Returning a non-nil error ends the
// owning Conduit with that error.
type Sink[T any] func(v T) error

// FromPull adapts a PullSource into a Source, running the classic pull
// loop against inlet: pull, wait for the inlet to open if it's paused,
// deliver, repeat. This is how streamops' combinators and streamsrc's
// producers (both PullSource-shaped) plug into a Conduit.
func FromPull[T any](ps PullSource[T]) Source[T] {
	return func(sink Sink[T], conn *Conduit[T], inlet *Inlet) error {
		y := conn.Yield()
		for {
			if !inlet.IsOpen() {
				select {
				case <-inlet.Await(conn.job):
				case <-y.JobDone():
					return nil
				}
			}
			v, more, err := ps(y)
			if err != nil {
				return err
			}
			if !more {
				return nil
			}
			if err := sink(v); err != nil {
				return err
			}
		}
	}
}

// Conduit drives a Source into a Sink under the lifetime of a Job, pausing
// delivery through an Inlet when the sink (or an explicit caller) pauses
// it.
type Conduit[T any] struct {
	job   *Job[struct{}]
	inlet *Inlet
}

// Inlet returns the conduit's backpressure gate, so a slow sink can pause
// upstream delivery (conduit.Inlet().Pause(), ...Resume()).
func (c *Conduit[T]) Inlet() *Inlet { return c.inlet }

// Job returns the job this conduit's source runs under; ending it stops
// delivery.
func (c *Conduit[T]) Job() *Job[struct{}] { return c.job }

// Yield returns the Yield bound to this conduit's job, for a Source that
// needs to suspend (via Suspend, Sleep, etc.) as part of its own delivery
// loop.
func (c *Conduit[T]) Yield() Yield { return Yield{job: c.job.jobCore} }

// Connect starts a conduit under parent that runs src against sink until
// src returns (exhausted, cancelled, or erroring, which ends the
// conduit's job with that error). inlet may be nil, in which case Connect
// allocates an open one.
func Connect[T any](parent anyJob, src Source[T], sink Sink[T], inlet *Inlet) *Conduit[T] {
	if inlet == nil {
		inlet = NewInlet()
	}
	parentCore := parent.core()
	c := &Conduit[T]{inlet: inlet}
	c.job = &Job[struct{}]{jobCore: newJobCore(parentCore.scope, parentCore)}

	runGenerator(c.job, func(y Yield) (struct{}, error) {
		if err := src(sink, c, inlet); err != nil {
			return struct{}{}, err
		}
		return struct{}{}, nil
	})

	return c
}
