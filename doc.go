// Package reactor implements a structured-concurrency and reactive-signals
// runtime for a single cooperative scheduler tick.
//
// # Overview
//
// The runtime is built from three interlocking engines:
//
//  1. Jobs: cancellable asynchronous work with hierarchical lifetime,
//     cleanup chains, and a single settled result.
//  2. Signals: a push/pull reactive value graph with glitch-free batched
//     rule execution.
//  3. Streams: a lazy, pausable push-model data flow bound to job lifetime
//     and signal demand.
//
// They share one ambient "current job / current cell" stack, one result
// model, and one scheduler.
//
// # Jobs
//
//	root := reactor.NewRoot()
//	job := reactor.Start(root, func(y reactor.Yield) (int, error) {
//	    reactor.Suspend[any](y, func(settle reactor.Settle[any]) {
//	        time.AfterFunc(50*time.Millisecond, func() { settle(reactor.Next[any](nil)) })
//	    })
//	    return 42, nil
//	})
//	job.Must(func() error { return nil })
//	val, err := job.Future().Await()
//
// # Signals
//
//	scope := reactor.NewScope()
//	v := reactor.Value(scope, 0)
//	doubled := reactor.Computed1(v.Reactive(), func(rc *reactor.RuleCtx, c *reactor.CellHandle[int]) (int, error) {
//	    n, _ := c.Get(rc)
//	    return n * 2, nil
//	})
//	stop := reactor.Rule(scope, func(rc *reactor.RuleCtx) error {
//	    n, _ := doubled.Get(rc)
//	    fmt.Println(n)
//	    return nil
//	})
//	v.Update(5)
//	scope.RunRules()
//	stop()
//
// # Streams
//
//	conduit := reactor.Connect(job, reactor.FromPull(streamsrc.FromSlice([]int{1, 2, 3})), func(v int) error {
//	    fmt.Println(v)
//	    return nil
//	}, nil)
//
// # Thread safety
//
// All public entry points may be called from any goroutine; graph and job
// tree mutation is serialized through fine-grained per-structure locking
// that is never held across a callback invocation, so reentrant calls from
// within a rule body or a cleanup callback never deadlock.
package reactor
