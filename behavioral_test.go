package reactor_test

import (
	"fmt"
	"testing"
	"time"

	. "github.com/corewire/reactor"
	"github.com/corewire/reactor/streamops"
	"github.com/corewire/reactor/streamsrc"
)

// Generator sleep-and-return: a job body that suspends for a short interval
// then returns a value; its Future resolves with that value once the sleep
// elapses, not before.
func TestScenarioGeneratorSleepAndReturn(t *testing.T) {
	root := NewRoot()
	job := Start(root, func(y Yield) (int, error) {
		if err := Sleep(y, 30*time.Millisecond); err != nil {
			return 0, err
		}
		return 42, nil
	})

	settled := make(chan struct{})
	job.Future().Finally(func() { close(settled) })
	select {
	case <-settled:
		t.Fatalf("job settled before its sleep elapsed")
	case <-time.After(10 * time.Millisecond):
	}

	val, err := job.Future().Await()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if val != 42 {
		t.Fatalf("expected 42, got %d", val)
	}
}

// Cleanup order on cancel: must(A), must(B), release(C), then a child with
// must(D). Ending the parent must observe D, C, B, A — the child's cleanup
// before any of the parent's, and the parent's own cleanups in reverse
// registration order.
func TestScenarioCleanupOrderOnCancel(t *testing.T) {
	root := NewRoot()
	var order []string
	record := func(name string) func() error {
		return func() error { order = append(order, name); return nil }
	}

	parent := Start(root, func(y Yield) (int, error) {
		_ = Sleep(y, time.Hour)
		return 0, nil
	})
	parent.Must(record("A"))
	parent.Must(record("B"))
	parent.Release(record("C"))

	child := Start(parent, func(y Yield) (int, error) {
		_ = Sleep(y, time.Hour)
		return 0, nil
	})
	child.Must(record("D"))

	parent.End()

	want := []string{"D", "C", "B", "A"}
	if len(order) != len(want) {
		t.Fatalf("expected cleanup order %v, got %v", want, order)
	}
	for i, name := range want {
		if order[i] != name {
			t.Fatalf("expected cleanup order %v, got %v", want, order)
		}
	}
}

// Rule dependency update: a rule logging a value cell's reads runs once on
// creation, is not rerun by a same-value write, and collapses two rapid
// writes before the next flush into a single rerun observing the latest one.
func TestScenarioRuleDependencyUpdate(t *testing.T) {
	scope := NewScope()
	v := Value(scope, 0)
	var logs []string

	stop := Rule(scope, func(rc *RuleCtx) error {
		n, _ := v.Get(rc)
		logs = append(logs, fmt.Sprintf("%d", n))
		return nil
	})
	defer stop()

	scope.RunRules()
	if len(logs) != 1 || logs[0] != "0" {
		t.Fatalf("expected single initial log \"0\", got %v", logs)
	}

	v.Update(0)
	scope.RunRules()
	if len(logs) != 1 {
		t.Fatalf("expected same-value write not to rerun the rule, got %v", logs)
	}

	v.Update(1)
	v.Update(2)
	scope.RunRules()
	if len(logs) != 2 || logs[1] != "2" {
		t.Fatalf("expected a single rerun logging the latest value \"2\", got %v", logs)
	}
}

// Short-circuit consistency: a cached boolean short-circuits whether a rule
// reads a second value cell at all; a write to a cell the rule never reaches
// this tick must not rerun it, and UnchangedIf governs that on the computed
// side exactly as it does on the rule side.
func TestScenarioShortCircuitConsistency(t *testing.T) {
	scope := NewScope()
	v1 := Value(scope, 42)
	v2 := Value(scope, 57)
	s := Value(scope, "x")

	c := Computed1(v1.Reactive(), func(rc *RuleCtx, a *CellHandle[int]) (bool, error) {
		x, _ := a.Get(rc)
		y, _ := v2.Get(rc)
		return x != 0 && y != 0, nil
	}).UnchangedIf(func(old, new bool) bool { return old == new })

	var logs []string
	stop := Rule(scope, func(rc *RuleCtx) error {
		ok, _ := c.Get(rc)
		if ok {
			v, _ := s.Get(rc)
			logs = append(logs, v)
		}
		return nil
	})
	defer stop()

	scope.RunRules()
	if len(logs) != 1 || logs[0] != "x" {
		t.Fatalf("expected initial flush to log \"x\", got %v", logs)
	}

	v2.Update(99)
	scope.RunRules()
	if len(logs) != 1 {
		t.Fatalf("expected c's unchanged short-circuit value to suppress a rerun, got %v", logs)
	}

	s.Update("y")
	scope.RunRules()
	if len(logs) != 2 || logs[1] != "y" {
		t.Fatalf("expected a write the rule actually reads to rerun it logging \"y\", got %v", logs)
	}
}

// Write conflict: writing a value cell a second time within the same
// logical tick, without an intervening read that would advance the
// timestamp, is rejected as a WriteConflict rather than silently applied.
func TestScenarioWriteConflict(t *testing.T) {
	scope := NewScope()
	v := Value(scope, 99)

	if _, err := v.Get(nil); err != nil {
		t.Fatalf("unexpected error priming a read: %v", err)
	}
	if err := v.Update(100); err != nil {
		t.Fatalf("first write should succeed: %v", err)
	}
	err := v.Update(101)
	if err == nil {
		t.Fatalf("expected a write conflict on the second same-tick write")
	}
	if _, ok := err.(*WriteConflict); !ok {
		t.Fatalf("expected *WriteConflict, got %T: %v", err, err)
	}
}

// Stream takeUntil with backpressure: after three values a notifier fires
// and the conduit ends without the sink seeing a fourth value.
func TestScenarioStreamTakeUntil(t *testing.T) {
	root := NewRoot()
	notifyCh := make(chan struct{})

	src := streamops.TakeUntil(
		streamsrc.FromSlice([]int{1, 2, 3, 4, 5}),
		streamsrc.FromChannel(notifyCh),
	)

	var got []int
	done := make(chan struct{})
	c := Connect(root, FromPull(src), func(v int) error {
		got = append(got, v)
		if len(got) == 3 {
			close(notifyCh)
		}
		return nil
	}, nil)
	c.Job().OnValue(func(struct{}) { close(done) })
	c.Job().OnCancel(func() { close(done) })

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("expected conduit to end after the notifier fired")
	}

	if len(got) != 3 {
		t.Fatalf("expected exactly 3 delivered values, got %v", got)
	}
}
