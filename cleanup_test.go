package reactor

import (
	"errors"
	"testing"
)

func TestCleanupChainRunsInReverseOrder(t *testing.T) {
	var chain cleanupChain
	var order []int

	chain.add(func() error { order = append(order, 1); return nil })
	chain.add(func() error { order = append(order, 2); return nil })
	chain.add(func() error { order = append(order, 3); return nil })

	chain.runAll(nil)

	want := []int{3, 2, 1}
	for i, v := range want {
		if order[i] != v {
			t.Fatalf("expected reverse order %v, got %v", want, order)
		}
	}
}

func TestCleanupChainRunsOnlyOnce(t *testing.T) {
	var chain cleanupChain
	calls := 0
	chain.add(func() error { calls++; return nil })

	chain.runAll(nil)
	chain.runAll(nil)

	if calls != 1 {
		t.Fatalf("expected cleanup to run exactly once, ran %d times", calls)
	}
}

func TestCleanupChainAddAfterRunReturnsFalse(t *testing.T) {
	var chain cleanupChain
	chain.runAll(nil)

	ran := false
	ok := chain.add(func() error { ran = true; return nil })
	if ok {
		t.Fatalf("expected add to report false once the chain has run")
	}
	_ = ran
}

func TestCleanupChainCollectsErrors(t *testing.T) {
	var chain cleanupChain
	boom := errors.New("boom")
	chain.add(func() error { return boom })

	var got error
	chain.runAll(func(err error) { got = err })

	if got != boom {
		t.Fatalf("expected cleanup error to be reported, got %v", got)
	}
}

func TestCleanupChainPanicBecomesError(t *testing.T) {
	var chain cleanupChain
	chain.add(func() error { panic("kaboom") })

	var got error
	chain.runAll(func(err error) { got = err })

	if got == nil {
		t.Fatalf("expected panic to be converted into a reported error")
	}
}
