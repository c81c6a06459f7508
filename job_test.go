package reactor

import (
	"errors"
	"testing"
	"time"
)

func TestJobReturnSettlesResult(t *testing.T) {
	root := NewRoot()
	job := Start(root, func(y Yield) (int, error) {
		return 42, nil
	})

	val, err := job.Future().Await()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if val != 42 {
		t.Fatalf("expected 42, got %d", val)
	}
}

func TestJobThrowPropagatesError(t *testing.T) {
	root := NewRoot()
	boom := errors.New("boom")
	job := Start(root, func(y Yield) (int, error) {
		return 0, boom
	})

	_, err := job.Future().Await()
	if err == nil {
		t.Fatalf("expected error")
	}
}

func TestJobMustRunsOnEnd(t *testing.T) {
	root := NewRoot()
	ran := false
	job := Start(root, func(y Yield) (int, error) {
		return 1, nil
	})
	job.Must(func() error { ran = true; return nil })

	job.Future().Await()
	if !ran {
		t.Fatalf("expected Must cleanup to run on job end")
	}
}

func TestJobDoubleReturnErrors(t *testing.T) {
	root := NewRoot()
	job := Start(root, func(y Yield) (int, error) {
		return 1, nil
	})
	job.Future().Await()

	if err := job.Return(2); err != ErrJobAlreadyEnded {
		t.Fatalf("expected ErrJobAlreadyEnded, got %v", err)
	}
}

func TestJobEndIsIdempotent(t *testing.T) {
	root := NewRoot()
	job := Start(root, func(y Yield) (int, error) {
		reactorSleepForever(y)
		return 0, nil
	})
	job.End()
	job.End() // must not panic
}

func TestChildEndsWhenParentEnds(t *testing.T) {
	root := NewRoot()
	parent := Start(root, func(y Yield) (int, error) {
		reactorSleepForever(y)
		return 0, nil
	})

	childEnded := make(chan struct{})
	child := Start(parent, func(y Yield) (int, error) {
		reactorSleepForever(y)
		return 0, nil
	})
	child.OnCancel(func() { close(childEnded) })

	parent.End()

	select {
	case <-childEnded:
	case <-time.After(time.Second):
		t.Fatalf("expected child to end when parent ends")
	}
}

// reactorSleepForever suspends until the job ends, used by tests that need
// a long-running job body to cancel against.
func reactorSleepForever(y Yield) {
	Suspend[any](y, func(settle Settle[any]) {
		// never settles; only the job's own done channel wakes Suspend up.
	})
}
