package reactor

import (
	"testing"
	"time"
)

func sliceSource[T any](items []T) PullSource[T] {
	i := 0
	return func(Yield) (T, bool, error) {
		if i >= len(items) {
			var zero T
			return zero, false, nil
		}
		v := items[i]
		i++
		return v, true, nil
	}
}

func TestConnectDeliversEveryValue(t *testing.T) {
	root := NewRoot()
	var got []int

	done := make(chan struct{})
	c := Connect(root, FromPull(sliceSource([]int{1, 2, 3})), func(v int) error {
		got = append(got, v)
		return nil
	}, nil)
	c.Job().OnValue(func(struct{}) { close(done) })

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("expected conduit to finish delivering values")
	}

	if len(got) != 3 || got[0] != 1 || got[2] != 3 {
		t.Fatalf("expected [1 2 3], got %v", got)
	}
}

func TestConduitInletPause(t *testing.T) {
	root := NewRoot()
	inlet := NewInlet()
	inlet.Pause()

	delivered := make(chan int, 1)
	c := Connect(root, FromPull(sliceSource([]int{1})), func(v int) error {
		delivered <- v
		return nil
	}, inlet)
	_ = c

	select {
	case <-delivered:
		t.Fatalf("expected delivery to be paused while the inlet is closed")
	case <-time.After(50 * time.Millisecond):
	}

	if inlet.IsOpen() {
		t.Fatalf("expected inlet to report closed while paused")
	}

	inlet.Resume()
	select {
	case v := <-delivered:
		if v != 1 {
			t.Fatalf("expected delivered value 1, got %d", v)
		}
	case <-time.After(time.Second):
		t.Fatalf("expected delivery after resume")
	}
}

// TestInletResumeDrainsRegisteredCallbacksOnce checks the exact property
// Resume promises: every callback registered before the drain starts runs
// exactly once, in order, and a callback registered mid-drain (from inside
// another callback) is observed on the NEXT Resume rather than being
// dropped or run twice.
func TestInletResumeDrainsRegisteredCallbacksOnce(t *testing.T) {
	root := NewRoot()
	inlet := NewInlet()
	inlet.Pause()

	var order []string
	var lateRan bool

	inlet.OnReady(root, func() { order = append(order, "a") })
	inlet.OnReady(root, func() {
		order = append(order, "b")
		inlet.OnReady(root, func() { lateRan = true })
	})
	inlet.OnReady(root, func() { order = append(order, "c") })

	inlet.Resume()

	if len(order) != 3 || order[0] != "a" || order[1] != "b" || order[2] != "c" {
		t.Fatalf("expected [a b c] exactly once each, got %v", order)
	}
	if lateRan {
		t.Fatalf("expected a callback registered mid-drain to wait for the next Resume")
	}

	inlet.Pause()
	inlet.Resume()
	if !lateRan {
		t.Fatalf("expected the callback registered mid-drain to run on the following Resume")
	}
	if len(order) != 3 {
		t.Fatalf("expected earlier callbacks not to rerun, got %v", order)
	}
}

func TestInletOnReadyDroppedWhenJobEndsFirst(t *testing.T) {
	root := NewRoot()
	inlet := NewInlet()
	inlet.Pause()

	job := Start[struct{}](root, func(y Yield) (struct{}, error) {
		err := Sleep(y, time.Hour)
		return struct{}{}, err
	})

	ran := false
	inlet.OnReady(job, func() { ran = true })
	job.End()
	time.Sleep(10 * time.Millisecond)

	inlet.Resume()
	time.Sleep(10 * time.Millisecond)
	if ran {
		t.Fatalf("expected callback registered by an already-ended job to be dropped")
	}
}

func TestStreamCellTracksLatestValue(t *testing.T) {
	root := NewRoot()
	scope := NewScope()

	ch := make(chan int, 3)
	ch <- 1
	ch <- 2
	close(ch)

	src := func(y Yield) (int, bool, error) {
		v, ok := <-ch
		if !ok {
			return 0, false, nil
		}
		return v, true, nil
	}

	h := StreamCell(root, scope, src, 0)

	time.Sleep(50 * time.Millisecond)
	if h.Peek() != 2 {
		t.Fatalf("expected stream cell to settle on last value 2, got %d", h.Peek())
	}
}

func TestStreamCellStopsAndRevertsOnRelease(t *testing.T) {
	root := NewRoot()
	scope := NewScope()

	ch := make(chan int, 1)
	src := func(y Yield) (int, bool, error) {
		v, ok := <-ch
		if !ok {
			return 0, false, nil
		}
		return v, true, nil
	}

	h := StreamCell(root, scope, src, -1)
	if !h.IsObserved() {
		t.Fatalf("expected a freshly constructed stream cell to be observed")
	}

	ch <- 42
	time.Sleep(20 * time.Millisecond)
	if h.Peek() != 42 {
		t.Fatalf("expected stream cell to pick up delivered value 42, got %d", h.Peek())
	}

	h.Release()
	if h.Peek() != -1 {
		t.Fatalf("expected stream cell to revert to initial value -1 on release, got %d", h.Peek())
	}
}
