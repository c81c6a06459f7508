package reactor

import "testing"

func TestSchedulerDeferRunsFIFO(t *testing.T) {
	sched := NewScheduler()
	var order []int

	sched.Defer(func() { order = append(order, 1) })
	sched.Defer(func() { order = append(order, 2) })

	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Fatalf("expected FIFO order [1 2], got %v", order)
	}
}

func TestSchedulerDeferReentrant(t *testing.T) {
	sched := NewScheduler()
	var order []int

	sched.Defer(func() {
		order = append(order, 1)
		sched.Defer(func() { order = append(order, 2) })
	})

	if len(order) != 2 || order[1] != 2 {
		t.Fatalf("expected reentrant Defer to run within the same drain, got %v", order)
	}
}

func TestBatchQueueSchedulesOnceOnEmptyToNonEmpty(t *testing.T) {
	scheduled := 0
	var flush func()
	bq := NewBatchQueue(func(q *BatchQueue[int], items []int) {
		for _, it := range items {
			q.Delete(it)
		}
	}, func(f func()) {
		scheduled++
		flush = f
	})

	bq.Add(1)
	bq.Add(2)
	if scheduled != 1 {
		t.Fatalf("expected exactly one schedule call for two adds, got %d", scheduled)
	}

	flush()
	if !bq.Empty() {
		t.Fatalf("expected queue empty after flush")
	}
}

func TestBatchQueueRefliushesWhenReapLeavesItems(t *testing.T) {
	var flushes int
	var flush func()
	first := true

	bq := NewBatchQueue(func(q *BatchQueue[int], items []int) {
		if first {
			first = false
			return // leave items behind deliberately
		}
		for _, it := range items {
			q.Delete(it)
		}
	}, func(f func()) {
		flushes++
		flush = f
	})

	bq.Add(1)
	flush() // first flush leaves item 1 behind, should reschedule
	if flushes != 2 {
		t.Fatalf("expected a reschedule after reap left items behind, got %d schedule calls", flushes)
	}
	flush()
	if !bq.Empty() {
		t.Fatalf("expected queue drained on second flush")
	}
}

func TestBatchQueueDeleteRemovesWithoutDisturbingSchedule(t *testing.T) {
	bq := NewBatchQueue(func(q *BatchQueue[int], items []int) {}, func(func()) {})
	bq.Add(1)
	bq.Delete(1)
	if !bq.Empty() {
		t.Fatalf("expected item removed")
	}
	if !bq.Scheduled() {
		t.Fatalf("expected the flush scheduled by Add to stay scheduled after Delete")
	}
}
