package reactor

import (
	"errors"
	"testing"
)

func TestResultVariants(t *testing.T) {
	v := Next(5)
	if !v.IsValue() || v.IsError() || v.IsCancel() {
		t.Fatalf("expected value result")
	}

	e := Throw[int](errors.New("boom"))
	if !e.IsError() || e.IsValue() {
		t.Fatalf("expected error result")
	}
	if e.IsHandled() {
		t.Fatalf("expected unhandled by default")
	}
	e.MarkHandled()
	if !e.IsHandled() {
		t.Fatalf("expected handled after MarkHandled")
	}

	c := Cancel[int]()
	if !c.IsCancel() {
		t.Fatalf("expected cancel result")
	}
}

func TestRequestSettlesOnce(t *testing.T) {
	req := NewRequest[int]()
	if !req.Resolve(1) {
		t.Fatalf("first resolve should succeed")
	}
	if req.Resolve(2) {
		t.Fatalf("second resolve should be a no-op")
	}
	if req.Reject(errors.New("late")) {
		t.Fatalf("reject after resolve should be a no-op")
	}

	var got int
	req.OnSettle(func(r Result[int]) {
		v, _ := r.Value()
		got = v
	})
	if got != 1 {
		t.Fatalf("expected late OnSettle to fire immediately with settled value, got %d", got)
	}
}

func TestRequestResolverRejecter(t *testing.T) {
	req := NewRequest[string]()
	resolve := req.Resolver()
	resolve("hi")

	if !req.IsSettled() {
		t.Fatalf("expected settled after Resolver call")
	}

	rejected := NewRequest[string]()
	reject := rejected.Rejecter()
	reject(errors.New("nope"))

	var gotErr error
	rejected.OnSettle(func(r Result[string]) { gotErr = r.Err() })
	if gotErr == nil {
		t.Fatalf("expected Rejecter call to settle the request with an error")
	}
}
