package reactor

import (
	"testing"

	"github.com/corewire/reactor/pkg/schema"
)

func TestValueCellGetAndUpdate(t *testing.T) {
	scope := NewScope()
	v := Value(scope, 10)

	got, err := v.Get(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 10 {
		t.Fatalf("expected 10, got %d", got)
	}

	if err := v.Update(20); err != nil {
		t.Fatalf("unexpected update error: %v", err)
	}
	if v.Peek() != 20 {
		t.Fatalf("expected 20 after update, got %d", v.Peek())
	}
}

func TestComputed1RecomputesFromDependency(t *testing.T) {
	scope := NewScope()
	v := Value(scope, 3)
	doubled := Computed1(v.Reactive(), func(rc *RuleCtx, c *CellHandle[int]) (int, error) {
		n, _ := c.Get(rc)
		return n * 2, nil
	})

	got, err := doubled.Get(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 6 {
		t.Fatalf("expected 6, got %d", got)
	}

	v.Update(5)
	got, _ = doubled.Get(nil)
	if got != 10 {
		t.Fatalf("expected 10 after update, got %d", got)
	}
}

func TestRuleRerunsOnDependencyChange(t *testing.T) {
	scope := NewScope()
	v := Value(scope, 1)
	var seen []int

	stop := Rule(scope, func(rc *RuleCtx) error {
		n, _ := v.Get(rc)
		seen = append(seen, n)
		return nil
	})
	defer stop()

	scope.RunRules()
	v.Update(2)
	scope.RunRules()

	if len(seen) < 2 {
		t.Fatalf("expected rule to run at least twice, ran %d times: %v", len(seen), seen)
	}
}

func TestUnchangedIfSuppressesPropagation(t *testing.T) {
	scope := NewScope()
	v := Value(scope, 1)
	squashed := Computed1(v.Reactive(), func(rc *RuleCtx, c *CellHandle[int]) (int, error) {
		n, _ := c.Get(rc)
		return n % 2, nil
	}).UnchangedIf(func(old, new int) bool { return old == new })

	got, _ := squashed.Get(nil)
	if got != 1 {
		t.Fatalf("expected 1, got %d", got)
	}

	v.Update(3) // still odd, parity unchanged
	got, _ = squashed.Get(nil)
	if got != 1 {
		t.Fatalf("expected parity to remain 1, got %d", got)
	}
}

func TestCircularDependencyDetected(t *testing.T) {
	scope := NewScope()
	v := Value(scope, 1)

	var self *CellHandle[int]
	self = Computed1(v.Reactive(), func(rc *RuleCtx, c *CellHandle[int]) (int, error) {
		_, err := self.Get(rc)
		if err != nil {
			return 0, err
		}
		return 0, nil
	})

	self.Reload()
	if self.c.err == nil {
		t.Fatalf("expected a circular dependency error to be recorded")
	}
}

func TestWithValidateRejectsBadWrites(t *testing.T) {
	scope := NewScope()
	ageSchema := schema.Number()
	ageSchema.Positive = true
	ageSchema.Max = 130
	age := Value(scope, 1, WithValidate[int](ageSchema))

	if err := age.Update(30); err != nil {
		t.Fatalf("expected a valid write to succeed: %v", err)
	}
	if age.Peek() != 30 {
		t.Fatalf("expected 30, got %d", age.Peek())
	}

	if err := age.Update(-5); err == nil {
		t.Fatalf("expected a validation error for a negative age")
	}
	if age.Peek() != 30 {
		t.Fatalf("expected rejected write not to change the cached value, got %d", age.Peek())
	}
}
