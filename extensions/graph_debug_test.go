package extensions

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/corewire/reactor"
)

func TestGraphDebugExtension_OnError(t *testing.T) {
	var buf bytes.Buffer
	ext := NewGraphDebugExtension(NewHumanHandler(&buf, -10))

	scope := reactor.NewScope(reactor.WithExtension(ext))
	defer scope.Dispose()

	ext.OnError(reactor.Operation{Kind: reactor.OpCellWrite, ID: 1, Name: "total"}, errors.New("write conflict"))

	output := buf.String()
	if !strings.Contains(output, "Signal Graph Error") {
		t.Errorf("expected formatted header in output, got: %s", output)
	}
	if !strings.Contains(output, "total") {
		t.Errorf("expected cell name in output, got: %s", output)
	}
}

func TestSilentHandlerDiscardsOutput(t *testing.T) {
	var buf bytes.Buffer
	ext := NewGraphDebugExtension(NewSilentHandler())
	_ = buf

	scope := reactor.NewScope(reactor.WithExtension(ext))
	defer scope.Dispose()

	// SilentHandler.Enabled always returns false, so nothing should panic
	// or block when OnError fires with no subscribers watching output.
	ext.OnError(reactor.Operation{Kind: reactor.OpCellRead, ID: 2}, errors.New("boom"))
}

func TestLoggingExtensionWrapsSuccessAndFailure(t *testing.T) {
	ext := NewLoggingExtension()
	scope := reactor.NewScope(reactor.WithExtension(ext))
	defer scope.Dispose()

	v := reactor.Value(scope, 1)
	if err := v.Update(2); err != nil {
		t.Fatalf("unexpected error updating value: %v", err)
	}

	doubled := reactor.Computed1(v, func(rc *reactor.RuleCtx, a *reactor.CellHandle[int]) (int, error) {
		n, _ := a.Get(rc)
		return n * 2, nil
	})
	if err := doubled.Update(5); err == nil {
		t.Fatalf("expected writing a computed cell to fail")
	}
}
