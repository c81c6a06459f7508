// Package extensions provides reactor.Extension implementations shared
// across scopes: structured logging and dependency-graph debug rendering.
package extensions

import (
	"fmt"
	"time"

	"github.com/corewire/reactor"
)

// LoggingExtension prints start/finish/duration for every wrapped
// operation. A scope wraps only cell writes (CellHandle.Update), so those
// are what it logs; reads, rule runs and job starts are not logged.
type LoggingExtension struct {
	reactor.BaseExtension
}

// NewLoggingExtension creates a logging extension.
func NewLoggingExtension() *LoggingExtension {
	return &LoggingExtension{}
}

func (e *LoggingExtension) Name() string { return "logging" }

func (e *LoggingExtension) Wrap(op reactor.Operation, next func() error) error {
	start := time.Now()
	fmt.Printf("[logging] %s starting\n", opLabel(op))
	err := next()

	duration := time.Since(start)
	if err != nil {
		fmt.Printf("[logging] %s failed after %v: %v\n", opLabel(op), duration, err)
	} else {
		fmt.Printf("[logging] %s completed in %v\n", opLabel(op), duration)
	}
	return err
}

func opLabel(op reactor.Operation) string {
	if op.Name != "" {
		return fmt.Sprintf("%s(%s)", op.Name, opKindLabel(op.Kind))
	}
	return fmt.Sprintf("%s#%d", opKindLabel(op.Kind), op.ID)
}

func opKindLabel(kind reactor.OperationKind) string {
	switch kind {
	case reactor.OpCellRead:
		return "cell-read"
	case reactor.OpCellWrite:
		return "cell-write"
	case reactor.OpRuleRun:
		return "rule-run"
	case reactor.OpJobStart:
		return "job-start"
	case reactor.OpJobEnd:
		return "job-end"
	default:
		return "op"
	}
}
