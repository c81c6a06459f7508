package extensions

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"

	"github.com/m1gwings/treedrawer/tree"

	"github.com/corewire/reactor"
)

// GraphDebugExtension logs the signal subscription graph whenever a cell
// read/write fails, so a write conflict or circular dependency comes with
// a rendered picture of what was subscribed to what.
type GraphDebugExtension struct {
	reactor.BaseExtension

	scope    *reactor.Scope
	resolved map[uint64]bool
	failed   map[uint64]error
	names    map[uint64]string
	logger   *slog.Logger
}

// NewGraphDebugExtension creates a graph debug extension logging through
// logHandler (an slog.Handler; use slog.NewJSONHandler for machine-readable
// output, or a silent handler in tests).
func NewGraphDebugExtension(logHandler slog.Handler) *GraphDebugExtension {
	return &GraphDebugExtension{
		resolved: make(map[uint64]bool),
		failed:   make(map[uint64]error),
		names:    make(map[uint64]string),
		logger:   slog.New(logHandler),
	}
}

func (e *GraphDebugExtension) Name() string { return "graph-debug" }

// Init captures the owning scope so OnError can walk its subscription
// graph.
func (e *GraphDebugExtension) Init(scope *reactor.Scope) error {
	e.scope = scope
	return nil
}

// Wrap tracks which cells resolved cleanly and which failed, building the
// picture OnError later renders.
func (e *GraphDebugExtension) Wrap(op reactor.Operation, next func() error) error {
	err := next()
	if op.Name != "" {
		e.names[op.ID] = op.Name
	}
	if err == nil {
		e.resolved[op.ID] = true
	} else {
		e.failed[op.ID] = err
	}
	return err
}

// OnError logs the subscription graph around the failing cell.
func (e *GraphDebugExtension) OnError(op reactor.Operation, err error) {
	if op.Name != "" {
		e.names[op.ID] = op.Name
	}
	e.logger.Error("signal graph error",
		"cell", e.label(op.ID),
		"error", err.Error(),
		"operation", opKindLabel(op.Kind),
		"graph", e.formatGraph(op.ID),
	)
}

// OnPanic logs a recovered panic from a rule or computed body.
func (e *GraphDebugExtension) OnPanic(op reactor.Operation, err error) {
	e.logger.Error("signal graph panic",
		"cell", e.label(op.ID),
		"panic", err.Error(),
	)
}

func (e *GraphDebugExtension) label(id uint64) string {
	if name, ok := e.names[id]; ok {
		return name
	}
	return fmt.Sprintf("cell#%d", id)
}

// formatGraph renders every cell transitively upstream of failedID as a
// horizontal tree via treedrawer, falling back to a flat detail list if no
// clear root is found (e.g. the failure sits inside a cycle).
func (e *GraphDebugExtension) formatGraph(failedID uint64) string {
	var sb strings.Builder

	root := e.buildTree(failedID, make(map[uint64]bool))
	if root != nil {
		sb.WriteString("\n")
		sb.WriteString(root.String())
		sb.WriteString("\n")
	} else {
		sb.WriteString("\n(no upstream recorded)")
	}
	return sb.String()
}

func (e *GraphDebugExtension) buildTree(id uint64, visited map[uint64]bool) *tree.Tree {
	node := tree.NewTree(tree.NodeString(e.nodeLabel(id)))
	if visited[id] {
		return node
	}
	visited[id] = true
	e.fillChildren(node, id, visited)
	return node
}

// fillChildren attaches every upstream cell of id as a child of node,
// recursing into their own upstream sets. AddChild only takes a value (not
// a ready-made subtree), so children are populated node-by-node rather
// than assembled separately and spliced in.
func (e *GraphDebugExtension) fillChildren(node *tree.Tree, id uint64, visited map[uint64]bool) {
	if e.scope == nil {
		return
	}
	upstream := e.scope.UpstreamOf(id)
	e.sortByLabel(upstream)
	for _, srcID := range upstream {
		child := node.AddChild(tree.NodeString(e.nodeLabel(srcID)))
		if !visited[srcID] {
			visited[srcID] = true
			e.fillChildren(child, srcID, visited)
		}
	}
}

func (e *GraphDebugExtension) nodeLabel(id uint64) string {
	label := e.label(id)
	if _, failed := e.failed[id]; failed {
		label += " [failed]"
	} else if e.resolved[id] {
		label += " [ok]"
	}
	return label
}

// sortByLabel sorts ids by their human label for deterministic rendering.
func (e *GraphDebugExtension) sortByLabel(ids []uint64) {
	sort.Slice(ids, func(i, j int) bool {
		return e.label(ids[i]) < e.label(ids[j])
	})
}

// SilentHandler is a slog.Handler that discards all log output. Useful in
// tests that exercise GraphDebugExtension but don't want it printing.
type SilentHandler struct{}

// NewSilentHandler creates a silent log handler.
func NewSilentHandler() *SilentHandler {
	return &SilentHandler{}
}

func (h *SilentHandler) Enabled(ctx context.Context, level slog.Level) bool { return false }
func (h *SilentHandler) Handle(ctx context.Context, record slog.Record) error { return nil }
func (h *SilentHandler) WithAttrs(attrs []slog.Attr) slog.Handler             { return h }
func (h *SilentHandler) WithGroup(name string) slog.Handler                  { return h }

// HumanHandler is a slog.Handler that formats GraphDebugExtension's
// signal-graph-error and signal-graph-panic records for human readability.
type HumanHandler struct {
	writer io.Writer
	level  slog.Level
}

// NewHumanHandler creates a human-readable log handler.
func NewHumanHandler(writer io.Writer, level slog.Level) *HumanHandler {
	return &HumanHandler{writer: writer, level: level}
}

func (h *HumanHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *HumanHandler) Handle(ctx context.Context, record slog.Record) error {
	switch record.Message {
	case "signal graph error":
		return h.handleGraphError(record)
	case "signal graph panic":
		return h.handlePanic(record)
	}

	if _, err := fmt.Fprintf(h.writer, "[%s] %s\n", record.Level, record.Message); err != nil {
		return err
	}
	var writeErr error
	record.Attrs(func(a slog.Attr) bool {
		if _, err := fmt.Fprintf(h.writer, "  %s: %v\n", a.Key, a.Value); err != nil {
			writeErr = err
			return false
		}
		return true
	})
	return writeErr
}

func (h *HumanHandler) handleGraphError(record slog.Record) error {
	var cell, errorMsg, operation, graph string
	record.Attrs(func(a slog.Attr) bool {
		switch a.Key {
		case "cell":
			cell = a.Value.String()
		case "error":
			errorMsg = a.Value.String()
		case "operation":
			operation = a.Value.String()
		case "graph":
			graph = a.Value.String()
		}
		return true
	})

	fmt.Fprintln(h.writer)
	fmt.Fprintln(h.writer, strings.Repeat("=", 70))
	fmt.Fprintln(h.writer, "[GraphDebug] Signal Graph Error")
	fmt.Fprintln(h.writer, strings.Repeat("=", 70))
	fmt.Fprintf(h.writer, "\nFailed Cell: %s\n", cell)
	fmt.Fprintf(h.writer, "Error: %s\n", errorMsg)
	fmt.Fprintf(h.writer, "Operation: %s\n", operation)
	fmt.Fprintf(h.writer, "\nSubscription Graph:%s", graph)
	fmt.Fprintln(h.writer, strings.Repeat("=", 70))
	fmt.Fprintln(h.writer)
	return nil
}

func (h *HumanHandler) handlePanic(record slog.Record) error {
	var cell, panicMsg string
	record.Attrs(func(a slog.Attr) bool {
		switch a.Key {
		case "cell":
			cell = a.Value.String()
		case "panic":
			panicMsg = a.Value.String()
		}
		return true
	})

	fmt.Fprintln(h.writer)
	fmt.Fprintln(h.writer, strings.Repeat("=", 70))
	fmt.Fprintln(h.writer, "[GraphDebug] Signal Graph Panic")
	fmt.Fprintln(h.writer, strings.Repeat("=", 70))
	fmt.Fprintf(h.writer, "\nCell: %s\n", cell)
	fmt.Fprintf(h.writer, "Panic: %s\n", panicMsg)
	fmt.Fprintln(h.writer, strings.Repeat("=", 70))
	fmt.Fprintln(h.writer)
	return nil
}

func (h *HumanHandler) WithAttrs(attrs []slog.Attr) slog.Handler { return h }
func (h *HumanHandler) WithGroup(name string) slog.Handler       { return h }
