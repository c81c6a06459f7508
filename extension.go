package reactor

// OperationKind distinguishes the signal-graph/job-tree operations an
// Extension can wrap or observe: cell reads and writes, rule runs, and
// job start/end.
type OperationKind int

const (
	OpCellRead OperationKind = iota
	OpCellWrite
	OpRuleRun
	OpJobStart
	OpJobEnd
	OpJobAsyncThrow
)

// Operation describes a single wrapped call: which kind it is and which
// cell/job it concerns (as an opaque id, so extensions don't need to know
// about unexported types).
type Operation struct {
	Kind OperationKind
	ID   uint64
	Name string
}

// Extension is middleware over a scope's operations. Wrap brackets
// CellHandle.Update, the only operation a scope runs through its
// extensions. OnError observes failed writes, failed rule runs and
// unhandled job errors; OnCleanupError observes failed cleanups. The scope
// never calls OnJobStart, OnJobEnd or OnPanic. No hook can alter an
// outcome.
type Extension interface {
	Name() string
	Order() int
	Init(scope *Scope) error
	Wrap(op Operation, next func() error) error
	OnError(op Operation, err error)
	OnCleanupError(err *CleanupError)
	OnJobStart(op Operation)
	OnJobEnd(op Operation, res Result[any])
	OnPanic(op Operation, err error)
	Dispose()
}

// BaseExtension gives every hook a no-op default, so a concrete extension
// only overrides what it cares about.
type BaseExtension struct{}

func (BaseExtension) Name() string                             { return "base" }
func (BaseExtension) Order() int                                { return 0 }
func (BaseExtension) Init(*Scope) error                         { return nil }
func (BaseExtension) Wrap(_ Operation, next func() error) error { return next() }
func (BaseExtension) OnError(Operation, error)                  {}
func (BaseExtension) OnCleanupError(*CleanupError)               {}
func (BaseExtension) OnJobStart(Operation)                      {}
func (BaseExtension) OnJobEnd(Operation, Result[any])           {}
func (BaseExtension) OnPanic(Operation, error)                  {}
func (BaseExtension) Dispose()                                  {}
