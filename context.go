package reactor

// RuleCtx is handed to a rule or computed-cell body: a thin, explicitly-
// passed handle back to the owning scope. Dependency reads go through the
// CellHandle arguments a rule/computed declares, not through RuleCtx.
//
// job is the cell's current execution job: for a rule cell this is a real
// child job rotated fresh on every run (see cell.rotateRuleJob), so
// OnCleanup has something to register against; for a computed cell it is
// nil, since a computed body may not perform the kind of teardown-worthy
// side effect a rule's can.
type RuleCtx struct {
	scope  *Scope
	job    *jobCore
	reader uint64 // id of the cell currently being computed, 0 if none
}

// Scope returns the scope the running rule/computed belongs to.
func (rc *RuleCtx) Scope() *Scope { return rc.scope }

// GetTag reads a tag set on the owning scope.
func (rc *RuleCtx) GetTag(tag Tag[any]) (any, bool) {
	return GetTag(rc.scope, tag)
}

// OnCleanup registers a callback to run when the current rule re-runs, is
// stopped, or its owning scope tears down. A computed cell's RuleCtx has
// no owning job (computed bodies are pure derivations), so OnCleanup is a
// silent no-op there.
func (rc *RuleCtx) OnCleanup(cb func()) {
	if rc.job == nil {
		return
	}
	rc.job.cleanups.add(func() error { cb(); return nil })
}

func newRuleCtx(scope *Scope, reader uint64) *RuleCtx {
	return &RuleCtx{scope: scope, reader: reader}
}
