package reactor

import "sync"

// PoolMetrics tracks hit/miss counts for one typed pool.
type PoolMetrics struct {
	mu    sync.RWMutex
	hits  uint64
	misses uint64
}

func (m *PoolMetrics) recordHit() {
	m.mu.Lock()
	m.hits++
	m.mu.Unlock()
}

func (m *PoolMetrics) recordMiss() {
	m.mu.Lock()
	m.misses++
	m.mu.Unlock()
}

// Snapshot returns the current hit/miss counts.
func (m *PoolMetrics) Snapshot() (hits, misses uint64) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.hits, m.misses
}

// ruleCtxPool recycles RuleCtx values across cell recomputes, avoiding an
// allocation on every Rule/Computed run in a hot signal graph.
type ruleCtxPool struct {
	pool    sync.Pool
	metrics PoolMetrics
}

func newRuleCtxPool() *ruleCtxPool {
	return &ruleCtxPool{}
}

// get checks out a RuleCtx for a cell recompute. job is the cell's current
// owning job (non-nil for a rule cell, which gets a fresh child job every
// execution; nil for a computed cell, which owns none) and is threaded
// straight through to the checked-out RuleCtx rather than zeroed.
func (p *ruleCtxPool) get(scope *Scope, reader uint64, job *jobCore) *RuleCtx {
	v := p.pool.Get()
	rc, ok := v.(*RuleCtx)
	if ok {
		p.metrics.recordHit()
	} else {
		p.metrics.recordMiss()
		rc = &RuleCtx{}
	}
	rc.scope = scope
	rc.reader = reader
	rc.job = job
	return rc
}

func (p *ruleCtxPool) put(rc *RuleCtx) {
	rc.scope = nil
	rc.reader = 0
	rc.job = nil
	p.pool.Put(rc)
}

// GlobalPoolManager holds every process-wide object pool reactor
// maintains.
type GlobalPoolManager struct {
	RuleCtxPool *ruleCtxPool
}

var globalPools = &GlobalPoolManager{RuleCtxPool: newRuleCtxPool()}

// GetGlobalPoolManager returns the process-wide pool manager.
func GetGlobalPoolManager() *GlobalPoolManager { return globalPools }
