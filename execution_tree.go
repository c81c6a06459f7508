package reactor

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// JobNode is a point-in-time snapshot of one job in the tree, used for
// observability (GraphDebugExtension, a monitoring dashboard, tests).
type JobNode struct {
	ID        uint64
	ParentID  uint64
	HasParent bool
	Status    jobStatus
	Children  []uint64
}

// JobTree is a bounded, evict-least-recently-touched registry of JobNode
// snapshots. The bounded-eviction bookkeeping itself is delegated to
// golang-lru instead of a hand-rolled FIFO slice, since "keep the N most
// recently touched entries" is exactly what an LRU cache already does, and
// does correctly under concurrent Add.
type JobTree struct {
	cache *lru.Cache[uint64, *JobNode]
}

// NewJobTree creates a job tree registry that retains at most capacity
// most-recently-touched nodes.
func NewJobTree(capacity int) *JobTree {
	if capacity <= 0 {
		capacity = 1
	}
	cache, err := lru.New[uint64, *JobNode](capacity)
	if err != nil {
		panic(err)
	}
	return &JobTree{cache: cache}
}

// Snapshot records jc's current state, evicting the least-recently-touched
// node if the tree is at capacity.
func (t *JobTree) Snapshot(jc *jobCore) {
	jc.mu.Lock()
	node := &JobNode{ID: jc.id, Status: jobStatus(jc.status.Load())}
	if jc.parent != nil {
		node.ParentID = jc.parent.id
		node.HasParent = true
	}
	for c := range jc.children {
		node.Children = append(node.Children, c.id)
	}
	jc.mu.Unlock()

	t.cache.Add(node.ID, node)
}

// GetNode returns the most recent snapshot of the job with the given id.
func (t *JobTree) GetNode(id uint64) (*JobNode, bool) {
	return t.cache.Peek(id)
}

// GetRoots returns every snapshotted node with no recorded parent.
func (t *JobTree) GetRoots() []*JobNode {
	return t.Filter(func(n *JobNode) bool { return !n.HasParent })
}

// Walk visits every snapshotted node, most-recently-touched last.
func (t *JobTree) Walk(visit func(*JobNode)) {
	keys := t.cache.Keys()
	for _, id := range keys {
		if n, ok := t.cache.Peek(id); ok {
			visit(n)
		}
	}
}

// Filter returns every snapshotted node for which pred returns true.
func (t *JobTree) Filter(pred func(*JobNode) bool) []*JobNode {
	var out []*JobNode
	t.Walk(func(n *JobNode) {
		if pred(n) {
			out = append(out, n)
		}
	})
	return out
}
