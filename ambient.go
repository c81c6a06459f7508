package reactor

import (
	"bytes"
	"runtime"
	"strconv"
	"sync"
)

// goroutineID extracts the calling goroutine's id from the header line of
// its own stack trace ("goroutine 123 [running]:"). This is the only way
// to key goroutine-local state without cgo or an unsafe dependency, and
// it is what lets CurrentJob/IsJobActive and the write-rules check in
// CellHandle.doUpdate work with no explicit parameter, matching the
// ambient job/cell stack every rule and computed body runs under.
func goroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	b := buf[:n]
	b = bytes.TrimPrefix(b, []byte("goroutine "))
	if i := bytes.IndexByte(b, ' '); i >= 0 {
		b = b[:i]
	}
	id, _ := strconv.ParseUint(string(b), 10, 64)
	return id
}

// cellFrame identifies the cell whose compute is running on the current
// goroutine, and whether it's a rule or a computed cell: writes behave
// differently inside each.
type cellFrame struct {
	cellID uint64
	kind   cellKind
}

// ambientStack is the process-wide, goroutine-keyed job/cell context:
// entering a job body or a cell's compute pushes a frame, leaving it pops
// one. Reads are rare relative to pushes/pops in a hot signal graph, but a
// single mutex is simple and these stacks are only ever 1-2 deep.
type ambientStack struct {
	mu    sync.Mutex
	jobs  map[uint64][]*jobCore
	cells map[uint64][]cellFrame
}

var ambient = &ambientStack{
	jobs:  make(map[uint64][]*jobCore),
	cells: make(map[uint64][]cellFrame),
}

func pushJobFrame(jc *jobCore) {
	gid := goroutineID()
	ambient.mu.Lock()
	ambient.jobs[gid] = append(ambient.jobs[gid], jc)
	ambient.mu.Unlock()
}

func popJobFrame() {
	gid := goroutineID()
	ambient.mu.Lock()
	stack := ambient.jobs[gid]
	if n := len(stack); n > 0 {
		stack = stack[:n-1]
	}
	if len(stack) == 0 {
		delete(ambient.jobs, gid)
	} else {
		ambient.jobs[gid] = stack
	}
	ambient.mu.Unlock()
}

func currentJobCore() *jobCore {
	gid := goroutineID()
	ambient.mu.Lock()
	defer ambient.mu.Unlock()
	stack := ambient.jobs[gid]
	if len(stack) == 0 {
		return nil
	}
	return stack[len(stack)-1]
}

func pushCellFrame(id uint64, kind cellKind) {
	gid := goroutineID()
	ambient.mu.Lock()
	ambient.cells[gid] = append(ambient.cells[gid], cellFrame{cellID: id, kind: kind})
	ambient.mu.Unlock()
}

func popCellFrame() {
	gid := goroutineID()
	ambient.mu.Lock()
	stack := ambient.cells[gid]
	if n := len(stack); n > 0 {
		stack = stack[:n-1]
	}
	if len(stack) == 0 {
		delete(ambient.cells, gid)
	} else {
		ambient.cells[gid] = stack
	}
	ambient.mu.Unlock()
}

// currentCellFrame returns the cell whose compute is currently running on
// the calling goroutine, if any.
func currentCellFrame() (cellFrame, bool) {
	gid := goroutineID()
	ambient.mu.Lock()
	defer ambient.mu.Unlock()
	stack := ambient.cells[gid]
	if len(stack) == 0 {
		return cellFrame{}, false
	}
	return stack[len(stack)-1], true
}

// CurrentJob returns the job whose body is running on the calling
// goroutine, or nil if the goroutine isn't inside a Start body (or a rule
// cell's execution, which owns one too).
func CurrentJob() *Job[any] {
	jc := currentJobCore()
	if jc == nil {
		return nil
	}
	return &Job[any]{jobCore: jc}
}

// IsJobActive reports whether the calling goroutine is currently running
// inside a job body.
func IsJobActive() bool {
	return currentJobCore() != nil
}

// Root returns scope's implicit top-level job, the outermost job of its
// tree. Start always takes an explicit parent; rule cells start their
// per-run jobs under this one.
func Root(scope *Scope) *Job[any] { return scope.RootJob() }
