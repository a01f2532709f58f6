// Task record and state machine.

package lptask_internal

import "sync/atomic"

// MsMax is the sentinel/maximum legal interval, matching the newer,
// cache-enabled drafts of the original scheduler (some older drafts used
// 0x1FFFFFFF with a bit-field packed interval; see DESIGN.md for the
// discrepancy noted in spec.md's open questions). As long as a programmed
// interval stays under half of this range, the 32-bit wrapping subtraction
// used by the expiration engine yields the true elapsed time.
const MsMax uint32 = 0xFFFFFFFF

// State is a task's position in its lifecycle.
type State uint32

const (
	StateUninit State = iota
	StateStopped
	StateActive
	StateExecuting
	StateStopping
)

var stateNames = map[State]string{
	StateUninit:    "Uninit",
	StateStopped:   "Stopped",
	StateActive:    "Active",
	StateExecuting: "Executing",
	StateStopping:  "Stopping",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "Unknown"
}

// Handler is invoked on expiration. data/dataSize reflect whatever was last
// stored with Scheduler.Data: for a buffered task, a slice into the task's
// own buffer; for an unbuffered task, the caller-owned slice passed to Data.
type Handler func(task *Task, data []byte)

// Task is the per-task control block. Only the next link is written under
// the scheduler's Port lock; start/interval/repeat/handler and the buffer
// contents are written by the Scheduler methods without taking it. state and
// allocated are atomics so the main loop and a concurrent caller (the Go
// analogue of an ISR) can read them without taking the lock.
type Task struct {
	// Id is an optional caller-assigned label, used only for diagnostics and
	// logging; the scheduler does not use it to look up tasks.
	Id string

	startMs    uint32
	intervalMs uint32

	// next is a weak, non-owning back-reference into the registry. It is
	// written only by registry.attach, under the Port lock, which sets it to
	// nil on the appended task and links the previous tail to it; tasks are
	// never unlinked: the registry is append-only (invariant 1 in spec.md §3).
	next *Task

	handler Handler

	// data points at the task's own buffer for buffered tasks (buffSize > 0)
	// or at caller-owned memory for unbuffered ones.
	data     []byte
	buffSize int
	dataSize int

	repeat bool

	allocated atomic.Bool
	state     atomic.Uint32
}

// NewTask creates an unbuffered, UNINIT task. It must be passed to
// Scheduler.Config before it can be started.
func NewTask(id string) *Task {
	t := &Task{Id: id}
	t.state.Store(uint32(StateUninit))
	return t
}

// NewBufferedTask creates an UNINIT task owning a buffSize-byte internal
// buffer. Data stored via Scheduler.Data is copied into this buffer rather
// than referenced by pointer.
func NewBufferedTask(id string, buffSize int) *Task {
	t := &Task{Id: id, buffSize: buffSize}
	if buffSize > 0 {
		t.data = make([]byte, buffSize)
	}
	t.state.Store(uint32(StateUninit))
	return t
}

// State returns the task's current lifecycle state.
func (t *Task) State() State {
	return State(t.state.Load())
}

func (t *Task) setState(s State) {
	t.state.Store(uint32(s))
}

// Buffered reports whether the task owns an internal data buffer.
func (t *Task) Buffered() bool {
	return t.buffSize > 0
}

// Allocated reports whether the task is a pool slot currently in use.
func (t *Task) Allocated() bool {
	return t.allocated.Load()
}

// Repeat reports whether the task re-arms itself on expiration.
func (t *Task) Repeat() bool {
	return t.repeat
}

// IntervalMs returns the currently programmed interval.
func (t *Task) IntervalMs() uint32 {
	return t.intervalMs
}

// DataSize returns the current logical length of stored data.
func (t *Task) DataSize() int {
	return t.dataSize
}

// active reports whether the task is in a state that participates in
// expiration (ACTIVE or EXECUTING), mirroring the original TASK_ACTIVE macro.
func (t *Task) active() bool {
	switch t.State() {
	case StateActive, StateExecuting:
		return true
	default:
		return false
	}
}

// setInterval applies the "repeating tasks must have interval >= 1" and
// "interval <= MsMax" rules. The caller must have already set t.repeat.
func (t *Task) setInterval(intervalMs uint32) {
	if t.repeat && intervalMs == 0 {
		t.intervalMs = 1
		return
	}
	if intervalMs > MsMax {
		intervalMs = MsMax
	}
	t.intervalMs = intervalMs
}
