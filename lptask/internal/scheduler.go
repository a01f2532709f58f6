// Scheduler: registry + next-expiring-task cache + cooperative main loop +
// stop protocol + task lifecycle operations.
//
// Dataflow: caller configures/starts a task -> the task attaches itself to
// the registry -> the main loop picks expired tasks via the expiration
// engine (consulting the cache when enabled) -> invokes the handler -> the
// handler may configure/start/stop/update tasks -> the loop sleeps until the
// next expiration.

package lptask_internal

import (
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

// SchedState is the scheduler's own lifecycle state, distinct from a Task's
// State. It only ever moves Stopped -> Active -> Stopping -> Stopped.
type SchedState uint32

const (
	SchedStopped SchedState = iota
	SchedActive
	SchedStopping
)

var schedStateNames = map[SchedState]string{
	SchedStopped:  "Stopped",
	SchedActive:   "Active",
	SchedStopping: "Stopping",
}

func (s SchedState) String() string {
	if name, ok := schedStateNames[s]; ok {
		return name
	}
	return "Unknown"
}

// TaskStats are scheduling counters kept per task, for telemetry and tests.
// This is ambient diagnostics, not part of the core invariants: losing or
// resetting it does not affect correctness.
type TaskStats struct {
	ScheduledCount uint64
	ExecutedCount  uint64
	OverrunCount   uint64
}

var schedulerLog = NewCompLogger("scheduler")

// Scheduler is the scheduling singleton: one per program (or per test), never
// shared concurrently with another Scheduler over the same Port.
type Scheduler struct {
	port Port
	cfg  *SchedulerConfig

	registry registry

	nextTask atomic.Pointer[Task]
	updated  atomic.Bool

	state atomic.Uint32 // SchedState

	statsMu sync.Mutex
	stats   map[*Task]*TaskStats

	log *logrus.Entry
}

// NewScheduler constructs a Scheduler bound to port. If cfg is nil,
// DefaultSchedulerConfig is used. The scheduler starts in the Stopped state;
// call Init to move it to Active before configuring/starting tasks.
func NewScheduler(cfg *SchedulerConfig, port Port) *Scheduler {
	if cfg == nil {
		cfg = DefaultSchedulerConfig()
	}
	if port == nil {
		port = NewDefaultPort()
	}
	s := &Scheduler{
		port:  port,
		cfg:   cfg,
		stats: make(map[*Task]*TaskStats),
		log:   schedulerLog,
	}
	s.state.Store(uint32(SchedStopped))
	return s
}

// State returns the scheduler's current state.
func (s *Scheduler) State() SchedState {
	return SchedState(s.state.Load())
}

// Init moves the scheduler from Stopped to Active, running the port's
// one-time setup hook and clearing the registry. It is a no-op (returning
// nil) if the scheduler is already Active or Stopping.
func (s *Scheduler) Init() error {
	if s.State() != SchedStopped {
		return nil
	}
	if err := s.port.Init(); err != nil {
		return err
	}
	s.port.Lock()
	s.registry.clear()
	s.nextTask.Store(nil)
	s.updated.Store(false)
	s.port.Unlock()
	s.state.Store(uint32(SchedActive))
	s.log.Info("scheduler initialized")
	return nil
}

// Run drives the main loop: repeatedly selects the next-to-expire task,
// sleeps, invokes due handlers, until Stop is called. It returns once
// teardown (registry clear + port deinit) completes.
func (s *Scheduler) Run() error {
	s.log.Info("scheduler main loop started")
	for s.State() == SchedActive {
		msUntilNext := s.serviceQueue()
		if msUntilNext > 0 {
			s.port.Sleep(msUntilNext)
		}
	}
	return s.stopFinalize()
}

// Stop requests the scheduler to stop: the current loop iteration finishes
// any due handlers, then the loop exits and teardown runs. It is safe to
// call from within a task handler.
func (s *Scheduler) Stop() {
	if s.State() != SchedStopped {
		s.state.Store(uint32(SchedStopping))
	}
}

func (s *Scheduler) stopFinalize() error {
	if s.State() != SchedStopping {
		return nil
	}
	s.port.Lock()
	s.registry.clear()
	s.nextTask.Store(nil)
	s.updated.Store(false)
	s.port.Unlock()
	err := s.port.Deinit()
	s.state.Store(uint32(SchedStopped))
	s.log.Info("scheduler stopped")
	return err
}

// serviceQueue is the one routine that fires handlers: it consults the
// cached next-expiring task (when the cache is enabled) and falls back to a
// full registry scan, per spec.md §4.4.
func (s *Scheduler) serviceQueue() uint32 {
	now := s.port.NowMs()

	if s.cfg.CacheEnabled && !s.updated.CompareAndSwap(true, false) {
		if cached := s.nextTask.Load(); cached != nil && cached.active() {
			remaining := cached.RemainingMs(now)
			if remaining > 0 {
				return remaining
			}
			s.fireTask(cached, now)
		}
	}

	return s.scan(now)
}

// scan walks the registry once, firing every due task and tracking the
// soonest-expiring survivor. After firing a task it re-checks that same task
// before advancing, since the handler may have re-armed it with a new
// interval; a task that keeps re-arming with an expired interval (relative to
// the scan's single "now" snapshot) will monopolize this pass, which is why
// repeating tasks are never allowed interval 0 (see Task.setInterval).
func (s *Scheduler) scan(now uint32) uint32 {
	var next *Task
	task := s.registry.head
	for task != nil {
		if task.active() && task.RemainingMs(now) == 0 {
			s.fireTask(task, now)
			continue
		}
		next = Compare(next, task, now)
		task = task.next
	}

	nextMs := MsMax
	if next != nil {
		nextMs = next.RemainingMs(now)
	}
	assertf(nextMs > 0, "full scan produced a zero remaining time for the cached next task")

	if s.cfg.CacheEnabled {
		s.nextTask.Store(next)
	}
	return nextMs
}

// fireTask invokes an expired task's handler and resolves its post-handler
// state, exactly as spec.md §4.5 describes.
func (s *Scheduler) fireTask(task *Task, now uint32) {
	assertf(task.handler != nil, "task %q has no handler", task.Id)

	if task.repeat {
		task.setState(StateExecuting)
		// The start time is updated before invoking the handler so the
		// handler's own execution time doesn't shift the schedule. It uses
		// the pass's "now" snapshot, so the post-fire re-check in scan sees
		// the full interval remaining.
		task.startMs = now
	} else {
		task.setState(StateStopping)
	}

	s.bumpScheduled(task)

	task.handler(task, task.data[:task.dataSize])

	switch task.State() {
	case StateExecuting:
		task.setState(StateActive)
	case StateStopping:
		task.setState(StateStopped)
		task.allocated.Store(false)
	default:
		// Any other state is left as the handler set it. A handler calling
		// Start() on itself (STOPPING -> EXECUTING) does not end up here: it
		// takes the StateExecuting case above and settles to ACTIVE.
	}

	s.bumpExecuted(task, now)
}

// Config attaches (if UNINIT) or reconfigures (if STOPPED) task, storing its
// handler, repeat flag and interval. The scheduler must be Active. Returns
// true on success.
func (s *Scheduler) Config(task *Task, handler Handler, intervalMs uint32, repeat bool) bool {
	if task == nil || handler == nil || s.State() != SchedActive {
		return false
	}
	switch task.State() {
	case StateActive, StateExecuting, StateStopping:
		return false
	case StateUninit:
		s.port.Lock()
		s.registry.attach(task)
		s.port.Unlock()
	}

	task.handler = handler
	task.repeat = repeat
	task.setInterval(intervalMs)
	if s.cfg.BufferClearEnabled && task.Buffered() {
		for i := range task.data {
			task.data[i] = 0
		}
	}
	task.setState(StateStopped)
	return true
}

// Start arms task: STOPPED -> ACTIVE, or STOPPING -> EXECUTING when called
// from inside the task's own handler. Always records start_ms = now.
func (s *Scheduler) Start(task *Task) bool {
	if task == nil {
		return false
	}
	switch task.State() {
	case StateUninit:
		return false
	case StateStopped:
		task.setState(StateActive)
		task.startMs = s.port.NowMs()
		if s.cfg.CacheEnabled {
			s.updated.Store(true)
		}
	case StateStopping:
		task.setState(StateExecuting)
		task.startMs = s.port.NowMs()
		// Restarting from inside the handler does not raise updated: the
		// post-handler scan already in flight will refresh the cache.
	default: // already ACTIVE or EXECUTING
		task.startMs = s.port.NowMs()
		if s.cfg.CacheEnabled {
			s.updated.Store(true)
		}
	}
	return true
}

// Update rewrites task's interval using the same rules as Config, then
// starts it.
func (s *Scheduler) Update(task *Task, intervalMs uint32) bool {
	if task == nil {
		return false
	}
	task.setInterval(intervalMs)
	return s.Start(task)
}

// Stop cancels task: ACTIVE -> STOPPED immediately, EXECUTING -> STOPPING
// (finalized when the handler returns). A no-op false on UNINIT.
func (s *Scheduler) Stop(task *Task) bool {
	if task == nil || task.State() == StateUninit {
		return false
	}
	switch task.State() {
	case StateActive:
		task.setState(StateStopped)
		task.allocated.Store(false)
	case StateExecuting:
		task.setState(StateStopping)
	}
	return true
}

// Data stores task's user data; only legal while STOPPED. Buffered tasks
// copy into their own buffer, clamped to capacity. Unbuffered tasks store
// the slice by reference; the caller must keep it valid until the handler
// runs. Returns the effective stored size, or 0 on any violation.
func (s *Scheduler) Data(task *Task, data []byte) int {
	if task == nil || task.State() != StateStopped {
		return 0
	}
	if task.Buffered() {
		n := len(data)
		if n > task.buffSize {
			n = task.buffSize
		}
		if data == nil {
			n = 0
		} else {
			copy(task.data[:n], data[:n])
		}
		task.dataSize = n
		return n
	}
	task.data = data
	task.dataSize = len(data)
	return task.dataSize
}

func (s *Scheduler) bumpScheduled(task *Task) {
	s.statsMu.Lock()
	ts := s.stats[task]
	if ts == nil {
		ts = &TaskStats{}
		s.stats[task] = ts
	}
	ts.ScheduledCount++
	s.statsMu.Unlock()
}

func (s *Scheduler) bumpExecuted(task *Task, now uint32) {
	s.statsMu.Lock()
	ts := s.stats[task]
	if ts != nil {
		ts.ExecutedCount++
		if task.RemainingMs(now) == 0 && task.active() {
			ts.OverrunCount++
		}
	}
	s.statsMu.Unlock()
}

// Stats returns a snapshot copy of task's scheduling counters, or nil if the
// task has never been fired.
func (s *Scheduler) Stats(task *Task) *TaskStats {
	s.statsMu.Lock()
	defer s.statsMu.Unlock()
	ts := s.stats[task]
	if ts == nil {
		return nil
	}
	cp := *ts
	return &cp
}
