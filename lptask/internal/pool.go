// Fixed-capacity task pool: a fixed-size slice of Task records, each with its
// own buffSize-byte buffer allocated once, on first use, so a long-running process can
// hand out and reclaim buffered tasks without ever allocating after startup.
//
// The original C pool scan used an inclusive loop bound
// (p_task_cur <= p_task_last, with p_task_last = base + count) that reads one
// element past the array; this port uses a plain index bound (< count).

package lptask_internal

import "sync"

var poolLog = NewCompLogger("pool")

// TaskPool is a fixed-size collection of buffered tasks. A caller obtains a
// task via Alloc and hands it back implicitly: once a pool task's scheduler
// lifecycle runs it to STOPPED with no repeat pending, it becomes available
// for reuse again.
type TaskPool struct {
	mu       sync.Mutex
	tasks    []*Task
	initOnce sync.Once
	taskCount int
	buffSize  int
}

// NewTaskPool constructs a pool of taskCount tasks, each with a buffSize-byte
// internal buffer. The slab is allocated lazily, on the first Alloc or
// AllocatedCount/FreeCount call, matching
// sched_task_pool_init's deferred-initialization shape.
func NewTaskPool(taskCount int, buffSize int) *TaskPool {
	return &TaskPool{
		taskCount: taskCount,
		buffSize:  buffSize,
	}
}

func (p *TaskPool) poolInit() {
	p.initOnce.Do(func() {
		p.tasks = make([]*Task, p.taskCount)
		for i := 0; i < p.taskCount; i++ {
			p.tasks[i] = NewBufferedTask("", p.buffSize)
		}
		poolLog.Debugf("pool initialized: %d tasks x %d bytes", p.taskCount, p.buffSize)
	})
}

// Alloc returns the first free task in the pool, marking it allocated, or
// nil if every slot is currently in use or sched is not Active. A task is
// free whenever it is not marked allocated, regardless of its scheduler
// State: a task released by a prior user sits at STOPPED (still attached to
// whatever registry it was configured against) until Config reconfigures it
// for its next owner. Allocation walks the whole slab each call, which is
// fine for a pool sized for a bounded number of concurrent background tasks
// rather than a high-churn work queue.
func (p *TaskPool) Alloc(sched *Scheduler, id string) *Task {
	if sched == nil || sched.State() != SchedActive {
		return nil
	}
	p.poolInit()

	sched.port.Lock()
	defer sched.port.Unlock()
	p.mu.Lock()
	defer p.mu.Unlock()

	for i := 0; i < p.taskCount; i++ {
		task := p.tasks[i]
		if !task.allocated.Load() {
			task.allocated.Store(true)
			task.Id = id
			task.dataSize = 0
			return task
		}
	}
	return nil
}

// AllocatedCount returns the number of task slots currently in use.
func (p *TaskPool) AllocatedCount() int {
	p.poolInit()
	p.mu.Lock()
	defer p.mu.Unlock()

	n := 0
	for i := 0; i < p.taskCount; i++ {
		if p.tasks[i].allocated.Load() {
			n++
		}
	}
	return n
}

// FreeCount returns the number of task slots currently available.
func (p *TaskPool) FreeCount() int {
	return p.taskCount - p.AllocatedCount()
}

// Cap returns the pool's fixed capacity.
func (p *TaskPool) Cap() int {
	return p.taskCount
}
