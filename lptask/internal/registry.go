// Task registry: a singly-linked, append-only intrusive list of tasks rooted
// in the scheduler. Head/tail pointers only; tasks are never removed from it,
// only reset back to UNINIT by clear (teardown).

package lptask_internal

// registry holds the head/tail of the task list. Every field here is written
// only under the owning Scheduler's Port lock; traversal (walk) is read-only
// and lock-free, since the list is append-only and a visited node's next
// pointer never changes once set.
type registry struct {
	head, tail *Task
}

// attach appends task to the registry. Must be called under lock. It is a
// no-op if the task is already attached (state != UNINIT), matching the
// "attaching an already-present task is idempotent" contract.
func (r *registry) attach(task *Task) {
	if task.State() != StateUninit {
		return
	}
	task.next = nil
	if r.head == nil {
		r.head = task
	} else {
		assertf(r.tail != nil, "registry tail is nil while head is not")
		r.tail.next = task
	}
	r.tail = task
}

// walk invokes fn for every task in registry order, starting at head. It does
// not take the lock: new tail insertions become visible on the next call, a
// reader may simply miss a task attached mid-walk.
func (r *registry) walk(fn func(*Task) (cont bool)) {
	for task := r.head; task != nil; task = task.next {
		if !fn(task) {
			return
		}
	}
}

// clear resets every registered task to UNINIT and empties the registry. Must
// be called under lock.
func (r *registry) clear() {
	r.walk(func(t *Task) bool {
		t.setState(StateUninit)
		return true
	})
	r.head = nil
	r.tail = nil
}

func (r *registry) empty() bool {
	return r.head == nil
}
