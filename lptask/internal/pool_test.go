package lptask_internal

import (
	"testing"

	lptask_testutils "github.com/elemprod/lptask/lptask/testutils"
)

func TestPoolAllocUpToCapacity(t *testing.T) {
	sched, _ := newTestScheduler(t, nil)
	pool := NewTaskPool(3, 16)

	a := pool.Alloc(sched, "a")
	b := pool.Alloc(sched, "b")
	c := pool.Alloc(sched, "c")
	if a == nil || b == nil || c == nil {
		t.Fatal("expected 3 successful allocations out of a 3-task pool")
	}
	if got := pool.AllocatedCount(); got != 3 {
		t.Fatalf("got AllocatedCount %d, want 3", got)
	}
	if got := pool.FreeCount(); got != 0 {
		t.Fatalf("got FreeCount %d, want 0", got)
	}

	// Every slot, including the last one, must be reachable: this is the
	// regression test for the original's off-by-one scan bound.
	if d := pool.Alloc(sched, "d"); d != nil {
		t.Fatal("expected allocation to fail once the pool is exhausted")
	}
}

func TestPoolAllocRequiresActiveScheduler(t *testing.T) {
	port := lptask_testutils.NewFakePort(0)
	sched := NewScheduler(nil, port) // never Init'd: still SchedStopped
	pool := NewTaskPool(2, 8)

	if task := pool.Alloc(sched, "a"); task != nil {
		t.Fatal("Alloc should fail when the scheduler is not Active")
	}
}

func TestPoolReuseAfterRelease(t *testing.T) {
	sched, _ := newTestScheduler(t, nil)
	pool := NewTaskPool(2, 8)

	a := pool.Alloc(sched, "a")
	b := pool.Alloc(sched, "b")
	if a == nil || b == nil {
		t.Fatal("expected both allocations to succeed")
	}

	// Simulate the scheduler releasing a slot: a one-shot task completing
	// clears `allocated` (see Scheduler.fireTask / Scheduler.Stop).
	a.allocated.Store(false)

	if got := pool.FreeCount(); got != 1 {
		t.Fatalf("got FreeCount %d, want 1", got)
	}

	reused := pool.Alloc(sched, "a-again")
	if reused != a {
		t.Fatal("expected Alloc to hand back the released slot")
	}
	if reused.Id != "a-again" {
		t.Fatalf("got Id %q, want %q", reused.Id, "a-again")
	}
}

func TestPoolCapAndAllAllocatable(t *testing.T) {
	sched, _ := newTestScheduler(t, nil)
	const n = 8
	pool := NewTaskPool(n, 4)
	if pool.Cap() != n {
		t.Fatalf("got Cap %d, want %d", pool.Cap(), n)
	}

	got := make([]*Task, 0, n)
	for i := 0; i < n; i++ {
		task := pool.Alloc(sched, "t")
		if task == nil {
			t.Fatalf("allocation %d of %d unexpectedly failed", i, n)
		}
		got = append(got, task)
	}
	// Every returned task must be distinct: no slot handed out twice while
	// still allocated.
	seen := make(map[*Task]bool)
	for _, task := range got {
		if seen[task] {
			t.Fatal("pool handed out the same task slot twice")
		}
		seen[task] = true
	}
}
