package lptask_internal

import "testing"

func TestElapsedMsWraps(t *testing.T) {
	// startMs just before the uint32 rollover, nowMs just after it.
	startMs := uint32(0xFFFFFFF0)
	nowMs := uint32(10)
	got := elapsedMs(startMs, nowMs)
	want := uint32(0x1A) // 16 + 10
	if got != want {
		t.Fatalf("got %d, want %d", got, want)
	}
}

func TestRemainingMs(t *testing.T) {
	cases := []struct {
		name               string
		startMs, intervalMs, nowMs, want uint32
	}{
		{"not yet due", 1000, 500, 1200, 300},
		{"exactly due", 1000, 500, 1500, 0},
		{"overdue", 1000, 500, 2000, 0},
		{"wraps around boundary", 0xFFFFFFF0, 100, 50, 34},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := remainingMs(c.startMs, c.intervalMs, c.nowMs)
			if got != c.want {
				t.Errorf("got %d, want %d", got, c.want)
			}
		})
	}
}

func TestExpired(t *testing.T) {
	if expired(1000, 500, 1400) {
		t.Fatal("expired should be false before the interval elapses")
	}
	if !expired(1000, 500, 1500) {
		t.Fatal("expired should be true exactly at the interval")
	}
	if !expired(1000, 500, 9000) {
		t.Fatal("expired should be true well after the interval")
	}
}

func TestTaskExpiredIgnoresInactive(t *testing.T) {
	task := NewTask("t1")
	task.startMs = 0
	task.intervalMs = 10
	task.setState(StateStopped)
	if task.Expired(1000) {
		t.Fatal("a stopped task should never report expired")
	}
	if got := task.RemainingMs(1000); got != MsMax {
		t.Fatalf("got RemainingMs %d, want MsMax for an inactive task", got)
	}
	if got := task.ElapsedMs(1000); got != 0 {
		t.Fatalf("got ElapsedMs %d, want 0 for an inactive task", got)
	}
}

func TestCompare(t *testing.T) {
	now := uint32(0)

	soon := NewTask("soon")
	soon.setState(StateActive)
	soon.startMs = 0
	soon.intervalMs = 100

	later := NewTask("later")
	later.setState(StateActive)
	later.startMs = 0
	later.intervalMs = 500

	inactive := NewTask("inactive")
	inactive.setState(StateStopped)

	if got := Compare(soon, later, now); got != soon {
		t.Fatalf("Compare should pick the sooner-expiring task")
	}
	if got := Compare(nil, soon, now); got != soon {
		t.Fatalf("Compare(nil, active) should return the active task")
	}
	if got := Compare(soon, nil, now); got != soon {
		t.Fatalf("Compare(active, nil) should return the active task")
	}
	if got := Compare(inactive, soon, now); got != soon {
		t.Fatalf("Compare should skip an inactive candidate")
	}
	if got := Compare(nil, nil, now); got != nil {
		t.Fatalf("Compare(nil, nil) should return nil")
	}
	if got := Compare(inactive, inactive, now); got != nil {
		t.Fatalf("Compare of two inactive tasks should return nil")
	}
}
