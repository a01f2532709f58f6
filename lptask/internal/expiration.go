// Expiration arithmetic: all of it is unsigned 32-bit mod-2^32, so that a
// free-running millisecond counter can wrap without breaking elapsed-time
// computation, as long as intervals stay under half of MsMax.

package lptask_internal

// elapsedMs returns the wrapping-subtraction elapsed time for an active task.
func elapsedMs(startMs, nowMs uint32) uint32 {
	return nowMs - startMs
}

// remainingMs returns the time left until expiration, or 0 if already expired.
func remainingMs(startMs, intervalMs, nowMs uint32) uint32 {
	elapsed := elapsedMs(startMs, nowMs)
	if elapsed >= intervalMs {
		return 0
	}
	return intervalMs - elapsed
}

// expired reports whether elapsed >= interval.
func expired(startMs, intervalMs, nowMs uint32) bool {
	return elapsedMs(startMs, nowMs) >= intervalMs
}

// Expired reports whether the task is active and its interval has elapsed.
// Inactive tasks can never be expired.
func (t *Task) Expired(nowMs uint32) bool {
	if !t.active() {
		return false
	}
	return expired(t.startMs, t.intervalMs, nowMs)
}

// RemainingMs returns the time until the task's next expiration, or MsMax
// ("infinity") if the task is not active.
func (t *Task) RemainingMs(nowMs uint32) uint32 {
	if !t.active() {
		return MsMax
	}
	return remainingMs(t.startMs, t.intervalMs, nowMs)
}

// ElapsedMs returns the time elapsed since the task was last (re)started, or
// 0 if the task is not active.
func (t *Task) ElapsedMs(nowMs uint32) uint32 {
	if !t.active() {
		return 0
	}
	return elapsedMs(t.startMs, nowMs)
}

// Compare returns whichever of a, b expires sooner, treating an inactive or
// nil task as never expiring. It returns nil if neither is active. Used by
// the full registry scan to fold the next-expiring-task candidate one task
// at a time, so a nil or inactive accumulator never needs special-casing.
func Compare(a, b *Task, nowMs uint32) *Task {
	aActive := a != nil && a.active()
	bActive := b != nil && b.active()
	switch {
	case aActive && bActive:
		if a.RemainingMs(nowMs) <= b.RemainingMs(nowMs) {
			return a
		}
		return b
	case aActive:
		return a
	case bActive:
		return b
	default:
		return nil
	}
}
