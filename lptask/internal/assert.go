package lptask_internal

import "fmt"

// debugAssertions gates the structural invariant checks carried over from the
// original C implementation's assert() calls (tail non-nil when head isn't,
// next_task_ms > 0 after a scan, handler non-nil before invocation, ...).
// These guard against bugs in the core itself, not caller misuse, so they
// panic rather than return an error: per spec, a programming invariant
// violation is not runtime-recoverable.
var debugAssertions = true

func assertf(cond bool, format string, args ...any) {
	if debugAssertions && !cond {
		panic(fmt.Sprintf("lptask: invariant violation: "+format, args...))
	}
}
