// Package posix provides an lptask.Port backed by the POSIX monotonic clock
// and nanosleep, the direct analogue of examples/POSIX/common/scheduler_port.c
// (clock_gettime(CLOCK_MONOTONIC) + pthread_mutex_t + nanosleep) from the
// original scheduler's reference host port.

//go:build unix

package posix

import (
	"sync"
	"time"

	"golang.org/x/sys/unix"

	"github.com/elemprod/lptask/lptask"
)

// Port is a lptask.Port built on golang.org/x/sys/unix, suitable for any
// POSIX host (Linux, *BSD, Darwin). The zero value is not usable; construct
// with New.
type Port struct {
	mu      sync.Mutex
	startMs uint32
}

var _ lptask.Port = (*Port)(nil)

// New returns a Port whose clock is clock_gettime(CLOCK_MONOTONIC), truncated
// to a wrapping millisecond counter the way the original sched_port_ms did.
func New() *Port {
	return &Port{startMs: nowMonotonicMs()}
}

func nowMonotonicMs() uint32 {
	var ts unix.Timespec
	if err := unix.ClockGettime(unix.CLOCK_MONOTONIC, &ts); err != nil {
		// Not expected to fail on any real POSIX host; fall back to the
		// standard library's wall clock (Unix milliseconds) rather than
		// panicking. That reading is not monotonic.
		return uint32(time.Now().UnixMilli())
	}
	return uint32(ts.Sec*1000 + ts.Nsec/1_000_000)
}

func (p *Port) NowMs() uint32 {
	return nowMonotonicMs() - p.startMs
}

func (p *Port) Lock()   { p.mu.Lock() }
func (p *Port) Unlock() { p.mu.Unlock() }

func (p *Port) Init() error   { return nil }
func (p *Port) Deinit() error { return nil }

// Sleep suspends the calling goroutine for ms milliseconds via
// nanosleep(2), restarting on EINTR the way the C port does, less the
// portion already elapsed.
func (p *Port) Sleep(ms uint32) {
	remaining := unix.NsecToTimespec(int64(ms) * 1_000_000)
	for {
		var rem unix.Timespec
		err := unix.Nanosleep(&remaining, &rem)
		if err == unix.EINTR {
			remaining = rem
			continue
		}
		return
	}
}
