// The platform port: monotonic clock, critical section and cooperative sleep.

package lptask_internal

import (
	"sync"
	"time"
)

// Port is the set of platform primitives the scheduler core consumes. The
// core assumes nothing else about its environment: no allocator, no
// exceptions, no threads beyond whatever calls Lock/Unlock concurrently with
// the main loop.
type Port interface {
	// NowMs returns a monotonic, 1mS-tick counter, wrapping at 2^32. It must
	// never jump backward.
	NowMs() uint32
	// Lock acquires exclusive access to the scheduler's shared state. Calls
	// are always balanced and never nested by the core.
	Lock()
	// Unlock releases the lock acquired by Lock.
	Unlock()
	// Sleep cooperatively suspends the caller for approximately ms
	// milliseconds. It may return earlier, e.g. because of a concurrent
	// Start/Stop/Update from another goroutine; the core tolerates this and
	// simply re-scans.
	Sleep(ms uint32)
	// Init performs optional platform setup, called once when the scheduler
	// starts.
	Init() error
	// Deinit performs optional platform teardown, called once the scheduler
	// has fully stopped.
	Deinit() error
}

// BasePort supplies no-op Init/Deinit and a sliced time.Sleep, so a Port
// implementation only has to provide NowMs/Lock/Unlock by embedding BasePort.
// This stands in for the weak/default port functions of the original C port
// contract (sched_port_sleep/init/deinit default to empty).
type BasePort struct{}

func (BasePort) Init() error   { return nil }
func (BasePort) Deinit() error { return nil }

// Sleep waits for the full ms milliseconds using time.Sleep in 1 mS slices,
// so a minimal Port (NowMs/Lock/Unlock) is usable without spinning the CPU.
// It does not return early: a concurrent Stop() or Start() is only seen once
// the whole duration has passed.
func (BasePort) Sleep(ms uint32) {
	if ms == 0 {
		return
	}
	const slice = 1 * time.Millisecond
	d := time.Duration(ms) * time.Millisecond
	for d > 0 {
		step := slice
		if step > d {
			step = d
		}
		time.Sleep(step)
		d -= step
	}
}

// defaultPort is a portable Port built on the standard library, used when the
// caller doesn't supply one of its own (e.g. in tests or on hosts that don't
// need the POSIX clock_gettime port in lptask/port/posix).
type defaultPort struct {
	BasePort
	mu    sync.Mutex
	start time.Time
}

// NewDefaultPort returns a Port backed by time.Now()'s monotonic reading. The
// counter wraps at 2^32 like any other conformant Port.
func NewDefaultPort() Port {
	return &defaultPort{start: time.Now()}
}

func (p *defaultPort) NowMs() uint32 {
	return uint32(time.Since(p.start).Milliseconds())
}

func (p *defaultPort) Lock()   { p.mu.Lock() }
func (p *defaultPort) Unlock() { p.mu.Unlock() }
