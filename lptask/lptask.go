// The public face of the scheduler for consumers of this module.

package lptask

import (
	"github.com/sirupsen/logrus"

	lptask_internal "github.com/elemprod/lptask/lptask/internal"
)

// Task, Scheduler, Pool types and the lifecycle/state enums are re-exported
// straight from the internal package; the internal package exists only to
// keep the implementation's helper functions (elapsedMs, assertf, ...) out
// of this package's public surface.
type (
	Task            = lptask_internal.Task
	Handler         = lptask_internal.Handler
	State           = lptask_internal.State
	Scheduler       = lptask_internal.Scheduler
	SchedState      = lptask_internal.SchedState
	TaskStats       = lptask_internal.TaskStats
	TaskPool        = lptask_internal.TaskPool
	Port            = lptask_internal.Port
	BasePort        = lptask_internal.BasePort
	Config          = lptask_internal.Config
	LoggerConfig    = lptask_internal.LoggerConfig
	SchedulerConfig = lptask_internal.SchedulerConfig
	PoolConfig      = lptask_internal.PoolConfig
)

const (
	StateUninit    = lptask_internal.StateUninit
	StateStopped   = lptask_internal.StateStopped
	StateActive    = lptask_internal.StateActive
	StateExecuting = lptask_internal.StateExecuting
	StateStopping  = lptask_internal.StateStopping

	SchedStopped  = lptask_internal.SchedStopped
	SchedActive   = lptask_internal.SchedActive
	SchedStopping = lptask_internal.SchedStopping

	MsMax = lptask_internal.MsMax
)

// NewTask creates an unbuffered, UNINIT task.
func NewTask(id string) *Task { return lptask_internal.NewTask(id) }

// NewBufferedTask creates an UNINIT task that owns its own data buffer.
func NewBufferedTask(id string, buffSize int) *Task {
	return lptask_internal.NewBufferedTask(id, buffSize)
}

// NewTaskPool creates a fixed-capacity pool of taskCount buffered tasks,
// each with a buffSize-byte buffer.
func NewTaskPool(taskCount int, buffSize int) *TaskPool {
	return lptask_internal.NewTaskPool(taskCount, buffSize)
}

// NewScheduler constructs a Scheduler bound to port (nil uses a portable,
// stdlib-backed default Port). Call Init, then Run.
func NewScheduler(cfg *SchedulerConfig, port Port) *Scheduler {
	return lptask_internal.NewScheduler(cfg, port)
}

func DefaultConfig() *Config                   { return lptask_internal.DefaultConfig() }
func DefaultSchedulerConfig() *SchedulerConfig { return lptask_internal.DefaultSchedulerConfig() }
func DefaultPoolConfig() *PoolConfig           { return lptask_internal.DefaultPoolConfig() }
func DefaultLoggerConfig() *LoggerConfig       { return lptask_internal.DefaultLoggerConfig() }

// LoadConfig loads the lptask_config YAML section from cfgFile (or, if buf is
// non-nil, from buf directly).
func LoadConfig(cfgFile string, buf []byte) (*Config, error) {
	return lptask_internal.LoadConfig(cfgFile, buf)
}

// SetLogger applies cfg to the package's root logger.
func SetLogger(cfg *LoggerConfig) error { return lptask_internal.SetLogger(cfg) }

// NewCompLogger returns a sub-logger tagging every entry with comp=compName.
func NewCompLogger(compName string) *logrus.Entry {
	return lptask_internal.NewCompLogger(compName)
}

// GetRootLogger exposes the root logger for tests (see lptask/testutils);
// its concrete type is otherwise internal.
func GetRootLogger() any { return lptask_internal.GetRootLogger() }

// AddCallerSrcPathPrefixToLogger registers the caller's own source
// directory, upNDirs levels up, as a prefix to strip from logged file paths.
// Typically called once from main.init() with upNDirs=0 when main.go sits
// at the module root.
func AddCallerSrcPathPrefixToLogger(upNDirs int) error {
	return lptask_internal.AddCallerSrcPathPrefixToLogger(upNDirs, 1)
}

// Ms builds a millisecond interval from calendar-style units, saturating at
// MsMax rather than wrapping, the Go-native analogue of sched_helper.h's
// sched_ms(days, hours, mins, secs, ms) macro.
func Ms(days, hours, mins, secs, ms int) uint32 {
	total := int64(ms) +
		int64(secs)*1000 +
		int64(mins)*60*1000 +
		int64(hours)*60*60*1000 +
		int64(days)*24*60*60*1000
	if total < 0 {
		return 0
	}
	if total > int64(MsMax) {
		return MsMax
	}
	return uint32(total)
}
