// schedhost is a minimal host process for the lptask scheduler: it loads a
// YAML config, wires up a POSIX port, registers a couple of demonstration
// tasks, and runs until interrupted.

package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bgp59/logrusx"
	_ "go.uber.org/automaxprocs"

	"github.com/elemprod/lptask/lptask"
	"github.com/elemprod/lptask/lptask/port/posix"
)

const (
	configFlagName    = "config"
	shutdownMaxWait   = 5 * time.Second
)

var (
	versionArg = flag.Bool("version", false, "Print the version and exit")

	configFileArg = flag.String(
		configFlagName,
		"schedhost-config.yaml",
		"Config file to load",
	)
)

var (
	version = "dev"
	gitInfo = ""
)

func init() {
	logrusx.EnableLoggerArgs()
}

var runnerLog = lptask.NewCompLogger("runner")

func main() {
	os.Exit(run())
}

func run() int {
	flag.Parse()

	if *versionArg {
		fmt.Fprintf(os.Stderr, "Version: %s, GitInfo: %s\n", version, gitInfo)
		return 0
	}

	cfg, err := lptask.LoadConfig(*configFileArg, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading config file: %v\n", err)
		return 1
	}

	logrusx.ApplySetLoggerArgs(cfg.LoggerConfig)
	if err := lptask.SetLogger(cfg.LoggerConfig); err != nil {
		fmt.Fprintf(os.Stderr, "error setting the logger: %v\n", err)
		return 1
	}

	port := posix.New()
	sched := lptask.NewScheduler(cfg.SchedulerConfig, port)
	if err := sched.Init(); err != nil {
		runnerLog.Fatalf("error initializing scheduler: %v", err)
	}

	buffSize, err := cfg.PoolConfig.BuffSizeBytes()
	if err != nil {
		runnerLog.Fatalf("error parsing pool config: %v", err)
	}
	pool := lptask.NewTaskPool(cfg.PoolConfig.TaskCount, buffSize)
	registerDemoTasks(sched, pool)

	runDone := make(chan error, 1)
	go func() { runDone <- sched.Run() }()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		runnerLog.Warnf("%s signal received, shutting down", sig)
		sched.Stop()
	case err := <-runDone:
		if err != nil {
			runnerLog.Errorf("scheduler exited: %v", err)
			return 1
		}
		return 0
	}

	select {
	case err := <-runDone:
		if err != nil {
			runnerLog.Errorf("scheduler shutdown error: %v", err)
			return 1
		}
	case <-time.After(shutdownMaxWait):
		runnerLog.Fatalf("shutdown timed out after %s, force exit", shutdownMaxWait)
	}

	return 0
}

// registerDemoTasks wires up a small heartbeat task and a pool-backed,
// self-reporting one-shot task, just enough to exercise the scheduler end to
// end without depending on any application-specific task source.
func registerDemoTasks(sched *lptask.Scheduler, pool *lptask.TaskPool) {
	heartbeat := lptask.NewTask("heartbeat")
	sched.Config(heartbeat, func(task *lptask.Task, _ []byte) {
		runnerLog.Debug("heartbeat")
	}, lptask.Ms(0, 0, 0, 1, 0), true)
	sched.Start(heartbeat)

	report := pool.Alloc(sched, "startup-report")
	if report != nil {
		sched.Config(report, func(task *lptask.Task, data []byte) {
			runnerLog.Infof("startup report: %s", string(data))
		}, lptask.Ms(0, 0, 0, 0, 500), false)
		sched.Data(report, []byte("scheduler online"))
		sched.Start(report)
	}
}
