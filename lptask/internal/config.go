// Scheduler configuration, loaded from YAML.
//
// The configuration has the following structure:
//
//  lptask_config:
//    scheduler_config:
//      cache_enabled: true
//      buffer_clear_enabled: false
//    log_config:
//      ...
//    pool_config:
//      ...

package lptask_internal

import (
	"fmt"
	"io"
	"os"

	"github.com/docker/go-units"
	"github.com/huandu/go-clone"
	"gopkg.in/yaml.v3"
)

const (
	LPTASK_CONFIG_SECTION_NAME = "lptask_config"

	// Defaults for SchedulerConfig's fields.
	SCHEDULER_CONFIG_CACHE_ENABLED_DEFAULT        = true
	SCHEDULER_CONFIG_BUFFER_CLEAR_ENABLED_DEFAULT = false
)

// SchedulerConfig holds the compile-time-knob equivalents from spec.md §6:
// SCHED_TASK_CACHE_EN and SCHED_TASK_BUFF_CLEAR_EN become runtime config
// instead of C preprocessor defines, since there is no build-time
// conditional-compilation story for a library consumed as a normal Go
// module.
type SchedulerConfig struct {
	// Whether to use the next-expiring-task cache (§4.4) to skip full-list
	// scans, or always do a full scan (useful for debugging/testing cache
	// logic against a known-good baseline).
	CacheEnabled bool `yaml:"cache_enabled"`
	// Whether to zero a buffered task's internal buffer on (re)config.
	BufferClearEnabled bool `yaml:"buffer_clear_enabled"`
}

func DefaultSchedulerConfig() *SchedulerConfig {
	return &SchedulerConfig{
		CacheEnabled:       SCHEDULER_CONFIG_CACHE_ENABLED_DEFAULT,
		BufferClearEnabled: SCHEDULER_CONFIG_BUFFER_CLEAR_ENABLED_DEFAULT,
	}
}

// PoolConfig describes a fixed-capacity pool of buffered tasks.
type PoolConfig struct {
	// Number of task slots in the pool.
	TaskCount int `yaml:"task_count"`
	// Per-task buffer capacity, as a human-readable size (e.g. "32B",
	// "1KB"), parsed with units.RAMInBytes; see PoolConfig.BuffSizeBytes.
	BuffSize string `yaml:"buff_size"`
}

func DefaultPoolConfig() *PoolConfig {
	return &PoolConfig{
		TaskCount: 8,
		BuffSize:  "32B",
	}
}

// BuffSizeBytes parses BuffSize into a byte count.
func (c *PoolConfig) BuffSizeBytes() (int, error) {
	n, err := units.RAMInBytes(c.BuffSize)
	if err != nil {
		return 0, fmt.Errorf("pool_config.buff_size: %q: %v", c.BuffSize, err)
	}
	return int(n), nil
}

// Config is the top-level configuration for an lptask-based process.
type Config struct {
	SchedulerConfig *SchedulerConfig `yaml:"scheduler_config"`
	LoggerConfig    *LoggerConfig    `yaml:"log_config"`
	PoolConfig      *PoolConfig      `yaml:"pool_config"`
}

func DefaultConfig() *Config {
	return &Config{
		SchedulerConfig: DefaultSchedulerConfig(),
		LoggerConfig:    DefaultLoggerConfig(),
		PoolConfig:      DefaultPoolConfig(),
	}
}

// LoadConfig loads the lptask_config section of a YAML document. buf, if
// non-nil, is used instead of reading cfgFile (for tests). The returned
// Config is a deep clone of the defaults overridden by the file, so the
// caller can freely mutate it without aliasing package-level defaults.
func LoadConfig(cfgFile string, buf []byte) (*Config, error) {
	if buf == nil {
		f, err := os.Open(cfgFile)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		buf, err = io.ReadAll(f)
		if err != nil {
			return nil, fmt.Errorf("file: %q: %v", cfgFile, err)
		}
	}

	docNode := yaml.Node{}
	if err := yaml.Unmarshal(buf, &docNode); err != nil {
		return nil, fmt.Errorf("file: %q: %v", cfgFile, err)
	}

	cfg := clone.Clone(DefaultConfig()).(*Config)
	if docNode.Kind == yaml.DocumentNode && len(docNode.Content) > 0 {
		rootNode := docNode.Content[0]
		if rootNode.Kind != yaml.MappingNode {
			return nil, fmt.Errorf("file: %q: invalid YAML root node %q", cfgFile, rootNode.Tag)
		}
		for i := 0; i+1 < len(rootNode.Content); i += 2 {
			keyNode, valNode := rootNode.Content[i], rootNode.Content[i+1]
			if keyNode.Value == LPTASK_CONFIG_SECTION_NAME {
				if err := valNode.Decode(cfg); err != nil {
					return nil, fmt.Errorf("file: %q: %v", cfgFile, err)
				}
			}
		}
	}

	return cfg, nil
}
