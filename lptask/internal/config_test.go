package lptask_internal

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.SchedulerConfig == nil || cfg.LoggerConfig == nil || cfg.PoolConfig == nil {
		t.Fatal("DefaultConfig should populate every sub-config")
	}
	if !cfg.SchedulerConfig.CacheEnabled {
		t.Fatal("cache should be enabled by default")
	}
}

func TestLoadConfigOverridesDefaults(t *testing.T) {
	yamlDoc := []byte(`
lptask_config:
  scheduler_config:
    cache_enabled: false
  pool_config:
    task_count: 16
    buff_size: 64B
`)
	cfg, err := LoadConfig("", yamlDoc)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.SchedulerConfig.CacheEnabled {
		t.Fatal("expected cache_enabled override to false")
	}
	if cfg.PoolConfig.TaskCount != 16 {
		t.Fatalf("got TaskCount %d, want 16", cfg.PoolConfig.TaskCount)
	}
	n, err := cfg.PoolConfig.BuffSizeBytes()
	if err != nil {
		t.Fatalf("BuffSizeBytes: %v", err)
	}
	if n != 64 {
		t.Fatalf("got buff size %d, want 64", n)
	}
	// Unset fields must still carry defaults:
	if cfg.LoggerConfig.Level != LOGGER_CONFIG_LEVEL_DEFAULT {
		t.Fatalf("got Level %q, want default %q", cfg.LoggerConfig.Level, LOGGER_CONFIG_LEVEL_DEFAULT)
	}
}

func TestLoadConfigDoesNotAliasDefaults(t *testing.T) {
	yamlDoc := []byte(`
lptask_config:
  scheduler_config:
    cache_enabled: false
`)
	cfg, err := LoadConfig("", yamlDoc)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	def := DefaultConfig()
	if cfg.SchedulerConfig == def.SchedulerConfig {
		t.Fatal("LoadConfig must not alias the package-level defaults")
	}
	if diff := cmp.Diff(def.PoolConfig, cfg.PoolConfig); diff != "" {
		t.Fatalf("unexpected PoolConfig diff (-want +got):\n%s", diff)
	}
}

func TestLoadConfigEmptyDocumentUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig("", []byte(""))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if diff := cmp.Diff(DefaultConfig(), cfg); diff != "" {
		t.Fatalf("unexpected Config diff (-want +got):\n%s", diff)
	}
}
