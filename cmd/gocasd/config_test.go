package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func execute(args ...string) (string, error) {
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := loadConfig(newViper())
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("want :8080, got %s", cfg.Server.Addr)
	}
	if cfg.Server.ReadHeaderTimeout != 5*time.Second {
		t.Errorf("want 5s, got %v", cfg.Server.ReadHeaderTimeout)
	}
	if cfg.Kernel.CacheCapacity != 1000 {
		t.Errorf("want cache capacity 1000, got %d", cfg.Kernel.CacheCapacity)
	}
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("GOCAS_SERVER_ADDR", ":9999")
	t.Setenv("GOCAS_KERNEL_CACHE_CAPACITY", "42")
	cfg, err := loadConfig(newViper())
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Addr != ":9999" {
		t.Errorf("want :9999, got %s", cfg.Server.Addr)
	}
	if cfg.Kernel.CacheCapacity != 42 {
		t.Errorf("want 42, got %d", cfg.Kernel.CacheCapacity)
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gocasd.yaml")
	data := "server:\n  addr: \":7070\"\n  shutdown_timeout: 3s\nkernel:\n  integration_depth: 4\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	v := newViper()
	if err := readConfigFile(v, path); err != nil {
		t.Fatal(err)
	}
	cfg, err := loadConfig(v)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Addr != ":7070" {
		t.Errorf("want :7070, got %s", cfg.Server.Addr)
	}
	if cfg.Server.ShutdownTimeout != 3*time.Second {
		t.Errorf("want 3s, got %v", cfg.Server.ShutdownTimeout)
	}
	if cfg.Kernel.IntegrationDepth != 4 {
		t.Errorf("want 4, got %d", cfg.Kernel.IntegrationDepth)
	}
}

func TestReadConfigFileMissing(t *testing.T) {
	if err := readConfigFile(newViper(), filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("want an error for an explicit missing file")
	}
}

func TestValidateConfig(t *testing.T) {
	cfg, err := loadConfig(newViper())
	if err != nil {
		t.Fatal(err)
	}
	cfg.Server.MaxBodyBytes = 0
	if err := validateConfig(cfg); err == nil {
		t.Error("want an error for a zero body limit")
	}
}

func TestConfigCommand(t *testing.T) {
	out, err := execute("config")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"server:", "addr:", "kernel:", "cache_capacity: 1000"} {
		if !strings.Contains(out, want) {
			t.Errorf("want %q in output:\n%s", want, out)
		}
	}
}

func TestToolsCommand(t *testing.T) {
	out, err := execute("tools")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "simplify\n") || !strings.Contains(out, "batch_simplify\n") {
		t.Errorf("missing tools in output:\n%s", out)
	}
}
