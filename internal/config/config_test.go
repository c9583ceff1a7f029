package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestNewConfigDefaultsWhenMissing(t *testing.T) {
	projectDir := t.TempDir()
	c, err := NewConfig(projectDir)
	if err != nil {
		t.Fatalf("NewConfig returned error: %v", err)
	}
	if c.Project.Version != 1 {
		t.Fatalf("expected default version == 1, got %d", c.Project.Version)
	}
	if c.DebounceInterval() != 250*time.Millisecond {
		t.Fatalf("expected default debounce 250ms, got %s", c.DebounceInterval())
	}
	if !strings.HasSuffix(c.WorkflowDir(), "workflows") {
		t.Fatalf("unexpected workflow dir %s", c.WorkflowDir())
	}
}

func TestNewConfigParsesYaml(t *testing.T) {
	projectDir := t.TempDir()
	weftDir := filepath.Join(projectDir, ".weft")
	if err := os.MkdirAll(weftDir, 0755); err != nil {
		t.Fatal(err)
	}
	configYAML := strings.TrimSpace(`
version: 1
editor:
  debounce_ms: 50
workflows:
  dir: rules
`)
	if err := os.WriteFile(filepath.Join(weftDir, "config.yaml"), []byte(configYAML), 0644); err != nil {
		t.Fatal(err)
	}
	c, err := NewConfig(projectDir)
	if err != nil {
		t.Fatalf("NewConfig returned error: %v", err)
	}
	if c.DebounceInterval() != 50*time.Millisecond {
		t.Fatalf("expected debounce 50ms, got %s", c.DebounceInterval())
	}
	if !strings.HasPrefix(c.WorkflowDir(), projectDir) || !strings.HasSuffix(c.WorkflowDir(), "rules") {
		t.Fatalf("expected resolved workflow dir, got %s", c.WorkflowDir())
	}
}

func TestNewConfigNormalizesBadValues(t *testing.T) {
	projectDir := t.TempDir()
	weftDir := filepath.Join(projectDir, ".weft")
	if err := os.MkdirAll(weftDir, 0755); err != nil {
		t.Fatal(err)
	}
	configYAML := strings.TrimSpace(`
version: 1
editor:
  debounce_ms: -10
workflows:
  dir: ""
`)
	if err := os.WriteFile(filepath.Join(weftDir, "config.yaml"), []byte(configYAML), 0644); err != nil {
		t.Fatal(err)
	}
	c, err := NewConfig(projectDir)
	if err != nil {
		t.Fatalf("NewConfig returned error: %v", err)
	}
	if c.DebounceInterval() != 250*time.Millisecond {
		t.Fatalf("expected debounce normalized to 250ms, got %s", c.DebounceInterval())
	}
	if !strings.HasSuffix(c.WorkflowDir(), "workflows") {
		t.Fatalf("expected workflow dir fallback, got %s", c.WorkflowDir())
	}
}

func TestInitWeftDirCreatesStructure(t *testing.T) {
	projectDir := t.TempDir()
	if err := InitWeftDir(projectDir); err != nil {
		t.Fatalf("InitWeftDir returned error: %v", err)
	}
	for _, path := range []string{
		filepath.Join(projectDir, ".weft", "config.yaml"),
		filepath.Join(projectDir, ".weft", "logs"),
		filepath.Join(projectDir, "workflows"),
	} {
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("expected %s to exist: %v", path, err)
		}
	}
	// Re-running must not clobber an existing config.
	marker := []byte("version: 1\neditor:\n  debounce_ms: 99\n")
	if err := os.WriteFile(filepath.Join(projectDir, ".weft", "config.yaml"), marker, 0644); err != nil {
		t.Fatal(err)
	}
	if err := InitWeftDir(projectDir); err != nil {
		t.Fatalf("InitWeftDir rerun returned error: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(projectDir, ".weft", "config.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != string(marker) {
		t.Fatalf("rerun overwrote existing config")
	}
}
