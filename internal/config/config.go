// internal/config/config.go
//
// This package handles configuration and the .weft directory structure.
// Every project edited with weft gets a .weft/ folder created in its root.

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// WeftDir is the name of the directory we create in each project
	WeftDir = ".weft"

	defaultDebounceMS  = 250
	defaultWorkflowDir = "workflows"
)

const defaultProjectConfigYAML = `# weft project configuration
version: 1

editor:
  # Edits made within this window coalesce into a single recompile.
  debounce_ms: 250

workflows:
  # Where workflow records are stored, relative to the project root.
  dir: workflows
`

// EditorConfig captures live-editor preferences.
type EditorConfig struct {
	DebounceMS int `yaml:"debounce_ms"`
}

// WorkflowConfig captures where workflow records live.
type WorkflowConfig struct {
	Dir string `yaml:"dir"`
}

// ProjectConfig models .weft/config.yaml.
type ProjectConfig struct {
	Version   int            `yaml:"version"`
	Editor    EditorConfig   `yaml:"editor"`
	Workflows WorkflowConfig `yaml:"workflows"`
}

// Config holds the runtime configuration for weft.
type Config struct {
	// ProjectDir is the directory where the user ran `weft` from
	ProjectDir string

	// WeftProjectDir is ProjectDir/.weft
	WeftProjectDir string

	Project ProjectConfig
}

// InitWeftDir creates the .weft directory structure in the given project
// directory and writes a default config file when none exists.
//
// Structure created:
// .weft/
// ├── config.yaml
// └── logs/         <- editor activity log
// workflows/        <- workflow records (project root)
func InitWeftDir(projectDir string) error {
	weftDir := filepath.Join(projectDir, WeftDir)
	dirs := []string{
		filepath.Join(weftDir, "logs"),
		filepath.Join(projectDir, defaultWorkflowDir),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("config: create %s: %w", dir, err)
		}
	}
	configPath := filepath.Join(weftDir, "config.yaml")
	if _, err := os.Stat(configPath); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("config: stat %s: %w", configPath, err)
		}
		if err := os.WriteFile(configPath, []byte(defaultProjectConfigYAML), 0o644); err != nil {
			return fmt.Errorf("config: write default config: %w", err)
		}
	}
	return nil
}

// NewConfig creates a Config populated with project settings, falling back to
// defaults when .weft/config.yaml is absent.
func NewConfig(projectDir string) (*Config, error) {
	abs, err := filepath.Abs(projectDir)
	if err != nil {
		return nil, fmt.Errorf("config: resolve project dir: %w", err)
	}
	cfg := &Config{
		ProjectDir:     abs,
		WeftProjectDir: filepath.Join(abs, WeftDir),
		Project:        defaultProjectConfig(),
	}
	configPath := filepath.Join(cfg.WeftProjectDir, "config.yaml")
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("config: read %s: %w", configPath, err)
	}
	var project ProjectConfig
	if err := yaml.Unmarshal(data, &project); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", configPath, err)
	}
	cfg.Project = normalizeProject(project)
	return cfg, nil
}

func defaultProjectConfig() ProjectConfig {
	return ProjectConfig{
		Version:   1,
		Editor:    EditorConfig{DebounceMS: defaultDebounceMS},
		Workflows: WorkflowConfig{Dir: defaultWorkflowDir},
	}
}

func normalizeProject(project ProjectConfig) ProjectConfig {
	if project.Editor.DebounceMS <= 0 {
		project.Editor.DebounceMS = defaultDebounceMS
	}
	if project.Workflows.Dir == "" {
		project.Workflows.Dir = defaultWorkflowDir
	}
	return project
}

// DebounceInterval returns the configured edit-coalescing window.
func (c *Config) DebounceInterval() time.Duration {
	return time.Duration(c.Project.Editor.DebounceMS) * time.Millisecond
}

// WorkflowDir returns the absolute path of the workflow record directory.
func (c *Config) WorkflowDir() string {
	dir := c.Project.Workflows.Dir
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(c.ProjectDir, dir)
}

// LogsDir returns the path to the logs directory
func (c *Config) LogsDir() string {
	return filepath.Join(c.WeftProjectDir, "logs")
}

// LogPath returns the file the logbook appends to.
func (c *Config) LogPath() string {
	return filepath.Join(c.LogsDir(), "weft.log")
}
