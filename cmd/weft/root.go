package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/weftlabs/weft/internal/config"
)

var projectDir string

var rootCmd = &cobra.Command{
	Use:   "weft",
	Short: "Terminal editor for workflow automation rules",
	Long: `weft is a terminal editor for workflow automation rules.

A workflow is a graph of typed nodes: one trigger, plus actions, conditions
and delays. weft compiles the graph into a linear step program as you edit,
and saves the result in a YAML/JSON wire format other tools can execute.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&projectDir, "project", "", "project directory (defaults to the working directory)")
	rootCmd.AddCommand(editCmd, showCmd, checkCmd)
}

// loadProjectConfig resolves the project directory and reads its config.
func loadProjectConfig() (*config.Config, error) {
	dir := projectDir
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("resolve working directory: %w", err)
		}
		dir = cwd
	}
	return config.NewConfig(dir)
}

// resolveRecordPath accepts either a path to a record file or a bare name
// that is looked up in the project's workflow directory.
func resolveRecordPath(cfg *config.Config, arg string) string {
	if arg == "" {
		return filepath.Join(cfg.WorkflowDir(), "untitled.yaml")
	}
	if _, err := os.Stat(arg); err == nil {
		return arg
	}
	if filepath.Ext(arg) == "" {
		arg += ".yaml"
	}
	if filepath.IsAbs(arg) || filepath.Dir(arg) != "." {
		return arg
	}
	return filepath.Join(cfg.WorkflowDir(), arg)
}
