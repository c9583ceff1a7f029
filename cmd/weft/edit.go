package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/weftlabs/weft/internal/config"
	"github.com/weftlabs/weft/internal/tui"
)

var editCmd = &cobra.Command{
	Use:   "edit [record]",
	Short: "Open a workflow in the editor",
	Long: `Open a workflow record in the terminal editor. A missing record starts an
empty workflow that is written to the given path on save.

The editor recompiles the graph into its step program after every structural
change, debounced so rapid edits compile once.`,
	Example: `  # Edit workflows/orders.yaml in the current project
  weft edit orders

  # Edit an arbitrary record file
  weft edit /tmp/draft.yaml

  # Start a fresh workflow
  weft edit`,
	Args: cobra.MaximumNArgs(1),
	RunE: runEdit,
}

func runEdit(cmd *cobra.Command, args []string) error {
	cfg, err := loadProjectConfig()
	if err != nil {
		return err
	}
	if err := config.InitWeftDir(cfg.ProjectDir); err != nil {
		return fmt.Errorf("initialize project: %w", err)
	}

	arg := ""
	if len(args) > 0 {
		arg = args[0]
	}
	recordPath := resolveRecordPath(cfg, arg)

	app, err := tui.NewApp(cfg.ProjectDir, recordPath)
	if err != nil {
		return err
	}
	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run editor: %w", err)
	}
	return nil
}
