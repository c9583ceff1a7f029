package main

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/weftlabs/weft/internal/program"
)

var showCmd = &cobra.Command{
	Use:   "show <record>",
	Short: "Print a compiled workflow record",
	Long: `Print the step program stored in a workflow record: the trigger descriptor
followed by the numbered instruction listing, with condition jump targets
resolved to step numbers.`,
	Example: `  # Show a record from the project's workflow directory
  weft show orders

  # Show an arbitrary record file
  weft show /tmp/draft.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

func runShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadProjectConfig()
	if err != nil {
		return err
	}
	path := resolveRecordPath(cfg, args[0])
	rec, err := program.LoadRecordFile(path)
	if err != nil {
		return err
	}

	if rec.TriggerType == "" {
		fmt.Println("trigger: (none)")
	} else {
		fmt.Printf("trigger: %s%s\n", rec.TriggerType, configSummary(rec.TriggerConfig))
	}

	if len(rec.Steps) == 0 {
		fmt.Println("steps:   (none)")
		return nil
	}
	w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "#\tKIND\tDETAIL")
	for i, step := range rec.Steps {
		fmt.Fprintf(w, "%d\t%s\t%s\n", i, step.Kind, stepDetail(step))
	}
	return w.Flush()
}

func stepDetail(step program.Instruction) string {
	var detail string
	switch step.Kind {
	case program.StepAction:
		detail = step.ActionType
	case program.StepCondition:
		detail = configSummary(step.Config)
		if step.ElseGoto != nil {
			detail += fmt.Sprintf("  else -> #%d", *step.ElseGoto)
		} else {
			detail += "  else -> fall through"
		}
	case program.StepDelay:
		detail = configSummary(step.Config)
	default:
		detail = fmt.Sprintf("(unknown kind)%s", configSummary(step.Config))
	}
	return strings.TrimSpace(detail)
}

func configSummary(config map[string]any) string {
	if len(config) == 0 {
		return ""
	}
	keys := make([]string, 0, len(config))
	for key := range config {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", key, config[key]))
	}
	return " " + strings.Join(parts, " ")
}
