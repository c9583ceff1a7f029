package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/weftlabs/weft/internal/compile"
	"github.com/weftlabs/weft/internal/program"
)

var checkCmd = &cobra.Command{
	Use:   "check <record>",
	Short: "Verify a record survives an edit round trip",
	Long: `Load a workflow record, rebuild its editable graph, recompile the graph, and
compare the result against the stored program.

A clean check means opening this record in the editor and saving it unchanged
preserves its behavior. Unknown step kinds are reported: they round-trip, but
the editor treats them as opaque actions.`,
	Example: `  weft check orders
  weft check /tmp/draft.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadProjectConfig()
	if err != nil {
		return err
	}
	path := resolveRecordPath(cfg, args[0])
	rec, err := program.LoadRecordFile(path)
	if err != nil {
		return err
	}

	for i, step := range rec.Steps {
		if !step.Kind.Known() {
			fmt.Printf("note: step %d has unknown kind %q\n", i, step.Kind)
		}
	}

	g := compile.Decompile(rec.Descriptor(), rec.Program())
	trigger, prog := compile.Compile(g)

	if trigger.Type != rec.TriggerType {
		return fmt.Errorf("trigger diverged after round trip: %q became %q", rec.TriggerType, trigger.Type)
	}
	if !prog.ContentEqual(knownSteps(rec.Program())) {
		return fmt.Errorf("program diverged after round trip: %d step(s) became %d", len(rec.Steps), len(prog))
	}
	fmt.Printf("ok: %d step(s) round-trip cleanly\n", len(prog))
	return nil
}

// knownSteps normalizes unknown kinds the way the editor does, so the
// comparison matches what a load/save cycle actually produces.
func knownSteps(steps program.Program) program.Program {
	out := steps.Clone()
	for i, step := range out {
		if step.Kind.Known() {
			continue
		}
		out[i].Kind = program.StepAction
		if out[i].ActionType == "" {
			out[i].ActionType = string(step.Kind)
		}
	}
	return out
}
