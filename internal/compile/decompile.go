package compile

import (
	"strings"

	"github.com/weftlabs/weft/internal/graph"
	"github.com/weftlabs/weft/internal/program"
)

// Deterministic layout for synthesized graphs: the trigger sits at a fixed
// anchor and instructions stack down a single column, so decompiling the same
// program twice yields visually identical graphs.
const (
	layoutColumnX    = 420
	layoutTriggerY   = 80
	layoutFirstRowY  = 220
	layoutRowSpacing = 140
)

// Decompile synthesizes an editable graph from a stored trigger descriptor
// and program, the approximate inverse of Compile. Node IDs and positions are
// presentation artifacts regenerated fresh each time; recompiling the result
// reproduces the descriptor and program up to instruction content equality.
//
// Instructions with unrecognized kinds become opaque action nodes so that
// externally supplied data round-trips instead of failing.
func Decompile(descriptor program.TriggerDescriptor, prog program.Program) *graph.Graph {
	g := graph.New()
	descriptor = descriptor.Clone()
	trigger := graph.NewNode(triggerLabel(descriptor), graph.TriggerPayload{
		TriggerType: descriptor.Type,
		Config:      descriptor.Config,
	})
	trigger.Position = graph.Position{X: layoutColumnX, Y: layoutTriggerY}
	if err := g.AddNode(trigger); err != nil {
		return g
	}

	ids := make([]string, len(prog))
	for i, in := range prog {
		node := nodeForInstruction(in)
		node.Position = graph.Position{
			X: layoutColumnX,
			Y: layoutFirstRowY + float64(i)*layoutRowSpacing,
		}
		if err := g.AddNode(node); err != nil {
			continue
		}
		ids[i] = node.ID
	}

	if len(ids) > 0 && ids[0] != "" {
		g.Connect(trigger.ID, ids[0], graph.BranchNone)
	}
	for i := range prog {
		if ids[i] == "" {
			continue
		}
		// Sequential and True edges need a next instruction; False edges do
		// not, so a condition in the final slot still keeps its jump target.
		hasNext := i+1 < len(ids) && ids[i+1] != ""
		if prog[i].Kind != program.StepCondition {
			if hasNext {
				g.Connect(ids[i], ids[i+1], graph.BranchNone)
			}
			continue
		}
		if hasNext {
			g.Connect(ids[i], ids[i+1], graph.BranchTrue)
		}
		if prog[i].ElseGoto == nil {
			continue
		}
		target := *prog[i].ElseGoto
		// Out-of-range branch targets in external data are dropped, never a
		// reason to fail.
		if target < 0 || target >= len(ids) || ids[target] == "" {
			continue
		}
		g.Connect(ids[i], ids[target], graph.BranchFalse)
	}
	return g
}

func nodeForInstruction(in program.Instruction) graph.Node {
	switch in.Kind {
	case program.StepCondition:
		payload := graph.ConditionPayloadFromConfig(in.Config)
		return graph.NewNode(conditionLabel(payload), payload)
	case program.StepDelay:
		payload := graph.DelayPayloadFromConfig(in.Config)
		return graph.NewNode("Delay", payload)
	default:
		actionType := in.ActionType
		if actionType == "" && in.Kind != program.StepAction {
			actionType = string(in.Kind)
		}
		payload := graph.ActionPayload{ActionType: actionType, Config: in.Clone().Config}
		return graph.NewNode(actionLabel(actionType), payload)
	}
}

func triggerLabel(descriptor program.TriggerDescriptor) string {
	if descriptor.Type == "" {
		return "Trigger"
	}
	return friendlyLabel(descriptor.Type)
}

func actionLabel(actionType string) string {
	if actionType == "" {
		return "Action"
	}
	return friendlyLabel(actionType)
}

func conditionLabel(payload graph.ConditionPayload) string {
	if payload.Field == "" {
		return "Condition"
	}
	return "If " + friendlyLabel(payload.Field)
}

func friendlyLabel(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	replacer := strings.NewReplacer("_", " ", "-", " ", ".", " ")
	words := strings.Fields(replacer.Replace(strings.ToLower(value)))
	for i, word := range words {
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}
