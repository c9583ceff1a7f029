package compile

import (
	"github.com/weftlabs/weft/internal/graph"
	"github.com/weftlabs/weft/internal/program"
)

// Compile lowers a rule graph into a trigger descriptor plus an ordered
// program. It is a pure function of the graph: no side effects, no errors.
//
// The trigger node never becomes an instruction; its payload is extracted
// into the descriptor side channel (zero descriptor when no trigger exists).
// Condition instructions carry the index of their false-branch target within
// the emitted, trigger-excluded sequence. The true branch stays implicit:
// by contract with the execution engine, the instruction immediately after a
// condition is its true-branch continuation. Nothing here verifies that the
// true edge's target actually landed next in the ordering.
func Compile(g *graph.Graph) (program.TriggerDescriptor, program.Program) {
	if g == nil {
		return program.TriggerDescriptor{}, nil
	}
	nodes := g.Nodes()
	edges := g.Edges()
	byID := make(map[string]graph.Node, len(nodes))
	for _, node := range nodes {
		byID[node.ID] = node
	}

	var descriptor program.TriggerDescriptor
	var prog program.Program
	emittedAt := make(map[string]int, len(nodes))
	for _, id := range Order(nodes, edges) {
		node := byID[id]
		if node.Kind == graph.KindTrigger {
			if payload, ok := node.Payload.(graph.TriggerPayload); ok {
				descriptor = program.TriggerDescriptor{
					Type:   payload.TriggerType,
					Config: payload.ConfigMap(),
				}
			}
			continue
		}
		emittedAt[id] = len(prog)
		prog = append(prog, instructionFor(node))
	}

	for _, edge := range edges {
		if edge.Branch != graph.BranchFalse {
			continue
		}
		source, ok := emittedAt[edge.Source]
		if !ok || prog[source].Kind != program.StepCondition {
			continue
		}
		// Graph.Connect keeps one false edge per condition; if a hand-built
		// graph carries duplicates anyway, the first resolvable one wins.
		if prog[source].ElseGoto != nil {
			continue
		}
		// A dangling false edge is skipped; the condition falls through.
		target, ok := emittedAt[edge.Target]
		if !ok {
			continue
		}
		goTo := target
		prog[source].ElseGoto = &goTo
	}
	return descriptor, prog
}

func instructionFor(node graph.Node) program.Instruction {
	in := program.Instruction{}
	switch node.Kind {
	case graph.KindAction:
		in.Kind = program.StepAction
		if payload, ok := node.Payload.(graph.ActionPayload); ok {
			in.ActionType = payload.ActionType
		}
	case graph.KindCondition:
		in.Kind = program.StepCondition
	case graph.KindDelay:
		in.Kind = program.StepDelay
	}
	if node.Payload != nil {
		in.Config = node.Payload.ConfigMap()
	}
	return in
}
