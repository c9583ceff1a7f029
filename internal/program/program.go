// Package program defines the linear instruction sequence an execution engine
// consumes, plus the serialized record format it travels in.
package program

import "reflect"

// StepKind tags an instruction with its runtime role. The values are wire
// format and must not change.
type StepKind string

const (
	StepAction    StepKind = "action"
	StepCondition StepKind = "condition"
	StepDelay     StepKind = "delay"
)

// Known reports whether the kind is one this package understands. Unknown
// kinds still round-trip; consumers degrade them to opaque actions.
func (k StepKind) Known() bool {
	switch k {
	case StepAction, StepCondition, StepDelay:
		return true
	}
	return false
}

// Instruction is one element of a compiled program. ElseGoto is the zero-based
// index of the instruction execution jumps to when a condition evaluates
// false; nil means the condition falls through to the next instruction either
// way. The true branch is never encoded: it is always the next instruction in
// sequence.
type Instruction struct {
	Kind       StepKind       `json:"step_type" yaml:"step_type"`
	ActionType string         `json:"action_type,omitempty" yaml:"action_type,omitempty"`
	Config     map[string]any `json:"config,omitempty" yaml:"config,omitempty"`
	ElseGoto   *int           `json:"else_goto_step,omitempty" yaml:"else_goto_step,omitempty"`
}

// Clone returns a copy with its own config map.
func (in Instruction) Clone() Instruction {
	if len(in.Config) > 0 {
		config := make(map[string]any, len(in.Config))
		for key, value := range in.Config {
			config[key] = value
		}
		in.Config = config
	} else {
		in.Config = nil
	}
	if in.ElseGoto != nil {
		target := *in.ElseGoto
		in.ElseGoto = &target
	}
	return in
}

// ContentEqual compares two instructions by content, ignoring the nil/empty
// config distinction.
func (in Instruction) ContentEqual(other Instruction) bool {
	if in.Kind != other.Kind || in.ActionType != other.ActionType {
		return false
	}
	if (in.ElseGoto == nil) != (other.ElseGoto == nil) {
		return false
	}
	if in.ElseGoto != nil && *in.ElseGoto != *other.ElseGoto {
		return false
	}
	if len(in.Config) != len(other.Config) {
		return false
	}
	if len(in.Config) == 0 {
		return true
	}
	return reflect.DeepEqual(in.Config, other.Config)
}

// Program is an ordered, zero-indexed instruction sequence. A program is
// produced whole by one compiler pass and never patched in place; the next
// pass supersedes it entirely.
type Program []Instruction

// Clone returns a deep copy of the program.
func (p Program) Clone() Program {
	if len(p) == 0 {
		return nil
	}
	out := make(Program, len(p))
	for i, in := range p {
		out[i] = in.Clone()
	}
	return out
}

// ContentEqual compares two programs instruction by instruction.
func (p Program) ContentEqual(other Program) bool {
	if len(p) != len(other) {
		return false
	}
	for i := range p {
		if !p[i].ContentEqual(other[i]) {
			return false
		}
	}
	return true
}

// TriggerDescriptor is the side-channel output of compilation: the trigger's
// type plus its opaque config, kept outside the program. The hosting form
// uses it to decide whether the workflow is activatable.
type TriggerDescriptor struct {
	Type   string         `json:"trigger_type" yaml:"trigger_type"`
	Config map[string]any `json:"trigger_config,omitempty" yaml:"trigger_config,omitempty"`
}

// IsZero reports whether the descriptor carries no trigger at all.
func (td TriggerDescriptor) IsZero() bool {
	return td.Type == "" && len(td.Config) == 0
}

// Clone returns a copy with its own config map.
func (td TriggerDescriptor) Clone() TriggerDescriptor {
	if len(td.Config) > 0 {
		config := make(map[string]any, len(td.Config))
		for key, value := range td.Config {
			config[key] = value
		}
		td.Config = config
	} else {
		td.Config = nil
	}
	return td
}
