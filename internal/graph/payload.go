package graph

// NodeKind identifies the role a node plays in a rule graph and determines the
// shape of its payload.
type NodeKind string

const (
	KindTrigger   NodeKind = "trigger"
	KindAction    NodeKind = "action"
	KindCondition NodeKind = "condition"
	KindDelay     NodeKind = "delay"
)

// Valid reports whether the kind is one of the four node kinds.
func (k NodeKind) Valid() bool {
	switch k {
	case KindTrigger, KindAction, KindCondition, KindDelay:
		return true
	}
	return false
}

// Branch labels an edge leaving a condition node. Edges from every other node
// kind carry BranchNone.
type Branch string

const (
	BranchNone  Branch = ""
	BranchTrue  Branch = "true"
	BranchFalse Branch = "false"
)

// Payload carries a node's kind-specific configuration. The compiler treats
// payloads as opaque: ConfigMap is what gets copied verbatim into an emitted
// instruction, with no keys injected or stripped.
type Payload interface {
	Kind() NodeKind
	// ConfigMap renders the payload as the wire-format config map. The
	// returned map is a fresh copy on every call.
	ConfigMap() map[string]any
	clone() Payload
}

// TriggerPayload describes what starts the workflow. It never becomes an
// instruction; compilation extracts it into the trigger descriptor.
type TriggerPayload struct {
	TriggerType string
	Config      map[string]any
}

func (p TriggerPayload) Kind() NodeKind { return KindTrigger }

func (p TriggerPayload) ConfigMap() map[string]any { return cloneConfig(p.Config) }

func (p TriggerPayload) clone() Payload {
	p.Config = cloneConfig(p.Config)
	return p
}

// ActionPayload holds an action step's type tag plus its opaque configuration.
type ActionPayload struct {
	ActionType string
	Config     map[string]any
}

func (p ActionPayload) Kind() NodeKind { return KindAction }

func (p ActionPayload) ConfigMap() map[string]any { return cloneConfig(p.Config) }

func (p ActionPayload) clone() Payload {
	p.Config = cloneConfig(p.Config)
	return p
}

// ConditionPayload holds the comparison a condition node evaluates.
type ConditionPayload struct {
	Field    string
	Operator string
	Value    any
}

func (p ConditionPayload) Kind() NodeKind { return KindCondition }

func (p ConditionPayload) ConfigMap() map[string]any {
	return map[string]any{
		"field":    p.Field,
		"operator": p.Operator,
		"value":    p.Value,
	}
}

func (p ConditionPayload) clone() Payload { return p }

// ConditionPayloadFromConfig rebuilds a condition payload from its wire-format
// config map. Missing keys yield zero values rather than errors.
func ConditionPayloadFromConfig(config map[string]any) ConditionPayload {
	return ConditionPayload{
		Field:    stringValue(config["field"]),
		Operator: stringValue(config["operator"]),
		Value:    config["value"],
	}
}

// DelayPayload pauses execution for a fixed amount of a named unit.
type DelayPayload struct {
	Amount int
	Unit   string
}

func (p DelayPayload) Kind() NodeKind { return KindDelay }

func (p DelayPayload) ConfigMap() map[string]any {
	return map[string]any{
		"amount": p.Amount,
		"unit":   p.Unit,
	}
}

func (p DelayPayload) clone() Payload { return p }

// DelayPayloadFromConfig rebuilds a delay payload from its wire-format config
// map, tolerating the numeric widenings JSON and YAML decoding introduce.
func DelayPayloadFromConfig(config map[string]any) DelayPayload {
	return DelayPayload{
		Amount: intValue(config["amount"]),
		Unit:   stringValue(config["unit"]),
	}
}

func cloneConfig(config map[string]any) map[string]any {
	if len(config) == 0 {
		return nil
	}
	out := make(map[string]any, len(config))
	for key, value := range config {
		out[key] = value
	}
	return out
}

func stringValue(v any) string {
	s, _ := v.(string)
	return s
}

func intValue(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	case uint64:
		return int(n)
	}
	return 0
}
