package program

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
trigger_type: form_submitted
trigger_config:
  form_id: signup
steps:
  - step_type: condition
    config:
      field: plan
      operator: equals
      value: pro
    else_goto_step: 2
  - step_type: action
    action_type: send_email
    config:
      to: a@b.c
      subject: welcome
  - step_type: delay
    config:
      amount: 15
      unit: minutes
`

func TestParseRecordYAML(t *testing.T) {
	rec, err := ParseRecord([]byte(sampleYAML))
	require.NoError(t, err)
	assert.Equal(t, "form_submitted", rec.TriggerType)
	assert.Equal(t, map[string]any{"form_id": "signup"}, rec.TriggerConfig)
	require.Len(t, rec.Steps, 3)

	condition := rec.Steps[0]
	assert.Equal(t, StepCondition, condition.Kind)
	require.NotNil(t, condition.ElseGoto)
	assert.Equal(t, 2, *condition.ElseGoto)

	delay := rec.Steps[2]
	assert.Equal(t, StepDelay, delay.Kind)
	assert.Equal(t, 15, delay.Config["amount"])
}

func TestParseRecordJSON(t *testing.T) {
	payload := `{"trigger_type":"contact_created","trigger_config":{},"steps":[{"step_type":"action","action_type":"webhook_call","config":{"url":"https://x","method":"POST"}}]}`
	rec, err := ParseRecord([]byte(payload))
	require.NoError(t, err)
	assert.Equal(t, "contact_created", rec.TriggerType)
	require.Len(t, rec.Steps, 1)
	assert.Equal(t, "webhook_call", rec.Steps[0].ActionType)
}

func TestParseRecordPreservesUnknownStepKind(t *testing.T) {
	payload := `
trigger_type: contact_created
steps:
  - step_type: approval_gate
    config:
      approver: ops
`
	rec, err := ParseRecord([]byte(payload))
	require.NoError(t, err)
	require.Len(t, rec.Steps, 1)
	assert.Equal(t, StepKind("approval_gate"), rec.Steps[0].Kind)
	assert.False(t, rec.Steps[0].Kind.Known())
	assert.Equal(t, "ops", rec.Steps[0].Config["approver"])
}

func TestParseRecordEmptyPayload(t *testing.T) {
	_, err := ParseRecord([]byte("  \n\t"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty")
}

func TestRecordEncodeParseRoundTrip(t *testing.T) {
	goTo := 1
	original := NewRecord(
		TriggerDescriptor{Type: "deal_updated", Config: map[string]any{"pipeline": "sales"}},
		Program{
			{Kind: StepCondition, Config: map[string]any{"field": "stage", "operator": "equals", "value": "won"}, ElseGoto: &goTo},
			{Kind: StepAction, ActionType: "send_email", Config: map[string]any{"to": "x@y.z"}},
		},
	)

	data, err := original.EncodeYAML()
	require.NoError(t, err)
	decoded, err := ParseRecord(data)
	require.NoError(t, err)
	assert.Equal(t, original.TriggerType, decoded.TriggerType)
	assert.Equal(t, original.TriggerConfig, decoded.TriggerConfig)
	assert.True(t, original.Program().ContentEqual(decoded.Program()))

	jsonData, err := original.EncodeJSON()
	require.NoError(t, err)
	assert.Contains(t, string(jsonData), `"else_goto_step": 1`)
}

func TestSaveAndLoadRecordFile(t *testing.T) {
	rec := NewRecord(
		TriggerDescriptor{Type: "form_submitted"},
		Program{{Kind: StepAction, ActionType: "send_slack", Config: map[string]any{"channel": "#ops", "message": "ping"}}},
	)
	path := filepath.Join(t.TempDir(), "workflows", "notify.yaml")
	require.NoError(t, SaveRecordFile(path, rec))

	loaded, err := LoadRecordFile(path)
	require.NoError(t, err)
	assert.Equal(t, "form_submitted", loaded.TriggerType)
	assert.True(t, rec.Program().ContentEqual(loaded.Program()))
}

func TestLoadRecordFileMissing(t *testing.T) {
	_, err := LoadRecordFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestInstructionContentEqualNilVsEmptyConfig(t *testing.T) {
	a := Instruction{Kind: StepAction, ActionType: "send_email"}
	b := Instruction{Kind: StepAction, ActionType: "send_email", Config: map[string]any{}}
	assert.True(t, a.ContentEqual(b))

	c := Instruction{Kind: StepAction, ActionType: "send_email", Config: map[string]any{"to": "x"}}
	assert.False(t, a.ContentEqual(c))
}

func TestProgramCloneIsDeep(t *testing.T) {
	goTo := 0
	prog := Program{{Kind: StepCondition, Config: map[string]any{"field": "x"}, ElseGoto: &goTo}}
	clone := prog.Clone()
	clone[0].Config["field"] = "y"
	*clone[0].ElseGoto = 5

	assert.Equal(t, "x", prog[0].Config["field"])
	assert.Equal(t, 0, *prog[0].ElseGoto)
}

func TestDescriptorIsZero(t *testing.T) {
	assert.True(t, TriggerDescriptor{}.IsZero())
	assert.False(t, TriggerDescriptor{Type: "form_submitted"}.IsZero())
	assert.False(t, TriggerDescriptor{Config: map[string]any{"a": 1}}.IsZero())
}
