package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddNodeEnforcesSingleTrigger(t *testing.T) {
	g := New()
	first := NewNode("Form Submitted", TriggerPayload{TriggerType: "form_submitted"})
	require.NoError(t, g.AddNode(first))

	second := NewNode("Contact Created", TriggerPayload{TriggerType: "contact_created"})
	err := g.AddNode(second)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "trigger already present")

	trigger, ok := g.Trigger()
	require.True(t, ok)
	assert.Equal(t, first.ID, trigger.ID)
}

func TestAddNodeRejectsMismatchedPayload(t *testing.T) {
	g := New()
	node := NewNode("Send Email", ActionPayload{ActionType: "send_email"})
	node.Kind = KindDelay
	err := g.AddNode(node)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not match")
}

func TestConnectRejectsBranchOffNonCondition(t *testing.T) {
	g := New()
	a := NewNode("A", ActionPayload{ActionType: "send_email"})
	b := NewNode("B", ActionPayload{ActionType: "send_slack"})
	require.NoError(t, g.AddNode(a))
	require.NoError(t, g.AddNode(b))

	_, err := g.Connect(a.ID, b.ID, BranchTrue)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires a condition source")

	_, err = g.Connect(a.ID, b.ID, BranchNone)
	require.NoError(t, err)
}

func TestConnectReconnectsTaggedBranch(t *testing.T) {
	g := New()
	cond := NewNode("If Status", ConditionPayload{Field: "status", Operator: "equals", Value: "won"})
	y := NewNode("Y", ActionPayload{ActionType: "send_email"})
	z := NewNode("Z", ActionPayload{ActionType: "create_task"})
	require.NoError(t, g.AddNode(cond))
	require.NoError(t, g.AddNode(y))
	require.NoError(t, g.AddNode(z))

	first, err := g.Connect(cond.ID, y.ID, BranchFalse)
	require.NoError(t, err)
	second, err := g.Connect(cond.ID, z.ID, BranchFalse)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID, "reconnect should reuse the edge, not add one")
	assert.Equal(t, 1, g.EdgeCount())
	edge, ok := g.OutgoingEdge(cond.ID, BranchFalse)
	require.True(t, ok)
	assert.Equal(t, z.ID, edge.Target)
}

func TestConnectDeduplicatesUntaggedEdges(t *testing.T) {
	g := New()
	a := NewNode("A", ActionPayload{ActionType: "send_email"})
	b := NewNode("B", ActionPayload{ActionType: "send_slack"})
	require.NoError(t, g.AddNode(a))
	require.NoError(t, g.AddNode(b))

	_, err := g.Connect(a.ID, b.ID, BranchNone)
	require.NoError(t, err)
	_, err = g.Connect(a.ID, b.ID, BranchNone)
	require.NoError(t, err)
	assert.Equal(t, 1, g.EdgeCount())
}

func TestRemoveNodeDropsIncidentEdges(t *testing.T) {
	g := New()
	trigger := NewNode("Trigger", TriggerPayload{TriggerType: "form_submitted"})
	a := NewNode("A", ActionPayload{ActionType: "send_email"})
	b := NewNode("B", ActionPayload{ActionType: "send_slack"})
	for _, node := range []Node{trigger, a, b} {
		require.NoError(t, g.AddNode(node))
	}
	_, err := g.Connect(trigger.ID, a.ID, BranchNone)
	require.NoError(t, err)
	_, err = g.Connect(a.ID, b.ID, BranchNone)
	require.NoError(t, err)

	require.True(t, g.RemoveNode(a.ID))
	assert.Equal(t, 2, g.NodeCount())
	assert.Equal(t, 0, g.EdgeCount(), "both edges touched A and must be gone")
	_, ok := g.Node(a.ID)
	assert.False(t, ok)
}

func TestNodesPreserveDeclarationOrder(t *testing.T) {
	g := New()
	ids := make([]string, 0, 4)
	for _, label := range []string{"one", "two", "three", "four"} {
		node := NewNode(label, ActionPayload{ActionType: "webhook_call"})
		require.NoError(t, g.AddNode(node))
		ids = append(ids, node.ID)
	}
	require.True(t, g.RemoveNode(ids[1]))

	nodes := g.Nodes()
	require.Len(t, nodes, 3)
	assert.Equal(t, ids[0], nodes[0].ID)
	assert.Equal(t, ids[2], nodes[1].ID)
	assert.Equal(t, ids[3], nodes[2].ID)

	// Index stays usable after compaction.
	got, ok := g.Node(ids[3])
	require.True(t, ok)
	assert.Equal(t, "four", got.Label)
}

func TestUpdatePayloadKeepsKind(t *testing.T) {
	g := New()
	node := NewNode("Send Email", ActionPayload{ActionType: "send_email", Config: map[string]any{"to": "a@b.c"}})
	require.NoError(t, g.AddNode(node))

	err := g.UpdatePayload(node.ID, DelayPayload{Amount: 5, Unit: "minutes"})
	require.Error(t, err)

	require.NoError(t, g.UpdatePayload(node.ID, ActionPayload{ActionType: "send_email", Config: map[string]any{"to": "x@y.z"}}))
	updated, ok := g.Node(node.ID)
	require.True(t, ok)
	assert.Equal(t, map[string]any{"to": "x@y.z"}, updated.Payload.ConfigMap())
}

func TestCloneIsolatesPayloads(t *testing.T) {
	g := New()
	node := NewNode("Send Email", ActionPayload{ActionType: "send_email", Config: map[string]any{"to": "a@b.c"}})
	require.NoError(t, g.AddNode(node))

	clone := g.Clone()
	require.NoError(t, clone.UpdatePayload(node.ID, ActionPayload{ActionType: "send_email", Config: map[string]any{"to": "other"}}))

	original, ok := g.Node(node.ID)
	require.True(t, ok)
	assert.Equal(t, "a@b.c", original.Payload.ConfigMap()["to"])
}

func TestPayloadConfigMaps(t *testing.T) {
	condition := ConditionPayload{Field: "deal.stage", Operator: "equals", Value: "won"}
	assert.Equal(t, map[string]any{"field": "deal.stage", "operator": "equals", "value": "won"}, condition.ConfigMap())

	delay := DelayPayloadFromConfig(map[string]any{"amount": float64(15), "unit": "minutes"})
	assert.Equal(t, 15, delay.Amount)
	assert.Equal(t, "minutes", delay.Unit)

	rebuilt := ConditionPayloadFromConfig(condition.ConfigMap())
	assert.Equal(t, condition, rebuilt)
}
