// Package graph holds the editable node/edge model a rule author manipulates.
// A Graph is owned by exactly one editing session and mutated only through the
// methods below; declaration order of nodes and edges is preserved because the
// compiler's ordering fallback depends on it.
package graph

import (
	"fmt"

	"github.com/google/uuid"
)

// Position is a 2D canvas coordinate. Presentation only; the compiler never
// reads it.
type Position struct {
	X float64
	Y float64
}

// Node is one typed step in the rule graph.
type Node struct {
	ID       string
	Kind     NodeKind
	Label    string
	Payload  Payload
	Position Position
}

// NewNode mints a node with a fresh unique ID. The kind is taken from the
// payload so the two can never disagree.
func NewNode(label string, payload Payload) Node {
	return Node{
		ID:      uuid.NewString(),
		Kind:    payload.Kind(),
		Label:   label,
		Payload: payload,
	}
}

// Edge is a directed connection between two nodes. Branch is meaningful only
// when the source node is a condition.
type Edge struct {
	ID     string
	Source string
	Target string
	Branch Branch
}

// Graph is the set of nodes and edges for one workflow rule.
type Graph struct {
	nodes []Node
	edges []Edge
	index map[string]int
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{index: map[string]int{}}
}

// AddNode appends a node, enforcing the single-trigger invariant and ID
// uniqueness.
func (g *Graph) AddNode(node Node) error {
	if node.ID == "" {
		return fmt.Errorf("graph: node id is required")
	}
	if !node.Kind.Valid() {
		return fmt.Errorf("graph: node %s has unknown kind %q", node.ID, node.Kind)
	}
	if node.Payload != nil && node.Payload.Kind() != node.Kind {
		return fmt.Errorf("graph: node %s payload kind %s does not match node kind %s", node.ID, node.Payload.Kind(), node.Kind)
	}
	if _, exists := g.index[node.ID]; exists {
		return fmt.Errorf("graph: duplicate node id %s", node.ID)
	}
	if node.Kind == KindTrigger {
		if existing, ok := g.Trigger(); ok {
			return fmt.Errorf("graph: trigger already present (%s)", existing.ID)
		}
	}
	if node.Payload != nil {
		node.Payload = node.Payload.clone()
	}
	g.index[node.ID] = len(g.nodes)
	g.nodes = append(g.nodes, node)
	return nil
}

// RemoveNode deletes the node and every edge referencing it. The removal is
// atomic with respect to the graph invariants: no dangling edge survives.
// Returns false when the id is unknown.
func (g *Graph) RemoveNode(id string) bool {
	pos, ok := g.index[id]
	if !ok {
		return false
	}
	g.nodes = append(g.nodes[:pos], g.nodes[pos+1:]...)
	delete(g.index, id)
	for nodeID, idx := range g.index {
		if idx > pos {
			g.index[nodeID] = idx - 1
		}
	}
	kept := g.edges[:0]
	for _, edge := range g.edges {
		if edge.Source == id || edge.Target == id {
			continue
		}
		kept = append(kept, edge)
	}
	g.edges = kept
	return true
}

// UpdatePayload replaces a node's configuration. The payload kind must match
// the node kind.
func (g *Graph) UpdatePayload(id string, payload Payload) error {
	pos, ok := g.index[id]
	if !ok {
		return fmt.Errorf("graph: unknown node %s", id)
	}
	if payload == nil {
		return fmt.Errorf("graph: node %s payload is required", id)
	}
	if payload.Kind() != g.nodes[pos].Kind {
		return fmt.Errorf("graph: node %s payload kind %s does not match node kind %s", id, payload.Kind(), g.nodes[pos].Kind)
	}
	g.nodes[pos].Payload = payload.clone()
	return nil
}

// UpdateLabel renames a node. Labels are semantically inert.
func (g *Graph) UpdateLabel(id, label string) error {
	pos, ok := g.index[id]
	if !ok {
		return fmt.Errorf("graph: unknown node %s", id)
	}
	g.nodes[pos].Label = label
	return nil
}

// MoveNode records a new canvas position for a node.
func (g *Graph) MoveNode(id string, position Position) error {
	pos, ok := g.index[id]
	if !ok {
		return fmt.Errorf("graph: unknown node %s", id)
	}
	g.nodes[pos].Position = position
	return nil
}

// Connect adds a directed edge. Branch-tagged edges are only legal off
// condition nodes, and a condition keeps at most one outgoing edge per branch
// tag: connecting an already-tagged branch reconnects it to the new target.
func (g *Graph) Connect(source, target string, branch Branch) (Edge, error) {
	srcPos, ok := g.index[source]
	if !ok {
		return Edge{}, fmt.Errorf("graph: unknown source node %s", source)
	}
	if _, ok := g.index[target]; !ok {
		return Edge{}, fmt.Errorf("graph: unknown target node %s", target)
	}
	if branch != BranchNone && g.nodes[srcPos].Kind != KindCondition {
		return Edge{}, fmt.Errorf("graph: branch %q requires a condition source, %s is %s", branch, source, g.nodes[srcPos].Kind)
	}
	if branch != BranchNone {
		for i, edge := range g.edges {
			if edge.Source == source && edge.Branch == branch {
				g.edges[i].Target = target
				return g.edges[i], nil
			}
		}
	} else {
		for _, edge := range g.edges {
			if edge.Source == source && edge.Target == target && edge.Branch == BranchNone {
				return edge, nil
			}
		}
	}
	edge := Edge{
		ID:     uuid.NewString(),
		Source: source,
		Target: target,
		Branch: branch,
	}
	g.edges = append(g.edges, edge)
	return edge, nil
}

// RemoveEdge deletes an edge by id. Returns false when the id is unknown.
func (g *Graph) RemoveEdge(id string) bool {
	for i, edge := range g.edges {
		if edge.ID == id {
			g.edges = append(g.edges[:i], g.edges[i+1:]...)
			return true
		}
	}
	return false
}

// Node retrieves a node by id.
func (g *Graph) Node(id string) (Node, bool) {
	pos, ok := g.index[id]
	if !ok {
		return Node{}, false
	}
	return g.copyNode(g.nodes[pos]), true
}

// Trigger returns the graph's trigger node, if any. At most one exists.
func (g *Graph) Trigger() (Node, bool) {
	for _, node := range g.nodes {
		if node.Kind == KindTrigger {
			return g.copyNode(node), true
		}
	}
	return Node{}, false
}

// Nodes returns the nodes in declaration order.
func (g *Graph) Nodes() []Node {
	if len(g.nodes) == 0 {
		return nil
	}
	out := make([]Node, len(g.nodes))
	for i, node := range g.nodes {
		out[i] = g.copyNode(node)
	}
	return out
}

// Edges returns the edges in declaration order.
func (g *Graph) Edges() []Edge {
	if len(g.edges) == 0 {
		return nil
	}
	out := make([]Edge, len(g.edges))
	copy(out, g.edges)
	return out
}

// OutgoingEdge finds the edge leaving source with the given branch tag.
func (g *Graph) OutgoingEdge(source string, branch Branch) (Edge, bool) {
	for _, edge := range g.edges {
		if edge.Source == source && edge.Branch == branch {
			return edge, true
		}
	}
	return Edge{}, false
}

// NodeCount reports the number of nodes.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount reports the number of edges.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Clone returns a deep copy of the graph.
func (g *Graph) Clone() *Graph {
	clone := New()
	for _, node := range g.nodes {
		copied := g.copyNode(node)
		clone.index[copied.ID] = len(clone.nodes)
		clone.nodes = append(clone.nodes, copied)
	}
	if len(g.edges) > 0 {
		clone.edges = make([]Edge, len(g.edges))
		copy(clone.edges, g.edges)
	}
	return clone
}

func (g *Graph) copyNode(node Node) Node {
	if node.Payload != nil {
		node.Payload = node.Payload.clone()
	}
	return node
}
