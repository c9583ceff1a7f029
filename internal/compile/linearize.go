package compile

import "github.com/weftlabs/weft/internal/graph"

// Order produces a deterministic topological ordering of node IDs using
// Kahn's algorithm. Branch tags are ignored: true and false edges both count
// as ordering dependencies. Ties among simultaneously ready nodes are broken
// by declaration position, so repeated calls on an unchanged graph agree.
//
// Order never fails. When the edge relation contains a cycle, or resolution
// stalls with unsorted nodes remaining, the sort is abandoned and the nodes
// come back in declaration order. An editor graph is malformed mid-edit all
// the time; the compiler has to keep answering anyway.
func Order(nodes []graph.Node, edges []graph.Edge) []string {
	if len(nodes) == 0 {
		return nil
	}
	ids := make([]string, len(nodes))
	exists := make(map[string]bool, len(nodes))
	for i, node := range nodes {
		ids[i] = node.ID
		exists[node.ID] = true
	}
	indegree := make(map[string]int, len(nodes))
	adjacency := make(map[string][]string, len(nodes))
	for _, edge := range edges {
		// Edges referencing unknown nodes are invalid; they must never
		// influence ordering or crash a consumer.
		if !exists[edge.Source] || !exists[edge.Target] {
			continue
		}
		indegree[edge.Target]++
		adjacency[edge.Source] = append(adjacency[edge.Source], edge.Target)
	}
	ordered := make([]string, 0, len(ids))
	emitted := make(map[string]bool, len(ids))
	for len(ordered) < len(ids) {
		next := ""
		for _, id := range ids {
			if emitted[id] || indegree[id] > 0 {
				continue
			}
			next = id
			break
		}
		if next == "" {
			// Cycle or stall: abandon the sort wholesale.
			return append([]string(nil), ids...)
		}
		emitted[next] = true
		ordered = append(ordered, next)
		for _, target := range adjacency[next] {
			indegree[target]--
		}
	}
	return ordered
}
