package engine

import "github.com/matzehuels/blueprint/pkg/graph"

// taint is the set of nodes excluded from the rest of a pass. It only grows.
type taint struct {
	deps *graph.Dependencies
	set  map[graph.NodeID]bool
}

func newTaint(deps *graph.Dependencies) *taint {
	return &taint{deps: deps, set: make(map[graph.NodeID]bool)}
}

// mark taints id and its successor closure and returns the nodes that were
// not tainted before, id first.
func (t *taint) mark(id graph.NodeID) []graph.NodeID {
	var added []graph.NodeID
	if !t.set[id] {
		t.set[id] = true
		added = append(added, id)
	}
	for _, d := range t.deps.Descendants(id) {
		if !t.set[d] {
			t.set[d] = true
			added = append(added, d)
		}
	}
	return added
}

func (t *taint) has(id graph.NodeID) bool {
	return t.set[id]
}
