package graph

import "slices"

// Dependencies is the predecessor/successor relation between the nodes of a
// view, derived from its links.
type Dependencies struct {
	order map[NodeID]int
	nodes []NodeID
	preds map[NodeID][]NodeID
	succs map[NodeID][]NodeID
	indeg map[NodeID]int
}

// Analyze walks every input pin once, resolving linked output pins back to
// their owner nodes. Links whose source pin is missing contribute nothing;
// the consuming node reports LINK_ERROR when it runs.
func Analyze(v View) *Dependencies {
	nodes := v.Nodes()
	d := &Dependencies{
		order: make(map[NodeID]int, len(nodes)),
		nodes: make([]NodeID, 0, len(nodes)),
		preds: make(map[NodeID][]NodeID, len(nodes)),
		succs: make(map[NodeID][]NodeID, len(nodes)),
		indeg: make(map[NodeID]int, len(nodes)),
	}
	for i, n := range nodes {
		d.order[n.ID] = i
		d.nodes = append(d.nodes, n.ID)
	}

	for _, n := range nodes {
		for _, in := range n.Inputs {
			for _, l := range v.PinLinks(in.ID) {
				if l.To != in.ID {
					continue
				}
				src, ok := v.FindPin(l.From)
				if !ok {
					continue
				}
				if _, ok := d.order[src.Node]; !ok {
					continue
				}
				d.indeg[n.ID]++
				if !slices.Contains(d.preds[n.ID], src.Node) {
					d.preds[n.ID] = append(d.preds[n.ID], src.Node)
				}
				if !slices.Contains(d.succs[src.Node], n.ID) {
					d.succs[src.Node] = append(d.succs[src.Node], n.ID)
				}
			}
		}
	}
	return d
}

// Nodes returns every node ID in insertion order.
func (d *Dependencies) Nodes() []NodeID { return slices.Clone(d.nodes) }

// Predecessors returns the nodes owning an output linked to one of id's inputs.
func (d *Dependencies) Predecessors(id NodeID) []NodeID { return d.preds[id] }

// Successors returns the nodes consuming one of id's outputs.
func (d *Dependencies) Successors(id NodeID) []NodeID { return d.succs[id] }

// InDegree returns the number of links entering id.
func (d *Dependencies) InDegree(id NodeID) int { return d.indeg[id] }

// Sources returns the nodes without predecessors, in insertion order.
func (d *Dependencies) Sources() []NodeID {
	var out []NodeID
	for _, id := range d.nodes {
		if len(d.preds[id]) == 0 {
			out = append(out, id)
		}
	}
	return out
}

// Descendants returns every node reachable from id through successor
// relations, in insertion order. id itself is included only if it lies on a
// cycle.
func (d *Dependencies) Descendants(id NodeID) []NodeID {
	seen := make(map[NodeID]bool)
	stack := slices.Clone(d.succs[id])
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[n] {
			continue
		}
		seen[n] = true
		stack = append(stack, d.succs[n]...)
	}
	return d.sorted(seen)
}

func (d *Dependencies) sorted(set map[NodeID]bool) []NodeID {
	out := make([]NodeID, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	slices.SortFunc(out, func(a, b NodeID) int { return d.order[a] - d.order[b] })
	return out
}
