package transform

import (
	"cmp"
	"slices"

	"github.com/matzehuels/blueprint/pkg/graph"
)

// FindCycles returns the cycles reachable by a depth-first traversal of v.
// Each cycle lists its member nodes ordered by descending indegree; ties
// keep traversal order.
func FindCycles(v graph.View) [][]graph.NodeID {
	deps := graph.Analyze(v)

	visited := make(map[graph.NodeID]bool)
	onStack := make(map[graph.NodeID]int)
	var stack []graph.NodeID
	var cycles [][]graph.NodeID

	var visit func(n graph.NodeID)
	visit = func(n graph.NodeID) {
		visited[n] = true
		onStack[n] = len(stack)
		stack = append(stack, n)

		for _, s := range deps.Successors(n) {
			if i, ok := onStack[s]; ok {
				cycles = append(cycles, slices.Clone(stack[i:]))
				continue
			}
			if !visited[s] {
				visit(s)
			}
		}

		stack = stack[:len(stack)-1]
		delete(onStack, n)
	}

	for _, n := range deps.Nodes() {
		if !visited[n] {
			visit(n)
		}
	}

	for _, c := range cycles {
		slices.SortStableFunc(c, func(a, b graph.NodeID) int {
			return cmp.Compare(deps.InDegree(b), deps.InDegree(a))
		})
	}
	return cycles
}

// Members returns the set of nodes that appear in any of the cycles.
func Members(cycles [][]graph.NodeID) map[graph.NodeID]bool {
	set := make(map[graph.NodeID]bool)
	for _, c := range cycles {
		for _, n := range c {
			set[n] = true
		}
	}
	return set
}

// BreakCycles removes back-links from g until it is acyclic and returns the
// IDs of the removed links.
func BreakCycles(g *graph.Graph) []graph.LinkID {
	const (
		white = iota
		gray
		black
	)

	snap := g.Snapshot()
	deps := graph.Analyze(snap)

	type edge struct {
		link  graph.LinkID
		child graph.NodeID
	}
	outgoing := make(map[graph.NodeID][]edge)
	for _, l := range snap.Links() {
		src, ok := snap.FindPin(l.From)
		if !ok {
			continue
		}
		dst, ok := snap.FindPin(l.To)
		if !ok {
			continue
		}
		outgoing[src.Node] = append(outgoing[src.Node], edge{l.ID, dst.Node})
	}

	color := make(map[graph.NodeID]int)
	var backLinks []graph.LinkID

	var dfs func(n graph.NodeID)
	dfs = func(n graph.NodeID) {
		color[n] = gray
		for _, e := range outgoing[n] {
			switch color[e.child] {
			case white:
				dfs(e.child)
			case gray:
				backLinks = append(backLinks, e.link)
			}
		}
		color[n] = black
	}

	for _, n := range deps.Sources() {
		if color[n] == white {
			dfs(n)
		}
	}
	for _, n := range deps.Nodes() {
		if color[n] == white {
			dfs(n)
		}
	}

	removed := backLinks[:0]
	for _, id := range backLinks {
		if g.RemoveLink(id) == nil {
			removed = append(removed, id)
		}
	}
	return removed
}
