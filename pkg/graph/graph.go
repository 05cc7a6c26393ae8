package graph

import (
	"slices"
	"sync"

	"github.com/matzehuels/blueprint/pkg/errors"
)

// Graph owns nodes and links in insertion order.
//
// Every link resolves to pins on nodes currently in the graph: removing a
// node removes its links. The zero value is not usable; create graphs with
// [New]. Graph is safe for concurrent use.
type Graph struct {
	mu     sync.RWMutex
	topo   topology
	nextID int64
	events *Events
}

// Option configures a Graph.
type Option func(*Graph)

// WithEventCapacity sets the size of the value-change event queue.
func WithEventCapacity(n int) Option {
	return func(g *Graph) { g.events = NewEvents(n) }
}

// New creates an empty graph.
func New(opts ...Option) *Graph {
	g := &Graph{topo: newTopology()}
	for _, opt := range opts {
		opt(g)
	}
	if g.events == nil {
		g.events = NewEvents(DefaultEventCapacity)
	}
	return g
}

// Events returns the graph's value-change queue.
func (g *Graph) Events() *Events { return g.events }

// AddNode adds n to the graph. Zero node and pin IDs are assigned from the
// graph-wide counter; preset IDs (as restored by persistence) are kept after
// checking that no node, pin or link already uses them. The node is then
// built.
func (g *Graph) AddNode(n *Node) error {
	if n == nil {
		return errors.New(errors.ErrCodeInvalidInput, "nil node")
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.checkNode(n); err != nil {
		return err
	}
	if n.ID == 0 {
		n.ID = NodeID(g.allocate())
	}
	for _, p := range n.Pins() {
		if p.ID == 0 {
			p.ID = PinID(g.allocate())
		}
	}
	n.Build(g.events.push)

	g.topo.nodes = append(g.topo.nodes, n)
	g.topo.nodeIndex[n.ID] = n
	for _, p := range n.Pins() {
		g.topo.pinIndex[p.ID] = p
	}
	return nil
}

func (g *Graph) checkNode(n *Node) error {
	seen := make(map[int64]bool)
	claim := func(id int64) error {
		if id == 0 {
			return nil
		}
		if seen[id] || g.topo.used(id) {
			return errors.New(errors.ErrCodeDuplicateID, "id %d already in use", id).WithSource(id)
		}
		seen[id] = true
		g.reserve(id)
		return nil
	}

	if err := claim(int64(n.ID)); err != nil {
		return err
	}
	for _, p := range n.Pins() {
		if p == nil {
			return errors.New(errors.ErrCodeInvalidInput, "node %q: nil pin", n.Name)
		}
		if !p.Kind.Valid() {
			return errors.New(errors.ErrCodeInvalidInput, "pin %q: invalid kind %s", p.Name, p.Kind)
		}
		if err := claim(int64(p.ID)); err != nil {
			return err
		}
	}
	return nil
}

// allocate returns the next unused ID.
func (g *Graph) allocate() int64 {
	for {
		g.nextID++
		if !g.topo.used(g.nextID) {
			return g.nextID
		}
	}
}

// Reserve keeps the ID counter at or above id, so that later automatic IDs
// never collide with preset IDs that will be added afterwards.
func (g *Graph) Reserve(id int64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.reserve(id)
}

func (g *Graph) reserve(id int64) {
	if id > g.nextID {
		g.nextID = id
	}
}

// AddLink connects an output pin to an input pin and returns the new link ID.
func (g *Graph) AddLink(from, to PinID) (LinkID, error) {
	return g.AddLinkWithID(0, from, to)
}

// AddLinkWithID is AddLink with a preset ID; zero assigns one.
//
// The source must be an output and the target an input of the same kind, and
// the target must not already be linked.
func (g *Graph) AddLinkWithID(id LinkID, from, to PinID) (LinkID, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	src, ok := g.topo.FindPin(from)
	if !ok {
		return 0, errors.New(errors.ErrCodeNotFound, "source pin %d not found", from).WithSource(int64(from))
	}
	dst, ok := g.topo.FindPin(to)
	if !ok {
		return 0, errors.New(errors.ErrCodeNotFound, "target pin %d not found", to).WithSource(int64(to))
	}
	if src.Role != RoleOutput {
		return 0, errors.New(errors.ErrCodeInvalidLink, "source pin %q is not an output", src.Name).WithSource(int64(from))
	}
	if dst.Role != RoleInput {
		return 0, errors.New(errors.ErrCodeInvalidLink, "target pin %q is not an input", dst.Name).WithSource(int64(to))
	}
	if src.Kind != dst.Kind {
		return 0, errors.New(errors.ErrCodeTypeMismatch, "cannot link %s pin %q to %s pin %q",
			src.Kind, src.Name, dst.Kind, dst.Name).WithSource(int64(to))
	}
	if len(g.topo.PinLinks(to)) > 0 {
		return 0, errors.New(errors.ErrCodeInvalidLink, "input pin %q is already linked", dst.Name).WithSource(int64(to))
	}

	if id == 0 {
		id = LinkID(g.allocate())
	} else if g.topo.used(int64(id)) {
		return 0, errors.New(errors.ErrCodeDuplicateID, "id %d already in use", id).WithSource(int64(id))
	} else {
		g.reserve(int64(id))
	}

	l := Link{ID: id, From: from, To: to}
	g.topo.links = append(g.topo.links, l)
	g.topo.linkIndex[id] = l
	return id, nil
}

// RemoveLink deletes a link.
func (g *Graph) RemoveLink(id LinkID) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.topo.linkIndex[id]; !ok {
		return errors.New(errors.ErrCodeNotFound, "link %d not found", id).WithSource(int64(id))
	}
	g.topo.links = slices.DeleteFunc(g.topo.links, func(l Link) bool { return l.ID == id })
	delete(g.topo.linkIndex, id)
	return nil
}

// RemoveNode deletes a node and every link touching its pins. It returns the
// IDs of the removed links.
func (g *Graph) RemoveNode(id NodeID) ([]LinkID, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	n, ok := g.topo.nodeIndex[id]
	if !ok {
		return nil, errors.New(errors.ErrCodeNotFound, "node %d not found", id).WithSource(int64(id))
	}

	pins := make(map[PinID]bool)
	for _, p := range n.Pins() {
		pins[p.ID] = true
		delete(g.topo.pinIndex, p.ID)
	}

	var removed []LinkID
	g.topo.links = slices.DeleteFunc(g.topo.links, func(l Link) bool {
		if pins[l.From] || pins[l.To] {
			removed = append(removed, l.ID)
			delete(g.topo.linkIndex, l.ID)
			return true
		}
		return false
	})

	g.topo.nodes = slices.DeleteFunc(g.topo.nodes, func(m *Node) bool { return m.ID == id })
	delete(g.topo.nodeIndex, id)
	return removed, nil
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.topo.nodes)
}

// LinkCount returns the number of links.
func (g *Graph) LinkCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.topo.links)
}

// Nodes returns the nodes in insertion order.
func (g *Graph) Nodes() []*Node {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.topo.Nodes()
}

// Links returns the links in insertion order.
func (g *Graph) Links() []Link {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.topo.Links()
}

// FindNode looks up a node by ID.
func (g *Graph) FindNode(id NodeID) (*Node, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.topo.FindNode(id)
}

// FindPin looks up a pin by ID.
func (g *Graph) FindPin(id PinID) (*Pin, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.topo.FindPin(id)
}

// FindLink looks up a link by ID.
func (g *Graph) FindLink(id LinkID) (Link, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.topo.FindLink(id)
}

// IsPinLinked reports whether any link has the pin as an endpoint.
func (g *Graph) IsPinLinked(id PinID) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.topo.IsPinLinked(id)
}

// PinLinks returns every link touching the pin.
func (g *Graph) PinLinks(id PinID) []Link {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.topo.PinLinks(id)
}

// Snapshot copies the current topology. Nodes and pins are shared with the
// graph; later additions and removals are not visible in the snapshot.
func (g *Graph) Snapshot() *Snapshot {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return &Snapshot{topology: g.topo.clone()}
}

// Snapshot is an immutable copy of a graph's topology.
type Snapshot struct {
	topology
}

// Len returns the number of nodes in the snapshot.
func (s *Snapshot) Len() int { return len(s.nodes) }

var (
	_ View = (*Graph)(nil)
	_ View = (*Snapshot)(nil)
)
