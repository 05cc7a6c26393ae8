package graph

import (
	"maps"
	"slices"

	"github.com/matzehuels/blueprint/pkg/errors"
	"github.com/matzehuels/blueprint/pkg/value"
)

// LinkID identifies a link within its graph.
type LinkID int64

// Link connects an output pin (From) to an input pin (To).
type Link struct {
	ID   LinkID `json:"id"`
	From PinID  `json:"from"`
	To   PinID  `json:"to"`
}

// View is read access to a graph topology. Both [*Graph] and [*Snapshot]
// implement it. Lookups report absence with a boolean instead of an error.
type View interface {
	Nodes() []*Node
	Links() []Link
	FindNode(id NodeID) (*Node, bool)
	FindPin(id PinID) (*Pin, bool)
	FindLink(id LinkID) (Link, bool)
	IsPinLinked(id PinID) bool
	PinLinks(id PinID) []Link
}

// topology holds the collections shared by Graph and Snapshot. It performs
// no locking.
type topology struct {
	nodes     []*Node
	links     []Link
	nodeIndex map[NodeID]*Node
	pinIndex  map[PinID]*Pin
	linkIndex map[LinkID]Link
}

func newTopology() topology {
	return topology{
		nodeIndex: make(map[NodeID]*Node),
		pinIndex:  make(map[PinID]*Pin),
		linkIndex: make(map[LinkID]Link),
	}
}

func (t *topology) clone() topology {
	return topology{
		nodes:     slices.Clone(t.nodes),
		links:     slices.Clone(t.links),
		nodeIndex: maps.Clone(t.nodeIndex),
		pinIndex:  maps.Clone(t.pinIndex),
		linkIndex: maps.Clone(t.linkIndex),
	}
}

// Nodes returns the nodes in insertion order.
func (t *topology) Nodes() []*Node { return slices.Clone(t.nodes) }

// Links returns the links in insertion order.
func (t *topology) Links() []Link { return slices.Clone(t.links) }

// FindNode looks up a node by ID.
func (t *topology) FindNode(id NodeID) (*Node, bool) {
	n, ok := t.nodeIndex[id]
	return n, ok
}

// FindPin looks up a pin by ID.
func (t *topology) FindPin(id PinID) (*Pin, bool) {
	p, ok := t.pinIndex[id]
	return p, ok
}

// FindLink looks up a link by ID.
func (t *topology) FindLink(id LinkID) (Link, bool) {
	l, ok := t.linkIndex[id]
	return l, ok
}

// IsPinLinked reports whether any link has the pin as an endpoint.
func (t *topology) IsPinLinked(id PinID) bool {
	return slices.ContainsFunc(t.links, func(l Link) bool { return l.From == id || l.To == id })
}

// PinLinks returns every link touching the pin. An output pin may fan out to
// many links; an input pin has at most one.
func (t *topology) PinLinks(id PinID) []Link {
	var out []Link
	for _, l := range t.links {
		if l.From == id || l.To == id {
			out = append(out, l)
		}
	}
	return out
}

func (t *topology) used(id int64) bool {
	if _, ok := t.nodeIndex[NodeID(id)]; ok {
		return true
	}
	if _, ok := t.pinIndex[PinID(id)]; ok {
		return true
	}
	_, ok := t.linkIndex[LinkID(id)]
	return ok
}

// Resolve returns the value an input pin sees: the value of the linked
// upstream output, or the pin's own default when unlinked. Output pins
// resolve to their own value.
//
// A link whose source pin is missing yields LINK_ERROR; a valueless source
// yields PIN_ERROR.
func Resolve(v View, p *Pin) (value.Value, error) {
	src := p
	if p.Role == RoleInput {
		if links := v.PinLinks(p.ID); len(links) > 0 {
			l := links[0]
			up, ok := v.FindPin(l.From)
			if !ok {
				return nil, errors.New(errors.ErrCodeLink, "link %d: source pin %d not found", l.ID, l.From).
					WithSource(int64(l.ID))
			}
			src = up
		}
	}
	val := src.Value()
	if val == nil {
		return nil, errors.New(errors.ErrCodePin, "pin %q has no value", src.Name).WithSource(int64(src.ID))
	}
	return val, nil
}

// Input resolves p through the view (see [Resolve]) and returns the value as T.
func Input[T value.Value](v View, p *Pin) (T, error) {
	var zero T
	k, ok := kindOf[T]()
	if !ok || k != p.Kind {
		return zero, mismatch(p, k)
	}
	val, err := Resolve(v, p)
	if err != nil {
		return zero, err
	}
	t, ok := val.(T)
	if !ok {
		return zero, mismatch(p, val.Kind())
	}
	return t, nil
}
