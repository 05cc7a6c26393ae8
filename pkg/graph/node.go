package graph

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/matzehuels/blueprint/pkg/errors"
)

// NodeID identifies a node within its graph.
type NodeID int64

// TypeTag names the operation a node performs. Factories are registered
// under it and persistence stores it.
type TypeTag struct {
	Category string `json:"category"`
	Name     string `json:"name"`
}

// String returns "category/name".
func (t TypeTag) String() string {
	return t.Category + "/" + t.Name
}

// ParseTypeTag parses the "category/name" form produced by String.
func ParseTypeTag(s string) (TypeTag, error) {
	cat, name, ok := strings.Cut(s, "/")
	if !ok {
		return TypeTag{}, errors.New(errors.ErrCodeInvalidInput, "type tag %q: want category/name", s)
	}
	tag := TypeTag{Category: cat, Name: name}
	if err := tag.Validate(); err != nil {
		return TypeTag{}, err
	}
	return tag, nil
}

// Validate checks that both parts are usable names.
func (t TypeTag) Validate() error {
	if err := errors.ValidateName(t.Category); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "category")
	}
	if err := errors.ValidateName(t.Name); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "name")
	}
	return nil
}

// Behavior computes a node's outputs from its inputs. It reads upstream
// values through the view (see [Input]) and writes its own output pins.
type Behavior func(v View, n *Node) Result

// Status is a point-in-time copy of a node's execution bookkeeping. Worker
// is the 1-based slot the node last ran on, bounded by the scheduler's
// worker limit.
type Status struct {
	Result    Result        `json:"result"`
	HasResult bool          `json:"has_result"`
	Running   bool          `json:"running"`
	Worker    int           `json:"worker,omitempty"`
	Start     time.Time     `json:"start,omitzero"`
	End       time.Time     `json:"end,omitzero"`
	Duration  time.Duration `json:"duration"`
	Runs      int           `json:"runs"`
}

// Node is a unit of computation with typed pins and a behavior.
//
// Pins are owned by the node. The node never references its graph.
type Node struct {
	ID       NodeID
	Type     TypeTag
	Name     string
	Inputs   []*Pin
	Outputs  []*Pin
	Behavior Behavior

	built bool

	mu     sync.Mutex
	status Status
}

// NewNode returns an unbuilt node. Add it to a graph to assign IDs and build it.
func NewNode(tag TypeTag, name string, inputs, outputs []*Pin, b Behavior) *Node {
	return &Node{
		Type:     tag,
		Name:     name,
		Inputs:   inputs,
		Outputs:  outputs,
		Behavior: b,
	}
}

// Built reports whether the node has been built and every pin is still wired
// to it. Pins appended after [Graph.AddNode] leave the node unbuilt.
func (n *Node) Built() bool {
	if !n.built {
		return false
	}
	for _, p := range n.Inputs {
		if p.ID == 0 || p.Node != n.ID || p.Role != RoleInput {
			return false
		}
	}
	for _, p := range n.Outputs {
		if p.ID == 0 || p.Node != n.ID || p.Role != RoleOutput {
			return false
		}
	}
	return true
}

// Build wires every pin's back-reference, role and change notifier. It is
// called by [Graph.AddNode] and must run again after the pin lists change.
func (n *Node) Build(notify func(Event)) {
	for _, p := range n.Inputs {
		p.mu.Lock()
		p.Node, p.Role, p.notify = n.ID, RoleInput, notify
		p.mu.Unlock()
	}
	for _, p := range n.Outputs {
		p.mu.Lock()
		p.Node, p.Role, p.notify = n.ID, RoleOutput, notify
		p.mu.Unlock()
	}
	n.built = true
}

// Pins returns inputs followed by outputs.
func (n *Node) Pins() []*Pin {
	pins := make([]*Pin, 0, len(n.Inputs)+len(n.Outputs))
	pins = append(pins, n.Inputs...)
	return append(pins, n.Outputs...)
}

// Input returns the input pin with the given name, or nil.
func (n *Node) Input(name string) *Pin {
	return findByName(n.Inputs, name)
}

// Output returns the output pin with the given name, or nil.
func (n *Node) Output(name string) *Pin {
	return findByName(n.Outputs, name)
}

func findByName(pins []*Pin, name string) *Pin {
	for _, p := range pins {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// Status returns a copy of the node's execution bookkeeping.
func (n *Node) Status() Status {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.status
}

// Begin marks the node as running on the given worker and records the
// start time.
func (n *Node) Begin(worker int) time.Time {
	now := time.Now()
	n.mu.Lock()
	n.status.Running = true
	n.status.Worker = worker
	n.status.Start = now
	n.mu.Unlock()
	return now
}

// Complete stores res as the last result and records end time and duration.
func (n *Node) Complete(res Result) {
	now := time.Now()
	n.mu.Lock()
	n.status.Running = false
	n.status.End = now
	n.status.Duration = now.Sub(n.status.Start)
	n.status.Result = res
	n.status.HasResult = true
	n.status.Runs++
	n.mu.Unlock()
}

func (n *Node) String() string {
	return fmt.Sprintf("%s#%d(%s)", n.Type, n.ID, n.Name)
}
