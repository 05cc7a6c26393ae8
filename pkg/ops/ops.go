// Package ops provides the builtin node operations.
//
// Operations are grouped by category and installed into an explicit
// registry with [Register]:
//
//	reg := graph.NewRegistry()
//	if err := ops.Register(reg); err != nil {
//	    return err
//	}
//	n, _ := reg.New(graph.TypeTag{Category: "math", Name: "add"})
//
// The set is deliberately small: it covers every value path the engine has
// (constants, arithmetic, text, opaque image buffers) plus debug nodes that
// fail or panic on purpose.
package ops

import (
	"github.com/matzehuels/blueprint/pkg/errors"
	"github.com/matzehuels/blueprint/pkg/graph"
	"github.com/matzehuels/blueprint/pkg/value"
)

// Category names.
const (
	CategoryConstant = "constant"
	CategoryMath     = "math"
	CategoryText     = "text"
	CategoryImage    = "image"
	CategoryDebug    = "debug"
)

type entry struct {
	tag     graph.TypeTag
	factory graph.Factory
}

func builtins() []entry {
	var all []entry
	all = append(all, constants()...)
	all = append(all, arithmetic()...)
	all = append(all, texts()...)
	all = append(all, images()...)
	all = append(all, debugs()...)
	return all
}

// Register installs every builtin operation into reg.
func Register(reg *graph.Registry) error {
	for _, e := range builtins() {
		if err := reg.Register(e.tag, e.factory); err != nil {
			return err
		}
	}
	return nil
}

// NewRegistry returns a registry holding the builtin operations.
func NewRegistry() *graph.Registry {
	reg := graph.NewRegistry()
	if err := Register(reg); err != nil {
		panic(err) // builtin tags are static and unique
	}
	return reg
}

func tag(category, name string) graph.TypeTag {
	return graph.TypeTag{Category: category, Name: name}
}

func pins(ps ...*graph.Pin) []*graph.Pin { return ps }

// input resolves the named input pin of n as T.
func input[T value.Value](v graph.View, n *graph.Node, name string) (T, error) {
	p := n.Input(name)
	if p == nil {
		var zero T
		return zero, errors.New(errors.ErrCodeNode, "missing input %q", name).WithSource(int64(n.ID))
	}
	return graph.Input[T](v, p)
}

// output writes val to the named output pin of n.
func output[T value.Value](n *graph.Node, name string, val T) graph.Result {
	p := n.Output(name)
	if p == nil {
		return graph.NodeError(n.ID, "missing output %q", name)
	}
	return graph.FromError(n.ID, graph.Set(p, val))
}
