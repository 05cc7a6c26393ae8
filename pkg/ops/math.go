package ops

import (
	"math"

	"github.com/matzehuels/blueprint/pkg/graph"
	"github.com/matzehuels/blueprint/pkg/value"
)

func arithmetic() []entry {
	return []entry{
		{tag(CategoryMath, "add"), binary(value.KindInt, "sum", func(a, b value.Int) (value.Int, string) {
			return a + b, ""
		})},
		{tag(CategoryMath, "subtract"), binary(value.KindInt, "difference", func(a, b value.Int) (value.Int, string) {
			return a - b, ""
		})},
		{tag(CategoryMath, "add_float"), binary(value.KindFloat, "sum", func(a, b value.Float) (value.Float, string) {
			return a + b, ""
		})},
		{tag(CategoryMath, "multiply"), binary(value.KindFloat, "product", func(a, b value.Float) (value.Float, string) {
			return a * b, ""
		})},
		{tag(CategoryMath, "divide"), binary(value.KindFloat, "quotient", func(a, b value.Float) (value.Float, string) {
			if b == 0 {
				return 0, "division by zero"
			}
			return a / b, ""
		})},
		{tag(CategoryMath, "sqrt"), unary(value.KindFloat, "root", func(x value.Float) (value.Float, string) {
			if x < 0 {
				return 0, "square root of a negative number"
			}
			return value.Float(math.Sqrt(float64(x))), ""
		})},
	}
}

// binary builds a node with inputs "a" and "b" and one output. op returns
// a non-empty message to fail the node.
func binary[T value.Value](kind value.Kind, out string, op func(a, b T) (T, string)) graph.Factory {
	return func() *graph.Node {
		return graph.NewNode(graph.TypeTag{}, "",
			pins(graph.NewInput("a", kind, value.Zero(kind)), graph.NewInput("b", kind, value.Zero(kind))),
			pins(graph.NewOutput(out, kind)),
			func(v graph.View, n *graph.Node) graph.Result {
				a, err := input[T](v, n, "a")
				if err != nil {
					return graph.FromError(n.ID, err)
				}
				b, err := input[T](v, n, "b")
				if err != nil {
					return graph.FromError(n.ID, err)
				}
				r, msg := op(a, b)
				if msg != "" {
					return graph.NodeError(n.ID, "%s", msg)
				}
				return output(n, out, r)
			})
	}
}

func unary[T value.Value](kind value.Kind, out string, op func(x T) (T, string)) graph.Factory {
	return func() *graph.Node {
		return graph.NewNode(graph.TypeTag{}, "",
			pins(graph.NewInput("x", kind, value.Zero(kind))),
			pins(graph.NewOutput(out, kind)),
			func(v graph.View, n *graph.Node) graph.Result {
				x, err := input[T](v, n, "x")
				if err != nil {
					return graph.FromError(n.ID, err)
				}
				r, msg := op(x)
				if msg != "" {
					return graph.NodeError(n.ID, "%s", msg)
				}
				return output(n, out, r)
			})
	}
}
