package ops

import (
	"github.com/matzehuels/blueprint/pkg/graph"
	"github.com/matzehuels/blueprint/pkg/value"
)

func constants() []entry {
	return []entry{
		{tag(CategoryConstant, "int"), constant(value.KindInt, value.Int(0))},
		{tag(CategoryConstant, "float"), constant(value.KindFloat, value.Float(0))},
		{tag(CategoryConstant, "text"), constant(value.KindText, value.Text(""))},
		{tag(CategoryConstant, "bool"), constant(value.KindBool, value.Bool(false))},
		{tag(CategoryConstant, "size"), constant(value.KindSize, value.Size{Width: 64, Height: 64})},
	}
}

// constant publishes the value of its "value" input on "out". The input is
// normally left unlinked and edited in place.
func constant(kind value.Kind, def value.Value) graph.Factory {
	return func() *graph.Node {
		return graph.NewNode(graph.TypeTag{}, "",
			pins(graph.NewInput("value", kind, def)),
			pins(graph.NewOutput("out", kind)),
			func(v graph.View, n *graph.Node) graph.Result {
				val, err := graph.Resolve(v, n.Input("value"))
				if err != nil {
					return graph.FromError(n.ID, err)
				}
				return graph.FromError(n.ID, n.Output("out").Store(val, nil))
			})
	}
}
