package ops

import (
	"time"

	"github.com/matzehuels/blueprint/pkg/graph"
	"github.com/matzehuels/blueprint/pkg/value"
)

func debugs() []entry {
	return []entry{
		{tag(CategoryDebug, "fail"), fail},
		{tag(CategoryDebug, "panic"), panicking},
		{tag(CategoryDebug, "delay"), delay},
	}
}

// fail always returns a NODE_ERROR carrying its message input.
func fail() *graph.Node {
	return graph.NewNode(graph.TypeTag{}, "",
		pins(graph.NewInput("message", value.KindText, value.Text("failed on purpose"))),
		pins(graph.NewOutput("out", value.KindInt)),
		func(v graph.View, n *graph.Node) graph.Result {
			msg, err := input[value.Text](v, n, "message")
			if err != nil {
				return graph.FromError(n.ID, err)
			}
			return graph.NodeError(n.ID, "%s", msg)
		})
}

func panicking() *graph.Node {
	return graph.NewNode(graph.TypeTag{}, "",
		nil,
		pins(graph.NewOutput("out", value.KindInt)),
		func(graph.View, *graph.Node) graph.Result {
			panic("debug/panic executed")
		})
}

// delay forwards an int after sleeping for "ms" milliseconds.
func delay() *graph.Node {
	return graph.NewNode(graph.TypeTag{}, "",
		pins(
			graph.NewInput("in", value.KindInt, value.Int(0)),
			graph.NewInput("ms", value.KindInt, value.Int(100)),
		),
		pins(graph.NewOutput("out", value.KindInt)),
		func(v graph.View, n *graph.Node) graph.Result {
			x, err := input[value.Int](v, n, "in")
			if err != nil {
				return graph.FromError(n.ID, err)
			}
			ms, err := input[value.Int](v, n, "ms")
			if err != nil {
				return graph.FromError(n.ID, err)
			}
			time.Sleep(time.Duration(ms) * time.Millisecond)
			return output(n, "out", x)
		})
}
