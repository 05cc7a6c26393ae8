package ops

import (
	"fmt"
	"strings"

	"github.com/matzehuels/blueprint/pkg/graph"
	"github.com/matzehuels/blueprint/pkg/value"
)

func texts() []entry {
	return []entry{
		{tag(CategoryText, "format"), format},
		{tag(CategoryText, "concat"), concat},
	}
}

// format renders an int through a printf-style pattern.
func format() *graph.Node {
	return graph.NewNode(graph.TypeTag{}, "",
		pins(
			graph.NewInput("pattern", value.KindText, value.Text("%d")),
			graph.NewInput("value", value.KindInt, value.Int(0)),
		),
		pins(graph.NewOutput("text", value.KindText)),
		func(v graph.View, n *graph.Node) graph.Result {
			pattern, err := input[value.Text](v, n, "pattern")
			if err != nil {
				return graph.FromError(n.ID, err)
			}
			x, err := input[value.Int](v, n, "value")
			if err != nil {
				return graph.FromError(n.ID, err)
			}
			s := fmt.Sprintf(string(pattern), int64(x))
			if strings.Contains(s, "%!") {
				return graph.NodeError(n.ID, "invalid pattern %q", pattern)
			}
			return output(n, "text", value.Text(s))
		})
}

func concat() *graph.Node {
	return graph.NewNode(graph.TypeTag{}, "",
		pins(
			graph.NewInput("a", value.KindText, value.Text("")),
			graph.NewInput("b", value.KindText, value.Text("")),
			graph.NewInput("separator", value.KindText, value.Text("")),
		),
		pins(graph.NewOutput("text", value.KindText)),
		func(v graph.View, n *graph.Node) graph.Result {
			var parts [3]value.Text
			for i, name := range []string{"a", "b", "separator"} {
				t, err := input[value.Text](v, n, name)
				if err != nil {
					return graph.FromError(n.ID, err)
				}
				parts[i] = t
			}
			return output(n, "text", parts[0]+parts[2]+parts[1])
		})
}
