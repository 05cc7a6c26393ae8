// Package nodelink renders blueprint graphs as node-link diagrams.
//
// # Usage
//
// Convert a graph to DOT, then render to SVG:
//
//	dot := nodelink.ToDOT(g, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// # Options
//
//   - Report: colour nodes by the result they got in that pass
//     (executed, failed, tainted or stuck)
//   - Cycles: outline cycle members and draw links between them in red
//   - Detailed: list pins with their kinds and current values in each label
//
// # DOT Format
//
// The generated DOT uses left-to-right layout (rankdir=LR), the way blueprint
// editors draw data flowing from sources to sinks. Each arrow goes from the
// node owning the output pin to the node owning the input pin and is labelled
// "out → in" with the pin names.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering; no Graphviz installation is needed.
package nodelink
