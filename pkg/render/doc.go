// Package render turns blueprint graphs into pictures.
//
// The [nodelink] subpackage draws the graph as a node-link diagram through
// Graphviz: one box per node, one arrow per link, coloured by the outcome of
// the last pass and with cycle members outlined.
//
//	dot := nodelink.ToDOT(g, nodelink.Options{Report: rep})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// [nodelink]: github.com/matzehuels/blueprint/pkg/render/nodelink
package render
