package nodelink

import (
	"bytes"
	"cmp"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/blueprint/pkg/engine"
	"github.com/matzehuels/blueprint/pkg/graph"
	"github.com/matzehuels/blueprint/pkg/graph/transform"
)

// Fill colours by pass outcome.
const (
	ColorIdle     = "white"
	ColorExecuted = "palegreen"
	ColorFailed   = "salmon"
	ColorTainted  = "khaki"
	ColorStuck    = "lightgrey"
	ColorCycle    = "red"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Report colours nodes by their outcome in that pass. Nil draws every
	// node idle.
	Report *engine.Report

	// Cycles outlines cycle members, typically from [transform.FindCycles].
	Cycles [][]graph.NodeID

	// Detailed lists pins in node labels.
	Detailed bool
}

// ToDOT converts a graph to Graphviz DOT format.
func ToDOT(v graph.View, opts Options) string {
	outcome := outcomes(opts.Report)
	inCycle := transform.Members(opts.Cycles)

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  edge [fontsize=10];\n")
	buf.WriteString("\n")

	for _, n := range v.Nodes() {
		attrs := []string{
			fmt.Sprintf("label=%q", label(n, opts.Detailed)),
			fmt.Sprintf("fillcolor=%s", cmp.Or(outcome[n.ID], ColorIdle)),
		}
		if inCycle[n.ID] {
			attrs = append(attrs, "color="+ColorCycle, "penwidth=2")
		}
		fmt.Fprintf(&buf, "  n%d [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, l := range v.Links() {
		from, ok1 := v.FindPin(l.From)
		to, ok2 := v.FindPin(l.To)
		if !ok1 || !ok2 {
			continue
		}
		attrs := []string{fmt.Sprintf("label=%q", from.Name+" → "+to.Name)}
		if inCycle[from.Node] && inCycle[to.Node] {
			attrs = append(attrs, "color="+ColorCycle)
		}
		fmt.Fprintf(&buf, "  n%d -> n%d [%s];\n", from.Node, to.Node, strings.Join(attrs, ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func label(n *graph.Node, detailed bool) string {
	head := fmt.Sprintf("%s\n%s #%d", n.Name, n.Type, n.ID)
	if !detailed {
		return head
	}
	lines := []string{head}
	for _, p := range n.Pins() {
		arrow := "▸"
		if p.Role == graph.RoleOutput {
			arrow = "◂"
		}
		val := "-"
		if v := p.Value(); v != nil {
			val = v.String()
		}
		lines = append(lines, fmt.Sprintf("%s %s: %s = %s", arrow, p.Name, p.Kind, val))
	}
	return strings.Join(lines, "\n")
}

func outcomes(rep *engine.Report) map[graph.NodeID]string {
	m := make(map[graph.NodeID]string)
	if rep == nil {
		return m
	}
	for _, id := range rep.Executed {
		m[id] = ColorExecuted
	}
	for _, id := range rep.Tainted {
		m[id] = ColorTainted
	}
	for _, id := range rep.Stuck {
		m[id] = ColorStuck
	}
	for _, id := range rep.Failed {
		m[id] = ColorFailed
	}
	return m
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's pt-sized root element with a
// unitless viewBox so the SVG scales in browsers.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}
	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}
	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}
