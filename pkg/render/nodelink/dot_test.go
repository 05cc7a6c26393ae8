package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/matzehuels/blueprint/pkg/engine"
	"github.com/matzehuels/blueprint/pkg/graph"
	"github.com/matzehuels/blueprint/pkg/graph/transform"
	"github.com/matzehuels/blueprint/pkg/value"
)

func relay(name string) *graph.Node {
	return graph.NewNode(graph.TypeTag{Category: "test", Name: "relay"}, name,
		[]*graph.Pin{graph.NewInput("in", value.KindInt, value.Int(1))},
		[]*graph.Pin{graph.NewOutput("out", value.KindInt)},
		nil)
}

func chain(t *testing.T, names ...string) (*graph.Graph, []*graph.Node) {
	t.Helper()
	g := graph.New()
	var nodes []*graph.Node
	for _, name := range names {
		n := relay(name)
		if err := g.AddNode(n); err != nil {
			t.Fatal(err)
		}
		if len(nodes) > 0 {
			prev := nodes[len(nodes)-1]
			if _, err := g.AddLink(prev.Output("out").ID, n.Input("in").ID); err != nil {
				t.Fatal(err)
			}
		}
		nodes = append(nodes, n)
	}
	return g, nodes
}

func TestToDOT(t *testing.T) {
	g, nodes := chain(t, "a", "b")
	dot := ToDOT(g, Options{})

	for _, want := range []string{
		"digraph G {",
		"rankdir=LR;",
		`n1 [label="a\ntest/relay #1", fillcolor=white];`,
		"n1 -> n4",
		`label="out → in"`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q:\n%s", want, dot)
		}
	}
	if nodes[1].ID != 4 {
		t.Fatalf("unexpected IDs: %d", nodes[1].ID)
	}
}

func TestToDOTReportColours(t *testing.T) {
	g, nodes := chain(t, "a", "b", "c")
	rep := &engine.Report{
		Executed: []graph.NodeID{nodes[0].ID},
		Failed:   []graph.NodeID{nodes[1].ID},
		Tainted:  []graph.NodeID{nodes[2].ID},
	}
	dot := ToDOT(g, Options{Report: rep})

	for id, colour := range map[graph.NodeID]string{
		nodes[0].ID: ColorExecuted,
		nodes[1].ID: ColorFailed,
		nodes[2].ID: ColorTainted,
	} {
		line := lineFor(dot, id)
		if !strings.Contains(line, "fillcolor="+colour) {
			t.Errorf("node %d: %q, want fillcolor=%s", id, line, colour)
		}
	}
}

func TestToDOTCycles(t *testing.T) {
	g, nodes := chain(t, "a", "b")
	// b.out -> a.in closes the loop; a's input is free since a heads the chain.
	if _, err := g.AddLink(nodes[1].Output("out").ID, nodes[0].Input("in").ID); err != nil {
		t.Fatal(err)
	}
	dot := ToDOT(g, Options{Cycles: transform.FindCycles(g)})

	if !strings.Contains(lineFor(dot, nodes[0].ID), "color=red") {
		t.Errorf("cycle member not outlined:\n%s", dot)
	}
	if strings.Count(dot, "-> ") != 2 || strings.Count(dot, "color=red]") != 2 {
		t.Errorf("expected both links drawn red:\n%s", dot)
	}
}

func TestToDOTDetailed(t *testing.T) {
	g, nodes := chain(t, "a")
	if err := graph.Set(nodes[0].Output("out"), value.Int(7)); err != nil {
		t.Fatal(err)
	}
	dot := ToDOT(g, Options{Detailed: true})

	for _, want := range []string{`▸ in: int = 1`, `◂ out: int = 7`} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q:\n%s", want, dot)
		}
	}
}

func TestRenderSVG(t *testing.T) {
	g, _ := chain(t, "a", "b")
	svg, err := RenderSVG(context.Background(), ToDOT(g, Options{}))
	if err != nil {
		t.Fatalf("RenderSVG: %v", err)
	}
	if !bytes.Contains(svg, []byte("<svg")) || !bytes.Contains(svg, []byte(`viewBox="0 0 `)) {
		t.Errorf("unexpected SVG: %.200s", svg)
	}

	if _, err := RenderSVG(context.Background(), "digraph {"); err == nil {
		t.Error("expected parse error for truncated DOT")
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="62pt" height="44pt" viewBox="0.00 0.00 62.00 44.00"><g/></svg>`)
	got := string(normalizeViewBox(in))
	want := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 62.00 44.00" width="62" height="44"><g/></svg>`
	if got != want {
		t.Errorf("normalizeViewBox() = %s, want %s", got, want)
	}
}

func lineFor(dot string, id graph.NodeID) string {
	prefix := fmt.Sprintf("  n%d [", id)
	for _, line := range strings.Split(dot, "\n") {
		if strings.HasPrefix(line, prefix) {
			return line
		}
	}
	return ""
}
