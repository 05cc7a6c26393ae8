package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/blueprint/pkg/graph"
	"github.com/matzehuels/blueprint/pkg/graph/transform"
	bpio "github.com/matzehuels/blueprint/pkg/io"
	"github.com/matzehuels/blueprint/pkg/pipeline"
)

// inspectCommand prints the structure of a graph file.
func (c *CLI) inspectCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "inspect [graph.json]",
		Short: "Show the nodes, pins and links of a graph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := c.loadGraph(args[0])
			if err != nil {
				return err
			}
			if asJSON {
				return bpio.WriteJSON(g, os.Stdout)
			}
			return writeInspect(os.Stdout, g)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the normalized graph file instead")
	return cmd
}

func writeInspect(w io.Writer, g *graph.Graph) error {
	hash, err := pipeline.GraphHash(g)
	if err != nil {
		return err
	}

	fmt.Fprintln(w, StyleTitle.Render("Graph"), StyleDim.Render(hash[:12]))
	fmt.Fprintln(w, nodeTable(g))

	if links := g.Links(); len(links) > 0 {
		fmt.Fprintln(w, StyleTitle.Render("Links"))
		for _, l := range links {
			fmt.Fprintf(w, "  %s %s %s %s\n",
				StyleDim.Render("#"+strconv.FormatInt(int64(l.ID), 10)),
				pinRef(g, l.From), StyleDim.Render(iconArrow), pinRef(g, l.To))
		}
	}

	if cycles := transform.FindCycles(g); len(cycles) > 0 {
		fmt.Fprintln(w, StyleWarning.Render(fmt.Sprintf("%d cycle(s); members will not run", len(cycles))))
	}
	return nil
}

// nodeTable lists every node with its pins. Input pins show their own
// value, or the upstream pin when linked.
func nodeTable(g *graph.Graph) string {
	var rows [][]string
	for _, n := range g.Nodes() {
		built := "yes"
		if !n.Built() {
			built = "no"
		}
		rows = append(rows, []string{
			strconv.FormatInt(int64(n.ID), 10),
			n.Name,
			n.Type.String(),
			built,
			pinList(g, n.Inputs),
			pinList(g, n.Outputs),
		})
	}
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(styleTableBorder).
		Headers("ID", "Name", "Type", "Built", "Inputs", "Outputs").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return styleTableHeader
			case col == 3 && row < len(rows) && rows[row][3] == "no":
				return StyleError
			case col == 0:
				return StyleDim
			}
			return lipgloss.NewStyle()
		}).
		Render()
}

func pinList(g *graph.Graph, pins []*graph.Pin) string {
	lines := make([]string, 0, len(pins))
	for _, p := range pins {
		line := fmt.Sprintf("%s: %s", p.Name, p.Kind)
		switch links := g.PinLinks(p.ID); {
		case p.Role == graph.RoleInput && len(links) > 0:
			line += " ← " + pinRef(g, links[0].From)
		case p.HasValue():
			line += " = " + p.Value().String()
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// pinRef renders a pin as node.pin.
func pinRef(g graph.View, id graph.PinID) string {
	p, ok := g.FindPin(id)
	if !ok {
		return fmt.Sprintf("pin#%d", id)
	}
	owner := strconv.FormatInt(int64(p.Node), 10)
	if n, ok := g.FindNode(p.Node); ok && n.Name != "" {
		owner = n.Name
	}
	return owner + "." + p.Name
}
