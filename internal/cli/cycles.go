package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/blueprint/pkg/graph"
	"github.com/matzehuels/blueprint/pkg/graph/transform"
	bpio "github.com/matzehuels/blueprint/pkg/io"
)

// cyclesCommand reports dependency cycles and optionally removes them.
func (c *CLI) cyclesCommand() *cobra.Command {
	var (
		breakCycles bool
		output      string
	)

	cmd := &cobra.Command{
		Use:   "cycles [graph.json]",
		Short: "Find dependency cycles in a graph",
		Long: `Find dependency cycles in a graph.

Nodes on a cycle never run. With --break, back-links are removed until the
graph is acyclic and the result is written to --output (default: overwrite
the input file).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := c.loadGraph(args[0])
			if err != nil {
				return err
			}

			cycles := transform.FindCycles(g)
			if len(cycles) == 0 {
				printSuccess("No cycles")
				return nil
			}
			printWarning("%d cycle(s)", len(cycles))
			for i, cyc := range cycles {
				printDetail("%d: %s", i+1, cycleString(g, cyc))
			}
			if !breakCycles {
				printNextStep("Remove them", "blueprint cycles --break "+args[0])
				return nil
			}

			removed := transform.BreakCycles(g)
			dst := output
			if dst == "" {
				dst = args[0]
			}
			if err := bpio.ExportJSON(g, dst); err != nil {
				return err
			}
			printSuccess("Removed %d link(s)", len(removed))
			for _, id := range removed {
				printDetail("link #%d", id)
			}
			printFile(dst)
			return nil
		},
	}

	cmd.Flags().BoolVar(&breakCycles, "break", false, "remove back-links to make the graph acyclic")
	cmd.Flags().StringVarP(&output, "output", "o", "", "where to write the repaired graph")
	return cmd
}

// cycleString renders a cycle as "a → b → a".
func cycleString(v graph.View, ids []graph.NodeID) string {
	names := make([]string, 0, len(ids)+1)
	for _, id := range ids {
		names = append(names, nodeLabel(v, id))
	}
	if len(ids) > 0 {
		names = append(names, nodeLabel(v, ids[0]))
	}
	return strings.Join(names, " "+iconArrow+" ")
}

func nodeLabel(v graph.View, id graph.NodeID) string {
	if n, ok := v.FindNode(id); ok && n.Name != "" {
		return n.Name
	}
	return fmt.Sprintf("#%d", id)
}
