package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// nodesCommand lists the registered node types.
func (c *CLI) nodesCommand() *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "nodes",
		Short: "List available node types",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			current := ""
			for _, tag := range c.Registry.Tags() {
				if category != "" && tag.Category != category {
					continue
				}
				if tag.Category != current {
					current = tag.Category
					fmt.Println(StyleTitle.Render(current))
				}
				n, err := c.Registry.New(tag)
				if err != nil {
					return err
				}
				ins := make([]string, len(n.Inputs))
				for i, p := range n.Inputs {
					ins[i] = fmt.Sprintf("%s %s", p.Name, p.Kind)
				}
				outs := make([]string, len(n.Outputs))
				for i, p := range n.Outputs {
					outs[i] = fmt.Sprintf("%s %s", p.Name, p.Kind)
				}
				fmt.Printf("  %s %s %s %s\n", StyleHighlight.Render(fmt.Sprintf("%-24s", tag)),
					StyleDim.Render("("+strings.Join(ins, ", ")+")"),
					StyleDim.Render(iconArrow),
					StyleValue.Render(strings.Join(outs, ", ")))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "only list this category")
	return cmd
}
