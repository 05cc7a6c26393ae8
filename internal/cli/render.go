package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/blueprint/pkg/graph/transform"
	"github.com/matzehuels/blueprint/pkg/pipeline"
	"github.com/matzehuels/blueprint/pkg/render/nodelink"
)

type renderOpts struct {
	format   string // dot or svg
	output   string // output file; empty derives from the input, "-" is stdout
	detailed bool   // show pin values
	noReport bool   // ignore the cached report
}

// renderCommand draws a graph without running it. Nodes are coloured by
// the last cached report for the same graph content, if there is one.
func (c *CLI) renderCommand() *cobra.Command {
	opts := renderOpts{format: pipeline.FormatSVG}

	cmd := &cobra.Command{
		Use:   "render [graph.json]",
		Short: "Draw a graph as DOT or SVG",
		Long: `Draw a graph as DOT or SVG without running it.

When the report cache holds a pass for this exact graph, nodes are coloured
by their outcome: green executed, salmon failed, khaki tainted, grey stuck.
Cycle members are outlined in red.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.format != pipeline.FormatDOT && opts.format != pipeline.FormatSVG {
				return fmt.Errorf("invalid format: %q (must be dot or svg)", opts.format)
			}
			return c.runRender(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: svg (default), dot")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", `output file ("-" for stdout)`)
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show pins and their values")
	cmd.Flags().BoolVar(&opts.noReport, "no-report", false, "do not colour by the cached report")

	return cmd
}

func (c *CLI) runRender(ctx context.Context, input string, opts renderOpts) error {
	g, err := c.loadGraph(input)
	if err != nil {
		return err
	}

	dotOpts := nodelink.Options{Cycles: transform.FindCycles(g), Detailed: opts.detailed}
	if !opts.noReport {
		runner, closeRunner, err := c.newRunner(ctx, false)
		if err != nil {
			return err
		}
		defer closeRunner()

		hash, err := pipeline.GraphHash(g)
		if err != nil {
			return err
		}
		rep, ok, err := runner.LastReport(ctx, hash)
		switch {
		case err != nil:
			c.Logger.Warn("read cached report", "error", err)
		case ok:
			c.Logger.Debug("colouring by cached report", "pass", rep.PassID)
			dotOpts.Report = rep
		}
	}

	dot := nodelink.ToDOT(g, dotOpts)
	data := []byte(dot)
	if opts.format == pipeline.FormatSVG {
		spinner := newSpinnerWithContext(ctx, "Rendering svg...")
		spinner.Start()
		data, err = nodelink.RenderSVG(ctx, dot)
		if err != nil {
			spinner.StopWithError("Render failed")
			return err
		}
		spinner.Stop()
	}

	if opts.output == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	paths, err := writeArtifacts(map[string][]byte{opts.format: data}, []string{opts.format}, input, opts.output)
	if err != nil {
		return err
	}
	printSuccess("Rendered %s", input)
	if dotOpts.Report == nil && !opts.noReport {
		printDetail("no cached report; run the graph to colour its nodes")
	}
	for _, p := range paths {
		printFile(p)
	}
	return nil
}
