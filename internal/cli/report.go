package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/blueprint/pkg/engine"
	"github.com/matzehuels/blueprint/pkg/errors"
	"github.com/matzehuels/blueprint/pkg/graph"
	"github.com/matzehuels/blueprint/pkg/pipeline"
)

// Report output formats.
const (
	outputText = "text"
	outputJSON = "json"
	outputYAML = "yaml"
)

// reportCommand prints the last report for a graph without running it.
func (c *CLI) reportCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "report [graph.json]",
		Short: "Show the last pass report for a graph",
		Long: `Show the last pass report for a graph without running it.

The report is looked up by the graph's content hash, first in the report
cache and then in the pass history. Editing the graph changes its hash.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateOutput(format); err != nil {
				return err
			}
			g, err := c.loadGraph(args[0])
			if err != nil {
				return err
			}
			rep, err := c.lastReport(cmd.Context(), g)
			if err != nil {
				return err
			}
			if rep == nil {
				printInfo("No report for %s", args[0])
				printNextStep("Run it", "blueprint run "+args[0])
				return nil
			}
			return encodeReport(os.Stdout, rep, g, format)
		},
	}

	cmd.Flags().StringVarP(&format, "output", "o", outputText, "output format: text, json, yaml")
	return cmd
}

// lastReport finds the newest report for g's content, or nil.
func (c *CLI) lastReport(ctx context.Context, g *graph.Graph) (*engine.Report, error) {
	runner, closeRunner, err := c.newRunner(ctx, false)
	if err != nil {
		return nil, err
	}
	defer closeRunner()

	hash, err := pipeline.GraphHash(g)
	if err != nil {
		return nil, err
	}
	rep, ok, err := runner.LastReport(ctx, hash)
	if err != nil {
		c.Logger.Warn("read cached report", "error", err)
	}
	if ok {
		return rep, nil
	}
	if runner.History == nil {
		return nil, nil
	}
	reps, err := runner.History.List(ctx, hash, 1)
	if err != nil || len(reps) == 0 {
		return nil, err
	}
	return reps[0], nil
}

func validateOutput(format string) error {
	switch format {
	case outputText, outputJSON, outputYAML:
		return nil
	}
	return errors.New(errors.ErrCodeInvalidInput, "invalid output %q (must be text, json or yaml)", format)
}

// encodeReport writes rep in format. v names skipped nodes in text output
// and may be nil.
func encodeReport(w io.Writer, rep *engine.Report, v graph.View, format string) error {
	switch format {
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	case outputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(rep); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	default:
		writeReport(w, rep, v)
		return nil
	}
}
