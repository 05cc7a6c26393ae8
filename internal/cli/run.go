package cli

import (
	"cmp"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/blueprint/pkg/pipeline"
)

// runCommand creates the run command: one pass over a graph file.
func (c *CLI) runCommand() *cobra.Command {
	var (
		formatsStr string
		output     string
		noCache    bool
		quiet      bool
	)
	opts := pipeline.Options{UseCache: true}

	cmd := &cobra.Command{
		Use:   "run [graph.json]",
		Short: "Execute one pass over a graph",
		Long: `Execute one pass over a graph.

Nodes run in parallel steps: a node starts once every node it depends on has
finished. A failing node stops its descendants for this pass; cycle members
never run and are reported as stuck.

The report of the pass is stored in the cache keyed by the graph's content,
so running an unchanged graph again reuses it. Use --refresh to force a new
pass. Optional outputs (--format) are written next to the input file.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Path = args[0]
			opts.Formats = parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(opts.Formats); err != nil {
				return err
			}
			opts.Workers = cmp.Or(opts.Workers, c.Config.Engine.Workers)
			opts.TTL = cmp.Or(opts.TTL, c.Config.Cache.TTL.Std())
			return c.runPass(cmd.Context(), opts, output, noCache, quiet)
		},
	}

	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): dot, svg, json (comma-separated)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().IntVarP(&opts.Workers, "workers", "w", 0, "concurrent nodes per step (0 = config, then unbounded)")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "run a new pass even if a report is cached")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the report cache")
	cmd.Flags().BoolVar(&opts.Detailed, "detailed", false, "show pin values in rendered outputs")
	cmd.Flags().DurationVar(&opts.TTL, "ttl", 0, "report cache lifetime (0 = config)")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "print only the summary line")

	return cmd
}

func (c *CLI) runPass(ctx context.Context, opts pipeline.Options, output string, noCache, quiet bool) error {
	ctx = withLogger(ctx, c.Logger)
	runner, closeRunner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return err
	}
	defer closeRunner()
	opts.UseCache = !noCache

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Running %s...", filepath.Base(opts.Path)))
	spinner.Start()
	prog := newProgress(loggerFromContext(ctx))

	res, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Pass failed")
		return err
	}
	spinner.Stop()
	prog.done(fmt.Sprintf("Ran %s", filepath.Base(opts.Path)))

	if quiet {
		fmt.Println(reportSummary(res.Report))
	} else {
		writeReport(os.Stdout, res.Report, res.Graph)
		printStats(res.Stats.NodeCount, res.Stats.LinkCount, res.CacheInfo.ReportHit)
	}
	if len(res.Cycles) > 0 {
		printWarning("%d cycle(s) detected", len(res.Cycles))
		printNextStep("Inspect them", "blueprint cycles "+opts.Path)
	}

	if len(res.Artifacts) > 0 {
		paths, err := writeArtifacts(res.Artifacts, opts.Formats, opts.Path, output)
		if err != nil {
			return err
		}
		for _, p := range paths {
			printFile(p)
		}
	}

	if res.Report.Cancelled {
		return context.Cause(ctx)
	}
	if !res.Report.OK() {
		return errFailedPass
	}
	return nil
}

// parseFormats splits a comma-separated --format value. An empty value
// means no outputs.
func parseFormats(s string) []string {
	if s == "" {
		return nil
	}
	var formats []string
	for f := range strings.SplitSeq(s, ",") {
		if f = strings.TrimSpace(f); f != "" && !slices.Contains(formats, f) {
			formats = append(formats, f)
		}
	}
	return formats
}

// writeArtifacts writes one file per format. With a single format, output
// is the file name; otherwise it is a base path extended by the format. An
// empty output derives the base from the input file.
func writeArtifacts(artifacts map[string][]byte, formats []string, input, output string) ([]string, error) {
	base := output
	if base == "" || len(formats) > 1 {
		if base == "" {
			base = strings.TrimSuffix(input, filepath.Ext(input))
		} else {
			base = strings.TrimSuffix(base, filepath.Ext(base))
		}
	}

	var paths []string
	for _, f := range formats {
		data, ok := artifacts[f]
		if !ok {
			continue
		}
		path := output
		if output == "" || len(formats) > 1 {
			path = artifactPath(base, f)
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return paths, fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func artifactPath(base, format string) string {
	if format == pipeline.FormatJSON {
		return base + ".report.json"
	}
	return base + "." + format
}
