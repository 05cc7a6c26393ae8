package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/blueprint/pkg/engine"
	"github.com/matzehuels/blueprint/pkg/history"
	"github.com/matzehuels/blueprint/pkg/pipeline"
)

// historyCommand reads the pass history.
func (c *CLI) historyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Browse recorded passes",
		Long: `Browse recorded passes.

The memory backend only lives as long as the process (for example during
'blueprint serve'); configure [history] backend = "mongo" to keep passes
across runs.`,
	}

	cmd.AddCommand(c.historyListCommand())
	cmd.AddCommand(c.historyShowCommand())
	return cmd
}

func (c *CLI) historyListCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list [graph.json]",
		Short: "List the newest passes of a graph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := c.loadGraph(args[0])
			if err != nil {
				return err
			}
			hash, err := pipeline.GraphHash(g)
			if err != nil {
				return err
			}
			return c.withHistory(cmd.Context(), func(store history.Store) error {
				reps, err := store.List(cmd.Context(), hash, limit)
				if err != nil {
					return err
				}
				if len(reps) == 0 {
					printInfo("No passes recorded for %s", args[0])
					return nil
				}
				fmt.Println(historyTable(reps))
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum passes to list (0 = all)")
	return cmd
}

func (c *CLI) historyShowCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "show [pass-id]",
		Short: "Show one recorded pass",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateOutput(format); err != nil {
				return err
			}
			return c.withHistory(cmd.Context(), func(store history.Store) error {
				rep, err := store.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return encodeReport(os.Stdout, rep, nil, format)
			})
		},
	}

	cmd.Flags().StringVarP(&format, "output", "o", outputText, "output format: text, json, yaml")
	return cmd
}

// withHistory opens the configured history store for the duration of fn.
func (c *CLI) withHistory(ctx context.Context, fn func(history.Store) error) error {
	opts := c.Config.HistoryOptions()
	if opts.Backend == history.BackendMemory {
		printWarning("history backend is in-memory; nothing survives between commands")
	}
	store, err := history.Open(ctx, opts)
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}
	if store == nil {
		return fmt.Errorf("history is disabled (backend %q)", opts.Backend)
	}
	defer store.Close(context.WithoutCancel(ctx))
	return fn(store)
}

func historyTable(reps []*engine.Report) string {
	rows := make([][]string, len(reps))
	for i, rep := range reps {
		status := outcomeOK
		if !rep.OK() {
			status = "failed"
		}
		rows[i] = []string{
			rep.PassID,
			rep.Start.Local().Format(time.DateTime),
			rep.Duration.Round(time.Microsecond).String(),
			strconv.Itoa(len(rep.Executed)),
			strconv.Itoa(len(rep.Failed) + len(rep.Tainted) + len(rep.Stuck)),
			status,
		}
	}
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(styleTableBorder).
		Headers("Pass", "Started", "Time", "Ran", "Skipped", "Status").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return styleTableHeader
			case col == 5 && row < len(rows):
				return outcomeStyle(rows[row][5])
			case col == 0:
				return StyleDim
			}
			return lipgloss.NewStyle()
		}).
		Render()
}
