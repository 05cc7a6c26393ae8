package cli

import (
	"cmp"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/blueprint/pkg/engine"
)

// watchCommand opens the interactive view of a graph.
func (c *CLI) watchCommand() *cobra.Command {
	var (
		interval time.Duration
		workers  int
	)

	cmd := &cobra.Command{
		Use:   "watch [graph.json]",
		Short: "Run a graph interactively",
		Long: `Run a graph interactively.

The view ticks the execution trigger every frame. Press r to request a pass
and +/- to change the selected node's first number input, which requests a
pass by itself. Nodes show their last result, run count and outputs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runWatch(cmd.Context(), args[0], cmp.Or(interval, c.Config.Engine.TickInterval.Std()), cmp.Or(workers, c.Config.Engine.Workers))
		},
	}

	cmd.Flags().DurationVar(&interval, "tick", 0, "frame interval (default from config, 50ms)")
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "concurrent nodes per step (0 = config, then unbounded)")
	return cmd
}

func (c *CLI) runWatch(ctx context.Context, path string, interval time.Duration, workers int) error {
	g, err := c.loadGraph(path)
	if err != nil {
		return err
	}

	// The TUI owns the terminal; log lines would tear the frame.
	c.SetLogLevel(log.ErrorLevel)
	trigger := engine.NewTrigger(g, engine.NewScheduler(engine.WithWorkers(workers)))
	trigger.RequestExecution()

	model := NewWatchModel(ctx, fmt.Sprintf("blueprint · %s", filepath.Base(path)), g, trigger, interval)
	_, err = tea.NewProgram(model, tea.WithContext(ctx), tea.WithAltScreen()).Run()
	trigger.Wait()
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}

	if last := trigger.LastReport(); last != nil {
		writeReport(os.Stdout, last, g)
	}
	return nil
}
