package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/blueprint/pkg/buildinfo"
	"github.com/matzehuels/blueprint/pkg/cache"
	"github.com/matzehuels/blueprint/pkg/config"
	"github.com/matzehuels/blueprint/pkg/graph"
	"github.com/matzehuels/blueprint/pkg/history"
	bpio "github.com/matzehuels/blueprint/pkg/io"
	"github.com/matzehuels/blueprint/pkg/ops"
	"github.com/matzehuels/blueprint/pkg/pipeline"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger   *log.Logger
	Config   *config.Config
	Registry *graph.Registry

	configPath string
}

// New creates a CLI with the builtin operations, default settings and a
// logger writing to w.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger:   newLogger(w, level),
		Config:   config.Default(),
		Registry: ops.NewRegistry(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
// Its PersistentPreRunE loads the configuration file before any subcommand.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "blueprint",
		Short: "Blueprint runs dataflow node graphs",
		Long: `Blueprint is a CLI for executing dataflow node graphs: typed nodes
connected by links, run in parallel passes that respect dependencies,
isolate failures and skip cycles.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/blueprint/config.toml)")

	root.AddCommand(c.runCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.cyclesCommand())
	root.AddCommand(c.nodesCommand())
	root.AddCommand(c.reportCommand())
	root.AddCommand(c.historyCommand())
	root.AddCommand(c.watchCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())

	return root
}

func (c *CLI) loadConfig() error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.Config = cfg
	c.SetLogLevel(cfg.LogLevel())
	c.Logger.Debug("config loaded", "path", c.configPath, "cache", cfg.Cache.Backend, "history", cfg.History.Backend)
	return nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner backed by the configured cache and
// history. The returned function releases both.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, func(), error) {
	opts := c.Config.CacheOptions()
	if noCache {
		opts.Backend = cache.BackendNone
	}
	store, err := cache.Open(ctx, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("open cache: %w", err)
	}

	hist, err := history.Open(ctx, c.Config.HistoryOptions())
	if err != nil {
		store.Close()
		return nil, nil, fmt.Errorf("open history: %w", err)
	}

	runner := pipeline.NewRunner(c.Registry, store, nil, c.Logger)
	runner.History = hist

	closeFn := func() {
		if err := store.Close(); err != nil {
			c.Logger.Warn("close cache", "error", err)
		}
		if hist != nil {
			if err := hist.Close(context.WithoutCancel(ctx)); err != nil {
				c.Logger.Warn("close history", "error", err)
			}
		}
	}
	return runner, closeFn, nil
}

// loadGraph reads a graph file using the CLI's registry.
func (c *CLI) loadGraph(path string) (*graph.Graph, error) {
	g, err := bpio.ImportJSON(path, c.Registry)
	if err != nil {
		return nil, fmt.Errorf("load graph: %w", err)
	}
	return g, nil
}

// errFailedPass is returned by commands whose pass finished with failures,
// so the process exits non-zero after the report has been printed.
var errFailedPass = errors.New("pass did not complete cleanly")
