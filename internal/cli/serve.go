package cli

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/blueprint/internal/server"
	"github.com/matzehuels/blueprint/pkg/engine"
	"github.com/matzehuels/blueprint/pkg/graph"
	"github.com/matzehuels/blueprint/pkg/observability"
	"github.com/matzehuels/blueprint/pkg/observability/prom"
	"github.com/matzehuels/blueprint/pkg/pipeline"
)

// eventPollInterval is how often serve drains pin-change events.
const eventPollInterval = 250 * time.Millisecond

type serveOpts struct {
	addr      string
	tick      time.Duration
	workers   int
	noMetrics bool
}

// serveCommand exposes a graph over the HTTP control API.
func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve [graph.json]",
		Short: "Serve a live graph over HTTP",
		Long: `Serve a live graph over HTTP.

The graph is loaded from the file (or starts empty) and stays in memory.
Clients add nodes, link pins and set values through the API; every change
requests a pass, which the execution trigger starts on its next tick.
Finished passes are recorded in the report cache and the pass history.

Routes: /graph, /graph.svg, /nodes, /pins/{id}, /links, /run, /status,
/report, /cycles, /types, /history, /metrics, /healthz.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g := graph.New()
			if len(args) == 1 {
				var err error
				if g, err = c.loadGraph(args[0]); err != nil {
					return err
				}
			}
			return c.runServe(cmd.Context(), g, opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().DurationVar(&opts.tick, "tick", 0, "trigger tick interval (default from config, 50ms)")
	cmd.Flags().IntVarP(&opts.workers, "workers", "w", 0, "concurrent nodes per step (0 = config, then unbounded)")
	cmd.Flags().BoolVar(&opts.noMetrics, "no-metrics", false, "do not serve /metrics")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, g *graph.Graph, opts serveOpts) error {
	cfg := c.Config
	ctx = withLogger(ctx, c.Logger)

	runner, closeRunner, err := c.newRunner(ctx, false)
	if err != nil {
		return err
	}
	defer closeRunner()

	var serverOpts []server.Option
	if !opts.noMetrics {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		m := prom.New(reg)
		observability.SetSchedulerHooks(m)
		observability.SetCacheHooks(m)
		observability.SetHTTPHooks(m)
		defer observability.Reset()
		serverOpts = append(serverOpts, server.WithMetrics(prom.Handler(reg)))
	}

	sched := engine.NewScheduler(engine.WithWorkers(cmp.Or(opts.workers, cfg.Engine.Workers)), engine.WithLogger(c.Logger))
	trigger := engine.NewTrigger(g, sched,
		engine.WithTriggerLogger(c.Logger),
		engine.OnComplete(c.recordPass(ctx, g, runner)),
	)
	trigger.RequestExecution()

	srv := server.New(g, c.Registry, trigger, append(serverOpts,
		server.WithLogger(c.Logger),
		server.WithHistory(runner.History),
		server.WithBaseContext(ctx),
	)...)

	addr := cmp.Or(opts.addr, cfg.Server.Addr)
	tick := cmp.Or(opts.tick, cfg.Engine.TickInterval.Std())
	printInfo("Serving %d nodes on %s", g.NodeCount(), StyleHighlight.Render(addr))

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error { return trigger.Run(ctx, tick) })
	eg.Go(func() error { return drainEvents(ctx, g, eventPollInterval) })
	eg.Go(func() error {
		return srv.ListenAndServe(ctx, addr, cfg.Server.ShutdownTimeout.Std())
	})

	err = eg.Wait()
	if errors.Is(err, context.Canceled) {
		st := trigger.Stats()
		printSuccess("Stopped after %d passes", st.Passes)
	}
	return err
}

// recordPass stores each finished pass under the graph's current hash.
func (c *CLI) recordPass(ctx context.Context, g *graph.Graph, runner *pipeline.Runner) func(*engine.Report) {
	ttl := c.Config.Cache.TTL.Std()
	return func(rep *engine.Report) {
		hash, err := pipeline.GraphHash(g)
		if err != nil {
			c.Logger.Warn("hash graph", "error", err)
			return
		}
		rep.GraphHash = hash
		runner.Record(context.WithoutCancel(ctx), rep, pipeline.Options{TTL: ttl, Logger: c.Logger})
		lvl := log.InfoLevel
		if !rep.OK() {
			lvl = log.WarnLevel
		}
		c.Logger.Log(lvl, "pass finished", "pass", shortPassID(rep.PassID),
			"executed", len(rep.Executed), "failed", len(rep.Failed), "duration", rep.Duration)
	}
}

// drainEvents empties the pin-change queue until ctx is done.
func drainEvents(ctx context.Context, g *graph.Graph, every time.Duration) error {
	logger := loggerFromContext(ctx)
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	var dropped int64
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
		g.Events().Drain(func(e graph.Event) {
			logger.Debug("pin changed", "node", e.Node, "pin", e.Pin, "value", fmt.Sprint(e.New))
		})
		if d := g.Events().Dropped(); d > dropped {
			logger.Warn("pin events dropped", "count", d-dropped)
			dropped = d
		}
	}
}
