package engine

import (
	"context"
	"fmt"
	"io"
	"runtime/debug"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/blueprint/pkg/errors"
	"github.com/matzehuels/blueprint/pkg/graph"
	"github.com/matzehuels/blueprint/pkg/observability"
)

// Scheduler runs level-by-level passes over a graph. A Scheduler holds no
// per-pass state and may be shared; use a [Trigger] to serialize passes
// against one graph.
type Scheduler struct {
	workers int
	logger  *log.Logger
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithWorkers limits how many nodes of one step run concurrently.
// Zero or less means one goroutine per ready node.
func WithWorkers(n int) Option {
	return func(s *Scheduler) { s.workers = n }
}

// WithLogger sets the logger for pass and node diagnostics.
func WithLogger(l *log.Logger) Option {
	return func(s *Scheduler) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewScheduler creates a scheduler. Without options it runs every ready node
// on its own goroutine and logs nothing.
func NewScheduler(opts ...Option) *Scheduler {
	s := &Scheduler{logger: log.NewWithOptions(io.Discard, log.Options{})}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Workers returns the configured concurrency limit.
func (s *Scheduler) Workers() int { return s.workers }

// Run executes one pass over a snapshot of g.
func (s *Scheduler) Run(ctx context.Context, g *graph.Graph) *Report {
	return s.RunSnapshot(ctx, g.Snapshot())
}

// RunSnapshot executes one pass over snap.
func (s *Scheduler) RunSnapshot(ctx context.Context, snap *graph.Snapshot) *Report {
	nodes := snap.Nodes()
	deps := graph.Analyze(snap)
	rep := &Report{
		PassID: uuid.NewString(),
		Start:  time.Now(),
		Nodes:  len(nodes),
	}
	hooks := observability.Scheduler()
	hooks.OnPassStart(ctx, rep.PassID, len(nodes))
	s.logger.Debug("pass started", "pass", rep.PassID, "nodes", len(nodes), "workers", s.workers)

	executed := make(map[graph.NodeID]bool, len(nodes))
	failed := make(map[graph.NodeID]bool)
	tainted := newTaint(deps)

	taintFrom := func(id graph.NodeID) {
		for _, t := range tainted.mark(id) {
			if !failed[t] {
				rep.Tainted = append(rep.Tainted, t)
			}
		}
	}

	var unbuilt []*graph.Node
	for _, n := range nodes {
		if !n.Built() {
			unbuilt = append(unbuilt, n)
			failed[n.ID] = true
		}
	}
	for _, n := range unbuilt {
		res := graph.Result{
			Code:    errors.ErrCodeNotBuilt,
			Source:  int64(n.ID),
			Message: "node pins are not wired",
		}
		rep.Failed = append(rep.Failed, n.ID)
		rep.Results = append(rep.Results, nodeResult(n, -1, res))
		s.logger.Warn("skipping unbuilt node", "node", n)
		taintFrom(n.ID)
	}

	for iter := 0; ; iter++ {
		if iter > len(nodes) {
			rep.BoundHit = true
			s.logger.Warn("iteration bound hit", "pass", rep.PassID, "steps", iter)
			break
		}
		if ctx.Err() != nil {
			rep.Cancelled = true
			s.logger.Debug("pass cancelled", "pass", rep.PassID, "err", ctx.Err())
			break
		}

		ready := readySet(nodes, deps, executed, tainted)
		if len(ready) == 0 {
			break
		}

		step := make([]graph.NodeID, len(ready))
		for i, n := range ready {
			step[i] = n.ID
		}
		rep.Steps = append(rep.Steps, step)

		results := s.step(ctx, snap, ready)
		for i, n := range ready {
			executed[n.ID] = true
			rep.Executed = append(rep.Executed, n.ID)
			rep.Results = append(rep.Results, nodeResult(n, iter, results[i]))
			if !results[i].OK() {
				s.logger.Debug("node failed", "node", n, "result", results[i])
				failed[n.ID] = true
				rep.Failed = append(rep.Failed, n.ID)
				taintFrom(n.ID)
			}
		}
	}

	for _, n := range nodes {
		if !executed[n.ID] && !tainted.has(n.ID) {
			rep.Stuck = append(rep.Stuck, n.ID)
		}
	}

	rep.End = time.Now()
	rep.Duration = rep.End.Sub(rep.Start)
	hooks.OnPassComplete(ctx, rep.PassID, rep.Stats(), rep.Duration)
	s.logger.Debug("pass finished",
		"pass", rep.PassID,
		"steps", len(rep.Steps),
		"executed", len(rep.Executed),
		"failed", len(rep.Failed),
		"stuck", len(rep.Stuck),
		"duration", rep.Duration)
	return rep
}

// readySet returns, in insertion order, the nodes that have not executed,
// are not tainted and whose predecessors have all executed.
func readySet(nodes []*graph.Node, deps *graph.Dependencies, executed map[graph.NodeID]bool, t *taint) []*graph.Node {
	var ready []*graph.Node
	for _, n := range nodes {
		if executed[n.ID] || t.has(n.ID) {
			continue
		}
		satisfied := true
		for _, p := range deps.Predecessors(n.ID) {
			if !executed[p] {
				satisfied = false
				break
			}
		}
		if satisfied {
			ready = append(ready, n)
		}
	}
	return ready
}

// step runs every ready node concurrently and waits for all of them.
func (s *Scheduler) step(ctx context.Context, v graph.View, ready []*graph.Node) []graph.Result {
	results := make([]graph.Result, len(ready))
	var eg errgroup.Group
	width := len(ready)
	if s.workers > 0 {
		eg.SetLimit(s.workers)
		width = min(width, s.workers)
	}
	// Worker ids are slots 1..width; a node takes a free slot and returns
	// it when done, so no two running nodes share an id.
	slots := make(chan int, width)
	for id := 1; id <= width; id++ {
		slots <- id
	}
	for i, n := range ready {
		eg.Go(func() error {
			worker := <-slots
			defer func() { slots <- worker }()
			results[i] = s.execute(ctx, v, n, worker)
			return nil
		})
	}
	_ = eg.Wait()
	return results
}

// execute runs one node's behavior. It records timing, stores the result on
// the node and never lets a panic escape.
func (s *Scheduler) execute(ctx context.Context, v graph.View, n *graph.Node, worker int) (res graph.Result) {
	start := n.Begin(worker)
	defer func() {
		if r := recover(); r != nil {
			res = graph.UnknownError(n.ID, "panic: %v", r)
			s.logger.Error("node panicked", "node", n, "panic", r, "stack", string(debug.Stack()))
		}
		n.Complete(res)
		observability.Scheduler().OnNodeComplete(ctx, n.Type.String(), string(res.Code), time.Since(start))
	}()

	if n.Behavior == nil {
		return graph.Success()
	}
	return n.Behavior(v, n)
}

func nodeResult(n *graph.Node, step int, res graph.Result) NodeResult {
	return NodeResult{
		Node:     n.ID,
		Type:     n.Type.String(),
		Name:     n.Name,
		Step:     step,
		Result:   res,
		Duration: n.Status().Duration,
	}
}

// String renders a one-line summary of the report.
func (r *Report) String() string {
	return fmt.Sprintf("pass %s: %d/%d executed in %d steps, %d failed, %d tainted, %d stuck (%s)",
		shortID(r.PassID), len(r.Executed), r.Nodes, len(r.Steps),
		len(r.Failed), len(r.Tainted), len(r.Stuck), r.Duration.Round(time.Microsecond))
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
