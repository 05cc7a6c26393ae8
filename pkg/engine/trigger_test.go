package engine

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matzehuels/blueprint/pkg/graph"
	"github.com/matzehuels/blueprint/pkg/value"
)

// gatedGraph returns a one-node graph whose behavior blocks until release
// is closed, and counts concurrent and total executions.
func gatedGraph(t *testing.T, release <-chan struct{}, active, peak, runs *atomic.Int32) *graph.Graph {
	t.Helper()
	g := graph.New()
	n := graph.NewNode(testTag, "gate", nil, []*graph.Pin{graph.NewOutput("out", value.KindInt)},
		func(v graph.View, n *graph.Node) graph.Result {
			cur := active.Add(1)
			if cur > peak.Load() {
				peak.Store(cur)
			}
			<-release
			runs.Add(1)
			active.Add(-1)
			return graph.Success()
		})
	if err := g.AddNode(n); err != nil {
		t.Fatal(err)
	}
	return g
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met within 2s")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestTriggerIdle(t *testing.T) {
	tr := NewTrigger(graph.New(), nil)
	if tr.Tick(context.Background()) {
		t.Error("Tick() launched a pass without a request")
	}
	if tr.IsRunning() || tr.NeedsRunning() || tr.LastReport() != nil {
		t.Errorf("Stats() = %+v, want idle", tr.Stats())
	}
}

func TestTriggerSinglePassInFlight(t *testing.T) {
	var active, peak, runs atomic.Int32
	release := make(chan struct{})
	g := gatedGraph(t, release, &active, &peak, &runs)

	var joined atomic.Int32
	tr := NewTrigger(g, NewScheduler(), OnComplete(func(*Report) { joined.Add(1) }))
	ctx := context.Background()

	tr.RequestExecution()
	if !tr.NeedsRunning() {
		t.Fatal("NeedsRunning() = false after RequestExecution")
	}
	if !tr.Tick(ctx) {
		t.Fatal("Tick() did not launch a pass")
	}
	waitFor(t, func() bool { return active.Load() == 1 })

	// A request while running is remembered but does not start a second pass.
	tr.RequestExecution()
	for range 5 {
		if tr.Tick(ctx) {
			t.Fatal("Tick() launched a second concurrent pass")
		}
	}
	if !tr.IsRunning() || !tr.NeedsRunning() {
		t.Errorf("Stats() = %+v, want running with a pending request", tr.Stats())
	}

	close(release)
	waitFor(t, func() bool { return !tr.IsRunning() })

	// The next tick joins the finished pass and launches the follow-up.
	if !tr.Tick(ctx) {
		t.Fatal("Tick() did not launch the follow-up pass")
	}
	rep := tr.Wait()
	if rep == nil || len(rep.Executed) != 1 {
		t.Fatalf("Wait() = %v, want a report with one executed node", rep)
	}

	st := tr.Stats()
	if st.Passes != 2 || st.Running || st.Needs {
		t.Errorf("Stats() = %+v, want 2 passes, idle", st)
	}
	if joined.Load() != 2 {
		t.Errorf("OnComplete called %d times, want 2", joined.Load())
	}
	if peak.Load() != 1 || runs.Load() != 2 {
		t.Errorf("peak = %d, runs = %d, want 1 and 2", peak.Load(), runs.Load())
	}
	if tr.Tick(ctx) {
		t.Error("Tick() launched a pass with no pending request")
	}
}

func TestTriggerSetThen(t *testing.T) {
	g := graph.New()
	n := graph.NewNode(testTag, "src", []*graph.Pin{graph.NewInput("in", value.KindInt, value.Int(1))}, nil, nil)
	if err := g.AddNode(n); err != nil {
		t.Fatal(err)
	}
	tr := NewTrigger(g, nil)

	if err := graph.SetThen(n.Input("in"), value.Int(1), tr.RequestExecution); err != nil {
		t.Fatal(err)
	}
	if tr.NeedsRunning() {
		t.Error("unchanged value requested execution")
	}
	if err := graph.SetThen(n.Input("in"), value.Int(2), tr.RequestExecution); err != nil {
		t.Fatal(err)
	}
	if !tr.NeedsRunning() {
		t.Error("changed value did not request execution")
	}
}

func TestTriggerRun(t *testing.T) {
	var active, peak, runs atomic.Int32
	release := make(chan struct{})
	close(release)
	g := gatedGraph(t, release, &active, &peak, &runs)
	tr := NewTrigger(g, nil)
	tr.RequestExecution()

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- tr.Run(ctx, time.Millisecond) }()

	waitFor(t, func() bool { return runs.Load() == 1 })
	cancel()
	if err := <-errc; err != context.Canceled {
		t.Errorf("Run() = %v, want context.Canceled", err)
	}
	if tr.LastReport() == nil {
		t.Error("LastReport() = nil after Run")
	}
}
