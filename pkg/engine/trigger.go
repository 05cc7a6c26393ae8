package engine

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/blueprint/pkg/graph"
)

// Trigger gates scheduler passes over one graph: passes run in the
// background, at most one at a time, and only when requested.
type Trigger struct {
	graph  *graph.Graph
	sched  *Scheduler
	logger *log.Logger
	onDone []func(*Report)

	mu       sync.Mutex
	running  bool
	needs    bool
	done     chan struct{} // closed when the in-flight pass finishes
	finished *Report       // finished pass not yet joined
	last     *Report
	passes   int
	total    time.Duration
}

// Stats is a snapshot of a trigger's state and cumulative timing.
type Stats struct {
	Running    bool          `json:"running"`
	Needs      bool          `json:"needs_running"`
	Passes     int           `json:"passes"`
	Total      time.Duration `json:"total"`
	Last       time.Duration `json:"last"`
	LastPassID string        `json:"last_pass_id,omitempty"`
}

// TriggerOption configures a Trigger.
type TriggerOption func(*Trigger)

// WithTriggerLogger sets the trigger's logger.
func WithTriggerLogger(l *log.Logger) TriggerOption {
	return func(t *Trigger) {
		if l != nil {
			t.logger = l
		}
	}
}

// OnComplete registers fn to receive every joined report. Callbacks run on
// the goroutine that joins the pass (Tick or Wait).
func OnComplete(fn func(*Report)) TriggerOption {
	return func(t *Trigger) { t.onDone = append(t.onDone, fn) }
}

// NewTrigger creates a trigger for g. A nil scheduler uses NewScheduler().
func NewTrigger(g *graph.Graph, s *Scheduler, opts ...TriggerOption) *Trigger {
	if s == nil {
		s = NewScheduler()
	}
	t := &Trigger{
		graph:  g,
		sched:  s,
		logger: log.NewWithOptions(io.Discard, log.Options{}),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// RequestExecution marks the graph as needing a pass. It is safe to call
// from any goroutine and is suitable as the callback of graph.SetThen.
func (t *Trigger) RequestExecution() {
	t.mu.Lock()
	t.needs = true
	t.mu.Unlock()
}

// Tick joins a finished pass without blocking and, if execution was
// requested and no pass is running, launches a new one. It reports whether a
// pass was launched. The needs flag is cleared at launch, so a request made
// while the pass runs schedules exactly one follow-up pass.
func (t *Trigger) Tick(ctx context.Context) bool {
	t.mu.Lock()
	joined := t.joinLocked()
	launched := false
	if t.needs && !t.running {
		t.needs = false
		t.running = true
		done := make(chan struct{})
		t.done = done
		launched = true
		go t.pass(ctx, done)
	}
	t.mu.Unlock()

	t.notify(joined)
	return launched
}

func (t *Trigger) pass(ctx context.Context, done chan struct{}) {
	rep := t.sched.Run(ctx, t.graph)
	t.mu.Lock()
	t.finished = rep
	t.running = false
	t.mu.Unlock()
	close(done)
}

// joinLocked consumes a finished pass. The caller holds t.mu.
func (t *Trigger) joinLocked() *Report {
	rep := t.finished
	if rep == nil {
		return nil
	}
	t.finished = nil
	t.done = nil
	t.last = rep
	t.passes++
	t.total += rep.Duration
	return rep
}

func (t *Trigger) notify(rep *Report) {
	if rep == nil {
		return
	}
	t.logger.Info("pass complete",
		"pass", shortID(rep.PassID),
		"executed", len(rep.Executed),
		"failed", len(rep.Failed),
		"duration", rep.Duration)
	for _, fn := range t.onDone {
		fn(rep)
	}
}

// IsRunning reports whether a pass is in flight.
func (t *Trigger) IsRunning() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running
}

// NeedsRunning reports whether a pass has been requested but not launched.
func (t *Trigger) NeedsRunning() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.needs
}

// Wait blocks until the in-flight pass (if any) finishes, joins it and
// returns the last report.
func (t *Trigger) Wait() *Report {
	t.mu.Lock()
	done := t.done
	t.mu.Unlock()
	if done != nil {
		<-done
	}

	t.mu.Lock()
	joined := t.joinLocked()
	last := t.last
	t.mu.Unlock()

	t.notify(joined)
	return last
}

// LastReport returns the most recently joined report, or nil.
func (t *Trigger) LastReport() *Report {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.last
}

// Stats returns the trigger's state and timing.
func (t *Trigger) Stats() Stats {
	t.mu.Lock()
	defer t.mu.Unlock()
	st := Stats{
		Running: t.running,
		Needs:   t.needs,
		Passes:  t.passes,
		Total:   t.total,
	}
	if t.last != nil {
		st.Last = t.last.Duration
		st.LastPassID = t.last.PassID
	}
	return st
}

// Run ticks every interval until ctx is done, then waits for the in-flight
// pass and returns ctx.Err().
func (t *Trigger) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			t.Wait()
			return ctx.Err()
		case <-ticker.C:
			t.Tick(ctx)
		}
	}
}
