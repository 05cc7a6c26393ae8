// Package engine executes blueprint graphs.
//
// # Passes
//
// A [Scheduler] pass runs every eligible node of a graph once, level by
// level. Each step computes the ready set (nodes not yet executed, not
// tainted, whose predecessors have all executed), runs it concurrently and
// waits for every node to finish before computing the next step:
//
//	s := engine.NewScheduler(engine.WithWorkers(4))
//	report := s.Run(ctx, g)
//	for _, id := range report.Failed {
//	    // ...
//	}
//
// The pass works on a [graph.Snapshot] taken when it starts, so topology
// edits made while it runs only affect the next pass. Predecessor outputs are
// final before a successor is dispatched because steps are joined.
//
// # Errors and Taint
//
// Each node runs inside a wrapper that records timing, converts panics into
// UNKNOWN_ERROR results and stores the result on the node. A node whose
// result is an error is tainted together with all of its descendants; tainted
// nodes are skipped for the rest of the pass and keep their previous result.
// A single node failure never aborts the pass.
//
// # Termination
//
// A pass stops when the ready set is empty, when the step counter exceeds
// the number of nodes, or when the context is cancelled between steps. Nodes
// that never became ready (cycles, or dependencies on unbuilt nodes) are
// reported as stuck. Running nodes are never interrupted and there is no
// per-node timeout.
//
// # Triggering
//
// A [Trigger] decides when a pass must run. Collaborators call
// [Trigger.RequestExecution] (directly or as the callback of
// [graph.SetThen]); [Trigger.Tick], called periodically, launches a pass in
// the background when one is needed and none is running. At most one pass
// runs against a graph at a time.
package engine
