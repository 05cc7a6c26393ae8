// Package transform provides diagnostics and repairs over blueprint graphs.
//
// # Cycle Detection
//
// [FindCycles] reports cycles among nodes. The scheduler never executes
// nodes on a cycle (their predecessors can never all finish), so this is
// the user-facing explanation for nodes that stay idle after a pass.
//
// Detection is a depth-first traversal from every node in insertion order.
// The current path is kept in an explicit stack; reaching a node that is
// already on the stack records the stack suffix from that node as a cycle.
// A visited set prevents re-exploring nodes across roots, so the result is
// best-effort: graphs with shared sub-paths may contain simple cycles that
// are not reported. Each reported cycle is ordered by descending indegree.
//
// # Cycle Breaking
//
// [BreakCycles] removes back-links found by a white/gray/black DFS until the
// graph is acyclic. It starts from source nodes so that the removed links
// are the ones pointing "upstream" in the natural reading order.
package transform
