// Package graph provides the node/pin/link topology of a blueprint.
//
// A blueprint is a directed graph of typed operations. Each [Node] owns Input
// and Output [Pin]s; a [Link] connects exactly one Output pin to one Input pin
// of the same [value.Kind]. The [Graph] owns nodes and links in insertion
// order, so iteration is deterministic.
//
// # Identity
//
// Node, pin and link identifiers are drawn from a single graph-wide counter.
// Pins store the ID of their owning node rather than a pointer to it, and
// nodes never point back at the graph. Behaviors receive the graph explicitly
// as a [View]:
//
//	type Behavior func(v View, n *Node) Result
//
// # Building
//
// [Graph.AddNode] assigns IDs to a node and its pins, then builds the node:
// every pin receives its owner back-reference, its role and the graph's
// change notifier. Only built nodes are handed to the scheduler.
//
// # Values
//
// Pin values are read and written through the generic helpers [Get], [Set]
// and [SetThen]. A pin only ever stores a value of its declared kind:
//
//	if err := graph.Set(pin, value.Int(5)); err != nil {
//	    // TYPE_MISMATCH
//	}
//	n, err := graph.Get[value.Int](pin)
//
// Writing a value that differs from the current one (or writing to a
// valueless pin) marks the pin for visual refresh and pushes an [Event] onto
// the graph's bounded event queue. The owner drains the queue synchronously
// with [Events.Drain]; writing an equal value has no side effects.
//
// Behaviors resolve inputs with [Input], which follows the pin's link to the
// upstream output or falls back to the pin's own default value.
//
// # Snapshots
//
// [Graph.Snapshot] copies the topology into an immutable [Snapshot]. The
// engine runs each pass against a snapshot, so edits made while a pass is in
// flight only affect the next pass. Pin values are shared between the graph
// and its snapshots and are guarded by a per-pin lock.
//
// # Dependencies
//
// [Analyze] derives predecessor and successor sets from the links of a view.
// A node with no linked inputs is a source.
//
// # Concurrency
//
// [Graph] is safe for concurrent use. [Node] status and [Pin] values carry
// their own locks.
package graph
