// Package pkg provides the core libraries for Blueprint dataflow graphs.
//
// # Overview
//
// Blueprint executes node graphs the way a visual blueprint editor does:
// typed nodes expose input and output pins, links carry values from an
// output to inputs, and a pass runs every node once its dependencies have
// finished. The pkg directory is organized into four areas:
//
//  1. Model - values, pins, nodes and the graph itself
//  2. Execution - the step scheduler and the execution trigger
//  3. Storage - report cache and pass history
//  4. Output - serialization, rendering and the run pipeline
//
// # Architecture
//
// The typical data flow of a pass:
//
//	graph.json
//	     ↓
//	[io] (import into a [graph.Graph] using an [ops] registry)
//	     ↓
//	[engine] (dependency steps, failure isolation, cycle detection)
//	     ↓
//	[engine.Report] → [cache] / [history]
//	     ↓
//	[render/nodelink] (DOT / SVG coloured by outcome)
//
// # Quick Start
//
//	reg := ops.NewRegistry()
//	g, _ := io.ImportJSON("examples/graphs/sum.json", reg)
//
//	rep := engine.NewScheduler().Run(ctx, g)
//	fmt.Println(rep)
//
// # Main Packages
//
// ## Model
//
// [value] - The closed set of pin value kinds (numbers, text, images and
// vision primitives) with their JSON codec.
//
// [graph] - Nodes, pins, links and the registry of node types. Pins carry
// their own lock so nodes in the same step can read and write concurrently.
//
// [graph/transform] - Cycle detection and cycle breaking.
//
// [ops] - The builtin node types: constants, math, text, images and debug
// helpers.
//
// ## Execution
//
// [engine] - [engine.Scheduler] runs a single pass in parallel steps;
// [engine.Trigger] coalesces change requests into passes for live graphs.
//
// [errors] - Coded errors shared by every package.
//
// [observability] - Hooks for pass, cache and HTTP events, with a
// Prometheus implementation in [observability/prom].
//
// ## Storage
//
// [cache] - Report cache with file, Redis and no-op backends.
//
// [history] - Pass history in memory or MongoDB.
//
// [config] - TOML configuration for the CLI and server.
//
// ## Output
//
// [io] - The graph file format.
//
// [pipeline] - Load, run, record and render in one call. Used by the CLI
// and the server so both behave the same.
//
// [render/nodelink] - Graphviz diagrams of a graph and its last pass.
//
// # Testing
//
//	go test ./pkg/...            # All tests
//	go test ./pkg/engine/...     # Specific package
//	go test -run Example ./...   # Examples only
//
// [value]: https://pkg.go.dev/github.com/matzehuels/blueprint/pkg/value
// [graph]: https://pkg.go.dev/github.com/matzehuels/blueprint/pkg/graph
// [graph.Graph]: https://pkg.go.dev/github.com/matzehuels/blueprint/pkg/graph#Graph
// [graph/transform]: https://pkg.go.dev/github.com/matzehuels/blueprint/pkg/graph/transform
// [ops]: https://pkg.go.dev/github.com/matzehuels/blueprint/pkg/ops
// [engine]: https://pkg.go.dev/github.com/matzehuels/blueprint/pkg/engine
// [engine.Report]: https://pkg.go.dev/github.com/matzehuels/blueprint/pkg/engine#Report
// [engine.Scheduler]: https://pkg.go.dev/github.com/matzehuels/blueprint/pkg/engine#Scheduler
// [engine.Trigger]: https://pkg.go.dev/github.com/matzehuels/blueprint/pkg/engine#Trigger
// [errors]: https://pkg.go.dev/github.com/matzehuels/blueprint/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/blueprint/pkg/observability
// [observability/prom]: https://pkg.go.dev/github.com/matzehuels/blueprint/pkg/observability/prom
// [cache]: https://pkg.go.dev/github.com/matzehuels/blueprint/pkg/cache
// [history]: https://pkg.go.dev/github.com/matzehuels/blueprint/pkg/history
// [config]: https://pkg.go.dev/github.com/matzehuels/blueprint/pkg/config
// [io]: https://pkg.go.dev/github.com/matzehuels/blueprint/pkg/io
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/blueprint/pkg/pipeline
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/blueprint/pkg/render/nodelink
package pkg
