// Package io provides JSON import and export for blueprint graphs.
//
// # Overview
//
// This package persists the graph model: node type tags and names, pin IDs,
// roles, kinds and input values, and link endpoints. Node positions and other
// presentation state are not part of the format.
//
// # JSON Format
//
//	{
//	  "nodes": [
//	    {
//	      "id": 1,
//	      "type": "constant/int",
//	      "name": "five",
//	      "pins": [
//	        {"id": 2, "role": "input", "name": "value", "kind": "int", "value": 5},
//	        {"id": 3, "role": "output", "name": "out", "kind": "int"}
//	      ]
//	    }
//	  ],
//	  "links": [
//	    {"id": 9, "from": 3, "to": 6}
//	  ]
//	}
//
// Values use the JSON encoding of the [value] package and are untagged: the
// pin's kind tells the decoder what to expect. Output values are not written;
// the next pass recomputes them.
//
// # Import
//
// Nodes are reconstructed through a [graph.Registry]: the factory registered
// under the node's type provides the pins and behavior, and the saved pins
// are matched to them by role and name. Saved IDs are kept, and
// [graph.Graph.AddNode] rebuilds every node so it is ready to schedule:
//
//	g, err := io.ImportJSON("edges.json", reg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Errors are wrapped with context describing which node, pin or link caused
// the problem.
//
// # Export
//
// Use [ExportJSON] to write a graph to a file, or [WriteJSON] to write to any
// io.Writer. [Marshal] returns the canonical encoding used for content
// hashing.
package io
