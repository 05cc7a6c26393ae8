package io

import (
	"encoding/json"

	"github.com/matzehuels/blueprint/pkg/graph"
	"github.com/matzehuels/blueprint/pkg/value"
)

type document struct {
	Nodes []node `json:"nodes"`
	Links []link `json:"links"`
}

type node struct {
	ID   graph.NodeID `json:"id"`
	Type string       `json:"type"`
	Name string       `json:"name,omitempty"`
	Pins []pin        `json:"pins"`
}

type pin struct {
	ID    graph.PinID     `json:"id"`
	Role  graph.Role      `json:"role"`
	Name  string          `json:"name"`
	Kind  value.Kind      `json:"kind"`
	Value json.RawMessage `json:"value,omitempty"`
}

type link struct {
	ID   graph.LinkID `json:"id"`
	From graph.PinID  `json:"from"`
	To   graph.PinID  `json:"to"`
}
