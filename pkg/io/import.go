package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/blueprint/pkg/errors"
	"github.com/matzehuels/blueprint/pkg/graph"
	"github.com/matzehuels/blueprint/pkg/value"
)

// ReadJSON decodes a graph from r, constructing nodes through reg.
//
// ReadJSON returns an error if:
//   - The JSON is malformed
//   - A node type is not registered
//   - A saved pin does not exist on the node type, or its kind differs
//   - A value cannot be decoded as its pin's kind
//   - IDs collide, or a link violates the linking rules
//
// The returned graph is independent of r. ReadJSON does not close r.
func ReadJSON(r io.Reader, reg *graph.Registry) (*graph.Graph, error) {
	var doc document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	g := graph.New()
	g.Reserve(maxID(doc))

	for _, nd := range doc.Nodes {
		n, err := buildNode(nd, reg)
		if err != nil {
			return nil, fmt.Errorf("node %d: %w", nd.ID, err)
		}
		if err := g.AddNode(n); err != nil {
			return nil, fmt.Errorf("node %d: %w", nd.ID, err)
		}
	}
	for _, l := range doc.Links {
		if _, err := g.AddLinkWithID(l.ID, l.From, l.To); err != nil {
			return nil, fmt.Errorf("link %d (%d->%d): %w", l.ID, l.From, l.To, err)
		}
	}
	return g, nil
}

func buildNode(nd node, reg *graph.Registry) (*graph.Node, error) {
	tag, err := graph.ParseTypeTag(nd.Type)
	if err != nil {
		return nil, err
	}
	n, err := reg.New(tag)
	if err != nil {
		return nil, err
	}
	n.ID = nd.ID
	if nd.Name != "" {
		n.Name = nd.Name
	}

	for _, pd := range nd.Pins {
		var p *graph.Pin
		switch pd.Role {
		case graph.RoleInput:
			p = n.Input(pd.Name)
		case graph.RoleOutput:
			p = n.Output(pd.Name)
		}
		if p == nil {
			return nil, errors.New(errors.ErrCodeNotFound, "%s has no %s pin %q", tag, pd.Role, pd.Name)
		}
		if p.Kind != pd.Kind {
			return nil, errors.New(errors.ErrCodeTypeMismatch, "pin %q: saved kind %s, type declares %s",
				pd.Name, pd.Kind, p.Kind)
		}
		p.ID = pd.ID
		if len(pd.Value) == 0 || pd.Role != graph.RoleInput {
			continue
		}
		v, err := value.Decode(pd.Kind, pd.Value)
		if err != nil {
			return nil, fmt.Errorf("pin %q: %w", pd.Name, err)
		}
		if err := p.Store(v, nil); err != nil {
			return nil, fmt.Errorf("pin %q: %w", pd.Name, err)
		}
	}
	return n, nil
}

func maxID(doc document) int64 {
	var m int64
	for _, n := range doc.Nodes {
		m = max(m, int64(n.ID))
		for _, p := range n.Pins {
			m = max(m, int64(p.ID))
		}
	}
	for _, l := range doc.Links {
		m = max(m, int64(l.ID))
	}
	return m
}

// ImportJSON reads a JSON file at path and returns the decoded graph.
// The error wraps the underlying cause with the file path for context.
func ImportJSON(path string, reg *graph.Registry) (*graph.Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	g, err := ReadJSON(f, reg)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}
