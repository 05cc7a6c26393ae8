package io

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/blueprint/pkg/graph"
	"github.com/matzehuels/blueprint/pkg/value"
)

func encode(v graph.View) (document, error) {
	nodes := v.Nodes()
	links := v.Links()
	doc := document{
		Nodes: make([]node, 0, len(nodes)),
		Links: make([]link, 0, len(links)),
	}

	for _, n := range nodes {
		nd := node{ID: n.ID, Type: n.Type.String(), Name: n.Name}
		for _, p := range n.Pins() {
			pd := pin{ID: p.ID, Role: p.Role, Name: p.Name, Kind: p.Kind}
			if p.Role == graph.RoleInput {
				if val := p.Value(); val != nil {
					raw, err := value.Encode(val)
					if err != nil {
						return document{}, fmt.Errorf("node %d pin %s: %w", n.ID, p.Name, err)
					}
					pd.Value = raw
				}
			}
			nd.Pins = append(nd.Pins, pd)
		}
		doc.Nodes = append(doc.Nodes, nd)
	}
	for _, l := range links {
		doc.Links = append(doc.Links, link{ID: l.ID, From: l.From, To: l.To})
	}
	return doc, nil
}

// WriteJSON encodes the graph as indented JSON and writes it to w.
// The output can be re-imported with [ReadJSON].
func WriteJSON(v graph.View, w io.Writer) error {
	doc, err := encode(v)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// Marshal returns the compact JSON encoding of the graph. Equal graphs
// (same nodes, pins, input values and links in the same order) produce
// identical bytes.
func Marshal(v graph.View) ([]byte, error) {
	doc, err := encode(v)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(doc); err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	return buf.Bytes(), nil
}

// ExportJSON writes the graph to a JSON file at path.
// This is a convenience wrapper around [WriteJSON] for file-based output.
func ExportJSON(v graph.View, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteJSON(v, f)
}
