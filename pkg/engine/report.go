package engine

import (
	"time"

	"github.com/matzehuels/blueprint/pkg/graph"
	"github.com/matzehuels/blueprint/pkg/observability"
)

// NodeResult is the outcome of one node execution within a pass.
type NodeResult struct {
	Node     graph.NodeID  `json:"node" bson:"node" yaml:"node"`
	Type     string        `json:"type" bson:"type" yaml:"type"`
	Name     string        `json:"name" bson:"name" yaml:"name"`
	Step     int           `json:"step" bson:"step" yaml:"step"`
	Result   graph.Result  `json:"result" bson:"result" yaml:"result"`
	Duration time.Duration `json:"duration" bson:"duration" yaml:"duration"`
}

// Report describes a finished pass.
//
// Failed lists nodes whose result was an error (including unbuilt nodes,
// which never run). Tainted lists the descendants of failed nodes that were
// skipped. Stuck lists nodes that were neither executed nor tainted, such as
// members of a cycle.
type Report struct {
	PassID    string           `json:"pass_id" bson:"pass_id" yaml:"pass_id"`
	GraphHash string           `json:"graph_hash,omitempty" bson:"graph_hash,omitempty" yaml:"graph_hash,omitempty"`
	Start     time.Time        `json:"start" bson:"start" yaml:"start"`
	End       time.Time        `json:"end" bson:"end" yaml:"end"`
	Duration  time.Duration    `json:"duration" bson:"duration" yaml:"duration"`
	Nodes     int              `json:"nodes" bson:"nodes" yaml:"nodes"`
	Steps     [][]graph.NodeID `json:"steps" bson:"steps" yaml:"steps"`
	Executed  []graph.NodeID   `json:"executed" bson:"executed" yaml:"executed"`
	Failed    []graph.NodeID   `json:"failed,omitempty" bson:"failed,omitempty" yaml:"failed,omitempty"`
	Tainted   []graph.NodeID   `json:"tainted,omitempty" bson:"tainted,omitempty" yaml:"tainted,omitempty"`
	Stuck     []graph.NodeID   `json:"stuck,omitempty" bson:"stuck,omitempty" yaml:"stuck,omitempty"`
	BoundHit  bool             `json:"bound_hit,omitempty" bson:"bound_hit,omitempty" yaml:"bound_hit,omitempty"`
	Cancelled bool             `json:"cancelled,omitempty" bson:"cancelled,omitempty" yaml:"cancelled,omitempty"`
	Results   []NodeResult     `json:"results" bson:"results" yaml:"results"`
}

// OK reports whether every node executed successfully.
func (r *Report) OK() bool {
	return len(r.Failed) == 0 && len(r.Tainted) == 0 && len(r.Stuck) == 0 && !r.BoundHit && !r.Cancelled
}

// Result returns the result recorded for node id in this pass.
func (r *Report) Result(id graph.NodeID) (NodeResult, bool) {
	for _, nr := range r.Results {
		if nr.Node == id {
			return nr, true
		}
	}
	return NodeResult{}, false
}

// Stats summarizes the report for observability hooks.
func (r *Report) Stats() observability.PassStats {
	return observability.PassStats{
		Steps:    len(r.Steps),
		Executed: len(r.Executed),
		Failed:   len(r.Failed),
		Tainted:  len(r.Tainted),
		Stuck:    len(r.Stuck),
		BoundHit: r.BoundHit,
	}
}
