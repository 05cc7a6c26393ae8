// Package pipeline runs blueprint graph files end to end.
//
// This package implements the load → run → record → render sequence shared
// by the CLI and the HTTP server, so both report and cache passes the same
// way.
//
// # Architecture
//
// The pipeline consists of four stages:
//
//  1. Load: Decode the graph file through the node registry
//  2. Run: Execute one scheduler pass over the graph
//  3. Record: Store the report in the cache and the history
//  4. Render: Draw the graph, coloured by the report (optional)
//
// # Usage
//
//	runner := pipeline.NewRunner(ops.NewRegistry(), c, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Path:    "edges.json",
//	    Formats: []string{pipeline.FormatSVG},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Report)
//
// With UseCache set, a graph whose content hash already has a cached report
// is not run again; Refresh forces a new pass either way.
package pipeline

import (
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/blueprint/pkg/engine"
	"github.com/matzehuels/blueprint/pkg/graph"
)

// DefaultReportTTL bounds how long a cached report is reused.
const DefaultReportTTL = 24 * time.Hour

// Format constants for rendered outputs.
const (
	FormatDOT  = "dot"
	FormatSVG  = "svg"
	FormatJSON = "json" // the report itself
)

// ValidFormats is the set of supported output formats.
var ValidFormats = []string{FormatDOT, FormatSVG, FormatJSON}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for one pipeline execution.
type Options struct {
	// Path is the graph file to load. Ignored when Graph is set.
	Path string `json:"path,omitempty"`

	// Workers bounds concurrent node executions; 0 means unbounded.
	Workers int `json:"workers,omitempty"`

	// UseCache reuses a cached report for an unchanged graph.
	UseCache bool `json:"use_cache,omitempty"`
	// Refresh runs even when a cached report exists, and overwrites it.
	Refresh bool          `json:"refresh,omitempty"`
	TTL     time.Duration `json:"ttl,omitempty"`

	// Formats lists the artifacts to render after the pass.
	Formats  []string `json:"formats,omitempty"`
	Detailed bool     `json:"detailed,omitempty"`

	// Runtime options (not serialized)
	Graph  *graph.Graph `json:"-"`
	Logger *log.Logger  `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Graph is the loaded graph. Its output pins hold the values computed by
	// the pass, unless the report came from the cache.
	Graph *graph.Graph

	// GraphHash is the content hash of the graph as loaded.
	GraphHash string

	// Report describes the pass.
	Report *engine.Report

	// Cycles lists the cycles found in the graph.
	Cycles [][]graph.NodeID

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount  int
	LinkCount  int
	LoadTime   time.Duration
	RunTime    time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	ReportHit bool // the report was reused instead of running a pass
	RenderHit bool // every artifact came from the cache
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !slices.Contains(ValidFormats, format) {
		return fmt.Errorf("invalid format: %q (must be one of: dot, svg, json)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateAndSetDefaults checks required fields and applies defaults.
func (o *Options) ValidateAndSetDefaults() error {
	if o.Graph == nil && o.Path == "" {
		return fmt.Errorf("path or graph is required")
	}
	if o.Workers < 0 {
		return fmt.Errorf("workers must be >= 0, got %d", o.Workers)
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.TTL == 0 {
		o.TTL = DefaultReportTTL
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}
