package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/blueprint/pkg/cache"
	"github.com/matzehuels/blueprint/pkg/engine"
	"github.com/matzehuels/blueprint/pkg/graph"
	"github.com/matzehuels/blueprint/pkg/graph/transform"
	"github.com/matzehuels/blueprint/pkg/history"
	bpio "github.com/matzehuels/blueprint/pkg/io"
	"github.com/matzehuels/blueprint/pkg/observability"
	"github.com/matzehuels/blueprint/pkg/render/nodelink"
)

const (
	keyTypeReport   = "report"
	keyTypeArtifact = "artifact"
)

// Runner encapsulates pipeline execution with caching and history.
// Both CLI and API use it to avoid duplicating that logic.
//
// The Runner holds no per-execution state; multiple goroutines can use the
// same Runner with different options.
type Runner struct {
	Registry *graph.Registry
	Cache    cache.Cache
	Keyer    cache.Keyer
	History  history.Store // nil disables history
	Logger   *log.Logger
}

// NewRunner creates a runner. A nil cache disables caching, a nil keyer
// means [cache.DefaultKeyer], and a nil logger means [log.Default].
func NewRunner(reg *graph.Registry, c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Registry: reg,
		Cache:    c,
		Keyer:    keyer,
		Logger:   logger,
	}
}

// Execute runs the complete load → run → record → render pipeline.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	logger := opts.Logger
	result := &Result{}

	// Stage 1: Load
	loadStart := time.Now()
	g, hash, err := r.Load(opts)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	result.Graph = g
	result.GraphHash = hash
	result.Cycles = transform.FindCycles(g)
	result.Stats.LoadTime = time.Since(loadStart)
	result.Stats.NodeCount = g.NodeCount()
	result.Stats.LinkCount = g.LinkCount()

	logger.Info("loaded graph",
		"nodes", result.Stats.NodeCount,
		"links", result.Stats.LinkCount,
		"hash", shortHash(hash),
		"duration", result.Stats.LoadTime)
	if len(result.Cycles) > 0 {
		logger.Warn("graph has cycles; members will not run", "cycles", len(result.Cycles))
	}

	// Stage 2: Run
	runStart := time.Now()
	rep, hit := r.RunWithCacheInfo(ctx, g, hash, opts)
	result.Report = rep
	result.Stats.RunTime = time.Since(runStart)
	result.CacheInfo.ReportHit = hit

	logger.Info("pass complete",
		"pass", rep.PassID,
		"executed", len(rep.Executed),
		"failed", len(rep.Failed),
		"cached", hit,
		"duration", result.Stats.RunTime)

	// Stage 3: Record
	if !hit {
		r.Record(ctx, rep, opts)
	}

	// Stage 4: Render
	if len(opts.Formats) > 0 {
		renderStart := time.Now()
		artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, g, result, opts)
		if err != nil {
			return nil, fmt.Errorf("render: %w", err)
		}
		result.Artifacts = artifacts
		result.Stats.RenderTime = time.Since(renderStart)
		result.CacheInfo.RenderHit = renderHit

		logger.Info("rendered outputs",
			"formats", opts.Formats,
			"duration", result.Stats.RenderTime)
	}

	return result, nil
}

// Load returns the graph named by opts with its content hash.
func (r *Runner) Load(opts Options) (*graph.Graph, string, error) {
	g := opts.Graph
	if g == nil {
		if r.Registry == nil {
			return nil, "", fmt.Errorf("no node registry configured")
		}
		var err error
		if g, err = bpio.ImportJSON(opts.Path, r.Registry); err != nil {
			return nil, "", err
		}
	}
	hash, err := GraphHash(g)
	if err != nil {
		return nil, "", err
	}
	return g, hash, nil
}

// GraphHash returns the content hash of g: the SHA-256 of its canonical
// encoding. Output values do not contribute.
func GraphHash(g graph.View) (string, error) {
	data, err := bpio.Marshal(g)
	if err != nil {
		return "", fmt.Errorf("hash graph: %w", err)
	}
	return cache.Hash(data), nil
}

// RunWithCacheInfo runs one pass over g, or returns the cached report for
// hash when opts allow it. The bool reports a cache hit.
func (r *Runner) RunWithCacheInfo(ctx context.Context, g *graph.Graph, hash string, opts Options) (*engine.Report, bool) {
	hooks := observability.Cache()
	key := r.Keyer.ReportKey(hash)

	if opts.UseCache && !opts.Refresh {
		data, hit, err := r.Cache.Get(ctx, key)
		if err != nil {
			r.logger(opts).Warn("report cache read failed", "err", err)
		}
		if err == nil && hit {
			var rep engine.Report
			if err := json.Unmarshal(data, &rep); err == nil {
				hooks.OnCacheHit(ctx, keyTypeReport)
				return &rep, true
			}
			// A stale encoding falls through to a fresh pass.
		}
		hooks.OnCacheMiss(ctx, keyTypeReport)
	}

	sched := engine.NewScheduler(
		engine.WithWorkers(opts.Workers),
		engine.WithLogger(r.logger(opts)),
	)
	rep := sched.Run(ctx, g)
	rep.GraphHash = hash
	return rep, false
}

// Record stores rep in the cache and the history. Failures are logged and
// do not fail the execution.
func (r *Runner) Record(ctx context.Context, rep *engine.Report, opts Options) {
	logger := r.logger(opts)

	if data, err := json.Marshal(rep); err == nil {
		if err := r.Cache.Set(ctx, r.Keyer.ReportKey(rep.GraphHash), data, opts.TTL); err != nil {
			logger.Warn("report cache write failed", "err", err)
		} else {
			observability.Cache().OnCacheSet(ctx, keyTypeReport, len(data))
		}
	}

	if r.History != nil {
		if err := r.History.Record(ctx, rep); err != nil {
			logger.Warn("history write failed", "pass", rep.PassID, "err", err)
		}
	}
}

// RenderWithCacheInfo renders the requested formats for a finished pass.
// Artifacts are cached per pass, so they hit only when the report did.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, g graph.View, res *Result, opts Options) (map[string][]byte, bool, error) {
	hooks := observability.Cache()
	scope := cache.Hash([]byte(res.GraphHash + ":" + res.Report.PassID))
	artifacts := make(map[string][]byte, len(opts.Formats))
	allHit := true

	var dot string
	for _, format := range opts.Formats {
		if format == FormatJSON {
			data, err := json.MarshalIndent(res.Report, "", "  ")
			if err != nil {
				return nil, false, fmt.Errorf("encode report: %w", err)
			}
			artifacts[format] = data
			continue
		}

		key := r.Keyer.ArtifactKey(scope, cache.ArtifactKeyOpts{Format: format, Detailed: opts.Detailed})
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			hooks.OnCacheHit(ctx, keyTypeArtifact)
			artifacts[format] = data
			continue
		}
		hooks.OnCacheMiss(ctx, keyTypeArtifact)
		allHit = false

		if dot == "" {
			dot = nodelink.ToDOT(g, nodelink.Options{
				Report:   res.Report,
				Cycles:   res.Cycles,
				Detailed: opts.Detailed,
			})
		}
		var data []byte
		switch format {
		case FormatDOT:
			data = []byte(dot)
		case FormatSVG:
			svg, err := nodelink.RenderSVG(ctx, dot)
			if err != nil {
				return nil, false, fmt.Errorf("render %s: %w", format, err)
			}
			data = svg
		}
		artifacts[format] = data
		if err := r.Cache.Set(ctx, key, data, opts.TTL); err == nil {
			hooks.OnCacheSet(ctx, keyTypeArtifact, len(data))
		}
	}
	return artifacts, allHit, nil
}

// Render is a convenience wrapper that discards the cache hit info.
func (r *Runner) Render(ctx context.Context, g graph.View, res *Result, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, g, res, opts)
	return artifacts, err
}

// LastReport returns the cached report for a graph hash, if any.
func (r *Runner) LastReport(ctx context.Context, hash string) (*engine.Report, bool, error) {
	data, hit, err := r.Cache.Get(ctx, r.Keyer.ReportKey(hash))
	if err != nil || !hit {
		return nil, false, err
	}
	var rep engine.Report
	if err := json.NewDecoder(bytes.NewReader(data)).Decode(&rep); err != nil {
		return nil, false, fmt.Errorf("decode cached report: %w", err)
	}
	return &rep, true, nil
}

func (r *Runner) logger(opts Options) *log.Logger {
	if opts.Logger != nil {
		return opts.Logger
	}
	return r.Logger
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
