// Package prom implements the observability hooks with Prometheus metrics.
package prom

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/blueprint/pkg/observability"
)

const namespace = "blueprint"

// Metrics collects scheduler, cache and HTTP metrics. It implements
// observability.SchedulerHooks, observability.CacheHooks and
// observability.HTTPHooks.
type Metrics struct {
	passes        *prometheus.CounterVec
	passDuration  prometheus.Histogram
	passNodes     *prometheus.CounterVec
	nodeRuns      *prometheus.CounterVec
	nodeDuration  *prometheus.HistogramVec
	cacheRequests *prometheus.CounterVec
	cacheBytes    *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
}

var (
	_ observability.SchedulerHooks = (*Metrics)(nil)
	_ observability.CacheHooks     = (*Metrics)(nil)
	_ observability.HTTPHooks      = (*Metrics)(nil)
)

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		passes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "passes_total",
			Help:      "Scheduler passes, by whether the iteration bound was hit.",
		}, []string{"bound_hit"}),
		passDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pass_duration_seconds",
			Help:      "Wall time of a scheduler pass.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}),
		passNodes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pass_nodes_total",
			Help:      "Nodes per pass outcome (executed, failed, tainted, stuck).",
		}, []string{"outcome"}),
		nodeRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "node_runs_total",
			Help:      "Node executions by type and result code.",
		}, []string{"type", "code"}),
		nodeDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "node_duration_seconds",
			Help:      "Execution time of a single node.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}, []string{"type"}),
		cacheRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_requests_total",
			Help:      "Cache lookups by key type and result.",
		}, []string{"key_type", "result"}),
		cacheBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_written_bytes_total",
			Help:      "Bytes written to the cache.",
		}, []string{"key_type"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Served API requests.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
	reg.MustRegister(
		m.passes, m.passDuration, m.passNodes,
		m.nodeRuns, m.nodeDuration,
		m.cacheRequests, m.cacheBytes,
		m.httpDuration,
	)
	return m
}

// Handler serves the metrics gathered by g in the Prometheus text format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

func (m *Metrics) OnPassStart(context.Context, string, int) {}

func (m *Metrics) OnNodeComplete(_ context.Context, nodeType, code string, d time.Duration) {
	if code == "" {
		code = "OK"
	}
	m.nodeRuns.WithLabelValues(nodeType, code).Inc()
	m.nodeDuration.WithLabelValues(nodeType).Observe(d.Seconds())
}

func (m *Metrics) OnPassComplete(_ context.Context, _ string, s observability.PassStats, d time.Duration) {
	m.passes.WithLabelValues(strconv.FormatBool(s.BoundHit)).Inc()
	m.passDuration.Observe(d.Seconds())
	m.passNodes.WithLabelValues("executed").Add(float64(s.Executed))
	m.passNodes.WithLabelValues("failed").Add(float64(s.Failed))
	m.passNodes.WithLabelValues("tainted").Add(float64(s.Tainted))
	m.passNodes.WithLabelValues("stuck").Add(float64(s.Stuck))
}

func (m *Metrics) OnCacheHit(_ context.Context, keyType string) {
	m.cacheRequests.WithLabelValues(keyType, "hit").Inc()
}

func (m *Metrics) OnCacheMiss(_ context.Context, keyType string) {
	m.cacheRequests.WithLabelValues(keyType, "miss").Inc()
}

func (m *Metrics) OnCacheSet(_ context.Context, keyType string, size int) {
	m.cacheBytes.WithLabelValues(keyType).Add(float64(size))
}

func (m *Metrics) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	m.httpDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(d.Seconds())
}
