// Package cli implements the blueprint command-line interface.
//
// The commands load graph files through a shared operation registry, run
// passes with the parallel scheduler and present reports on the terminal.
// The CLI is built on cobra and logs through charmbracelet/log.
//
// # Commands
//
//   - run: execute one pass and optionally write DOT, SVG or JSON outputs
//   - render: draw a graph coloured by its last cached report
//   - inspect, cycles, nodes: static views of graphs and the registry
//   - report, history: read back stored pass reports
//   - watch: interactive terminal view driven by the execution trigger
//   - serve: HTTP control API with Prometheus metrics
//   - cache: manage the report cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. The level can
// also be set in the [log] section of the config file.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a logger writing to w with "HH:MM:SS.ms" timestamps.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress logs how long an operation took. Not safe for concurrent use.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg with the elapsed time, e.g. "Ran 12 nodes (14ms)".
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

type ctxKey int

const loggerKey ctxKey = 0

func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext returns the logger attached by withLogger, or
// log.Default() when there is none.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
