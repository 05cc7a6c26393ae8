// Package history records finished pass reports.
//
// A [Store] keeps reports in arrival order and answers "what happened last"
// per graph. [Memory] is a bounded in-process store; [Mongo] persists to a
// MongoDB collection so that several processes share one history.
package history

import (
	"context"
	"fmt"

	"github.com/matzehuels/blueprint/pkg/engine"
)

// Backend names accepted by [Open].
const (
	BackendNone   = "none"
	BackendMemory = "memory"
	BackendMongo  = "mongo"
)

// Store persists pass reports.
type Store interface {
	// Record appends a report. Reports without a pass ID are rejected.
	Record(ctx context.Context, rep *engine.Report) error

	// Get returns the report with the given pass ID, or a NOT_FOUND error.
	Get(ctx context.Context, passID string) (*engine.Report, error)

	// List returns up to limit reports, newest first. An empty graphHash
	// matches every graph; limit <= 0 means no limit.
	List(ctx context.Context, graphHash string, limit int) ([]*engine.Report, error)

	// Close releases backend resources.
	Close(ctx context.Context) error
}

// Options selects and configures a backend.
type Options struct {
	Backend    string
	Capacity   int    // memory backend
	MongoURI   string // mongo backend
	Database   string
	Collection string
}

// Open returns the store named by opts.Backend. An empty name or
// [BackendNone] yields nil, meaning history is disabled.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Backend {
	case "", BackendNone:
		return nil, nil
	case BackendMemory:
		return NewMemory(opts.Capacity), nil
	case BackendMongo:
		if opts.MongoURI == "" {
			return nil, fmt.Errorf("mongo history: no uri configured")
		}
		m, err := NewMongo(ctx, opts.MongoURI, opts.Database, opts.Collection)
		if err != nil {
			return nil, err
		}
		return m, nil
	default:
		return nil, fmt.Errorf("unknown history backend %q", opts.Backend)
	}
}
