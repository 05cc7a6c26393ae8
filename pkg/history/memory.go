package history

import (
	"context"
	"sync"

	"github.com/matzehuels/blueprint/pkg/engine"
	"github.com/matzehuels/blueprint/pkg/errors"
)

// DefaultCapacity bounds a [Memory] store created with capacity <= 0.
const DefaultCapacity = 1000

// Memory keeps the most recent reports in memory, dropping the oldest once
// the capacity is reached.
type Memory struct {
	mu       sync.RWMutex
	reports  []*engine.Report
	capacity int
}

// NewMemory creates an in-memory store.
func NewMemory(capacity int) *Memory {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Memory{capacity: capacity}
}

func (m *Memory) Record(ctx context.Context, rep *engine.Report) error {
	if err := validate(rep); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.reports) == m.capacity {
		m.reports = append(m.reports[:0:0], m.reports[1:]...)
	}
	m.reports = append(m.reports, rep)
	return nil
}

func (m *Memory) Get(ctx context.Context, passID string) (*engine.Report, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, r := range m.reports {
		if r.PassID == passID {
			return r, nil
		}
	}
	return nil, notFound(passID)
}

func (m *Memory) List(ctx context.Context, graphHash string, limit int) ([]*engine.Report, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*engine.Report
	for i := len(m.reports) - 1; i >= 0; i-- {
		if limit > 0 && len(out) == limit {
			break
		}
		if r := m.reports[i]; graphHash == "" || r.GraphHash == graphHash {
			out = append(out, r)
		}
	}
	return out, nil
}

// Len returns the number of stored reports.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.reports)
}

func (m *Memory) Close(context.Context) error { return nil }

func validate(rep *engine.Report) error {
	if rep == nil || rep.PassID == "" {
		return errors.New(errors.ErrCodeInvalidInput, "report has no pass id")
	}
	return nil
}

func notFound(passID string) error {
	return errors.New(errors.ErrCodeNotFound, "no pass %q in history", passID)
}

var _ Store = (*Memory)(nil)
