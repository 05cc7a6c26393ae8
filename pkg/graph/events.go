package graph

import (
	"sync/atomic"

	"github.com/matzehuels/blueprint/pkg/value"
)

// DefaultEventCapacity is the event queue size used by [New].
const DefaultEventCapacity = 256

// Event records a pin value change.
type Event struct {
	Pin  PinID
	Node NodeID
	Old  value.Value // nil if the pin was valueless
	New  value.Value
}

// Events is a bounded queue of value-change events. Producers never block:
// when the queue is full the event is counted as dropped. The owning context
// drains it synchronously, which preserves ordering.
type Events struct {
	ch      chan Event
	dropped atomic.Int64
}

// NewEvents returns a queue holding at most capacity events.
func NewEvents(capacity int) *Events {
	if capacity <= 0 {
		capacity = DefaultEventCapacity
	}
	return &Events{ch: make(chan Event, capacity)}
}

func (q *Events) push(e Event) {
	select {
	case q.ch <- e:
	default:
		q.dropped.Add(1)
	}
}

// Drain calls fn for every queued event in order and returns how many were
// delivered. Events pushed while draining are delivered too.
func (q *Events) Drain(fn func(Event)) int {
	n := 0
	for {
		select {
		case e := <-q.ch:
			if fn != nil {
				fn(e)
			}
			n++
		default:
			return n
		}
	}
}

// Len returns the number of queued events.
func (q *Events) Len() int { return len(q.ch) }

// Dropped returns how many events were discarded because the queue was full.
func (q *Events) Dropped() int64 { return q.dropped.Load() }
