package graph

import (
	"fmt"
	"sync"

	"github.com/matzehuels/blueprint/pkg/errors"
	"github.com/matzehuels/blueprint/pkg/value"
)

// PinID identifies a pin within its graph.
type PinID int64

// Role tells whether a pin consumes or produces a value.
type Role uint8

const (
	RoleInput Role = iota + 1
	RoleOutput
)

func (r Role) String() string {
	switch r {
	case RoleInput:
		return "input"
	case RoleOutput:
		return "output"
	}
	return fmt.Sprintf("role(%d)", r)
}

// MarshalText implements encoding.TextMarshaler.
func (r Role) MarshalText() ([]byte, error) {
	switch r {
	case RoleInput, RoleOutput:
		return []byte(r.String()), nil
	}
	return nil, fmt.Errorf("cannot marshal %s", r)
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Role) UnmarshalText(text []byte) error {
	switch string(text) {
	case "input":
		*r = RoleInput
	case "output":
		*r = RoleOutput
	default:
		return fmt.Errorf("unknown pin role %q", text)
	}
	return nil
}

// Pin is a typed, named slot on a node.
//
// ID, Node and Role are assigned when the owning node is added to a graph.
// The stored value is guarded by the pin's own lock and always matches Kind.
type Pin struct {
	ID   PinID
	Node NodeID
	Name string
	Kind value.Kind
	Role Role

	mu      sync.RWMutex
	val     value.Value
	refresh bool
	notify  func(Event)
}

// NewInput declares an input pin. def is the value used while the pin is
// unlinked and may be nil.
func NewInput(name string, kind value.Kind, def value.Value) *Pin {
	p := &Pin{Name: name, Kind: kind, Role: RoleInput}
	if def != nil && def.Kind() == kind {
		p.val = value.Clone(def)
	}
	return p
}

// NewOutput declares an output pin without a value.
func NewOutput(name string, kind value.Kind) *Pin {
	return &Pin{Name: name, Kind: kind, Role: RoleOutput}
}

// Value returns a copy of the current value, or nil if the pin is
// valueless. Editing a returned image or slice never changes the pin.
func (p *Pin) Value() value.Value {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.val == nil {
		return nil
	}
	return value.Clone(p.val)
}

// HasValue reports whether the pin currently holds a value.
func (p *Pin) HasValue() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.val != nil
}


// NeedsRefresh reports whether the value changed since the last
// ClearRefresh. UI collaborators use it to re-upload previews.
func (p *Pin) NeedsRefresh() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.refresh
}

// ClearRefresh resets the visual-refresh flag.
func (p *Pin) ClearRefresh() {
	p.mu.Lock()
	p.refresh = false
	p.mu.Unlock()
}

// Store writes v to the pin after checking its kind. It is the untyped
// counterpart of [SetThen], used by persistence and the HTTP API where the
// concrete type is only known at runtime.
func (p *Pin) Store(v value.Value, then func()) error {
	if v == nil {
		return errors.New(errors.ErrCodeInvalidInput, "pin %q: nil value", p.Name).WithSource(int64(p.ID))
	}
	if v.Kind() != p.Kind {
		return mismatch(p, v.Kind())
	}
	p.store(v, then)
	return nil
}

// reset drops the current value without notification.
func (p *Pin) reset() {
	p.mu.Lock()
	p.val = nil
	p.mu.Unlock()
}

// store keeps its own copy of v so later edits to the caller's buffers are
// seen as changes by the next store.
func (p *Pin) store(v value.Value, then func()) bool {
	v = value.Clone(v)
	p.mu.Lock()
	old := p.val
	p.val = v
	changed := old == nil || !old.Equal(v)
	if changed {
		p.refresh = true
	}
	notify := p.notify
	p.mu.Unlock()

	if !changed {
		return false
	}
	if notify != nil {
		notify(Event{Pin: p.ID, Node: p.Node, Old: old, New: value.Clone(v)})
	}
	if then != nil {
		then()
	}
	return true
}

// Get returns the pin's value as T. It fails with TYPE_MISMATCH when T is not
// the pin's declared kind and with PIN_ERROR when the pin is valueless.
func Get[T value.Value](p *Pin) (T, error) {
	var zero T
	k, ok := kindOf[T]()
	if !ok || k != p.Kind {
		return zero, mismatch(p, k)
	}
	v := p.Value()
	if v == nil {
		return zero, errors.New(errors.ErrCodePin, "pin %q has no value", p.Name).WithSource(int64(p.ID))
	}
	t, ok := v.(T)
	if !ok {
		return zero, mismatch(p, v.Kind())
	}
	return t, nil
}

// Set writes v to the pin. See [SetThen].
func Set[T value.Value](p *Pin, v T) error {
	return SetThen(p, v, nil)
}

// SetThen writes v to the pin when T matches the declared kind. The value is
// stored unconditionally; if it differs from the previous value (or the pin
// was valueless) the pin is marked for refresh, a change event is emitted and
// then, if non-nil, is called synchronously. A mismatched T leaves the pin
// untouched.
func SetThen[T value.Value](p *Pin, v T, then func()) error {
	k, ok := kindOf[T]()
	if !ok || k != p.Kind {
		return mismatch(p, k)
	}
	p.store(v, then)
	return nil
}

func kindOf[T value.Value]() (value.Kind, bool) {
	var zero T
	vv, ok := any(zero).(value.Value)
	if !ok {
		return value.KindInvalid, false
	}
	return vv.Kind(), true
}

func mismatch(p *Pin, got value.Kind) error {
	return errors.New(errors.ErrCodeTypeMismatch, "pin %q holds %s, not %s", p.Name, p.Kind, got).
		WithSource(int64(p.ID))
}
