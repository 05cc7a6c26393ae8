package graph

import (
	"slices"
	"testing"

	"github.com/matzehuels/blueprint/pkg/errors"
	"github.com/matzehuels/blueprint/pkg/value"
)

var testTag = TypeTag{Category: "test", Name: "node"}

func intSource(name string) *Node {
	return NewNode(testTag, name, nil, []*Pin{NewOutput("out", value.KindInt)}, nil)
}

func intSink(name string) *Node {
	return NewNode(testTag, name, []*Pin{NewInput("in", value.KindInt, nil)}, []*Pin{NewOutput("out", value.KindInt)}, nil)
}

func mustAdd(t *testing.T, g *Graph, nodes ...*Node) {
	t.Helper()
	for _, n := range nodes {
		if err := g.AddNode(n); err != nil {
			t.Fatalf("AddNode(%s) error: %v", n.Name, err)
		}
	}
}

func mustLink(t *testing.T, g *Graph, from, to *Pin) LinkID {
	t.Helper()
	id, err := g.AddLink(from.ID, to.ID)
	if err != nil {
		t.Fatalf("AddLink(%d, %d) error: %v", from.ID, to.ID, err)
	}
	return id
}

func TestAddNodeAssignsIDs(t *testing.T) {
	g := New()
	a, b := intSource("a"), intSink("b")
	mustAdd(t, g, a, b)

	ids := []int64{int64(a.ID), int64(a.Outputs[0].ID), int64(b.ID), int64(b.Inputs[0].ID), int64(b.Outputs[0].ID)}
	want := []int64{1, 2, 3, 4, 5}
	if !slices.Equal(ids, want) {
		t.Errorf("ids = %v, want %v", ids, want)
	}
	if !a.Built() || !b.Built() {
		t.Error("Built() = false after AddNode")
	}
	if p := b.Inputs[0]; p.Node != b.ID || p.Role != RoleInput {
		t.Errorf("input pin owner/role = %d/%s, want %d/input", p.Node, p.Role, b.ID)
	}
	if p := b.Outputs[0]; p.Node != b.ID || p.Role != RoleOutput {
		t.Errorf("output pin owner/role = %d/%s, want %d/output", p.Node, p.Role, b.ID)
	}
}

func TestAddNodePresetIDs(t *testing.T) {
	tests := []struct {
		name    string
		build   func() *Node
		wantErr errors.Code
	}{
		{
			name: "Fresh",
			build: func() *Node {
				n := intSource("x")
				n.ID, n.Outputs[0].ID = 10, 11
				return n
			},
		},
		{
			name: "NodeCollidesWithPin",
			build: func() *Node {
				n := intSource("x")
				n.ID = 2
				return n
			},
			wantErr: errors.ErrCodeDuplicateID,
		},
		{
			name: "PinCollidesWithinNode",
			build: func() *Node {
				n := intSink("x")
				n.ID, n.Inputs[0].ID, n.Outputs[0].ID = 20, 21, 21
				return n
			},
			wantErr: errors.ErrCodeDuplicateID,
		},
		{
			name: "InvalidKind",
			build: func() *Node {
				return NewNode(testTag, "x", nil, []*Pin{NewOutput("out", value.KindInvalid)}, nil)
			},
			wantErr: errors.ErrCodeInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := New()
			mustAdd(t, g, intSource("a")) // uses IDs 1 and 2

			n := tt.build()
			err := g.AddNode(n)
			if got := errors.GetCode(err); got != tt.wantErr {
				t.Fatalf("AddNode() code = %q, want %q (err %v)", got, tt.wantErr, err)
			}
			if err != nil {
				if g.NodeCount() != 1 {
					t.Errorf("NodeCount() = %d, want 1 after failed add", g.NodeCount())
				}
				return
			}
			next := intSource("b")
			mustAdd(t, g, next)
			if next.ID <= 11 {
				t.Errorf("next ID = %d, want > 11", next.ID)
			}
		})
	}
}

func TestAddLink(t *testing.T) {
	g := New()
	a, b, c := intSource("a"), intSink("b"), intSink("c")
	txt := NewNode(testTag, "t", []*Pin{NewInput("in", value.KindText, nil)}, nil, nil)
	mustAdd(t, g, a, b, c, txt)
	mustLink(t, g, a.Outputs[0], b.Inputs[0])

	tests := []struct {
		name     string
		from, to PinID
		want     errors.Code
	}{
		{"FanOut", a.Outputs[0].ID, c.Inputs[0].ID, ""},
		{"UnknownSource", 999, c.Inputs[0].ID, errors.ErrCodeNotFound},
		{"UnknownTarget", a.Outputs[0].ID, 999, errors.ErrCodeNotFound},
		{"InputAsSource", b.Inputs[0].ID, c.Inputs[0].ID, errors.ErrCodeInvalidLink},
		{"OutputAsTarget", a.Outputs[0].ID, b.Outputs[0].ID, errors.ErrCodeInvalidLink},
		{"KindMismatch", a.Outputs[0].ID, txt.Inputs[0].ID, errors.ErrCodeTypeMismatch},
		{"InputOccupied", c.Outputs[0].ID, b.Inputs[0].ID, errors.ErrCodeInvalidLink},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := g.AddLink(tt.from, tt.to)
			if got := errors.GetCode(err); got != tt.want {
				t.Errorf("AddLink() code = %q, want %q (err %v)", got, tt.want, err)
			}
		})
	}

	if got := len(g.PinLinks(a.Outputs[0].ID)); got != 2 {
		t.Errorf("PinLinks(a.out) = %d links, want 2", got)
	}
}

func TestAddLinkWithIDDuplicate(t *testing.T) {
	g := New()
	a, b := intSource("a"), intSink("b")
	mustAdd(t, g, a, b)

	_, err := g.AddLinkWithID(LinkID(a.ID), a.Outputs[0].ID, b.Inputs[0].ID)
	if !errors.Is(err, errors.ErrCodeDuplicateID) {
		t.Fatalf("AddLinkWithID(node id) error = %v, want DUPLICATE_ID", err)
	}
	id, err := g.AddLinkWithID(50, a.Outputs[0].ID, b.Inputs[0].ID)
	if err != nil || id != 50 {
		t.Fatalf("AddLinkWithID(50) = %d, %v", id, err)
	}
	if l, ok := g.FindLink(50); !ok || l.From != a.Outputs[0].ID {
		t.Errorf("FindLink(50) = %+v, %v", l, ok)
	}
}

func TestRemoveNodeCascades(t *testing.T) {
	g := New()
	a, b, c := intSource("a"), intSink("b"), intSink("c")
	mustAdd(t, g, a, b, c)
	l1 := mustLink(t, g, a.Outputs[0], b.Inputs[0])
	l2 := mustLink(t, g, b.Outputs[0], c.Inputs[0])

	removed, err := g.RemoveNode(b.ID)
	if err != nil {
		t.Fatalf("RemoveNode() error: %v", err)
	}
	slices.Sort(removed)
	if want := []LinkID{l1, l2}; !slices.Equal(removed, want) {
		t.Errorf("RemoveNode() removed = %v, want %v", removed, want)
	}
	if g.LinkCount() != 0 {
		t.Errorf("LinkCount() = %d, want 0", g.LinkCount())
	}
	for _, p := range []PinID{a.Outputs[0].ID, b.Inputs[0].ID, c.Inputs[0].ID} {
		if links := g.PinLinks(p); len(links) != 0 {
			t.Errorf("PinLinks(%d) = %v, want empty", p, links)
		}
		if g.IsPinLinked(p) {
			t.Errorf("IsPinLinked(%d) = true, want false", p)
		}
	}
	if _, ok := g.FindNode(b.ID); ok {
		t.Error("FindNode(b) found removed node")
	}
	if _, ok := g.FindPin(b.Inputs[0].ID); ok {
		t.Error("FindPin(b.in) found pin of removed node")
	}
	if _, err := g.RemoveNode(b.ID); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("RemoveNode(again) error = %v, want NOT_FOUND", err)
	}
}

func TestRemoveLink(t *testing.T) {
	g := New()
	a, b := intSource("a"), intSink("b")
	mustAdd(t, g, a, b)
	id := mustLink(t, g, a.Outputs[0], b.Inputs[0])

	if err := g.RemoveLink(id); err != nil {
		t.Fatalf("RemoveLink() error: %v", err)
	}
	if g.IsPinLinked(b.Inputs[0].ID) {
		t.Error("IsPinLinked() = true after RemoveLink")
	}
	if err := g.RemoveLink(id); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("RemoveLink(again) error = %v, want NOT_FOUND", err)
	}
}

func TestFindMissing(t *testing.T) {
	g := New()
	if _, ok := g.FindNode(1); ok {
		t.Error("FindNode(1) ok on empty graph")
	}
	if _, ok := g.FindPin(1); ok {
		t.Error("FindPin(1) ok on empty graph")
	}
	if _, ok := g.FindLink(1); ok {
		t.Error("FindLink(1) ok on empty graph")
	}
}

func TestSnapshotIsolation(t *testing.T) {
	g := New()
	a, b := intSource("a"), intSink("b")
	mustAdd(t, g, a, b)
	mustLink(t, g, a.Outputs[0], b.Inputs[0])

	snap := g.Snapshot()
	if _, err := g.RemoveNode(a.ID); err != nil {
		t.Fatal(err)
	}
	mustAdd(t, g, intSource("c"))

	if snap.Len() != 2 {
		t.Errorf("snapshot Len() = %d, want 2", snap.Len())
	}
	if !snap.IsPinLinked(b.Inputs[0].ID) {
		t.Error("snapshot lost link after graph edit")
	}
	if g.NodeCount() != 2 || g.LinkCount() != 0 {
		t.Errorf("graph = %d nodes/%d links, want 2/0", g.NodeCount(), g.LinkCount())
	}
}

func TestInput(t *testing.T) {
	g := New()
	a := intSource("a")
	b := intSink("b")
	c := NewNode(testTag, "c", []*Pin{NewInput("in", value.KindInt, value.Int(3))}, nil, nil)
	mustAdd(t, g, a, b, c)
	link := mustLink(t, g, a.Outputs[0], b.Inputs[0])

	// Unlinked input with a default.
	if v, err := Input[value.Int](g, c.Inputs[0]); err != nil || v != 3 {
		t.Errorf("Input(default) = %v, %v, want 3", v, err)
	}

	// Linked input with a valueless source.
	_, err := Input[value.Int](g, b.Inputs[0])
	if !errors.Is(err, errors.ErrCodePin) {
		t.Errorf("Input(valueless source) error = %v, want PIN_ERROR", err)
	}

	// Linked input follows the source.
	if err := Set(a.Outputs[0], value.Int(5)); err != nil {
		t.Fatal(err)
	}
	if v, err := Input[value.Int](g, b.Inputs[0]); err != nil || v != 5 {
		t.Errorf("Input(linked) = %v, %v, want 5", v, err)
	}

	// Wrong type.
	if _, err := Input[value.Float](g, b.Inputs[0]); !errors.Is(err, errors.ErrCodeTypeMismatch) {
		t.Errorf("Input[Float] error = %v, want TYPE_MISMATCH", err)
	}

	// Link whose source pin vanished.
	snap := g.Snapshot()
	delete(snap.pinIndex, a.Outputs[0].ID)
	_, err = Input[value.Int](snap, b.Inputs[0])
	if !errors.Is(err, errors.ErrCodeLink) {
		t.Fatalf("Input(dangling) error = %v, want LINK_ERROR", err)
	}
	if res := FromError(b.ID, err); res.Code != errors.ErrCodeLink || res.Source != int64(link) {
		t.Errorf("FromError() = %+v, want LINK_ERROR on link %d", res, link)
	}
}

func TestAnalyze(t *testing.T) {
	g := New()
	a, b, c := intSource("a"), intSink("b"), intSink("c")
	add := NewNode(testTag, "add", []*Pin{
		NewInput("x", value.KindInt, nil),
		NewInput("y", value.KindInt, nil),
	}, nil, nil)
	mustAdd(t, g, a, b, c, add)
	mustLink(t, g, a.Outputs[0], b.Inputs[0])
	mustLink(t, g, b.Outputs[0], c.Inputs[0])
	mustLink(t, g, a.Outputs[0], add.Inputs[0])
	mustLink(t, g, a.Outputs[0], add.Inputs[1])

	d := Analyze(g)

	tests := []struct {
		name string
		got  []NodeID
		want []NodeID
	}{
		{"Sources", d.Sources(), []NodeID{a.ID}},
		{"Predecessors(add)", d.Predecessors(add.ID), []NodeID{a.ID}},
		{"Successors(a)", d.Successors(a.ID), []NodeID{b.ID, add.ID}},
		{"Descendants(a)", d.Descendants(a.ID), []NodeID{b.ID, c.ID, add.ID}},
		{"Descendants(c)", d.Descendants(c.ID), []NodeID{}},
	}
	for _, tt := range tests {
		if !slices.Equal(tt.got, tt.want) {
			t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
		}
	}
	if got := d.InDegree(add.ID); got != 2 {
		t.Errorf("InDegree(add) = %d, want 2", got)
	}
}
