package ops

import (
	"context"
	"testing"

	"github.com/matzehuels/blueprint/pkg/engine"
	"github.com/matzehuels/blueprint/pkg/errors"
	"github.com/matzehuels/blueprint/pkg/graph"
	"github.com/matzehuels/blueprint/pkg/value"
)

type builder struct {
	t   *testing.T
	reg *graph.Registry
	g   *graph.Graph
}

func newBuilder(t *testing.T) *builder {
	return &builder{t: t, reg: NewRegistry(), g: graph.New()}
}

func (b *builder) node(category, name string) *graph.Node {
	b.t.Helper()
	n, err := b.reg.New(graph.TypeTag{Category: category, Name: name})
	if err != nil {
		b.t.Fatalf("New(%s/%s): %v", category, name, err)
	}
	if err := b.g.AddNode(n); err != nil {
		b.t.Fatal(err)
	}
	return n
}

func (b *builder) link(from *graph.Node, out string, to *graph.Node, in string) {
	b.t.Helper()
	if _, err := b.g.AddLink(from.Output(out).ID, to.Input(in).ID); err != nil {
		b.t.Fatalf("AddLink(%s.%s, %s.%s): %v", from.Name, out, to.Name, in, err)
	}
}

func (b *builder) set(n *graph.Node, in string, v value.Value) {
	b.t.Helper()
	if err := n.Input(in).Store(v, nil); err != nil {
		b.t.Fatal(err)
	}
}

func (b *builder) run() *engine.Report {
	return engine.NewScheduler().Run(context.Background(), b.g)
}

func TestRegisterTwice(t *testing.T) {
	reg := NewRegistry()
	if err := Register(reg); !errors.Is(err, errors.ErrCodeDuplicateID) {
		t.Errorf("Register(again) error = %v, want DUPLICATE_ID", err)
	}
	if len(reg.Tags()) != len(builtins()) {
		t.Errorf("Tags() = %d, want %d", len(reg.Tags()), len(builtins()))
	}
}

func TestBuiltinsProduceFreshNodes(t *testing.T) {
	reg := NewRegistry()
	for _, tag := range reg.Tags() {
		a, err := reg.New(tag)
		if err != nil {
			t.Fatalf("New(%s): %v", tag, err)
		}
		b, _ := reg.New(tag)
		if a == b || (len(a.Outputs) > 0 && a.Outputs[0] == b.Outputs[0]) {
			t.Errorf("%s: factory shares nodes or pins between calls", tag)
		}
		if a.Behavior == nil {
			t.Errorf("%s: nil behavior", tag)
		}
	}
}

func TestSourcePlusConstant(t *testing.T) {
	b := newBuilder(t)
	src := b.node(CategoryConstant, "int")
	add := b.node(CategoryMath, "add")
	b.set(src, "value", value.Int(5))
	b.set(add, "b", value.Int(3))
	b.link(src, "out", add, "a")

	rep := b.run()

	if !rep.OK() {
		t.Fatalf("report = %s", rep)
	}
	if sum, err := graph.Get[value.Int](add.Output("sum")); err != nil || sum != 8 {
		t.Errorf("sum = %v, %v, want 8", sum, err)
	}
}

func TestArithmetic(t *testing.T) {
	tests := []struct {
		name     string
		op       string
		out      string
		a, b     value.Float
		want     value.Float
		wantCode errors.Code
	}{
		{"AddFloat", "add_float", "sum", 1.5, 2.25, 3.75, ""},
		{"Multiply", "multiply", "product", 3, -2, -6, ""},
		{"Divide", "divide", "quotient", 9, 2, 4.5, ""},
		{"DivideByZero", "divide", "quotient", 1, 0, 0, errors.ErrCodeNode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newBuilder(t)
			n := b.node(CategoryMath, tt.op)
			b.set(n, "a", tt.a)
			b.set(n, "b", tt.b)

			b.run()

			res := n.Status().Result
			if res.Code != tt.wantCode {
				t.Fatalf("result = %s, want code %q", res, tt.wantCode)
			}
			if tt.wantCode != "" {
				if n.Output(tt.out).HasValue() {
					t.Error("failed node wrote its output")
				}
				return
			}
			if got, _ := graph.Get[value.Float](n.Output(tt.out)); got != tt.want {
				t.Errorf("%s = %v, want %v", tt.out, got, tt.want)
			}
		})
	}
}

func TestSqrtNegative(t *testing.T) {
	b := newBuilder(t)
	n := b.node(CategoryMath, "sqrt")
	b.set(n, "x", value.Float(-4))
	b.run()
	if code := n.Status().Result.Code; code != errors.ErrCodeNode {
		t.Errorf("code = %q, want NODE_ERROR", code)
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		pattern  string
		want     value.Text
		wantCode errors.Code
	}{
		{"%d", "42", ""},
		{"value=%04d", "value=0042", ""},
		{"%d %d", "", errors.ErrCodeNode},
	}
	for _, tt := range tests {
		b := newBuilder(t)
		n := b.node(CategoryText, "format")
		b.set(n, "pattern", value.Text(tt.pattern))
		b.set(n, "value", value.Int(42))
		b.run()

		if code := n.Status().Result.Code; code != tt.wantCode {
			t.Errorf("format(%q) code = %q, want %q", tt.pattern, code, tt.wantCode)
			continue
		}
		if tt.wantCode == "" {
			if got, _ := graph.Get[value.Text](n.Output("text")); got != tt.want {
				t.Errorf("format(%q) = %q, want %q", tt.pattern, got, tt.want)
			}
		}
	}
}

func TestImagePipeline(t *testing.T) {
	b := newBuilder(t)
	blank := b.node(CategoryImage, "blank")
	inv := b.node(CategoryImage, "invert")
	sz := b.node(CategoryImage, "size")
	b.set(blank, "size", value.Size{Width: 4, Height: 2})
	b.set(blank, "fill", value.Int(10))
	b.link(blank, "image", inv, "image")
	b.link(inv, "image", sz, "image")

	rep := b.run()

	if !rep.OK() || len(rep.Steps) != 3 {
		t.Fatalf("report = %s", rep)
	}
	img, err := graph.Get[value.Image](inv.Output("image"))
	if err != nil {
		t.Fatal(err)
	}
	if len(img.Data) != 8 || img.Data[0] != 245 {
		t.Errorf("inverted = %v, want 8 bytes of 245", img.Data)
	}
	src, _ := graph.Get[value.Image](blank.Output("image"))
	if src.Data[0] != 10 {
		t.Errorf("invert modified its input buffer: %v", src.Data)
	}
	if got, _ := graph.Get[value.Size](sz.Output("size")); got != (value.Size{Width: 4, Height: 2}) {
		t.Errorf("size = %v, want 4x2", got)
	}
}

func TestBlankSizeLimit(t *testing.T) {
	tests := []struct {
		name     string
		size     value.Size
		channels int64
		wantCode errors.Code
	}{
		{"Small", value.Size{Width: 2, Height: 2}, 3, ""},
		{"ProductWrapsToZero", value.Size{Width: 1 << 32, Height: 1 << 32}, 1, errors.ErrCodeNode},
		{"ProductWrapsNegative", value.Size{Width: 1 << 40, Height: 1 << 23}, 1, errors.ErrCodeNode},
		{"ChannelsPushOverLimit", value.Size{Width: 8192, Height: 8192}, 4, errors.ErrCodeNode},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newBuilder(t)
			n := b.node(CategoryImage, "blank")
			b.set(n, "size", tt.size)
			b.set(n, "channels", value.Int(tt.channels))
			b.run()

			if code := n.Status().Result.Code; code != tt.wantCode {
				t.Fatalf("blank(%s x%d) code = %q, want %q", tt.size, tt.channels, code, tt.wantCode)
			}
			if tt.wantCode != "" {
				if n.Output("image").HasValue() {
					t.Error("a rejected size must not produce an image")
				}
				return
			}
			img, _ := graph.Get[value.Image](n.Output("image"))
			if want := tt.size.Width * tt.size.Height * int(tt.channels); len(img.Data) != want {
				t.Errorf("len(Data) = %d, want %d", len(img.Data), want)
			}
		})
	}
}

func TestImageMissingInput(t *testing.T) {
	b := newBuilder(t)
	inv := b.node(CategoryImage, "invert")
	b.run()
	res := inv.Status().Result
	if res.Code != errors.ErrCodePin || res.Source != int64(inv.Input("image").ID) {
		t.Errorf("result = %s, want PIN_ERROR on the image input", res)
	}
}

func TestDebugNodes(t *testing.T) {
	b := newBuilder(t)
	failing := b.node(CategoryDebug, "fail")
	consumer := b.node(CategoryMath, "add")
	boom := b.node(CategoryDebug, "panic")
	b.link(failing, "out", consumer, "a")

	rep := b.run()

	if code := failing.Status().Result.Code; code != errors.ErrCodeNode {
		t.Errorf("fail code = %q, want NODE_ERROR", code)
	}
	if code := boom.Status().Result.Code; code != errors.ErrCodeUnknown {
		t.Errorf("panic code = %q, want UNKNOWN_ERROR", code)
	}
	if consumer.Status().HasResult {
		t.Error("consumer of a failed node executed")
	}
	if len(rep.Tainted) != 1 || rep.Tainted[0] != consumer.ID {
		t.Errorf("Tainted = %v, want [%d]", rep.Tainted, consumer.ID)
	}
}
