package ops

import (
	"bytes"

	"github.com/matzehuels/blueprint/pkg/graph"
	"github.com/matzehuels/blueprint/pkg/value"
)

// maxImageBytes bounds buffers created by image/blank.
const maxImageBytes = 64 << 20

func images() []entry {
	return []entry{
		{tag(CategoryImage, "blank"), blank},
		{tag(CategoryImage, "invert"), invert},
		{tag(CategoryImage, "size"), size},
	}
}

// blank creates an image of the given size filled with one byte value.
func blank() *graph.Node {
	return graph.NewNode(graph.TypeTag{}, "",
		pins(
			graph.NewInput("size", value.KindSize, value.Size{Width: 64, Height: 64}),
			graph.NewInput("channels", value.KindInt, value.Int(1)),
			graph.NewInput("fill", value.KindInt, value.Int(0)),
		),
		pins(graph.NewOutput("image", value.KindImage)),
		func(v graph.View, n *graph.Node) graph.Result {
			sz, err := input[value.Size](v, n, "size")
			if err != nil {
				return graph.FromError(n.ID, err)
			}
			ch, err := input[value.Int](v, n, "channels")
			if err != nil {
				return graph.FromError(n.ID, err)
			}
			fill, err := input[value.Int](v, n, "fill")
			if err != nil {
				return graph.FromError(n.ID, err)
			}
			switch {
			case sz.Width <= 0 || sz.Height <= 0:
				return graph.NodeError(n.ID, "invalid size %s", sz)
			case ch != 1 && ch != 3 && ch != 4:
				return graph.NodeError(n.ID, "unsupported channel count %d", ch)
			case fill < 0 || fill > 255:
				return graph.NodeError(n.ID, "fill %d out of range [0, 255]", fill)
			}
			if sz.Width > maxImageBytes/sz.Height/int(ch) {
				return graph.NodeError(n.ID, "image %sx%d exceeds %d bytes", sz, ch, maxImageBytes)
			}
			total := sz.Width * sz.Height * int(ch)
			return output(n, "image", value.Image{
				Width:    sz.Width,
				Height:   sz.Height,
				Channels: int(ch),
				Data:     bytes.Repeat([]byte{byte(fill)}, total),
			})
		})
}

func invert() *graph.Node {
	return graph.NewNode(graph.TypeTag{}, "",
		pins(graph.NewInput("image", value.KindImage, nil)),
		pins(graph.NewOutput("image", value.KindImage)),
		func(v graph.View, n *graph.Node) graph.Result {
			img, err := input[value.Image](v, n, "image")
			if err != nil {
				return graph.FromError(n.ID, err)
			}
			if img.Empty() {
				return graph.NodeError(n.ID, "empty image")
			}
			out := img.Clone()
			for i, b := range out.Data {
				out.Data[i] = 255 - b
			}
			return output(n, "image", out)
		})
}

func size() *graph.Node {
	return graph.NewNode(graph.TypeTag{}, "",
		pins(graph.NewInput("image", value.KindImage, nil)),
		pins(graph.NewOutput("size", value.KindSize)),
		func(v graph.View, n *graph.Node) graph.Result {
			img, err := input[value.Image](v, n, "image")
			if err != nil {
				return graph.FromError(n.ID, err)
			}
			return output(n, "size", value.Size{Width: img.Width, Height: img.Height})
		})
}
