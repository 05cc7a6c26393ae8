package value_test

import (
	"fmt"

	"github.com/matzehuels/blueprint/pkg/value"
)

func ExampleValue_Equal() {
	a := value.Image{Width: 1, Height: 1, Channels: 3, Data: []byte{1, 2, 3}}
	b := value.Image{Width: 1, Height: 1, Channels: 3, Data: []byte{1, 2, 3}}

	fmt.Println(a.Equal(b))
	fmt.Println(value.Int(1).Equal(value.Float(1)))
	// Output:
	// true
	// false
}

func ExampleDecode() {
	v, err := value.Decode(value.KindSize, []byte(`{"width":640,"height":480}`))
	if err != nil {
		panic(err)
	}
	fmt.Println(v.Kind(), v)
	// Output: size 640x480
}
