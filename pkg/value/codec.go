package value

import (
	"encoding/json"
	"fmt"
)

// Zero returns the zero value of kind k, or nil if k is not a valid kind.
func Zero(k Kind) Value {
	switch k {
	case KindInt:
		return Int(0)
	case KindFloat:
		return Float(0)
	case KindBool:
		return Bool(false)
	case KindText:
		return Text("")
	case KindImage:
		return Image{}
	case KindRect:
		return Rect{}
	case KindSize:
		return Size{}
	case KindPoint:
		return Point{}
	case KindColor:
		return Color{}
	case KindContour:
		return Contour{}
	case KindContours:
		return Contours{}
	case KindKeyPoint:
		return KeyPoint{}
	case KindKeyPoints:
		return KeyPoints{}
	case KindFeature:
		return Feature{}
	case KindMatch:
		return Match{}
	case KindMatches:
		return Matches{}
	case KindCircles:
		return Circles{}
	}
	return nil
}

// Encode marshals v to JSON. The encoding carries no kind tag.
func Encode(v Value) (json.RawMessage, error) {
	if v == nil {
		return nil, fmt.Errorf("encode: nil value")
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", v.Kind(), err)
	}
	return data, nil
}

// Decode unmarshals raw as a value of kind k.
func Decode(k Kind, raw json.RawMessage) (Value, error) {
	var (
		v   Value
		err error
	)
	switch k {
	case KindInt:
		v, err = decodeAs[Int](raw)
	case KindFloat:
		v, err = decodeAs[Float](raw)
	case KindBool:
		v, err = decodeAs[Bool](raw)
	case KindText:
		v, err = decodeAs[Text](raw)
	case KindImage:
		v, err = decodeAs[Image](raw)
	case KindRect:
		v, err = decodeAs[Rect](raw)
	case KindSize:
		v, err = decodeAs[Size](raw)
	case KindPoint:
		v, err = decodeAs[Point](raw)
	case KindColor:
		v, err = decodeAs[Color](raw)
	case KindContour:
		v, err = decodeAs[Contour](raw)
	case KindContours:
		v, err = decodeAs[Contours](raw)
	case KindKeyPoint:
		v, err = decodeAs[KeyPoint](raw)
	case KindKeyPoints:
		v, err = decodeAs[KeyPoints](raw)
	case KindFeature:
		v, err = decodeAs[Feature](raw)
	case KindMatch:
		v, err = decodeAs[Match](raw)
	case KindMatches:
		v, err = decodeAs[Matches](raw)
	case KindCircles:
		v, err = decodeAs[Circles](raw)
	default:
		return nil, fmt.Errorf("decode: invalid kind %s", k)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", k, err)
	}
	return v, nil
}

func decodeAs[T Value](raw json.RawMessage) (T, error) {
	var v T
	err := json.Unmarshal(raw, &v)
	return v, err
}
