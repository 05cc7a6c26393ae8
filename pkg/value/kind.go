package value

import "fmt"

// Kind identifies the type of value a pin declares.
type Kind uint8

// Value kinds. KindInvalid is the zero value and never declared by a pin.
const (
	KindInvalid Kind = iota
	KindInt
	KindFloat
	KindBool
	KindText
	KindImage
	KindRect
	KindSize
	KindPoint
	KindColor
	KindContour
	KindContours
	KindKeyPoint
	KindKeyPoints
	KindFeature
	KindMatch
	KindMatches
	KindCircles
)

var kindNames = [...]string{
	KindInvalid:   "invalid",
	KindInt:       "int",
	KindFloat:     "float",
	KindBool:      "bool",
	KindText:      "text",
	KindImage:     "image",
	KindRect:      "rect",
	KindSize:      "size",
	KindPoint:     "point",
	KindColor:     "color",
	KindContour:   "contour",
	KindContours:  "contours",
	KindKeyPoint:  "keypoint",
	KindKeyPoints: "keypoints",
	KindFeature:   "feature",
	KindMatch:     "match",
	KindMatches:   "matches",
	KindCircles:   "circles",
}

// Kinds returns every valid kind in declaration order.
func Kinds() []Kind {
	kinds := make([]Kind, 0, len(kindNames)-1)
	for k := KindInt; int(k) < len(kindNames); k++ {
		kinds = append(kinds, k)
	}
	return kinds
}

// String returns the persistence name of the kind (e.g. "int", "image").
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", k)
}

// Valid reports whether k is one of the declared kinds.
func (k Kind) Valid() bool {
	return k > KindInvalid && int(k) < len(kindNames)
}

// ParseKind returns the kind with the given persistence name.
func ParseKind(name string) (Kind, error) {
	for k := KindInt; int(k) < len(kindNames); k++ {
		if kindNames[k] == name {
			return k, nil
		}
	}
	return KindInvalid, fmt.Errorf("unknown value kind %q", name)
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("cannot marshal %s", k)
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
