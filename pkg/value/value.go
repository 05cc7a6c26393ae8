package value

import (
	"bytes"
	"fmt"
	"slices"
	"strconv"
)

// Value is a typed pin value. The interface is sealed; the concrete types in
// this package are the only implementations.
type Value interface {
	// Kind returns the kind this value satisfies.
	Kind() Kind
	// Equal reports structural equality with other. Values of different
	// kinds are never equal.
	Equal(other Value) bool
	// String returns a short human-readable rendering for display.
	String() string

	sealed()
}

// =============================================================================
// Scalars
// =============================================================================

// Int is a signed integer value.
type Int int64

// Float is a double precision value.
type Float float64

// Bool is a boolean value.
type Bool bool

// Text is a string value.
type Text string

func (Int) Kind() Kind   { return KindInt }
func (Float) Kind() Kind { return KindFloat }
func (Bool) Kind() Kind  { return KindBool }
func (Text) Kind() Kind  { return KindText }

func (v Int) Equal(o Value) bool {
	w, ok := o.(Int)
	return ok && v == w
}

func (v Float) Equal(o Value) bool {
	w, ok := o.(Float)
	return ok && v == w
}

func (v Bool) Equal(o Value) bool {
	w, ok := o.(Bool)
	return ok && v == w
}

func (v Text) Equal(o Value) bool {
	w, ok := o.(Text)
	return ok && v == w
}

func (v Int) String() string   { return strconv.FormatInt(int64(v), 10) }
func (v Float) String() string { return strconv.FormatFloat(float64(v), 'g', -1, 64) }
func (v Bool) String() string  { return strconv.FormatBool(bool(v)) }
func (v Text) String() string  { return string(v) }

// =============================================================================
// Image
// =============================================================================

// Image is an opaque pixel buffer. The engine never interprets Data; it only
// moves images between pins and compares them by content.
type Image struct {
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Channels int    `json:"channels"`
	Data     []byte `json:"data"`
}

func (Image) Kind() Kind { return KindImage }

// Equal compares dimensions and byte content, not buffer identity.
func (v Image) Equal(o Value) bool {
	w, ok := o.(Image)
	return ok &&
		v.Width == w.Width && v.Height == w.Height && v.Channels == w.Channels &&
		bytes.Equal(v.Data, w.Data)
}

func (v Image) String() string {
	return fmt.Sprintf("image %dx%dx%d", v.Width, v.Height, v.Channels)
}

// Empty reports whether the image holds no pixels.
func (v Image) Empty() bool { return v.Width == 0 || v.Height == 0 }

// Clone returns a deep copy that does not share Data with v.
func (v Image) Clone() Image {
	v.Data = slices.Clone(v.Data)
	return v
}

// =============================================================================
// Geometry
// =============================================================================

// Rect is an axis-aligned integer rectangle.
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Size is an integer width/height pair.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Point is a 2D point.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Color is an RGBA color with channels in [0, 1].
type Color struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
	A float64 `json:"a"`
}

// Contour is an ordered polyline.
type Contour []Point

// Contours is a set of contours.
type Contours []Contour

// Circle is a circle given by center and radius.
type Circle struct {
	Center Point   `json:"center"`
	Radius float64 `json:"radius"`
}

// Circles is a set of detected circles.
type Circles []Circle

func (Rect) Kind() Kind     { return KindRect }
func (Size) Kind() Kind     { return KindSize }
func (Point) Kind() Kind    { return KindPoint }
func (Color) Kind() Kind    { return KindColor }
func (Contour) Kind() Kind  { return KindContour }
func (Contours) Kind() Kind { return KindContours }
func (Circles) Kind() Kind  { return KindCircles }

func (v Rect) Equal(o Value) bool {
	w, ok := o.(Rect)
	return ok && v == w
}

func (v Size) Equal(o Value) bool {
	w, ok := o.(Size)
	return ok && v == w
}

func (v Point) Equal(o Value) bool {
	w, ok := o.(Point)
	return ok && v == w
}

func (v Color) Equal(o Value) bool {
	w, ok := o.(Color)
	return ok && v == w
}

func (v Contour) Equal(o Value) bool {
	w, ok := o.(Contour)
	return ok && slices.Equal(v, w)
}

func (v Contours) Equal(o Value) bool {
	w, ok := o.(Contours)
	return ok && slices.EqualFunc(v, w, func(a, b Contour) bool { return slices.Equal(a, b) })
}

func (v Circles) Equal(o Value) bool {
	w, ok := o.(Circles)
	return ok && slices.Equal(v, w)
}

func (v Rect) String() string {
	return fmt.Sprintf("rect(%d,%d %dx%d)", v.X, v.Y, v.Width, v.Height)
}
func (v Size) String() string     { return fmt.Sprintf("%dx%d", v.Width, v.Height) }
func (v Point) String() string    { return fmt.Sprintf("(%g,%g)", v.X, v.Y) }
func (v Color) String() string    { return fmt.Sprintf("rgba(%g,%g,%g,%g)", v.R, v.G, v.B, v.A) }
func (v Contour) String() string  { return fmt.Sprintf("contour[%d]", len(v)) }
func (v Contours) String() string { return fmt.Sprintf("contours[%d]", len(v)) }
func (v Circles) String() string  { return fmt.Sprintf("circles[%d]", len(v)) }

// =============================================================================
// Features
// =============================================================================

// KeyPoint is a detected feature location.
type KeyPoint struct {
	Pt       Point   `json:"pt"`
	Size     float64 `json:"size"`
	Angle    float64 `json:"angle"`
	Response float64 `json:"response"`
	Octave   int     `json:"octave"`
	ClassID  int     `json:"class_id"`
}

// KeyPoints is a set of key points.
type KeyPoints []KeyPoint

// Feature pairs detected key points with their descriptor buffer.
type Feature struct {
	KeyPoints   KeyPoints `json:"keypoints"`
	Descriptors Image     `json:"descriptors"`
}

// Match links a query descriptor to a train descriptor.
type Match struct {
	QueryIdx int     `json:"query_idx"`
	TrainIdx int     `json:"train_idx"`
	ImgIdx   int     `json:"img_idx"`
	Distance float64 `json:"distance"`
}

// Matches is a set of descriptor matches.
type Matches []Match

func (KeyPoint) Kind() Kind  { return KindKeyPoint }
func (KeyPoints) Kind() Kind { return KindKeyPoints }
func (Feature) Kind() Kind   { return KindFeature }
func (Match) Kind() Kind     { return KindMatch }
func (Matches) Kind() Kind   { return KindMatches }

func (v KeyPoint) Equal(o Value) bool {
	w, ok := o.(KeyPoint)
	return ok && v == w
}

func (v Match) Equal(o Value) bool {
	w, ok := o.(Match)
	return ok && v == w
}

func (v KeyPoints) Equal(o Value) bool {
	w, ok := o.(KeyPoints)
	return ok && slices.Equal(v, w)
}

func (v Feature) Equal(o Value) bool {
	w, ok := o.(Feature)
	return ok && slices.Equal(v.KeyPoints, w.KeyPoints) && v.Descriptors.Equal(w.Descriptors)
}

func (v Matches) Equal(o Value) bool {
	w, ok := o.(Matches)
	return ok && slices.Equal(v, w)
}

func (v KeyPoint) String() string  { return fmt.Sprintf("keypoint%s", v.Pt) }
func (v KeyPoints) String() string { return fmt.Sprintf("keypoints[%d]", len(v)) }
func (v Feature) String() string   { return fmt.Sprintf("feature[%d]", len(v.KeyPoints)) }
func (v Match) String() string     { return fmt.Sprintf("match(%d→%d)", v.QueryIdx, v.TrainIdx) }
func (v Matches) String() string   { return fmt.Sprintf("matches[%d]", len(v)) }

func (Int) sealed()       {}
func (Float) sealed()     {}
func (Bool) sealed()      {}
func (Text) sealed()      {}
func (Image) sealed()     {}
func (Rect) sealed()      {}
func (Size) sealed()      {}
func (Point) sealed()     {}
func (Color) sealed()     {}
func (Contour) sealed()   {}
func (Contours) sealed()  {}
func (Circles) sealed()   {}
func (KeyPoint) sealed()  {}
func (KeyPoints) sealed() {}
func (Feature) sealed()   {}
func (Match) sealed()     {}
func (Matches) sealed()   {}

// Equal reports whether a and b hold structurally equal values. Two nil
// values are equal; a nil and a non-nil value are not.
func Equal(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(b)
}

// Clone returns a copy of v that shares no memory with it. Scalars and
// fixed-size geometry are returned as is.
func Clone(v Value) Value {
	switch v := v.(type) {
	case Image:
		return v.Clone()
	case Contour:
		return slices.Clone(v)
	case Contours:
		if v == nil {
			return v
		}
		out := make(Contours, len(v))
		for i, c := range v {
			out[i] = slices.Clone(c)
		}
		return out
	case Circles:
		return slices.Clone(v)
	case KeyPoints:
		return slices.Clone(v)
	case Feature:
		return Feature{KeyPoints: slices.Clone(v.KeyPoints), Descriptors: v.Descriptors.Clone()}
	case Matches:
		return slices.Clone(v)
	}
	return v
}
