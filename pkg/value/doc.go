// Package value defines the closed set of typed values a blueprint pin can hold.
//
// # Overview
//
// Every pin on a node declares a [Kind] and stores at most one [Value] of that
// kind. The set of kinds is fixed: scalars ([Int], [Float], [Bool], [Text]),
// an opaque pixel buffer ([Image]), geometric structures ([Rect], [Size],
// [Point], [Color], [Contour], [Contours], [Circles]) and feature-detection
// collections ([KeyPoint], [KeyPoints], [Feature], [Match], [Matches]).
//
// [Value] is a sealed interface: only the types in this package implement it,
// so a type switch over a Value is exhaustive.
//
// # Equality
//
// [Value.Equal] is structural. Two images are equal when their dimensions and
// byte content match, regardless of whether they share the same backing array.
// Pins use this to decide whether a write is a change worth announcing.
//
// # Serialization
//
// [Encode] and [Decode] convert values to and from JSON. Decode needs the
// declared kind because the encoded form carries no type tag; the kind lives
// on the pin.
package value
