// Package geometry holds the 2-D angle and vector primitives shared by the
// region analyzers. Points are pixel positions in image coordinates (y grows
// downwards).
package geometry

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Point is a 2-D pixel position. Absent landmarks are represented by a nil
// *Point.
type Point = r2.Vec

// Pt is shorthand for constructing a Point.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Ptr returns a pointer to a new Point at (x, y).
func Ptr(x, y float64) *Point {
	p := Pt(x, y)
	return &p
}

// Vector returns the displacement from p1 to p2.
func Vector(p1, p2 Point) r2.Vec {
	return r2.Sub(p2, p1)
}

// Angle returns the direction of the vector p1->p2 in degrees, in (-180, 180].
func Angle(p1, p2 Point) float64 {
	return AngleOf(Vector(p1, p2))
}

// AngleOf returns atan2(v.Y, v.X) in degrees, in (-180, 180]. A negative
// zero Y on the negative x-axis maps to 180.
func AngleOf(v r2.Vec) float64 {
	d := Degrees(math.Atan2(v.Y, v.X))
	if d <= -180 {
		d += 360
	}
	return d
}

// Degrees converts radians to degrees.
func Degrees(rad float64) float64 {
	return rad * 180 / math.Pi
}
