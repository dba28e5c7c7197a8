package geom

import (
	"math"

	"honnef.co/go/curve"
)

// Point is a 2D coordinate. It converts freely to and from curve.Point.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Curve returns p as a curve.Point.
func (p Point) Curve() curve.Point {
	return curve.Point(p)
}

// Add treats o as a vector.
func (p Point) Add(o Point) Point {
	return Point(curve.Point(p).Translate(curve.Vec2(o)))
}

// Sub returns the vector from o to p.
func (p Point) Sub(o Point) Point {
	return Point(curve.Point(p).Sub(curve.Point(o)))
}

func (p Point) Mul(s float64) Point {
	return Point(curve.Vec2(p).Mul(s))
}

// Mid returns the midpoint between p and o.
func (p Point) Mid(o Point) Point {
	return Point(curve.Point(p).Midpoint(curve.Point(o)))
}

// Lerp linearly interpolates from p to o.
func (p Point) Lerp(o Point, t float64) Point {
	return Point(curve.Point(p).Lerp(curve.Point(o), t))
}

// Cross returns the z component of the cross product of p and o as vectors.
func (p Point) Cross(o Point) float64 {
	return curve.Vec2(p).Cross(curve.Vec2(o))
}

func (p Point) DistanceSquared(o Point) float64 {
	return curve.Point(p).DistanceSquared(curve.Point(o))
}

func (p Point) Distance(o Point) float64 {
	return curve.Point(p).Distance(curve.Point(o))
}

// ApproxEqual reports whether p and o differ by at most eps on each axis.
func (p Point) ApproxEqual(o Point, eps float64) bool {
	return math.Abs(p.X-o.X) <= eps && math.Abs(p.Y-o.Y) <= eps
}

// DistanceToSegment returns the distance from p to the segment a-b.
func (p Point) DistanceToSegment(a, b Point) float64 {
	d2, _ := curve.Line{P0: curve.Point(a), P1: curve.Point(b)}.Nearest(curve.Point(p), 0)
	return math.Sqrt(d2)
}

func orientation(a, b, c Point) float64 {
	return b.Sub(a).Cross(c.Sub(a))
}

// SegmentsCross reports whether segments p0-p1 and q0-q1 properly cross.
// Segments that only touch at an endpoint or overlap collinearly do not cross.
func SegmentsCross(p0, p1, q0, q1 Point) bool {
	d1 := orientation(q0, q1, p0)
	d2 := orientation(q0, q1, p1)
	d3 := orientation(p0, p1, q0)
	d4 := orientation(p0, p1, q1)
	return ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0))
}

// SegmentsIntersect reports whether segments p0-p1 and q0-q1 share any point,
// touching endpoints included.
func SegmentsIntersect(p0, p1, q0, q1 Point) bool {
	if SegmentsCross(p0, p1, q0, q1) {
		return true
	}
	return onSegment(p0, p1, q0) || onSegment(p0, p1, q1) ||
		onSegment(q0, q1, p0) || onSegment(q0, q1, p1)
}

func onSegment(a, b, p Point) bool {
	if orientation(a, b, p) != 0 {
		return false
	}
	return p.X >= min(a.X, b.X) && p.X <= max(a.X, b.X) &&
		p.Y >= min(a.Y, b.Y) && p.Y <= max(a.Y, b.Y)
}
