package geometry

import (
	"math"

	"honnef.co/go/curve"

	"github.com/inamate/cellengine/backend-go/internal/geom"
)

// arclenAccuracy bounds the error of Bezier.Length in view units.
const arclenAccuracy = 1e-3

// Bezier is a cubic Bezier segment.
type Bezier struct {
	c curve.CubicBez
}

// NewBezier returns the cubic from p0 to p1 with handles c0 and c1.
func NewBezier(p0, c0, c1, p1 geom.Point) Bezier {
	return Bezier{curve.CubicBez{P0: p0.Curve(), P1: c0.Curve(), P2: c1.Curve(), P3: p1.Curve()}}
}

// QuadraticBezier returns the cubic equivalent of the quadratic curve p0-cp-p1.
func QuadraticBezier(p0, cp, p1 geom.Point) Bezier {
	return Bezier{curve.QuadBez{P0: p0.Curve(), P1: cp.Curve(), P2: p1.Curve()}.Raise()}
}

// StraightBezier returns a cubic that traces the segment p0-p1.
func StraightBezier(p0, p1 geom.Point) Bezier {
	return NewBezier(p0, p0.Lerp(p1, 1.0/3.0), p0.Lerp(p1, 2.0/3.0), p1)
}

// Cubic returns the underlying curve.
func (b Bezier) Cubic() curve.CubicBez {
	return b.c
}

func (b Bezier) Start() geom.Point {
	return geom.Point(b.c.P0)
}

func (b Bezier) End() geom.Point {
	return geom.Point(b.c.P3)
}

// Handles returns the two inner control points.
func (b Bezier) Handles() (geom.Point, geom.Point) {
	return geom.Point(b.c.P1), geom.Point(b.c.P2)
}

// Position evaluates the curve at t in [0, 1].
func (b Bezier) Position(t float64) geom.Point {
	return geom.Point(b.c.Eval(t))
}

// Split divides the curve at t. Both halves share the point at t exactly.
func (b Bezier) Split(t float64) (Bezier, Bezier) {
	left, right := b.c.Subsegment(0, t), b.c.Subsegment(t, 1)
	left.P0, right.P3 = b.c.P0, b.c.P3
	right.P0 = left.P3
	return Bezier{left}, Bezier{right}
}

// MidSplit divides the curve at t = 0.5.
func (b Bezier) MidSplit() (Bezier, Bezier) {
	left, right := b.c.Subdivide()
	return Bezier{left}, Bezier{right}
}

// Bounds returns the tight bounding box of the curve.
func (b Bezier) Bounds() geom.Rect {
	return geom.RectFromCurve(b.c.BoundingBox())
}

// Flatten returns n+1 points sampled uniformly in t.
func (b Bezier) Flatten(n int) []geom.Point {
	n = max(n, 1)
	points := make([]geom.Point, n+1)
	for i := range n + 1 {
		points[i] = b.Position(float64(i) / float64(n))
	}
	return points
}

func (b Bezier) Length() float64 {
	return b.c.Arclen(arclenAccuracy)
}

// NearestT returns the parameter whose position is closest to p.
//
// The curve is sampled uniformly (Tolerances.NearestSamples) and the best
// sample is refined by halving the step around it (Tolerances.NearestRefineSteps).
// The result is precise enough for hit testing, not analytically exact.
func (b Bezier) NearestT(p geom.Point) float64 {
	tl := tol()
	n := tl.NearestSamples
	cp := p.Curve()
	bestT, bestD := 0.0, math.Inf(1)
	for i := range n + 1 {
		t := float64(i) / float64(n)
		if d := b.c.Eval(t).DistanceSquared(cp); d < bestD {
			bestT, bestD = t, d
		}
	}
	step := 1 / float64(n)
	for range tl.NearestRefineSteps {
		step /= 2
		for _, t := range [2]float64{bestT - step, bestT + step} {
			if t < 0 || t > 1 {
				continue
			}
			if d := b.c.Eval(t).DistanceSquared(cp); d < bestD {
				bestT, bestD = t, d
			}
		}
	}
	return bestT
}

// Distance returns the distance from p to the nearest point of the curve.
func (b Bezier) Distance(p geom.Point) float64 {
	return b.Position(b.NearestT(p)).Distance(p)
}

// Intersects reports whether the two curves cross.
//
// Both curves are subdivided while their bounding boxes overlap, until the
// boxes are smaller than Tolerances.IntersectThreshold, and the remaining
// chords are compared. Contacts at the end points of either curve are not
// counted, so lines joined end to end do not intersect. Tangential near
// misses below the threshold may be missed.
func (b Bezier) Intersects(o Bezier) bool {
	tl := tol()
	ends := [4]geom.Point{b.Start(), b.End(), o.Start(), o.End()}
	return bezierIntersects(b, o, &ends, tl.IntersectThreshold, tl.IntersectMaxDepth)
}

func bezierIntersects(a, b Bezier, ends *[4]geom.Point, threshold float64, depth int) bool {
	ab, bb := a.Bounds(), b.Bounds()
	if !ab.Intersects(bb) {
		return false
	}
	aSmall, bSmall := ab.MaxSide() <= threshold, bb.MaxSide() <= threshold
	if (aSmall && bSmall) || depth <= 0 {
		a0, a1, b0, b1 := a.Start(), a.End(), b.Start(), b.End()
		if geom.SegmentsCross(a0, a1, b0, b1) {
			return true
		}
		if !geom.SegmentsIntersect(a0, a1, b0, b1) {
			return false
		}
		ea, eb := ab.Inset(-threshold), bb.Inset(-threshold)
		for _, e := range ends {
			if ea.Contains(e) && eb.Contains(e) {
				return false
			}
		}
		return true
	}
	switch {
	case aSmall:
		b0, b1 := b.MidSplit()
		return bezierIntersects(a, b0, ends, threshold, depth-1) ||
			bezierIntersects(a, b1, ends, threshold, depth-1)
	case bSmall:
		a0, a1 := a.MidSplit()
		return bezierIntersects(a0, b, ends, threshold, depth-1) ||
			bezierIntersects(a1, b, ends, threshold, depth-1)
	default:
		a0, a1 := a.MidSplit()
		b0, b1 := b.MidSplit()
		return bezierIntersects(a0, b0, ends, threshold, depth-1) ||
			bezierIntersects(a0, b1, ends, threshold, depth-1) ||
			bezierIntersects(a1, b0, ends, threshold, depth-1) ||
			bezierIntersects(a1, b1, ends, threshold, depth-1)
	}
}

// touchDistance is the gap under which a segment end point counts as lying
// on a curve, or a curve end point as lying on a segment.
const touchDistance = 1e-6

// IntersectsSegment reports whether the curve touches the segment p0-p1.
func (b Bezier) IntersectsSegment(p0, p1 geom.Point) bool {
	if !b.Bounds().Intersects(geom.RectFromPoints(p0, p1)) {
		return false
	}
	if p0 != p1 {
		if _, n := b.c.IntersectLine(curve.Line{P0: p0.Curve(), P1: p1.Curve()}); n > 0 {
			return true
		}
	}
	// Collinear overlaps and end point contacts have no isolated root.
	return b.touches(p0) || b.touches(p1) ||
		b.Start().DistanceToSegment(p0, p1) <= touchDistance ||
		b.End().DistanceToSegment(p0, p1) <= touchDistance
}

func (b Bezier) touches(p geom.Point) bool {
	d2, _ := b.c.Nearest(p.Curve(), touchDistance/10)
	return d2 <= touchDistance*touchDistance
}

// Applying transforms every control point.
func (b Bezier) Applying(m geom.Matrix2D) Bezier {
	return Bezier{b.c.Transform(m.Affine())}
}
