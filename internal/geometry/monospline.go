package geometry

import (
	"math"

	"github.com/inamate/cellengine/backend-go/internal/geom"
)

type splineKind int

const (
	splineMiddle splineKind = iota
	splineFirst
	splineEnd
)

// Spline holds the knot spacing and position of a monotone cubic
// (Steffen) interpolation between the second and third of four keys.
// Values are interpolated with Value; the same parameters are reused for
// every coordinate of a shape.
type Spline struct {
	h0, h1, h2 float64
	t          float64
	kind       splineKind
}

// NewSpline interpolates between keys at x1 and x2 with neighbors at x0 and x3.
// t is the normalized position between x1 and x2.
func NewSpline(x0, x1, x2, x3, t float64) Spline {
	return Spline{h0: x1 - x0, h1: x2 - x1, h2: x3 - x2, t: t, kind: splineMiddle}
}

// NewFirstSpline interpolates the first interval, which has no key before x1.
func NewFirstSpline(x1, x2, x3, t float64) Spline {
	return Spline{h1: x2 - x1, h2: x3 - x2, t: t, kind: splineFirst}
}

// NewEndSpline interpolates the last interval, which has no key after x2.
func NewEndSpline(x0, x1, x2, t float64) Spline {
	return Spline{h0: x1 - x0, h1: x2 - x1, t: t, kind: splineEnd}
}

// T returns the normalized position between the two interpolated keys.
func (ms Spline) T() float64 {
	return ms.t
}

// Value interpolates f1..f2. f0 is ignored by first-interval splines and f3
// by last-interval splines.
func (ms Spline) Value(f0, f1, f2, f3 float64) float64 {
	if ms.h1 <= 0 {
		return f1
	}
	hasLeft := ms.kind != splineFirst && ms.h0 > 0
	hasRight := ms.kind != splineEnd && ms.h2 > 0

	s1 := (f2 - f1) / ms.h1
	var s0, s2 float64
	if hasLeft {
		s0 = (f1 - f0) / ms.h0
	}
	if hasRight {
		s2 = (f3 - f2) / ms.h2
	}

	var m1, m2 float64
	switch {
	case hasLeft:
		m1 = steffenSlope(s0, s1, ms.h0, ms.h1)
	case hasRight:
		r := ms.h1 / (ms.h1 + ms.h2)
		m1 = boundarySlope(s1*(1+r)-s2*r, s1)
	default:
		m1 = s1
	}
	switch {
	case hasRight:
		m2 = steffenSlope(s1, s2, ms.h1, ms.h2)
	case hasLeft:
		r := ms.h1 / (ms.h0 + ms.h1)
		m2 = boundarySlope(s1*(1+r)-s0*r, s1)
	default:
		m2 = s1
	}

	t := ms.t
	t2 := t * t
	t3 := t2 * t
	return (2*t3-3*t2+1)*f1 + (t3-2*t2+t)*ms.h1*m1 + (-2*t3+3*t2)*f2 + (t3-t2)*ms.h1*m2
}

// Point interpolates each coordinate of four points.
func (ms Spline) Point(p0, p1, p2, p3 geom.Point) geom.Point {
	return geom.Point{
		X: ms.Value(p0.X, p1.X, p2.X, p3.X),
		Y: ms.Value(p0.Y, p1.Y, p2.Y, p3.Y),
	}
}

func steffenSlope(sa, sb, ha, hb float64) float64 {
	p := (sa*hb + sb*ha) / (ha + hb)
	return (sign(sa) + sign(sb)) * min(math.Abs(sa), math.Abs(sb), 0.5*math.Abs(p))
}

func boundarySlope(p, s float64) float64 {
	switch {
	case p*s <= 0:
		return 0
	case math.Abs(p) > 2*math.Abs(s):
		return 2 * s
	default:
		return p
	}
}

func sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
